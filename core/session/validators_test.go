package session

import (
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/mabroukmoatez/formly/core"
)

func newTestValidator() *validator.Validate {
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func fieldErrors(err error) map[string]bool {
	fields := make(map[string]bool)
	if vErrs, ok := err.(validator.ValidationErrors); ok {
		for _, vErr := range vErrs {
			fields[vErr.Field()] = true
		}
	}
	return fields
}

func TestGenerateInstances_Validate(t *testing.T) {
	validate := newTestValidator()

	recurring := RecurrenceSpec{
		HasRecurrence:       true,
		RecurrenceStartDate: NewDate(2024, time.January, 1),
		RecurrenceEndDate:   NewDate(2024, time.January, 31),
		SelectedDays:        []int{1},
		TimeSlots:           []TimeSlotSpec{{Name: SlotMorning}},
	}

	tests := []struct {
		name      string
		data      GenerateInstances
		wantField string
	}{
		{
			name:      "missing type",
			data:      GenerateInstances{Recurrence: recurring},
			wantField: "instance_type",
		},
		{
			name: "one-off requires explicit times",
			data: GenerateInstances{
				Type:       TypePresentiel,
				Recurrence: RecurrenceSpec{StartDate: NewDate(2024, time.March, 15)},
			},
			wantField: "start_time",
		},
		{
			name: "one-off end before start",
			data: GenerateInstances{
				Type: TypePresentiel,
				Recurrence: RecurrenceSpec{
					StartDate: NewDate(2024, time.March, 15),
				},
				StartTime: clockPtr(t, "17:00"),
				EndTime:   clockPtr(t, "09:00"),
			},
			wantField: "end_time",
		},
		{
			name: "unknown slot name",
			data: func() GenerateInstances {
				spec := recurring
				spec.TimeSlots = []TimeSlotSpec{{Name: "midnight"}}
				return GenerateInstances{Type: TypePresentiel, Recurrence: spec}
			}(),
			wantField: "name",
		},
		{
			name: "custom slot without range",
			data: func() GenerateInstances {
				spec := recurring
				spec.TimeSlots = []TimeSlotSpec{{Name: SlotCustom}}
				return GenerateInstances{Type: TypePresentiel, Recurrence: spec}
			}(),
			wantField: "start_time",
		},
		{
			name: "custom slot inverted range",
			data: func() GenerateInstances {
				spec := recurring
				spec.TimeSlots = []TimeSlotSpec{{
					Name:      SlotCustom,
					StartTime: clockPtr(t, "15:00"),
					EndTime:   clockPtr(t, "14:00"),
				}}
				return GenerateInstances{Type: TypePresentiel, Recurrence: spec}
			}(),
			wantField: "end_time",
		},
		{
			name: "weekday out of range",
			data: func() GenerateInstances {
				spec := recurring
				spec.SelectedDays = []int{7}
				return GenerateInstances{Type: TypePresentiel, Recurrence: spec}
			}(),
			wantField: "selected_days[0]",
		},
		{
			name: "valid recurring",
			data: GenerateInstances{Type: TypePresentiel, Recurrence: recurring},
		},
		{
			name: "valid one-off",
			data: GenerateInstances{
				Type:       TypeDistanciel,
				Recurrence: RecurrenceSpec{StartDate: NewDate(2024, time.March, 15)},
				StartTime:  clockPtr(t, "09:00"),
				EndTime:    clockPtr(t, "11:00"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate(validate)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() error = nil, want validation error")
			}
			if fields := fieldErrors(err); !fields[tt.wantField] {
				t.Errorf("Validate() error fields = %v, want %q", fields, tt.wantField)
			}
		})
	}
}

func TestElearningDetails_accessWindow(t *testing.T) {
	validate := newTestValidator()

	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	details := ElearningDetails{
		AccessLink:  "https://lms.example.com/course/42",
		AccessStart: &start,
		AccessEnd:   &end,
	}
	err := validate.Struct(details)
	if err == nil {
		t.Fatal("Struct() error = nil, want access window error")
	}
	if fields := fieldErrors(err); !fields["access_end"] {
		t.Errorf("error fields = %v, want access_end", fields)
	}
}

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		in      string
		want    ClockTime
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:05", want: 9*60 + 5},
		{in: "23:59", want: 23*60 + 59},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClockTime(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClockTime(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseClockTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
