package session

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/mabroukmoatez/formly/core"
)

var (
	timeSlotTag  = "timeslot"
	timeSlotText = "invalid time slot"

	timeRangeTag  = "timerange"
	timeRangeText = "end time must be after start time"

	accessWindowTag  = "accesswindow"
	accessWindowText = "access end must be after access start"
)

// InitValidators registers the session validation tags and their texts.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(timeSlotTag, timeSlotValidation)
	core.RegisterCustomTranslation(validate, translator, timeSlotTag, timeSlotText)
	core.RegisterCustomTranslation(validate, translator, timeRangeTag, timeRangeText)
	core.RegisterCustomTranslation(validate, translator, accessWindowTag, accessWindowText)

	validate.RegisterStructValidation(timeSlotStructValidation, TimeSlotSpec{})
	validate.RegisterStructValidation(generateStructValidation, GenerateInstances{})
	validate.RegisterStructValidation(elearningStructValidation, ElearningDetails{})
}

// timeSlotValidation checks that a slot name is in the known catalog.
func timeSlotValidation(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == SlotCustom {
		return true
	}
	_, ok := slotDefs[name]
	return ok
}

// timeSlotStructValidation requires an explicit, well-ordered time range
// on custom slots. Named slots use the fixed catalog times.
func timeSlotStructValidation(sl validator.StructLevel) {
	ts := sl.Current().Interface().(TimeSlotSpec)
	if ts.Name != SlotCustom {
		return
	}
	if ts.StartTime == nil {
		sl.ReportError(ts.StartTime, "start_time", "StartTime", "required", "")
		return
	}
	if ts.EndTime == nil {
		sl.ReportError(ts.EndTime, "end_time", "EndTime", "required", "")
		return
	}
	if *ts.EndTime <= *ts.StartTime {
		sl.ReportError(ts.EndTime, "end_time", "EndTime", timeRangeTag, "")
	}
}

// generateStructValidation requires an explicit time range on one-off
// (non-recurring) generations.
func generateStructValidation(sl validator.StructLevel) {
	gi := sl.Current().Interface().(GenerateInstances)
	if gi.Recurrence.HasRecurrence {
		return
	}
	if gi.StartTime == nil {
		sl.ReportError(gi.StartTime, "start_time", "StartTime", "required", "")
		return
	}
	if gi.EndTime == nil {
		sl.ReportError(gi.EndTime, "end_time", "EndTime", "required", "")
		return
	}
	if *gi.EndTime <= *gi.StartTime {
		sl.ReportError(gi.EndTime, "end_time", "EndTime", timeRangeTag, "")
	}
}

func elearningStructValidation(sl validator.StructLevel) {
	el := sl.Current().Interface().(ElearningDetails)
	if el.AccessStart != nil && el.AccessEnd != nil && !el.AccessEnd.After(*el.AccessStart) {
		sl.ReportError(el.AccessEnd, "access_end", "AccessEnd", accessWindowTag, "")
	}
}
