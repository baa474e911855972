package course

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/mabroukmoatez/formly/core"
)

func testCourse() Course {
	return Course{
		UUID:          uuid.New(),
		Title:         "Gestion de projet",
		Subtitle:      "Les fondamentaux",
		Description:   "Cours complet",
		DurationHours: 35,
		Price:         1200,
		Language:      "fr",
		Level:         "debutant",
	}
}

func testSession(crs Course) Session {
	return Session{
		UUID:       uuid.New(),
		CourseUUID: crs.UUID,
		Reference:  "GP-2024-01",
	}
}

func TestOverrideSet_inheritance(t *testing.T) {
	crs := testCourse()
	set := NewOverrideSet(crs, testSession(crs))

	for _, field := range OverridableFields {
		overridden, err := set.IsOverridden(field)
		if err != nil {
			t.Fatalf("IsOverridden(%s): %v", field, err)
		}
		if overridden {
			t.Errorf("fresh session: %s overridden, want inherited", field)
		}
	}

	got, err := set.EffectiveValue(FieldTitle)
	if err != nil {
		t.Fatalf("EffectiveValue(): %v", err)
	}
	if got != crs.Title {
		t.Errorf("EffectiveValue(title) = %v, want template %q", got, crs.Title)
	}
}

func TestOverrideSet_setAndReset(t *testing.T) {
	crs := testCourse()
	set := NewOverrideSet(crs, testSession(crs))

	if err := set.Set(FieldTitle, "Gestion de projet avancee"); err != nil {
		t.Fatalf("Set(): %v", err)
	}
	if got, _ := set.EffectiveValue(FieldTitle); got != "Gestion de projet avancee" {
		t.Errorf("EffectiveValue(title) = %v, want local value", got)
	}
	if overridden, _ := set.IsOverridden(FieldTitle); !overridden {
		t.Error("title not overridden after Set")
	}

	// untouched fields keep inheriting
	if got, _ := set.EffectiveValue(FieldPrice); got != crs.Price {
		t.Errorf("EffectiveValue(price) = %v, want template %v", got, crs.Price)
	}

	if err := set.ResetOne(FieldTitle); err != nil {
		t.Fatalf("ResetOne(): %v", err)
	}
	if got, _ := set.EffectiveValue(FieldTitle); got != crs.Title {
		t.Errorf("EffectiveValue(title) after reset = %v, want template %q", got, crs.Title)
	}
	if overridden, _ := set.IsOverridden(FieldTitle); overridden {
		t.Error("title still overridden after ResetOne")
	}
}

// Writing a value equal to the template's still pins the field: an
// explicit edit always overrides.
func TestOverrideSet_setEqualValue(t *testing.T) {
	crs := testCourse()
	set := NewOverrideSet(crs, testSession(crs))

	if err := set.Set(FieldTitle, crs.Title); err != nil {
		t.Fatalf("Set(): %v", err)
	}
	if overridden, _ := set.IsOverridden(FieldTitle); !overridden {
		t.Error("setting the template value must still override the field")
	}
}

func TestOverrideSet_unknownField(t *testing.T) {
	crs := testCourse()
	set := NewOverrideSet(crs, testSession(crs))

	tests := []struct {
		name           string
		field          string
		wantSuggestion string
	}{
		{name: "close typo", field: "titel", wantSuggestion: "title"},
		{name: "snake typo", field: "duration_hour", wantSuggestion: "duration_hours"},
		{name: "no close match", field: "xyzzy", wantSuggestion: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := set.Set(tt.field, "x")
			ufErr, ok := err.(*UnknownFieldError)
			if !ok {
				t.Fatalf("error = %v (%T), want *UnknownFieldError", err, err)
			}
			if ufErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", ufErr.Field, tt.field)
			}
			if ufErr.Suggestion != tt.wantSuggestion {
				t.Errorf("Suggestion = %q, want %q", ufErr.Suggestion, tt.wantSuggestion)
			}
		})
	}

	if _, err := set.EffectiveValue("nope"); err == nil {
		t.Error("EffectiveValue(unknown) error = nil")
	}
	if _, err := set.IsOverridden("nope"); err == nil {
		t.Error("IsOverridden(unknown) error = nil")
	}
	if err := set.ResetOne("nope"); err == nil {
		t.Error("ResetOne(unknown) error = nil")
	}
}

func TestOverrideSet_valueCoercion(t *testing.T) {
	crs := testCourse()
	set := NewOverrideSet(crs, testSession(crs))

	tests := []struct {
		name    string
		field   string
		value   interface{}
		want    interface{}
		wantErr bool
	}{
		{name: "string ok", field: FieldLanguage, value: "en", want: "en"},
		{name: "string got number", field: FieldTitle, value: 42.0, wantErr: true},
		{name: "whole float to int", field: FieldDurationHours, value: 40.0, want: 40},
		{name: "fractional to int", field: FieldDurationHours, value: 40.5, wantErr: true},
		{name: "int to float", field: FieldPrice, value: 999, want: 999.0},
		{name: "float ok", field: FieldPrice, value: 999.99, want: 999.99},
		{name: "float got string", field: FieldPrice, value: "999", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := set.Set(tt.field, tt.value)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Set() error = nil, want type error")
				}
				if _, ok := err.(*core.ValidationError); !ok {
					t.Errorf("error = %T, want *core.ValidationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Set(): %v", err)
			}
			if got, _ := set.EffectiveValue(tt.field); got != tt.want {
				t.Errorf("EffectiveValue(%s) = %v (%T), want %v (%T)", tt.field, got, got, tt.want, tt.want)
			}
		})
	}
}

func TestOverrideSet_resetAllSingleEvent(t *testing.T) {
	crs := testCourse()
	set := NewOverrideSet(crs, testSession(crs))

	var events [][]string
	set.OnChange = func(fields []string) {
		events = append(events, fields)
	}

	_ = set.Set(FieldTitle, "t")
	_ = set.Set(FieldPrice, 10.0)
	_ = set.Set(FieldLevel, "avance")
	events = nil

	set.ResetAll()
	if len(events) != 1 {
		t.Fatalf("ResetAll emitted %d events, want 1", len(events))
	}
	want := []string{FieldTitle, FieldPrice, FieldLevel}
	// emitted in registered field order
	if !reflect.DeepEqual(events[0], []string{FieldTitle, FieldPrice, FieldLevel}) {
		t.Errorf("event fields = %v, want %v", events[0], want)
	}

	for _, field := range OverridableFields {
		if overridden, _ := set.IsOverridden(field); overridden {
			t.Errorf("%s still overridden after ResetAll", field)
		}
	}

	// a no-op ResetAll emits nothing
	events = nil
	set.ResetAll()
	if len(events) != 0 {
		t.Errorf("no-op ResetAll emitted %d events", len(events))
	}
}

func TestOverrideSet_applyAndResolve(t *testing.T) {
	crs := testCourse()
	sess := testSession(crs)
	sess.Subtitle = null.StringFrom("Session special")

	set := NewOverrideSet(crs, sess)
	if err := set.Set(FieldDurationHours, 40); err != nil {
		t.Fatalf("Set(): %v", err)
	}

	set.Apply(&sess)
	if !sess.Subtitle.Valid || sess.Subtitle.String != "Session special" {
		t.Errorf("Subtitle = %+v, want kept local value", sess.Subtitle)
	}
	if !sess.DurationHours.Valid || sess.DurationHours.Int != 40 {
		t.Errorf("DurationHours = %+v, want local 40", sess.DurationHours)
	}
	if sess.Title.Valid {
		t.Errorf("Title = %+v, want NULL (inherited)", sess.Title)
	}

	eff := set.Resolve(sess)
	if eff.Title != crs.Title {
		t.Errorf("eff.Title = %q, want template %q", eff.Title, crs.Title)
	}
	if eff.Subtitle != "Session special" {
		t.Errorf("eff.Subtitle = %q, want local value", eff.Subtitle)
	}
	if eff.DurationHours != 40 {
		t.Errorf("eff.DurationHours = %d, want 40", eff.DurationHours)
	}
	if !eff.Overridden[FieldSubtitle] || !eff.Overridden[FieldDurationHours] {
		t.Errorf("Overridden = %v, want subtitle & duration_hours", eff.Overridden)
	}
	if eff.Overridden[FieldTitle] {
		t.Error("title marked overridden, want inherited")
	}
}

// template edits propagate to inherited fields only
func TestOverrideSet_templatePropagation(t *testing.T) {
	crs := testCourse()
	sess := testSession(crs)
	sess.Price = null.Float64From(999)

	crs.Title = "Titre revise" // template edited after the session was cloned

	eff := NewOverrideSet(crs, sess).Resolve(sess)
	if eff.Title != "Titre revise" {
		t.Errorf("eff.Title = %q, want propagated template edit", eff.Title)
	}
	if eff.Price != 999 {
		t.Errorf("eff.Price = %v, want pinned local value", eff.Price)
	}
}
