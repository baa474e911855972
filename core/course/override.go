package course

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/mabroukmoatez/formly/core"
)

// minimum similarity ratio for an "did you mean" suggestion
const suggestionMinRatio = 0.6

// UnknownFieldError reports an override operation on a field outside
// the registered overridable set. A programming error on the caller's
// side; never retried.
type UnknownFieldError struct {
	Field      string
	Suggestion string
}

func (e *UnknownFieldError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown overridable field %q (did you mean %q?)", e.Field, e.Suggestion)
	}
	return fmt.Sprintf("unknown overridable field %q", e.Field)
}

func newUnknownFieldError(field string) error {
	var best string
	var bestRatio float64
	for _, known := range OverridableFields {
		ratio := difflib.NewMatcher(strings.Split(field, ""), strings.Split(known, "")).QuickRatio()
		if ratio > bestRatio {
			best, bestRatio = known, ratio
		}
	}
	if bestRatio < suggestionMinRatio {
		best = ""
	}
	return &UnknownFieldError{Field: field, Suggestion: best}
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindFloat
)

var fieldKinds = map[string]fieldKind{
	FieldTitle:         kindString,
	FieldSubtitle:      kindString,
	FieldDescription:   kindString,
	FieldDurationHours: kindInt,
	FieldPrice:         kindFloat,
	FieldLanguage:      kindString,
	FieldLevel:         kindString,
}

var errWrongValueType = errors.New("value type does not match the field")

// OverrideSet resolves, per overridable field, whether a session holds
// a local value or inherits the template's. Each field is a two-state
// machine: Inherited (initial) <-> Overridden, via Set and ResetOne.
type OverrideSet struct {
	template map[string]interface{}
	local    map[string]interface{}

	// OnChange, when set, receives the changed field names once per
	// mutating call; ResetAll emits one combined event, not N.
	OnChange func(fields []string)
}

// NewOverrideSet builds the override state for a session over its
// originating course template.
func NewOverrideSet(crs Course, sess Session) *OverrideSet {
	return &OverrideSet{
		template: crs.templateValues(),
		local:    sess.localValues(),
	}
}

// EffectiveValue returns the local value if the field is overridden,
// the live template value otherwise.
func (os *OverrideSet) EffectiveValue(field string) (interface{}, error) {
	if _, ok := fieldKinds[field]; !ok {
		return nil, newUnknownFieldError(field)
	}
	if v, ok := os.local[field]; ok {
		return v, nil
	}
	return os.template[field], nil
}

func (os *OverrideSet) IsOverridden(field string) (bool, error) {
	if _, ok := fieldKinds[field]; !ok {
		return false, newUnknownFieldError(field)
	}
	_, ok := os.local[field]
	return ok, nil
}

// Set writes a local value. The field becomes overridden even when the
// value equals the template's current one: an explicit edit always
// pins the field.
func (os *OverrideSet) Set(field string, value interface{}) error {
	kind, ok := fieldKinds[field]
	if !ok {
		return newUnknownFieldError(field)
	}
	coerced, err := coerceValue(kind, value)
	if err != nil {
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	os.local[field] = coerced
	os.emit(field)
	return nil
}

// ResetOne reverts the field to inherited. The local value is dropped,
// not replaced with a template copy, so future template edits propagate.
func (os *OverrideSet) ResetOne(field string) error {
	if _, ok := fieldKinds[field]; !ok {
		return newUnknownFieldError(field)
	}
	delete(os.local, field)
	os.emit(field)
	return nil
}

// ResetAll reverts every registered field and emits a single combined
// change event.
func (os *OverrideSet) ResetAll() {
	changed := make([]string, 0, len(os.local))
	for _, field := range OverridableFields {
		if _, ok := os.local[field]; ok {
			changed = append(changed, field)
		}
	}
	os.local = make(map[string]interface{})
	if len(changed) > 0 {
		os.emit(changed...)
	}
}

// Apply writes the current override state back onto a session entity.
func (os *OverrideSet) Apply(sess *Session) {
	sess.applyLocal(os.local)
}

// Resolve produces the effective view of a session.
func (os *OverrideSet) Resolve(sess Session) EffectiveSession {
	value := func(field string) interface{} {
		if v, ok := os.local[field]; ok {
			return v
		}
		return os.template[field]
	}
	overridden := make(map[string]bool, len(OverridableFields))
	for _, field := range OverridableFields {
		_, ok := os.local[field]
		overridden[field] = ok
	}
	return EffectiveSession{
		UUID:          sess.UUID,
		CourseUUID:    sess.CourseUUID,
		Reference:     sess.Reference,
		Title:         value(FieldTitle).(string),
		Subtitle:      value(FieldSubtitle).(string),
		Description:   value(FieldDescription).(string),
		DurationHours: value(FieldDurationHours).(int),
		Price:         value(FieldPrice).(float64),
		Language:      value(FieldLanguage).(string),
		Level:         value(FieldLevel).(string),
		Overridden:    overridden,
	}
}

func (os *OverrideSet) emit(fields ...string) {
	if os.OnChange != nil {
		os.OnChange(fields)
	}
}

// coerceValue narrows a decoded JSON value to the field's kind. JSON
// numbers always decode to float64; integral fields accept only whole
// numbers.
func coerceValue(kind fieldKind, value interface{}) (interface{}, error) {
	switch kind {
	case kindString:
		s, ok := value.(string)
		if !ok {
			return nil, errWrongValueType
		}
		return s, nil
	case kindInt:
		switch v := value.(type) {
		case int:
			return v, nil
		case float64:
			if v != float64(int(v)) {
				return nil, errWrongValueType
			}
			return int(v), nil
		default:
			return nil, errWrongValueType
		}
	case kindFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		default:
			return nil, errWrongValueType
		}
	}
	return nil, errWrongValueType
}
