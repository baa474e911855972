package session

import (
	"errors"
	"sort"
	"time"

	"github.com/mabroukmoatez/formly/core"
)

var (
	errWindowInverted = errors.New("recurrence end date must not precede its start date")
	errWindowTooLong  = errors.New("recurrence window is too long")
	errTooManyMatches = errors.New("recurrence would generate too many instances")
	errNoStartDate    = errors.New("start date is required")
	errNoSelectedDays = errors.New("at least one weekday is required")
	errNoTimeSlots    = errors.New("at least one time slot is required")
)

// Expand turns a recurrence spec into the ordered, finite list of
// (date, slot) occurrences it denotes. The computation is one-shot and
// deterministic: identical specs expand to identical output whatever
// the input order of days or slots.
//
// An expansion matching no date at all is a valid empty result, not an
// error; callers surface the zero count before committing anything.
func Expand(spec RecurrenceSpec, bounds core.SchedulingConfig) ([]Occurrence, error) {
	if !spec.HasRecurrence {
		if spec.StartDate.IsZero() {
			return nil, core.NewValidationError(errNoStartDate, core.FieldError{Field: "start_date", Error: errNoStartDate.Error()})
		}
		return []Occurrence{{Date: spec.StartDate}}, nil
	}

	if spec.RecurrenceStartDate.IsZero() {
		return nil, core.NewValidationError(errNoStartDate, core.FieldError{Field: "recurrence_start_date", Error: errNoStartDate.Error()})
	}
	if spec.RecurrenceEndDate.IsZero() || spec.RecurrenceEndDate.Before(spec.RecurrenceStartDate.Time) {
		return nil, core.NewValidationError(errWindowInverted, core.FieldError{Field: "recurrence_end_date", Error: errWindowInverted.Error()})
	}
	if len(spec.SelectedDays) == 0 {
		return nil, core.NewValidationError(errNoSelectedDays, core.FieldError{Field: "selected_days", Error: errNoSelectedDays.Error()})
	}
	if len(spec.TimeSlots) == 0 {
		return nil, core.NewValidationError(errNoTimeSlots, core.FieldError{Field: "time_slots", Error: errNoTimeSlots.Error()})
	}

	windowDays := int(spec.RecurrenceEndDate.Sub(spec.RecurrenceStartDate.Time)/(24*time.Hour)) + 1
	if bounds.MaxRecurrenceWindowDays > 0 && windowDays > bounds.MaxRecurrenceWindowDays {
		return nil, core.NewValidationError(errWindowTooLong, core.FieldError{Field: "recurrence_end_date", Error: errWindowTooLong.Error()})
	}

	days := make(map[time.Weekday]bool, len(spec.SelectedDays))
	for _, d := range spec.SelectedDays {
		days[time.Weekday(d)] = true
	}
	slots := canonicalSlots(spec.TimeSlots)

	var out []Occurrence
	for d := spec.RecurrenceStartDate; !d.After(spec.RecurrenceEndDate.Time); d = d.AddDays(1) {
		if !days[d.Weekday()] {
			continue
		}
		for i := range slots {
			out = append(out, Occurrence{Date: d, Slot: &slots[i]})
			if bounds.MaxGeneratedInstances > 0 && len(out) > bounds.MaxGeneratedInstances {
				return nil, core.NewValidationError(errTooManyMatches, core.FieldError{Field: "recurrence", Error: errTooManyMatches.Error()})
			}
		}
	}
	return out, nil
}

// canonicalSlots de-duplicates the slot set and fixes its order:
// named slots in catalog order (morning, afternoon, evening, full_day),
// then custom slots by start time.
func canonicalSlots(specs []TimeSlotSpec) []TimeSlotSpec {
	seenNamed := make(map[string]bool, len(specs))
	seenCustom := make(map[[2]ClockTime]bool, len(specs))

	out := make([]TimeSlotSpec, 0, len(specs))
	for _, ts := range specs {
		if ts.Name == SlotCustom {
			start, end := ts.Times()
			key := [2]ClockTime{start, end}
			if seenCustom[key] {
				continue
			}
			seenCustom[key] = true
		} else {
			if seenNamed[ts.Name] {
				continue
			}
			seenNamed[ts.Name] = true
		}
		out = append(out, ts)
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, iNamed := slotDefs[out[i].Name]
		dj, jNamed := slotDefs[out[j].Name]
		switch {
		case iNamed && jNamed:
			return di.rank < dj.rank
		case iNamed != jNamed:
			return iNamed // named slots before custom ones
		default:
			si, ei := out[i].Times()
			sj, ej := out[j].Times()
			if si != sj {
				return si < sj
			}
			return ei < ej
		}
	})
	return out
}
