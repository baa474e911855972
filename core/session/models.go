package session

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mabroukmoatez/formly/core"
)

// Instance types
const (
	TypePresentiel = "presentiel"
	TypeDistanciel = "distanciel"
	TypeElearning  = "e-learning"
)

// Instance statuses. Cancellation is the terminal soft state; instances
// are never hard-deleted.
const (
	StatusScheduled = "scheduled"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusPostponed = "postponed"
)

var (
	AllTypes    = []string{TypePresentiel, TypeDistanciel, TypeElearning}
	AllStatuses = []string{StatusScheduled, StatusOngoing, StatusCompleted, StatusCancelled, StatusPostponed}
)

// Named time slots. Expansion always emits slots in this order,
// whatever the input order, so identical specs produce identical output.
const (
	SlotMorning   = "morning"
	SlotAfternoon = "afternoon"
	SlotEvening   = "evening"
	SlotFullDay   = "full_day"
	SlotCustom    = "custom"
)

type slotDef struct {
	start ClockTime
	end   ClockTime
	rank  int
}

var slotDefs = map[string]slotDef{
	SlotMorning:   {start: 9 * 60, end: 12 * 60, rank: 0},
	SlotAfternoon: {start: 14 * 60, end: 17 * 60, rank: 1},
	SlotEvening:   {start: 18 * 60, end: 21 * 60, rank: 2},
	SlotFullDay:   {start: 9 * 60, end: 17 * 60, rank: 3},
}

// ClockTime is a time of day expressed in minutes since midnight,
// JSON-encoded as "HH:MM".
type ClockTime int

func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return ClockTime(h*60 + m), nil
}

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Sub returns the number of minutes between t and other.
func (t ClockTime) Sub(other ClockTime) int {
	return int(t) - int(other)
}

func (t ClockTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

func (t *ClockTime) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	ct, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*t = ct
	return nil
}

func (t ClockTime) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *ClockTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		*t = ClockTime(v)
		return nil
	case []byte:
		n, err := strconv.Atoi(string(v))
		if err != nil {
			return err
		}
		*t = ClockTime(n)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ClockTime", src)
	}
}

// Date is a calendar date (no time of day), JSON-encoded as "2006-01-02".
// The underlying instant is midnight UTC.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.Format(dateLayout))), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = Date{time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)}
		return nil
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// Type-specific payloads. Exactly one is populated on an Instance,
// matching its type.

type PresentielDetails struct {
	Address           string `json:"address" validate:"required"`
	City              string `json:"city" validate:"required"`
	PostalCode        string `json:"postal_code"`
	Country           string `json:"country"`
	Building          string `json:"building"`
	Room              string `json:"room"`
	Details           string `json:"details"`
	TrackAttendance   bool   `json:"track_attendance"`
	SignSheetRequired bool   `json:"sign_sheet_required"`
}

type DistancielDetails struct {
	PlatformType string `json:"platform_type"`
	PlatformName string `json:"platform_name"`
	MeetingLink  string `json:"meeting_link" validate:"required,url"`
	MeetingID    string `json:"meeting_id"`
	Password     string `json:"password"`
}

type ElearningDetails struct {
	PlatformName string     `json:"platform_name"`
	AccessLink   string     `json:"access_link" validate:"required,url"`
	AccessStart  *time.Time `json:"access_start"`
	AccessEnd    *time.Time `json:"access_end"`
	SelfPaced    bool       `json:"self_paced"`
}

// Payload groups the three optional typed payloads as they arrive on
// the wire. ResolvePayload shapes it down to the one matching the
// instance type.
type Payload struct {
	Presentiel *PresentielDetails `json:"presentiel,omitempty"`
	Distanciel *DistancielDetails `json:"distanciel,omitempty"`
	Elearning  *ElearningDetails  `json:"elearning,omitempty"`
}

// Instance is one concrete scheduled occurrence of a session.
type Instance struct {
	UUID                uuid.UUID          `json:"uuid"`
	SessionUUID         uuid.UUID          `json:"session_uuid"`
	Type                string             `json:"instance_type"`
	Date                Date               `json:"start_date"`
	StartTime           ClockTime          `json:"start_time"`
	EndTime             ClockTime          `json:"end_time"`
	DurationMinutes     int                `json:"duration_minutes"`
	TimeSlot            string             `json:"time_slot,omitempty"`
	Status              string             `json:"status"`
	IsCancelled         bool               `json:"is_cancelled"`
	CancellationReason  string             `json:"cancellation_reason,omitempty"`
	Presentiel          *PresentielDetails `json:"presentiel,omitempty"`
	Distanciel          *DistancielDetails `json:"distanciel,omitempty"`
	Elearning           *ElearningDetails  `json:"elearning,omitempty"`
	MaxParticipants     int                `json:"max_participants"` // 0 = unlimited
	CurrentParticipants int                `json:"current_participants"`
	CreatedAt           time.Time          `json:"created_at"` // UTC
	UpdatedAt           time.Time          `json:"updated_at"` // UTC
}

func (i *Instance) setPayload(p Payload) {
	i.Presentiel = p.Presentiel
	i.Distanciel = p.Distanciel
	i.Elearning = p.Elearning
}

// TimeSlotSpec names a generation slot; "custom" slots carry their own
// time range, named slots use the fixed catalog times.
type TimeSlotSpec struct {
	Name      string     `json:"name" validate:"required,timeslot"`
	StartTime *ClockTime `json:"start_time,omitempty"`
	EndTime   *ClockTime `json:"end_time,omitempty"`
}

// Times returns the effective time range of the slot.
func (ts TimeSlotSpec) Times() (start, end ClockTime) {
	if def, ok := slotDefs[ts.Name]; ok {
		return def.start, def.end
	}
	if ts.StartTime != nil && ts.EndTime != nil {
		return *ts.StartTime, *ts.EndTime
	}
	return 0, 0
}

// RecurrenceSpec is the user-supplied generation rule. It is transient
// input, never persisted.
type RecurrenceSpec struct {
	HasRecurrence       bool           `json:"has_recurrence"`
	StartDate           Date           `json:"start_date"`
	RecurrenceStartDate Date           `json:"recurrence_start_date"`
	RecurrenceEndDate   Date           `json:"recurrence_end_date"`
	SelectedDays        []int          `json:"selected_days" validate:"omitempty,dive,min=0,max=6"`
	TimeSlots           []TimeSlotSpec `json:"time_slots" validate:"omitempty,dive"`
}

// Occurrence is one (date, slot) pair produced by expansion. Slot is
// nil for a one-off generation.
type Occurrence struct {
	Date Date
	Slot *TimeSlotSpec
}

// GenerateInstances contains everything needed to generate a batch of
// instances for a session.
type GenerateInstances struct {
	Type            string         `json:"instance_type" validate:"required"`
	Recurrence      RecurrenceSpec `json:"recurrence"`
	StartTime       *ClockTime     `json:"start_time,omitempty"` // one-off only
	EndTime         *ClockTime     `json:"end_time,omitempty"`
	MaxParticipants int            `json:"max_participants" validate:"min=0"`
	Payload         Payload        `json:"payload"`
}

func (gi *GenerateInstances) Validate(validate *validator.Validate) error {
	gi.Type = core.CleanString(gi.Type, true /* lower */)
	return validate.Struct(gi)
}

// CancelInstance carries a cancellation request. The reason is
// mandatory; notify emails are forwarded to the mail collaborator.
type CancelInstance struct {
	Reason       string   `json:"reason" validate:"required"`
	NotifyEmails []string `json:"notify_emails" validate:"omitempty,dive,email"`
}

func (ci *CancelInstance) Validate(validate *validator.Validate) error {
	ci.Reason = core.CleanString(ci.Reason)
	return validate.Struct(ci)
}
