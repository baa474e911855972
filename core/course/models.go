package course

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/mabroukmoatez/formly/core"
)

// Overridable field names. A session cloned from a course inherits each
// of these until it writes a local value.
const (
	FieldTitle         = "title"
	FieldSubtitle      = "subtitle"
	FieldDescription   = "description"
	FieldDurationHours = "duration_hours"
	FieldPrice         = "price"
	FieldLanguage      = "language"
	FieldLevel         = "level"
)

// OverridableFields is the registered overridable set, in display order.
var OverridableFields = []string{
	FieldTitle,
	FieldSubtitle,
	FieldDescription,
	FieldDurationHours,
	FieldPrice,
	FieldLanguage,
	FieldLevel,
}

// Course is the template record sessions are cloned from. Its values
// are the inherited defaults; editing the course propagates to every
// session field still marked inherited.
type Course struct {
	UUID          uuid.UUID `json:"uuid"`
	Title         string    `json:"title"`
	Subtitle      string    `json:"subtitle"`
	Description   string    `json:"description"`
	DurationHours int       `json:"duration_hours"`
	Price         float64   `json:"price"`
	Language      string    `json:"language"`
	Level         string    `json:"level"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

func (c *Course) templateValues() map[string]interface{} {
	return map[string]interface{}{
		FieldTitle:         c.Title,
		FieldSubtitle:      c.Subtitle,
		FieldDescription:   c.Description,
		FieldDurationHours: c.DurationHours,
		FieldPrice:         c.Price,
		FieldLanguage:      c.Language,
		FieldLevel:         c.Level,
	}
}

// Session is one scheduled run of a course. Every overridable column is
// nullable: NULL means "inherited from the template", so later template
// edits keep propagating until the field is written locally.
type Session struct {
	UUID          uuid.UUID    `json:"uuid"`
	CourseUUID    uuid.UUID    `json:"course_uuid"`
	Reference     string       `json:"reference"`
	Title         null.String  `json:"title"`
	Subtitle      null.String  `json:"subtitle"`
	Description   null.String  `json:"description"`
	DurationHours null.Int     `json:"duration_hours"`
	Price         null.Float64 `json:"price"`
	Language      null.String  `json:"language"`
	Level         null.String  `json:"level"`
	CreatedAt     time.Time    `json:"created_at"` // UTC
	UpdatedAt     time.Time    `json:"updated_at"` // UTC
}

func (s *Session) localValues() map[string]interface{} {
	local := make(map[string]interface{}, len(OverridableFields))
	if s.Title.Valid {
		local[FieldTitle] = s.Title.String
	}
	if s.Subtitle.Valid {
		local[FieldSubtitle] = s.Subtitle.String
	}
	if s.Description.Valid {
		local[FieldDescription] = s.Description.String
	}
	if s.DurationHours.Valid {
		local[FieldDurationHours] = s.DurationHours.Int
	}
	if s.Price.Valid {
		local[FieldPrice] = s.Price.Float64
	}
	if s.Language.Valid {
		local[FieldLanguage] = s.Language.String
	}
	if s.Level.Valid {
		local[FieldLevel] = s.Level.String
	}
	return local
}

// applyLocal rewrites the session's nullable columns from a local value
// map; fields absent from the map become NULL (inherited).
func (s *Session) applyLocal(local map[string]interface{}) {
	str := func(field string) null.String {
		if v, ok := local[field]; ok {
			return null.StringFrom(v.(string))
		}
		return null.String{}
	}

	s.Title = str(FieldTitle)
	s.Subtitle = str(FieldSubtitle)
	s.Description = str(FieldDescription)
	s.Language = str(FieldLanguage)
	s.Level = str(FieldLevel)

	if v, ok := local[FieldDurationHours]; ok {
		s.DurationHours = null.IntFrom(v.(int))
	} else {
		s.DurationHours = null.Int{}
	}
	if v, ok := local[FieldPrice]; ok {
		s.Price = null.Float64From(v.(float64))
	} else {
		s.Price = null.Float64{}
	}
}

// EffectiveSession is the override-resolved view of a session: each
// field carries the local value if present, the template value
// otherwise, and Overridden says which is which.
type EffectiveSession struct {
	UUID          uuid.UUID       `json:"uuid"`
	CourseUUID    uuid.UUID       `json:"course_uuid"`
	Reference     string          `json:"reference"`
	Title         string          `json:"title"`
	Subtitle      string          `json:"subtitle"`
	Description   string          `json:"description"`
	DurationHours int             `json:"duration_hours"`
	Price         float64         `json:"price"`
	Language      string          `json:"language"`
	Level         string          `json:"level"`
	Overridden    map[string]bool `json:"overridden"`
}

// NewCourse contains information needed to create a course template.
type NewCourse struct {
	Title         string  `json:"title" validate:"required"`
	Subtitle      string  `json:"subtitle"`
	Description   string  `json:"description"`
	DurationHours int     `json:"duration_hours" validate:"min=0"`
	Price         float64 `json:"price" validate:"min=0"`
	Language      string  `json:"language"`
	Level         string  `json:"level"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Subtitle = core.CleanString(nc.Subtitle)
	nc.Language = core.CleanString(nc.Language, true /* lower */)
	nc.Level = core.CleanString(nc.Level, true /* lower */)
	return validate.Struct(nc)
}

// NewSession contains information needed to clone a session off a
// course template. All overridable fields start inherited.
type NewSession struct {
	Reference string `json:"reference" validate:"required,refcode"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.Reference = core.CleanString(ns.Reference)
	return validate.Struct(ns)
}

// SetOverride carries one override write; the value's JSON type must
// match the field's kind.
type SetOverride struct {
	Value interface{} `json:"value" validate:"required"`
}

func (so *SetOverride) Validate(validate *validator.Validate) error {
	if s, ok := so.Value.(string); ok {
		so.Value = core.CleanString(s)
	}
	return validate.Struct(so)
}
