package session

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/mabroukmoatez/formly/core"
)

// UnsupportedTypeError reports an instance type outside the known set.
// It is a contract error on the caller's side, not a retryable input one.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported instance type %q", e.Type)
}

var (
	errPresentielRequired = errors.New("presentiel details are required")
	errDistancielRequired = errors.New("distanciel details are required")
	errElearningRequired  = errors.New("e-learning details are required")
)

// ResolvePayload validates the typed payload for the given instance
// type and shapes it down so only the matching payload survives. It is
// pure: no side effects beyond the returned value.
func ResolvePayload(validate *validator.Validate, typ string, p Payload) (Payload, error) {
	switch typ {
	case TypePresentiel:
		if p.Presentiel == nil {
			return Payload{}, core.NewValidationError(errPresentielRequired, core.FieldError{Field: "presentiel", Error: errPresentielRequired.Error()})
		}
		if err := validate.Struct(p.Presentiel); err != nil {
			return Payload{}, err
		}
		return Payload{Presentiel: p.Presentiel}, nil

	case TypeDistanciel:
		if p.Distanciel == nil {
			return Payload{}, core.NewValidationError(errDistancielRequired, core.FieldError{Field: "distanciel", Error: errDistancielRequired.Error()})
		}
		if err := validate.Struct(p.Distanciel); err != nil {
			return Payload{}, err
		}
		return Payload{Distanciel: p.Distanciel}, nil

	case TypeElearning:
		if p.Elearning == nil {
			return Payload{}, core.NewValidationError(errElearningRequired, core.FieldError{Field: "elearning", Error: errElearningRequired.Error()})
		}
		if err := validate.Struct(p.Elearning); err != nil {
			return Payload{}, err
		}
		return Payload{Elearning: p.Elearning}, nil

	default:
		return Payload{}, &UnsupportedTypeError{Type: typ}
	}
}
