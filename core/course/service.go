package course

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// errors
	ErrNotFound        = errors.New("course not found")
	ErrSessionNotFound = errors.New("session not found")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByUUID(ctx context.Context, id uuid.UUID) (Course, error)
		CreateSession(ctx context.Context, sess Session) (Session, error)
		GetSessionByUUID(ctx context.Context, id uuid.UUID) (Session, error)
		// UpdateSessionOverrides rewrites every overridable column of
		// the session in one statement.
		UpdateSessionOverrides(ctx context.Context, sess Session) (Session, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	now := time.Now().UTC()
	crs := Course{
		UUID:          uuid.New(),
		Title:         nc.Title,
		Subtitle:      nc.Subtitle,
		Description:   nc.Description,
		DurationHours: nc.DurationHours,
		Price:         nc.Price,
		Language:      nc.Language,
		Level:         nc.Level,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) GetCourse(ctx context.Context, id uuid.UUID) (Course, error) {
	return svc.repo.GetCourseByUUID(ctx, id)
}

// CreateSession clones a session off a course template. Every
// overridable field starts inherited (NULL).
func (svc *Service) CreateSession(ctx context.Context, courseUUID uuid.UUID, ns NewSession) (Session, error) {
	if _, err := svc.repo.GetCourseByUUID(ctx, courseUUID); err != nil {
		return Session{}, err
	}
	now := time.Now().UTC()
	sess := Session{
		UUID:       uuid.New(),
		CourseUUID: courseUUID,
		Reference:  ns.Reference,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateSession(ctx, sess)
}

// GetEffective returns the override-resolved view of a session.
func (svc *Service) GetEffective(ctx context.Context, sessionUUID uuid.UUID) (EffectiveSession, error) {
	sess, crs, err := svc.load(ctx, sessionUUID)
	if err != nil {
		return EffectiveSession{}, err
	}
	return NewOverrideSet(crs, sess).Resolve(sess), nil
}

// SetOverride writes a local value for one field and returns the new
// effective view. Last write wins; no per-field version check.
func (svc *Service) SetOverride(ctx context.Context, sessionUUID uuid.UUID, field string, value interface{}) (EffectiveSession, error) {
	sess, crs, err := svc.load(ctx, sessionUUID)
	if err != nil {
		return EffectiveSession{}, err
	}

	set := NewOverrideSet(crs, sess)
	if err = set.Set(field, value); err != nil {
		return EffectiveSession{}, err
	}
	sess, err = svc.saveOverrides(ctx, set, sess)
	if err != nil {
		return EffectiveSession{}, err
	}
	return set.Resolve(sess), nil
}

// ResetOverride reverts one field to inherited.
func (svc *Service) ResetOverride(ctx context.Context, sessionUUID uuid.UUID, field string) (EffectiveSession, error) {
	sess, crs, err := svc.load(ctx, sessionUUID)
	if err != nil {
		return EffectiveSession{}, err
	}

	set := NewOverrideSet(crs, sess)
	if err = set.ResetOne(field); err != nil {
		return EffectiveSession{}, err
	}
	sess, err = svc.saveOverrides(ctx, set, sess)
	if err != nil {
		return EffectiveSession{}, err
	}
	return set.Resolve(sess), nil
}

// ResetAllOverrides reverts every field to inherited in one write.
func (svc *Service) ResetAllOverrides(ctx context.Context, sessionUUID uuid.UUID) (EffectiveSession, error) {
	sess, crs, err := svc.load(ctx, sessionUUID)
	if err != nil {
		return EffectiveSession{}, err
	}

	set := NewOverrideSet(crs, sess)
	set.ResetAll()
	sess, err = svc.saveOverrides(ctx, set, sess)
	if err != nil {
		return EffectiveSession{}, err
	}
	return set.Resolve(sess), nil
}

func (svc *Service) load(ctx context.Context, sessionUUID uuid.UUID) (Session, Course, error) {
	sess, err := svc.repo.GetSessionByUUID(ctx, sessionUUID)
	if err != nil {
		return Session{}, Course{}, err
	}
	crs, err := svc.repo.GetCourseByUUID(ctx, sess.CourseUUID)
	if err != nil {
		return Session{}, Course{}, err
	}
	return sess, crs, nil
}

func (svc *Service) saveOverrides(ctx context.Context, set *OverrideSet, sess Session) (Session, error) {
	set.Apply(&sess)
	sess.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSessionOverrides(ctx, sess)
}
