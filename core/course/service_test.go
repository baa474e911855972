package course

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type fakeRepo struct {
	courses  map[uuid.UUID]*Course
	sessions map[uuid.UUID]*Session
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		courses:  make(map[uuid.UUID]*Course),
		sessions: make(map[uuid.UUID]*Session),
	}
}

func (repo *fakeRepo) CreateCourse(_ context.Context, crs Course) (Course, error) {
	repo.courses[crs.UUID] = &crs
	return crs, nil
}

func (repo *fakeRepo) GetCourseByUUID(_ context.Context, id uuid.UUID) (Course, error) {
	if crs, ok := repo.courses[id]; ok {
		return *crs, nil
	}
	return Course{}, ErrNotFound
}

func (repo *fakeRepo) CreateSession(_ context.Context, sess Session) (Session, error) {
	repo.sessions[sess.UUID] = &sess
	return sess, nil
}

func (repo *fakeRepo) GetSessionByUUID(_ context.Context, id uuid.UUID) (Session, error) {
	if sess, ok := repo.sessions[id]; ok {
		return *sess, nil
	}
	return Session{}, ErrSessionNotFound
}

func (repo *fakeRepo) UpdateSessionOverrides(_ context.Context, sess Session) (Session, error) {
	if _, ok := repo.sessions[sess.UUID]; !ok {
		return Session{}, ErrSessionNotFound
	}
	repo.sessions[sess.UUID] = &sess
	return sess, nil
}

func newTestCourseService(t *testing.T) (*Service, Course, Session) {
	t.Helper()
	svc := NewService(newFakeRepo())

	crs, err := svc.CreateCourse(context.Background(), NewCourse{
		Title:         "Gestion de projet",
		Subtitle:      "Les fondamentaux",
		DurationHours: 35,
		Price:         1200,
		Language:      "fr",
		Level:         "debutant",
	})
	if err != nil {
		t.Fatalf("CreateCourse(): %v", err)
	}

	sess, err := svc.CreateSession(context.Background(), crs.UUID, NewSession{Reference: "GP-2024-01"})
	if err != nil {
		t.Fatalf("CreateSession(): %v", err)
	}
	return svc, crs, sess
}

func TestService_CreateSession(t *testing.T) {
	svc, crs, sess := newTestCourseService(t)

	if sess.CourseUUID != crs.UUID {
		t.Errorf("CourseUUID = %v, want %v", sess.CourseUUID, crs.UUID)
	}
	// every overridable field starts inherited
	if sess.Title.Valid || sess.Subtitle.Valid || sess.Description.Valid ||
		sess.DurationHours.Valid || sess.Price.Valid || sess.Language.Valid || sess.Level.Valid {
		t.Errorf("fresh session carries local values: %+v", sess)
	}

	t.Run("unknown course", func(t *testing.T) {
		_, err := svc.CreateSession(context.Background(), uuid.New(), NewSession{Reference: "X"})
		if err != ErrNotFound {
			t.Errorf("CreateSession() error = %v, want ErrNotFound", err)
		}
	})
}

func TestService_GetEffective(t *testing.T) {
	svc, crs, sess := newTestCourseService(t)

	eff, err := svc.GetEffective(context.Background(), sess.UUID)
	if err != nil {
		t.Fatalf("GetEffective(): %v", err)
	}
	if eff.Title != crs.Title || eff.Price != crs.Price || eff.DurationHours != crs.DurationHours {
		t.Errorf("effective view does not inherit the template: %+v", eff)
	}
	for field, overridden := range eff.Overridden {
		if overridden {
			t.Errorf("fresh session: %s marked overridden", field)
		}
	}

	t.Run("unknown session", func(t *testing.T) {
		_, err := svc.GetEffective(context.Background(), uuid.New())
		if err != ErrSessionNotFound {
			t.Errorf("GetEffective() error = %v, want ErrSessionNotFound", err)
		}
	})
}

func TestService_overrideFlow(t *testing.T) {
	svc, crs, sess := newTestCourseService(t)
	ctx := context.Background()

	eff, err := svc.SetOverride(ctx, sess.UUID, FieldPrice, 999.0)
	if err != nil {
		t.Fatalf("SetOverride(): %v", err)
	}
	if eff.Price != 999 {
		t.Errorf("eff.Price = %v, want 999", eff.Price)
	}
	if !eff.Overridden[FieldPrice] {
		t.Error("price not marked overridden")
	}
	if eff.Title != crs.Title {
		t.Errorf("eff.Title = %q, want inherited %q", eff.Title, crs.Title)
	}

	// the write survives a reload
	eff, err = svc.GetEffective(ctx, sess.UUID)
	if err != nil {
		t.Fatalf("GetEffective(): %v", err)
	}
	if eff.Price != 999 || !eff.Overridden[FieldPrice] {
		t.Errorf("override not persisted: %+v", eff)
	}

	t.Run("unknown field suggests", func(t *testing.T) {
		_, err := svc.SetOverride(ctx, sess.UUID, "pricee", 1.0)
		ufErr, ok := err.(*UnknownFieldError)
		if !ok {
			t.Fatalf("error = %v (%T), want *UnknownFieldError", err, err)
		}
		if ufErr.Suggestion != FieldPrice {
			t.Errorf("Suggestion = %q, want %q", ufErr.Suggestion, FieldPrice)
		}
	})

	t.Run("reset one", func(t *testing.T) {
		eff, err := svc.ResetOverride(ctx, sess.UUID, FieldPrice)
		if err != nil {
			t.Fatalf("ResetOverride(): %v", err)
		}
		if eff.Price != crs.Price || eff.Overridden[FieldPrice] {
			t.Errorf("price not reverted to inherited: %+v", eff)
		}
	})

	t.Run("reset all", func(t *testing.T) {
		if _, err := svc.SetOverride(ctx, sess.UUID, FieldTitle, "local"); err != nil {
			t.Fatalf("SetOverride(): %v", err)
		}
		if _, err := svc.SetOverride(ctx, sess.UUID, FieldLevel, "avance"); err != nil {
			t.Fatalf("SetOverride(): %v", err)
		}

		eff, err := svc.ResetAllOverrides(ctx, sess.UUID)
		if err != nil {
			t.Fatalf("ResetAllOverrides(): %v", err)
		}
		for field, overridden := range eff.Overridden {
			if overridden {
				t.Errorf("%s still overridden after reset all", field)
			}
		}
		if eff.Title != crs.Title || eff.Level != crs.Level {
			t.Errorf("effective view not back to template: %+v", eff)
		}
	})
}
