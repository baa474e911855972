package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mabroukmoatez/formly/core/course"
	"github.com/mabroukmoatez/formly/core/session"
)

// CreateCourse inserts a course template fixture.
func CreateCourse(t *testing.T, repo course.Repository, title string, durationHours int, price float64) course.Course {
	t.Helper()
	now := time.Now().UTC()
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		UUID:          uuid.New(),
		Title:         title,
		Subtitle:      "Les fondamentaux",
		DurationHours: durationHours,
		Price:         price,
		Language:      "fr",
		Level:         "debutant",
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		t.Fatalf("CreateCourse(): %v", err)
	}
	return crs
}

// CreateSession clones a session fixture off a course; all overridable
// fields start inherited.
func CreateSession(t *testing.T, repo course.Repository, crs course.Course, reference string) course.Session {
	t.Helper()
	now := time.Now().UTC()
	sess, err := repo.CreateSession(context.Background(), course.Session{
		UUID:       uuid.New(),
		CourseUUID: crs.UUID,
		Reference:  reference,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateSession(): %v", err)
	}
	return sess
}

// CreateInstance inserts a single scheduled presentiel instance fixture.
func CreateInstance(t *testing.T, repo session.Repository, sessionUUID uuid.UUID, date session.Date, start, end string, maxParticipants int) session.Instance {
	t.Helper()
	startTime, err := session.ParseClockTime(start)
	if err != nil {
		t.Fatalf("ParseClockTime(%q): %v", start, err)
	}
	endTime, err := session.ParseClockTime(end)
	if err != nil {
		t.Fatalf("ParseClockTime(%q): %v", end, err)
	}

	now := time.Now().UTC()
	inst := session.Instance{
		UUID:            uuid.New(),
		SessionUUID:     sessionUUID,
		Type:            session.TypePresentiel,
		Date:            date,
		StartTime:       startTime,
		EndTime:         endTime,
		DurationMinutes: endTime.Sub(startTime),
		Status:          session.StatusScheduled,
		Presentiel:      &session.PresentielDetails{Address: "5 av. de l'Opera", City: "Paris"},
		MaxParticipants: maxParticipants,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := repo.CreateInstances(context.Background(), []session.Instance{inst}); err != nil {
		t.Fatalf("CreateInstances(): %v", err)
	}
	return inst
}
