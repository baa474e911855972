package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/mabroukmoatez/formly/core/course"
)

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.courses[crs.UUID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourseByUUID(_ context.Context, id uuid.UUID) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) CreateSession(_ context.Context, sess course.Session) (course.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.sessions[sess.UUID] = &sess
	return sess, nil
}

func (repo *courseRepository) GetSessionByUUID(_ context.Context, id uuid.UUID) (course.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sess, ok := repo.db.sessions[id]; ok {
		return *sess, nil
	}
	return course.Session{}, course.ErrSessionNotFound
}

func (repo *courseRepository) UpdateSessionOverrides(_ context.Context, sess course.Session) (course.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.sessions[sess.UUID]; !ok {
		return course.Session{}, course.ErrSessionNotFound
	}
	repo.db.sessions[sess.UUID] = &sess
	return sess, nil
}
