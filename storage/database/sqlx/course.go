package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"
	"github.com/pkg/errors"

	"github.com/mabroukmoatez/formly/core/course"
)

const insertCourseQuery = `
INSERT INTO courses (
	uuid, title, subtitle, description, duration_hours, price, language, level,
	created_at, updated_at
) VALUES (
	:uuid, :title, :subtitle, :description, :duration_hours, :price, :language, :level,
	:created_at, :updated_at
)`

const insertSessionQuery = `
INSERT INTO sessions (
	uuid, course_uuid, reference, title, subtitle, description, duration_hours,
	price, language, level, created_at, updated_at
) VALUES (
	:uuid, :course_uuid, :reference, :title, :subtitle, :description, :duration_hours,
	:price, :language, :level, :created_at, :updated_at
)`

// one statement rewrites the whole overridable column set; ResetAll is
// a single UPDATE, not N
const updateSessionOverridesQuery = `
UPDATE sessions SET
	title = :title,
	subtitle = :subtitle,
	description = :description,
	duration_hours = :duration_hours,
	price = :price,
	language = :language,
	level = :level,
	updated_at = :updated_at
WHERE uuid = :uuid`

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sql.DB) *courseRepository {
	xdb := sqlx.NewDb(db, "postgres")
	// course/session columns are named after the models' json tags
	xdb.Mapper = reflectx.NewMapperFunc("json", strings.ToLower)
	return &courseRepository{db: xdb}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	if _, err := repo.db.NamedExecContext(ctx, insertCourseQuery, crs); err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByUUID(ctx context.Context, id uuid.UUID) (course.Course, error) {
	var crs course.Course
	err := repo.db.GetContext(ctx, &crs, `SELECT * FROM courses WHERE uuid = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return crs, nil
}

func (repo *courseRepository) CreateSession(ctx context.Context, sess course.Session) (course.Session, error) {
	if _, err := repo.db.NamedExecContext(ctx, insertSessionQuery, sess); err != nil {
		return course.Session{}, errors.Wrap(err, "inserting session")
	}
	return sess, nil
}

func (repo *courseRepository) GetSessionByUUID(ctx context.Context, id uuid.UUID) (course.Session, error) {
	var sess course.Session
	err := repo.db.GetContext(ctx, &sess, `SELECT * FROM sessions WHERE uuid = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return course.Session{}, course.ErrSessionNotFound
		}
		return course.Session{}, errors.Wrap(err, "getting session")
	}
	return sess, nil
}

func (repo *courseRepository) UpdateSessionOverrides(ctx context.Context, sess course.Session) (course.Session, error) {
	res, err := repo.db.NamedExecContext(ctx, updateSessionOverridesQuery, sess)
	if err != nil {
		return course.Session{}, errors.Wrap(err, "updating session overrides")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return course.Session{}, errors.Wrap(err, "updating session overrides")
	}
	if n == 0 {
		return course.Session{}, course.ErrSessionNotFound
	}
	return sess, nil
}
