package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/mabroukmoatez/formly/core"
	"github.com/mabroukmoatez/formly/core/session"
)

type instanceRow struct {
	UUID                uuid.UUID         `db:"uuid"`
	SessionUUID         uuid.UUID         `db:"session_uuid"`
	Type                string            `db:"instance_type"`
	Date                session.Date      `db:"start_date"`
	StartTime           session.ClockTime `db:"start_time"`
	EndTime             session.ClockTime `db:"end_time"`
	DurationMinutes     int               `db:"duration_minutes"`
	TimeSlot            string            `db:"time_slot"`
	Status              string            `db:"status"`
	IsCancelled         bool              `db:"is_cancelled"`
	CancellationReason  null.String       `db:"cancellation_reason"`
	Presentiel          []byte            `db:"presentiel"`
	Distanciel          []byte            `db:"distanciel"`
	Elearning           []byte            `db:"elearning"`
	MaxParticipants     int               `db:"max_participants"`
	CurrentParticipants int               `db:"current_participants"`
	CreatedAt           time.Time         `db:"created_at"`
	UpdatedAt           time.Time         `db:"updated_at"`
}

func newInstanceRow(inst session.Instance) (instanceRow, error) {
	row := instanceRow{
		UUID:                inst.UUID,
		SessionUUID:         inst.SessionUUID,
		Type:                inst.Type,
		Date:                inst.Date,
		StartTime:           inst.StartTime,
		EndTime:             inst.EndTime,
		DurationMinutes:     inst.DurationMinutes,
		TimeSlot:            inst.TimeSlot,
		Status:              inst.Status,
		IsCancelled:         inst.IsCancelled,
		MaxParticipants:     inst.MaxParticipants,
		CurrentParticipants: inst.CurrentParticipants,
		CreatedAt:           inst.CreatedAt,
		UpdatedAt:           inst.UpdatedAt,
	}
	if inst.CancellationReason != "" {
		row.CancellationReason = null.StringFrom(inst.CancellationReason)
	}

	var err error
	if inst.Presentiel != nil {
		if row.Presentiel, err = json.Marshal(inst.Presentiel); err != nil {
			return instanceRow{}, errors.Wrap(err, "encoding presentiel payload")
		}
	}
	if inst.Distanciel != nil {
		if row.Distanciel, err = json.Marshal(inst.Distanciel); err != nil {
			return instanceRow{}, errors.Wrap(err, "encoding distanciel payload")
		}
	}
	if inst.Elearning != nil {
		if row.Elearning, err = json.Marshal(inst.Elearning); err != nil {
			return instanceRow{}, errors.Wrap(err, "encoding e-learning payload")
		}
	}
	return row, nil
}

func (row instanceRow) toInstance() (session.Instance, error) {
	inst := session.Instance{
		UUID:                row.UUID,
		SessionUUID:         row.SessionUUID,
		Type:                row.Type,
		Date:                row.Date,
		StartTime:           row.StartTime,
		EndTime:             row.EndTime,
		DurationMinutes:     row.DurationMinutes,
		TimeSlot:            row.TimeSlot,
		Status:              row.Status,
		IsCancelled:         row.IsCancelled,
		CancellationReason:  row.CancellationReason.String,
		MaxParticipants:     row.MaxParticipants,
		CurrentParticipants: row.CurrentParticipants,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
	if row.Presentiel != nil {
		inst.Presentiel = new(session.PresentielDetails)
		if err := json.Unmarshal(row.Presentiel, inst.Presentiel); err != nil {
			return session.Instance{}, errors.Wrap(err, "decoding presentiel payload")
		}
	}
	if row.Distanciel != nil {
		inst.Distanciel = new(session.DistancielDetails)
		if err := json.Unmarshal(row.Distanciel, inst.Distanciel); err != nil {
			return session.Instance{}, errors.Wrap(err, "decoding distanciel payload")
		}
	}
	if row.Elearning != nil {
		inst.Elearning = new(session.ElearningDetails)
		if err := json.Unmarshal(row.Elearning, inst.Elearning); err != nil {
			return session.Instance{}, errors.Wrap(err, "decoding e-learning payload")
		}
	}
	return inst, nil
}

const insertInstanceQuery = `
INSERT INTO session_instances (
	uuid, session_uuid, instance_type, start_date, start_time, end_time,
	duration_minutes, time_slot, status, is_cancelled, cancellation_reason,
	presentiel, distanciel, elearning, max_participants, current_participants,
	created_at, updated_at
) VALUES (
	:uuid, :session_uuid, :instance_type, :start_date, :start_time, :end_time,
	:duration_minutes, :time_slot, :status, :is_cancelled, :cancellation_reason,
	:presentiel, :distanciel, :elearning, :max_participants, :current_participants,
	:created_at, :updated_at
)`

const updateInstanceQuery = `
UPDATE session_instances SET
	status = :status,
	is_cancelled = :is_cancelled,
	cancellation_reason = :cancellation_reason,
	current_participants = :current_participants,
	updated_at = :updated_at
WHERE uuid = :uuid`

type instanceRepository struct {
	db *sqlx.DB
}

var _ session.Repository = (*instanceRepository)(nil)

func NewInstanceRepository(db *sql.DB) *instanceRepository {
	return &instanceRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo *instanceRepository) CreateInstances(ctx context.Context, instances []session.Instance) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	// one statement per row, in generation order, so list views keep
	// the date-then-slot ordering without a secondary sort
	for i, inst := range instances {
		row, err := newInstanceRow(inst)
		if err != nil {
			return errors.Wrapf(err, "instance %d of %d", i+1, len(instances))
		}
		if _, err = tx.NamedExecContext(ctx, insertInstanceQuery, row); err != nil {
			return errors.Wrapf(err, "inserting instance %d of %d", i+1, len(instances))
		}
	}
	return errors.Wrap(tx.Commit(), "committing batch")
}

func (repo *instanceRepository) GetInstanceByUUID(ctx context.Context, id uuid.UUID) (session.Instance, error) {
	var row instanceRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM session_instances WHERE uuid = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Instance{}, session.ErrNotFound
		}
		return session.Instance{}, errors.Wrap(err, "getting instance")
	}
	return row.toInstance()
}

// columns exposed to the `ordering` query param
var orderableColumns = map[string]bool{
	"start_date": true,
	"start_time": true,
	"end_time":   true,
	"status":     true,
	"created_at": true,
}

func (repo *instanceRepository) QueryInstancesBySession(ctx context.Context, sessionID uuid.UUID, ordering []core.DBOrdering) ([]session.Instance, error) {
	orderList := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		if orderableColumns[ord.Field] {
			orderList = append(orderList, ord.String())
		}
	}
	if len(orderList) == 0 {
		orderList = append(orderList, "start_date ASC, start_time ASC")
	}
	orderList = append(orderList, "uuid ASC") // stable tie-break

	var rows []instanceRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM session_instances WHERE session_uuid = $1 ORDER BY `+strings.Join(orderList, ", "), sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying instances")
	}

	instances := make([]session.Instance, 0, len(rows))
	for _, row := range rows {
		inst, err := row.toInstance()
		if err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, nil
}

func (repo *instanceRepository) UpdateInstance(ctx context.Context, inst session.Instance) (session.Instance, error) {
	row, err := newInstanceRow(inst)
	if err != nil {
		return session.Instance{}, err
	}
	res, err := repo.db.NamedExecContext(ctx, updateInstanceQuery, row)
	if err != nil {
		return session.Instance{}, errors.Wrap(err, "updating instance")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return session.Instance{}, errors.Wrap(err, "updating instance")
	}
	if n == 0 {
		return session.Instance{}, session.ErrNotFound
	}
	return inst, nil
}

func (repo *instanceRepository) MarkInstancesCompleted(ctx context.Context, before session.Date) (int, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE session_instances SET status = $1, updated_at = $2 WHERE start_date < $3 AND status IN ($4, $5)`,
		session.StatusCompleted, time.Now().UTC(), before, session.StatusScheduled, session.StatusOngoing)
	if err != nil {
		return 0, errors.Wrap(err, "marking instances completed")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "marking instances completed")
	}
	return int(n), nil
}
