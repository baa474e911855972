package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mabroukmoatez/formly/core"
	"github.com/mabroukmoatez/formly/core/session"
)

type instanceRepository struct {
	db *instanceTable
}

var _ session.Repository = (*instanceRepository)(nil) // interface compliance check

func NewInstanceRepository(db *DB) session.Repository {
	return &instanceRepository{db: db.instance}
}

func (repo *instanceRepository) CreateInstances(_ context.Context, instances []session.Instance) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for i := range instances {
		inst := instances[i]
		repo.db.table[inst.UUID] = &inst
		repo.db.order = append(repo.db.order, inst.UUID)
	}
	return nil
}

func (repo *instanceRepository) GetInstanceByUUID(_ context.Context, id uuid.UUID) (session.Instance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if inst, ok := repo.db.table[id]; ok {
		return *inst, nil
	}
	return session.Instance{}, session.ErrNotFound
}

func (repo *instanceRepository) QueryInstancesBySession(_ context.Context, sessionID uuid.UUID, ordering []core.DBOrdering) ([]session.Instance, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	instances := make([]session.Instance, 0)
	for _, id := range repo.db.order {
		if inst := repo.db.table[id]; inst.SessionUUID == sessionID {
			instances = append(instances, *inst)
		}
	}
	sort.SliceStable(instances, func(i, j int) bool { return instanceLess(instances[i], instances[j], ordering) })
	return instances, nil
}

func instanceLess(a, b session.Instance, ordering []core.DBOrdering) bool {
	for _, ord := range ordering {
		av, bv := instanceSortKey(a, ord.Field), instanceSortKey(b, ord.Field)
		if av == bv {
			continue
		}
		if ord.Ascending {
			return av < bv
		}
		return av > bv
	}
	// generation order
	if !a.Date.Equal(b.Date.Time) {
		return a.Date.Before(b.Date.Time)
	}
	return a.StartTime < b.StartTime
}

func instanceSortKey(inst session.Instance, field string) string {
	switch field {
	case "start_date":
		return inst.Date.Format("2006-01-02")
	case "start_time":
		return inst.StartTime.String()
	case "end_time":
		return inst.EndTime.String()
	case "status":
		return inst.Status
	case "created_at":
		return inst.CreatedAt.Format(time.RFC3339Nano)
	}
	return ""
}

func (repo *instanceRepository) UpdateInstance(_ context.Context, inst session.Instance) (session.Instance, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[inst.UUID]; !ok {
		return session.Instance{}, session.ErrNotFound
	}
	repo.db.table[inst.UUID] = &inst
	return inst, nil
}

func (repo *instanceRepository) MarkInstancesCompleted(_ context.Context, before session.Date) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	now := time.Now().UTC()
	var count int
	for _, inst := range repo.db.table {
		if !inst.Date.Before(before.Time) {
			continue
		}
		if inst.Status == session.StatusScheduled || inst.Status == session.StatusOngoing {
			inst.Status = session.StatusCompleted
			inst.UpdatedAt = now
			count++
		}
	}
	return count, nil
}
