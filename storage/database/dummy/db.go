package dummydb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mabroukmoatez/formly/core/course"
	"github.com/mabroukmoatez/formly/core/session"
)

type (
	DB struct {
		instance *instanceTable
		course   *courseTable
	}

	instanceTable struct {
		sync.RWMutex
		table map[uuid.UUID]*session.Instance
		order []uuid.UUID // insertion order, per batch semantics
	}

	courseTable struct {
		sync.RWMutex
		courses  map[uuid.UUID]*course.Course
		sessions map[uuid.UUID]*course.Session
	}
)

func Open() (*DB, error) {
	db := &DB{
		instance: &instanceTable{table: make(map[uuid.UUID]*session.Instance)},
		course: &courseTable{
			courses:  make(map[uuid.UUID]*course.Course),
			sessions: make(map[uuid.UUID]*course.Session),
		},
	}
	return db, nil
}
