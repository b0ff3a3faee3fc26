// Package inmemdb provides in-memory Repository implementations used by
// tests and local development without a running MongoDB.
package inmemdb

import (
	"sync"

	"github.com/elimuhub/elimu/core/catalog"
	"github.com/elimuhub/elimu/core/enroll"
	"github.com/elimuhub/elimu/core/user"
)

type DB struct {
	mu sync.RWMutex

	users       map[string]user.User // keyed by ID
	courses     map[string]catalog.Course
	modules     map[string]catalog.Module
	videos      map[string]catalog.Video
	enrollments map[string]enroll.Enrollment
	accesses    map[string]enroll.CourseAccess
}

func Open() *DB {
	return &DB{
		users:       make(map[string]user.User),
		courses:     make(map[string]catalog.Course),
		modules:     make(map[string]catalog.Module),
		videos:      make(map[string]catalog.Video),
		enrollments: make(map[string]enroll.Enrollment),
		accesses:    make(map[string]enroll.CourseAccess),
	}
}
