// Package inmemdb provides map-backed repositories used by tests and
// local development. Safe for concurrent use.
package inmemdb

import (
	"sync"

	"github.com/shulesys/shule/core/school"
	"github.com/shulesys/shule/core/user"
)

type link struct{ left, right int }

type DB struct {
	mutex sync.RWMutex

	users map[string]*user.User // keyed by ID

	teachers  map[int]*school.Teacher
	students  map[int]*school.Student
	employees map[int]*school.Employee
	subjects  map[int]*school.Subject
	courses   map[int]*school.Course
	classes   map[int]*school.SchoolClass
	payments  map[int]*school.Payment

	teacherSubjects []link // teacher -> subject
	teacherClasses  []link // teacher -> school class
	courseSubjects  []link // course -> subject

	pkCount int
}

func NewDB() *DB {
	return &DB{
		users:     make(map[string]*user.User),
		teachers:  make(map[int]*school.Teacher),
		students:  make(map[int]*school.Student),
		employees: make(map[int]*school.Employee),
		subjects:  make(map[int]*school.Subject),
		courses:   make(map[int]*school.Course),
		classes:   make(map[int]*school.SchoolClass),
		payments:  make(map[int]*school.Payment),
	}
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK() int {
	db.pkCount++
	return db.pkCount
}
