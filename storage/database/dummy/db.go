package dummydb

import (
	"sync"

	"github.com/schoolmate/backend/core/student"
	"github.com/schoolmate/backend/core/subject"
	"github.com/schoolmate/backend/core/user"
)

type (
	// DB is an in-memory database. Every table keeps its rows in insertion order.
	DB struct {
		user    *userTable
		student *studentTable
		subject *subjectTable
	}

	userTable struct {
		sync.RWMutex
		rows []*user.User
	}

	studentTable struct {
		sync.RWMutex
		rows []*student.Profile
	}

	subjectTable struct {
		sync.RWMutex
		rows    []*subject.Offering
		codeSeq int64
	}
)

func Open() *DB {
	return &DB{
		user:    new(userTable),
		student: new(studentTable),
		subject: new(subjectTable),
	}
}
