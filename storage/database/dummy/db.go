// Package dummydb is an in-memory implementation of the repositories, used in tests and
// for local runs without a database.
package dummydb

import (
	"sync"

	"github.com/trezcool/academia/core/catalog"
	"github.com/trezcool/academia/core/comment"
	"github.com/trezcool/academia/core/profile"
	"github.com/trezcool/academia/core/progress"
)

type (
	DB struct {
		profile  *profileTable
		catalog  *catalogTable
		progress *progressTable
		comment  *commentTable
		faults   *faults
	}

	profileTable struct {
		sync.RWMutex
		table map[string]*profile.Profile
	}

	catalogTable struct {
		sync.RWMutex
		categories map[string]*catalog.Category
		lessons    map[string]*catalog.Lesson
	}

	progressTable struct {
		sync.RWMutex
		table map[progressKey]*progress.Progress
	}

	progressKey struct {
		userID   string
		lessonID string
	}

	commentTable struct {
		sync.RWMutex
		table map[string]*comment.Comment
		seq   map[string]int64 // insertion order, by comment ID
		next  int64
	}

	faults struct {
		sync.RWMutex
		read  error
		write error
	}
)

func Open() *DB {
	return &DB{
		profile:  &profileTable{table: make(map[string]*profile.Profile)},
		catalog:  &catalogTable{categories: make(map[string]*catalog.Category), lessons: make(map[string]*catalog.Lesson)},
		progress: &progressTable{table: make(map[progressKey]*progress.Progress)},
		comment:  &commentTable{table: make(map[string]*comment.Comment), seq: make(map[string]int64)},
		faults:   &faults{},
	}
}

// FailReads makes every subsequent read return err. A nil err restores normal behaviour.
func (db *DB) FailReads(err error) {
	db.faults.Lock()
	defer db.faults.Unlock()
	db.faults.read = err
}

// FailWrites makes every subsequent write return err. A nil err restores normal behaviour.
func (db *DB) FailWrites(err error) {
	db.faults.Lock()
	defer db.faults.Unlock()
	db.faults.write = err
}

func (f *faults) readErr() error {
	f.RLock()
	defer f.RUnlock()
	return f.read
}

func (f *faults) writeErr() error {
	f.RLock()
	defer f.RUnlock()
	return f.write
}
