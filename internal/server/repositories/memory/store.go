// Package memory is a process-local implementation of the user and document
// repositories plus the transaction seam. It backs STORAGE=memory runs and
// the service and transport tests.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"maps"
	"sync"

	"github.com/dmitrijs2005/textify/internal/dbx"
	"github.com/dmitrijs2005/textify/internal/server/models"
	"github.com/dmitrijs2005/textify/internal/server/repositories/documents"
	"github.com/dmitrijs2005/textify/internal/server/repositories/users"
)

var errNoSQL = errors.New("memory store does not execute SQL")

// conn is the DBTX the store hands out. It executes nothing; repositories use
// it only to learn whether they run inside WithTx.
type conn struct {
	inTx bool
}

func (conn) ExecContext(context.Context, string, ...any) (sql.Result, error) { return nil, errNoSQL }

func (conn) QueryContext(context.Context, string, ...any) (*sql.Rows, error) { return nil, errNoSQL }

func (conn) QueryRowContext(context.Context, string, ...any) *sql.Row { return nil }

func inTx(db dbx.DBTX) bool {
	c, ok := db.(conn)
	return ok && c.inTx
}

// Store holds all data in maps. Plain operations share the gate; WithTx takes
// it exclusively so a rolled-back transaction never discards concurrent writes.
type Store struct {
	gate sync.RWMutex
	mu   sync.Mutex

	users map[string]*models.User
	docs  map[string]*models.Document
}

func NewStore() *Store {
	return &Store{
		users: make(map[string]*models.User),
		docs:  make(map[string]*models.Document),
	}
}

// RunMigrations is a no-op; the maps need no schema.
func (s *Store) RunMigrations(context.Context, *sql.DB) error { return nil }

func (s *Store) Users(db dbx.DBTX) users.Repository {
	return &userRepository{store: s, inTx: inTx(db)}
}

func (s *Store) Documents(db dbx.DBTX) documents.Repository {
	return &documentRepository{store: s, inTx: inTx(db)}
}

func (s *Store) Conn() dbx.DBTX { return conn{} }

// WithTx runs fn exclusively and restores the previous state if fn fails or
// panics.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) (err error) {
	s.gate.Lock()
	defer s.gate.Unlock()

	s.mu.Lock()
	savedUsers, savedDocs := s.snapshot()
	s.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(savedUsers, savedDocs)
			panic(p)
		}
		if err != nil {
			s.restore(savedUsers, savedDocs)
		}
	}()

	return fn(ctx, conn{inTx: true})
}

// lock acquires the store for one repository call.
func (s *Store) lock(tx bool) func() {
	if !tx {
		s.gate.RLock()
	}
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		if !tx {
			s.gate.RUnlock()
		}
	}
}

func (s *Store) snapshot() (map[string]*models.User, map[string]*models.Document) {
	u := make(map[string]*models.User, len(s.users))
	for id, user := range s.users {
		u[id] = copyUser(user)
	}
	d := make(map[string]*models.Document, len(s.docs))
	for id, doc := range s.docs {
		c := *doc
		d[id] = &c
	}
	return u, d
}

func (s *Store) restore(u map[string]*models.User, d map[string]*models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = u
	s.docs = d
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Settings = maps.Clone(u.Settings)
	if c.Settings == nil {
		c.Settings = map[string]any{}
	}
	return &c
}
