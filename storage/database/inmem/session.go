// Package inmemstore keeps sessions in memory, for tests and single-process deployments.
package inmemstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skillflow360/skillflow/core/session"
)

type sessionStore struct {
	mutex sync.RWMutex
	table map[string]session.Identity
	now   func() time.Time
}

var _ session.Store = (*sessionStore)(nil)

func NewSessionStore() *sessionStore {
	return &sessionStore{
		table: make(map[string]session.Identity),
		now:   time.Now,
	}
}

func (s *sessionStore) Save(_ context.Context, ident session.Identity) (session.Identity, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if ident.ID == "" {
		ident.ID = uuid.New().String()
	}
	if ident.CreatedAt.IsZero() {
		ident.CreatedAt = s.now().UTC()
	}
	s.table[ident.ID] = ident
	return ident, nil
}

func (s *sessionStore) Get(_ context.Context, id string) (session.Identity, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ident, ok := s.table[id]
	if !ok || ident.Expired(s.now()) {
		return session.Identity{}, session.ErrNotFound
	}
	return ident, nil
}

func (s *sessionStore) Delete(_ context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.table, id)
	return nil
}

func (s *sessionStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var n int64
	for id, ident := range s.table {
		if ident.Expired(now) {
			delete(s.table, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *sessionStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.table)
}
