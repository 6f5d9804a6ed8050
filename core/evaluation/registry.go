package evaluation

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var ErrAttemptNotFound = errors.New("attempt not found")

type registryEntry struct {
	owner   string
	attempt *Attempt
}

// Registry keeps the attempts in progress on the server, each owned by one session.
// Attempts idle for longer than the TTL are closed and forgotten.
type Registry struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	attempts map[string]registryEntry // {attempt id: entry}
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		ttl:      ttl,
		now:      time.Now,
		attempts: make(map[string]registryEntry),
	}
}

// Add registers the attempt under the owner's session id.
func (r *Registry) Add(owner string, a *Attempt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[a.ID] = registryEntry{owner: owner, attempt: a}
}

// Get returns the attempt if it exists, belongs to owner and is not idle past the TTL.
func (r *Registry) Get(owner, id string) (*Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.attempts[id]
	if !ok || entry.owner != owner {
		return nil, ErrAttemptNotFound
	}
	if r.expired(entry.attempt) {
		delete(r.attempts, id)
		entry.attempt.Close()
		return nil, ErrAttemptNotFound
	}
	return entry.attempt, nil
}

// Remove closes and forgets the attempt.
func (r *Registry) Remove(owner, id string) error {
	r.mu.Lock()
	entry, ok := r.attempts[id]
	if !ok || entry.owner != owner {
		r.mu.Unlock()
		return ErrAttemptNotFound
	}
	delete(r.attempts, id)
	r.mu.Unlock()

	entry.attempt.Close()
	return nil
}

// RemoveOwner closes every attempt of the owner, ex: at logout.
func (r *Registry) RemoveOwner(owner string) int {
	r.mu.Lock()
	var closed []*Attempt
	for id, entry := range r.attempts {
		if entry.owner == owner {
			closed = append(closed, entry.attempt)
			delete(r.attempts, id)
		}
	}
	r.mu.Unlock()

	for _, a := range closed {
		a.Close()
	}
	return len(closed)
}

// Sweep closes the expired attempts and returns how many were evicted.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	var expired []*Attempt
	for id, entry := range r.attempts {
		if r.expired(entry.attempt) {
			expired = append(expired, entry.attempt)
			delete(r.attempts, id)
		}
	}
	r.mu.Unlock()

	for _, a := range expired {
		a.Close()
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done, then closes all remaining attempts.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.attempts)
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	entries := r.attempts
	r.attempts = make(map[string]registryEntry)
	r.mu.Unlock()

	for _, entry := range entries {
		entry.attempt.Close()
	}
}

func (r *Registry) expired(a *Attempt) bool {
	return r.ttl > 0 && r.now().Sub(a.LastUsed()) > r.ttl
}
