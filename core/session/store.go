package session

import (
	"context"
	"time"
)

// Store persists identities between requests.
type Store interface {
	// Save stores the identity, assigning its ID when empty.
	Save(ctx context.Context, ident Identity) (Identity, error)
	// Get returns ErrNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (Identity, error)
	Delete(ctx context.Context, id string) error
	// PurgeExpired deletes sessions expired at `now` and returns how many were removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
