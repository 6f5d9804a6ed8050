// Package sqlxstore stores web sessions in PostgreSQL. Tokens are sealed with the application secret key.
package sqlxstore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/skillflow360/skillflow/core/session"
)

const nonceSize = 24

var (
	errUnsealed = errors.New("session token cannot be opened")
	errNoExpiry = errors.New("session without expiry")
)

type sessionRow struct {
	ID           string      `db:"id"`
	Token        []byte      `db:"token"`
	Role         string      `db:"role"`
	UserID       int64       `db:"user_id"`
	FullName     string      `db:"full_name"`
	Email        null.String `db:"email"`
	StudentLevel null.String `db:"student_level"`
	CreatedAt    time.Time   `db:"created_at"`
	ExpiresAt    time.Time   `db:"expires_at"`
}

type sessionStore struct {
	db  *sqlx.DB
	key [32]byte
	now func() time.Time
}

var _ session.Store = (*sessionStore)(nil)

// NewSessionStore returns a session.Store backed by db. secretKey seals the stored tokens.
func NewSessionStore(db *sqlx.DB, secretKey string) *sessionStore {
	return &sessionStore{
		db:  db,
		key: sha256.Sum256([]byte(secretKey)),
		now: time.Now,
	}
}

func (s *sessionStore) seal(token string) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, errors.Wrap(err, "generating nonce")
	}
	return secretbox.Seal(nonce[:], []byte(token), &nonce, &s.key), nil
}

func (s *sessionStore) open(sealed []byte) (string, error) {
	if len(sealed) < nonceSize {
		return "", errUnsealed
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	token, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", errUnsealed
	}
	return string(token), nil
}

func (s *sessionStore) Save(ctx context.Context, ident session.Identity) (session.Identity, error) {
	if ident.ExpiresAt.IsZero() {
		return session.Identity{}, errNoExpiry
	}
	if ident.ID == "" {
		ident.ID = uuid.New().String()
	}
	if ident.CreatedAt.IsZero() {
		ident.CreatedAt = s.now().UTC()
	}
	sealed, err := s.seal(ident.Token)
	if err != nil {
		return session.Identity{}, err
	}

	row := sessionRow{
		ID:           ident.ID,
		Token:        sealed,
		Role:         string(ident.Role),
		UserID:       ident.UserID,
		FullName:     ident.FullName,
		Email:        null.NewString(ident.Email, ident.Email != ""),
		StudentLevel: null.NewString(ident.StudentLevel, ident.StudentLevel != ""),
		CreatedAt:    ident.CreatedAt.UTC(),
		ExpiresAt:    ident.ExpiresAt.UTC(),
	}
	const q = `
		INSERT INTO sessions (id, token, role, user_id, full_name, email, student_level, created_at, expires_at)
		VALUES (:id, :token, :role, :user_id, :full_name, :email, :student_level, :created_at, :expires_at)
		ON CONFLICT (id) DO UPDATE SET
			token = EXCLUDED.token,
			role = EXCLUDED.role,
			full_name = EXCLUDED.full_name,
			email = EXCLUDED.email,
			student_level = EXCLUDED.student_level,
			expires_at = EXCLUDED.expires_at`
	if _, err = s.db.NamedExecContext(ctx, q, row); err != nil {
		return session.Identity{}, errors.Wrap(err, "saving session")
	}
	return ident, nil
}

func (s *sessionStore) Get(ctx context.Context, id string) (session.Identity, error) {
	if _, err := uuid.Parse(id); err != nil {
		return session.Identity{}, session.ErrNotFound
	}

	var row sessionRow
	const q = `SELECT * FROM sessions WHERE id = $1 AND expires_at > $2`
	if err := s.db.GetContext(ctx, &row, q, id, s.now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Identity{}, session.ErrNotFound
		}
		return session.Identity{}, errors.Wrap(err, "getting session")
	}

	token, err := s.open(row.Token)
	if err != nil {
		// sealed with another secret key
		return session.Identity{}, session.ErrNotFound
	}
	role, err := session.ParseRole(row.Role)
	if err != nil {
		return session.Identity{}, err
	}
	return session.Identity{
		ID:           row.ID,
		Token:        token,
		Role:         role,
		UserID:       row.UserID,
		FullName:     row.FullName,
		Email:        row.Email.String,
		StudentLevel: row.StudentLevel.String,
		CreatedAt:    row.CreatedAt,
		ExpiresAt:    row.ExpiresAt,
	}, nil
}

func (s *sessionStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return errors.Wrap(err, "deleting session")
}

func (s *sessionStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "purging sessions")
	}
	return res.RowsAffected()
}
