// Package session holds the authenticated identity of a user of the front-end.
//
// An Identity is created at login, removed at logout and read on every request.
// It is passed explicitly to whatever needs it (most notably the REST client); there is no global session.
package session

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Fallbacks used when the identity lacks the student attributes.
const (
	DefaultStudentLevel = "L3"
	DefaultDisplayName  = "Student"
)

var (
	ErrNotFound    = errors.New("session not found")
	ErrInvalidRole = errors.New("invalid role")
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStudent Role = "STUDENT"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// ParseRole parses a role case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", errors.Wrapf(ErrInvalidRole, "%q", s)
	}
	return r, nil
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	role, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = role
	return nil
}

// Identity is what the front-end knows about the signed-in user.
type Identity struct {
	ID           string    `json:"-" yaml:"-"`
	Token        string    `json:"-" yaml:"token"`
	Role         Role      `json:"role" yaml:"role"`
	UserID       int64     `json:"userId" yaml:"userId"`
	FullName     string    `json:"fullName" yaml:"fullName"`
	Email        string    `json:"email" yaml:"email"`
	StudentLevel string    `json:"studentLevel,omitempty" yaml:"studentLevel,omitempty"`
	CreatedAt    time.Time `json:"-" yaml:"createdAt"`
	ExpiresAt    time.Time `json:"-" yaml:"expiresAt"`
}

func (i Identity) Authenticated() bool { return i.Token != "" }
func (i Identity) IsAdmin() bool       { return i.Role == RoleAdmin }
func (i Identity) IsStudent() bool     { return i.Role == RoleStudent }

// Level is the student's level tier, DefaultStudentLevel when unknown.
func (i Identity) Level() string {
	if lvl := strings.TrimSpace(i.StudentLevel); lvl != "" {
		return lvl
	}
	return DefaultStudentLevel
}

func (i Identity) DisplayName() string {
	if name := strings.TrimSpace(i.FullName); name != "" {
		return name
	}
	return DefaultDisplayName
}

// Expired reports whether the identity is past its expiry. A zero expiry never expires.
func (i Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}
