// Package user signs users in and up against the auth service.
package user

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/core/session"
)

// Credentials are the login form fields.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return validate.Struct(c)
}

// AuthResponse is returned by the auth service on login and registration.
type AuthResponse struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	FullName     string       `json:"fullName"`
	Role         session.Role `json:"role"`
	Token        string       `json:"token"`
	StudentLevel string       `json:"studentLevel,omitempty"`
}

// Verify rejects responses missing the token or the role: no session can be built from them.
func (r AuthResponse) Verify() error {
	if r.Token == "" {
		return errors.New("auth response without token")
	}
	if !r.Role.IsValid() {
		return errors.New("auth response without role")
	}
	return nil
}

// Identity builds the session identity of the authenticated user.
func (r AuthResponse) Identity() session.Identity {
	return session.Identity{
		Token:        r.Token,
		Role:         r.Role,
		UserID:       r.ID,
		FullName:     r.FullName,
		Email:        r.Email,
		StudentLevel: r.StudentLevel,
	}
}

// NewUser contains information needed to register a user.
type NewUser struct {
	FullName        string       `json:"fullName" validate:"required"`
	Email           string       `json:"email" validate:"required,email"`
	Password        string       `json:"password" validate:"required"`
	PasswordConfirm string       `json:"passwordConfirm,omitempty" validate:"omitempty,eqfield=Password"`
	Role            session.Role `json:"role" validate:"required,enum"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.FullName = core.CleanString(nu.FullName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	if r, err := session.ParseRole(string(nu.Role)); err == nil {
		nu.Role = r
	}
	return validate.Struct(nu)
}
