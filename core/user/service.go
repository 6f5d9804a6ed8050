package user

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/core/session"
)

var ErrInvalidCredentials = core.NewInputError("invalid email or password")

type API interface {
	Login(ctx context.Context, creds Credentials) (AuthResponse, error)
	Register(ctx context.Context, nu NewUser) (AuthResponse, error)
}

type Service struct {
	api        API
	validate   *validator.Validate
	translator ut.Translator
}

func NewService(api API, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{api: api, validate: validate, translator: translator}
}

// Login authenticates the user and returns the identity to store in the session.
func (svc *Service) Login(ctx context.Context, creds Credentials) (session.Identity, error) {
	if err := creds.Validate(svc.validate); err != nil {
		return session.Identity{}, core.TranslateErrors(err, svc.translator)
	}
	res, err := svc.api.Login(ctx, creds)
	if err != nil {
		if core.StatusCode(err) == http.StatusUnauthorized {
			return session.Identity{}, ErrInvalidCredentials
		}
		return session.Identity{}, errors.Wrap(err, "login")
	}
	if err = res.Verify(); err != nil {
		return session.Identity{}, err
	}
	return res.Identity(), nil
}

// Register creates the account. The password policy is enforced before calling the API.
func (svc *Service) Register(ctx context.Context, nu NewUser) (session.Identity, error) {
	if err := nu.Validate(svc.validate); err != nil {
		return session.Identity{}, core.TranslateErrors(err, svc.translator)
	}
	res, err := svc.api.Register(ctx, nu)
	if err != nil {
		return session.Identity{}, errors.Wrap(err, "registration")
	}
	if err = res.Verify(); err != nil {
		return session.Identity{}, err
	}
	return res.Identity(), nil
}
