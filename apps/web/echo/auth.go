package echoweb

import (
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/core/session"
)

const (
	SessionCookie      = "skillflow_session"
	contextTokenKey    = "sessionToken"
	contextIdentityKey = "identity"
)

// Claims are carried by the session cookie. The subject is the id of the server-side session.
type Claims struct {
	jwt.StandardClaims
	Role session.Role `json:"role"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
		TokenLookup:   "cookie:" + SessionCookie,
	}
}

func newJWTMiddleware(conf *core.Config) echo.MiddlewareFunc {
	return middleware.JWTWithConfig(newJWTConfig(conf))
}

// GenerateToken signs the cookie value of the stored session ident.
func GenerateToken(conf *core.Config, ident session.Identity) (string, error) {
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   ident.ID,
			IssuedAt:  ident.CreatedAt.Unix(),
			ExpiresAt: ident.ExpiresAt.Unix(),
		},
		Role: ident.Role,
	}
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)
	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func newSessionCookie(conf *core.Config, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   conf.Server.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func clearSessionCookie(conf *core.Config) *http.Cookie {
	c := newSessionCookie(conf, "", time.Unix(0, 0))
	c.MaxAge = -1
	return c
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// sessionMiddleware loads the identity of the session named by the cookie claims.
func sessionMiddleware(store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			ident, err := store.Get(ctx.Request().Context(), claims.Subject)
			if err != nil {
				if errors.Cause(err) == session.ErrNotFound {
					return errSessionExpired
				}
				return errors.Wrap(err, "loading session")
			}
			ctx.Set(contextIdentityKey, ident)
			return next(ctx)
		}
	}
}

func roleMiddleware(role session.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if getContextIdentity(ctx).Role != role {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// getContextIdentity returns the signed-in identity, the zero Identity on public routes.
func getContextIdentity(ctx echo.Context) session.Identity {
	ident, _ := ctx.Get(contextIdentityKey).(session.Identity)
	return ident
}

// lookupIdentity reads the session cookie when present, without requiring it.
func lookupIdentity(ctx echo.Context, conf *core.Config, store session.Store) session.Identity {
	cookie, err := ctx.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return session.Identity{}
	}
	claims := new(Claims)
	_, err = jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != middleware.AlgorithmHS256 {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(conf.SecretKey), nil
	})
	if err != nil {
		return session.Identity{}
	}
	ident, err := store.Get(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return session.Identity{}
	}
	return ident
}
