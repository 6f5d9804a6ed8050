package echoweb

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skillflow360/skillflow/core/navigation"
	"github.com/skillflow360/skillflow/core/session"
	"github.com/skillflow360/skillflow/core/user"
)

type accountApi struct {
	deps ServerDeps
	now  func() time.Time
}

func registerAccountAPI(e *echo.Echo, authed []echo.MiddlewareFunc, deps ServerDeps) {
	api := accountApi{deps: deps, now: time.Now}

	// un-authed endpoints
	e.POST("/auth/login", api.login)
	e.POST("/auth/register", api.register)
	e.GET("/api/navigate", api.navigate)

	// authed endpoints
	e.POST("/auth/logout", api.logout, authed...)
	e.GET("/api/me", api.me, authed...)
	e.GET("/api/menu", api.menu, authed...)
}

// MeResponse describes the signed-in user.
type MeResponse struct {
	session.Identity
	DisplayName string `json:"displayName"`
	Level       string `json:"level,omitempty"`
	Home        string `json:"home"`
}

func newMeResponse(ident session.Identity) MeResponse {
	res := MeResponse{
		Identity:    ident,
		DisplayName: ident.DisplayName(),
		Home:        navigation.Home(ident.Role),
	}
	if ident.IsStudent() {
		res.Level = ident.Level()
	}
	return res
}

func (api *accountApi) userSvc() *user.Service {
	return user.NewService(api.deps.API, api.deps.Validate, api.deps.Translator)
}

// signIn stores the session and sets its cookie.
func (api *accountApi) signIn(ctx echo.Context, ident session.Identity) (MeResponse, error) {
	now := api.now().UTC()
	ident.CreatedAt = now
	ident.ExpiresAt = now.Add(api.deps.Conf.Server.SessionTTL)

	ident, err := api.deps.Sessions.Save(ctx.Request().Context(), ident)
	if err != nil {
		return MeResponse{}, errors.Wrap(err, "saving session")
	}
	token, err := GenerateToken(api.deps.Conf, ident)
	if err != nil {
		return MeResponse{}, err
	}
	ctx.SetCookie(newSessionCookie(api.deps.Conf, token, ident.ExpiresAt))
	return newMeResponse(ident), nil
}

func (api *accountApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}

	ident, err := api.userSvc().Login(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	res, err := api.signIn(ctx, ident)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *accountApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	ident, err := api.userSvc().Register(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	res, err := api.signIn(ctx, ident)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *accountApi) logout(ctx echo.Context) error {
	ident := getContextIdentity(ctx)
	if err := api.deps.Sessions.Delete(ctx.Request().Context(), ident.ID); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	api.deps.Attempts.RemoveOwner(ident.ID)
	ctx.SetCookie(clearSessionCookie(api.deps.Conf))
	return ctx.NoContent(http.StatusNoContent)
}

func (api *accountApi) me(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, newMeResponse(getContextIdentity(ctx)))
}

func (api *accountApi) menu(ctx echo.Context) error {
	ident := getContextIdentity(ctx)
	return ctx.JSON(http.StatusOK, navigation.Menu(ident.Role, ctx.QueryParam("current")))
}

// navigate tells the browser where a path lands for the current visitor.
func (api *accountApi) navigate(ctx echo.Context) error {
	ident := lookupIdentity(ctx, api.deps.Conf, api.deps.Sessions)
	return ctx.JSON(http.StatusOK, echo.Map{"path": navigation.Resolve(ident, ctx.QueryParam("path"))})
}
