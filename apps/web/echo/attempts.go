package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skillflow360/skillflow/core/evaluation"
	"github.com/skillflow360/skillflow/core/session"
)

// attemptApi drives evaluation attempts held on the server, one per open page.
type attemptApi struct {
	deps ServerDeps
}

func registerAttemptAPI(g *echo.Group, deps ServerDeps) {
	api := attemptApi{deps: deps}

	g.POST("/evaluations/:id/attempts", api.start)

	ag := g.Group("/attempts/:attemptID")
	ag.GET("", api.retrieve)
	ag.DELETE("", api.abandon)
	ag.PUT("/answers/:questionID", api.choose)
	ag.DELETE("/answers", api.reset)
	ag.POST("/submit", api.submit)
}

type ChooseRequest struct {
	Option string `json:"option"`
}

// SubmitResult is answered once the submission is accepted; the browser then goes to Redirect.
type SubmitResult struct {
	evaluation.SubmitResponse
	Redirect string `json:"redirect"`
}

func (api *attemptApi) attempt(ctx echo.Context) (*evaluation.Attempt, error) {
	ident := getContextIdentity(ctx)
	return api.deps.Attempts.Get(ident.ID, ctx.Param("attemptID"))
}

func (api *attemptApi) start(ctx echo.Context) error {
	ident := getContextIdentity(ctx)
	a := evaluation.NewAttempt(api.deps.API.As(ident), ident)
	if err := a.Start(ctx.Request().Context(), paramID(ctx, "id")); err != nil {
		a.Close()
		return errors.Wrap(err, "starting attempt")
	}
	api.deps.Attempts.Add(ident.ID, a)
	return ctx.JSON(http.StatusCreated, a.View())
}

func (api *attemptApi) retrieve(ctx echo.Context) error {
	a, err := api.attempt(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a.View())
}

func (api *attemptApi) abandon(ctx echo.Context) error {
	ident := getContextIdentity(ctx)
	if err := api.deps.Attempts.Remove(ident.ID, ctx.Param("attemptID")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attemptApi) choose(ctx echo.Context) error {
	a, err := api.attempt(ctx)
	if err != nil {
		return err
	}
	var data ChooseRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChooseRequest")
	}
	if err = a.Choose(paramID(ctx, "questionID"), data.Option); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a.View())
}

func (api *attemptApi) reset(ctx echo.Context) error {
	a, err := api.attempt(ctx)
	if err != nil {
		return err
	}
	if err = a.Reset(); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a.View())
}

func (api *attemptApi) submit(ctx echo.Context) error {
	a, err := api.attempt(ctx)
	if err != nil {
		return err
	}
	res, err := a.Submit(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "submitting answers")
	}
	// The submitted attempt stays registered until it expires or the student leaves the page:
	// GET replays the redirect and a repeated submit answers 409 instead of 404.
	ident := getContextIdentity(ctx)
	api.notify(ident, a.View().Title, res)
	return ctx.JSON(http.StatusOK, SubmitResult{SubmitResponse: res, Redirect: evaluation.ResultPath(res.SubmissionID)})
}

// notify emails the result summary when enabled. Sending never delays nor fails the submission.
func (api *attemptApi) notify(ident session.Identity, title string, res evaluation.SubmitResponse) {
	if !api.deps.Conf.Notifications.ResultEmail || api.deps.Mailer == nil {
		return
	}
	if msg := evaluation.NewResultEmail(api.deps.Conf, ident, title, res); msg != nil {
		api.deps.Mailer.SendMessages(msg)
	}
}
