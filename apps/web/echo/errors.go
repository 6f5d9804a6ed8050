package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/skillflow360/skillflow/core"
	"github.com/skillflow360/skillflow/core/analytics"
	"github.com/skillflow360/skillflow/core/catalog"
	"github.com/skillflow360/skillflow/core/evaluation"
	"github.com/skillflow360/skillflow/core/session"
	"github.com/skillflow360/skillflow/services/restapi"
)

var (
	errUnauthorized   = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errSessionExpired = echo.NewHTTPError(http.StatusUnauthorized, "session expired, please sign in again")
	errHttpForbidden  = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// domainErrors maps the errors of the core packages to the status answered to the browser.
var domainErrors = []struct {
	err  error
	code int
}{
	{evaluation.ErrAttemptNotFound, http.StatusNotFound},
	{evaluation.ErrAlreadyStarted, http.StatusConflict},
	{evaluation.ErrAlreadySubmitted, http.StatusConflict},
	{evaluation.ErrNotAnswering, http.StatusConflict},
	{evaluation.ErrClosed, http.StatusConflict},
	{evaluation.ErrUnknownQuestion, http.StatusBadRequest},
	{catalog.ErrNotFound, http.StatusNotFound},
	{session.ErrNotFound, http.StatusUnauthorized},
	{analytics.ErrAuthRequired, http.StatusUnauthorized},
	{analytics.ErrAccessDenied, http.StatusForbidden},
	{analytics.ErrServer, http.StatusBadGateway},
	{analytics.ErrUnavailable, http.StatusBadGateway},
}

func domainStatus(err error) (int, bool) {
	for _, de := range domainErrors {
		if errors.Is(err, de.err) {
			return de.code, true
		}
	}
	return 0, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case *core.ValidationError:
			if flds := origErr.FieldMap(); flds != nil {
				message = flds
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *restapi.Error:
			code = origErr.HTTPStatus()
			message = origErr.UserMessage()
			if origErr.Kind == restapi.KindServer || origErr.Kind == restapi.KindUnexpected {
				logger.Warn("upstream failure", err, getContextIdentity(ctx))
			}
		default:
			if dc, ok := domainStatus(err); ok {
				code = dc
				message = errors.Cause(err).Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, errors.Wrap(err, msg), getContextIdentity(ctx))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
