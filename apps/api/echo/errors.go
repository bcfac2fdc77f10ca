package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/curriculum"
	"github.com/trezcool/schoolops/core/enrollment"
	"github.com/trezcool/schoolops/core/food"
	"github.com/trezcool/schoolops/core/medical"
	"github.com/trezcool/schoolops/core/menu"
	"github.com/trezcool/schoolops/core/room"
	"github.com/trezcool/schoolops/core/student"
	"github.com/trezcool/schoolops/core/tuition"
	"github.com/trezcool/schoolops/core/user"
	"github.com/trezcool/schoolops/core/workflow"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// domainStatus maps the sentinel errors of the core packages to their HTTP status.
func domainStatus(err error) (int, bool) {
	switch err {
	case user.ErrNotFound, student.ErrNotFound, curriculum.ErrNotFound, food.ErrNotFound,
		food.ErrIngredientNotFound, menu.ErrNotFound, enrollment.ErrNotFound, medical.ErrNotFound,
		room.ErrNotFound, tuition.ErrNotFound, tuition.ErrServiceNotFound, core.ErrFileNotFound:
		return http.StatusNotFound, true
	case workflow.ErrActionNotAllowed:
		return http.StatusConflict, true
	case food.ErrCalculationFailed, tuition.ErrPaymentFailed:
		return http.StatusBadGateway, true
	}
	return 0, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(opts *Options) echo.HTTPErrorHandler {
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
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(opts.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if status, ok := domainStatus(origErr); ok {
				code = status
				message = origErr.Error()
				if status == http.StatusBadGateway {
					// the upstream details stay in the logs
					opts.Logger.Warn(origErr.Error(), err, contextUser(ctx))
				}
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			opts.Logger.Error(msg, errors.Wrap(err, msg), contextUser(ctx))

			// shutting down...
			if core.IsShutdown(err) && opts.SignalShutdown != nil {
				opts.SignalShutdown()
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
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

// contextUser identifies the authenticated user of ctx for the logs.
func contextUser(ctx echo.Context) user.User {
	var usr user.User
	if claims, err := getContextClaims(ctx); err == nil {
		usr.ID = claims.Subject
		usr.Username = claims.Username
		usr.Email = claims.Email
	}
	return usr
}
