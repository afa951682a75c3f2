package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core"
)

var (
	errInvalidSession = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
	errLessonNotFound = echo.NewHTTPError(http.StatusNotFound, "lesson not found")
)

// newAppHTTPErrorHandler maps handler errors to JSON responses. Unexpected errors are logged
// with the caller's identity and answered with a 500; a core shutdown error also triggers
// signalShutdown.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, body, known := errorResponse(err, translator)
		if !known {
			args := []interface{}{errors.Wrap(err, "handling request")}
			if ident, ok := contextIdentity(ctx); ok {
				args = append(args, ident)
			}
			logger.Error(http.StatusText(code), args...)

			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			body = err.Error()
		}
		if m, ok := body.(string); ok {
			body = echo.Map{"error": m}
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, body)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}

// errorResponse returns the status and body for err. known is false for errors the
// handlers did not anticipate.
func errorResponse(err error, translator ut.Translator) (code int, body interface{}, known bool) {
	switch cause := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if inner, ok := cause.Internal.(*echo.HTTPError); ok {
			cause = inner
		}
		return cause.Code, cause.Message, true

	case validator.ValidationErrors:
		translated := core.TranslateValidationErrors(cause, translator)
		return http.StatusBadRequest, translated.(*core.ValidationError).FieldMap(), true

	case *core.ValidationError:
		if flds := cause.FieldMap(); flds != nil {
			return http.StatusBadRequest, flds, true
		}
		return http.StatusBadRequest, cause.Error(), true

	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), false
	}
}
