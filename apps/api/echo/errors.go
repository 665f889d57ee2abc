package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// Bilingual counterparts of the generic HTTP messages.
var messagesUz = map[string]string{
	"user not authenticated":   "foydalanuvchi tizimga kirmagan",
	"authentication failed":    "tizimga kirish amalga oshmadi",
	"account deactivated":      "hisob faolsizlantirilgan",
	"refresh has expired":      "yangilash muddati tugagan",
	"permission denied":        "ruxsat berilmagan",
	"not found":                "topilmadi",
	"missing or malformed jwt": "token yo'q yoki buzilgan",
	"invalid or expired jwt":   "token yaroqsiz yoki muddati tugagan",
	"validation failed":        "tekshiruvdan o'tmadi",
	"internal server error":    "serverda ichki xatolik",
}

func uzFor(msg string) string {
	return messagesUz[msg]
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that maps our
// typed errors to the response envelope. signalShutdown is called to
// gracefully stop the server whenever a core shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		env := Envelope{}
		var code int

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
			} else {
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
			}
			if msg, ok := origErr.Message.(string); ok {
				env.Message = msg
				env.MessageUz = uzFor(msg)
			}
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			env.Message = "validation failed"
			env.MessageUz = uzFor(env.Message)
			env.Errors = fldErrs
		case *core.ValidationError:
			code = http.StatusBadRequest
			env.Message = "validation failed"
			env.MessageUz = uzFor(env.Message)
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				env.Errors = fldErrs
			} else if origErr.Err != nil {
				env.Message = origErr.Error()
				env.MessageUz = uzFor(env.Message)
			}
		case *core.NotFoundError:
			code = http.StatusNotFound
			env.Message = origErr.Message
			env.MessageUz = origErr.MessageUz
		case *core.ConflictError:
			code = http.StatusConflict
			env.Message = origErr.Message
			env.MessageUz = origErr.MessageUz
		case *core.ReferenceError:
			code = http.StatusBadRequest
			env.Message = origErr.Message
			env.MessageUz = origErr.MessageUz
		case *core.ForbiddenError:
			code = http.StatusForbidden
			env.Message = "permission denied"
			env.MessageUz = uzFor(env.Message)
			env.Errors = map[string]string{"reason": origErr.Reason}
		default: // any other error is a server error
			code = http.StatusInternalServerError
			env.Message = "internal server error"
			env.MessageUz = uzFor(env.Message)

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Username = claims.Username
				usr.Email = claims.Email
			}
			logger.Error(env.Message, errors.Wrap(err, env.Message), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
			if ctx.Echo().Debug {
				env.Errors = map[string]string{"detail": err.Error()}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead {
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, env)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
