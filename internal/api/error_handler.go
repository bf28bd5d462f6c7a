package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/freshcart/storefront/internal/api/middleware"
	"github.com/freshcart/storefront/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Redirect
// is set when the browser should move to a login screen.
type errorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "redirect": "<path>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		resp := errorResponse{Error: msg, Redirect: middleware.RedirectFrom(c)}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var ended *domain.SessionEndedError
	if errors.As(err, &ended) {
		return http.StatusUnauthorized, "your session has expired, please sign in again"
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrNoSession):
		return http.StatusUnauthorized, "please sign in to continue"
	case errors.Is(err, domain.ErrRoleMismatch):
		return http.StatusUnauthorized, "access denied"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "you do not have permission to perform this action"
	case errors.Is(err, domain.ErrCartOnAdminRoute):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrCartEmpty),
		errors.Is(err, domain.ErrCouponNotFound),
		errors.Is(err, domain.ErrCouponMinOrder):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, "order not found"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrRemoteUnavailable):
		log.Warn().Err(err).Str("path", c.Path()).Msg("remote api unavailable")
		return http.StatusBadGateway, "service temporarily unavailable, please retry"
	}

	// The remote API refused the request for its own reasons.
	var re *domain.RemoteError
	if errors.As(err, &re) && re.Status >= 400 && re.Status < 500 {
		msg := re.Message
		if msg == "" {
			msg = http.StatusText(re.Status)
		}
		return re.Status, msg
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
