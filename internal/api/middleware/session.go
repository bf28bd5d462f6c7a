package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/service"
	"github.com/freshcart/storefront/internal/core/token"
)

// Context keys set by RequireSession.
const (
	ContextRole     = "role"
	ContextIdentity = "identity"
)

// RequireSession lets the request through only when the browser holds a
// valid session in ns. Otherwise the browser is sent to the namespace's
// login screen without an error banner.
func RequireSession(ns domain.Namespace) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			dev, ok := service.DeviceFrom(ctx)
			if !ok {
				return domain.ErrNoSession
			}

			sess, err := dev.Sessions.Load(ctx, ns)
			if err != nil {
				return err
			}
			if sess == nil {
				if nav, ok := c.Get(ctxRedirect).(*RedirectRecorder); ok {
					nav.Navigate(ctx, dev.Scopes.For(ns).LoginPath())
				}
				return domain.ErrNoSession
			}

			role, _ := token.RoleOf(sess.Credential)
			c.Set(ContextRole, role)
			c.Set(ContextIdentity, sess.Identity)
			return next(c)
		}
	}
}
