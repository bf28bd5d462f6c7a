package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/service"
)

const (
	// DeviceCookie carries the id of the browser's storage scope.
	DeviceCookie = "sf_device"
	// HeaderClientRoute is the screen the browser is on, when it differs from
	// the request path.
	HeaderClientRoute = "X-Client-Route"
	// HeaderUseSession pins the namespace of a request.
	HeaderUseSession = "X-Use-Session"

	ctxRedirect = "redirect"
)

// DeviceConfig controls the device cookie.
type DeviceConfig struct {
	Secure bool
	MaxAge time.Duration
}

// Device opens the session core of the calling browser and binds it, with
// the current route and session override, to the request context.
func Device(devices *service.Devices, cfg DeviceConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			info, err := requestInfo(c)
			if err != nil {
				return err
			}

			id := deviceID(c)
			c.SetCookie(&http.Cookie{
				Name:     DeviceCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   int(cfg.MaxAge.Seconds()),
				Secure:   cfg.Secure,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})

			nav := &RedirectRecorder{}
			c.Set(ctxRedirect, nav)

			dev := devices.Open(id, nav)
			ctx := service.WithRequest(c.Request().Context(), info)
			ctx = service.WithDevice(ctx, dev)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// deviceID returns the id in the device cookie, or a fresh one when the
// cookie is missing or malformed.
func deviceID(c echo.Context) string {
	if ck, err := c.Cookie(DeviceCookie); err == nil {
		if id, err := uuid.Parse(ck.Value); err == nil {
			return id.String()
		}
	}
	return uuid.NewString()
}

func requestInfo(c echo.Context) (service.RequestInfo, error) {
	info := service.RequestInfo{Route: c.Request().URL.Path}
	if route := strings.TrimSpace(c.Request().Header.Get(HeaderClientRoute)); strings.HasPrefix(route, "/") {
		info.Route = route
	}
	if raw := c.Request().Header.Get(HeaderUseSession); raw != "" {
		ns, err := domain.ParseNamespace(raw)
		if err != nil {
			return info, err
		}
		info.Override = ns
	}
	return info, nil
}

// RedirectRecorder is the navigator of one request. The last screen a scope
// asked for is sent back to the browser as the redirect hint.
type RedirectRecorder struct {
	mu   sync.Mutex
	path string
}

func (r *RedirectRecorder) Navigate(_ context.Context, path string) {
	r.mu.Lock()
	r.path = path
	r.mu.Unlock()
}

// Path returns the recorded redirect, empty when none.
func (r *RedirectRecorder) Path() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.path
}

// RedirectFrom returns the redirect recorded for the request.
func RedirectFrom(c echo.Context) string {
	if nav, ok := c.Get(ctxRedirect).(*RedirectRecorder); ok {
		return nav.Path()
	}
	return ""
}
