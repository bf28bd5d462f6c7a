package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/service"
)

// bind decodes the request body into req and runs its validation tags. A
// body that does not decode is a 400; a body that fails validation is
// domain.ErrInvalidInput.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, err.Error())
	}
	return nil
}

// device returns the browser session core bound by the Device middleware.
func device(c echo.Context) (*service.Device, error) {
	dev, ok := service.DeviceFrom(c.Request().Context())
	if !ok {
		return nil, domain.ErrNoSession
	}
	return dev, nil
}

type messageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}
