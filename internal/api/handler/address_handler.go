package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
	"github.com/freshcart/storefront/internal/core/service"
)

// AddressHandler serves saved addresses and the selected delivery location.
type AddressHandler struct {
	api ports.AddressAPI
}

func NewAddressHandler(api ports.AddressAPI) *AddressHandler {
	return &AddressHandler{api: api}
}

type addressRequest struct {
	Type      string `json:"type"`
	Name      string `json:"name"    validate:"required"`
	Phone     string `json:"phone"   validate:"required"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city"    validate:"required"`
	State     string `json:"state"`
	Pincode   string `json:"pincode" validate:"required"`
	IsDefault bool   `json:"isDefault"`
}

type coordinatesRequest struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

type locationRequest struct {
	Label       string             `json:"label"       validate:"required"`
	Pincode     string             `json:"pincode"`
	Coordinates coordinatesRequest `json:"coordinates"`
}

type locationResponse struct {
	Location *domain.Location `json:"location"`
}

// List returns the shopper's saved addresses.
//
// @Summary      List addresses
// @Tags         addresses
// @Produce      json
// @Success      200  {array}  domain.Address
// @Router       /api/addresses [get]
func (h *AddressHandler) List(c echo.Context) error {
	ctx := service.WithNamespace(c.Request().Context(), domain.NamespaceShopper)
	addresses, err := h.api.Addresses(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, addresses)
}

// Add saves a delivery address.
//
// @Summary      Add address
// @Tags         addresses
// @Accept       json
// @Produce      json
// @Param        body  body      addressRequest  true  "Address"
// @Success      201   {object}  domain.Address
// @Failure      422   {object}  errorResponse
// @Router       /api/addresses [post]
func (h *AddressHandler) Add(c echo.Context) error {
	var req addressRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := service.WithNamespace(c.Request().Context(), domain.NamespaceShopper)
	addr, err := h.api.AddAddress(ctx, domain.Address{
		Type:      req.Type,
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		Pincode:   req.Pincode,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, addr)
}

// Delete removes a saved address.
//
// @Summary      Delete address
// @Tags         addresses
// @Param        id   path  string  true  "Address id"
// @Success      204
// @Router       /api/addresses/{id} [delete]
func (h *AddressHandler) Delete(c echo.Context) error {
	ctx := service.WithNamespace(c.Request().Context(), domain.NamespaceShopper)
	if err := h.api.DeleteAddress(ctx, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Location returns the delivery location picked in this browser.
//
// @Summary      Selected location
// @Tags         addresses
// @Produce      json
// @Success      200  {object}  locationResponse
// @Router       /api/location [get]
func (h *AddressHandler) Location(c echo.Context) error {
	dev, err := device(c)
	if err != nil {
		return err
	}
	loc, err := dev.Preferences.Location(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, locationResponse{Location: loc})
}

// SetLocation stores the delivery location for this browser. It is not
// session data and survives logout.
//
// @Summary      Select location
// @Tags         addresses
// @Accept       json
// @Produce      json
// @Param        body  body      locationRequest  true  "Location"
// @Success      200   {object}  locationResponse
// @Router       /api/location [put]
func (h *AddressHandler) SetLocation(c echo.Context) error {
	var req locationRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	dev, err := device(c)
	if err != nil {
		return err
	}

	loc := domain.Location{
		Label:       req.Label,
		Pincode:     req.Pincode,
		Coordinates: domain.Coordinates{Lat: req.Coordinates.Lat, Lng: req.Coordinates.Lng},
	}
	if err := dev.Preferences.SetLocation(c.Request().Context(), loc); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, locationResponse{Location: &loc})
}
