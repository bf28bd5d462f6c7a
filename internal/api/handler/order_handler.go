package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
)

// OrderHandler serves checkout and the shopper's order history.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

type deliveryAddressRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

type placeOrderRequest struct {
	AddressID     string                  `json:"addressId"`
	Address       *deliveryAddressRequest `json:"address"`
	PaymentMethod string                  `json:"paymentMethod" validate:"omitempty,oneof=COD UPI CARD cod upi card"`
}

// Place turns the cart into an order.
//
// @Summary      Place order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body      placeOrderRequest  true  "Delivery address and payment method"
// @Success      201   {object}  domain.Order
// @Failure      422   {object}  errorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Place(c echo.Context) error {
	var req placeOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return err
	}

	in := ports.PlaceOrderInput{AddressID: req.AddressID, PaymentMethod: method}
	if req.Address != nil {
		in.Address = domain.DeliveryAddress{
			Name:    req.Address.Name,
			Phone:   req.Address.Phone,
			Address: req.Address.Address,
			City:    req.Address.City,
			State:   req.Address.State,
			Pincode: req.Address.Pincode,
		}
	}

	order, err := h.service.Place(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, order)
}

// List returns the shopper's orders.
//
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Success      200  {array}  domain.Order
// @Router       /api/orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	orders, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// Get returns one order with its items.
//
// @Summary      Get order
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order id"
// @Success      200  {object}  domain.Order
// @Failure      404  {object}  errorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	order, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// Cancel cancels an order that has not left the store.
//
// @Summary      Cancel order
// @Tags         orders
// @Produce      json
// @Param        id   path      string  true  "Order id"
// @Success      200  {object}  domain.Order
// @Failure      422  {object}  errorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c echo.Context) error {
	order, err := h.service.Cancel(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}
