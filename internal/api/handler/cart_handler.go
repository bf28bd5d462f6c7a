package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freshcart/storefront/internal/core/ports"
)

// CartHandler serves the shopper's cart.
type CartHandler struct {
	service ports.CartService
}

func NewCartHandler(service ports.CartService) *CartHandler {
	return &CartHandler{service: service}
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int64  `json:"quantity"  validate:"required,gt=0"`
}

type updateItemRequest struct {
	Quantity int64 `json:"quantity" validate:"min=0"`
}

type couponRequest struct {
	Code string `json:"code" validate:"required"`
}

// Cart returns the cart with its totals.
//
// @Summary      Get cart
// @Tags         cart
// @Produce      json
// @Success      200  {object}  ports.CartView
// @Failure      401  {object}  errorResponse
// @Router       /api/cart [get]
func (h *CartHandler) Cart(c echo.Context) error {
	return h.respond(c, http.StatusOK)(h.service.Cart(c.Request().Context()))
}

// AddItem adds a product to the cart.
//
// @Summary      Add to cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body      addItemRequest  true  "Product and quantity"
// @Success      201   {object}  ports.CartView
// @Failure      422   {object}  errorResponse
// @Router       /api/cart/items [post]
func (h *CartHandler) AddItem(c echo.Context) error {
	var req addItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.respond(c, http.StatusCreated)(h.service.AddItem(c.Request().Context(), req.ProductID, req.Quantity))
}

// UpdateItem changes the quantity of a cart line; zero removes it.
//
// @Summary      Update cart item
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Cart item id"
// @Param        body  body      updateItemRequest  true  "Quantity"
// @Success      200   {object}  ports.CartView
// @Router       /api/cart/items/{id} [put]
func (h *CartHandler) UpdateItem(c echo.Context) error {
	var req updateItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.respond(c, http.StatusOK)(h.service.UpdateItem(c.Request().Context(), c.Param("id"), req.Quantity))
}

// RemoveItem drops a cart line.
//
// @Summary      Remove cart item
// @Tags         cart
// @Produce      json
// @Param        id   path      string  true  "Cart item id"
// @Success      200  {object}  ports.CartView
// @Router       /api/cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c echo.Context) error {
	return h.respond(c, http.StatusOK)(h.service.RemoveItem(c.Request().Context(), c.Param("id")))
}

// Clear empties the cart and forgets the applied coupon.
//
// @Summary      Clear cart
// @Tags         cart
// @Success      204
// @Router       /api/cart [delete]
func (h *CartHandler) Clear(c echo.Context) error {
	if err := h.service.Clear(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ApplyCoupon applies a coupon code to the cart.
//
// @Summary      Apply coupon
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        body  body      couponRequest  true  "Coupon code"
// @Success      200   {object}  ports.CartView
// @Failure      422   {object}  errorResponse
// @Router       /api/cart/coupon [post]
func (h *CartHandler) ApplyCoupon(c echo.Context) error {
	var req couponRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return h.respond(c, http.StatusOK)(h.service.ApplyCoupon(c.Request().Context(), req.Code))
}

// RemoveCoupon drops the applied coupon.
//
// @Summary      Remove coupon
// @Tags         cart
// @Produce      json
// @Success      200  {object}  ports.CartView
// @Router       /api/cart/coupon [delete]
func (h *CartHandler) RemoveCoupon(c echo.Context) error {
	return h.respond(c, http.StatusOK)(h.service.RemoveCoupon(c.Request().Context()))
}

// Coupons lists the coupons a shopper can apply.
//
// @Summary      List coupons
// @Tags         cart
// @Produce      json
// @Success      200  {array}  domain.Coupon
// @Router       /api/coupons [get]
func (h *CartHandler) Coupons(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Coupons())
}

func (h *CartHandler) respond(c echo.Context, status int) func(*ports.CartView, error) error {
	return func(view *ports.CartView, err error) error {
		if err != nil {
			return err
		}
		return c.JSON(status, view)
	}
}
