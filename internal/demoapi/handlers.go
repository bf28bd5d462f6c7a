package demoapi

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/freshcart/storefront/internal/core/domain"
)

// storeError maps store failures onto the status codes the backend uses.
func storeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errNotFound):
		return fail(c, http.StatusNotFound, "not found")
	case errors.Is(err, errExists):
		return fail(c, http.StatusConflict, "email already registered")
	case errors.Is(err, errOutOfStock), errors.Is(err, errEmptyCart), errors.Is(err, errNotAllowed):
		return fail(c, http.StatusBadRequest, err.Error())
	}
	return fail(c, http.StatusInternalServerError, "internal error")
}

// ---------------------------------------------------------------------------
// Account
// ---------------------------------------------------------------------------

func (s *Server) loggedIn(c echo.Context, id domain.Identity) error {
	token, err := s.issuer.Issue(id)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, domain.LoginResult{Token: token, User: id})
}

func (s *Server) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}
	id, status, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Invalid email or password")
	}
	if status == domain.CustomerBlocked {
		return fail(c, http.StatusForbidden, "account blocked")
	}
	return s.loggedIn(c, id)
}

func (s *Server) register(c echo.Context) error {
	var req domain.Signup
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "email and password are required")
	}
	id, err := s.store.Register(req)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusCreated, id)
}

func (s *Server) sendOTP(c echo.Context) error {
	var req struct {
		Phone string `json:"phoneNumber"`
	}
	if err := c.Bind(&req); err != nil || req.Phone == "" {
		return fail(c, http.StatusBadRequest, "phone number is required")
	}
	code := s.otp
	if code == "" {
		code = fmt.Sprintf("%06d", rand.IntN(1_000_000))
	}
	s.store.IssueOTP(req.Phone, code)
	s.log.Info().Str("phone", req.Phone).Str("otp", code).Msg("otp issued")
	return c.JSON(http.StatusOK, map[string]string{"message": "OTP sent"})
}

func (s *Server) verifyOTP(c echo.Context) error {
	var req struct {
		Phone string `json:"phoneNumber"`
		OTP   string `json:"otp"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}
	id, err := s.store.RedeemOTP(req.Phone, req.OTP)
	if errors.Is(err, errBadPassword) {
		return fail(c, http.StatusBadRequest, "Invalid OTP")
	}
	if err != nil {
		return storeError(c, err)
	}
	return s.loggedIn(c, id)
}

func (s *Server) profile(c echo.Context) error {
	id, _, err := s.store.Account(userID(c))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, id)
}

func (s *Server) updateProfile(c echo.Context) error {
	if c.Param("id") != userID(c) {
		return fail(c, http.StatusForbidden, "access denied")
	}
	var req domain.Identity
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}
	id, err := s.store.UpdateProfile(userID(c), req)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, id)
}

// ---------------------------------------------------------------------------
// Catalogue
// ---------------------------------------------------------------------------

func (s *Server) products(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Products("", "", false))
}

func (s *Server) productsByCategory(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Products(c.Param("category"), "", false))
}

func (s *Server) search(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Products("", c.QueryParam("q"), false))
}

func (s *Server) product(c echo.Context) error {
	p, err := s.store.Product(c.Param("id"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) categories(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Categories())
}

// ---------------------------------------------------------------------------
// Cart
// ---------------------------------------------------------------------------

func (s *Server) cart(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Cart(userID(c)))
}

func (s *Server) addToCart(c echo.Context) error {
	var req struct {
		FoodID   domain.ID `json:"foodId"`
		Quantity int64     `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil || req.FoodID == "" || req.Quantity <= 0 {
		return fail(c, http.StatusBadRequest, "foodId and a positive quantity are required")
	}
	if err := s.store.AddToCart(userID(c), string(req.FoodID), req.Quantity); err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, s.store.Cart(userID(c)))
}

func (s *Server) updateCartLine(c echo.Context) error {
	var req struct {
		Quantity int64 `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil || req.Quantity < 0 {
		return fail(c, http.StatusBadRequest, "quantity must not be negative")
	}
	var err error
	if req.Quantity == 0 {
		err = s.store.RemoveCartLine(userID(c), c.Param("id"))
	} else {
		err = s.store.UpdateCartLine(userID(c), c.Param("id"), req.Quantity)
	}
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, s.store.Cart(userID(c)))
}

func (s *Server) removeCartLine(c echo.Context) error {
	if err := s.store.RemoveCartLine(userID(c), c.Param("id")); err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, s.store.Cart(userID(c)))
}

func (s *Server) clearCart(c echo.Context) error {
	s.store.ClearCart(userID(c))
	return c.String(http.StatusOK, "Cart cleared")
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

func (s *Server) placeOrder(c echo.Context) error {
	var req domain.PlaceOrder
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return fail(c, http.StatusBadRequest, "delivery address is required")
	}
	method, err := domain.ParsePaymentMethod(string(req.PaymentMethod))
	if err != nil {
		return fail(c, http.StatusBadRequest, "unsupported payment method")
	}
	req.PaymentMethod = method
	o, err := s.store.PlaceOrder(userID(c), req, s.now())
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

func (s *Server) myOrders(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Orders(userID(c)))
}

func (s *Server) myOrder(c echo.Context) error {
	o, err := s.store.Order(c.Param("id"), userID(c))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (s *Server) myOrderItems(c echo.Context) error {
	o, err := s.store.Order(c.Param("id"), userID(c))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, o.Items)
}

func (s *Server) cancelOrder(c echo.Context) error {
	o, err := s.store.SetOrderStatus(c.Param("id"), userID(c), domain.OrderCancelled)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// ---------------------------------------------------------------------------
// Addresses
// ---------------------------------------------------------------------------

func (s *Server) addresses(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Addresses(userID(c)))
}

func (s *Server) addAddress(c echo.Context) error {
	var req domain.Address
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}
	if !req.Delivery().Complete() {
		return fail(c, http.StatusBadRequest, "name, phone, address, city and pincode are required")
	}
	return c.JSON(http.StatusCreated, s.store.AddAddress(userID(c), req))
}

func (s *Server) deleteAddress(c echo.Context) error {
	if err := s.store.DeleteAddress(userID(c), c.Param("id")); err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Admin
// ---------------------------------------------------------------------------

func (s *Server) dashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Dashboard())
}

func (s *Server) customers(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Customers())
}

func (s *Server) setCustomerStatus(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid payload")
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != domain.CustomerActive && status != domain.CustomerBlocked {
		return fail(c, http.StatusBadRequest, "status must be active or blocked")
	}
	if err := s.store.SetStatus(c.Param("id"), status); err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) allOrders(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Orders(""))
}

func (s *Server) adminOrder(c echo.Context) error {
	o, err := s.store.Order(c.Param("id"), "")
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (s *Server) adminOrderItems(c echo.Context) error {
	o, err := s.store.Order(c.Param("id"), "")
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, o.Items)
}

func (s *Server) setOrderStatus(c echo.Context) error {
	next := domain.ParseOrderStatus(c.QueryParam("status"))
	if !next.Valid() {
		return fail(c, http.StatusBadRequest, "unknown order status")
	}
	o, err := s.store.SetOrderStatus(c.Param("id"), "", next)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (s *Server) adminProducts(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Products("", "", true))
}

func (s *Server) saveProduct(c echo.Context, id string) error {
	var req domain.Product
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" || req.Price < 0 {
		return fail(c, http.StatusBadRequest, "name and a non-negative price are required")
	}
	p, err := s.store.SaveProduct(id, req)
	if err != nil {
		return storeError(c, err)
	}
	if id == "" {
		return c.JSON(http.StatusCreated, p)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) createProduct(c echo.Context) error { return s.saveProduct(c, "") }

func (s *Server) updateProduct(c echo.Context) error { return s.saveProduct(c, c.Param("id")) }

func (s *Server) deleteProduct(c echo.Context) error {
	if err := s.store.DeleteProduct(c.Param("id")); err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) saveCategory(c echo.Context, id string) error {
	var req domain.Category
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return fail(c, http.StatusBadRequest, "name is required")
	}
	cat, err := s.store.SaveCategory(id, req)
	if err != nil {
		return storeError(c, err)
	}
	if id == "" {
		return c.JSON(http.StatusCreated, cat)
	}
	return c.JSON(http.StatusOK, cat)
}

func (s *Server) createCategory(c echo.Context) error { return s.saveCategory(c, "") }

func (s *Server) updateCategory(c echo.Context) error { return s.saveCategory(c, c.Param("id")) }

func (s *Server) deleteCategory(c echo.Context) error {
	if err := s.store.DeleteCategory(c.Param("id")); err != nil {
		return storeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
