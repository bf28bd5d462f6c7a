package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
	"github.com/freshcart/storefront/internal/core/service"
)

// AdminHandler serves the administrator panel. Every remote call carries
// the administrator credential whatever screen the browser is on.
type AdminHandler struct {
	api     ports.AdminAPI
	service ports.AdminService
}

func NewAdminHandler(api ports.AdminAPI, service ports.AdminService) *AdminHandler {
	return &AdminHandler{api: api, service: service}
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type productRequest struct {
	Name        string  `json:"name"     validate:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price"    validate:"gt=0"`
	ImageURL    string  `json:"imageUrl"`
	Category    string  `json:"category" validate:"required"`
	Stock       int64   `json:"stock"    validate:"min=0"`
	Active      *bool   `json:"active"`
}

func (r productRequest) product() domain.Product {
	return domain.Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		Category:    r.Category,
		Stock:       r.Stock,
		Active:      r.Active,
	}
}

type categoryRequest struct {
	Name     string `json:"name" validate:"required"`
	ImageURL string `json:"imageUrl"`
	Active   *bool  `json:"active"`
}

func adminCtx(c echo.Context) context.Context {
	return service.WithNamespace(c.Request().Context(), domain.NamespaceAdministrator)
}

// Dashboard returns the admin overview.
//
// @Summary      Dashboard
// @Tags         admin
// @Produce      json
// @Success      200  {object}  domain.Dashboard
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /admin/api/dashboard [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	d, err := h.api.Dashboard(adminCtx(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// Customers lists user accounts.
//
// @Summary      List customers
// @Tags         admin
// @Produce      json
// @Success      200  {array}  domain.Customer
// @Router       /admin/api/users [get]
func (h *AdminHandler) Customers(c echo.Context) error {
	customers, err := h.api.Customers(adminCtx(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customers)
}

// SetCustomerStatus blocks or unblocks a user account.
//
// @Summary      Set customer status
// @Tags         admin
// @Accept       json
// @Param        id    path  string         true  "User id"
// @Param        body  body  statusRequest  true  "active or blocked"
// @Success      204
// @Failure      422  {object}  errorResponse
// @Router       /admin/api/users/{id}/status [put]
func (h *AdminHandler) SetCustomerStatus(c echo.Context) error {
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.service.SetCustomerStatus(c.Request().Context(), c.Param("id"), req.Status); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Orders lists every order.
//
// @Summary      List all orders
// @Tags         admin
// @Produce      json
// @Success      200  {array}  domain.Order
// @Router       /admin/api/orders [get]
func (h *AdminHandler) Orders(c echo.Context) error {
	orders, err := h.api.AllOrders(adminCtx(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// Order returns one order with its items.
//
// @Summary      Get order
// @Tags         admin
// @Produce      json
// @Param        id   path      string  true  "Order id"
// @Success      200  {object}  domain.Order
// @Router       /admin/api/orders/{id} [get]
func (h *AdminHandler) Order(c echo.Context) error {
	order, err := h.service.OrderDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus moves an order along its lifecycle.
//
// @Summary      Update order status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string         true  "Order id"
// @Param        body  body      statusRequest  true  "New status"
// @Success      200   {object}  domain.Order
// @Failure      422   {object}  errorResponse
// @Router       /admin/api/orders/{id}/status [put]
func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	var req statusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	order, err := h.service.UpdateStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

// Products lists every product, inactive ones included.
//
// @Summary      List products
// @Tags         admin
// @Produce      json
// @Success      200  {array}  domain.Product
// @Router       /admin/api/products [get]
func (h *AdminHandler) Products(c echo.Context) error {
	products, err := h.api.AdminProducts(adminCtx(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// CreateProduct adds a product.
//
// @Summary      Create product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      productRequest  true  "Product"
// @Success      201   {object}  domain.Product
// @Router       /admin/api/products [post]
func (h *AdminHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := h.api.CreateProduct(adminCtx(c), req.product())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

// UpdateProduct replaces a product.
//
// @Summary      Update product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Product id"
// @Param        body  body      productRequest  true  "Product"
// @Success      200   {object}  domain.Product
// @Router       /admin/api/products/{id} [put]
func (h *AdminHandler) UpdateProduct(c echo.Context) error {
	var req productRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := h.api.UpdateProduct(adminCtx(c), c.Param("id"), req.product())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

// DeleteProduct removes a product.
//
// @Summary      Delete product
// @Tags         admin
// @Param        id   path  string  true  "Product id"
// @Success      204
// @Router       /admin/api/products/{id} [delete]
func (h *AdminHandler) DeleteProduct(c echo.Context) error {
	if err := h.api.DeleteProduct(adminCtx(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Categories lists every category.
//
// @Summary      List categories
// @Tags         admin
// @Produce      json
// @Success      200  {array}  domain.Category
// @Router       /admin/api/categories [get]
func (h *AdminHandler) Categories(c echo.Context) error {
	categories, err := h.api.AdminCategories(adminCtx(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}

// CreateCategory adds a category.
//
// @Summary      Create category
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        body  body      categoryRequest  true  "Category"
// @Success      201   {object}  domain.Category
// @Router       /admin/api/categories [post]
func (h *AdminHandler) CreateCategory(c echo.Context) error {
	var req categoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cat, err := h.api.CreateCategory(adminCtx(c), domain.Category{Name: req.Name, ImageURL: req.ImageURL, Active: req.Active})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cat)
}

// UpdateCategory replaces a category.
//
// @Summary      Update category
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id    path      string           true  "Category id"
// @Param        body  body      categoryRequest  true  "Category"
// @Success      200   {object}  domain.Category
// @Router       /admin/api/categories/{id} [put]
func (h *AdminHandler) UpdateCategory(c echo.Context) error {
	var req categoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cat, err := h.api.UpdateCategory(adminCtx(c), c.Param("id"), domain.Category{Name: req.Name, ImageURL: req.ImageURL, Active: req.Active})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cat)
}

// DeleteCategory removes a category.
//
// @Summary      Delete category
// @Tags         admin
// @Param        id   path  string  true  "Category id"
// @Success      204
// @Router       /admin/api/categories/{id} [delete]
func (h *AdminHandler) DeleteCategory(c echo.Context) error {
	if err := h.api.DeleteCategory(adminCtx(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
