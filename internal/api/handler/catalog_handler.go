package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
)

// CatalogHandler serves the public product catalogue.
type CatalogHandler struct {
	api ports.CatalogAPI
}

func NewCatalogHandler(api ports.CatalogAPI) *CatalogHandler {
	return &CatalogHandler{api: api}
}

// Products lists products, optionally restricted to one category.
//
// @Summary      List products
// @Tags         catalog
// @Produce      json
// @Param        category  query     string  false  "Category name"
// @Success      200       {array}   domain.Product
// @Failure      502       {object}  errorResponse
// @Router       /api/products [get]
func (h *CatalogHandler) Products(c echo.Context) error {
	products, err := h.api.Products(c.Request().Context(), strings.TrimSpace(c.QueryParam("category")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// Product returns one product.
//
// @Summary      Get a product
// @Tags         catalog
// @Produce      json
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  domain.Product
// @Failure      404  {object}  errorResponse
// @Router       /api/products/{id} [get]
func (h *CatalogHandler) Product(c echo.Context) error {
	product, err := h.api.Product(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, product)
}

// Search finds products by name.
//
// @Summary      Search products
// @Tags         catalog
// @Produce      json
// @Param        q    query     string  true  "Search text"
// @Success      200  {array}   domain.Product
// @Failure      422  {object}  errorResponse
// @Router       /api/search [get]
func (h *CatalogHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return fmt.Errorf("%w: q is required", domain.ErrInvalidInput)
	}
	products, err := h.api.Search(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, products)
}

// Categories lists the storefront categories.
//
// @Summary      List categories
// @Tags         catalog
// @Produce      json
// @Success      200  {array}   domain.Category
// @Router       /api/categories [get]
func (h *CatalogHandler) Categories(c echo.Context) error {
	categories, err := h.api.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}
