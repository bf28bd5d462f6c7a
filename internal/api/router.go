package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/freshcart/storefront/docs"
	"github.com/freshcart/storefront/internal/api/handler"
	"github.com/freshcart/storefront/internal/api/middleware"
	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
	"github.com/freshcart/storefront/internal/core/service"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Devices *service.Devices
	Auth    ports.AuthService
	Cart    ports.CartService
	Orders  ports.OrderService
	Admin   ports.AdminService
	Remote  ports.RemoteAPI

	// Health lists the dependencies checked by /health/ready.
	Health map[string]handler.Pinger
	// Registry backs the /metrics endpoint. A fresh registry is used when nil.
	Registry *prometheus.Registry
	Cookie   middleware.DeviceConfig
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "storefront_http",
		Registerer: reg,
	}))

	// --- Ops (no device, no session) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Health)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	device := middleware.Device(d.Devices, d.Cookie)
	requireShopper := middleware.RequireSession(domain.NamespaceShopper)
	requireAdmin := middleware.RequireSession(domain.NamespaceAdministrator)

	// --- Shopper area ---
	shop := e.Group("/api", device)

	shopAuth := handler.NewAuthHandler(d.Auth, domain.NamespaceShopper)
	shop.POST("/auth/login", shopAuth.Login)
	shop.POST("/auth/signup", shopAuth.Signup)
	shop.POST("/auth/otp/send", shopAuth.SendOTP)
	shop.POST("/auth/otp/verify", shopAuth.VerifyOTP)
	shop.POST("/auth/logout", shopAuth.Logout)
	shop.GET("/auth/me", shopAuth.Me)
	shop.PUT("/auth/profile", shopAuth.UpdateProfile, requireShopper)

	catalog := handler.NewCatalogHandler(d.Remote)
	shop.GET("/products", catalog.Products)
	shop.GET("/products/:id", catalog.Product)
	shop.GET("/categories", catalog.Categories)
	shop.GET("/search", catalog.Search)

	addresses := handler.NewAddressHandler(d.Remote)
	shop.GET("/location", addresses.Location)
	shop.PUT("/location", addresses.SetLocation)

	cart := handler.NewCartHandler(d.Cart)
	shop.GET("/coupons", cart.Coupons)

	signedIn := shop.Group("", requireShopper)
	signedIn.GET("/cart", cart.Cart)
	signedIn.DELETE("/cart", cart.Clear)
	signedIn.POST("/cart/items", cart.AddItem)
	signedIn.PUT("/cart/items/:id", cart.UpdateItem)
	signedIn.DELETE("/cart/items/:id", cart.RemoveItem)
	signedIn.POST("/cart/coupon", cart.ApplyCoupon)
	signedIn.DELETE("/cart/coupon", cart.RemoveCoupon)

	orders := handler.NewOrderHandler(d.Orders)
	signedIn.POST("/orders", orders.Place)
	signedIn.GET("/orders", orders.List)
	signedIn.GET("/orders/:id", orders.Get)
	signedIn.POST("/orders/:id/cancel", orders.Cancel)

	signedIn.GET("/addresses", addresses.List)
	signedIn.POST("/addresses", addresses.Add)
	signedIn.DELETE("/addresses/:id", addresses.Delete)

	// --- Administrator area ---
	admin := e.Group(strings.TrimRight(d.Devices.AdminPrefix(), "/")+"/api", device)

	adminAuth := handler.NewAuthHandler(d.Auth, domain.NamespaceAdministrator)
	admin.POST("/auth/login", adminAuth.Login)
	admin.POST("/auth/logout", adminAuth.Logout)
	admin.GET("/auth/me", adminAuth.Me)

	panel := admin.Group("", requireAdmin, middleware.RBAC(domain.RoleAdmin))
	adminHandler := handler.NewAdminHandler(d.Remote, d.Admin)
	panel.GET("/dashboard", adminHandler.Dashboard)
	panel.GET("/users", adminHandler.Customers)
	panel.PUT("/users/:id/status", adminHandler.SetCustomerStatus)
	panel.GET("/orders", adminHandler.Orders)
	panel.GET("/orders/:id", adminHandler.Order)
	panel.PUT("/orders/:id/status", adminHandler.UpdateOrderStatus)
	panel.GET("/products", adminHandler.Products)
	panel.POST("/products", adminHandler.CreateProduct)
	panel.PUT("/products/:id", adminHandler.UpdateProduct)
	panel.DELETE("/products/:id", adminHandler.DeleteProduct)
	panel.GET("/categories", adminHandler.Categories)
	panel.POST("/categories", adminHandler.CreateCategory)
	panel.PUT("/categories/:id", adminHandler.UpdateCategory)
	panel.DELETE("/categories/:id", adminHandler.DeleteCategory)

	return e
}
