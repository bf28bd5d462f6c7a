// Package demoapi is an in-memory grocery API speaking the same wire format
// as the production backend. It serves local development and the end-to-end
// tests of the storefront gateway.
package demoapi

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/freshcart/storefront/internal/core/domain"
)

// Options configures a demo server.
type Options struct {
	Secret   string
	TokenTTL time.Duration
	// OTPCode, when set, replaces the random one-time codes.
	OTPCode string
	Log     zerolog.Logger
}

// Server holds the demo API handlers.
type Server struct {
	store  *Store
	issuer *Issuer
	otp    string
	log    zerolog.Logger
	now    func() time.Time
}

func NewServer(store *Store, opts Options) *Server {
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Server{
		store:  store,
		issuer: NewIssuer(opts.Secret, ttl),
		otp:    opts.OTPCode,
		log:    opts.Log,
		now:    time.Now,
	}
}

// Issuer exposes the token issuer, e.g. for minting test credentials.
func (s *Server) Issuer() *Issuer { return s.issuer }

// Echo builds the HTTP server. Every route lives under /api.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomiddleware.Recover())

	api := e.Group("/api")

	api.POST("/users/login", s.login)
	api.POST("/users/register", s.register)
	api.POST("/users/send-otp", s.sendOTP)
	api.POST("/users/verify-otp", s.verifyOTP)

	api.GET("/foods", s.products)
	api.GET("/foods/search", s.search)
	api.GET("/foods/category/:category", s.productsByCategory)
	api.GET("/foods/:id", s.product)
	api.GET("/categories", s.categories)

	auth := Auth(s.issuer, s.store)
	user := api.Group("", auth)
	user.GET("/users/profile", s.profile)
	user.PUT("/users/:id", s.updateProfile)

	user.GET("/cart/my", s.cart)
	user.POST("/cart/add", s.addToCart)
	user.PUT("/cart/update/:id", s.updateCartLine)
	user.DELETE("/cart/remove/:id", s.removeCartLine)
	user.DELETE("/cart/clear", s.clearCart)

	user.POST("/orders/place", s.placeOrder)
	user.GET("/orders/my", s.myOrders)
	user.GET("/orders/:id", s.myOrder)
	user.GET("/orders/:id/items", s.myOrderItems)
	user.PUT("/orders/:id/cancel", s.cancelOrder)

	user.GET("/addresses", s.addresses)
	user.POST("/addresses", s.addAddress)
	user.DELETE("/addresses/:id", s.deleteAddress)

	admin := api.Group("/admin", auth, RequireRole(domain.RoleAdmin))
	admin.GET("/dashboard", s.dashboard)
	admin.GET("/users", s.customers)
	admin.PUT("/users/:id/status", s.setCustomerStatus)
	admin.GET("/orders", s.allOrders)
	admin.GET("/orders/:id", s.adminOrder)
	admin.GET("/orders/:id/items", s.adminOrderItems)
	admin.PUT("/orders/:id/status", s.setOrderStatus)
	admin.GET("/products", s.adminProducts)
	admin.POST("/products", s.createProduct)
	admin.PUT("/products/:id", s.updateProduct)
	admin.DELETE("/products/:id", s.deleteProduct)
	admin.GET("/categories", s.categories)
	admin.POST("/categories", s.createCategory)
	admin.PUT("/categories/:id", s.updateCategory)
	admin.DELETE("/categories/:id", s.deleteCategory)

	return e
}
