package ports

import (
	"context"
	"net/http"

	"github.com/freshcart/storefront/internal/core/domain"
)

// Attachment records which namespace's credential, if any, went out on a
// remote request.
type Attachment struct {
	Namespace    domain.Namespace
	Credentialed bool
}

// RequestAuthorizer decides the bearer credential of each outgoing remote
// request and interprets the status that came back.
type RequestAuthorizer interface {
	Attach(ctx context.Context, req *http.Request) (Attachment, error)
	Observe(ctx context.Context, att Attachment, status int) error
}

// AuthAPI covers the remote account endpoints.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)
	Register(ctx context.Context, in domain.Signup) (*domain.Identity, error)
	SendOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, otp string) (*domain.LoginResult, error)
	Profile(ctx context.Context) (*domain.Identity, error)
	UpdateProfile(ctx context.Context, id domain.ID, in domain.Identity) (*domain.Identity, error)
}

// CatalogAPI covers the public product endpoints.
type CatalogAPI interface {
	Products(ctx context.Context, category string) ([]domain.Product, error)
	Product(ctx context.Context, id string) (*domain.Product, error)
	Search(ctx context.Context, query string) ([]domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

// CartAPI covers the shopper's server-side cart.
type CartAPI interface {
	Cart(ctx context.Context) (domain.Cart, error)
	AddItem(ctx context.Context, productID string, quantity int64) error
	UpdateItem(ctx context.Context, itemID string, quantity int64) error
	RemoveItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context) error
}

// OrderAPI covers the shopper's orders.
type OrderAPI interface {
	PlaceOrder(ctx context.Context, in domain.PlaceOrder) (*domain.Order, error)
	Orders(ctx context.Context) ([]domain.Order, error)
	Order(ctx context.Context, id string) (*domain.Order, error)
	OrderItems(ctx context.Context, id string) ([]domain.OrderItem, error)
	CancelOrder(ctx context.Context, id string) (*domain.Order, error)
}

// AddressAPI covers saved delivery addresses.
type AddressAPI interface {
	Addresses(ctx context.Context) ([]domain.Address, error)
	AddAddress(ctx context.Context, a domain.Address) (*domain.Address, error)
	DeleteAddress(ctx context.Context, id string) error
}

// AdminAPI covers the administrator endpoints.
type AdminAPI interface {
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
	Customers(ctx context.Context) ([]domain.Customer, error)
	SetCustomerStatus(ctx context.Context, id, status string) error

	AllOrders(ctx context.Context) ([]domain.Order, error)
	AdminOrder(ctx context.Context, id string) (*domain.Order, error)
	AdminOrderItems(ctx context.Context, id string) ([]domain.OrderItem, error)
	SetOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)

	AdminProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id string, p domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	AdminCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, c domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id string, c domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// RemoteAPI is the full grocery API the storefront talks to.
type RemoteAPI interface {
	AuthAPI
	CatalogAPI
	CartAPI
	OrderAPI
	AddressAPI
	AdminAPI
}
