package ports

import (
	"context"

	"github.com/freshcart/storefront/internal/core/domain"
)

// AuthService runs the login flows of both namespaces for the browser bound to
// ctx.
type AuthService interface {
	Login(ctx context.Context, ns domain.Namespace, email, password string) (*domain.Identity, error)
	Signup(ctx context.Context, in domain.Signup) (*domain.Identity, error)
	SendOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, phone, otp string) (*domain.Identity, error)
	// Logout clears ns and returns the login screen to redirect to.
	Logout(ctx context.Context, ns domain.Namespace) (string, error)
	Me(ctx context.Context, ns domain.Namespace) (*domain.Identity, error)
	UpdateProfile(ctx context.Context, in domain.Identity) (*domain.Identity, error)
}

// CartView is the cart together with its derived totals.
type CartView struct {
	Items  []domain.CartItem `json:"items"`
	Totals domain.Totals     `json:"totals"`
}

// CartService manages the shopper's cart and applied coupon.
type CartService interface {
	Cart(ctx context.Context) (*CartView, error)
	AddItem(ctx context.Context, productID string, quantity int64) (*CartView, error)
	UpdateItem(ctx context.Context, itemID string, quantity int64) (*CartView, error)
	RemoveItem(ctx context.Context, itemID string) (*CartView, error)
	Clear(ctx context.Context) error
	ApplyCoupon(ctx context.Context, code string) (*CartView, error)
	RemoveCoupon(ctx context.Context) (*CartView, error)
	Coupons() []domain.Coupon
}

// PlaceOrderInput carries checkout data. Either AddressID or Address must be
// set; AddressID wins.
type PlaceOrderInput struct {
	AddressID     string
	Address       domain.DeliveryAddress
	PaymentMethod domain.PaymentMethod
}

// OrderService places and tracks the shopper's orders.
type OrderService interface {
	Place(ctx context.Context, in PlaceOrderInput) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	Cancel(ctx context.Context, id string) (*domain.Order, error)
}

// AdminService holds the admin operations that need more than a
// pass-through to the remote API.
type AdminService interface {
	OrderDetail(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
	SetCustomerStatus(ctx context.Context, id, status string) error
}
