package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/freshcart/storefront/internal/core/domain"
)

var (
	orderErrs    = map[int]error{http.StatusNotFound: domain.ErrOrderNotFound}
	registerErrs = map[int]error{http.StatusConflict: domain.ErrUserExists, http.StatusBadRequest: domain.ErrInvalidInput}
	userErrs     = map[int]error{http.StatusNotFound: domain.ErrUserNotFound}
)

// ---------------------------------------------------------------------------
// Account
// ---------------------------------------------------------------------------

func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	var out domain.LoginResult
	err := c.do(ctx, call{
		method: http.MethodPost, route: "/users/login", path: "/users/login",
		body:   map[string]string{"email": email, "password": password},
		out:    &out,
		public: true,
	})
	if err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("%w: login answer carried no token", domain.ErrInvalidCredentials)
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, in domain.Signup) (*domain.Identity, error) {
	var out domain.Identity
	err := c.do(ctx, call{
		method: http.MethodPost, route: "/users/register", path: "/users/register",
		body: in, out: &out, public: true, errs: registerErrs,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendOTP(ctx context.Context, phone string) error {
	return c.do(ctx, call{
		method: http.MethodPost, route: "/users/send-otp", path: "/users/send-otp",
		body: map[string]string{"phoneNumber": phone}, public: true,
	})
}

func (c *Client) VerifyOTP(ctx context.Context, phone, otp string) (*domain.LoginResult, error) {
	var out domain.LoginResult
	err := c.do(ctx, call{
		method: http.MethodPost, route: "/users/verify-otp", path: "/users/verify-otp",
		body:   map[string]string{"phoneNumber": phone, "otp": otp},
		out:    &out,
		public: true,
		errs:   map[int]error{http.StatusBadRequest: domain.ErrInvalidCredentials},
	})
	if err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("%w: otp answer carried no token", domain.ErrInvalidCredentials)
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context) (*domain.Identity, error) {
	var out domain.Identity
	if err := c.do(ctx, call{method: http.MethodGet, route: "/users/profile", path: "/users/profile", out: &out, errs: userErrs}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, id domain.ID, in domain.Identity) (*domain.Identity, error) {
	var out domain.Identity
	err := c.do(ctx, call{
		method: http.MethodPut, route: "/users/{id}", path: "/users/" + escape(id.String()),
		body: in, out: &out, errs: userErrs,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------------------------------------------------------------------------
// Catalogue
// ---------------------------------------------------------------------------

func (c *Client) Products(ctx context.Context, category string) ([]domain.Product, error) {
	in := call{method: http.MethodGet, route: "/foods", path: "/foods"}
	if category != "" {
		in.route, in.path = "/foods/category/{category}", "/foods/category/"+escape(category)
	}
	var out []domain.Product
	in.out = &out
	if err := c.do(ctx, in); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) Product(ctx context.Context, id string) (*domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, call{method: http.MethodGet, route: "/foods/{id}", path: "/foods/" + escape(id), out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Search(ctx context.Context, query string) ([]domain.Product, error) {
	var out []domain.Product
	err := c.do(ctx, call{
		method: http.MethodGet, route: "/foods/search", path: "/foods/search",
		query: url.Values{"q": {query}}, out: &out,
	})
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := c.do(ctx, call{method: http.MethodGet, route: "/categories", path: "/categories", out: &out}); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// ---------------------------------------------------------------------------
// Cart
// ---------------------------------------------------------------------------

// cartBody accepts both answers of GET /cart/my: a bare item array or an
// object wrapping the items.
type cartBody struct {
	Items []domain.CartItem
}

func (b *cartBody) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		return json.Unmarshal(raw, &b.Items)
	}
	var wrapped struct {
		Items     []domain.CartItem `json:"items"`
		CartItems []domain.CartItem `json:"cartItems"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return err
	}
	b.Items = wrapped.Items
	if b.Items == nil {
		b.Items = wrapped.CartItems
	}
	return nil
}

func (c *Client) Cart(ctx context.Context) (domain.Cart, error) {
	var out cartBody
	if err := c.do(ctx, call{method: http.MethodGet, route: "/cart/my", path: "/cart/my", out: &out}); err != nil {
		return domain.Cart{}, err
	}
	return domain.Cart{Items: out.Items}, nil
}

func (c *Client) AddItem(ctx context.Context, productID string, quantity int64) error {
	return c.do(ctx, call{
		method: http.MethodPost, route: "/cart/add", path: "/cart/add",
		body: map[string]any{"foodId": productID, "quantity": quantity},
	})
}

func (c *Client) UpdateItem(ctx context.Context, itemID string, quantity int64) error {
	return c.do(ctx, call{
		method: http.MethodPut, route: "/cart/update/{id}", path: "/cart/update/" + escape(itemID),
		body: map[string]any{"quantity": quantity},
	})
}

func (c *Client) RemoveItem(ctx context.Context, itemID string) error {
	return c.do(ctx, call{method: http.MethodDelete, route: "/cart/remove/{id}", path: "/cart/remove/" + escape(itemID)})
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodDelete, route: "/cart/clear", path: "/cart/clear"})
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

func (c *Client) PlaceOrder(ctx context.Context, in domain.PlaceOrder) (*domain.Order, error) {
	var out domain.Order
	err := c.do(ctx, call{
		method: http.MethodPost, route: "/orders/place", path: "/orders/place",
		body: in, out: &out, errs: map[int]error{http.StatusBadRequest: domain.ErrInvalidInput},
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := c.do(ctx, call{method: http.MethodGet, route: "/orders/my", path: "/orders/my", out: &out}); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) Order(ctx context.Context, id string) (*domain.Order, error) {
	var out domain.Order
	if err := c.do(ctx, call{method: http.MethodGet, route: "/orders/{id}", path: "/orders/" + escape(id), out: &out, errs: orderErrs}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) OrderItems(ctx context.Context, id string) ([]domain.OrderItem, error) {
	var out []domain.OrderItem
	err := c.do(ctx, call{
		method: http.MethodGet, route: "/orders/{id}/items", path: "/orders/" + escape(id) + "/items",
		out: &out, errs: orderErrs,
	})
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) CancelOrder(ctx context.Context, id string) (*domain.Order, error) {
	var out domain.Order
	err := c.do(ctx, call{
		method: http.MethodPut, route: "/orders/{id}/cancel", path: "/orders/" + escape(id) + "/cancel",
		out: &out, errs: orderErrs,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ---------------------------------------------------------------------------
// Addresses
// ---------------------------------------------------------------------------

func (c *Client) Addresses(ctx context.Context) ([]domain.Address, error) {
	var out []domain.Address
	if err := c.do(ctx, call{method: http.MethodGet, route: "/addresses", path: "/addresses", out: &out}); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) AddAddress(ctx context.Context, a domain.Address) (*domain.Address, error) {
	var out domain.Address
	err := c.do(ctx, call{
		method: http.MethodPost, route: "/addresses", path: "/addresses",
		body: a, out: &out, errs: map[int]error{http.StatusBadRequest: domain.ErrInvalidInput},
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAddress(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, route: "/addresses/{id}", path: "/addresses/" + escape(id)})
}

// ---------------------------------------------------------------------------
// Admin
// ---------------------------------------------------------------------------

func (c *Client) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	var out domain.Dashboard
	if err := c.do(ctx, call{method: http.MethodGet, route: "/admin/dashboard", path: "/admin/dashboard", out: &out}); err != nil {
		return nil, err
	}
	if out.RecentOrders == nil {
		out.RecentOrders = []domain.RecentOrder{}
	}
	return &out, nil
}

func (c *Client) Customers(ctx context.Context) ([]domain.Customer, error) {
	var out []domain.Customer
	if err := c.do(ctx, call{method: http.MethodGet, route: "/admin/users", path: "/admin/users", out: &out}); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) SetCustomerStatus(ctx context.Context, id, status string) error {
	return c.do(ctx, call{
		method: http.MethodPut, route: "/admin/users/{id}/status", path: "/admin/users/" + escape(id) + "/status",
		body: map[string]string{"status": status}, errs: userErrs,
	})
}

func (c *Client) AllOrders(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	if err := c.do(ctx, call{method: http.MethodGet, route: "/admin/orders", path: "/admin/orders", out: &out}); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) AdminOrder(ctx context.Context, id string) (*domain.Order, error) {
	var out domain.Order
	err := c.do(ctx, call{
		method: http.MethodGet, route: "/admin/orders/{id}", path: "/admin/orders/" + escape(id),
		out: &out, errs: orderErrs,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminOrderItems(ctx context.Context, id string) ([]domain.OrderItem, error) {
	var out []domain.OrderItem
	err := c.do(ctx, call{
		method: http.MethodGet, route: "/admin/orders/{id}/items", path: "/admin/orders/" + escape(id) + "/items",
		out: &out, errs: orderErrs,
	})
	if err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) SetOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	var out domain.Order
	err := c.do(ctx, call{
		method: http.MethodPut, route: "/admin/orders/{id}/status", path: "/admin/orders/" + escape(id) + "/status",
		query: url.Values{"status": {string(status)}}, out: &out, errs: orderErrs,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdminProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := c.do(ctx, call{method: http.MethodGet, route: "/admin/products", path: "/admin/products", out: &out}); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	var out domain.Product
	if err := c.do(ctx, call{method: http.MethodPost, route: "/admin/products", path: "/admin/products", body: p, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, p domain.Product) (*domain.Product, error) {
	var out domain.Product
	err := c.do(ctx, call{
		method: http.MethodPut, route: "/admin/products/{id}", path: "/admin/products/" + escape(id),
		body: p, out: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, route: "/admin/products/{id}", path: "/admin/products/" + escape(id)})
}

func (c *Client) AdminCategories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	if err := c.do(ctx, call{method: http.MethodGet, route: "/admin/categories", path: "/admin/categories", out: &out}); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

func (c *Client) CreateCategory(ctx context.Context, cat domain.Category) (*domain.Category, error) {
	var out domain.Category
	if err := c.do(ctx, call{method: http.MethodPost, route: "/admin/categories", path: "/admin/categories", body: cat, out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id string, cat domain.Category) (*domain.Category, error) {
	var out domain.Category
	err := c.do(ctx, call{
		method: http.MethodPut, route: "/admin/categories/{id}", path: "/admin/categories/" + escape(id),
		body: cat, out: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, route: "/admin/categories/{id}", path: "/admin/categories/" + escape(id)})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
