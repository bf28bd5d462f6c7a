package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/freshcart/storefront/internal/api/metrics"
	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
	"github.com/freshcart/storefront/internal/core/service"
	"github.com/freshcart/storefront/internal/infrastructure/queue"
	"github.com/freshcart/storefront/internal/infrastructure/storage/memory"
)

// --------------------------------------------------------------------------
// Catalog
// --------------------------------------------------------------------------

type stubCatalogAPI struct {
	category string
	query    string
}

func (s *stubCatalogAPI) Products(_ context.Context, category string) ([]domain.Product, error) {
	s.category = category
	return []domain.Product{{ID: "1", Name: "Milk", Price: 30, Stock: 5}}, nil
}

func (s *stubCatalogAPI) Product(_ context.Context, id string) (*domain.Product, error) {
	if id != "1" {
		return nil, &domain.RemoteError{Status: http.StatusNotFound}
	}
	return &domain.Product{ID: "1", Name: "Milk"}, nil
}

func (s *stubCatalogAPI) Search(_ context.Context, q string) ([]domain.Product, error) {
	s.query = q
	return []domain.Product{}, nil
}

func (s *stubCatalogAPI) Categories(context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: "1", Name: "Dairy"}}, nil
}

func TestCatalogHandler(t *testing.T) {
	api := &stubCatalogAPI{}
	h := NewCatalogHandler(api)

	c, rec := newContext(http.MethodGet, "/api/products?category=Dairy", "")
	if err := h.Products(c); err != nil {
		t.Fatalf("products: %v", err)
	}
	if api.category != "Dairy" || !strings.Contains(rec.Body.String(), "Milk") {
		t.Fatalf("unexpected products call: %q %s", api.category, rec.Body.String())
	}

	c, _ = newContext(http.MethodGet, "/api/search?q=%20", "")
	if err := h.Search(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected blank query rejected, got %v", err)
	}

	c, _ = newContext(http.MethodGet, "/api/search?q=milk", "")
	if err := h.Search(c); err != nil || api.query != "milk" {
		t.Fatalf("search: %v %q", err, api.query)
	}

	c, _ = newContext(http.MethodGet, "/api/products/9", "")
	c.SetParamNames("id")
	c.SetParamValues("9")
	var re *domain.RemoteError
	if err := h.Product(c); !errors.As(err, &re) || re.Status != http.StatusNotFound {
		t.Fatalf("expected remote 404 passed through, got %v", err)
	}
}

// --------------------------------------------------------------------------
// Cart
// --------------------------------------------------------------------------

type stubCartService struct {
	added   string
	qty     int64
	coupon  string
	cleared bool
	err     error
}

func (s *stubCartService) view() (*ports.CartView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ports.CartView{Items: []domain.CartItem{}, Totals: domain.Totals{Coupon: s.coupon}}, nil
}

func (s *stubCartService) Cart(context.Context) (*ports.CartView, error) { return s.view() }

func (s *stubCartService) AddItem(_ context.Context, productID string, qty int64) (*ports.CartView, error) {
	s.added, s.qty = productID, qty
	return s.view()
}

func (s *stubCartService) UpdateItem(_ context.Context, _ string, qty int64) (*ports.CartView, error) {
	s.qty = qty
	return s.view()
}

func (s *stubCartService) RemoveItem(context.Context, string) (*ports.CartView, error) {
	return s.view()
}

func (s *stubCartService) Clear(context.Context) error {
	s.cleared = true
	return s.err
}

func (s *stubCartService) ApplyCoupon(_ context.Context, code string) (*ports.CartView, error) {
	s.coupon = code
	return s.view()
}

func (s *stubCartService) RemoveCoupon(context.Context) (*ports.CartView, error) {
	s.coupon = ""
	return s.view()
}

func (s *stubCartService) Coupons() []domain.Coupon { return domain.DefaultCoupons }

func TestCartHandler_AddItem(t *testing.T) {
	svc := &stubCartService{}
	h := NewCartHandler(svc)

	c, rec := newContext(http.MethodPost, "/api/cart/items", `{"productId":"7","quantity":2}`)
	if err := h.AddItem(c); err != nil {
		t.Fatalf("add: %v", err)
	}
	if rec.Code != http.StatusCreated || svc.added != "7" || svc.qty != 2 {
		t.Fatalf("unexpected add: %d %s %d", rec.Code, svc.added, svc.qty)
	}

	c, _ = newContext(http.MethodPost, "/api/cart/items", `{"productId":"7","quantity":0}`)
	if err := h.AddItem(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected zero quantity rejected, got %v", err)
	}
}

func TestCartHandler_CouponAndClear(t *testing.T) {
	svc := &stubCartService{}
	h := NewCartHandler(svc)

	c, rec := newContext(http.MethodPost, "/api/cart/coupon", `{"code":"first10"}`)
	if err := h.ApplyCoupon(c); err != nil {
		t.Fatalf("apply: %v", err)
	}
	var view ports.CartView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if view.Totals.Coupon != "first10" {
		t.Fatalf("coupon not forwarded: %+v", view.Totals)
	}

	c, rec = newContext(http.MethodDelete, "/api/cart", "")
	if err := h.Clear(c); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if rec.Code != http.StatusNoContent || !svc.cleared {
		t.Fatalf("expected 204 and cleared, got %d", rec.Code)
	}
}

func TestCartHandler_PropagatesServiceError(t *testing.T) {
	svc := &stubCartService{err: domain.ErrCartOnAdminRoute}
	c, _ := newContext(http.MethodGet, "/api/cart", "")
	if err := NewCartHandler(svc).Cart(c); !errors.Is(err, domain.ErrCartOnAdminRoute) {
		t.Fatalf("expected ErrCartOnAdminRoute, got %v", err)
	}
}

// --------------------------------------------------------------------------
// Orders
// --------------------------------------------------------------------------

type stubOrderService struct {
	placed ports.PlaceOrderInput
}

func (s *stubOrderService) Place(_ context.Context, in ports.PlaceOrderInput) (*domain.Order, error) {
	s.placed = in
	return &domain.Order{ID: "42", Status: domain.OrderPlaced, TotalAmount: 270}, nil
}

func (s *stubOrderService) List(context.Context) ([]domain.Order, error) {
	return []domain.Order{{ID: "42"}}, nil
}

func (s *stubOrderService) Get(_ context.Context, id string) (*domain.Order, error) {
	if id != "42" {
		return nil, domain.ErrOrderNotFound
	}
	return &domain.Order{ID: "42"}, nil
}

func (s *stubOrderService) Cancel(_ context.Context, id string) (*domain.Order, error) {
	return &domain.Order{ID: domain.ID(id), Status: domain.OrderCancelled}, nil
}

func TestOrderHandler_Place(t *testing.T) {
	svc := &stubOrderService{}
	h := NewOrderHandler(svc)

	body := `{"paymentMethod":"upi","address":{"name":"Asha","phone":"9876543210","address":"1 MG Road","city":"Pune","pincode":"411001"}}`
	c, rec := newContext(http.MethodPost, "/api/orders", body)
	if err := h.Place(c); err != nil {
		t.Fatalf("place: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if svc.placed.PaymentMethod != domain.PaymentUPI || svc.placed.Address.City != "Pune" {
		t.Fatalf("unexpected input %+v", svc.placed)
	}

	c, _ = newContext(http.MethodPost, "/api/orders", `{"addressId":"3","paymentMethod":"BITCOIN"}`)
	if err := h.Place(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected unsupported payment rejected, got %v", err)
	}
}

func TestOrderHandler_GetNotFound(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/api/orders/7", "")
	c.SetParamNames("id")
	c.SetParamValues("7")
	if err := NewOrderHandler(&stubOrderService{}).Get(c); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

// --------------------------------------------------------------------------
// Location
// --------------------------------------------------------------------------

type nopNavigator struct{}

func (nopNavigator) Navigate(context.Context, string) {}

func TestAddressHandler_LocationRoundTrip(t *testing.T) {
	store := memory.New()
	devices := service.NewDevices(store, queue.NopAuditor{}, metrics.Noop{}, "/admin", zerolog.Nop())
	dev := devices.Open("dev-1", nopNavigator{})
	h := NewAddressHandler(nil)

	c, _ := newContext(http.MethodPut, "/api/location", `{"label":"Home","pincode":"411001","coordinates":{"lat":18.52,"lng":73.85}}`)
	c.SetRequest(c.Request().WithContext(service.WithDevice(c.Request().Context(), dev)))
	if err := h.SetLocation(c); err != nil {
		t.Fatalf("set location: %v", err)
	}
	if _, ok := store.Snapshot("dev-1")["selectedLocation"]; !ok {
		t.Fatalf("location not persisted in browser scope")
	}

	c, rec := newContext(http.MethodGet, "/api/location", "")
	c.SetRequest(c.Request().WithContext(service.WithDevice(c.Request().Context(), dev)))
	if err := h.Location(c); err != nil {
		t.Fatalf("get location: %v", err)
	}
	var resp locationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Location == nil || resp.Location.Label != "Home" || resp.Location.Coordinates.Lat != 18.52 {
		t.Fatalf("unexpected location %+v", resp.Location)
	}
}

func TestAddressHandler_LocationWithoutDevice(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/api/location", "")
	if err := NewAddressHandler(nil).Location(c); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}
