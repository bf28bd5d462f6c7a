package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
	"github.com/freshcart/storefront/internal/core/service"
	"github.com/freshcart/storefront/internal/infrastructure/storage/memory"
)

type remoteCall struct {
	method string
	route  string
	status int
}

type recordingMetrics struct {
	mu    sync.Mutex
	calls []remoteCall
}

func (m *recordingMetrics) RecordSessionEvent(domain.Namespace, domain.SessionEventKind) {}
func (m *recordingMetrics) RecordAttach(domain.Namespace, bool)                         {}
func (m *recordingMetrics) RecordRemoteCall(method, route string, status int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, remoteCall{method, route, status})
}

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, domain.SessionEvent) {}

type nopNavigator struct{ last string }

func (n *nopNavigator) Navigate(_ context.Context, path string) { n.last = path }

// fakeRemote answers from a handler map keyed by "METHOD /path".
func fakeRemote(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func signed(t *testing.T, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("remote"))
	require.NoError(t, err)
	return s
}

type harness struct {
	client  *Client
	metrics *recordingMetrics
	device  *service.Device
	nav     *nopNavigator
	store   *memory.Store
}

func newHarness(t *testing.T, srv *httptest.Server) *harness {
	t.Helper()
	metrics := &recordingMetrics{}
	store := memory.New()
	devices := service.NewDevices(store, nopAuditor{}, metrics, "/admin", zerolog.Nop())
	nav := &nopNavigator{}
	return &harness{
		client:  New(srv.URL+"/api/", 0, service.DeviceAuthorizer{AdminPrefix: "/admin"}, metrics, zerolog.Nop()),
		metrics: metrics,
		device:  devices.Open("dev-1", nav),
		nav:     nav,
		store:   store,
	}
}

func (h *harness) ctx(route string) context.Context {
	return service.WithDevice(service.WithRequest(context.Background(), service.RequestInfo{Route: route}), h.device)
}

func TestClient_LoginIsPublic(t *testing.T) {
	srv := fakeRemote(t, map[string]http.HandlerFunc{
		"POST /api/users/login": func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["password"] != "secret" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid password"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"token": "tok", "user": map[string]any{"id": 7, "name": "Alice"}})
		},
	})
	h := newHarness(t, srv)
	ctx := h.ctx("/login")
	require.NoError(t, h.device.Sessions.Save(ctx, domain.NamespaceShopper, signed(t, domain.RoleUser), domain.Identity{Name: "Alice"}))

	res, err := h.client.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, domain.ID("7"), res.User.ID)

	_, err = h.client.Login(ctx, "alice@example.com", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "Invalid password")

	// a failed login is not a session end
	sess, err := h.device.Sessions.Load(ctx, domain.NamespaceShopper)
	require.NoError(t, err)
	assert.NotNil(t, sess)
	assert.Empty(t, h.nav.last)
}

func TestClient_RegisterConflict(t *testing.T) {
	srv := fakeRemote(t, map[string]http.HandlerFunc{
		"POST /api/users/register": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusConflict, map[string]string{"message": "User already exists"})
		},
	})
	h := newHarness(t, srv)

	_, err := h.client.Register(h.ctx("/signup"), domain.Signup{Email: "a@b.c"})
	require.ErrorIs(t, err, domain.ErrUserExists)
}

func TestClient_CartAttachesShopperCredential(t *testing.T) {
	userTok := signed(t, domain.RoleUser)
	srv := fakeRemote(t, map[string]http.HandlerFunc{
		"GET /api/cart/my": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer "+userTok, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "productId": 9, "name": "Milk", "price": 30, "quantity": 2}})
		},
	})
	h := newHarness(t, srv)
	ctx := h.ctx("/cart")
	require.NoError(t, h.device.Sessions.Save(ctx, domain.NamespaceShopper, userTok, domain.Identity{}))
	require.NoError(t, h.device.Sessions.Save(ctx, domain.NamespaceAdministrator, signed(t, domain.RoleAdmin), domain.Identity{}))

	cart, err := h.client.Cart(ctx)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, domain.ID("9"), cart.Items[0].ProductID)
	assert.Equal(t, float64(60), cart.Subtotal())
}

func TestCartBody_AcceptsBothShapes(t *testing.T) {
	cases := map[string]int{
		`[{"id":1},{"id":2}]`:                        2,
		`{"items":[{"id":1}]}`:                       1,
		`{"cartItems":[{"id":1},{"id":2},{"id":3}]}`: 3,
		`{}`: 0,
	}
	for raw, want := range cases {
		var b cartBody
		require.NoError(t, json.Unmarshal([]byte(raw), &b), raw)
		assert.Len(t, b.Items, want, raw)
	}
}

func TestClient_401EndsOnlyRouteNamespace(t *testing.T) {
	srv := fakeRemote(t, map[string]http.HandlerFunc{
		"GET /api/admin/dashboard": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "token expired"})
		},
	})
	h := newHarness(t, srv)
	ctx := h.ctx("/admin/dashboard")
	require.NoError(t, h.device.Sessions.Save(ctx, domain.NamespaceShopper, signed(t, domain.RoleUser), domain.Identity{Name: "Alice"}))
	require.NoError(t, h.device.Sessions.Save(ctx, domain.NamespaceAdministrator, signed(t, domain.RoleAdmin), domain.Identity{Name: "Root"}))

	_, err := h.client.Dashboard(ctx)
	var ended *domain.SessionEndedError
	require.ErrorAs(t, err, &ended)
	assert.Equal(t, domain.NamespaceAdministrator, ended.Namespace)
	assert.Equal(t, "/admin/login", h.nav.last)

	snap := h.store.Snapshot("dev-1")
	assert.NotContains(t, snap, "adminToken")
	assert.NotContains(t, snap, "admin")
	assert.Contains(t, snap, "userToken")
	assert.Contains(t, snap, "user")
}

func TestClient_403KeepsSession(t *testing.T) {
	srv := fakeRemote(t, map[string]http.HandlerFunc{
		"GET /api/admin/users": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		},
	})
	h := newHarness(t, srv)
	ctx := h.ctx("/admin/users")
	require.NoError(t, h.device.Sessions.Save(ctx, domain.NamespaceAdministrator, signed(t, domain.RoleAdmin), domain.Identity{}))

	_, err := h.client.Customers(ctx)
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Contains(t, h.store.Snapshot("dev-1"), "adminToken")
}

func TestClient_StatusMapping(t *testing.T) {
	srv := fakeRemote(t, map[string]http.HandlerFunc{
		"GET /api/orders/5": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Order not found"})
		},
		"GET /api/foods": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "db down"})
		},
		"DELETE /api/cart/clear": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "Cart cleared successfully")
		},
	})
	h := newHarness(t, srv)
	ctx := h.ctx("/orders/5")

	_, err := h.client.Order(ctx, "5")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = h.client.Products(ctx, "")
	var re *domain.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusServiceUnavailable, re.Status)
	assert.Equal(t, "db down", re.Message)
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)

	require.NoError(t, h.client.ClearCart(ctx))
}

func TestClient_TransportFailure(t *testing.T) {
	srv := fakeRemote(t, nil)
	h := newHarness(t, srv)
	srv.Close()

	_, err := h.client.Categories(h.ctx("/"))
	require.ErrorIs(t, err, domain.ErrRemoteUnavailable)

	require.NotEmpty(t, h.metrics.calls)
	assert.Equal(t, 0, h.metrics.calls[len(h.metrics.calls)-1].status)
}

func TestClient_RequestShapes(t *testing.T) {
	var (
		gotStatus string
		gotBody   map[string]any
		gotQuery  string
	)
	srv := fakeRemote(t, map[string]http.HandlerFunc{
		"PUT /api/admin/orders/3/status": func(w http.ResponseWriter, r *http.Request) {
			gotStatus = r.URL.Query().Get("status")
			writeJSON(w, http.StatusOK, map[string]any{"id": 3, "status": gotStatus})
		},
		"POST /api/cart/add": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			writeJSON(w, http.StatusOK, map[string]any{})
		},
		"GET /api/foods/search": func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("q")
			writeJSON(w, http.StatusOK, nil)
		},
	})
	h := newHarness(t, srv)
	ctx := h.ctx("/admin/orders/3")

	order, err := h.client.SetOrderStatus(ctx, "3", domain.OrderConfirmed)
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", gotStatus)
	assert.Equal(t, domain.OrderConfirmed, order.Status)

	require.NoError(t, h.client.AddItem(ctx, "9", 2))
	assert.Equal(t, "9", gotBody["foodId"])
	assert.Equal(t, float64(2), gotBody["quantity"])

	products, err := h.client.Search(ctx, "green tea")
	require.NoError(t, err)
	assert.Equal(t, "green tea", gotQuery)
	assert.NotNil(t, products)

	h.metrics.mu.Lock()
	defer h.metrics.mu.Unlock()
	assert.Contains(t, h.metrics.calls, remoteCall{http.MethodPut, "/admin/orders/{id}/status", http.StatusOK})
}

// stubAuthorizer lets a test fail the attach step.
type stubAuthorizer struct{ err error }

func (a stubAuthorizer) Attach(context.Context, *http.Request) (ports.Attachment, error) {
	return ports.Attachment{}, a.err
}

func (a stubAuthorizer) Observe(context.Context, ports.Attachment, int) error { return nil }

func TestClient_AttachErrorStopsRequest(t *testing.T) {
	hit := false
	srv := fakeRemote(t, map[string]http.HandlerFunc{
		"GET /api/addresses": func(w http.ResponseWriter, _ *http.Request) { hit = true },
	})
	boom := errors.New("storage down")
	c := New(srv.URL+"/api", 0, stubAuthorizer{err: boom}, &recordingMetrics{}, zerolog.Nop())

	_, err := c.Addresses(context.Background())
	require.ErrorIs(t, err, boom)
	assert.False(t, hit)
}

func TestClient_ZeroTimeoutDefersToCallerContext(t *testing.T) {
	srv := fakeRemote(t, map[string]http.HandlerFunc{
		"GET /api/categories": func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(150 * time.Millisecond):
				writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "name": "Fruits"}})
			case <-r.Context().Done():
			}
		},
	})
	h := newHarness(t, srv)
	require.Zero(t, h.client.http.Timeout)

	categories, err := h.client.Categories(h.ctx("/"))
	require.NoError(t, err, "a slow answer must not be cut off without a caller deadline")
	assert.Len(t, categories, 1)

	ctx, cancel := context.WithTimeout(h.ctx("/"), 20*time.Millisecond)
	defer cancel()
	_, err = h.client.Categories(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}
