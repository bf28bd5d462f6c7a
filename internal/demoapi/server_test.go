package demoapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/freshcart/storefront/internal/core/domain"
)

const testSecret = "test-secret"

type harness struct {
	t     *testing.T
	srv   *Server
	store *Store
	e     *echo.Echo
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := NewStore(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	srv := NewServer(store, Options{Secret: testSecret, TokenTTL: time.Hour, OTPCode: "123456", Log: zerolog.Nop()})
	return &harness{t: t, srv: srv, store: store, e: srv.Echo()}
}

func (h *harness) do(method, path, token, body string) *httptest.ResponseRecorder {
	h.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.e.ServeHTTP(rec, req)
	return rec
}

func (h *harness) login(email, password string) domain.LoginResult {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/api/users/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		h.t.Fatalf("login %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	var out domain.LoginResult
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		h.t.Fatalf("decode login: %v", err)
	}
	return out
}

func decodeInto[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

// ---------------------------------------------------------------------------
// Account
// ---------------------------------------------------------------------------

func TestLogin_IssuesRoleClaim(t *testing.T) {
	h := newHarness(t)
	res := h.login(DemoAdminEmail, DemoAdminPassword)
	if res.User.Role != domain.RoleAdmin {
		t.Fatalf("expected ADMIN user, got %q", res.User.Role)
	}
	claims, err := h.srv.Issuer().parse(res.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims["role"] != domain.RoleAdmin || claims["exp"] == nil {
		t.Fatalf("unexpected claims %v", claims)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodPost, "/api/users/login", "", `{"email":"`+DemoUserEmail+`","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid email or password") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h := newHarness(t)
	body := `{"name":"A","email":"new@freshcart.local","password":"secret1","role":"ADMIN"}`
	rec := h.do(http.MethodPost, "/api/users/register", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if id := decodeInto[domain.Identity](t, rec); id.Role != domain.RoleUser {
		t.Fatalf("self-registration must not grant %q", id.Role)
	}
	if rec := h.do(http.MethodPost, "/api/users/register", "", body); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", rec.Code)
	}
}

func TestOTP_Flow(t *testing.T) {
	h := newHarness(t)
	if rec := h.do(http.MethodPost, "/api/users/send-otp", "", `{"phoneNumber":"`+DemoUserPhone+`"}`); rec.Code != http.StatusOK {
		t.Fatalf("send-otp: %d", rec.Code)
	}
	if rec := h.do(http.MethodPost, "/api/users/verify-otp", "", `{"phoneNumber":"`+DemoUserPhone+`","otp":"000000"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a wrong code, got %d", rec.Code)
	}

	// a wrong guess does not burn the code
	rec := h.do(http.MethodPost, "/api/users/verify-otp", "", `{"phoneNumber":"`+DemoUserPhone+`","otp":"123456"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify-otp: %d %s", rec.Code, rec.Body.String())
	}
	if res := decodeInto[domain.LoginResult](t, rec); res.User.Email != DemoUserEmail || res.Token == "" {
		t.Fatalf("expected the seeded shopper, got %+v", res.User)
	}

	if rec := h.do(http.MethodPost, "/api/users/verify-otp", "", `{"phoneNumber":"`+DemoUserPhone+`","otp":"123456"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected a redeemed code to be rejected, got %d", rec.Code)
	}
}

func TestProfile_UpdateOwnOnly(t *testing.T) {
	h := newHarness(t)
	user := h.login(DemoUserEmail, DemoUserPassword)
	admin := h.login(DemoAdminEmail, DemoAdminPassword)

	rec := h.do(http.MethodPut, "/api/users/"+string(user.User.ID), user.Token, `{"name":"Renamed","city":"Pune"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update own profile: %d", rec.Code)
	}
	if id := decodeInto[domain.Identity](t, rec); id.Name != "Renamed" || id.City != "Pune" {
		t.Fatalf("profile not updated: %+v", id)
	}
	if rec := h.do(http.MethodPut, "/api/users/"+string(admin.User.ID), user.Token, `{"name":"x"}`); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another account, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Auth middleware
// ---------------------------------------------------------------------------

func TestAuth_RejectsMissingAndForeignTokens(t *testing.T) {
	h := newHarness(t)
	if rec := h.do(http.MethodGet, "/api/cart/my", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	other := NewIssuer("another-secret", time.Hour)
	id, _, _ := h.store.Authenticate(DemoUserEmail, DemoUserPassword)
	forged, _ := other.Issue(id)
	if rec := h.do(http.MethodGet, "/api/cart/my", forged, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a foreign signature, got %d", rec.Code)
	}
}

func TestAuth_RejectsExpiredToken(t *testing.T) {
	h := newHarness(t)
	id, _, _ := h.store.Authenticate(DemoUserEmail, DemoUserPassword)
	h.srv.issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := h.srv.issuer.Issue(id)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	h.srv.issuer.now = time.Now
	if rec := h.do(http.MethodGet, "/api/cart/my", stale, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for an expired token, got %d", rec.Code)
	}
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	h := newHarness(t)
	user := h.login(DemoUserEmail, DemoUserPassword)
	admin := h.login(DemoAdminEmail, DemoAdminPassword)

	if rec := h.do(http.MethodGet, "/api/admin/dashboard", user.Token, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a shopper, got %d", rec.Code)
	}
	rec := h.do(http.MethodGet, "/api/admin/dashboard", admin.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for an admin, got %d", rec.Code)
	}
	if d := decodeInto[domain.Dashboard](t, rec); d.TotalUsers != 1 || d.TotalProducts == 0 {
		t.Fatalf("unexpected dashboard %+v", d)
	}
}

func TestBlockedCustomer_LosesAccess(t *testing.T) {
	h := newHarness(t)
	user := h.login(DemoUserEmail, DemoUserPassword)
	admin := h.login(DemoAdminEmail, DemoAdminPassword)

	path := "/api/admin/users/" + string(user.User.ID) + "/status"
	if rec := h.do(http.MethodPut, path, admin.Token, `{"status":"BLOCKED"}`); rec.Code != http.StatusNoContent {
		t.Fatalf("block: %d %s", rec.Code, rec.Body.String())
	}
	if rec := h.do(http.MethodGet, "/api/cart/my", user.Token, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a blocked shopper, got %d", rec.Code)
	}
	if rec := h.do(http.MethodGet, "/api/admin/dashboard", admin.Token, ""); rec.Code != http.StatusOK {
		t.Fatalf("admin must be unaffected, got %d", rec.Code)
	}
	rec := h.do(http.MethodPost, "/api/users/login", "", `{"email":"`+DemoUserEmail+`","password":"`+DemoUserPassword+`"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 login for a blocked shopper, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Shopping
// ---------------------------------------------------------------------------

func TestCartAndOrderLifecycle(t *testing.T) {
	h := newHarness(t)
	user := h.login(DemoUserEmail, DemoUserPassword)
	admin := h.login(DemoAdminEmail, DemoAdminPassword)

	if rec := h.do(http.MethodPost, "/api/orders/place", user.Token, `{"deliveryAddress":"x","paymentMethod":"COD","totalAmount":1}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on empty cart, got %d", rec.Code)
	}

	if rec := h.do(http.MethodPost, "/api/cart/add", user.Token, `{"foodId":1,"quantity":2}`); rec.Code != http.StatusOK {
		t.Fatalf("add: %d %s", rec.Code, rec.Body.String())
	}
	h.do(http.MethodPost, "/api/cart/add", user.Token, `{"foodId":"1","quantity":1}`)
	if rec := h.do(http.MethodPost, "/api/cart/add", user.Token, `{"foodId":"8","quantity":99}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 beyond stock, got %d", rec.Code)
	}

	lines := decodeInto[[]domain.CartItem](t, h.do(http.MethodGet, "/api/cart/my", user.Token, ""))
	if len(lines) != 1 || lines[0].Quantity != 3 {
		t.Fatalf("expected one merged line of 3, got %+v", lines)
	}

	rec := h.do(http.MethodPost, "/api/orders/place", user.Token, `{"deliveryAddress":"1 Main St","paymentMethod":"upi","totalAmount":135}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("place: %d %s", rec.Code, rec.Body.String())
	}
	order := decodeInto[domain.Order](t, rec)
	if order.Status != domain.OrderPlaced || order.PaymentMethod != "UPI" || len(order.Items) != 1 {
		t.Fatalf("unexpected order %+v", order)
	}
	if lines := decodeInto[[]domain.CartItem](t, h.do(http.MethodGet, "/api/cart/my", user.Token, "")); len(lines) != 0 {
		t.Fatalf("placing an order must empty the cart, got %+v", lines)
	}

	items := decodeInto[[]domain.OrderItem](t, h.do(http.MethodGet, "/api/orders/"+string(order.ID)+"/items", user.Token, ""))
	if len(items) != 1 || items[0].Quantity != 3 {
		t.Fatalf("unexpected items %+v", items)
	}

	statusPath := "/api/admin/orders/" + string(order.ID) + "/status?status="
	if rec := h.do(http.MethodPut, statusPath+"delivered", admin.Token, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for PLACED -> DELIVERED, got %d", rec.Code)
	}
	if rec := h.do(http.MethodPut, statusPath+"confirmed", admin.Token, ""); rec.Code != http.StatusOK {
		t.Fatalf("confirm: %d", rec.Code)
	}
	if rec := h.do(http.MethodPut, "/api/orders/"+string(order.ID)+"/cancel", user.Token, ""); rec.Code != http.StatusOK {
		t.Fatalf("cancel: %d", rec.Code)
	}
	if rec := h.do(http.MethodPut, "/api/orders/"+string(order.ID)+"/cancel", user.Token, ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 cancelling twice, got %d", rec.Code)
	}

	customers := decodeInto[[]domain.Customer](t, h.do(http.MethodGet, "/api/admin/users", admin.Token, ""))
	if len(customers) != 1 || customers[0].Orders != 1 || customers[0].Spent != 0 {
		t.Fatalf("cancelled orders must not count as spend: %+v", customers)
	}
}

func TestClearCart_AnswersPlainText(t *testing.T) {
	h := newHarness(t)
	user := h.login(DemoUserEmail, DemoUserPassword)
	h.do(http.MethodPost, "/api/cart/add", user.Token, `{"foodId":"2","quantity":1}`)

	rec := h.do(http.MethodDelete, "/api/cart/clear", user.Token, "")
	if rec.Code != http.StatusOK || rec.Body.String() != "Cart cleared" {
		t.Fatalf("unexpected clear answer %d %q", rec.Code, rec.Body.String())
	}
}

func TestCatalogue(t *testing.T) {
	h := newHarness(t)
	all := decodeInto[[]domain.Product](t, h.do(http.MethodGet, "/api/foods", "", ""))
	if len(all) != 8 {
		t.Fatalf("expected 8 seeded products, got %d", len(all))
	}
	dairy := decodeInto[[]domain.Product](t, h.do(http.MethodGet, "/api/foods/category/dairy%20&%20bakery", "", ""))
	if len(dairy) != 2 {
		t.Fatalf("expected 2 dairy products, got %d", len(dairy))
	}
	found := decodeInto[[]domain.Product](t, h.do(http.MethodGet, "/api/foods/search?q=MILK", "", ""))
	if len(found) != 1 || found[0].ID != "3" {
		t.Fatalf("unexpected search result %+v", found)
	}
	if rec := h.do(http.MethodGet, "/api/foods/404", "", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAddresses_FirstIsDefault(t *testing.T) {
	h := newHarness(t)
	user := h.login(DemoUserEmail, DemoUserPassword)

	body := `{"name":"Demo","phone":"9876543210","address":"1 Main St","city":"Pune","pincode":"411001"}`
	first := decodeInto[domain.Address](t, h.do(http.MethodPost, "/api/addresses", user.Token, body))
	if !first.IsDefault {
		t.Fatal("first address should become the default")
	}
	if rec := h.do(http.MethodPost, "/api/addresses", user.Token, `{"name":"x"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an incomplete address, got %d", rec.Code)
	}
	if rec := h.do(http.MethodDelete, "/api/addresses/"+string(first.ID), user.Token, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	if list := decodeInto[[]domain.Address](t, h.do(http.MethodGet, "/api/addresses", user.Token, "")); len(list) != 0 {
		t.Fatalf("expected no addresses, got %+v", list)
	}
}

func TestAdminCatalogueCRUD(t *testing.T) {
	h := newHarness(t)
	admin := h.login(DemoAdminEmail, DemoAdminPassword)

	rec := h.do(http.MethodPost, "/api/admin/products", admin.Token, `{"name":"Paneer 200g","price":90,"stock":10,"category":"Dairy & Bakery"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product: %d", rec.Code)
	}
	p := decodeInto[domain.Product](t, rec)
	if rec := h.do(http.MethodPut, "/api/admin/products/"+string(p.ID), admin.Token, `{"name":"Paneer 250g","price":110,"stock":10}`); rec.Code != http.StatusOK {
		t.Fatalf("update product: %d", rec.Code)
	}
	if rec := h.do(http.MethodDelete, "/api/admin/products/"+string(p.ID), admin.Token, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete product: %d", rec.Code)
	}
	if rec := h.do(http.MethodDelete, "/api/admin/products/"+string(p.ID), admin.Token, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}

	rec = h.do(http.MethodPost, "/api/admin/categories", admin.Token, `{"name":"Frozen"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category: %d", rec.Code)
	}
	cats := decodeInto[[]domain.Category](t, h.do(http.MethodGet, "/api/categories", "", ""))
	if len(cats) != 5 {
		t.Fatalf("expected 5 categories, got %d", len(cats))
	}
}
