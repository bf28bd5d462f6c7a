package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/freshcart/storefront/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stub remote account API
// ---------------------------------------------------------------------------

type stubAuthAPI struct {
	login      *domain.LoginResult
	loginErr   error
	lastEmail  string
	registered *domain.Signup
	otpSentTo  string
	updated    *domain.Identity
	updatedID  domain.ID
	updateNS   domain.Namespace
}

func (a *stubAuthAPI) Login(_ context.Context, email, _ string) (*domain.LoginResult, error) {
	a.lastEmail = email
	if a.loginErr != nil {
		return nil, a.loginErr
	}
	return a.login, nil
}

func (a *stubAuthAPI) Register(_ context.Context, in domain.Signup) (*domain.Identity, error) {
	a.registered = &in
	return &domain.Identity{ID: "42", Name: in.Name, Email: in.Email, Role: in.Role}, nil
}

func (a *stubAuthAPI) SendOTP(_ context.Context, phone string) error {
	a.otpSentTo = phone
	return nil
}

func (a *stubAuthAPI) VerifyOTP(_ context.Context, _, otp string) (*domain.LoginResult, error) {
	if otp != "123456" {
		return nil, domain.ErrInvalidCredentials
	}
	return a.login, nil
}

func (a *stubAuthAPI) Profile(context.Context) (*domain.Identity, error) {
	return nil, errors.New("not used")
}

func (a *stubAuthAPI) UpdateProfile(ctx context.Context, id domain.ID, in domain.Identity) (*domain.Identity, error) {
	a.updatedID = id
	a.updateNS = RequestFrom(ctx).Override
	a.updated = &in
	out := in
	return &out, nil
}

func newTestAuthService(api *stubAuthAPI) *AuthService {
	return NewAuthService(api, zerolog.Nop())
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestAuthService_LoginShopper(t *testing.T) {
	ctx, dev, storage, _ := newTestDevice("/login")
	api := &stubAuthAPI{login: &domain.LoginResult{Token: validUser(t), User: domain.Identity{Name: "Alice"}}}
	svc := newTestAuthService(api)

	id, err := svc.Login(ctx, domain.NamespaceShopper, "  Alice@Example.COM ", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if id.Name != "Alice" {
		t.Fatalf("unexpected identity %+v", id)
	}
	if api.lastEmail != "alice@example.com" {
		t.Fatalf("email should be normalized, got %q", api.lastEmail)
	}
	if !storage.has("userToken") || !dev.Scopes.Shopper.IsAuthenticated() {
		t.Fatalf("shopper session should be stored")
	}
}

func TestAuthService_LoginAdminWithUserCredential(t *testing.T) {
	ctx, dev, storage, _ := newTestDevice("/admin/login")
	api := &stubAuthAPI{login: &domain.LoginResult{Token: validUser(t), User: domain.Identity{Name: "Alice"}}}
	svc := newTestAuthService(api)

	_, err := svc.Login(ctx, domain.NamespaceAdministrator, "alice@example.com", "secret")
	if !errors.Is(err, domain.ErrRoleMismatch) {
		t.Fatalf("expected ErrRoleMismatch, got %v", err)
	}
	if storage.has("adminToken") || storage.has("userToken") {
		t.Fatalf("refused login must write nothing")
	}
	if dev.Scopes.Administrator.IsAuthenticated() {
		t.Fatalf("admin scope must stay anonymous")
	}
}

func TestAuthService_LoginValidation(t *testing.T) {
	ctx, _, _, _ := newTestDevice("/login")
	api := &stubAuthAPI{}
	svc := newTestAuthService(api)

	if _, err := svc.Login(ctx, domain.NamespaceShopper, "  ", "x"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if api.lastEmail != "" {
		t.Fatalf("remote should not be called")
	}

	api.loginErr = domain.ErrInvalidCredentials
	if _, err := svc.Login(ctx, domain.NamespaceShopper, "a@b.c", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("remote error should pass through, got %v", err)
	}
}

func TestAuthService_LoginWithoutDevice(t *testing.T) {
	svc := newTestAuthService(&stubAuthAPI{})
	if _, err := svc.Login(context.Background(), domain.NamespaceShopper, "a@b.c", "x"); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Signup & OTP
// ---------------------------------------------------------------------------

func TestAuthService_SignupForcesUserRole(t *testing.T) {
	api := &stubAuthAPI{}
	svc := newTestAuthService(api)

	user, err := svc.Signup(context.Background(), domain.Signup{
		Name: " Bob ", Email: "BOB@example.com", Password: "secret1", Role: "ADMIN",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if api.registered.Role != domain.RoleUser || api.registered.Email != "bob@example.com" || api.registered.Name != "Bob" {
		t.Fatalf("unexpected payload %+v", api.registered)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestAuthService_SignupValidation(t *testing.T) {
	api := &stubAuthAPI{}
	svc := newTestAuthService(api)

	cases := []domain.Signup{
		{Name: "", Email: "a@b.c", Password: "secret1"},
		{Name: "A", Email: " ", Password: "secret1"},
		{Name: "A", Email: "a@b.c", Password: "123"},
	}
	for _, in := range cases {
		if _, err := svc.Signup(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%+v: expected ErrInvalidInput, got %v", in, err)
		}
	}
	if api.registered != nil {
		t.Fatalf("remote must not be called for invalid input")
	}
}

func TestAuthService_OTPFlow(t *testing.T) {
	ctx, dev, _, _ := newTestDevice("/login")
	api := &stubAuthAPI{login: &domain.LoginResult{Token: validUser(t), User: domain.Identity{Phone: "9999"}}}
	svc := newTestAuthService(api)

	if err := svc.SendOTP(ctx, " 9999 "); err != nil {
		t.Fatalf("send: %v", err)
	}
	if api.otpSentTo != "9999" {
		t.Fatalf("phone should be trimmed, got %q", api.otpSentTo)
	}
	if err := svc.SendOTP(ctx, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	if _, err := svc.VerifyOTP(ctx, "9999", "000000"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.VerifyOTP(ctx, "9999", "123456"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !dev.Scopes.Shopper.IsAuthenticated() {
		t.Fatalf("otp login should authenticate the shopper scope")
	}
}

// ---------------------------------------------------------------------------
// Logout, Me, UpdateProfile
// ---------------------------------------------------------------------------

func TestAuthService_LogoutReturnsLoginPath(t *testing.T) {
	ctx, dev, storage, _ := newTestDevice("/admin")
	seedBoth(t, dev)
	svc := newTestAuthService(&stubAuthAPI{})

	path, err := svc.Logout(ctx, domain.NamespaceAdministrator)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if path != "/admin/login" {
		t.Fatalf("expected /admin/login, got %q", path)
	}
	if storage.has("adminToken") || !storage.has("userToken") {
		t.Fatalf("only the admin namespace should be cleared")
	}
}

func TestAuthService_Me(t *testing.T) {
	ctx, dev, _, _ := newTestDevice("/profile")
	svc := newTestAuthService(&stubAuthAPI{})

	if _, err := svc.Me(ctx, domain.NamespaceShopper); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	seedBoth(t, dev)
	id, err := svc.Me(ctx, domain.NamespaceShopper)
	if err != nil || id.Name != "Alice" {
		t.Fatalf("expected Alice, got %+v, %v", id, err)
	}

	// the admin scope is skipped on shopper routes
	if _, err := svc.Me(ctx, domain.NamespaceAdministrator); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("admin scope must not load on shopper routes, got %v", err)
	}
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx, dev, _, _ := newTestDevice("/admin/settings")
	api := &stubAuthAPI{}
	svc := newTestAuthService(api)

	if _, err := svc.UpdateProfile(ctx, domain.Identity{Name: "X"}); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	if err := dev.Sessions.Save(ctx, domain.NamespaceShopper, validUser(t), domain.Identity{ID: "7", Name: "Alice", Email: "alice@example.com", Role: "USER"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, domain.Identity{ID: "99", Name: "Alice B", Email: "evil@example.com", City: "Pune"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if api.updatedID != "7" || updated.Email != "alice@example.com" || updated.City != "Pune" {
		t.Fatalf("unexpected update id=%s identity=%+v", api.updatedID, updated)
	}
	if api.updateNS != domain.NamespaceShopper {
		t.Fatalf("profile update must use the shopper namespace, got %q", api.updateNS)
	}
	sess, _ := dev.Sessions.Load(ctx, domain.NamespaceShopper)
	if sess.Identity.Name != "Alice B" {
		t.Fatalf("cached identity not refreshed: %+v", sess.Identity)
	}
}
