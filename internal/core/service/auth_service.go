package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
)

// AuthService implements the login flows of both namespaces on top of the
// remote account API and the browser's scopes.
type AuthService struct {
	api ports.AuthAPI
	log zerolog.Logger
}

func NewAuthService(api ports.AuthAPI, log zerolog.Logger) *AuthService {
	return &AuthService{api: api, log: log}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login exchanges email and password for a credential and stores it in ns.
// A credential whose role does not belong to ns is refused.
func (s *AuthService) Login(ctx context.Context, ns domain.Namespace, email, password string) (*domain.Identity, error) {
	dev, err := deviceOrErr(ctx)
	if err != nil {
		return nil, err
	}
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.establish(ctx, dev, ns, res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// Signup registers a shopper account. It does not log in: the storefront
// sends the new shopper to the login screen.
func (s *AuthService) Signup(ctx context.Context, in domain.Signup) (*domain.Identity, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Role = domain.RoleUser
	if in.Name == "" || in.Email == "" || len(in.Password) < 6 {
		return nil, fmt.Errorf("signup: %w", domain.ErrInvalidInput)
	}

	user, err := s.api.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("email", in.Email).Msg("shopper registered")
	return user, nil
}

// SendOTP asks the remote API to text a one-time code to phone.
func (s *AuthService) SendOTP(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("send otp: %w", domain.ErrInvalidInput)
	}
	return s.api.SendOTP(ctx, phone)
}

// VerifyOTP completes a phone login into the shopper namespace.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, otp string) (*domain.Identity, error) {
	dev, err := deviceOrErr(ctx)
	if err != nil {
		return nil, err
	}
	phone, otp = strings.TrimSpace(phone), strings.TrimSpace(otp)
	if phone == "" || otp == "" {
		return nil, fmt.Errorf("verify otp: %w", domain.ErrInvalidInput)
	}

	res, err := s.api.VerifyOTP(ctx, phone, otp)
	if err != nil {
		return nil, err
	}
	if err := s.establish(ctx, dev, domain.NamespaceShopper, res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (s *AuthService) establish(ctx context.Context, dev *Device, ns domain.Namespace, res *domain.LoginResult) error {
	if err := dev.Scopes.For(ns).Login(ctx, res.Token, res.User); err != nil {
		if errors.Is(err, domain.ErrRoleMismatch) {
			s.log.Warn().Str("device", dev.ID).Str("namespace", ns.String()).Msg("login refused: credential role does not fit namespace")
		}
		return err
	}
	s.log.Info().Str("device", dev.ID).Str("namespace", ns.String()).Msg("logged in")
	return nil
}

// Logout ends ns and returns its login screen.
func (s *AuthService) Logout(ctx context.Context, ns domain.Namespace) (string, error) {
	dev, err := deviceOrErr(ctx)
	if err != nil {
		return "", err
	}
	scope := dev.Scopes.For(ns)
	if err := scope.Logout(ctx); err != nil {
		return "", err
	}
	return scope.LoginPath(), nil
}

// Me mounts the scope of ns for the current route and returns its identity.
func (s *AuthService) Me(ctx context.Context, ns domain.Namespace) (*domain.Identity, error) {
	dev, err := deviceOrErr(ctx)
	if err != nil {
		return nil, err
	}
	scope := dev.Scopes.For(ns)
	if err := scope.Init(ctx, RequestFrom(ctx).Route); err != nil {
		return nil, err
	}
	st := scope.State()
	if st.Identity == nil {
		return nil, domain.ErrNoSession
	}
	return st.Identity, nil
}

// UpdateProfile saves the shopper's profile remotely and refreshes the
// cached identity.
func (s *AuthService) UpdateProfile(ctx context.Context, in domain.Identity) (*domain.Identity, error) {
	dev, err := deviceOrErr(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := dev.Sessions.Load(ctx, domain.NamespaceShopper)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domain.ErrNoSession
	}

	// identity fields the form cannot change
	in.ID, in.Email, in.Role = sess.Identity.ID, sess.Identity.Email, sess.Identity.Role

	updated, err := s.api.UpdateProfile(WithNamespace(ctx, domain.NamespaceShopper), sess.Identity.ID, in)
	if err != nil {
		return nil, err
	}
	if err := dev.Scopes.Shopper.UpdateIdentity(ctx, *updated); err != nil {
		return nil, err
	}
	return updated, nil
}

var _ ports.AuthService = (*AuthService)(nil)
