package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoSession          = errors.New("no valid session")
	ErrRoleMismatch       = errors.New("credential role does not match session namespace")
	ErrUnauthorized       = errors.New("authorization denied")
	ErrForbidden          = errors.New("access forbidden")
	ErrRemoteUnavailable  = errors.New("remote api unavailable")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrCartOnAdminRoute   = errors.New("cart actions are not allowed on admin pages")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrCouponNotFound     = errors.New("invalid coupon code")
	ErrCouponMinOrder     = errors.New("order total below coupon minimum")
	ErrOrderNotFound      = errors.New("order not found")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
)

// SessionEndedError reports that the remote API rejected the credential of
// Namespace with 401 and the namespace has been cleared.
type SessionEndedError struct {
	Namespace Namespace
}

func (e *SessionEndedError) Error() string {
	return fmt.Sprintf("%s session ended", e.Namespace)
}

func (e *SessionEndedError) Unwrap() error { return ErrUnauthorized }

// RemoteError is a non-2xx answer from the remote API other than 401/403.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote api returned status %d", e.Status)
	}
	return fmt.Sprintf("remote api returned status %d: %s", e.Status, e.Message)
}

// Unwrap lets 5xx answers match ErrRemoteUnavailable.
func (e *RemoteError) Unwrap() error {
	if e.Status >= 500 {
		return ErrRemoteUnavailable
	}
	return nil
}
