package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
)

// Non-session keys of the browser scope.
const (
	keySelectedLocation = "selectedLocation"
	keyAppliedCoupon    = "appliedCoupon"
)

// Preferences holds the browser state that is not session data: the delivery
// location picked in the header and the coupon applied on the cart.
type Preferences struct {
	storage ports.ClientStorage
}

// NewPreferences returns the preferences of one browser scope.
func NewPreferences(storage ports.ClientStorage) *Preferences {
	return &Preferences{storage: storage}
}

// Location returns the selected location, or nil when none was chosen or the
// stored value is unreadable.
func (p *Preferences) Location(ctx context.Context) (*domain.Location, error) {
	raw, ok, err := p.storage.Get(ctx, keySelectedLocation)
	if err != nil {
		return nil, fmt.Errorf("read location: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var loc domain.Location
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		return nil, nil
	}
	return &loc, nil
}

// SetLocation stores loc as the selected location.
func (p *Preferences) SetLocation(ctx context.Context, loc domain.Location) error {
	raw, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("store location: %w", err)
	}
	if err := p.storage.Set(ctx, keySelectedLocation, string(raw)); err != nil {
		return fmt.Errorf("store location: %w", err)
	}
	return nil
}

// AppliedCoupon returns the applied coupon code, empty when none.
func (p *Preferences) AppliedCoupon(ctx context.Context) (string, error) {
	code, _, err := p.storage.Get(ctx, keyAppliedCoupon)
	if err != nil {
		return "", fmt.Errorf("read coupon: %w", err)
	}
	return code, nil
}

// SetAppliedCoupon stores code, upper-cased.
func (p *Preferences) SetAppliedCoupon(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := p.storage.Set(ctx, keyAppliedCoupon, code); err != nil {
		return fmt.Errorf("store coupon: %w", err)
	}
	return nil
}

// ClearAppliedCoupon forgets the applied coupon.
func (p *Preferences) ClearAppliedCoupon(ctx context.Context) error {
	if err := p.storage.Remove(ctx, keyAppliedCoupon); err != nil {
		return fmt.Errorf("clear coupon: %w", err)
	}
	return nil
}
