package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
)

// CartService fronts the remote cart. Every call goes out with the shopper
// credential; cart actions from an administrator page are refused.
type CartService struct {
	api         ports.CartAPI
	pricing     domain.PricingPolicy
	coupons     []domain.Coupon
	adminPrefix string
	log         zerolog.Logger
}

func NewCartService(api ports.CartAPI, pricing domain.PricingPolicy, adminPrefix string, log zerolog.Logger) *CartService {
	if adminPrefix == "" {
		adminPrefix = domain.DefaultAdminPrefix
	}
	return &CartService{
		api:         api,
		pricing:     pricing,
		coupons:     domain.DefaultCoupons,
		adminPrefix: adminPrefix,
		log:         log,
	}
}

// shopperCtx returns ctx pinned to the shopper namespace together with the
// browser's preferences.
func (s *CartService) shopperCtx(ctx context.Context) (context.Context, *Preferences, error) {
	if domain.IsAdminRoute(RequestFrom(ctx).Route, s.adminPrefix) {
		return nil, nil, domain.ErrCartOnAdminRoute
	}
	dev, err := deviceOrErr(ctx)
	if err != nil {
		return nil, nil, err
	}
	return WithNamespace(ctx, domain.NamespaceShopper), dev.Preferences, nil
}

// view fetches the cart and prices it with the applied coupon, if any.
func (s *CartService) view(ctx context.Context, prefs *Preferences) (*ports.CartView, error) {
	cart, err := s.api.Cart(ctx)
	if err != nil {
		return nil, err
	}
	coupon, err := s.appliedCoupon(ctx, prefs)
	if err != nil {
		return nil, err
	}
	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return &ports.CartView{Items: items, Totals: s.pricing.Price(cart, coupon)}, nil
}

func (s *CartService) appliedCoupon(ctx context.Context, prefs *Preferences) (*domain.Coupon, error) {
	code, err := prefs.AppliedCoupon(ctx)
	if err != nil || code == "" {
		return nil, err
	}
	c, err := domain.FindCoupon(s.coupons, code)
	if err != nil {
		// retired code: forget it
		s.log.Debug().Str("coupon", code).Msg("dropping unknown applied coupon")
		return nil, prefs.ClearAppliedCoupon(ctx)
	}
	return &c, nil
}

func (s *CartService) Cart(ctx context.Context) (*ports.CartView, error) {
	ctx, prefs, err := s.shopperCtx(ctx)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, prefs)
}

func (s *CartService) AddItem(ctx context.Context, productID string, quantity int64) (*ports.CartView, error) {
	ctx, prefs, err := s.shopperCtx(ctx)
	if err != nil {
		return nil, err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" || quantity < 1 {
		return nil, fmt.Errorf("add to cart: %w", domain.ErrInvalidInput)
	}
	if err := s.api.AddItem(ctx, productID, quantity); err != nil {
		return nil, err
	}
	return s.view(ctx, prefs)
}

// UpdateItem sets the quantity of a line; a quantity below one removes it.
func (s *CartService) UpdateItem(ctx context.Context, itemID string, quantity int64) (*ports.CartView, error) {
	if quantity < 1 {
		return s.RemoveItem(ctx, itemID)
	}
	ctx, prefs, err := s.shopperCtx(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(itemID) == "" {
		return nil, fmt.Errorf("update cart: %w", domain.ErrInvalidInput)
	}
	if err := s.api.UpdateItem(ctx, itemID, quantity); err != nil {
		return nil, err
	}
	return s.view(ctx, prefs)
}

func (s *CartService) RemoveItem(ctx context.Context, itemID string) (*ports.CartView, error) {
	ctx, prefs, err := s.shopperCtx(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(itemID) == "" {
		return nil, fmt.Errorf("remove from cart: %w", domain.ErrInvalidInput)
	}
	if err := s.api.RemoveItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.view(ctx, prefs)
}

// Clear empties the cart and drops the applied coupon.
func (s *CartService) Clear(ctx context.Context) error {
	ctx, prefs, err := s.shopperCtx(ctx)
	if err != nil {
		return err
	}
	if err := s.api.ClearCart(ctx); err != nil {
		return err
	}
	return prefs.ClearAppliedCoupon(ctx)
}

// ApplyCoupon validates code against the current subtotal and remembers it.
func (s *CartService) ApplyCoupon(ctx context.Context, code string) (*ports.CartView, error) {
	ctx, prefs, err := s.shopperCtx(ctx)
	if err != nil {
		return nil, err
	}
	coupon, err := domain.FindCoupon(s.coupons, code)
	if err != nil {
		return nil, err
	}
	cart, err := s.api.Cart(ctx)
	if err != nil {
		return nil, err
	}
	if subtotal := cart.Subtotal(); !coupon.Eligible(subtotal) {
		return nil, fmt.Errorf("%w: %s needs %.2f, cart has %.2f", domain.ErrCouponMinOrder, coupon.Code, coupon.MinOrder, subtotal)
	}
	if err := prefs.SetAppliedCoupon(ctx, coupon.Code); err != nil {
		return nil, err
	}
	return s.view(ctx, prefs)
}

func (s *CartService) RemoveCoupon(ctx context.Context) (*ports.CartView, error) {
	ctx, prefs, err := s.shopperCtx(ctx)
	if err != nil {
		return nil, err
	}
	if err := prefs.ClearAppliedCoupon(ctx); err != nil {
		return nil, err
	}
	return s.view(ctx, prefs)
}

// Coupons lists the offered coupons.
func (s *CartService) Coupons() []domain.Coupon {
	out := make([]domain.Coupon, len(s.coupons))
	copy(out, s.coupons)
	return out
}

var _ ports.CartService = (*CartService)(nil)
