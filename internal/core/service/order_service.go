package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
)

// OrderService places and tracks shopper orders. All remote calls carry the
// shopper credential regardless of the current route.
type OrderService struct {
	orders    ports.OrderAPI
	cart      ports.CartAPI
	addresses ports.AddressAPI
	pricing   domain.PricingPolicy
	coupons   []domain.Coupon
	// adminPrefix marks the routes on which the cart is never touched.
	adminPrefix string
	logger      zerolog.Logger
}

func NewOrderService(
	orders ports.OrderAPI,
	cart ports.CartAPI,
	addresses ports.AddressAPI,
	pricing domain.PricingPolicy,
	adminPrefix string,
	logger zerolog.Logger,
) *OrderService {
	if adminPrefix == "" {
		adminPrefix = domain.DefaultAdminPrefix
	}
	return &OrderService{
		orders:      orders,
		cart:        cart,
		addresses:   addresses,
		pricing:     pricing,
		coupons:     domain.DefaultCoupons,
		adminPrefix: adminPrefix,
		logger:      logger,
	}
}

func (s *OrderService) onAdminRoute(ctx context.Context) bool {
	return domain.IsAdminRoute(RequestFrom(ctx).Route, s.adminPrefix)
}

// Place checks out the current cart. The total sent to the remote API is
// computed here with the applied coupon; the coupon is consumed on success.
func (s *OrderService) Place(ctx context.Context, in ports.PlaceOrderInput) (*domain.Order, error) {
	if s.onAdminRoute(ctx) {
		return nil, domain.ErrCartOnAdminRoute
	}
	dev, err := deviceOrErr(ctx)
	if err != nil {
		return nil, err
	}
	ctx = WithNamespace(ctx, domain.NamespaceShopper)

	payment, err := domain.ParsePaymentMethod(string(in.PaymentMethod))
	if err != nil {
		return nil, err
	}
	addr, err := s.deliveryAddress(ctx, in)
	if err != nil {
		return nil, err
	}

	cart, err := s.cart.Cart(ctx)
	if err != nil {
		return nil, err
	}
	if cart.Empty() {
		return nil, domain.ErrCartEmpty
	}

	var coupon *domain.Coupon
	code, err := dev.Preferences.AppliedCoupon(ctx)
	if err != nil {
		return nil, err
	}
	if c, err := domain.FindCoupon(s.coupons, code); err == nil {
		coupon = &c
	}
	totals := s.pricing.Price(cart, coupon)

	order, err := s.orders.PlaceOrder(ctx, domain.PlaceOrder{
		DeliveryAddress: addr.String(),
		PaymentMethod:   payment,
		CouponCode:      totals.Coupon,
		TotalAmount:     totals.Total,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("device", dev.ID).Msg("failed to place order")
		return nil, err
	}

	if code != "" {
		if err := dev.Preferences.ClearAppliedCoupon(ctx); err != nil {
			s.logger.Warn().Err(err).Str("device", dev.ID).Msg("failed to clear applied coupon")
		}
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("payment", string(payment)).
		Float64("total", totals.Total).
		Msg("order placed")
	return order, nil
}

// deliveryAddress resolves the saved address named by AddressID, or the inline
// address when no id is given.
func (s *OrderService) deliveryAddress(ctx context.Context, in ports.PlaceOrderInput) (domain.DeliveryAddress, error) {
	id := strings.TrimSpace(in.AddressID)
	if id == "" {
		if !in.Address.Complete() {
			return domain.DeliveryAddress{}, fmt.Errorf("%w: delivery address is incomplete", domain.ErrInvalidInput)
		}
		return in.Address, nil
	}

	saved, err := s.addresses.Addresses(ctx)
	if err != nil {
		return domain.DeliveryAddress{}, err
	}
	for _, a := range saved {
		if a.ID.String() == id {
			return a.Delivery(), nil
		}
	}
	return domain.DeliveryAddress{}, fmt.Errorf("%w: unknown address %s", domain.ErrInvalidInput, id)
}

// List returns the shopper's orders. Once any order has been delivered a
// leftover cart is emptied, except on administrator pages where the cart is
// left alone.
func (s *OrderService) List(ctx context.Context) ([]domain.Order, error) {
	ctx = WithNamespace(ctx, domain.NamespaceShopper)
	orders, err := s.orders.Orders(ctx)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	delivered := false
	for _, o := range orders {
		if o.Delivered() {
			delivered = true
			break
		}
	}
	if delivered && !s.onAdminRoute(ctx) {
		s.clearStaleCart(ctx)
	}
	return orders, nil
}

func (s *OrderService) clearStaleCart(ctx context.Context) {
	cart, err := s.cart.Cart(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("could not read cart after delivery")
		return
	}
	if cart.Empty() {
		return
	}
	if err := s.cart.ClearCart(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("could not clear cart after delivery")
		return
	}
	s.logger.Info().Int("items", cart.Count()).Msg("cleared cart after delivered order")
}

// Get returns one order with its lines.
func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	ctx = WithNamespace(ctx, domain.NamespaceShopper)
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrOrderNotFound
	}
	order, err := s.orders.Order(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(order.Items) == 0 {
		items, err := s.orders.OrderItems(ctx, id)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}
	return order, nil
}

// Cancel cancels an order that has not left the store yet.
func (s *OrderService) Cancel(ctx context.Context, id string) (*domain.Order, error) {
	ctx = WithNamespace(ctx, domain.NamespaceShopper)
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrOrderNotFound
	}
	current, err := s.orders.Order(ctx, id)
	if err != nil {
		return nil, err
	}
	status := domain.ParseOrderStatus(string(current.Status))
	if !status.Cancellable() {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, status, domain.OrderCancelled)
	}

	order, err := s.orders.CancelOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("order_id", id).Str("from", string(status)).Msg("order cancelled")
	return order, nil
}

var _ ports.OrderService = (*OrderService)(nil)
