package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
)

// AdminService holds the admin operations that check state before writing to
// the remote API. Calls always carry the administrator credential.
type AdminService struct {
	api    ports.AdminAPI
	logger zerolog.Logger
}

func NewAdminService(api ports.AdminAPI, logger zerolog.Logger) *AdminService {
	return &AdminService{api: api, logger: logger}
}

func adminCtx(ctx context.Context) context.Context {
	return WithNamespace(ctx, domain.NamespaceAdministrator)
}

// OrderDetail returns an order with its lines.
func (s *AdminService) OrderDetail(ctx context.Context, id string) (*domain.Order, error) {
	ctx = adminCtx(ctx)
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrOrderNotFound
	}
	order, err := s.api.AdminOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(order.Items) == 0 {
		items, err := s.api.AdminOrderItems(ctx, id)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}
	return order, nil
}

// UpdateStatus moves an order to status if the transition is allowed.
func (s *AdminService) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	ctx = adminCtx(ctx)
	next := domain.ParseOrderStatus(status)
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown order status %q", domain.ErrInvalidInput, status)
	}

	current, err := s.api.AdminOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	from := domain.ParseOrderStatus(string(current.Status))
	if !from.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, from, next)
	}

	updated, err := s.api.SetOrderStatus(ctx, id, next)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id).Msg("failed to update order status")
		return nil, err
	}
	s.logger.Info().
		Str("order_id", id).
		Str("from", string(from)).
		Str("to", string(next)).
		Msg("order status updated")
	return updated, nil
}

// SetCustomerStatus blocks or reactivates a customer account.
func (s *AdminService) SetCustomerStatus(ctx context.Context, id, status string) error {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != domain.CustomerActive && status != domain.CustomerBlocked {
		return fmt.Errorf("%w: unknown customer status %q", domain.ErrInvalidInput, status)
	}
	if strings.TrimSpace(id) == "" {
		return domain.ErrUserNotFound
	}
	if err := s.api.SetCustomerStatus(adminCtx(ctx), id, status); err != nil {
		return err
	}
	s.logger.Info().Str("customer_id", id).Str("status", status).Msg("customer status updated")
	return nil
}

var _ ports.AdminService = (*AdminService)(nil)
