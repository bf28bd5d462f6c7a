package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
)

type auditService struct {
	repo ports.SessionEventRepository
	log  zerolog.Logger
}

// NewAuditService returns a SessionEventProcessor that persists audit events.
func NewAuditService(repo ports.SessionEventRepository, log zerolog.Logger) ports.SessionEventProcessor {
	return &auditService{repo: repo, log: log}
}

// Process stores a single session event.
func (s *auditService) Process(ctx context.Context, event domain.SessionEvent) error {
	if event.DeviceID == "" || !event.Namespace.Valid() {
		return fmt.Errorf("process session event: %w", domain.ErrInvalidInput)
	}
	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		return fmt.Errorf("process session event: %w", err)
	}

	s.log.Debug().
		Str("device", event.DeviceID).
		Str("namespace", event.Namespace.String()).
		Str("kind", string(event.Kind)).
		Msg("session event stored")
	return nil
}
