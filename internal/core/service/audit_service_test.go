package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/freshcart/storefront/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubEventRepo struct {
	insertErr error
	inserted  []*domain.SessionEvent
}

func (r *stubEventRepo) InsertEvent(_ context.Context, e *domain.SessionEvent) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, e)
	return nil
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestAuditService_Process_HappyPath(t *testing.T) {
	repo := &stubEventRepo{}
	svc := NewAuditService(repo, zerolog.Nop())

	err := svc.Process(context.Background(), domain.SessionEvent{
		DeviceID:  "dev-1",
		Namespace: domain.NamespaceShopper,
		Kind:      domain.EventSaved,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.inserted) != 1 || repo.inserted[0].Kind != domain.EventSaved {
		t.Fatalf("expected one saved event, got %+v", repo.inserted)
	}
}

func TestAuditService_Process_RejectsIncompleteEvent(t *testing.T) {
	repo := &stubEventRepo{}
	svc := NewAuditService(repo, zerolog.Nop())

	cases := map[string]domain.SessionEvent{
		"no device":     {Namespace: domain.NamespaceShopper, Kind: domain.EventCleared},
		"bad namespace": {DeviceID: "dev-1", Namespace: "guest", Kind: domain.EventCleared},
	}
	for name, ev := range cases {
		if err := svc.Process(context.Background(), ev); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
	if len(repo.inserted) != 0 {
		t.Fatalf("nothing should be stored")
	}
}

func TestAuditService_Process_RepoError(t *testing.T) {
	repoErr := errors.New("mongo down")
	svc := NewAuditService(&stubEventRepo{insertErr: repoErr}, zerolog.Nop())

	err := svc.Process(context.Background(), domain.SessionEvent{DeviceID: "d", Namespace: domain.NamespaceAdministrator})
	if !errors.Is(err, repoErr) {
		t.Fatalf("expected wrapped repo error, got %v", err)
	}
}
