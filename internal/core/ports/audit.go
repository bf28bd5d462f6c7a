package ports

import (
	"context"

	"github.com/freshcart/storefront/internal/core/domain"
)

// SessionAuditor receives session lifecycle events. Implementations must not
// block the caller for long and never fail the session operation.
type SessionAuditor interface {
	Record(ctx context.Context, event domain.SessionEvent)
}

// SessionEventRepository persists audit events.
type SessionEventRepository interface {
	InsertEvent(ctx context.Context, event *domain.SessionEvent) error
}

// Navigator moves the browser to another screen. The BFF renders it as a
// redirect hint on the response.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// SessionListener is notified when the remote API ends a namespace's session.
type SessionListener interface {
	SessionEnded(ctx context.Context, ns domain.Namespace)
}

// SessionEventProcessor handles one dequeued audit event.
type SessionEventProcessor interface {
	Process(ctx context.Context, event domain.SessionEvent) error
}
