package domain

import "time"

// SessionEventKind names a lifecycle transition of a namespace.
type SessionEventKind string

const (
	EventSaved    SessionEventKind = "saved"
	EventRejected SessionEventKind = "rejected"
	EventCleared  SessionEventKind = "cleared"
	EventExpired  SessionEventKind = "expired"
	EventEnded    SessionEventKind = "ended"
)

// SessionEvent is an audit record of a session transition on one device.
type SessionEvent struct {
	DeviceID  string
	Namespace Namespace
	Kind      SessionEventKind
	Reason    string
	Timestamp time.Time
}
