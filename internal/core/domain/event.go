package domain

import "time"

// IdentityEventType is the lifecycle notification kind sent by the identity
// provider.
type IdentityEventType string

const (
	EventUserCreated IdentityEventType = "user.created"
	EventUserUpdated IdentityEventType = "user.updated"
	EventUserDeleted IdentityEventType = "user.deleted"
)

// Valid reports whether t is a lifecycle event this service accepts.
func (t IdentityEventType) Valid() bool {
	switch t {
	case EventUserCreated, EventUserUpdated, EventUserDeleted:
		return true
	}
	return false
}

// IdentityEvent is a verified webhook delivery. DeliveryID is unique per
// delivery and is reused by the provider on retries.
type IdentityEvent struct {
	DeliveryID string
	Type       IdentityEventType
	Subject    string
	Email      string
	OccurredAt time.Time
	Payload    []byte
}
