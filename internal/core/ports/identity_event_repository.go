package ports

import (
	"context"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
)

// IdentityEventRepository persists identity lifecycle deliveries for audit.
type IdentityEventRepository interface {
	// InsertEvent persists an event to the identity_events audit collection.
	// Inserting a delivery ID that already exists is not an error.
	InsertEvent(ctx context.Context, event *domain.IdentityEvent) error
}
