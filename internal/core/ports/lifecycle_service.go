package ports

import (
	"context"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
)

// LifecycleService processes verified identity-provider lifecycle events.
type LifecycleService interface {
	Process(ctx context.Context, event domain.IdentityEvent) error
}
