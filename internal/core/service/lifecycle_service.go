package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, deliveryID string) (bool, error)
	Mark(ctx context.Context, deliveryID string) error
}

type lifecycleService struct {
	users     ports.UserRepository
	eventRepo ports.IdentityEventRepository
	dedup     DedupChecker
	log       zerolog.Logger
}

// NewLifecycleService returns a LifecycleService implementation. Events are
// deduplicated, audited and logged; local users are never modified.
func NewLifecycleService(
	users ports.UserRepository,
	eventRepo ports.IdentityEventRepository,
	dedup DedupChecker,
	log zerolog.Logger,
) ports.LifecycleService {
	return &lifecycleService{
		users:     users,
		eventRepo: eventRepo,
		dedup:     dedup,
		log:       log,
	}
}

// Process deduplicates, audits and logs a single lifecycle event.
func (s *lifecycleService) Process(ctx context.Context, ev domain.IdentityEvent) error {
	if !ev.Type.Valid() {
		return domain.NewValidationError("type", fmt.Sprintf("unsupported event type %q", ev.Type))
	}

	// 1. Idempotency check, duplicates are skipped silently.
	isDup, err := s.dedup.IsDuplicate(ctx, ev.DeliveryID)
	if err != nil {
		s.log.Warn().Err(err).Str("delivery_id", ev.DeliveryID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		s.log.Debug().Str("delivery_id", ev.DeliveryID).Msg("duplicate delivery skipped")
		return nil
	}

	// 2. Look up the local record for the log line only.
	_, err = s.users.FindByID(ctx, ev.Subject)
	var local bool
	switch {
	case err == nil:
		local = true
	case errors.Is(err, domain.ErrUserNotFound):
	default:
		return fmt.Errorf("process lifecycle event: %w", err)
	}

	if markErr := s.dedup.Mark(ctx, ev.DeliveryID); markErr != nil {
		s.log.Warn().Err(markErr).Str("delivery_id", ev.DeliveryID).Msg("failed to set dedup key")
	}

	// 3. Audit trail (non-fatal on failure).
	if err := s.eventRepo.InsertEvent(ctx, &ev); err != nil {
		s.log.Warn().Err(err).Str("delivery_id", ev.DeliveryID).Msg("failed to insert audit event")
	}

	entry := s.log.Info()
	if ev.Type == domain.EventUserDeleted && local {
		entry = s.log.Warn()
	}
	entry.
		Str("delivery_id", ev.DeliveryID).
		Str("type", string(ev.Type)).
		Str("user_id", ev.Subject).
		Bool("local_user", local).
		Msg("identity lifecycle event recorded")

	return nil
}
