package ports

import (
	"context"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
)

// CreateUserInput describes a user insert that applies the bootstrap rule.
// User carries the role and permissions used when the bootstrap claim is not
// won by this insert.
type CreateUserInput struct {
	User         domain.User
	AdminRole    string
	AdminPerms   []string
	RequireClaim bool // fail with domain.ErrNotEligible instead of falling back to User.Role
}

// CreateUserResult reports what the insert did.
type CreateUserResult struct {
	User *domain.User
	// Claimed is true when this insert won the bootstrap claim.
	Claimed bool
	// Existing is true when a row with the same ID was already present and
	// was returned instead of inserting.
	Existing bool
}

// UserRepository persists users keyed by their external identity subject.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create inserts the user in one transaction that counts the population,
	// tries to take the bootstrap claim when it is zero, and inserts the row
	// with conflict detection on ID.
	Create(ctx context.Context, in CreateUserInput) (*CreateUserResult, error)
	Count(ctx context.Context) (int64, error)
	// Claim returns the bootstrap claim or nil when none was taken.
	Claim(ctx context.Context) (*domain.BootstrapClaim, error)
	UpdateRole(ctx context.Context, id, role string, permissions []string) (*domain.User, error)
	List(ctx context.Context, page, limit int) ([]*domain.User, int64, error)
}
