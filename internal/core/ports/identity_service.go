package ports

import (
	"context"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
)

// ResolveResult is returned by IdentityService.Resolve.
type ResolveResult struct {
	User         *domain.User
	IsFirstUser  bool
	Capabilities domain.Capabilities
}

// FirstUserStatus is the answer to check-first-user.
type FirstUserStatus struct {
	IsFirstUser bool
	TotalUsers  int64
	SetupState  domain.SetupState
}

// PermissionsView is the capability vector plus the data it was derived from.
// Degraded is set when the caller's record could not be resolved and the
// least-privilege fallback was returned.
type PermissionsView struct {
	Capabilities domain.Capabilities
	Role         string
	Permissions  []string
	Degraded     bool
}

// UpdateRoleInput carries an admin's role change for another user.
type UpdateRoleInput struct {
	ActorID     string
	TargetID    string
	Role        string
	Permissions []string
}

// IdentityService resolves externally verified identities into local users
// and owns the first-admin bootstrap protocol.
type IdentityService interface {
	Resolve(ctx context.Context, identity domain.Identity) (*ResolveResult, error)
	CheckFirstUser(ctx context.Context) (*FirstUserStatus, error)
	SetupFirstAdmin(ctx context.Context, identity domain.Identity) (*domain.User, error)
	Permissions(ctx context.Context, subject string) PermissionsView
	UpdateRole(ctx context.Context, in UpdateRoleInput) (*domain.User, error)
	ListUsers(ctx context.Context, page, limit int) (*Page[*domain.User], error)
}

// IdentityVerifier turns a bearer token into a verified identity. Any
// failure is reported as domain.ErrUnauthenticated.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (domain.Identity, error)
}
