package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

// IdentityService implements identity resolution, the bootstrap policy and
// the first-admin setup flow.
type IdentityService struct {
	repo        ports.UserRepository
	defaultRole string
	log         zerolog.Logger
}

// NewIdentityService returns an IdentityService. Users that do not win the
// bootstrap claim get defaultRole; an unknown role falls back to user.
func NewIdentityService(repo ports.UserRepository, defaultRole string, log zerolog.Logger) *IdentityService {
	role, ok := domain.NormalizeRole(defaultRole)
	if !ok {
		role = domain.RoleUser
	}
	return &IdentityService{repo: repo, defaultRole: role, log: log}
}

// Resolve finds the local user for a verified identity, creating it on first
// sight. An existing record is returned unchanged.
func (s *IdentityService) Resolve(ctx context.Context, identity domain.Identity) (*ports.ResolveResult, error) {
	if strings.TrimSpace(identity.Subject) == "" {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.repo.FindByID(ctx, identity.Subject)
	if err == nil {
		first, err := s.holdsClaim(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("resolve identity: %w", err)
		}
		return resolved(user, first), nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	res, err := s.repo.Create(ctx, ports.CreateUserInput{
		User:       s.newUser(identity),
		AdminRole:  domain.RoleAdmin,
		AdminPerms: domain.FirstAdminPermissions(),
	})
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	first := res.Claimed
	switch {
	case res.Claimed:
		s.log.Info().Str("user_id", res.User.ID).Msg("first user assigned admin role")
	case res.Existing:
		// Lost an insert race for the same subject; report the stored record.
		if first, err = s.holdsClaim(ctx, res.User.ID); err != nil {
			return nil, fmt.Errorf("resolve identity: %w", err)
		}
	default:
		s.log.Info().Str("user_id", res.User.ID).Str("role", res.User.Role).Msg("user created")
	}

	return resolved(res.User, first), nil
}

// CheckFirstUser reports whether the user population is still empty.
func (s *IdentityService) CheckFirstUser(ctx context.Context) (*ports.FirstUserStatus, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("check first user: %w", err)
	}
	claim, err := s.repo.Claim(ctx)
	if err != nil {
		return nil, fmt.Errorf("check first user: %w", err)
	}

	return &ports.FirstUserStatus{
		IsFirstUser: total == 0 && claim == nil,
		TotalUsers:  total,
		SetupState:  domain.SetupStateFor(total, claim),
	}, nil
}

// SetupFirstAdmin claims the bootstrap admin role for identity. Repeating the
// call as the claim holder returns the stored admin; any other caller gets
// domain.ErrNotEligible once a claim exists or any user is present.
func (s *IdentityService) SetupFirstAdmin(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	if strings.TrimSpace(identity.Subject) == "" {
		return nil, domain.ErrUnauthenticated
	}

	claim, err := s.repo.Claim(ctx)
	if err != nil {
		return nil, fmt.Errorf("setup first admin: %w", err)
	}
	if claim != nil {
		return s.claimedAdmin(ctx, claim, identity.Subject)
	}

	res, err := s.repo.Create(ctx, ports.CreateUserInput{
		User:         s.newUser(identity),
		AdminRole:    domain.RoleAdmin,
		AdminPerms:   domain.FirstAdminPermissions(),
		RequireClaim: true,
	})
	if errors.Is(err, domain.ErrNotEligible) {
		// Another request may have claimed concurrently on behalf of the same subject.
		claim, cerr := s.repo.Claim(ctx)
		if cerr != nil {
			return nil, fmt.Errorf("setup first admin: %w", cerr)
		}
		if claim != nil {
			return s.claimedAdmin(ctx, claim, identity.Subject)
		}
		return nil, domain.ErrNotEligible
	}
	if err != nil {
		return nil, fmt.Errorf("setup first admin: %w", err)
	}
	if res.Existing {
		claim, err := s.repo.Claim(ctx)
		if err != nil {
			return nil, fmt.Errorf("setup first admin: %w", err)
		}
		if claim == nil {
			return nil, domain.ErrNotEligible
		}
		return s.claimedAdmin(ctx, claim, identity.Subject)
	}

	s.log.Info().Str("user_id", res.User.ID).Msg("first admin configured")
	return res.User, nil
}

// Permissions derives the capability vector for subject. It never fails: when
// the record cannot be read the least-privilege fallback is returned.
func (s *IdentityService) Permissions(ctx context.Context, subject string) ports.PermissionsView {
	user, err := s.repo.FindByID(ctx, subject)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", subject).Msg("permission lookup failed, using fallback")
		return ports.PermissionsView{
			Capabilities: domain.FallbackCapabilities(),
			Role:         domain.RoleUser,
			Permissions:  []string{},
			Degraded:     true,
		}
	}

	perms := user.Permissions
	if perms == nil {
		perms = []string{}
	}
	return ports.PermissionsView{
		Capabilities: domain.Derive(user.Role, perms),
		Role:         user.Role,
		Permissions:  perms,
	}
}

// UpdateRole replaces the role and permissions of another user. Only an admin
// may call it.
func (s *IdentityService) UpdateRole(ctx context.Context, in ports.UpdateRoleInput) (*domain.User, error) {
	actor, err := s.repo.FindByID(ctx, in.ActorID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrForbidden
	}
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	if r, _ := domain.NormalizeRole(actor.Role); r != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	verr := &domain.ValidationError{}
	role, ok := domain.NormalizeRole(in.Role)
	if !ok {
		verr.Add("role", "must be one of: admin director profesor user")
	}
	perms := make([]string, 0, len(in.Permissions))
	seen := make(map[string]struct{}, len(in.Permissions))
	for _, p := range in.Permissions {
		if !domain.IsKnownPermission(p) {
			verr.Add("permissions", fmt.Sprintf("unknown permission %q", p))
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		perms = append(perms, p)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	user, err := s.repo.UpdateRole(ctx, in.TargetID, role, perms)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	s.log.Info().
		Str("actor_id", in.ActorID).
		Str("user_id", in.TargetID).
		Str("role", role).
		Strs("permissions", perms).
		Msg("user role updated")
	return user, nil
}

// ListUsers returns a page of users.
func (s *IdentityService) ListUsers(ctx context.Context, page, limit int) (*ports.Page[*domain.User], error) {
	page, limit = normalizePaging(page, limit)
	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return newPage(users, total, page, limit), nil
}

func (s *IdentityService) newUser(identity domain.Identity) domain.User {
	now := time.Now().UTC()
	return domain.User{
		ID:          identity.Subject,
		DisplayName: identity.Name(),
		Email:       identity.Email,
		Role:        s.defaultRole,
		Permissions: domain.DefaultPermissions(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *IdentityService) holdsClaim(ctx context.Context, userID string) (bool, error) {
	claim, err := s.repo.Claim(ctx)
	if err != nil {
		return false, err
	}
	return claim != nil && claim.UserID == userID, nil
}

func (s *IdentityService) claimedAdmin(ctx context.Context, claim *domain.BootstrapClaim, subject string) (*domain.User, error) {
	if claim.UserID != subject {
		return nil, domain.ErrNotEligible
	}
	user, err := s.repo.FindByID(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("setup first admin: %w", err)
	}
	return user, nil
}

func resolved(user *domain.User, first bool) *ports.ResolveResult {
	return &ports.ResolveResult{
		User:         user,
		IsFirstUser:  first,
		Capabilities: domain.Derive(user.Role, user.Permissions),
	}
}
