package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

func createInput(id string, requireClaim bool) ports.CreateUserInput {
	return ports.CreateUserInput{
		User: domain.User{
			ID:          id,
			DisplayName: "User " + id,
			Email:       id + "@school.test",
			Role:        domain.RoleUser,
			Permissions: domain.DefaultPermissions(),
		},
		AdminRole:    domain.RoleAdmin,
		AdminPerms:   domain.FirstAdminPermissions(),
		RequireClaim: requireClaim,
	}
}

func TestUserRepository_FirstUserTakesClaim(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	claim, err := repo.Claim(ctx)
	require.NoError(t, err)
	require.Nil(t, claim)

	first, err := repo.Create(ctx, createInput("sub-1", false))
	require.NoError(t, err)
	require.True(t, first.Claimed)
	require.False(t, first.Existing)
	require.Equal(t, domain.RoleAdmin, first.User.Role)
	require.ElementsMatch(t, domain.FirstAdminPermissions(), first.User.Permissions)

	second, err := repo.Create(ctx, createInput("sub-2", false))
	require.NoError(t, err)
	require.False(t, second.Claimed)
	require.Equal(t, domain.RoleUser, second.User.Role)
	require.Equal(t, domain.DefaultPermissions(), second.User.Permissions)

	claim, err = repo.Claim(ctx)
	require.NoError(t, err)
	require.NotNil(t, claim)
	require.Equal(t, "sub-1", claim.UserID)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
}

func TestUserRepository_CreateExistingReturnsStoredRow(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	_, err := repo.Create(ctx, createInput("sub-1", false))
	require.NoError(t, err)

	in := createInput("sub-1", false)
	in.User.DisplayName = "Someone Else"
	again, err := repo.Create(ctx, in)
	require.NoError(t, err)
	require.True(t, again.Existing)
	require.False(t, again.Claimed)
	require.Equal(t, "User sub-1", again.User.DisplayName)
	require.Equal(t, domain.RoleAdmin, again.User.Role)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}

func TestUserRepository_RequireClaimAfterBootstrap(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	res, err := repo.Create(ctx, createInput("sub-1", true))
	require.NoError(t, err)
	require.True(t, res.Claimed)

	_, err = repo.Create(ctx, createInput("sub-2", true))
	require.ErrorIs(t, err, domain.ErrNotEligible)

	_, err = repo.FindByID(ctx, "sub-2")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

// A claim row with no users is what a transaction sees when another one
// claimed after this one counted the population.
func TestUserRepository_ClaimTakenWithStaleCount(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, db.Create(&bootstrapClaimModel{
		ID:        bootstrapClaimID,
		UserID:    "u1",
		ClaimedAt: time.Now().UTC(),
	}).Error)

	_, err := repo.Create(ctx, createInput("u2", true))
	require.ErrorIs(t, err, domain.ErrNotEligible)
	_, err = repo.FindByID(ctx, "u2")
	require.ErrorIs(t, err, domain.ErrUserNotFound)

	res, err := repo.Create(ctx, createInput("u3", false))
	require.NoError(t, err)
	require.False(t, res.Claimed)
	require.Equal(t, domain.RoleUser, res.User.Role)
	require.Equal(t, domain.DefaultPermissions(), res.User.Permissions)

	claim, err := repo.Claim(ctx)
	require.NoError(t, err)
	require.Equal(t, "u1", claim.UserID)
}

func TestUserRepository_ConcurrentSetupSingleWinner(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	const callers = 8
	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		winners     []string
		notEligible int
		failures    []error
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			res, err := repo.Create(ctx, createInput(id, true))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil && res.Claimed:
				winners = append(winners, id)
			case errors.Is(err, domain.ErrNotEligible):
				notEligible++
			default:
				failures = append(failures, fmt.Errorf("%s: claimed=%v err=%v", id, res != nil && res.Claimed, err))
			}
		}(fmt.Sprintf("u%d", i))
	}
	wg.Wait()

	require.Empty(t, failures)
	require.Len(t, winners, 1)
	require.Equal(t, callers-1, notEligible)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	claim, err := repo.Claim(ctx)
	require.NoError(t, err)
	require.Equal(t, winners[0], claim.UserID)

	admin, err := repo.FindByID(ctx, winners[0])
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, admin.Role)
}

func TestUserRepository_UpdateRole(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	_, err := repo.Create(ctx, createInput("sub-1", false))
	require.NoError(t, err)
	_, err = repo.Create(ctx, createInput("sub-2", false))
	require.NoError(t, err)

	updated, err := repo.UpdateRole(ctx, "sub-2", domain.RoleProfesor, []string{domain.PermExportData})
	require.NoError(t, err)
	require.Equal(t, domain.RoleProfesor, updated.Role)
	require.Equal(t, []string{domain.PermExportData}, updated.Permissions)

	cleared, err := repo.UpdateRole(ctx, "sub-2", domain.RoleUser, nil)
	require.NoError(t, err)
	require.Empty(t, cleared.Permissions)
	require.NotNil(t, cleared.Permissions)

	_, err = repo.UpdateRole(ctx, "missing", domain.RoleUser, nil)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"c", "a", "b"} {
		in := createInput(id, false)
		in.User.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		in.User.UpdatedAt = in.User.CreatedAt
		_, err := repo.Create(ctx, in)
		require.NoError(t, err)
	}

	users, total, err := repo.List(ctx, 1, 2)
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, users, 2)
	require.Equal(t, "c", users[0].ID)
	require.Equal(t, "a", users[1].ID)

	users, _, err = repo.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "b", users[0].ID)
}
