package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/domain"
	"github.com/GRAMAPHENIA/gestion-escolar-web-app-sub001/internal/core/ports"
)

// errUserConflict aborts the create transaction when the ID is already taken.
var errUserConflict = errors.New("user id already present")

// UserRepository implements ports.UserRepository using gorm.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var m userModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, storageError("find user", err)
	}
	return m.toDomain(), nil
}

// Create counts the population, takes the bootstrap claim with
// INSERT ... ON CONFLICT DO NOTHING when it is zero and inserts the user, all
// in one transaction. Only the transaction whose claim insert affected a row
// assigns the admin role. A conflicting ID rolls everything back and the
// stored row is returned with Existing set.
func (r *UserRepository) Create(ctx context.Context, in ports.CreateUserInput) (*ports.CreateUserResult, error) {
	result := &ports.CreateUserResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total int64
		if err := tx.Model(&userModel{}).Count(&total).Error; err != nil {
			return err
		}

		u := in.User
		if total == 0 {
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&bootstrapClaimModel{
				ID:        bootstrapClaimID,
				UserID:    u.ID,
				ClaimedAt: time.Now().UTC(),
			})
			if res.Error != nil {
				return res.Error
			}
			result.Claimed = res.RowsAffected == 1
		}
		if in.RequireClaim && !result.Claimed {
			return domain.ErrNotEligible
		}
		if result.Claimed {
			u.Role = in.AdminRole
			u.Permissions = in.AdminPerms
		}

		m := toUserModel(&u)
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(m)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errUserConflict
		}
		result.User = m.toDomain()
		return nil
	})

	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, domain.ErrNotEligible):
		return nil, err
	case errors.Is(err, errUserConflict), errors.Is(err, gorm.ErrDuplicatedKey):
		existing, ferr := r.FindByID(ctx, in.User.ID)
		if ferr != nil {
			return nil, ferr
		}
		return &ports.CreateUserResult{User: existing, Existing: true}, nil
	default:
		return nil, storageError("create user", err)
	}
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&userModel{}).Count(&total).Error; err != nil {
		return 0, storageError("count users", err)
	}
	return total, nil
}

func (r *UserRepository) Claim(ctx context.Context) (*domain.BootstrapClaim, error) {
	var m bootstrapClaimModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", bootstrapClaimID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError("read bootstrap claim", err)
	}
	return &domain.BootstrapClaim{UserID: m.UserID, ClaimedAt: m.ClaimedAt}, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id, role string, permissions []string) (*domain.User, error) {
	if permissions == nil {
		permissions = []string{}
	}
	res := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", id).Updates(map[string]any{
		"role":        role,
		"permissions": datatypes.JSONSlice[string](permissions),
		"updated_at":  time.Now().UTC(),
	})
	if res.Error != nil {
		return nil, storageError("update user role", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrUserNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *UserRepository) List(ctx context.Context, page, limit int) ([]*domain.User, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := db.Model(&userModel{}).Count(&total).Error; err != nil {
		return nil, 0, storageError("count users", err)
	}

	var rows []userModel
	err := db.Order("created_at ASC, id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, storageError("list users", err)
	}

	users := make([]*domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toDomain())
	}
	return users, total, nil
}
