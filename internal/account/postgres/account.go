package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/personnel-records/internal/account"
	"github.com/frahmantamala/personnel-records/internal/auth"
	accountDatamodel "github.com/frahmantamala/personnel-records/internal/core/datamodel/account"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, a *account.Account, passwordHash string) error {
	row := account.ToDataModel(a, passwordHash)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return account.ErrDuplicateUsername
		}
		return err
	}
	*a = *account.FromDataModel(row)
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	var row accountDatamodel.Account
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, account.ErrAccountNotFound
		}
		return nil, err
	}
	return account.FromDataModel(&row), nil
}

func (r *AccountRepository) List(ctx context.Context, filter account.Filter) ([]*account.Account, error) {
	query := r.db.WithContext(ctx)
	if filter.Role != nil {
		query = query.Where("role = ?", string(*filter.Role))
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	var rows []accountDatamodel.Account
	if err := query.Order("username ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row accountDatamodel.Account, _ int) *account.Account {
		return account.FromDataModel(&row)
	}), nil
}

func (r *AccountRepository) ExistsForPersonnel(ctx context.Context, personnelID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&accountDatamodel.Account{}).
		Where("personnel_id = ?", personnelID).
		Count(&count).Error
	return count > 0, err
}

func (r *AccountRepository) UpdateRole(ctx context.Context, id int64, role auth.Role) error {
	return r.update(ctx, id, map[string]interface{}{"role": string(role)})
}

func (r *AccountRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.update(ctx, id, map[string]interface{}{"is_active": active})
}

// ResetPassword stores a new hash and forces the owner to change it.
func (r *AccountRepository) ResetPassword(ctx context.Context, id int64, passwordHash string) error {
	return r.update(ctx, id, map[string]interface{}{
		"password_hash":       passwordHash,
		"must_reset_password": true,
	})
}

func (r *AccountRepository) update(ctx context.Context, id int64, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&accountDatamodel.Account{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*account.Account, error) {
	var row accountDatamodel.Account
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, account.ErrAccountNotFound
		}
		return nil, err
	}
	return account.FromDataModel(&row), nil
}

// MigrateLegacyRoles rewrites retired role names in one transaction and
// reports how many accounts moved per legacy name.
func (r *AccountRepository) MigrateLegacyRoles(ctx context.Context) (map[string]int64, error) {
	moved := make(map[string]int64, len(auth.LegacyRoleNames))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for legacy, role := range auth.LegacyRoleNames {
			result := tx.Model(&accountDatamodel.Account{}).
				Where("role = ?", legacy).
				Updates(map[string]interface{}{"role": string(role), "updated_at": time.Now()})
			if result.Error != nil {
				return result.Error
			}
			moved[legacy] = result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}
