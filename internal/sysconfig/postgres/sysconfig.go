package postgres

import (
	"context"
	"errors"

	sysconfigDatamodel "github.com/frahmantamala/personnel-records/internal/core/datamodel/sysconfig"
	"github.com/frahmantamala/personnel-records/internal/sysconfig"
	"gorm.io/gorm"
)

type SystemConfigRepository struct {
	db *gorm.DB
}

func NewSystemConfigRepository(db *gorm.DB) *SystemConfigRepository {
	return &SystemConfigRepository{db: db}
}

func (r *SystemConfigRepository) Get(ctx context.Context) (*sysconfig.Config, error) {
	var row sysconfigDatamodel.SystemConfig
	if err := r.db.WithContext(ctx).Where("singleton_key = ?", 1).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sysconfig.ErrNotConfigured
		}
		return nil, err
	}
	return sysconfig.FromDataModel(&row), nil
}

// Create relies on the unique singleton key to reject a second row.
func (r *SystemConfigRepository) Create(ctx context.Context, c *sysconfig.Config) error {
	row := sysconfig.ToDataModel(c)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return sysconfig.ErrAlreadyExists
		}
		return err
	}
	*c = *sysconfig.FromDataModel(row)
	return nil
}

func (r *SystemConfigRepository) Update(ctx context.Context, c *sysconfig.Config) error {
	result := r.db.WithContext(ctx).
		Model(&sysconfigDatamodel.SystemConfig{}).
		Where("singleton_key = ?", 1).
		Updates(map[string]interface{}{
			"institution_name":        c.InstitutionName,
			"logo_url":                c.LogoURL,
			"session_timeout_minutes": c.SessionTimeoutMinutes,
			"maintenance":             c.Maintenance,
			"updated_by":              c.UpdatedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return sysconfig.ErrNotConfigured
	}
	return nil
}
