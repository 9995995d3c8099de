package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/personnel-records/internal/sanction"
	"gorm.io/gorm"
)

type SanctionRepository struct {
	db *gorm.DB
}

func NewSanctionRepository(db *gorm.DB) sanction.Repository {
	return &SanctionRepository{db: db}
}

func (r *SanctionRepository) Create(ctx context.Context, record *sanction.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *SanctionRepository) GetByID(ctx context.Context, id int64) (*sanction.Record, error) {
	var record sanction.Record
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, sanction.ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *SanctionRepository) List(ctx context.Context, filter sanction.Filter) ([]*sanction.Record, error) {
	query := r.db.WithContext(ctx)
	if filter.PersonnelID != nil {
		query = query.Where("personnel_id = ?", *filter.PersonnelID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	var records []*sanction.Record
	err := query.Order("sanction_date DESC").Order("id DESC").Find(&records).Error
	return records, err
}

func (r *SanctionRepository) Update(ctx context.Context, record *sanction.Record) error {
	result := r.db.WithContext(ctx).
		Model(&sanction.Record{}).
		Where("id = ?", record.ID).
		Select("*").
		Omit("id", "recorded_by", "created_at").
		Updates(record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return sanction.ErrRecordNotFound
	}
	return nil
}

func (r *SanctionRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&sanction.Record{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return sanction.ErrRecordNotFound
	}
	return nil
}
