package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/personnel-records/internal/commendation"
	"gorm.io/gorm"
)

type CommendationRepository struct {
	db *gorm.DB
}

func NewCommendationRepository(db *gorm.DB) commendation.Repository {
	return &CommendationRepository{db: db}
}

func (r *CommendationRepository) Create(ctx context.Context, record *commendation.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *CommendationRepository) GetByID(ctx context.Context, id int64) (*commendation.Record, error) {
	var record commendation.Record
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commendation.ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *CommendationRepository) List(ctx context.Context, filter commendation.Filter) ([]*commendation.Record, error) {
	query := r.db.WithContext(ctx)
	if filter.PersonnelID != nil {
		query = query.Where("personnel_id = ?", *filter.PersonnelID)
	}
	if filter.CommendationTypeID != nil {
		query = query.Where("commendation_type_id = ?", *filter.CommendationTypeID)
	}
	var records []*commendation.Record
	err := query.Order("commendation_date DESC").Order("id DESC").Find(&records).Error
	return records, err
}

func (r *CommendationRepository) Update(ctx context.Context, record *commendation.Record) error {
	result := r.db.WithContext(ctx).
		Model(&commendation.Record{}).
		Where("id = ?", record.ID).
		Select("*").
		Omit("id", "recorded_by", "created_at").
		Updates(record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return commendation.ErrRecordNotFound
	}
	return nil
}

func (r *CommendationRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&commendation.Record{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return commendation.ErrRecordNotFound
	}
	return nil
}
