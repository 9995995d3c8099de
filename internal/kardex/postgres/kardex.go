package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/personnel-records/internal/kardex"
	"gorm.io/gorm"
)

type KardexRepository struct {
	db *gorm.DB
}

func NewKardexRepository(db *gorm.DB) kardex.Repository {
	return &KardexRepository{db: db}
}

func (r *KardexRepository) Create(ctx context.Context, entry *kardex.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *KardexRepository) ListByPersonnel(ctx context.Context, personnelID int64) ([]*kardex.Entry, error) {
	var entries []*kardex.Entry
	err := r.db.WithContext(ctx).
		Where("personnel_id = ?", personnelID).
		Order("event_date DESC").
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error
	return entries, err
}

func (r *KardexRepository) GetByID(ctx context.Context, id int64) (*kardex.Entry, error) {
	var entry kardex.Entry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, kardex.ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}
