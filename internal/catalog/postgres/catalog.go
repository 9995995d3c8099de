package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/personnel-records/internal/catalog"
	"gorm.io/gorm"
)

// Repository is the gorm-backed store for one catalog table.
type Repository[T catalog.Entry] struct {
	db   *gorm.DB
	kind catalog.Kind
}

func NewRepository[T catalog.Entry](db *gorm.DB, kind catalog.Kind) catalog.RepositoryAPI[T] {
	return &Repository[T]{db: db, kind: kind}
}

func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	var entries []T
	err := r.db.WithContext(ctx).Order(r.kind.Order).Find(&entries).Error
	return entries, err
}

func (r *Repository[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	var entry T
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if err != nil {
		return nil, translate(err)
	}
	return &entry, nil
}

func (r *Repository[T]) Create(ctx context.Context, entry *T) error {
	return translate(r.db.WithContext(ctx).Create(entry).Error)
}

// Update writes every column except the key and creation time, so zero
// values such as is_active=false are persisted.
func (r *Repository[T]) Update(ctx context.Context, id int64, entry *T) error {
	result := r.db.WithContext(ctx).Model(new(T)).
		Where("id = ?", id).
		Select("*").
		Omit("id", "created_at").
		Updates(entry)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return catalog.ErrEntryNotFound
	}
	return nil
}

func (r *Repository[T]) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return catalog.ErrEntryNotFound
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return catalog.ErrEntryNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return catalog.ErrDuplicateEntry
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return catalog.ErrEntryInUse
	}
	return err
}

// ReferenceRepository answers existence checks other modules make against
// catalog tables before writing a foreign key.
type ReferenceRepository struct {
	db *gorm.DB
}

func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) Exists(ctx context.Context, kind catalog.Kind, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table(kind.Table).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *ReferenceRepository) LookupName(ctx context.Context, kind catalog.Kind, id int64) (string, error) {
	var names []string
	err := r.db.WithContext(ctx).Table(kind.Table).Where("id = ?", id).Limit(1).Pluck("name", &names).Error
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", catalog.ErrEntryNotFound
	}
	return names[0], nil
}
