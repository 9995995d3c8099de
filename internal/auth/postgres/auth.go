package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/personnel-records/internal/auth"
	accountDatamodel "github.com/frahmantamala/personnel-records/internal/core/datamodel/account"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetCredentials(ctx context.Context, username string) (*auth.Credentials, error) {
	var row accountDatamodel.Account
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, err
	}
	return &auth.Credentials{
		AccountID:         row.ID,
		Username:          row.Username,
		PasswordHash:      row.PasswordHash,
		Role:              auth.Role(row.Role),
		Active:            row.IsActive,
		MustResetPassword: row.MustResetPassword,
	}, nil
}

func (r *Repository) GetActorByID(ctx context.Context, id int64) (*auth.Actor, error) {
	var row accountDatamodel.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, err
	}
	return ActorFromDataModel(&row), nil
}

func (r *Repository) UpdatePassword(ctx context.Context, accountID int64, passwordHash string, mustReset bool) error {
	return r.db.WithContext(ctx).Model(&accountDatamodel.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"password_hash":       passwordHash,
			"must_reset_password": mustReset,
			"updated_at":          time.Now(),
		}).Error
}

func (r *Repository) TouchLastLogin(ctx context.Context, accountID int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&accountDatamodel.Account{}).
		Where("id = ?", accountID).
		Update("last_login_at", at).Error
}

// ActorFromDataModel converts a stored account into the identity used by the guard.
func ActorFromDataModel(row *accountDatamodel.Account) *auth.Actor {
	return &auth.Actor{
		ID:                row.ID,
		Username:          row.Username,
		Email:             row.Email,
		Role:              auth.Role(row.Role),
		Active:            row.IsActive,
		PersonnelID:       row.PersonnelID,
		MustResetPassword: row.MustResetPassword,
	}
}
