package account

import (
	"errors"
	"time"

	"github.com/frahmantamala/personnel-records/internal/auth"
	accountDatamodel "github.com/frahmantamala/personnel-records/internal/core/datamodel/account"
)

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrDuplicateUsername = errors.New("username already taken")
)

type Account struct {
	ID                int64      `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email,omitempty"`
	FirstName         string     `json:"first_name,omitempty"`
	LastName          string     `json:"last_name,omitempty"`
	Phone             string     `json:"phone,omitempty"`
	Role              auth.Role  `json:"role"`
	RoleDisplayName   string     `json:"role_display_name"`
	IsActive          bool       `json:"is_active"`
	MustResetPassword bool       `json:"must_reset_password"`
	CredentialPending bool       `json:"credential_pending"`
	PersonnelID       *int64     `json:"personnel_id,omitempty"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Reset carries a freshly issued one-time credential.
type Reset struct {
	*Account
	OneTimePassword string `json:"one_time_password"`
}

type Filter struct {
	Role   *auth.Role
	Active *bool
}

// Created carries the one-time credential back to the administrator. It is
// never stored in clear text.
type Created struct {
	*Account
	OneTimePassword string `json:"one_time_password,omitempty"`
}

func ToDataModel(a *Account, passwordHash string) *accountDatamodel.Account {
	return &accountDatamodel.Account{
		ID:                a.ID,
		Username:          a.Username,
		Email:             a.Email,
		FirstName:         a.FirstName,
		LastName:          a.LastName,
		Phone:             a.Phone,
		PasswordHash:      passwordHash,
		Role:              string(a.Role),
		IsActive:          a.IsActive,
		MustResetPassword: a.MustResetPassword,
		PersonnelID:       a.PersonnelID,
		LastLoginAt:       a.LastLoginAt,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

func FromDataModel(row *accountDatamodel.Account) *Account {
	role := auth.Role(row.Role)
	return &Account{
		ID:                row.ID,
		Username:          row.Username,
		Email:             row.Email,
		FirstName:         row.FirstName,
		LastName:          row.LastName,
		Phone:             row.Phone,
		Role:              role,
		RoleDisplayName:   role.DisplayName(),
		IsActive:          row.IsActive,
		MustResetPassword: row.MustResetPassword,
		CredentialPending: row.MustResetPassword && row.LastLoginAt == nil,
		PersonnelID:       row.PersonnelID,
		LastLoginAt:       row.LastLoginAt,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}
