package account

import "time"

// Account is the persisted login identity. PersonnelID is unique so a
// personnel record links to at most one account.
type Account struct {
	ID                int64      `gorm:"primaryKey"`
	Username          string     `gorm:"column:username;uniqueIndex;not null"`
	Email             string     `gorm:"column:email"`
	FirstName         string     `gorm:"column:first_name"`
	LastName          string     `gorm:"column:last_name"`
	Phone             string     `gorm:"column:phone"`
	PasswordHash      string     `gorm:"column:password_hash;not null"`
	Role              string     `gorm:"column:role;not null;default:usuario_autorizado"`
	IsActive          bool       `gorm:"column:is_active;not null"`
	MustResetPassword bool       `gorm:"column:must_reset_password;not null;default:false"`
	PersonnelID       *int64     `gorm:"column:personnel_id;uniqueIndex"`
	LastLoginAt       *time.Time `gorm:"column:last_login_at"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Account) TableName() string {
	return "accounts"
}
