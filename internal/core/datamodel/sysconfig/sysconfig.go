package sysconfig

import "time"

// SystemConfig is stored as a single row. SingletonKey is always 1 and
// carries a unique index so a second insert fails at the database.
type SystemConfig struct {
	ID                    int64     `gorm:"primaryKey"`
	SingletonKey          int       `gorm:"column:singleton_key;uniqueIndex;not null;default:1"`
	InstitutionName       string    `gorm:"column:institution_name;not null;default:UTEPPI"`
	LogoURL               string    `gorm:"column:logo_url"`
	SessionTimeoutMinutes int       `gorm:"column:session_timeout_minutes;not null;default:60"`
	Maintenance           bool      `gorm:"column:maintenance;not null;default:false"`
	UpdatedBy             *int64    `gorm:"column:updated_by"`
	CreatedAt             time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (SystemConfig) TableName() string {
	return "system_config"
}
