package sysconfig

import (
	"errors"
	"time"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/core/common/validation"
	sysconfigDatamodel "github.com/frahmantamala/personnel-records/internal/core/datamodel/sysconfig"
)

const (
	DefaultInstitutionName       = "UTEPPI"
	DefaultSessionTimeoutMinutes = 60
	MinSessionTimeoutMinutes     = 5
	MaxSessionTimeoutMinutes     = 1440
)

var (
	ErrNotConfigured = errors.New("system configuration not found")
	ErrAlreadyExists = errors.New("system configuration already exists")
)

// Config is the single system-wide settings row.
type Config struct {
	ID                    int64     `json:"id"`
	InstitutionName       string    `json:"institution_name"`
	LogoURL               string    `json:"logo_url,omitempty"`
	SessionTimeoutMinutes int       `json:"session_timeout_minutes"`
	Maintenance           bool      `json:"maintenance"`
	UpdatedBy             *int64    `json:"updated_by,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutMinutes) * time.Minute
}

// Input is shared by create and update. Nil fields keep the current value,
// or the default on create.
type Input struct {
	InstitutionName       *string `json:"institution_name,omitempty"`
	LogoURL               *string `json:"logo_url,omitempty"`
	SessionTimeoutMinutes *int    `json:"session_timeout_minutes,omitempty"`
	Maintenance           *bool   `json:"maintenance,omitempty"`
}

func (in Input) Validate() *internal.AppError {
	v := validation.NewValidator()
	if in.InstitutionName != nil {
		v.Field("institution_name", *in.InstitutionName).Required().MaxLength(200)
	}
	if in.LogoURL != nil {
		v.Field("logo_url", *in.LogoURL).MaxLength(500)
	}
	if in.SessionTimeoutMinutes != nil {
		v.Field("session_timeout_minutes", *in.SessionTimeoutMinutes).IntRange(MinSessionTimeoutMinutes, MaxSessionTimeoutMinutes)
	}
	return v.Validate()
}

func Defaults() *Config {
	return &Config{
		InstitutionName:       DefaultInstitutionName,
		SessionTimeoutMinutes: DefaultSessionTimeoutMinutes,
	}
}

func (c *Config) Apply(in Input) {
	if in.InstitutionName != nil {
		c.InstitutionName = *in.InstitutionName
	}
	if in.LogoURL != nil {
		c.LogoURL = *in.LogoURL
	}
	if in.SessionTimeoutMinutes != nil {
		c.SessionTimeoutMinutes = *in.SessionTimeoutMinutes
	}
	if in.Maintenance != nil {
		c.Maintenance = *in.Maintenance
	}
}

func ToDataModel(c *Config) *sysconfigDatamodel.SystemConfig {
	return &sysconfigDatamodel.SystemConfig{
		ID:                    c.ID,
		SingletonKey:          1,
		InstitutionName:       c.InstitutionName,
		LogoURL:               c.LogoURL,
		SessionTimeoutMinutes: c.SessionTimeoutMinutes,
		Maintenance:           c.Maintenance,
		UpdatedBy:             c.UpdatedBy,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
}

func FromDataModel(row *sysconfigDatamodel.SystemConfig) *Config {
	return &Config{
		ID:                    row.ID,
		InstitutionName:       row.InstitutionName,
		LogoURL:               row.LogoURL,
		SessionTimeoutMinutes: row.SessionTimeoutMinutes,
		Maintenance:           row.Maintenance,
		UpdatedBy:             row.UpdatedBy,
		CreatedAt:             row.CreatedAt,
		UpdatedAt:             row.UpdatedAt,
	}
}
