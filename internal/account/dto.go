package account

import (
	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/frahmantamala/personnel-records/internal/core/common/validation"
)

// CreateDTO provisions an account by hand. An empty password makes the
// service generate a one-time credential.
type CreateDTO struct {
	Username    string `json:"username"`
	Password    string `json:"password,omitempty"`
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Role        string `json:"role"`
	PersonnelID *int64 `json:"personnel_id,omitempty"`
}

type RoleDTO struct {
	Role string `json:"role"`
}

type ActiveDTO struct {
	Active *bool `json:"active"`
}

func roleField(name string) func(interface{}) *internal.AppError {
	return func(value interface{}) *internal.AppError {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		if _, err := auth.ParseRole(s); err != nil {
			return internal.NewValidationFieldError(name, err.Error(), internal.ErrCodeInvalidValue)
		}
		return nil
	}
}

func (d CreateDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required().MinLength(3).MaxLength(150)
	v.Field("password", d.Password).MaxLength(72).Custom(func(value interface{}) *internal.AppError {
		if s, _ := value.(string); s != "" && len(s) < auth.MinPasswordLength {
			return internal.NewValidationFieldError("password", "password must be at least 8 characters", internal.ErrCodeValidationFailed)
		}
		return nil
	})
	v.Field("email", d.Email).Email().MaxLength(254)
	v.Field("first_name", d.FirstName).MaxLength(150)
	v.Field("last_name", d.LastName).MaxLength(150)
	v.Field("phone", d.Phone).MaxLength(20)
	v.Field("role", d.Role).Required().Custom(roleField("role"))
	return v.Validate()
}

func (d RoleDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("role", d.Role).Required().Custom(roleField("role"))
	return v.Validate()
}

func (d ActiveDTO) Validate() *internal.AppError {
	if d.Active == nil {
		return internal.NewValidationFieldError("active", "active is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
