package personnel

import (
	"time"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/core/common/validation"
)

type PersonnelInput struct {
	Code               string     `json:"code"`
	IDDocument         string     `json:"id_document"`
	IssuedIn           string     `json:"issued_in,omitempty"`
	FirstNames         string     `json:"first_names"`
	PaternalSurname    string     `json:"paternal_surname"`
	MaternalSurname    string     `json:"maternal_surname,omitempty"`
	BirthDate          *time.Time `json:"birth_date,omitempty"`
	Gender             string     `json:"gender,omitempty"`
	RankID             *int64     `json:"rank_id,omitempty"`
	UnitID             *int64     `json:"unit_id,omitempty"`
	StatusID           *int64     `json:"status_id,omitempty"`
	HireDate           *time.Time `json:"hire_date,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	EmergencyPhone     string     `json:"emergency_phone,omitempty"`
	InstitutionalEmail string     `json:"institutional_email,omitempty"`
	IsActive           *bool      `json:"is_active,omitempty"`
}

func (in PersonnelInput) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("code", in.Code).Required().MaxLength(20)
	v.Field("id_document", in.IDDocument).Required().MaxLength(20)
	v.Field("issued_in", in.IssuedIn).MaxLength(5)
	v.Field("first_names", in.FirstNames).Required().MaxLength(100)
	v.Field("paternal_surname", in.PaternalSurname).Required().MaxLength(100)
	v.Field("maternal_surname", in.MaternalSurname).MaxLength(100)
	v.Field("gender", in.Gender).OneOf(GenderMale, GenderFemale)
	v.Field("phone", in.Phone).MaxLength(20)
	v.Field("emergency_phone", in.EmergencyPhone).MaxLength(20)
	v.Field("institutional_email", in.InstitutionalEmail).MaxLength(100).Email()
	if in.BirthDate != nil {
		v.Field("birth_date", *in.BirthDate).NotFuture()
	}
	if in.HireDate != nil {
		v.Field("hire_date", *in.HireDate).NotFuture()
	}
	return v.Validate()
}
