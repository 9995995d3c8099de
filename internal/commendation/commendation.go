package commendation

import (
	"time"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/core/common/validation"
)

type Record struct {
	ID                 int64     `json:"id" gorm:"primaryKey"`
	PersonnelID        int64     `json:"personnel_id" gorm:"column:personnel_id;not null;index"`
	CommendationTypeID int64     `json:"commendation_type_id" gorm:"column:commendation_type_id;not null"`
	CommendationDate   time.Time `json:"commendation_date" gorm:"column:commendation_date;not null"`
	Reason             string    `json:"reason" gorm:"column:reason;not null"`
	ReferenceDocument  string    `json:"reference_document,omitempty" gorm:"column:reference_document"`
	Notes              string    `json:"notes,omitempty" gorm:"column:notes"`
	RecordedBy         int64     `json:"recorded_by" gorm:"column:recorded_by;not null"`
	CreatedAt          time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Record) TableName() string {
	return "commendations"
}

type Input struct {
	PersonnelID        int64     `json:"personnel_id"`
	CommendationTypeID int64     `json:"commendation_type_id"`
	CommendationDate   time.Time `json:"commendation_date"`
	Reason             string    `json:"reason"`
	ReferenceDocument  string    `json:"reference_document,omitempty"`
	Notes              string    `json:"notes,omitempty"`
}

func (in Input) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("personnel_id", in.PersonnelID).Required()
	v.Field("commendation_type_id", in.CommendationTypeID).Required()
	v.Field("commendation_date", in.CommendationDate).Required().NotFuture()
	v.Field("reason", in.Reason).Required().MaxLength(2000)
	v.Field("reference_document", in.ReferenceDocument).MaxLength(50)
	v.Field("notes", in.Notes).MaxLength(2000)
	return v.Validate()
}

type Filter struct {
	PersonnelID        *int64
	CommendationTypeID *int64
}
