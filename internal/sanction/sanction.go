package sanction

import (
	"time"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/core/common/validation"
)

type Status string

const (
	StatusActive    Status = "activa"
	StatusFulfilled Status = "cumplida"
	StatusAnnulled  Status = "anulada"
)

type Record struct {
	ID                int64      `json:"id" gorm:"primaryKey"`
	PersonnelID       int64      `json:"personnel_id" gorm:"column:personnel_id;not null;index"`
	SanctionTypeID    int64      `json:"sanction_type_id" gorm:"column:sanction_type_id;not null"`
	SanctionDate      time.Time  `json:"sanction_date" gorm:"column:sanction_date;not null"`
	StartDate         *time.Time `json:"start_date,omitempty" gorm:"column:start_date"`
	EndDate           *time.Time `json:"end_date,omitempty" gorm:"column:end_date"`
	Reason            string     `json:"reason" gorm:"column:reason;not null"`
	Status            Status     `json:"status" gorm:"column:status;not null"`
	Notes             string     `json:"notes,omitempty" gorm:"column:notes"`
	ReferenceDocument string     `json:"reference_document,omitempty" gorm:"column:reference_document"`
	RecordedBy        int64      `json:"recorded_by" gorm:"column:recorded_by;not null"`
	CreatedAt         time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Record) TableName() string {
	return "sanctions"
}

type Input struct {
	PersonnelID       int64      `json:"personnel_id"`
	SanctionTypeID    int64      `json:"sanction_type_id"`
	SanctionDate      time.Time  `json:"sanction_date"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	Reason            string     `json:"reason"`
	Status            Status     `json:"status,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	ReferenceDocument string     `json:"reference_document,omitempty"`
}

func (in Input) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("personnel_id", in.PersonnelID).Required()
	v.Field("sanction_type_id", in.SanctionTypeID).Required()
	v.Field("sanction_date", in.SanctionDate).Required().NotFuture()
	if in.StartDate != nil {
		v.Field("end_date", in.EndDate).NotBefore(*in.StartDate, "start_date")
	}
	v.Field("reason", in.Reason).Required().MaxLength(2000)
	v.Field("status", string(in.Status)).OneOf(string(StatusActive), string(StatusFulfilled), string(StatusAnnulled))
	v.Field("reference_document", in.ReferenceDocument).MaxLength(50)
	return v.Validate()
}

func (r *Record) apply(in Input) {
	r.PersonnelID = in.PersonnelID
	r.SanctionTypeID = in.SanctionTypeID
	r.SanctionDate = in.SanctionDate
	r.StartDate = in.StartDate
	r.EndDate = in.EndDate
	r.Reason = in.Reason
	r.Status = in.Status
	if r.Status == "" {
		r.Status = StatusActive
	}
	r.Notes = in.Notes
	r.ReferenceDocument = in.ReferenceDocument
}

type Filter struct {
	PersonnelID *int64
	Status      *Status
}
