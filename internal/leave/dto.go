package leave

import (
	"time"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/core/common/validation"
	"github.com/samber/lo"
)

type SubmitDTO struct {
	PersonnelID       int64     `json:"personnel_id"`
	LeaveType         Type      `json:"leave_type"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	Motive            string    `json:"motive"`
	ReferenceDocument string    `json:"reference_document,omitempty"`
}

func (dto SubmitDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("personnel_id", dto.PersonnelID).Required()
	validateBody(v, dto.LeaveType, dto.StartDate, dto.EndDate, dto.Motive, dto.ReferenceDocument)
	return v.Validate()
}

// UpdateDTO edits a request that is still pending.
type UpdateDTO struct {
	LeaveType         Type      `json:"leave_type"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	Motive            string    `json:"motive"`
	ReferenceDocument string    `json:"reference_document,omitempty"`
}

func (dto UpdateDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	validateBody(v, dto.LeaveType, dto.StartDate, dto.EndDate, dto.Motive, dto.ReferenceDocument)
	return v.Validate()
}

func validateBody(v *validation.ValidationBuilder, leaveType Type, start, end time.Time, motive, reference string) {
	v.Field("leave_type", string(leaveType)).Required().OneOf(typeStrings()...)
	v.Field("start_date", start).Required()
	v.Field("end_date", DateOnly(end)).Required().NotBefore(DateOnly(start), "start_date")
	v.Field("motive", motive).Required().MaxLength(2000)
	v.Field("reference_document", reference).MaxLength(50)
}

type Outcome string

const (
	OutcomeApproved Outcome = "aprobado"
	OutcomeRejected Outcome = "rechazado"
)

type DecideDTO struct {
	Outcome Outcome `json:"outcome"`
	Notes   string  `json:"notes,omitempty"`
}

func (dto DecideDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("outcome", string(dto.Outcome)).Required().OneOf(string(OutcomeApproved), string(OutcomeRejected))
	v.Field("notes", dto.Notes).MaxLength(2000)
	return v.Validate()
}

func (o Outcome) status() Status {
	if o == OutcomeApproved {
		return StatusApproved
	}
	return StatusRejected
}

func typeStrings() []string {
	return lo.Map(Types, func(t Type, _ int) string { return string(t) })
}
