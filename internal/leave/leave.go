package leave

import (
	"time"
)

type Type string

const (
	TypeAdministrative    Type = "administrativo"
	TypeMedical           Type = "medico"
	TypePersonal          Type = "personal"
	TypeServiceCommission Type = "comision"
	TypeVacation          Type = "vacaciones"
)

var Types = []Type{TypeAdministrative, TypeMedical, TypePersonal, TypeServiceCommission, TypeVacation}

type Status string

const (
	StatusPending   Status = "pendiente"
	StatusApproved  Status = "aprobado"
	StatusRejected  Status = "rechazado"
	StatusCancelled Status = "cancelado"
)

// Request is a leave/permission request. DurationDays is always derived
// from the date range.
type Request struct {
	ID                int64      `json:"id" gorm:"primaryKey"`
	PersonnelID       int64      `json:"personnel_id" gorm:"column:personnel_id;not null;index"`
	LeaveType         Type       `json:"leave_type" gorm:"column:leave_type;not null"`
	StartDate         time.Time  `json:"start_date" gorm:"column:start_date;not null"`
	EndDate           time.Time  `json:"end_date" gorm:"column:end_date;not null"`
	DurationDays      int        `json:"duration_days" gorm:"column:duration_days;not null"`
	Motive            string     `json:"motive" gorm:"column:motive;not null"`
	ReferenceDocument string     `json:"reference_document,omitempty" gorm:"column:reference_document"`
	Status            Status     `json:"status" gorm:"column:status;not null;index"`
	ApproverID        *int64     `json:"approver_id,omitempty" gorm:"column:approver_id"`
	DecidedAt         *time.Time `json:"decided_at,omitempty" gorm:"column:decided_at"`
	DecidedBy         *int64     `json:"decided_by,omitempty" gorm:"column:decided_by"`
	DecisionNotes     string     `json:"decision_notes,omitempty" gorm:"column:decision_notes"`
	CreatedBy         int64      `json:"created_by" gorm:"column:created_by;not null"`
	CreatedAt         time.Time  `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (Request) TableName() string {
	return "leave_requests"
}

func (r *Request) IsPending() bool {
	return r.Status == StatusPending
}

// SetDates normalizes both dates to calendar days and recomputes the duration.
func (r *Request) SetDates(start, end time.Time) {
	r.StartDate = DateOnly(start)
	r.EndDate = DateOnly(end)
	r.DurationDays = DurationDays(r.StartDate, r.EndDate)
}

// DateOnly drops the clock part, keeping the calendar date as written.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DurationDays counts both the start and end day.
func DurationDays(start, end time.Time) int {
	s, e := DateOnly(start), DateOnly(end)
	return int(e.Sub(s).Hours()/24) + 1
}

// Transition is the write applied by a compare-and-swap on status.
type Transition struct {
	To         Status
	ApproverID *int64
	DecidedBy  int64
	DecidedAt  time.Time
	Notes      string
}

type Filter struct {
	PersonnelID *int64
	Status      *Status
}
