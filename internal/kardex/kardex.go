package kardex

import (
	"time"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/core/common/validation"
	"github.com/frahmantamala/personnel-records/internal/core/events"
	"github.com/samber/lo"
)

type EntryType string

const (
	EntryOnboarding   EntryType = "alta"
	EntryPromotion    EntryType = "ascenso"
	EntryTransfer     EntryType = "traslado"
	EntryStatusChange EntryType = "cambio_estado"
	EntrySanction     EntryType = "sancion"
	EntryCommendation EntryType = "felicitacion"
	EntryLeave        EntryType = "permiso"
	EntryOther        EntryType = "otro"
)

var EntryTypes = []EntryType{
	EntryOnboarding,
	EntryPromotion,
	EntryTransfer,
	EntryStatusChange,
	EntrySanction,
	EntryCommendation,
	EntryLeave,
	EntryOther,
}

func (t EntryType) Valid() bool {
	return lo.Contains(EntryTypes, t)
}

// Entry is one immutable line of a personnel history.
type Entry struct {
	ID                int64     `json:"id" gorm:"primaryKey"`
	PersonnelID       int64     `json:"personnel_id" gorm:"column:personnel_id;not null;index"`
	EntryType         EntryType `json:"entry_type" gorm:"column:entry_type;not null"`
	EventDate         time.Time `json:"event_date" gorm:"column:event_date;not null"`
	Description       string    `json:"description" gorm:"column:description;not null"`
	PreviousRankID    *int64    `json:"previous_rank_id,omitempty" gorm:"column:previous_rank_id"`
	NewRankID         *int64    `json:"new_rank_id,omitempty" gorm:"column:new_rank_id"`
	PreviousUnitID    *int64    `json:"previous_unit_id,omitempty" gorm:"column:previous_unit_id"`
	NewUnitID         *int64    `json:"new_unit_id,omitempty" gorm:"column:new_unit_id"`
	PreviousStatusID  *int64    `json:"previous_status_id,omitempty" gorm:"column:previous_status_id"`
	NewStatusID       *int64    `json:"new_status_id,omitempty" gorm:"column:new_status_id"`
	ReferenceDocument string    `json:"reference_document,omitempty" gorm:"column:reference_document"`
	Notes             string    `json:"notes,omitempty" gorm:"column:notes"`
	RecordedBy        int64     `json:"recorded_by" gorm:"column:recorded_by;not null"`
	CreatedAt         time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

func (Entry) TableName() string {
	return "kardex_entries"
}

// Snapshot is the optional before/after placement carried by promotion,
// transfer and status-change entries.
type Snapshot struct {
	Before events.Placement `json:"before"`
	After  events.Placement `json:"after"`
}

type AppendInput struct {
	EntryType         EntryType `json:"entry_type"`
	EventDate         time.Time `json:"event_date"`
	Description       string    `json:"description"`
	ReferenceDocument string    `json:"reference_document,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	Snapshot          *Snapshot `json:"snapshot,omitempty"`
}

func (in AppendInput) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("entry_type", string(in.EntryType)).Required().OneOf(entryTypeStrings()...)
	v.Field("event_date", in.EventDate).Required().NotFuture()
	v.Field("description", in.Description).Required().MaxLength(2000)
	v.Field("reference_document", in.ReferenceDocument).MaxLength(100)
	v.Field("notes", in.Notes).MaxLength(2000)
	return v.Validate()
}

func entryTypeStrings() []string {
	return lo.Map(EntryTypes, func(t EntryType, _ int) string { return string(t) })
}

func newEntry(personnelID, recordedBy int64, in AppendInput) *Entry {
	e := &Entry{
		PersonnelID:       personnelID,
		EntryType:         in.EntryType,
		EventDate:         in.EventDate,
		Description:       in.Description,
		ReferenceDocument: in.ReferenceDocument,
		Notes:             in.Notes,
		RecordedBy:        recordedBy,
	}
	if in.Snapshot != nil {
		e.PreviousRankID = in.Snapshot.Before.RankID
		e.NewRankID = in.Snapshot.After.RankID
		e.PreviousUnitID = in.Snapshot.Before.UnitID
		e.NewUnitID = in.Snapshot.After.UnitID
		e.PreviousStatusID = in.Snapshot.Before.StatusID
		e.NewStatusID = in.Snapshot.After.StatusID
	}
	return e
}
