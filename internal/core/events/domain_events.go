package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePersonnelCreated     = "personnel.created"
	EventTypePersonnelUpdated     = "personnel.updated"
	EventTypeLeaveApproved        = "leave.approved"
	EventTypeSanctionRecorded     = "sanction.recorded"
	EventTypeCommendationRecorded = "commendation.recorded"
)

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// Placement is the rank/unit/status triple snapshotted on personnel changes.
type Placement struct {
	RankID   *int64 `json:"rank_id,omitempty"`
	UnitID   *int64 `json:"unit_id,omitempty"`
	StatusID *int64 `json:"status_id,omitempty"`
}

type PersonnelCreatedEvent struct {
	BaseEvent
	PersonnelID        int64
	ActorID            int64
	IDDocument         string
	FirstNames         string
	LastNames          string
	Phone              string
	InstitutionalEmail string
	Placement          Placement
	HireDate           *time.Time
}

func NewPersonnelCreatedEvent(e PersonnelCreatedEvent) *PersonnelCreatedEvent {
	e.BaseEvent = newBase(EventTypePersonnelCreated, map[string]interface{}{
		"personnel_id": e.PersonnelID,
		"actor_id":     e.ActorID,
	})
	return &e
}

type PersonnelUpdatedEvent struct {
	BaseEvent
	PersonnelID int64
	ActorID     int64
	Before      Placement
	After       Placement
}

func NewPersonnelUpdatedEvent(personnelID, actorID int64, before, after Placement) *PersonnelUpdatedEvent {
	return &PersonnelUpdatedEvent{
		BaseEvent: newBase(EventTypePersonnelUpdated, map[string]interface{}{
			"personnel_id": personnelID,
			"actor_id":     actorID,
		}),
		PersonnelID: personnelID,
		ActorID:     actorID,
		Before:      before,
		After:       after,
	}
}

type LeaveApprovedEvent struct {
	BaseEvent
	RequestID    int64
	PersonnelID  int64
	ApproverID   int64
	LeaveType    string
	StartDate    time.Time
	EndDate      time.Time
	DurationDays int
	DecidedAt    time.Time
}

func NewLeaveApprovedEvent(e LeaveApprovedEvent) *LeaveApprovedEvent {
	e.BaseEvent = newBase(EventTypeLeaveApproved, map[string]interface{}{
		"request_id":   e.RequestID,
		"personnel_id": e.PersonnelID,
		"approver_id":  e.ApproverID,
	})
	return &e
}

// RecordEvent covers both sanctions and commendations.
type RecordEvent struct {
	BaseEvent
	RecordID    int64
	PersonnelID int64
	ActorID     int64
	TypeName    string
	Date        time.Time
	Reason      string
}

func NewSanctionRecordedEvent(e RecordEvent) *RecordEvent {
	return newRecordEvent(EventTypeSanctionRecorded, e)
}

func NewCommendationRecordedEvent(e RecordEvent) *RecordEvent {
	return newRecordEvent(EventTypeCommendationRecorded, e)
}

func newRecordEvent(eventType string, e RecordEvent) *RecordEvent {
	e.BaseEvent = newBase(eventType, map[string]interface{}{
		"record_id":    e.RecordID,
		"personnel_id": e.PersonnelID,
		"actor_id":     e.ActorID,
	})
	return &e
}
