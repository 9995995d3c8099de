package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/personnel-records/internal/leave"
	"gorm.io/gorm"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.Repository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Create(ctx context.Context, req *leave.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *LeaveRepository) GetByID(ctx context.Context, id int64) (*leave.Request, error) {
	var req leave.Request
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, leave.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *LeaveRepository) List(ctx context.Context, filter leave.Filter) ([]*leave.Request, error) {
	query := r.db.WithContext(ctx)
	if filter.PersonnelID != nil {
		query = query.Where("personnel_id = ?", *filter.PersonnelID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var requests []*leave.Request
	err := query.Order("created_at DESC").Order("id DESC").Find(&requests).Error
	return requests, err
}

func (r *LeaveRepository) UpdatePending(ctx context.Context, req *leave.Request) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&leave.Request{}).
		Where("id = ? AND status = ?", req.ID, leave.StatusPending).
		Updates(map[string]interface{}{
			"leave_type":         req.LeaveType,
			"start_date":         req.StartDate,
			"end_date":           req.EndDate,
			"duration_days":      req.DurationDays,
			"motive":             req.Motive,
			"reference_document": req.ReferenceDocument,
			"updated_at":         time.Now(),
		})
	return result.RowsAffected == 1, result.Error
}

// Transition is a single conditional UPDATE, so two concurrent deciders
// cannot both move the same request.
func (r *LeaveRepository) Transition(ctx context.Context, id int64, from leave.Status, t leave.Transition) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&leave.Request{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":         t.To,
			"approver_id":    t.ApproverID,
			"decided_by":     t.DecidedBy,
			"decided_at":     t.DecidedAt,
			"decision_notes": t.Notes,
			"updated_at":     time.Now(),
		})
	return result.RowsAffected == 1, result.Error
}

func (r *LeaveRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&leave.Request{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return leave.ErrRequestNotFound
	}
	return nil
}
