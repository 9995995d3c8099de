package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/personnel-records/internal"
	"github.com/frahmantamala/personnel-records/internal/auth"
	"github.com/jmoiron/sqlx"
)

type StatusCount struct {
	StatusID int64  `db:"status_id" json:"status_id"`
	Name     string `db:"name" json:"name"`
	Color    string `db:"color" json:"color"`
	Count    int64  `db:"count" json:"count"`
}

type Summary struct {
	TotalPersonnel        int64         `db:"total_personnel" json:"total_personnel"`
	ActivePersonnel       int64         `db:"active_personnel" json:"active_personnel"`
	PendingLeaveRequests  int64         `db:"pending_leave_requests" json:"pending_leave_requests"`
	ActiveSanctions       int64         `db:"active_sanctions" json:"active_sanctions"`
	CommendationsThisYear int64         `db:"commendations_this_year" json:"commendations_this_year"`
	ByStatus              []StatusCount `db:"-" json:"by_status"`
	GeneratedAt           time.Time     `db:"-" json:"generated_at"`
}

const countsQuery = `
SELECT
	(SELECT COUNT(*) FROM personnel) AS total_personnel,
	(SELECT COUNT(*) FROM personnel WHERE is_active) AS active_personnel,
	(SELECT COUNT(*) FROM leave_requests WHERE status = 'pendiente') AS pending_leave_requests,
	(SELECT COUNT(*) FROM sanctions WHERE status = 'activa') AS active_sanctions,
	(SELECT COUNT(*) FROM commendations WHERE commendation_date >= $1) AS commendations_this_year`

const byStatusQuery = `
SELECT s.id AS status_id, s.name, s.color, COUNT(p.id) AS count
FROM status_types s
LEFT JOIN personnel p ON p.status_id = s.id
GROUP BY s.id, s.name, s.color
ORDER BY s.name`

// Repository reads aggregates with raw SQL.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Summary(ctx context.Context, now time.Time) (*Summary, error) {
	var s Summary
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	if err := r.db.GetContext(ctx, &s, countsQuery, yearStart); err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	if err := r.db.SelectContext(ctx, &s.ByStatus, byStatusQuery); err != nil {
		return nil, fmt.Errorf("dashboard status breakdown: %w", err)
	}
	if s.ByStatus == nil {
		s.ByStatus = []StatusCount{}
	}
	s.GeneratedAt = now
	return &s, nil
}

type SummaryReader interface {
	Summary(ctx context.Context, now time.Time) (*Summary, error)
}

type Service struct {
	repo   SummaryReader
	guard  auth.Authorizer
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo SummaryReader, guard auth.Authorizer, logger *slog.Logger) *Service {
	return &Service{repo: repo, guard: guard, logger: logger, now: time.Now}
}

func (s *Service) Summary(ctx context.Context, actor *auth.Actor) (*Summary, error) {
	if err := s.guard.Authorize(ctx, actor, auth.CapabilityView); err != nil {
		return nil, err
	}
	summary, err := s.repo.Summary(ctx, s.now())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to build dashboard", "error", err)
		return nil, internal.NewInternalError("failed to build dashboard", err)
	}
	return summary, nil
}
