package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bisolaadigun/tutor-hours-api/internal/models"
)

// ReviewLogRepository persists the append-only admin review trail. There are
// no update or delete statements here on purpose.
type ReviewLogRepository struct {
	db *sqlx.DB
}

// NewReviewLogRepository constructs the repository.
func NewReviewLogRepository(db *sqlx.DB) *ReviewLogRepository {
	return &ReviewLogRepository{db: db}
}

// Create appends one review decision.
func (r *ReviewLogRepository) Create(ctx context.Context, log *models.AdminReviewLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}
	const query = `INSERT INTO admin_review_logs
	(id, admin_id, admin_name, admin_email, session_id, action, note, timestamp)
	VALUES (:id, :admin_id, :admin_name, :admin_email, :session_id, :action, :note, :timestamp)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create review log: %w", err)
	}
	return nil
}

// ListBySession returns the review history for one session, latest first.
func (r *ReviewLogRepository) ListBySession(ctx context.Context, sessionID string) ([]models.AdminReviewLog, error) {
	const query = `SELECT id, admin_id, admin_name, admin_email, session_id, action, note, timestamp
	FROM admin_review_logs WHERE session_id = $1 ORDER BY timestamp DESC`
	var logs []models.AdminReviewLog
	if err := r.db.SelectContext(ctx, &logs, query, sessionID); err != nil {
		return nil, fmt.Errorf("list review logs: %w", err)
	}
	return logs, nil
}
