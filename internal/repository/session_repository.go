package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bisolaadigun/tutor-hours-api/internal/models"
)

const sessionColumns = `id, user_id, tutor_name, tutor_email, date, location, description, hours,
       status, submitted_at, reviewed_at, review_note, created_at, updated_at`

// SessionRepository persists tutoring session records. Every state-changing
// statement carries the expected current status (and owner, for tutor
// operations) in its WHERE clause, so concurrent transitions on the same row
// race safely in the database: at most one statement matches.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session row. New rows always start as drafts.
func (r *SessionRepository) Create(ctx context.Context, session *models.TutorSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.Status == "" {
		session.Status = models.SessionStatusDraft
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	const query = `INSERT INTO tutor_sessions
	(id, user_id, tutor_name, tutor_email, date, location, description, hours, status, submitted_at, reviewed_at, review_note, created_at, updated_at)
	VALUES (:id, :user_id, :tutor_name, :tutor_email, :date, :location, :description, :hours, :status, :submitted_at, :reviewed_at, :review_note, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetByID fetches a session by identifier.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.TutorSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM tutor_sessions WHERE id = $1 LIMIT 1`, sessionColumns)
	var session models.TutorSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// List returns sessions matching the filter, newest session date first with
// insertion order breaking ties.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.TutorSession, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 5)
	builder.WriteString(fmt.Sprintf("SELECT %s FROM tutor_sessions", sessionColumns))

	conditions := make([]string, 0, 5)
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.TutorName != "" {
		args = append(args, "%"+filter.TutorName+"%")
		conditions = append(conditions, fmt.Sprintf("tutor_name ILIKE $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY date DESC, created_at ASC")

	var sessions []models.TutorSession
	if err := r.db.SelectContext(ctx, &sessions, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// UpdateDraft rewrites the editable fields of an owner's draft. Returns
// sql.ErrNoRows when the row is missing, owned by someone else, or no longer
// a draft.
func (r *SessionRepository) UpdateDraft(ctx context.Context, id, ownerID string, fields models.SessionFields) error {
	const query = `UPDATE tutor_sessions
	SET date = $1, location = $2, description = $3, hours = $4, updated_at = $5
	WHERE id = $6 AND user_id = $7 AND status = 'draft'`
	result, err := r.db.ExecContext(ctx, query,
		fields.Date, fields.Location, fields.Description, fields.Hours, time.Now().UTC(), id, ownerID)
	if err != nil {
		return fmt.Errorf("update draft: %w", err)
	}
	return requireRowAffected(result, "update draft")
}

// DeleteDraft removes an owner's draft. Non-draft rows are never deleted.
func (r *SessionRepository) DeleteDraft(ctx context.Context, id, ownerID string) error {
	const query = `DELETE FROM tutor_sessions WHERE id = $1 AND user_id = $2 AND status = 'draft'`
	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return requireRowAffected(result, "delete draft")
}

// MarkSubmitted transitions an owner's draft to submitted. submitted_at is
// only written the first time, COALESCE keeps earlier values intact.
func (r *SessionRepository) MarkSubmitted(ctx context.Context, id, ownerID string, now time.Time) error {
	const query = `UPDATE tutor_sessions
	SET status = 'submitted', submitted_at = COALESCE(submitted_at, $1), updated_at = $1
	WHERE id = $2 AND user_id = $3 AND status = 'draft'`
	result, err := r.db.ExecContext(ctx, query, now, id, ownerID)
	if err != nil {
		return fmt.Errorf("mark submitted: %w", err)
	}
	return requireRowAffected(result, "mark submitted")
}

// MarkReviewed transitions a submitted session into a terminal state. The
// status guard makes concurrent reviews safe: the losing statement matches
// zero rows and surfaces sql.ErrNoRows. reviewed_at is write-once.
func (r *SessionRepository) MarkReviewed(ctx context.Context, id string, status models.SessionStatus, note *string, now time.Time) error {
	const query = `UPDATE tutor_sessions
	SET status = $1, review_note = $2, reviewed_at = COALESCE(reviewed_at, $3), updated_at = $3
	WHERE id = $4 AND status = 'submitted'`
	result, err := r.db.ExecContext(ctx, query, status, note, now, id)
	if err != nil {
		return fmt.Errorf("mark reviewed: %w", err)
	}
	return requireRowAffected(result, "mark reviewed")
}

// Stats aggregates the whole collection: per-status counts, total hours and
// per-tutor totals sorted by hours descending. An empty table yields zeros.
func (r *SessionRepository) Stats(ctx context.Context) (*models.SessionStats, error) {
	const countsQuery = `SELECT COUNT(*) AS total,
       COUNT(*) FILTER (WHERE status = 'draft') AS draft,
       COUNT(*) FILTER (WHERE status = 'submitted') AS submitted,
       COUNT(*) FILTER (WHERE status = 'approved') AS approved,
       COUNT(*) FILTER (WHERE status = 'rejected') AS rejected,
       COALESCE(SUM(hours), 0) AS total_hours
	FROM tutor_sessions`
	var stats models.SessionStats
	row := r.db.QueryRowxContext(ctx, countsQuery)
	if err := row.Scan(&stats.Total, &stats.Draft, &stats.Submitted, &stats.Approved, &stats.Rejected, &stats.TotalHours); err != nil {
		return nil, fmt.Errorf("session stats counts: %w", err)
	}

	const byTutorQuery = `SELECT tutor_email, MIN(tutor_name) AS tutor_name,
       COALESCE(SUM(hours), 0) AS total_hours, COUNT(*) AS session_count
	FROM tutor_sessions
	GROUP BY tutor_email
	ORDER BY total_hours DESC`
	byTutor := []models.TutorHours{}
	if err := r.db.SelectContext(ctx, &byTutor, byTutorQuery); err != nil {
		return nil, fmt.Errorf("session stats by tutor: %w", err)
	}
	stats.HoursByTutor = byTutor
	return &stats, nil
}

func requireRowAffected(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
