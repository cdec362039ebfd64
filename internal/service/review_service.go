package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/bisolaadigun/tutor-hours-api/internal/models"
	appErrors "github.com/bisolaadigun/tutor-hours-api/pkg/errors"
)

const (
	maxReviewNoteLength = 1000
	defaultRejectNote   = "No reason provided"
)

type reviewSessionStore interface {
	GetByID(ctx context.Context, id string) (*models.TutorSession, error)
	MarkReviewed(ctx context.Context, id string, status models.SessionStatus, note *string, now time.Time) error
}

type reviewLogStore interface {
	Create(ctx context.Context, log *models.AdminReviewLog) error
}

type reviewMetrics interface {
	ObserveTransition(status string)
	IncReviewLogWriteFailure()
}

// ReviewService orchestrates admin decisions: the status transition is the
// authoritative write, the audit log entry is appended afterwards. An audit
// write failure is logged and counted but never undoes the transition.
type ReviewService struct {
	sessions reviewSessionStore
	logs     reviewLogStore
	metrics  reviewMetrics
	stats    StatsInvalidator
	logger   *zap.Logger
}

// ReviewServiceOption configures optional collaborators of the service.
type ReviewServiceOption func(*ReviewService)

// WithReviewStatsInvalidator registers a hook that drops cached statistics
// after every successful review decision.
func WithReviewStatsInvalidator(stats StatsInvalidator) ReviewServiceOption {
	return func(s *ReviewService) { s.stats = stats }
}

// NewReviewService constructs the service. metrics may be nil.
func NewReviewService(sessions reviewSessionStore, logs reviewLogStore, metrics reviewMetrics, logger *zap.Logger, opts ...ReviewServiceOption) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReviewService{sessions: sessions, logs: logs, metrics: metrics, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Approve transitions a submitted session to approved. An empty note is
// stored as null.
func (s *ReviewService) Approve(ctx context.Context, sessionID, note string, actor *models.JWTClaims) (*models.TutorSession, error) {
	return s.review(ctx, sessionID, models.SessionStatusApproved, note, actor)
}

// Reject transitions a submitted session to rejected. An empty note defaults
// to "No reason provided".
func (s *ReviewService) Reject(ctx context.Context, sessionID, note string, actor *models.JWTClaims) (*models.TutorSession, error) {
	return s.review(ctx, sessionID, models.SessionStatusRejected, note, actor)
}

func (s *ReviewService) review(ctx context.Context, sessionID string, status models.SessionStatus, note string, actor *models.JWTClaims) (*models.TutorSession, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}

	note = strings.TrimSpace(note)
	if utf8.RuneCountInString(note) > maxReviewNoteLength {
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "review note must not exceed 1000 characters"),
			[]string{"note must not exceed 1000 characters"})
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.Status != models.SessionStatusSubmitted {
		return nil, appErrors.Clone(appErrors.ErrNotEligible, "session is not submitted for review")
	}

	reviewNote := noteForStatus(status, note)
	now := time.Now().UTC()
	if err := s.sessions.MarkReviewed(ctx, sessionID, status, reviewNote, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost the race against a concurrent reviewer.
			return nil, appErrors.Clone(appErrors.ErrNotEligible, "session is not submitted for review")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session status")
	}

	session.Status = status
	session.ReviewNote = reviewNote
	if session.ReviewedAt == nil {
		session.ReviewedAt = &now
	}
	session.UpdatedAt = now

	if s.metrics != nil {
		s.metrics.ObserveTransition(string(status))
	}
	if s.stats != nil {
		s.stats.InvalidateStats(ctx)
	}

	s.appendLog(ctx, &models.AdminReviewLog{
		AdminID:    actor.UserID,
		AdminName:  actor.FullName,
		AdminEmail: actor.Email,
		SessionID:  session.ID,
		Action:     actionForStatus(status),
		Note:       reviewNote,
		Timestamp:  now,
	})

	return session, nil
}

// appendLog writes the audit entry after the transition committed. Failures
// are surfaced as warnings only, the status change is already authoritative.
func (s *ReviewService) appendLog(ctx context.Context, log *models.AdminReviewLog) {
	if s.logs == nil {
		return
	}
	if err := s.logs.Create(ctx, log); err != nil {
		s.logger.Warn("failed to persist review log",
			zap.String("session_id", log.SessionID),
			zap.String("action", string(log.Action)),
			zap.Error(err))
		if s.metrics != nil {
			s.metrics.IncReviewLogWriteFailure()
		}
	}
}

func noteForStatus(status models.SessionStatus, note string) *string {
	if note == "" {
		if status == models.SessionStatusRejected {
			fallback := defaultRejectNote
			return &fallback
		}
		return nil
	}
	return &note
}

func actionForStatus(status models.SessionStatus) models.ReviewAction {
	if status == models.SessionStatusApproved {
		return models.ReviewActionApproved
	}
	return models.ReviewActionRejected
}
