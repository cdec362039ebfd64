package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/bisolaadigun/tutor-hours-api/internal/models"
	appErrors "github.com/bisolaadigun/tutor-hours-api/pkg/errors"
)

const sessionDateLayout = "2006-01-02"

type sessionStore interface {
	Create(ctx context.Context, session *models.TutorSession) error
	GetByID(ctx context.Context, id string) (*models.TutorSession, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.TutorSession, error)
	UpdateDraft(ctx context.Context, id, ownerID string, fields models.SessionFields) error
	DeleteDraft(ctx context.Context, id, ownerID string) error
	MarkSubmitted(ctx context.Context, id, ownerID string, now time.Time) error
}

type reviewLogReader interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.AdminReviewLog, error)
}

// SubmitNotifier is invoked once after a draft is successfully submitted.
// Failures must not fail or roll back the transition.
type SubmitNotifier interface {
	NotifySubmitted(ctx context.Context, session *models.TutorSession) error
}

// StatsInvalidator drops cached aggregate statistics after a session write.
type StatsInvalidator interface {
	InvalidateStats(ctx context.Context)
}

// SessionService owns the tutor side of the session lifecycle: draft
// creation, edits, deletes and submission. Only drafts are mutable and only
// by their owner; the repository enforces both in the same guarded statement.
type SessionService struct {
	repo     sessionStore
	logs     reviewLogReader
	notifier SubmitNotifier
	stats    StatsInvalidator
	logger   *zap.Logger
}

// SessionServiceOption configures optional collaborators of the service.
type SessionServiceOption func(*SessionService)

// WithSessionStatsInvalidator registers a hook that drops cached statistics
// after every successful session write.
func WithSessionStatsInvalidator(stats StatsInvalidator) SessionServiceOption {
	return func(s *SessionService) { s.stats = stats }
}

// NewSessionService constructs the service. notifier may be nil.
func NewSessionService(repo sessionStore, logs reviewLogReader, notifier SubmitNotifier, logger *zap.Logger, opts ...SessionServiceOption) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SessionService{repo: repo, logs: logs, notifier: notifier, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionService) invalidateStats(ctx context.Context) {
	if s.stats != nil {
		s.stats.InvalidateStats(ctx)
	}
}

// SessionRequest carries the owner-editable fields of a session.
type SessionRequest struct {
	Date        string  `json:"date"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
}

// SessionDetail pairs a session with its review history.
type SessionDetail struct {
	Session    *models.TutorSession    `json:"session"`
	ReviewLogs []models.AdminReviewLog `json:"review_logs"`
}

// CreateDraft validates the payload and stores a new draft owned by the
// actor, snapshotting the actor's name and email onto the record.
func (s *SessionService) CreateDraft(ctx context.Context, req SessionRequest, actor *models.JWTClaims) (*models.TutorSession, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	fields, err := validateSessionRequest(req)
	if err != nil {
		return nil, err
	}
	session := &models.TutorSession{
		UserID:      actor.UserID,
		TutorName:   actor.FullName,
		TutorEmail:  actor.Email,
		Date:        fields.Date,
		Location:    fields.Location,
		Description: fields.Description,
		Hours:       fields.Hours,
		Status:      models.SessionStatusDraft,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	s.invalidateStats(ctx)
	return session, nil
}

// EditDraft rewrites the editable fields of the actor's draft. No field is
// written unless every check passes.
func (s *SessionService) EditDraft(ctx context.Context, id string, req SessionRequest, actor *models.JWTClaims) (*models.TutorSession, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	fields, err := validateSessionRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateDraft(ctx, id, actor.UserID, *fields); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotEligible, "session not found or cannot be edited")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
	}
	s.invalidateStats(ctx)
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload session")
	}
	return session, nil
}

// DeleteDraft removes the actor's draft.
func (s *SessionService) DeleteDraft(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if err := s.repo.DeleteDraft(ctx, id, actor.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotEligible, "session not found or cannot be deleted")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	s.invalidateStats(ctx)
	return nil
}

// Submit transitions the actor's draft to submitted and fires the admin
// notification. A notification failure is logged and swallowed, the
// transition stands.
func (s *SessionService) Submit(ctx context.Context, id string, actor *models.JWTClaims) (*models.TutorSession, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	now := time.Now().UTC()
	if err := s.repo.MarkSubmitted(ctx, id, actor.UserID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := s.repo.GetByID(ctx, id); errors.Is(getErr, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
			}
			return nil, appErrors.Clone(appErrors.ErrNotEligible, "session not found or already submitted")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit session")
	}
	s.invalidateStats(ctx)
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload session")
	}
	if s.notifier != nil {
		if err := s.notifier.NotifySubmitted(ctx, session); err != nil {
			s.logger.Warn("submit notification failed",
				zap.String("session_id", session.ID), zap.Error(err))
		}
	}
	return session, nil
}

// List returns sessions for the actor. Tutors are pinned to their own
// records; admins may pass any filter.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter, actor *models.JWTClaims) ([]models.TutorSession, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		filter.OwnerID = actor.UserID
	}
	sessions, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}

// Get returns one session with its review history. Tutors can only see
// their own records.
func (s *SessionService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*SessionDetail, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if actor.Role != models.RoleAdmin && session.UserID != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	detail := &SessionDetail{Session: session, ReviewLogs: []models.AdminReviewLog{}}
	if s.logs != nil {
		logs, err := s.logs.ListBySession(ctx, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review history")
		}
		if logs != nil {
			detail.ReviewLogs = logs
		}
	}
	return detail, nil
}

// validateSessionRequest applies all domain checks, collecting every failure
// instead of stopping at the first one.
func validateSessionRequest(req SessionRequest) (*models.SessionFields, error) {
	var failures []string

	var date time.Time
	if strings.TrimSpace(req.Date) == "" {
		failures = append(failures, "date is required")
	} else {
		parsed, err := time.Parse(sessionDateLayout, strings.TrimSpace(req.Date))
		if err != nil {
			failures = append(failures, "date must be formatted as YYYY-MM-DD")
		} else {
			date = parsed
			tomorrow := time.Now().UTC().AddDate(0, 0, 1)
			if parsed.After(tomorrow) {
				failures = append(failures, "date cannot be in the future")
			}
		}
	}

	location := strings.TrimSpace(req.Location)
	switch {
	case location == "":
		failures = append(failures, "location is required")
	case utf8.RuneCountInString(location) < 2:
		failures = append(failures, "location must be at least 2 characters")
	case utf8.RuneCountInString(location) > 200:
		failures = append(failures, "location must not exceed 200 characters")
	}

	description := strings.TrimSpace(req.Description)
	switch {
	case description == "":
		failures = append(failures, "description is required")
	case utf8.RuneCountInString(description) < 10:
		failures = append(failures, "description must be at least 10 characters")
	case utf8.RuneCountInString(description) > 2000:
		failures = append(failures, "description must not exceed 2000 characters")
	}

	switch {
	case req.Hours == 0:
		failures = append(failures, "hours is required")
	case req.Hours < 0.5:
		failures = append(failures, "hours must be at least 0.5")
	case req.Hours > 24:
		failures = append(failures, "hours cannot exceed 24")
	case !isHalfHourIncrement(req.Hours):
		failures = append(failures, "hours must be in increments of 0.5")
	}

	if len(failures) > 0 {
		err := appErrors.WithDetails(appErrors.ErrValidation, failures)
		err.Message = fmt.Sprintf("validation failed: %s", strings.Join(failures, "; "))
		return nil, err
	}

	return &models.SessionFields{
		Date:        date,
		Location:    location,
		Description: description,
		Hours:       req.Hours,
	}, nil
}

func isHalfHourIncrement(hours float64) bool {
	doubled := hours * 2
	return math.Abs(doubled-math.Round(doubled)) < 1e-9
}
