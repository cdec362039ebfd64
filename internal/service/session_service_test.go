package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bisolaadigun/tutor-hours-api/internal/models"
	appErrors "github.com/bisolaadigun/tutor-hours-api/pkg/errors"
)

type sessionStoreStub struct {
	sessions map[string]*models.TutorSession
	filter   models.SessionFilter
}

func newSessionStoreStub() *sessionStoreStub {
	return &sessionStoreStub{sessions: make(map[string]*models.TutorSession)}
}

func (s *sessionStoreStub) Create(ctx context.Context, session *models.TutorSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	copied := *session
	s.sessions[session.ID] = &copied
	return nil
}

func (s *sessionStoreStub) GetByID(ctx context.Context, id string) (*models.TutorSession, error) {
	if session, ok := s.sessions[id]; ok {
		copied := *session
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *sessionStoreStub) List(ctx context.Context, filter models.SessionFilter) ([]models.TutorSession, error) {
	s.filter = filter
	result := make([]models.TutorSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		if filter.OwnerID != "" && session.UserID != filter.OwnerID {
			continue
		}
		result = append(result, *session)
	}
	return result, nil
}

func (s *sessionStoreStub) UpdateDraft(ctx context.Context, id, ownerID string, fields models.SessionFields) error {
	session, ok := s.sessions[id]
	if !ok || session.UserID != ownerID || session.Status != models.SessionStatusDraft {
		return sql.ErrNoRows
	}
	session.Date = fields.Date
	session.Location = fields.Location
	session.Description = fields.Description
	session.Hours = fields.Hours
	session.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *sessionStoreStub) DeleteDraft(ctx context.Context, id, ownerID string) error {
	session, ok := s.sessions[id]
	if !ok || session.UserID != ownerID || session.Status != models.SessionStatusDraft {
		return sql.ErrNoRows
	}
	delete(s.sessions, id)
	return nil
}

func (s *sessionStoreStub) MarkSubmitted(ctx context.Context, id, ownerID string, now time.Time) error {
	session, ok := s.sessions[id]
	if !ok || session.UserID != ownerID || session.Status != models.SessionStatusDraft {
		return sql.ErrNoRows
	}
	session.Status = models.SessionStatusSubmitted
	if session.SubmittedAt == nil {
		submittedAt := now
		session.SubmittedAt = &submittedAt
	}
	session.UpdatedAt = now
	return nil
}

type reviewLogReaderStub struct {
	logs map[string][]models.AdminReviewLog
}

func (r *reviewLogReaderStub) ListBySession(ctx context.Context, sessionID string) ([]models.AdminReviewLog, error) {
	if r.logs == nil {
		return nil, nil
	}
	return r.logs[sessionID], nil
}

type notifierStub struct {
	notified []string
	err      error
}

func (n *notifierStub) NotifySubmitted(ctx context.Context, session *models.TutorSession) error {
	n.notified = append(n.notified, session.ID)
	return n.err
}

type invalidatorStub struct {
	calls int
}

func (i *invalidatorStub) InvalidateStats(ctx context.Context) {
	i.calls++
}

func tutorClaims() *models.JWTClaims {
	return &models.JWTClaims{
		UserID:   "tutor-1",
		Role:     models.RoleTutor,
		Email:    "jane@example.com",
		FullName: "Jane Doe",
	}
}

func validRequest() SessionRequest {
	return SessionRequest{
		Date:        time.Now().UTC().Format("2006-01-02"),
		Location:    "Main Library, Room 4",
		Description: "Algebra homework review and practice problems",
		Hours:       1.5,
	}
}

func TestSessionServiceCreateDraft(t *testing.T) {
	repo := newSessionStoreStub()
	svc := NewSessionService(repo, &reviewLogReaderStub{}, nil, nil)

	session, err := svc.CreateDraft(context.Background(), validRequest(), tutorClaims())
	require.NoError(t, err)
	require.Equal(t, models.SessionStatusDraft, session.Status)
	require.Equal(t, "tutor-1", session.UserID)
	require.Equal(t, "Jane Doe", session.TutorName)
	require.Equal(t, "jane@example.com", session.TutorEmail)
	require.Nil(t, session.SubmittedAt)
	require.Nil(t, session.ReviewedAt)
}

func TestSessionServiceCreateDraftValidation(t *testing.T) {
	repo := newSessionStoreStub()
	svc := NewSessionService(repo, &reviewLogReaderStub{}, nil, nil)

	cases := []struct {
		name   string
		mutate func(*SessionRequest)
	}{
		{"missing date", func(r *SessionRequest) { r.Date = "" }},
		{"malformed date", func(r *SessionRequest) { r.Date = "2026/01/05" }},
		{"future date", func(r *SessionRequest) {
			r.Date = time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")
		}},
		{"short location", func(r *SessionRequest) { r.Location = "A" }},
		{"short description", func(r *SessionRequest) { r.Description = "too short" }},
		{"zero hours", func(r *SessionRequest) { r.Hours = 0 }},
		{"hours below minimum", func(r *SessionRequest) { r.Hours = 0.3 }},
		{"hours above maximum", func(r *SessionRequest) { r.Hours = 24.5 }},
		{"hours not half increment", func(r *SessionRequest) { r.Hours = 1.3 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.CreateDraft(context.Background(), req, tutorClaims())
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			require.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
			require.NotEmpty(t, appErr.Details)
			require.Empty(t, repo.sessions)
		})
	}
}

func TestSessionServiceCreateDraftCollectsAllFailures(t *testing.T) {
	svc := NewSessionService(newSessionStoreStub(), &reviewLogReaderStub{}, nil, nil)

	_, err := svc.CreateDraft(context.Background(), SessionRequest{}, tutorClaims())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Len(t, appErr.Details, 4)
}

func TestSessionServiceLengthBoundsCountRunes(t *testing.T) {
	svc := NewSessionService(newSessionStoreStub(), &reviewLogReaderStub{}, nil, nil)

	req := validRequest()
	req.Location = strings.Repeat("図", 150)
	req.Description = strings.Repeat("館", 500)
	_, err := svc.CreateDraft(context.Background(), req, tutorClaims())
	require.NoError(t, err)

	req = validRequest()
	req.Location = strings.Repeat("図", 201)
	_, err = svc.CreateDraft(context.Background(), req, tutorClaims())
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceHourBoundaries(t *testing.T) {
	svc := NewSessionService(newSessionStoreStub(), &reviewLogReaderStub{}, nil, nil)

	for _, hours := range []float64{0.5, 1.0, 12.5, 24} {
		req := validRequest()
		req.Hours = hours
		_, err := svc.CreateDraft(context.Background(), req, tutorClaims())
		require.NoError(t, err, "hours=%v", hours)
	}
}

func TestSessionServiceEditDraft(t *testing.T) {
	repo := newSessionStoreStub()
	svc := NewSessionService(repo, &reviewLogReaderStub{}, nil, nil)

	session, err := svc.CreateDraft(context.Background(), validRequest(), tutorClaims())
	require.NoError(t, err)

	req := validRequest()
	req.Location = "Science Building, Room 12"
	req.Hours = 2
	updated, err := svc.EditDraft(context.Background(), session.ID, req, tutorClaims())
	require.NoError(t, err)
	require.Equal(t, "Science Building, Room 12", updated.Location)
	require.Equal(t, 2.0, updated.Hours)
	require.Equal(t, models.SessionStatusDraft, updated.Status)
}

func TestSessionServiceEditSubmittedRejected(t *testing.T) {
	repo := newSessionStoreStub()
	svc := NewSessionService(repo, &reviewLogReaderStub{}, nil, nil)

	session, err := svc.CreateDraft(context.Background(), validRequest(), tutorClaims())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), session.ID, tutorClaims())
	require.NoError(t, err)

	_, err = svc.EditDraft(context.Background(), session.ID, validRequest(), tutorClaims())
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotEligible.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceEditRejectsInvalidPayloadBeforeWrite(t *testing.T) {
	repo := newSessionStoreStub()
	svc := NewSessionService(repo, &reviewLogReaderStub{}, nil, nil)

	session, err := svc.CreateDraft(context.Background(), validRequest(), tutorClaims())
	require.NoError(t, err)
	originalLocation := session.Location

	req := validRequest()
	req.Location = "Updated Location"
	req.Hours = 1.3
	_, err = svc.EditDraft(context.Background(), session.ID, req, tutorClaims())
	require.Error(t, err)

	stored := repo.sessions[session.ID]
	require.Equal(t, originalLocation, stored.Location)
}

func TestSessionServiceDeleteDraft(t *testing.T) {
	repo := newSessionStoreStub()
	svc := NewSessionService(repo, &reviewLogReaderStub{}, nil, nil)

	session, err := svc.CreateDraft(context.Background(), validRequest(), tutorClaims())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDraft(context.Background(), session.ID, tutorClaims()))
	require.Empty(t, repo.sessions)
}

func TestSessionServiceDeleteForeignDraft(t *testing.T) {
	repo := newSessionStoreStub()
	svc := NewSessionService(repo, &reviewLogReaderStub{}, nil, nil)

	session, err := svc.CreateDraft(context.Background(), validRequest(), tutorClaims())
	require.NoError(t, err)

	other := &models.JWTClaims{UserID: "tutor-2", Role: models.RoleTutor}
	err = svc.DeleteDraft(context.Background(), session.ID, other)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotEligible.Code, appErrors.FromError(err).Code)
	require.Len(t, repo.sessions, 1)
}

func TestSessionServiceSubmit(t *testing.T) {
	repo := newSessionStoreStub()
	notifier := &notifierStub{}
	svc := NewSessionService(repo, &reviewLogReaderStub{}, notifier, nil)

	session, err := svc.CreateDraft(context.Background(), validRequest(), tutorClaims())
	require.NoError(t, err)

	submitted, err := svc.Submit(context.Background(), session.ID, tutorClaims())
	require.NoError(t, err)
	require.Equal(t, models.SessionStatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)
	require.Equal(t, []string{session.ID}, notifier.notified)
}

func TestSessionServiceSubmitTwice(t *testing.T) {
	repo := newSessionStoreStub()
	svc := NewSessionService(repo, &reviewLogReaderStub{}, nil, nil)

	session, err := svc.CreateDraft(context.Background(), validRequest(), tutorClaims())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), session.ID, tutorClaims())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), session.ID, tutorClaims())
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotEligible.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceSubmitUnknownSession(t *testing.T) {
	svc := NewSessionService(newSessionStoreStub(), &reviewLogReaderStub{}, nil, nil)

	_, err := svc.Submit(context.Background(), "missing", tutorClaims())
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceSubmitSurvivesNotifierFailure(t *testing.T) {
	repo := newSessionStoreStub()
	notifier := &notifierStub{err: errors.New("smtp down")}
	svc := NewSessionService(repo, &reviewLogReaderStub{}, notifier, nil)

	session, err := svc.CreateDraft(context.Background(), validRequest(), tutorClaims())
	require.NoError(t, err)

	submitted, err := svc.Submit(context.Background(), session.ID, tutorClaims())
	require.NoError(t, err)
	require.Equal(t, models.SessionStatusSubmitted, submitted.Status)
}

func TestSessionServiceWritesInvalidateStats(t *testing.T) {
	repo := newSessionStoreStub()
	stats := &invalidatorStub{}
	svc := NewSessionService(repo, &reviewLogReaderStub{}, nil, nil,
		WithSessionStatsInvalidator(stats))

	session, err := svc.CreateDraft(context.Background(), validRequest(), tutorClaims())
	require.NoError(t, err)
	require.Equal(t, 1, stats.calls)

	_, err = svc.EditDraft(context.Background(), session.ID, validRequest(), tutorClaims())
	require.NoError(t, err)
	require.Equal(t, 2, stats.calls)

	_, err = svc.Submit(context.Background(), session.ID, tutorClaims())
	require.NoError(t, err)
	require.Equal(t, 3, stats.calls)

	// A rejected write must not touch the cache.
	_, err = svc.EditDraft(context.Background(), session.ID, validRequest(), tutorClaims())
	require.Error(t, err)
	require.Equal(t, 3, stats.calls)
}

func TestSessionServiceDeleteInvalidatesStats(t *testing.T) {
	repo := newSessionStoreStub()
	stats := &invalidatorStub{}
	svc := NewSessionService(repo, &reviewLogReaderStub{}, nil, nil,
		WithSessionStatsInvalidator(stats))

	session, err := svc.CreateDraft(context.Background(), validRequest(), tutorClaims())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDraft(context.Background(), session.ID, tutorClaims()))
	require.Equal(t, 2, stats.calls)
}

func TestSessionServiceListPinsTutorToOwnRecords(t *testing.T) {
	repo := newSessionStoreStub()
	svc := NewSessionService(repo, &reviewLogReaderStub{}, nil, nil)

	_, err := svc.CreateDraft(context.Background(), validRequest(), tutorClaims())
	require.NoError(t, err)

	_, err = svc.List(context.Background(), models.SessionFilter{OwnerID: "tutor-2"}, tutorClaims())
	require.NoError(t, err)
	require.Equal(t, "tutor-1", repo.filter.OwnerID)
}

func TestSessionServiceListAdminKeepsFilter(t *testing.T) {
	repo := newSessionStoreStub()
	svc := NewSessionService(repo, &reviewLogReaderStub{}, nil, nil)

	admin := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	_, err := svc.List(context.Background(), models.SessionFilter{Status: models.SessionStatusSubmitted}, admin)
	require.NoError(t, err)
	require.Empty(t, repo.filter.OwnerID)
	require.Equal(t, models.SessionStatusSubmitted, repo.filter.Status)
}

func TestSessionServiceGetForbiddenForOtherTutor(t *testing.T) {
	repo := newSessionStoreStub()
	svc := NewSessionService(repo, &reviewLogReaderStub{}, nil, nil)

	session, err := svc.CreateDraft(context.Background(), validRequest(), tutorClaims())
	require.NoError(t, err)

	other := &models.JWTClaims{UserID: "tutor-2", Role: models.RoleTutor}
	_, err = svc.Get(context.Background(), session.ID, other)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceGetIncludesReviewHistory(t *testing.T) {
	repo := newSessionStoreStub()
	logs := &reviewLogReaderStub{logs: map[string][]models.AdminReviewLog{}}
	svc := NewSessionService(repo, logs, nil, nil)

	session, err := svc.CreateDraft(context.Background(), validRequest(), tutorClaims())
	require.NoError(t, err)
	logs.logs[session.ID] = []models.AdminReviewLog{
		{ID: "log-1", SessionID: session.ID, Action: models.ReviewActionRejected},
	}

	detail, err := svc.Get(context.Background(), session.ID, tutorClaims())
	require.NoError(t, err)
	require.Len(t, detail.ReviewLogs, 1)
	require.Equal(t, models.ReviewActionRejected, detail.ReviewLogs[0].Action)
}

func TestSessionServiceNilActor(t *testing.T) {
	svc := NewSessionService(newSessionStoreStub(), &reviewLogReaderStub{}, nil, nil)

	_, err := svc.CreateDraft(context.Background(), validRequest(), nil)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	_, err = svc.List(context.Background(), models.SessionFilter{}, nil)
	require.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
