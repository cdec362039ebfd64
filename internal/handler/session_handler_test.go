package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/bisolaadigun/tutor-hours-api/internal/middleware"
	"github.com/bisolaadigun/tutor-hours-api/internal/models"
	"github.com/bisolaadigun/tutor-hours-api/internal/service"
	appErrors "github.com/bisolaadigun/tutor-hours-api/pkg/errors"
)

type sessionServiceMock struct {
	session   *models.TutorSession
	detail    *service.SessionDetail
	list      []models.TutorSession
	err       error
	filter    models.SessionFilter
	deletedID string
}

func (m *sessionServiceMock) CreateDraft(ctx context.Context, req service.SessionRequest, actor *models.JWTClaims) (*models.TutorSession, error) {
	return m.session, m.err
}

func (m *sessionServiceMock) EditDraft(ctx context.Context, id string, req service.SessionRequest, actor *models.JWTClaims) (*models.TutorSession, error) {
	return m.session, m.err
}

func (m *sessionServiceMock) DeleteDraft(ctx context.Context, id string, actor *models.JWTClaims) error {
	m.deletedID = id
	return m.err
}

func (m *sessionServiceMock) Submit(ctx context.Context, id string, actor *models.JWTClaims) (*models.TutorSession, error) {
	return m.session, m.err
}

func (m *sessionServiceMock) List(ctx context.Context, filter models.SessionFilter, actor *models.JWTClaims) ([]models.TutorSession, error) {
	m.filter = filter
	return m.list, m.err
}

func (m *sessionServiceMock) Get(ctx context.Context, id string, actor *models.JWTClaims) (*service.SessionDetail, error) {
	return m.detail, m.err
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func setTutor(c *gin.Context) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{
		UserID: "tutor-1", Role: models.RoleTutor, Email: "jane@example.com", FullName: "Jane Doe",
	})
}

func TestSessionHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &sessionServiceMock{session: &models.TutorSession{ID: "sess-1", Status: models.SessionStatusDraft}}
	handler := NewSessionHandler(mockSvc)

	payload, _ := json.Marshal(service.SessionRequest{
		Date: "2026-03-09", Location: "Main Library", Description: "Algebra review session", Hours: 1.5,
	})
	c, w := newGinContext(http.MethodPost, "/sessions", payload)
	setTutor(c)

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.TutorSession `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "sess-1", envelope.Data.ID)
}

func TestSessionHandlerCreateWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSessionHandler(&sessionServiceMock{})

	c, w := newGinContext(http.MethodPost, "/sessions", []byte(`{}`))
	handler.Create(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionHandlerCreateMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSessionHandler(&sessionServiceMock{})

	c, w := newGinContext(http.MethodPost, "/sessions", []byte(`{not json`))
	setTutor(c)
	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandlerUpdateNotEligible(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &sessionServiceMock{err: appErrors.ErrNotEligible}
	handler := NewSessionHandler(mockSvc)

	payload, _ := json.Marshal(service.SessionRequest{
		Date: "2026-03-09", Location: "Main Library", Description: "Algebra review session", Hours: 1.5,
	})
	c, w := newGinContext(http.MethodPut, "/sessions/sess-1", payload)
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}
	setTutor(c)

	handler.Update(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &sessionServiceMock{}
	handler := NewSessionHandler(mockSvc)

	c, w := newGinContext(http.MethodDelete, "/sessions/sess-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}
	setTutor(c)

	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "sess-1", mockSvc.deletedID)
}

func TestSessionHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &sessionServiceMock{session: &models.TutorSession{ID: "sess-1", Status: models.SessionStatusSubmitted}}
	handler := NewSessionHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/sessions/sess-1/submit", nil)
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}
	setTutor(c)

	handler.Submit(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSessionHandlerListParsesFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &sessionServiceMock{}
	handler := NewSessionHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/sessions?status=approved&from=2026-03-01&to=2026-03-31", nil)
	setTutor(c)

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, models.SessionStatusApproved, mockSvc.filter.Status)
	require.NotNil(t, mockSvc.filter.DateFrom)
	require.NotNil(t, mockSvc.filter.DateTo)
}

func TestSessionHandlerListUnknownStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSessionHandler(&sessionServiceMock{})

	c, w := newGinContext(http.MethodGet, "/sessions?status=pending", nil)
	setTutor(c)

	handler.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &sessionServiceMock{detail: &service.SessionDetail{
		Session:    &models.TutorSession{ID: "sess-1"},
		ReviewLogs: []models.AdminReviewLog{{ID: "log-1", Action: models.ReviewActionApproved}},
	}}
	handler := NewSessionHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/sessions/sess-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}
	setTutor(c)

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data service.SessionDetail `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.ReviewLogs, 1)
}
