package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bisolaadigun/tutor-hours-api/internal/models"
	"github.com/bisolaadigun/tutor-hours-api/internal/service"
	appErrors "github.com/bisolaadigun/tutor-hours-api/pkg/errors"
	"github.com/bisolaadigun/tutor-hours-api/pkg/response"
)

type sessionService interface {
	CreateDraft(ctx context.Context, req service.SessionRequest, actor *models.JWTClaims) (*models.TutorSession, error)
	EditDraft(ctx context.Context, id string, req service.SessionRequest, actor *models.JWTClaims) (*models.TutorSession, error)
	DeleteDraft(ctx context.Context, id string, actor *models.JWTClaims) error
	Submit(ctx context.Context, id string, actor *models.JWTClaims) (*models.TutorSession, error)
	List(ctx context.Context, filter models.SessionFilter, actor *models.JWTClaims) ([]models.TutorSession, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*service.SessionDetail, error)
}

// SessionHandler exposes the tutor-facing session lifecycle endpoints.
type SessionHandler struct {
	service sessionService
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(svc sessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// Create godoc
// @Summary Log a new tutoring session as a draft
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.SessionRequest true "Session fields"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid session payload"))
		return
	}
	session, err := h.service.CreateDraft(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Update godoc
// @Summary Edit a draft session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.SessionRequest true "Session fields"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id} [put]
func (h *SessionHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid session payload"))
		return
	}
	session, err := h.service.EditDraft(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// Delete godoc
// @Summary Delete a draft session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 204 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.DeleteDraft(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Submit godoc
// @Summary Submit a draft session for review
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id}/submit [post]
func (h *SessionHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	session, err := h.service.Submit(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// List godoc
// @Summary List own sessions
// @Tags Sessions
// @Produce json
// @Param status query string false "Session status"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter, err := sessionFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	sessions, err := h.service.List(c.Request.Context(), filter, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions)
}

// Get godoc
// @Summary Get one session with its review history
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}
