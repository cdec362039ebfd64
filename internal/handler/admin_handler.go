package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bisolaadigun/tutor-hours-api/internal/models"
	appErrors "github.com/bisolaadigun/tutor-hours-api/pkg/errors"
	"github.com/bisolaadigun/tutor-hours-api/pkg/response"
)

type reviewService interface {
	Approve(ctx context.Context, sessionID, note string, actor *models.JWTClaims) (*models.TutorSession, error)
	Reject(ctx context.Context, sessionID, note string, actor *models.JWTClaims) (*models.TutorSession, error)
}

type reportService interface {
	Stats(ctx context.Context) (*models.SessionStats, error)
	ExportCSV(ctx context.Context, filter models.SessionFilter) ([]byte, error)
	ExportPDF(ctx context.Context) ([]byte, error)
}

type adminSessionLister interface {
	List(ctx context.Context, filter models.SessionFilter, actor *models.JWTClaims) ([]models.TutorSession, error)
}

// AdminHandler exposes the review and reporting endpoints.
type AdminHandler struct {
	reviews  reviewService
	reports  reportService
	sessions adminSessionLister
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(reviews reviewService, reports reportService, sessions adminSessionLister) *AdminHandler {
	return &AdminHandler{reviews: reviews, reports: reports, sessions: sessions}
}

// ReviewRequest carries the optional reviewer note.
type ReviewRequest struct {
	Note string `json:"note"`
}

// ListSessions godoc
// @Summary List sessions across all tutors
// @Tags Admin
// @Produce json
// @Param status query string false "Session status"
// @Param tutor query string false "Tutor name substring"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /admin/sessions [get]
func (h *AdminHandler) ListSessions(c *gin.Context) {
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
	sessions, err := h.sessions.List(c.Request.Context(), filter, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions)
}

// Approve godoc
// @Summary Approve a submitted session
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body ReviewRequest false "Optional note"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/sessions/{id}/approve [post]
func (h *AdminHandler) Approve(c *gin.Context) {
	h.review(c, h.reviews.Approve)
}

// Reject godoc
// @Summary Reject a submitted session
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body ReviewRequest false "Optional note"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/sessions/{id}/reject [post]
func (h *AdminHandler) Reject(c *gin.Context) {
	h.review(c, h.reviews.Reject)
}

func (h *AdminHandler) review(c *gin.Context, decide func(ctx context.Context, sessionID, note string, actor *models.JWTClaims) (*models.TutorSession, error)) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req ReviewRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid review payload"))
			return
		}
	}
	session, err := decide(c.Request.Context(), c.Param("id"), req.Note, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// Stats godoc
// @Summary Aggregate session statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.reports.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

// ExportCSV godoc
// @Summary Export filtered sessions as CSV
// @Tags Admin
// @Produce text/csv
// @Param status query string false "Session status"
// @Param tutor query string false "Tutor name substring"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {string} string "CSV document"
// @Router /admin/export/csv [get]
func (h *AdminHandler) ExportCSV(c *gin.Context) {
	filter, err := sessionFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	data, err := h.reports.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("tutor-sessions-%d.csv", time.Now().UTC().Unix())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "text/csv", data)
}

// ExportPDF godoc
// @Summary Export the statistics summary as PDF
// @Tags Admin
// @Produce application/pdf
// @Success 200 {string} string "PDF document"
// @Router /admin/export/pdf [get]
func (h *AdminHandler) ExportPDF(c *gin.Context) {
	data, err := h.reports.ExportPDF(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("tutor-hours-summary-%d.pdf", time.Now().UTC().Unix())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
