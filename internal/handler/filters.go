package handler

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bisolaadigun/tutor-hours-api/internal/models"
	appErrors "github.com/bisolaadigun/tutor-hours-api/pkg/errors"
)

const queryDateLayout = "2006-01-02"

// sessionFilterFromQuery parses the shared list/export filter parameters:
// status, tutor (case-insensitive substring), from and to (inclusive dates).
func sessionFilterFromQuery(c *gin.Context) (models.SessionFilter, error) {
	filter := models.SessionFilter{
		TutorName: strings.TrimSpace(c.Query("tutor")),
	}

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := models.SessionStatus(strings.ToLower(raw))
		if !status.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
		}
		filter.Status = status
	}

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		from, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "from must be formatted as YYYY-MM-DD")
		}
		filter.DateFrom = &from
	}

	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		to, err := time.Parse(queryDateLayout, raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "to must be formatted as YYYY-MM-DD")
		}
		filter.DateTo = &to
	}

	return filter, nil
}
