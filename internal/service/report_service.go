package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bisolaadigun/tutor-hours-api/internal/models"
	appErrors "github.com/bisolaadigun/tutor-hours-api/pkg/errors"
	"github.com/bisolaadigun/tutor-hours-api/pkg/export"
)

const statsCacheKey = "reports:session_stats"

// Column order of the CSV export, kept stable for downstream consumers.
var csvHeaders = []string{
	"Tutor Name", "Email", "Date", "Location", "Description",
	"Hours", "Status", "Submitted At", "Reviewed At", "Review Note",
}

type reportSessionStore interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.TutorSession, error)
	Stats(ctx context.Context) (*models.SessionStats, error)
}

// StatsCache is the subset of cache behavior the report service needs.
type StatsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ReportService computes aggregate statistics and renders CSV/PDF exports.
// It never mutates session state.
type ReportService struct {
	sessions reportSessionStore
	cache    StatsCache
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewReportService constructs the service. cache may be nil.
func NewReportService(sessions reportSessionStore, cache StatsCache, cacheTTL time.Duration, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		sessions: sessions,
		cache:    cache,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Stats returns the aggregate view of the session collection. Results are
// cached briefly; cache failures degrade to a direct computation.
func (s *ReportService) Stats(ctx context.Context) (*models.SessionStats, error) {
	if s.cache != nil {
		var cached models.SessionStats
		err := s.cache.Get(ctx, statsCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
	}

	stats, err := s.sessions.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute statistics")
	}
	if stats.HoursByTutor == nil {
		stats.HoursByTutor = []models.TutorHours{}
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, statsCacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// InvalidateStats drops the cached aggregate snapshot so the next Stats call
// recomputes. Called after session writes; failures are logged only, the
// cache entry then just ages out through its TTL.
func (s *ReportService) InvalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

// ExportCSV renders the filtered session list as a CSV document, ordered the
// same way as listing.
func (s *ReportService) ExportCSV(ctx context.Context, filter models.SessionFilter) ([]byte, error) {
	sessions, err := s.sessions.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions for export")
	}

	rows := make([][]string, 0, len(sessions))
	for i := range sessions {
		rows = append(rows, csvRow(&sessions[i]))
	}

	data, err := s.csv.Render(export.Dataset{Headers: csvHeaders, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return data, nil
}

// ExportPDF renders the statistics summary as a PDF document.
func (s *ReportService) ExportPDF(ctx context.Context) ([]byte, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}

	sections := []export.SummarySection{
		{
			Title: "Sessions by status",
			Items: [][2]string{
				{"Total", fmt.Sprintf("%d", stats.Total)},
				{"Draft", fmt.Sprintf("%d", stats.Draft)},
				{"Submitted", fmt.Sprintf("%d", stats.Submitted)},
				{"Approved", fmt.Sprintf("%d", stats.Approved)},
				{"Rejected", fmt.Sprintf("%d", stats.Rejected)},
				{"Total hours", formatHours(stats.TotalHours)},
			},
		},
	}

	table := export.Dataset{Headers: []string{"Tutor", "Email", "Hours", "Sessions"}}
	for _, tutor := range stats.HoursByTutor {
		table.Rows = append(table.Rows, []string{
			tutor.TutorName,
			tutor.TutorEmail,
			formatHours(tutor.TotalHours),
			fmt.Sprintf("%d", tutor.SessionCount),
		})
	}

	data, err := s.pdf.Render("Tutor Hours Summary", sections, table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return data, nil
}

func csvRow(session *models.TutorSession) []string {
	note := ""
	if session.ReviewNote != nil {
		note = *session.ReviewNote
	}
	return []string{
		session.TutorName,
		session.TutorEmail,
		session.Date.Format(sessionDateLayout),
		session.Location,
		session.Description,
		formatHours(session.Hours),
		string(session.Status),
		formatTimestamp(session.SubmittedAt),
		formatTimestamp(session.ReviewedAt),
		note,
	}
}

func formatTimestamp(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

func formatHours(hours float64) string {
	return fmt.Sprintf("%g", hours)
}
