package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/bisolaadigun/tutor-hours-api/internal/models"
)

func TestReviewLogRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewReviewLogRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO admin_review_logs")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	note := "approved after checking hours"
	log := &models.AdminReviewLog{
		AdminID:    "admin-1",
		AdminName:  "Pat Admin",
		AdminEmail: "admin@example.com",
		SessionID:  "sess-1",
		Action:     models.ReviewActionApproved,
		Note:       &note,
	}
	require.NoError(t, repo.Create(context.Background(), log))
	require.NotEmpty(t, log.ID)
	require.False(t, log.Timestamp.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewLogRepositoryListBySession(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()

	repo := NewReviewLogRepository(db)
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "admin_id", "admin_name", "admin_email", "session_id", "action", "note", "timestamp"}).
		AddRow("log-2", "admin-1", "Pat Admin", "admin@example.com", "sess-1", "approved", nil, now).
		AddRow("log-1", "admin-1", "Pat Admin", "admin@example.com", "sess-1", "rejected", "No reason provided", now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("FROM admin_review_logs WHERE session_id = $1 ORDER BY timestamp DESC")).
		WithArgs("sess-1").
		WillReturnRows(rows)

	logs, err := repo.ListBySession(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, models.ReviewActionApproved, logs[0].Action)
	require.Nil(t, logs[0].Note)
	require.NotNil(t, logs[1].Note)
	require.NoError(t, mock.ExpectationsWereMet())
}
