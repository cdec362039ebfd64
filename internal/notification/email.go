package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bisolaadigun/tutor-hours-api/internal/models"
	"github.com/bisolaadigun/tutor-hours-api/pkg/config"
)

// EmailNotifier sends submission notifications to the admin inbox through a
// transactional email HTTP API. Delivery is best-effort.
type EmailNotifier struct {
	cfg    config.EmailConfig
	client *http.Client
	logger *zap.Logger
}

// NewEmailNotifier constructs the notifier. Returns nil when email delivery
// is disabled or not configured; callers treat a nil notifier as a no-op.
func NewEmailNotifier(cfg config.EmailConfig, logger *zap.Logger) *EmailNotifier {
	if !cfg.Enabled || cfg.APIKey == "" || cfg.AdminEmail == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type emailPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	TextContent string              `json:"textContent"`
}

// NotifySubmitted emails the admin that a session was submitted for review.
func (n *EmailNotifier) NotifySubmitted(ctx context.Context, session *models.TutorSession) error {
	body := fmt.Sprintf(
		"A new tutor session has been submitted for review.\n\n"+
			"Tutor: %s (%s)\nDate: %s\nLocation: %s\nHours: %g\n\n%s\n",
		session.TutorName, session.TutorEmail,
		session.Date.Format("2006-01-02"),
		session.Location, session.Hours,
		session.Description,
	)

	payload := emailPayload{
		Sender:      map[string]string{"name": n.cfg.SenderName, "email": n.cfg.SenderEmail},
		To:          []map[string]string{{"email": n.cfg.AdminEmail}},
		Subject:     "New Tutor Session Submitted",
		TextContent: body,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.APIURL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", n.cfg.APIKey)

	start := time.Now()
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email api returned %d: %s", resp.StatusCode, string(detail))
	}

	n.logger.Debug("submission notification sent",
		zap.String("session_id", session.ID),
		zap.Duration("latency", time.Since(start)))
	return nil
}
