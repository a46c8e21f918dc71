package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/alumni-hub/internal/tasks"
	"github.com/hugh/alumni-hub/pkg/config"
)

// Mailer dispatches transactional email. Callers treat delivery as
// best-effort: failures are logged, never returned to the end user.
type Mailer interface {
	SendEmailVerification(ctx context.Context, toEmail, fullName, token string) error
	SendPasswordReset(ctx context.Context, toEmail, fullName, token string) error
}

const resendEndpoint = "https://api.resend.com/emails"

// HTTPMailer delivers email through the Resend API. With no API key
// configured it logs and drops the message, which keeps development
// environments working without credentials.
type HTTPMailer struct {
	cfg    *config.EmailConfig
	client *http.Client
	logger *slog.Logger
}

func NewHTTPMailer(cfg *config.EmailConfig, logger *slog.Logger) *HTTPMailer {
	return &HTTPMailer{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

func (m *HTTPMailer) SendEmailVerification(ctx context.Context, toEmail, fullName, token string) error {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", m.cfg.AppURL, token)
	body := fmt.Sprintf(
		"<h2>Hello %s,</h2>"+
			"<p>Thanks for joining the alumni network.</p>"+
			"<p>Please confirm your email address by following this link:</p>"+
			"<p><a href=%q>Verify email</a></p>"+
			"<p>The link expires in 24 hours. If you did not create this account, ignore this message.</p>",
		fullName, verifyURL,
	)
	return m.send(ctx, toEmail, "Verify your alumni account", body)
}

func (m *HTTPMailer) SendPasswordReset(ctx context.Context, toEmail, fullName, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", m.cfg.AppURL, token)
	body := fmt.Sprintf(
		"<h2>Hello %s,</h2>"+
			"<p>We received a request to reset your password.</p>"+
			"<p><a href=%q>Reset password</a></p>"+
			"<p>The link expires in 1 hour. If you did not request this, ignore this message.</p>",
		fullName, resetURL,
	)
	return m.send(ctx, toEmail, "Reset your alumni account password", body)
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (m *HTTPMailer) send(ctx context.Context, toEmail, subject, html string) error {
	if m.cfg.ResendAPIKey == "" {
		m.logger.Warn("email delivery not configured, dropping message", "to", toEmail, "subject", subject)
		return nil
	}

	payload, err := json.Marshal(resendRequest{
		From:    fmt.Sprintf("%s <%s>", m.cfg.FromName, m.cfg.FromEmail),
		To:      []string{toEmail},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("marshaling email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.ResendAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("email provider returned %d: %s", resp.StatusCode, detail)
	}

	return nil
}

// QueueMailer enqueues email jobs for the worker process instead of
// delivering inline.
type QueueMailer struct {
	client *asynq.Client
}

func NewQueueMailer(client *asynq.Client) *QueueMailer {
	return &QueueMailer{client: client}
}

func (m *QueueMailer) SendEmailVerification(ctx context.Context, toEmail, fullName, token string) error {
	task, err := tasks.NewEmailVerificationTask(tasks.EmailVerificationPayload{
		ToEmail:  toEmail,
		FullName: fullName,
		Token:    token,
	})
	if err != nil {
		return err
	}
	_, err = m.client.EnqueueContext(ctx, task, asynq.Queue("critical"))
	return err
}

func (m *QueueMailer) SendPasswordReset(ctx context.Context, toEmail, fullName, token string) error {
	task, err := tasks.NewPasswordResetTask(tasks.PasswordResetPayload{
		ToEmail:  toEmail,
		FullName: fullName,
		Token:    token,
	})
	if err != nil {
		return err
	}
	_, err = m.client.EnqueueContext(ctx, task, asynq.Queue("critical"))
	return err
}

// Compile-time interface satisfaction checks
var (
	_ Mailer       = (*HTTPMailer)(nil)
	_ Mailer       = (*QueueMailer)(nil)
	_ tasks.Sender = (*HTTPMailer)(nil)
)
