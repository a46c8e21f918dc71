package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

// Sender delivers a single email. The worker injects the HTTP mailer here.
type Sender interface {
	SendEmailVerification(ctx context.Context, toEmail, fullName, token string) error
	SendPasswordReset(ctx context.Context, toEmail, fullName, token string) error
}

type Handler struct {
	sender Sender
	logger *slog.Logger
}

func NewHandler(sender Sender, logger *slog.Logger) *Handler {
	return &Handler{sender: sender, logger: logger}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeEmailVerification, h.HandleEmailVerification)
	mux.HandleFunc(TypeEmailPasswordReset, h.HandlePasswordReset)
}

func (h *Handler) HandleEmailVerification(ctx context.Context, t *asynq.Task) error {
	var payload EmailVerificationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshaling verification payload: %w", err)
	}

	if err := h.sender.SendEmailVerification(ctx, payload.ToEmail, payload.FullName, payload.Token); err != nil {
		h.logger.Warn("verification email delivery failed",
			"to", payload.ToEmail,
			"error", err,
		)
		return err
	}

	h.logger.Info("verification email sent", "to", payload.ToEmail)
	return nil
}

func (h *Handler) HandlePasswordReset(ctx context.Context, t *asynq.Task) error {
	var payload PasswordResetPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshaling reset payload: %w", err)
	}

	if err := h.sender.SendPasswordReset(ctx, payload.ToEmail, payload.FullName, payload.Token); err != nil {
		h.logger.Warn("password reset email delivery failed",
			"to", payload.ToEmail,
			"error", err,
		)
		return err
	}

	h.logger.Info("password reset email sent", "to", payload.ToEmail)
	return nil
}
