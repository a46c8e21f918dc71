package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeEmailVerification  = "email:verification"
	TypeEmailPasswordReset = "email:password_reset"
)

// EmailVerificationPayload carries one verification email job.
type EmailVerificationPayload struct {
	ToEmail  string `json:"to_email"`
	FullName string `json:"full_name"`
	Token    string `json:"token"`
}

func NewEmailVerificationTask(payload EmailVerificationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailVerification, data), nil
}

// PasswordResetPayload carries one password reset email job.
type PasswordResetPayload struct {
	ToEmail  string `json:"to_email"`
	FullName string `json:"full_name"`
	Token    string `json:"token"`
}

func NewPasswordResetTask(payload PasswordResetPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailPasswordReset, data), nil
}
