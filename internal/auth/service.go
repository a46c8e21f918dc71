package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/alumni-hub/internal/database/models"
	"github.com/hugh/alumni-hub/internal/mailer"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrEmailNotVerified   = errors.New("email is not verified")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenExpired       = errors.New("token expired")
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = time.Hour
	mailDispatchTimeout  = 30 * time.Second
)

type Service struct {
	db     *gorm.DB
	jwt    *JWTService
	mailer mailer.Mailer
	logger *slog.Logger
}

func NewService(db *gorm.DB, jwt *JWTService, m mailer.Mailer, logger *slog.Logger) *Service {
	return &Service{db: db, jwt: jwt, mailer: m, logger: logger}
}

type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	verifyToken, err := generateOpaqueToken()
	if err != nil {
		return nil, err
	}
	expiry := time.Now().Add(verificationTokenTTL)

	user := models.User{
		Email:                   input.Email,
		PasswordHash:            hash,
		FullName:                input.FullName,
		Role:                    models.RolePending,
		IsActive:                true,
		EmailVerificationToken:  &verifyToken,
		EmailVerificationExpiry: &expiry,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	s.dispatchVerificationEmail(user.Email, user.FullName, verifyToken)

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: &user}, nil
}

// Login verifies a password even when the account does not exist, so response
// timing cannot be used to probe for registered emails.
func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("AlumniProfile").
		Where("email = ?", input.Email).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			CheckPassword(input.Password, dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: &user}, nil
}

// VerifyEmail consumes a verification token. An account that is already
// verified succeeds idempotently; an expired token must be reissued.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	var user models.User
	err := s.db.WithContext(ctx).Where("email_verification_token = ?", token).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenNotFound
		}
		return err
	}

	if user.EmailVerified {
		return nil
	}

	if user.EmailVerificationExpiry == nil || !time.Now().Before(*user.EmailVerificationExpiry) {
		return ErrTokenExpired
	}

	return s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"email_verified":            true,
		"email_verification_token":  nil,
		"email_verification_expiry": nil,
	}).Error
}

// ResendVerification reissues the verification token. It reports success even
// for unknown or already-verified emails to avoid account enumeration.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if user.EmailVerified {
		return nil
	}

	token, err := generateOpaqueToken()
	if err != nil {
		return err
	}
	expiry := time.Now().Add(verificationTokenTTL)

	err = s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"email_verification_token":  token,
		"email_verification_expiry": expiry,
	}).Error
	if err != nil {
		return err
	}

	s.dispatchVerificationEmail(user.Email, user.FullName, token)
	return nil
}

// RequestPasswordReset always reports success, whether or not the email
// matches an account.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	token, err := generateOpaqueToken()
	if err != nil {
		return err
	}
	expiry := time.Now().Add(resetTokenTTL)

	err = s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"password_reset_token":  token,
		"password_reset_expiry": expiry,
	}).Error
	if err != nil {
		return err
	}

	s.dispatchResetEmail(user.Email, user.FullName, token)
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	var user models.User
	err := s.db.WithContext(ctx).Where("password_reset_token = ?", token).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenNotFound
		}
		return err
	}

	if user.PasswordResetExpiry == nil || !time.Now().Before(*user.PasswordResetExpiry) {
		return ErrTokenExpired
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"password_hash":         hash,
		"password_reset_token":  nil,
		"password_reset_expiry": nil,
	}).Error
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("AlumniProfile").
		Preload("AlumniProfile.Faculty").
		Preload("AlumniProfile.Major").
		First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Email delivery is fire-and-forget: the request that triggered it has
// already been persisted, and a delivery failure only gets logged.
func (s *Service) dispatchVerificationEmail(email, name, token string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailDispatchTimeout)
		defer cancel()
		if err := s.mailer.SendEmailVerification(ctx, email, name, token); err != nil {
			s.logger.Warn("failed to dispatch verification email", "to", email, "error", err)
		}
	}()
}

func (s *Service) dispatchResetEmail(email, name, token string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailDispatchTimeout)
		defer cancel()
		if err := s.mailer.SendPasswordReset(ctx, email, name, token); err != nil {
			s.logger.Warn("failed to dispatch password reset email", "to", email, "error", err)
		}
	}()
}
