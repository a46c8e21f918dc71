package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/hugh/alumni-hub/internal/auth"
	"github.com/hugh/alumni-hub/internal/database/models"
	"github.com/hugh/alumni-hub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*auth.Service, *gorm.DB, *testutil.RecordingMailer) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	jwtService := testutil.CreateTestJWTService(t)
	mailer := testutil.NewRecordingMailer()
	svc := auth.NewService(db, jwtService, mailer, testutil.TestLogger())

	return svc, db, mailer
}

// waitForMail waits for the fire-and-forget dispatch goroutine.
func waitForMail(t *testing.T, mailer *testutil.RecordingMailer, want int) []testutil.SentMail {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sent := mailer.Sent(); len(sent) >= want {
			return sent
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d dispatched mails, got %d", want, len(mailer.Sent()))
	return nil
}

func TestService_Register(t *testing.T) {
	svc, db, mailer := newTestService(t)
	ctx := context.Background()

	t.Run("creates pending unverified account", func(t *testing.T) {
		resp, err := svc.Register(ctx, auth.RegisterInput{
			Email:    "grad@example.com",
			Password: "Password123",
			FullName: "Grad Example",
		})
		require.NoError(t, err)
		require.NotEmpty(t, resp.Token)

		assert.Equal(t, models.RolePending, resp.User.Role)
		assert.False(t, resp.User.EmailVerified)
		assert.True(t, resp.User.IsActive)
		require.NotNil(t, resp.User.EmailVerificationToken)
		require.NotNil(t, resp.User.EmailVerificationExpiry)
		assert.True(t, resp.User.EmailVerificationExpiry.After(time.Now().Add(23*time.Hour)))

		sent := waitForMail(t, mailer, 1)
		assert.Equal(t, "verification", sent[0].Kind)
		assert.Equal(t, "grad@example.com", sent[0].To)
		assert.Equal(t, *resp.User.EmailVerificationToken, sent[0].Token)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, auth.RegisterInput{
			Email:    "grad@example.com",
			Password: "Password123",
			FullName: "Second Grad",
		})
		assert.ErrorIs(t, err, auth.ErrUserExists)

		var count int64
		require.NoError(t, db.Model(&models.User{}).Where("email = ?", "grad@example.com").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestService_Login(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, auth.RegisterInput{
		Email:    "login@example.com",
		Password: "Password123",
		FullName: "Login User",
	})
	require.NoError(t, err)

	t.Run("unverified account cannot log in", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{Email: "login@example.com", Password: "Password123"})
		assert.ErrorIs(t, err, auth.ErrEmailNotVerified)
	})

	t.Run("verification unlocks login", func(t *testing.T) {
		sent := waitForMail(t, mailer, 1)
		require.NoError(t, svc.VerifyEmail(ctx, sent[0].Token))

		got, err := svc.Login(ctx, auth.LoginInput{Email: "login@example.com", Password: "Password123"})
		require.NoError(t, err)
		assert.NotEmpty(t, got.Token)
		assert.Equal(t, resp.User.ID, got.User.ID)
		assert.True(t, got.User.EmailVerified)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{Email: "login@example.com", Password: "WrongPassword1"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email reports the same error as wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{Email: "nobody@example.com", Password: "Password123"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestService_Login_InactiveAccount(t *testing.T) {
	svc, db, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterInput{
		Email:    "inactive@example.com",
		Password: "Password123",
		FullName: "Inactive User",
	})
	require.NoError(t, err)

	sent := waitForMail(t, mailer, 1)
	require.NoError(t, svc.VerifyEmail(ctx, sent[0].Token))

	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "inactive@example.com").
		Update("is_active", false).Error)

	_, err = svc.Login(ctx, auth.LoginInput{Email: "inactive@example.com", Password: "Password123"})
	assert.ErrorIs(t, err, auth.ErrInactiveUser)
}

func TestService_VerifyEmail(t *testing.T) {
	svc, db, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterInput{
		Email:    "verify@example.com",
		Password: "Password123",
		FullName: "Verify User",
	})
	require.NoError(t, err)
	token := waitForMail(t, mailer, 1)[0].Token

	t.Run("unknown token", func(t *testing.T) {
		err := svc.VerifyEmail(ctx, "deadbeefdeadbeefdeadbeefdeadbeef")
		assert.ErrorIs(t, err, auth.ErrTokenNotFound)
	})

	t.Run("consuming clears the token", func(t *testing.T) {
		require.NoError(t, svc.VerifyEmail(ctx, token))

		var user models.User
		require.NoError(t, db.Where("email = ?", "verify@example.com").First(&user).Error)
		assert.True(t, user.EmailVerified)
		assert.Nil(t, user.EmailVerificationToken)
		assert.Nil(t, user.EmailVerificationExpiry)
	})

	t.Run("consumed token is gone", func(t *testing.T) {
		err := svc.VerifyEmail(ctx, token)
		assert.ErrorIs(t, err, auth.ErrTokenNotFound)
	})
}

func TestService_VerifyEmail_Expired(t *testing.T) {
	svc, db, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterInput{
		Email:    "stale@example.com",
		Password: "Password123",
		FullName: "Stale User",
	})
	require.NoError(t, err)
	token := waitForMail(t, mailer, 1)[0].Token

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&models.User{}).
		Where("email = ?", "stale@example.com").
		Update("email_verification_expiry", expired).Error)

	assert.ErrorIs(t, svc.VerifyEmail(ctx, token), auth.ErrTokenExpired)
}

func TestService_ResendVerification(t *testing.T) {
	svc, db, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterInput{
		Email:    "resend@example.com",
		Password: "Password123",
		FullName: "Resend User",
	})
	require.NoError(t, err)
	first := waitForMail(t, mailer, 1)[0].Token

	t.Run("reissue invalidates the previous token", func(t *testing.T) {
		require.NoError(t, svc.ResendVerification(ctx, "resend@example.com"))
		sent := waitForMail(t, mailer, 2)
		second := sent[1].Token
		assert.NotEqual(t, first, second)

		assert.ErrorIs(t, svc.VerifyEmail(ctx, first), auth.ErrTokenNotFound)
		require.NoError(t, svc.VerifyEmail(ctx, second))

		var user models.User
		require.NoError(t, db.Where("email = ?", "resend@example.com").First(&user).Error)
		assert.True(t, user.EmailVerified)
	})

	t.Run("unknown email succeeds without sending", func(t *testing.T) {
		before := len(mailer.Sent())
		require.NoError(t, svc.ResendVerification(ctx, "ghost@example.com"))
		time.Sleep(50 * time.Millisecond)
		assert.Len(t, mailer.Sent(), before)
	})

	t.Run("already verified succeeds without sending", func(t *testing.T) {
		before := len(mailer.Sent())
		require.NoError(t, svc.ResendVerification(ctx, "resend@example.com"))
		time.Sleep(50 * time.Millisecond)
		assert.Len(t, mailer.Sent(), before)
	})
}

func TestService_PasswordReset(t *testing.T) {
	svc, db, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterInput{
		Email:    "reset@example.com",
		Password: "OldPassword1",
		FullName: "Reset User",
	})
	require.NoError(t, err)

	verifyToken := waitForMail(t, mailer, 1)[0].Token
	require.NoError(t, svc.VerifyEmail(ctx, verifyToken))

	t.Run("unknown email reports success", func(t *testing.T) {
		require.NoError(t, svc.RequestPasswordReset(ctx, "ghost@example.com"))
	})

	t.Run("reset round trip", func(t *testing.T) {
		require.NoError(t, svc.RequestPasswordReset(ctx, "reset@example.com"))
		sent := waitForMail(t, mailer, 2)
		resetToken := sent[1].Token
		assert.Equal(t, "reset", sent[1].Kind)

		require.NoError(t, svc.ResetPassword(ctx, resetToken, "NewPassword1"))

		// Old password no longer works, new one does
		_, err := svc.Login(ctx, auth.LoginInput{Email: "reset@example.com", Password: "OldPassword1"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

		_, err = svc.Login(ctx, auth.LoginInput{Email: "reset@example.com", Password: "NewPassword1"})
		require.NoError(t, err)

		// Token is single use
		assert.ErrorIs(t, svc.ResetPassword(ctx, resetToken, "AnotherPass1"), auth.ErrTokenNotFound)

		var user models.User
		require.NoError(t, db.Where("email = ?", "reset@example.com").First(&user).Error)
		assert.Nil(t, user.PasswordResetToken)
		assert.Nil(t, user.PasswordResetExpiry)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		require.NoError(t, svc.RequestPasswordReset(ctx, "reset@example.com"))
		sent := waitForMail(t, mailer, 3)
		resetToken := sent[2].Token

		expired := time.Now().Add(-time.Minute)
		require.NoError(t, db.Model(&models.User{}).
			Where("email = ?", "reset@example.com").
			Update("password_reset_expiry", expired).Error)

		assert.ErrorIs(t, svc.ResetPassword(ctx, resetToken, "AnotherPass1"), auth.ErrTokenExpired)
	})
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := auth.HashPassword("Password123")
	require.NoError(t, err)
	assert.NotEqual(t, "Password123", hash)

	assert.True(t, auth.CheckPassword("Password123", hash))
	assert.False(t, auth.CheckPassword("password123", hash))
}
