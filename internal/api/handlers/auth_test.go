package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/alumni-hub/internal/alumni"
	"github.com/hugh/alumni-hub/internal/api/dto"
	"github.com/hugh/alumni-hub/internal/api/handlers"
	"github.com/hugh/alumni-hub/internal/api/middleware"
	"github.com/hugh/alumni-hub/internal/auth"
	"github.com/hugh/alumni-hub/internal/database/models"
	"github.com/hugh/alumni-hub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)

	authService := auth.NewService(tc.DB, tc.JWTService, tc.Mailer, testutil.TestLogger())
	alumniService := alumni.NewService(tc.DB, testutil.TestLogger())
	handler := handlers.NewAuthHandler(authService, alumniService)

	r := chi.NewRouter()
	r.Post("/api/v1/auth/register", handler.Register)
	r.Post("/api/v1/auth/login", handler.Login)
	r.Post("/api/v1/auth/logout", handler.Logout)
	r.Post("/api/v1/auth/verify-email", handler.VerifyEmail)
	r.Post("/api/v1/auth/resend-verification", handler.ResendVerification)
	r.Post("/api/v1/auth/forgot-password", handler.ForgotPassword)
	r.Post("/api/v1/auth/reset-password", handler.ResetPassword)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tc.JWTService))
		r.Get("/api/v1/me", handler.Me)
		r.Post("/api/v1/auth/complete-profile", handler.CompleteProfile)
	})

	return r, tc
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

func TestAuthHandler_Register(t *testing.T) {
	router, tc := setupAuthTestRouter(t)
	defer tc.Cleanup()

	t.Run("successful registration", func(t *testing.T) {
		body := map[string]string{
			"email":     "newgrad@example.com",
			"password":  "Password123",
			"full_name": "New Grad",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp dto.AuthResponse
		err := json.Unmarshal(rr.Body.Bytes(), &resp)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "newgrad@example.com", resp.User.Email)
		assert.Equal(t, models.RolePending, resp.User.Role)
		assert.False(t, resp.User.EmailVerified)
	})

	t.Run("duplicate email", func(t *testing.T) {
		body := map[string]string{
			"email":     "newgrad@example.com",
			"password":  "Password123",
			"full_name": "Second Grad",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("weak password", func(t *testing.T) {
		body := map[string]string{
			"email":     "weak@example.com",
			"password":  "password",
			"full_name": "Weak Password",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Contains(t, resp.Details, "password")
	})

	t.Run("missing full name", func(t *testing.T) {
		body := map[string]string{
			"email":    "noname@example.com",
			"password": "Password123",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid email format", func(t *testing.T) {
		body := map[string]string{
			"email":     "not-an-email",
			"password":  "Password123",
			"full_name": "Bad Email",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandler_VerifyAndLogin(t *testing.T) {
	router, tc := setupAuthTestRouter(t)
	defer tc.Cleanup()

	registerBody := map[string]string{
		"email":     "flow@example.com",
		"password":  "Password123",
		"full_name": "Flow User",
	}
	req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/register", registerBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	loginBody := map[string]string{
		"email":    "flow@example.com",
		"password": "Password123",
	}

	t.Run("login blocked before verification", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", loginBody)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("verify email", func(t *testing.T) {
		token := waitForMail(t, tc.Mailer, 1)[0].Token

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/verify-email", map[string]string{"token": token})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("login succeeds after verification", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", loginBody)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp dto.AuthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)

		// Cookie is set for browser clients
		cookies := rr.Result().Cookies()
		var tokenCookie *http.Cookie
		for _, c := range cookies {
			if c.Name == "token" {
				tokenCookie = c
				break
			}
		}
		require.NotNil(t, tokenCookie)
		assert.Equal(t, resp.Token, tokenCookie.Value)
		assert.True(t, tokenCookie.HttpOnly)
	})

	t.Run("wrong password", func(t *testing.T) {
		body := map[string]string{
			"email":    "flow@example.com",
			"password": "WrongPassword1",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("unknown account gets the same response as wrong password", func(t *testing.T) {
		body := map[string]string{
			"email":    "ghost@example.com",
			"password": "Password123",
		}

		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAuthHandler_VerifyEmail_BadToken(t *testing.T) {
	router, tc := setupAuthTestRouter(t)
	defer tc.Cleanup()

	t.Run("unknown token", func(t *testing.T) {
		body := map[string]string{"token": "deadbeefdeadbeefdeadbeefdeadbeef"}
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/verify-email", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("malformed token", func(t *testing.T) {
		body := map[string]string{"token": "not hex!"}
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/verify-email", body)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandler_ForgotPassword_Enumeration(t *testing.T) {
	router, tc := setupAuthTestRouter(t)
	defer tc.Cleanup()

	known := map[string]string{"email": tc.User.Email}
	unknown := map[string]string{"email": "ghost@example.com"}

	reqKnown := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/forgot-password", known)
	rrKnown := httptest.NewRecorder()
	router.ServeHTTP(rrKnown, reqKnown)

	reqUnknown := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/forgot-password", unknown)
	rrUnknown := httptest.NewRecorder()
	router.ServeHTTP(rrUnknown, reqUnknown)

	// Identical status and body either way
	assert.Equal(t, http.StatusOK, rrKnown.Code)
	assert.Equal(t, http.StatusOK, rrUnknown.Code)
	assert.Equal(t, rrKnown.Body.String(), rrUnknown.Body.String())

	// Only the real account got a mail
	sent := waitForMail(t, tc.Mailer, 1)
	assert.Len(t, sent, 1)
	assert.Equal(t, tc.User.Email, sent[0].To)
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	router, tc := setupAuthTestRouter(t)
	defer tc.Cleanup()

	body := map[string]string{"email": tc.User.Email}
	req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/forgot-password", body)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	token := waitForMail(t, tc.Mailer, 1)[0].Token

	t.Run("weak replacement rejected", func(t *testing.T) {
		resetBody := map[string]string{"token": token, "new_password": "weak"}
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/reset-password", resetBody)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("successful reset", func(t *testing.T) {
		resetBody := map[string]string{"token": token, "new_password": "BrandNew123"}
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/reset-password", resetBody)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		loginBody := map[string]string{"email": tc.User.Email, "password": "BrandNew123"}
		req = testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/login", loginBody)
		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("token cannot be replayed", func(t *testing.T) {
		resetBody := map[string]string{"token": token, "new_password": "AnotherNew123"}
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/v1/auth/reset-password", resetBody)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	router, tc := setupAuthTestRouter(t)
	defer tc.Cleanup()

	t.Run("authenticated", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/v1/me", nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp dto.UserDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, tc.User.Email, resp.Email)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "GET", "/api/v1/me", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAuthHandler_CompleteProfile(t *testing.T) {
	router, tc := setupAuthTestRouter(t)
	defer tc.Cleanup()

	faculty, major := testutil.CreateTestFaculty(t, tc.DB)

	t.Run("successful completion", func(t *testing.T) {
		body := map[string]interface{}{
			"student_id":      "ST2022001",
			"graduation_year": 2022,
			"faculty_id":      faculty.ID.String(),
			"major_id":        major.ID.String(),
		}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/auth/complete-profile", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	t.Run("second completion rejected", func(t *testing.T) {
		body := map[string]interface{}{
			"student_id":      "ST2022002",
			"graduation_year": 2022,
			"faculty_id":      faculty.ID.String(),
			"major_id":        major.ID.String(),
		}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/auth/complete-profile", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("implausible graduation year", func(t *testing.T) {
		body := map[string]interface{}{
			"student_id":      "ST2022003",
			"graduation_year": 1900,
			"faculty_id":      faculty.ID.String(),
			"major_id":        major.ID.String(),
		}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/v1/auth/complete-profile", body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
