package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/hugh/alumni-hub/internal/alumni"
	"github.com/hugh/alumni-hub/internal/api/dto"
	"github.com/hugh/alumni-hub/internal/api/middleware"
	"github.com/hugh/alumni-hub/internal/auth"
)

type AuthHandler struct {
	authService   *auth.Service
	alumniService *alumni.Service
}

func NewAuthHandler(authService *auth.Service, alumniService *alumni.Service) *AuthHandler {
	return &AuthHandler{authService: authService, alumniService: alumniService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	resp, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})

	if err != nil {
		switch err {
		case auth.ErrUserExists:
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "An account with this email already exists"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Registration failed"})
		}
		return
	}

	setTokenCookie(w, resp.Token)

	writeJSON(w, http.StatusCreated, dto.AuthResponse{
		Token: resp.Token,
		User:  toUserDTO(resp.User),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})

	if err != nil {
		switch err {
		case auth.ErrInvalidCredentials:
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid email or password"})
		case auth.ErrInactiveUser:
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Account is deactivated"})
		case auth.ErrEmailNotVerified:
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Email is not verified"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Login failed"})
		}
		return
	}

	setTokenCookie(w, resp.Token)

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Token: resp.Token,
		User:  toUserDTO(resp.User),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Logged out"})
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	if err := h.authService.VerifyEmail(r.Context(), req.Token); err != nil {
		switch err {
		case auth.ErrTokenNotFound:
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid verification token"})
		case auth.ErrTokenExpired:
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Verification token has expired. Please request a new one"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Verification failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Email verified successfully"})
}

// ResendVerification responds with the same message whether or not the email
// matches an account.
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	if err := h.authService.ResendVerification(r.Context(), req.Email); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Could not process request"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{
		Message: "If the email is registered and unverified, a new verification link has been sent",
	})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Could not process request"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{
		Message: "If the email is registered, a password reset link has been sent",
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		switch err {
		case auth.ErrTokenNotFound:
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid reset token"})
		case auth.ErrTokenExpired:
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Reset token has expired. Please request a new one"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Password reset failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Password has been reset"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		return
	}

	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// CompleteProfile fills in the alumni details for a pending account and
// promotes it to the alumni role.
func (h *AuthHandler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.CompleteProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	userID := middleware.GetUserID(r.Context())
	facultyID, _ := uuid.Parse(req.FacultyID)
	majorID, _ := uuid.Parse(req.MajorID)

	profile, err := h.alumniService.CompleteProfile(r.Context(), userID, alumni.CompleteProfileInput{
		StudentID:      req.StudentID,
		GraduationYear: req.GraduationYear,
		FacultyID:      facultyID,
		MajorID:        majorID,
	})

	if err != nil {
		switch err {
		case alumni.ErrProfileExists:
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Profile has already been completed"})
		case alumni.ErrStudentIDTaken:
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Student ID is already in use"})
		case alumni.ErrFacultyNotFound:
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Faculty not found"})
		case alumni.ErrMajorNotFound:
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Major not found in the selected faculty"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Could not complete profile"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, profile)
}

func setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   7 * 86400,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
