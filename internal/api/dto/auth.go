package dto

import "github.com/hugh/alumni-hub/internal/api/validation"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Email format is invalid"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if ok, msg := validation.IsValidPassword(r.Password); !ok {
		errors["password"] = msg
	}
	if r.FullName == "" {
		errors["full_name"] = "Full name is required"
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

func (r VerifyEmailRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Token == "" {
		errors["token"] = "Token is required"
	} else if !validation.IsValidOpaqueToken(r.Token) {
		errors["token"] = "Token format is invalid"
	}

	return errors
}

type EmailRequest struct {
	Email string `json:"email"`
}

func (r EmailRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Email format is invalid"
	}

	return errors
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (r ResetPasswordRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Token == "" {
		errors["token"] = "Token is required"
	} else if !validation.IsValidOpaqueToken(r.Token) {
		errors["token"] = "Token format is invalid"
	}
	if r.NewPassword == "" {
		errors["new_password"] = "New password is required"
	} else if ok, msg := validation.IsValidPassword(r.NewPassword); !ok {
		errors["new_password"] = msg
	}

	return errors
}

type CompleteProfileRequest struct {
	StudentID      string `json:"student_id"`
	GraduationYear int    `json:"graduation_year"`
	FacultyID      string `json:"faculty_id"`
	MajorID        string `json:"major_id"`
}

func (r CompleteProfileRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.StudentID == "" {
		errors["student_id"] = "Student ID is required"
	}
	if !validation.IsValidGraduationYear(r.GraduationYear) {
		errors["graduation_year"] = "Graduation year is out of range"
	}
	if !validation.IsValidUUID(r.FacultyID) {
		errors["faculty_id"] = "Faculty ID must be a valid UUID"
	}
	if !validation.IsValidUUID(r.MajorID) {
		errors["major_id"] = "Major ID must be a valid UUID"
	}

	return errors
}

type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type UserDTO struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"email_verified"`
	IsActive      bool   `json:"is_active"`
}
