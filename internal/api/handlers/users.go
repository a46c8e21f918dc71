package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/hugh/alumni-hub/internal/api/dto"
	"github.com/hugh/alumni-hub/internal/api/middleware"
	"github.com/hugh/alumni-hub/internal/database/models"
	"gorm.io/gorm"
)

// UserHandler covers admin account management.
type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	params := dto.PaginationParams{Page: page, PerPage: perPage}
	params.Normalize()

	filtered := func() *gorm.DB {
		query := h.db.WithContext(r.Context()).Model(&models.User{})
		if role := q.Get("role"); role != "" {
			query = query.Where("role = ?", role)
		}
		if keyword := q.Get("q"); keyword != "" {
			pattern := "%" + keyword + "%"
			query = query.Where("LOWER(email) LIKE LOWER(?) OR LOWER(full_name) LIKE LOWER(?)", pattern, pattern)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list users"})
		return
	}

	var users []models.User
	err := filtered().
		Order("created_at DESC").
		Offset((params.Page - 1) * params.PerPage).
		Limit(params.PerPage).
		Find(&users).Error
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list users"})
		return
	}

	responses := make([]dto.UserDTO, len(users))
	for i := range users {
		responses[i] = toUserDTO(&users[i])
	}

	writeJSON(w, http.StatusOK, dto.NewPaginatedResponse(responses, total, params.Page, params.PerPage))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var user models.User
	err := h.db.WithContext(r.Context()).
		Preload("AlumniProfile").
		Preload("AlumniProfile.Faculty").
		Preload("AlumniProfile.Major").
		First(&user, "id = ?", id).Error
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	switch req.Role {
	case models.RolePending, models.RoleAlumni, models.RoleAdmin:
	default:
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Unknown role"})
		return
	}

	// Admins cannot demote themselves.
	if id == middleware.GetUserID(r.Context()) && req.Role != models.RoleAdmin {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "You cannot change your own role"})
		return
	}

	result := h.db.WithContext(r.Context()).Model(&models.User{}).
		Where("id = ?", id).
		Update("role", req.Role)
	if result.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update role"})
		return
	}
	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Role updated"})
}

func (h *UserHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if id == middleware.GetUserID(r.Context()) && !req.IsActive {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "You cannot deactivate your own account"})
		return
	}

	result := h.db.WithContext(r.Context()).Model(&models.User{}).
		Where("id = ?", id).
		Update("is_active", req.IsActive)
	if result.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update status"})
		return
	}
	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Status updated"})
}

func toUserDTO(u *models.User) dto.UserDTO {
	return dto.UserDTO{
		ID:            u.ID.String(),
		Email:         u.Email,
		FullName:      u.FullName,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		IsActive:      u.IsActive,
	}
}
