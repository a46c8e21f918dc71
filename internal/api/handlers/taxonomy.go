package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/hugh/alumni-hub/internal/api/dto"
	"github.com/hugh/alumni-hub/internal/database/models"
	"gorm.io/gorm"
)

// TaxonomyHandler serves the faculty, major and batch reference data. Reads
// are public; writes are admin only and simple enough to hit the database
// directly.
type TaxonomyHandler struct {
	db *gorm.DB
}

func NewTaxonomyHandler(db *gorm.DB) *TaxonomyHandler {
	return &TaxonomyHandler{db: db}
}

func (h *TaxonomyHandler) ListFaculties(w http.ResponseWriter, r *http.Request) {
	var faculties []models.Faculty
	if err := h.db.WithContext(r.Context()).Preload("Majors").Order("name ASC").Find(&faculties).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list faculties"})
		return
	}
	writeJSON(w, http.StatusOK, faculties)
}

func (h *TaxonomyHandler) CreateFaculty(w http.ResponseWriter, r *http.Request) {
	var req dto.TaxonomyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Name is required"})
		return
	}

	faculty := models.Faculty{
		Name:        req.Name,
		ShortName:   req.ShortName,
		Description: req.Description,
	}
	if err := h.db.WithContext(r.Context()).Create(&faculty).Error; err != nil {
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Faculty already exists"})
		return
	}
	writeJSON(w, http.StatusCreated, faculty)
}

func (h *TaxonomyHandler) UpdateFaculty(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req dto.TaxonomyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Name is required"})
		return
	}

	var faculty models.Faculty
	if err := h.db.WithContext(r.Context()).First(&faculty, "id = ?", id).Error; err != nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Faculty not found"})
		return
	}

	faculty.Name = req.Name
	faculty.ShortName = req.ShortName
	faculty.Description = req.Description
	if err := h.db.WithContext(r.Context()).Save(&faculty).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update faculty"})
		return
	}
	writeJSON(w, http.StatusOK, faculty)
}

func (h *TaxonomyHandler) DeleteFaculty(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	// Refuse while majors or profiles still reference the faculty.
	var majorCount int64
	if err := h.db.WithContext(r.Context()).Model(&models.Major{}).Where("faculty_id = ?", id).Count(&majorCount).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete faculty"})
		return
	}
	if majorCount > 0 {
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Faculty still has majors"})
		return
	}

	result := h.db.WithContext(r.Context()).Delete(&models.Faculty{}, "id = ?", id)
	if result.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete faculty"})
		return
	}
	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Faculty not found"})
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Faculty deleted"})
}

func (h *TaxonomyHandler) ListMajors(w http.ResponseWriter, r *http.Request) {
	query := h.db.WithContext(r.Context()).Order("name ASC")
	if facultyID, err := uuid.Parse(r.URL.Query().Get("faculty_id")); err == nil {
		query = query.Where("faculty_id = ?", facultyID)
	}

	var majors []models.Major
	if err := query.Find(&majors).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list majors"})
		return
	}
	writeJSON(w, http.StatusOK, majors)
}

func (h *TaxonomyHandler) CreateMajor(w http.ResponseWriter, r *http.Request) {
	var req dto.TaxonomyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Name is required"})
		return
	}
	facultyID, err := uuid.Parse(req.FacultyID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Faculty ID must be a valid UUID"})
		return
	}

	var faculty models.Faculty
	if err := h.db.WithContext(r.Context()).First(&faculty, "id = ?", facultyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Faculty not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create major"})
		return
	}

	major := models.Major{
		FacultyID: facultyID,
		Name:      req.Name,
		Code:      req.Code,
	}
	if err := h.db.WithContext(r.Context()).Create(&major).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create major"})
		return
	}
	writeJSON(w, http.StatusCreated, major)
}

func (h *TaxonomyHandler) DeleteMajor(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	result := h.db.WithContext(r.Context()).Delete(&models.Major{}, "id = ?", id)
	if result.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete major"})
		return
	}
	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Major not found"})
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Major deleted"})
}

func (h *TaxonomyHandler) ListBatches(w http.ResponseWriter, r *http.Request) {
	var batches []models.Batch
	if err := h.db.WithContext(r.Context()).Order("graduation_year DESC").Find(&batches).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list batches"})
		return
	}
	writeJSON(w, http.StatusOK, batches)
}

func (h *TaxonomyHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Name == "" || req.GraduationYear == 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Name and graduation year are required"})
		return
	}

	batch := models.Batch{
		GraduationYear: req.GraduationYear,
		Name:           req.Name,
		StartYear:      req.StartYear,
		Description:    req.Description,
	}
	if err := h.db.WithContext(r.Context()).Create(&batch).Error; err != nil {
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Batch for this graduation year already exists"})
		return
	}
	writeJSON(w, http.StatusCreated, batch)
}

func (h *TaxonomyHandler) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	result := h.db.WithContext(r.Context()).Delete(&models.Batch{}, "id = ?", id)
	if result.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete batch"})
		return
	}
	if result.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Batch not found"})
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Batch deleted"})
}
