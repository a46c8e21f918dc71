package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/hugh/alumni-hub/internal/alumni"
	"github.com/hugh/alumni-hub/internal/api/dto"
	"github.com/hugh/alumni-hub/internal/api/middleware"
	"github.com/hugh/alumni-hub/internal/database/models"
)

type AlumniHandler struct {
	alumniService *alumni.Service
}

func NewAlumniHandler(alumniService *alumni.Service) *AlumniHandler {
	return &AlumniHandler{alumniService: alumniService}
}

// Directory lists public alumni profiles with optional filters.
func (h *AlumniHandler) Directory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := alumni.DirectoryFilter{Keyword: q.Get("q")}
	if id, err := uuid.Parse(q.Get("faculty_id")); err == nil {
		filter.FacultyID = &id
	}
	if id, err := uuid.Parse(q.Get("major_id")); err == nil {
		filter.MajorID = &id
	}
	if year, err := strconv.Atoi(q.Get("graduation_year")); err == nil {
		filter.GraduationYear = &year
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PerPage, _ = strconv.Atoi(q.Get("per_page"))

	profiles, total, err := h.alumniService.Directory(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load directory"})
		return
	}

	responses := make([]dto.AlumniResponse, len(profiles))
	for i, p := range profiles {
		responses[i] = toAlumniResponse(p)
	}

	params := dto.PaginationParams{Page: filter.Page, PerPage: filter.PerPage}
	params.Normalize()
	writeJSON(w, http.StatusOK, dto.NewPaginatedResponse(responses, total, params.Page, params.PerPage))
}

func (h *AlumniHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	userID := middleware.GetUserID(r.Context())

	profile, err := h.alumniService.UpdateProfile(r.Context(), userID, alumni.ProfileUpdateInput{
		CurrentPosition: req.CurrentPosition,
		Company:         req.Company,
		CompanyIndustry: req.CompanyIndustry,
		City:            req.City,
		Country:         req.Country,
		LinkedinURL:     req.LinkedinURL,
		FacebookURL:     req.FacebookURL,
		Bio:             req.Bio,
	})
	if err != nil {
		switch err {
		case alumni.ErrProfileNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Profile not found. Complete your profile first"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update profile"})
		}
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (h *AlumniHandler) UpdatePrivacy(w http.ResponseWriter, r *http.Request) {
	var req dto.PrivacyUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	userID := middleware.GetUserID(r.Context())

	if err := h.alumniService.UpdatePrivacy(r.Context(), userID, req.IsPublic); err != nil {
		switch err {
		case alumni.ErrProfileNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Profile not found. Complete your profile first"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update privacy setting"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Privacy setting updated"})
}

func toAlumniResponse(p models.AlumniProfile) dto.AlumniResponse {
	resp := dto.AlumniResponse{
		ID:              p.ID.String(),
		GraduationYear:  p.GraduationYear,
		CurrentPosition: p.CurrentPosition,
		Company:         p.Company,
		City:            p.City,
		Country:         p.Country,
		LinkedinURL:     p.LinkedinURL,
		Bio:             p.Bio,
	}
	if p.User != nil {
		resp.FullName = p.User.FullName
	}
	if p.Faculty != nil {
		resp.FacultyName = p.Faculty.Name
	}
	if p.Major != nil {
		resp.MajorName = p.Major.Name
	}
	return resp
}
