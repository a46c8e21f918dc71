package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hugh/alumni-hub/internal/api/dto"
	"github.com/hugh/alumni-hub/internal/api/middleware"
	"github.com/hugh/alumni-hub/internal/events"
)

type EventHandler struct {
	eventService *events.Service
}

func NewEventHandler(eventService *events.Service) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := events.ListFilter{
		OnlyUpcoming: q.Get("upcoming") == "true",
		Keyword:      q.Get("q"),
	}
	if from, err := time.Parse(time.RFC3339, q.Get("from")); err == nil {
		filter.From = &from
	}
	if to, err := time.Parse(time.RFC3339, q.Get("to")); err == nil {
		filter.To = &to
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.PerPage, _ = strconv.Atoi(q.Get("per_page"))

	viewerID := optionalViewerID(r)

	summaries, total, err := h.eventService.List(r.Context(), filter, viewerID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list events"})
		return
	}

	responses := make([]dto.EventResponse, len(summaries))
	for i, s := range summaries {
		responses[i] = toEventResponse(s)
	}

	params := dto.PaginationParams{Page: filter.Page, PerPage: filter.PerPage}
	params.Normalize()
	writeJSON(w, http.StatusOK, dto.NewPaginatedResponse(responses, total, params.Page, params.PerPage))
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	summary, err := h.eventService.Get(r.Context(), eventID, optionalViewerID(r))
	if err != nil {
		switch err {
		case events.ErrEventNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Event not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load event"})
		}
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(*summary))
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	userID := middleware.GetUserID(r.Context())

	event, err := h.eventService.Create(r.Context(), userID, events.EventInput{
		Title:           req.Title,
		Description:     req.Description,
		EventDate:       req.EventDate,
		Location:        req.Location,
		IsOnline:        req.IsOnline,
		MeetLink:        req.MeetLink,
		ThumbnailURL:    req.ThumbnailURL,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create event"})
		return
	}

	writeJSON(w, http.StatusCreated, toEventResponse(events.EventSummary{Event: *event}))
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req dto.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	event, err := h.eventService.Update(r.Context(), eventID, events.EventInput{
		Title:           req.Title,
		Description:     req.Description,
		EventDate:       req.EventDate,
		Location:        req.Location,
		IsOnline:        req.IsOnline,
		MeetLink:        req.MeetLink,
		ThumbnailURL:    req.ThumbnailURL,
		MaxParticipants: req.MaxParticipants,
	})
	if err != nil {
		switch err {
		case events.ErrEventNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Event not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update event"})
		}
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(events.EventSummary{Event: *event}))
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.eventService.Delete(r.Context(), eventID); err != nil {
		switch err {
		case events.ErrEventNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Event not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete event"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Event deleted"})
}

// Register admits the caller to the event, subject to capacity.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())

	if err := h.eventService.Register(r.Context(), eventID, userID); err != nil {
		switch err {
		case events.ErrEventNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Event not found"})
		case events.ErrEventPast:
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Event has already taken place"})
		case events.ErrAlreadyRegistered:
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "You are already registered for this event"})
		case events.ErrEventFull:
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Event is full"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Registration failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Registered for event"})
}

func (h *EventHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())

	if err := h.eventService.Cancel(r.Context(), eventID, userID); err != nil {
		switch err {
		case events.ErrNotRegistered:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "No active registration for this event"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Cancellation failed"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Registration cancelled"})
}

func (h *EventHandler) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	regs, err := h.eventService.MyRegistrations(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list registrations"})
		return
	}

	responses := make([]dto.MyRegistrationResponse, len(regs))
	for i, reg := range regs {
		responses[i] = dto.MyRegistrationResponse{
			EventID:      reg.EventID.String(),
			Title:        reg.Event.Title,
			EventDate:    reg.Event.EventDate,
			Location:     reg.Event.Location,
			IsOnline:     reg.Event.IsOnline,
			RegisteredAt: reg.RegisteredAt,
			Status:       reg.Status,
		}
	}

	writeJSON(w, http.StatusOK, responses)
}

// Registrations lists who signed up for an event. Admin only.
func (h *EventHandler) Registrations(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	regs, total, err := h.eventService.Registrations(r.Context(), eventID, page, perPage)
	if err != nil {
		switch err {
		case events.ErrEventNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Event not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list registrations"})
		}
		return
	}

	responses := make([]dto.RegistrationUserResponse, len(regs))
	for i, reg := range regs {
		responses[i] = dto.RegistrationUserResponse{
			UserID:       reg.UserID.String(),
			Email:        reg.User.Email,
			FullName:     reg.User.FullName,
			Status:       reg.Status,
			RegisteredAt: reg.RegisteredAt,
		}
	}

	params := dto.PaginationParams{Page: page, PerPage: perPage}
	params.Normalize()
	writeJSON(w, http.StatusOK, dto.NewPaginatedResponse(responses, total, params.Page, params.PerPage))
}

// MarkAttended records attendance for a registered user. Admin only.
func (h *EventHandler) MarkAttended(w http.ResponseWriter, r *http.Request) {
	eventID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	if err := h.eventService.MarkAttended(r.Context(), eventID, userID); err != nil {
		switch err {
		case events.ErrNotRegistered:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "No active registration for this event"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to mark attendance"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Attendance recorded"})
}

func toEventResponse(s events.EventSummary) dto.EventResponse {
	resp := dto.EventResponse{
		ID:              s.Event.ID.String(),
		Title:           s.Event.Title,
		Description:     s.Event.Description,
		EventDate:       s.Event.EventDate,
		Location:        s.Event.Location,
		IsOnline:        s.Event.IsOnline,
		MeetLink:        s.Event.MeetLink,
		ThumbnailURL:    s.Event.ThumbnailURL,
		CreatedBy:       s.Event.CreatedBy.String(),
		CreatedAt:       s.Event.CreatedAt,
		MaxParticipants: s.Event.MaxParticipants,
		RegisteredCount: s.RegisteredCount,
		MyStatus:        s.MyStatus,
	}
	if s.Event.CreatedByUser != nil {
		resp.CreatedByName = s.Event.CreatedByUser.FullName
	}
	return resp
}

// optionalViewerID returns the authenticated user's ID when present, so public
// listings can annotate the caller's own registration status.
func optionalViewerID(r *http.Request) *uuid.UUID {
	if id := middleware.GetUserID(r.Context()); id != uuid.Nil {
		return &id
	}
	return nil
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid ID"})
		return uuid.Nil, false
	}
	return id, true
}
