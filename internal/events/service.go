package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/alumni-hub/internal/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrEventPast         = errors.New("event has already taken place")
	ErrEventFull         = errors.New("event is full")
	ErrAlreadyRegistered = errors.New("already registered for event")
	ErrNotRegistered     = errors.New("no active registration for event")
)

type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

type EventInput struct {
	Title           string
	Description     string
	EventDate       time.Time
	Location        string
	IsOnline        bool
	MeetLink        string
	ThumbnailURL    string
	MaxParticipants *int
}

type ListFilter struct {
	OnlyUpcoming bool
	From         *time.Time
	To           *time.Time
	Keyword      string
	Page         int
	PerPage      int
}

// EventSummary pairs an event with its live registration count and, when a
// caller is known, that caller's registration status.
type EventSummary struct {
	Event           models.Event
	RegisteredCount int64
	MyStatus        string
}

// Register admits a user to an event. The whole admission test runs in one
// transaction: the capacity count and the insert/update must not be separable,
// or two concurrent requests can both observe a free slot. Under Postgres the
// event row is locked FOR UPDATE so concurrent admissions for the same event
// serialize; the unique (event_id, user_id) index backstops duplication.
func (s *Service) Register(ctx context.Context, eventID, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eventQuery := tx.Where("id = ?", eventID)
		if tx.Dialector.Name() == "postgres" {
			// SQLite has no row locks; its single writer already serializes.
			eventQuery = eventQuery.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var event models.Event
		if err := eventQuery.First(&event).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		if event.EventDate.Before(time.Now()) {
			return ErrEventPast
		}

		var existing models.EventRegistration
		err := tx.Where("event_id = ? AND user_id = ?", eventID, userID).First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		hasRow := err == nil

		if hasRow && existing.Status == models.RegistrationStatusRegistered {
			return ErrAlreadyRegistered
		}

		if event.MaxParticipants != nil {
			var count int64
			err := tx.Model(&models.EventRegistration{}).
				Where("event_id = ? AND status = ?", eventID, models.RegistrationStatusRegistered).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count >= int64(*event.MaxParticipants) {
				return ErrEventFull
			}
		}

		now := time.Now()
		if !hasRow {
			reg := models.EventRegistration{
				EventID:      eventID,
				UserID:       userID,
				Status:       models.RegistrationStatusRegistered,
				RegisteredAt: now,
			}
			return tx.Create(&reg).Error
		}

		// Previously cancelled (or attended) row: revive it in place.
		return tx.Model(&existing).Updates(map[string]interface{}{
			"status":        models.RegistrationStatusRegistered,
			"registered_at": now,
		}).Error
	})
}

// Cancel flips an active registration to cancelled. The row is kept so a
// later re-registration reuses it.
func (s *Service) Cancel(ctx context.Context, eventID, userID uuid.UUID) error {
	var reg models.EventRegistration
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotRegistered
		}
		return err
	}

	if reg.Status != models.RegistrationStatusRegistered {
		return ErrNotRegistered
	}

	return s.db.WithContext(ctx).Model(&reg).
		Update("status", models.RegistrationStatusCancelled).Error
}

// MarkAttended records attendance for an active registration.
func (s *Service) MarkAttended(ctx context.Context, eventID, userID uuid.UUID) error {
	var reg models.EventRegistration
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotRegistered
		}
		return err
	}

	if reg.Status != models.RegistrationStatusRegistered {
		return ErrNotRegistered
	}

	return s.db.WithContext(ctx).Model(&reg).
		Update("status", models.RegistrationStatusAttended).Error
}

func (s *Service) Create(ctx context.Context, createdBy uuid.UUID, input EventInput) (*models.Event, error) {
	event := models.Event{
		Title:           input.Title,
		Description:     input.Description,
		EventDate:       input.EventDate,
		Location:        input.Location,
		IsOnline:        input.IsOnline,
		MeetLink:        input.MeetLink,
		ThumbnailURL:    input.ThumbnailURL,
		MaxParticipants: input.MaxParticipants,
		CreatedBy:       createdBy,
	}

	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, input EventInput) (*models.Event, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	event.Title = input.Title
	event.Description = input.Description
	event.EventDate = input.EventDate
	event.Location = input.Location
	event.IsOnline = input.IsOnline
	event.MeetLink = input.MeetLink
	event.ThumbnailURL = input.ThumbnailURL
	event.MaxParticipants = input.MaxParticipants

	if err := s.db.WithContext(ctx).Save(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.First(&event, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		if err := tx.Where("event_id = ?", id).Delete(&models.EventRegistration{}).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, viewerID *uuid.UUID) (*EventSummary, error) {
	var event models.Event
	err := s.db.WithContext(ctx).
		Preload("CreatedByUser").
		First(&event, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	summary := EventSummary{Event: event}

	err = s.db.WithContext(ctx).Model(&models.EventRegistration{}).
		Where("event_id = ? AND status = ?", id, models.RegistrationStatusRegistered).
		Count(&summary.RegisteredCount).Error
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		var reg models.EventRegistration
		err := s.db.WithContext(ctx).
			Where("event_id = ? AND user_id = ?", id, *viewerID).
			First(&reg).Error
		if err == nil {
			summary.MyStatus = reg.Status
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return &summary, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, viewerID *uuid.UUID) ([]EventSummary, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	filtered := func() *gorm.DB {
		query := s.db.WithContext(ctx).Model(&models.Event{})
		if filter.OnlyUpcoming {
			query = query.Where("event_date >= ?", time.Now())
		}
		if filter.From != nil {
			query = query.Where("event_date >= ?", *filter.From)
		}
		if filter.To != nil {
			query = query.Where("event_date <= ?", *filter.To)
		}
		if filter.Keyword != "" {
			pattern := "%" + filter.Keyword + "%"
			query = query.Where("LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", pattern, pattern)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var evs []models.Event
	err := filtered().
		Preload("CreatedByUser").
		Order("event_date ASC").
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&evs).Error
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]EventSummary, len(evs))
	if len(evs) == 0 {
		return summaries, total, nil
	}

	ids := make([]uuid.UUID, len(evs))
	for i, ev := range evs {
		ids[i] = ev.ID
		summaries[i].Event = ev
	}

	type eventCount struct {
		EventID uuid.UUID
		Cnt     int64
	}
	var counts []eventCount
	err = s.db.WithContext(ctx).Model(&models.EventRegistration{}).
		Select("event_id, COUNT(*) AS cnt").
		Where("event_id IN ? AND status = ?", ids, models.RegistrationStatusRegistered).
		Group("event_id").
		Scan(&counts).Error
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		byID[c.EventID] = c.Cnt
	}

	var mine []models.EventRegistration
	if viewerID != nil {
		err = s.db.WithContext(ctx).
			Where("event_id IN ? AND user_id = ?", ids, *viewerID).
			Find(&mine).Error
		if err != nil {
			return nil, 0, err
		}
	}
	myStatus := make(map[uuid.UUID]string, len(mine))
	for _, r := range mine {
		myStatus[r.EventID] = r.Status
	}

	for i := range summaries {
		summaries[i].RegisteredCount = byID[summaries[i].Event.ID]
		summaries[i].MyStatus = myStatus[summaries[i].Event.ID]
	}

	return summaries, total, nil
}

// MyRegistrations lists the caller's registrations, newest first.
func (s *Service) MyRegistrations(ctx context.Context, userID uuid.UUID) ([]models.EventRegistration, error) {
	var regs []models.EventRegistration
	err := s.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("registered_at DESC").
		Find(&regs).Error
	return regs, err
}

// Registrations lists an event's registrations for admins.
func (s *Service) Registrations(ctx context.Context, eventID uuid.UUID, page, perPage int) ([]models.EventRegistration, int64, error) {
	var event models.Event
	if err := s.db.WithContext(ctx).First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrEventNotFound
		}
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	var total int64
	err := s.db.WithContext(ctx).Model(&models.EventRegistration{}).
		Where("event_id = ?", eventID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var regs []models.EventRegistration
	err = s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Preload("User").
		Order("registered_at ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&regs).Error
	return regs, total, err
}
