package models

import (
	"time"

	"github.com/google/uuid"
)

// Registration statuses
const (
	RegistrationStatusRegistered = "registered"
	RegistrationStatusCancelled  = "cancelled"
	RegistrationStatusAttended   = "attended"
)

type Event struct {
	Base
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `json:"description,omitempty"`
	EventDate    time.Time `gorm:"index;not null" json:"event_date"`
	Location     string    `json:"location,omitempty"`
	IsOnline     bool      `gorm:"default:false" json:"is_online"`
	MeetLink     string    `json:"meet_link,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`

	// nil means unlimited capacity
	MaxParticipants *int `json:"max_participants,omitempty"`

	CreatedBy     uuid.UUID `gorm:"type:uuid;index;not null" json:"created_by"`
	CreatedByUser *User     `gorm:"foreignKey:CreatedBy" json:"created_by_user,omitempty"`

	Registrations []EventRegistration `gorm:"foreignKey:EventID" json:"-"`
}

func (Event) TableName() string {
	return "events"
}

// EventRegistration holds the single row per (event, user) pair. The row is
// never deleted by normal flow: cancellation and re-registration flip Status
// in place, and the composite unique index keeps retries from duplicating it.
type EventRegistration struct {
	Base
	EventID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_event_user" json:"event_id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_event_user" json:"user_id"`

	Status       string    `gorm:"default:'registered';index" json:"status"` // registered, cancelled, attended
	RegisteredAt time.Time `json:"registered_at"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (EventRegistration) TableName() string {
	return "event_registrations"
}
