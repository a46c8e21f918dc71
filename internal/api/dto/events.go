package dto

import "time"

type EventRequest struct {
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	EventDate       time.Time `json:"event_date"`
	Location        string    `json:"location,omitempty"`
	IsOnline        bool      `json:"is_online"`
	MeetLink        string    `json:"meet_link,omitempty"`
	ThumbnailURL    string    `json:"thumbnail_url,omitempty"`
	MaxParticipants *int      `json:"max_participants,omitempty"`
}

func (r EventRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Title == "" {
		errors["title"] = "Title is required"
	}
	if r.EventDate.IsZero() {
		errors["event_date"] = "Event date is required"
	}
	if r.MaxParticipants != nil && *r.MaxParticipants < 1 {
		errors["max_participants"] = "Max participants must be at least 1"
	}

	return errors
}

type EventResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	EventDate       time.Time `json:"event_date"`
	Location        string    `json:"location,omitempty"`
	IsOnline        bool      `json:"is_online"`
	MeetLink        string    `json:"meet_link,omitempty"`
	ThumbnailURL    string    `json:"thumbnail_url,omitempty"`
	CreatedBy       string    `json:"created_by"`
	CreatedByName   string    `json:"created_by_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	MaxParticipants *int      `json:"max_participants,omitempty"`
	RegisteredCount int64     `json:"registered_count"`
	MyStatus        string    `json:"my_registration_status,omitempty"`
}

type MyRegistrationResponse struct {
	EventID      string    `json:"event_id"`
	Title        string    `json:"title"`
	EventDate    time.Time `json:"event_date"`
	Location     string    `json:"location,omitempty"`
	IsOnline     bool      `json:"is_online"`
	RegisteredAt time.Time `json:"registered_at"`
	Status       string    `json:"status"`
}

type RegistrationUserResponse struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Status       string    `json:"status"`
	RegisteredAt time.Time `json:"registered_at"`
}
