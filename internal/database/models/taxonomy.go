package models

import "github.com/google/uuid"

type Faculty struct {
	Base
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	ShortName   string `json:"short_name,omitempty"`
	Description string `json:"description,omitempty"`

	Majors []Major `gorm:"foreignKey:FacultyID" json:"majors,omitempty"`
}

func (Faculty) TableName() string {
	return "faculties"
}

type Major struct {
	Base
	FacultyID uuid.UUID `gorm:"type:uuid;index;not null" json:"faculty_id"`
	Faculty   *Faculty  `gorm:"foreignKey:FacultyID" json:"faculty,omitempty"`

	Name string `gorm:"not null" json:"name"`
	Code string `json:"code,omitempty"`
}

func (Major) TableName() string {
	return "majors"
}

type Batch struct {
	Base
	GraduationYear int    `gorm:"uniqueIndex;not null" json:"graduation_year"`
	Name           string `gorm:"not null" json:"name"`
	StartYear      *int   `json:"start_year,omitempty"`
	Description    string `json:"description,omitempty"`
}

func (Batch) TableName() string {
	return "batches"
}
