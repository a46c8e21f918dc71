package models

import "github.com/google/uuid"

type AlumniProfile struct {
	Base
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User   *User     `gorm:"foreignKey:UserID" json:"-"`

	StudentID      string `gorm:"uniqueIndex" json:"student_id"`
	GraduationYear int    `gorm:"index" json:"graduation_year"`

	FacultyID uuid.UUID `gorm:"type:uuid;index;not null" json:"faculty_id"`
	Faculty   *Faculty  `gorm:"foreignKey:FacultyID" json:"faculty,omitempty"`

	MajorID uuid.UUID `gorm:"type:uuid;index;not null" json:"major_id"`
	Major   *Major    `gorm:"foreignKey:MajorID" json:"major,omitempty"`

	CurrentPosition string `json:"current_position,omitempty"`
	Company         string `json:"company,omitempty"`
	CompanyIndustry string `json:"company_industry,omitempty"`
	City            string `json:"city,omitempty"`
	Country         string `json:"country,omitempty"`
	LinkedinURL     string `json:"linkedin_url,omitempty"`
	FacebookURL     string `json:"facebook_url,omitempty"`
	Bio             string `json:"bio,omitempty"`

	IsPublic bool `gorm:"default:false" json:"is_public"`

	Batches []Batch `gorm:"many2many:alumni_batches;" json:"batches,omitempty"`
}

func (AlumniProfile) TableName() string {
	return "alumni_profiles"
}
