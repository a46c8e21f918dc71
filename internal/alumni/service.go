package alumni

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hugh/alumni-hub/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrProfileExists   = errors.New("profile already completed")
	ErrProfileNotFound = errors.New("profile not found")
	ErrStudentIDTaken  = errors.New("student id already in use")
	ErrFacultyNotFound = errors.New("faculty not found")
	ErrMajorNotFound   = errors.New("major not found")
)

type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

type CompleteProfileInput struct {
	StudentID      string
	GraduationYear int
	FacultyID      uuid.UUID
	MajorID        uuid.UUID
}

type ProfileUpdateInput struct {
	CurrentPosition string
	Company         string
	CompanyIndustry string
	City            string
	Country         string
	LinkedinURL     string
	FacebookURL     string
	Bio             string
}

type DirectoryFilter struct {
	FacultyID      *uuid.UUID
	MajorID        *uuid.UUID
	GraduationYear *int
	Keyword        string
	Page           int
	PerPage        int
}

// CompleteProfile creates the alumni profile for a pending account and
// promotes its role to alumni. Runs in one transaction so a failed profile
// insert never leaves a promoted role behind.
func (s *Service) CompleteProfile(ctx context.Context, userID uuid.UUID, input CompleteProfileInput) (*models.AlumniProfile, error) {
	var profile models.AlumniProfile

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.AlumniProfile
		if err := tx.Where("user_id = ?", userID).First(&existing).Error; err == nil {
			return ErrProfileExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Where("student_id = ?", input.StudentID).First(&existing).Error; err == nil {
			return ErrStudentIDTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var faculty models.Faculty
		if err := tx.First(&faculty, "id = ?", input.FacultyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrFacultyNotFound
			}
			return err
		}

		var major models.Major
		err := tx.Where("id = ? AND faculty_id = ?", input.MajorID, input.FacultyID).First(&major).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMajorNotFound
			}
			return err
		}

		profile = models.AlumniProfile{
			UserID:         userID,
			StudentID:      input.StudentID,
			GraduationYear: input.GraduationYear,
			FacultyID:      input.FacultyID,
			MajorID:        input.MajorID,
			IsPublic:       false,
		}
		if err := linkBatch(tx, &profile, input.GraduationYear); err != nil {
			return err
		}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}

		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("role", models.RoleAlumni).Error
	})
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// linkBatch attaches the batch matching the graduation year, when one exists.
func linkBatch(tx *gorm.DB, p *models.AlumniProfile, year int) error {
	var batch models.Batch
	err := tx.Where("graduation_year = ?", year).First(&batch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	p.Batches = []models.Batch{batch}
	return nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileUpdateInput) (*models.AlumniProfile, error) {
	var profile models.AlumniProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	profile.CurrentPosition = input.CurrentPosition
	profile.Company = input.Company
	profile.CompanyIndustry = input.CompanyIndustry
	profile.City = input.City
	profile.Country = input.Country
	profile.LinkedinURL = input.LinkedinURL
	profile.FacebookURL = input.FacebookURL
	profile.Bio = input.Bio

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *Service) UpdatePrivacy(ctx context.Context, userID uuid.UUID, isPublic bool) error {
	result := s.db.WithContext(ctx).Model(&models.AlumniProfile{}).
		Where("user_id = ?", userID).
		Update("is_public", isPublic)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// Directory lists public profiles only.
func (s *Service) Directory(ctx context.Context, filter DirectoryFilter) ([]models.AlumniProfile, int64, error) {
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
		query := s.db.WithContext(ctx).Model(&models.AlumniProfile{}).
			Where("is_public = ?", true)
		if filter.FacultyID != nil {
			query = query.Where("faculty_id = ?", *filter.FacultyID)
		}
		if filter.MajorID != nil {
			query = query.Where("major_id = ?", *filter.MajorID)
		}
		if filter.GraduationYear != nil {
			query = query.Where("graduation_year = ?", *filter.GraduationYear)
		}
		if filter.Keyword != "" {
			pattern := "%" + filter.Keyword + "%"
			query = query.Where(
				"LOWER(company) LIKE LOWER(?) OR LOWER(current_position) LIKE LOWER(?) OR LOWER(city) LIKE LOWER(?)",
				pattern, pattern, pattern,
			)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var profiles []models.AlumniProfile
	err := filtered().
		Preload("User").
		Preload("Faculty").
		Preload("Major").
		Order("graduation_year DESC").
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&profiles).Error
	return profiles, total, err
}
