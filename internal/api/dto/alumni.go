package dto

type ProfileUpdateRequest struct {
	CurrentPosition string `json:"current_position,omitempty"`
	Company         string `json:"company,omitempty"`
	CompanyIndustry string `json:"company_industry,omitempty"`
	City            string `json:"city,omitempty"`
	Country         string `json:"country,omitempty"`
	LinkedinURL     string `json:"linkedin_url,omitempty"`
	FacebookURL     string `json:"facebook_url,omitempty"`
	Bio             string `json:"bio,omitempty"`
}

type PrivacyUpdateRequest struct {
	IsPublic bool `json:"is_public"`
}

type AlumniResponse struct {
	ID              string `json:"id"`
	FullName        string `json:"full_name"`
	GraduationYear  int    `json:"graduation_year"`
	FacultyName     string `json:"faculty_name,omitempty"`
	MajorName       string `json:"major_name,omitempty"`
	CurrentPosition string `json:"current_position,omitempty"`
	Company         string `json:"company,omitempty"`
	City            string `json:"city,omitempty"`
	Country         string `json:"country,omitempty"`
	LinkedinURL     string `json:"linkedin_url,omitempty"`
	Bio             string `json:"bio,omitempty"`
}

type TaxonomyRequest struct {
	Name        string `json:"name"`
	ShortName   string `json:"short_name,omitempty"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	FacultyID   string `json:"faculty_id,omitempty"`
}

type BatchRequest struct {
	GraduationYear int    `json:"graduation_year"`
	Name           string `json:"name"`
	StartYear      *int   `json:"start_year,omitempty"`
	Description    string `json:"description,omitempty"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

type UpdateStatusRequest struct {
	IsActive bool `json:"is_active"`
}
