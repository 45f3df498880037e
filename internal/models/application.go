package models

import "time"

// ApplicationStatus is the recruiter-controlled state of an application.
type ApplicationStatus string

const (
	ApplicationApplied     ApplicationStatus = "applied"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationSelected    ApplicationStatus = "selected"
)

// Valid reports whether s is one of the fixed statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationApplied, ApplicationShortlisted, ApplicationRejected, ApplicationSelected:
		return true
	}
	return false
}

// Application links a student to a job.
type Application struct {
	ID         string            `db:"id" json:"id"`
	JobID      string            `db:"job_id" json:"jobId"`
	StudentID  string            `db:"student_id" json:"studentId"`
	FullName   string            `db:"full_name" json:"fullName"`
	Email      string            `db:"email" json:"email"`
	Phone      string            `db:"phone" json:"phone"`
	ResumePath string            `db:"resume_path" json:"-"`
	Status     ApplicationStatus `db:"status" json:"status"`
	CreatedAt  time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time         `db:"updated_at" json:"updatedAt"`

	JobTitle   string `db:"job_title" json:"jobTitle,omitempty"`
	JobCompany string `db:"job_company" json:"company,omitempty"`
}

// ApplyRequest carries the contact fields of an application.
type ApplyRequest struct {
	FullName string            `json:"fullName" form:"fullName" validate:"required,max=120"`
	Email    string            `json:"email" form:"email" validate:"required,email"`
	Phone    string            `json:"phone" form:"phone" validate:"max=30"`
	Resume   *UploadedDocument `json:"-" form:"-"`
}

// StatusUpdateRequest moves an application to a new status.
type StatusUpdateRequest struct {
	Status ApplicationStatus `json:"status" validate:"required,oneof=applied shortlisted rejected selected"`
}

// ResumeLink is a time-limited download link for an application resume.
type ResumeLink struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
