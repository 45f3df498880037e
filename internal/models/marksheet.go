package models

import (
	"database/sql/driver"
	"time"
)

// Subject is one row of a marksheet.
type Subject struct {
	Name     string   `json:"name"`
	Marks    float64  `json:"marks"`
	MaxMarks float64  `json:"maxMarks"`
	Grade    string   `json:"grade"`
	Credits  *float64 `json:"credits,omitempty"`
}

// Percentage returns marks/maxMarks*100; maxMarks is expected to be positive.
func (s Subject) Percentage() float64 {
	if s.MaxMarks <= 0 {
		return 0
	}
	return s.Marks / s.MaxMarks * 100
}

// Subjects is the ordered subject list stored as JSONB.
type Subjects []Subject

// Value marshals subjects for persistence.
func (s Subjects) Value() (driver.Value, error) {
	return jsonValue([]Subject(s), "[]")
}

// Scan unmarshals the JSONB column.
func (s *Subjects) Scan(value interface{}) error {
	*s = Subjects{}
	return scanJSON(value, (*[]Subject)(s), "subjects")
}

// Marksheet is one semester result uploaded by a student.
type Marksheet struct {
	ID                string    `db:"id" json:"id"`
	StudentID         string    `db:"student_id" json:"studentId"`
	Semester          string    `db:"semester" json:"semester"`
	Subjects          Subjects  `db:"subjects" json:"subjects"`
	OverallPercentage float64   `db:"overall_percentage" json:"overallPercentage"`
	FileName          string    `db:"file_name" json:"fileName"`
	FileType          string    `db:"file_type" json:"fileType"`
	FileSize          int64     `db:"file_size" json:"fileSize"`
	UploadedAt        time.Time `db:"uploaded_at" json:"uploadedAt"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}

// UploadedDocument is a transient file received from a multipart request.
type UploadedDocument struct {
	Filename string
	MimeType string
	Size     int64
	Content  []byte
}

// MarksheetUpload carries a marksheet file plus the optional semester override.
type MarksheetUpload struct {
	UploadedDocument
	Semester string
}

// MarksheetUploadResult is returned after a marksheet has been stored.
type MarksheetUploadResult struct {
	Marksheet *Marksheet       `json:"marksheet"`
	Summary   *AcademicSummary `json:"academicSummary,omitempty"`
	Replaced  bool             `json:"replaced"`
}
