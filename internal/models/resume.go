package models

import (
	"time"

	"github.com/lib/pq"
)

// Resume is the latest analysed resume of a student.
type Resume struct {
	StudentID         string         `db:"student_id" json:"studentId"`
	FileName          string         `db:"file_name" json:"fileName"`
	FileType          string         `db:"file_type" json:"fileType"`
	FileSize          int64          `db:"file_size" json:"fileSize"`
	ExtractedText     string         `db:"extracted_text" json:"extractedText"`
	Skills            pq.StringArray `db:"skills" json:"skills"`
	ExperienceSummary string         `db:"experience_summary" json:"experienceSummary"`
	Education         pq.StringArray `db:"education" json:"education"`
	SuitableRoles     pq.StringArray `db:"suitable_roles" json:"suitableRoles"`
	Projects          pq.StringArray `db:"projects" json:"projects"`
	MissingSkills     pq.StringArray `db:"missing_skills" json:"missingSkills"`
	PredictedDomain   string         `db:"predicted_domain" json:"predictedDomain"`
	DomainConfidence  int            `db:"domain_confidence" json:"domainConfidence"`
	StrengthScore     int            `db:"strength_score" json:"resumeStrength"`
	AnalyzedAt        time.Time      `db:"analyzed_at" json:"analyzedAt"`
}

// ResumeFields is the structured part of a resume produced by extraction.
type ResumeFields struct {
	Skills            []string `json:"skills"`
	ExperienceSummary string   `json:"experienceSummary"`
	Education         []string `json:"education"`
	SuitableRoles     []string `json:"suitableRoles"`
	Projects          []string `json:"projects"`
	MissingSkills     []string `json:"missingSkills"`
}
