package models

import (
	"time"

	"github.com/lib/pq"
)

// Job is a posting owned by a recruiter.
type Job struct {
	ID             string         `db:"id" json:"id"`
	RecruiterID    string         `db:"recruiter_id" json:"recruiterId"`
	Title          string         `db:"title" json:"title"`
	Company        string         `db:"company" json:"company"`
	Location       string         `db:"location" json:"location"`
	Salary         string         `db:"salary" json:"salary"`
	Description    string         `db:"description" json:"description"`
	RequiredSkills pq.StringArray `db:"required_skills" json:"requiredSkills"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}

// JobFilter narrows job listings.
type JobFilter struct {
	RecruiterID string
	Search      string
	Skill       string
	Page        int
	PageSize    int
}

// JobRequest is the create/update payload for a job.
type JobRequest struct {
	Title          string   `json:"title" validate:"required,max=200"`
	Company        string   `json:"company" validate:"required,max=200"`
	Location       string   `json:"location" validate:"max=200"`
	Salary         string   `json:"salary" validate:"max=100"`
	Description    string   `json:"description" validate:"max=10000"`
	RequiredSkills []string `json:"requiredSkills" validate:"dive,required,max=80"`
}

// MatchResult compares a candidate skill set with the skills a job requires.
type MatchResult struct {
	MatchScore    float64  `json:"matchScore"`
	MatchedSkills []string `json:"matchedSkills"`
	MissingSkills []string `json:"missingSkills"`
}

// JobMatch pairs a job with the caller's match against it.
type JobMatch struct {
	Job       Job         `json:"job"`
	Match     MatchResult `json:"match"`
	Relevance float64     `json:"relevance"`
}
