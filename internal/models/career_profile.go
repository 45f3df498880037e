package models

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
)

// CareerDomain is one suggested domain with its fit score.
type CareerDomain struct {
	Domain     string  `json:"domain"`
	MatchScore float64 `json:"matchScore"`
}

// CareerDomains is stored as JSONB.
type CareerDomains []CareerDomain

// Value marshals the list for persistence.
func (d CareerDomains) Value() (driver.Value, error) {
	return jsonValue([]CareerDomain(d), "[]")
}

// Scan unmarshals the JSONB column.
func (d *CareerDomains) Scan(value interface{}) error {
	*d = CareerDomains{}
	return scanJSON(value, (*[]CareerDomain)(d), "career_domains")
}

// RoadmapStep is one stage of a learning roadmap.
type RoadmapStep struct {
	Step        string `json:"step"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
}

// Roadmap is stored as JSONB.
type Roadmap []RoadmapStep

// Value marshals the roadmap for persistence.
func (r Roadmap) Value() (driver.Value, error) {
	return jsonValue([]RoadmapStep(r), "[]")
}

// Scan unmarshals the JSONB column.
func (r *Roadmap) Scan(value interface{}) error {
	*r = Roadmap{}
	return scanJSON(value, (*[]RoadmapStep)(r), "learning_roadmap")
}

// CareerProfile caches the last career analysis of a student. It stays valid
// until the student asks for a new analysis.
type CareerProfile struct {
	StudentID         string         `db:"student_id" json:"studentId"`
	CareerDomains     CareerDomains  `db:"career_domains" json:"careerDomains"`
	RecommendedRoles  pq.StringArray `db:"recommended_roles" json:"recommendedRoles"`
	SkillGaps         pq.StringArray `db:"skill_gaps" json:"skillGaps"`
	Certifications    pq.StringArray `db:"certifications" json:"certifications"`
	SuggestedProjects pq.StringArray `db:"suggested_projects" json:"suggestedProjects"`
	LearningRoadmap   Roadmap        `db:"learning_roadmap" json:"learningRoadmap"`
	LastAnalyzed      time.Time      `db:"last_analyzed" json:"lastAnalyzed"`
}
