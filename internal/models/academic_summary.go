package models

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
)

// Trend labels for consecutive marksheets.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// SemesterTrendPoint is the percentage of one marksheet and its direction
// compared to the previous one.
type SemesterTrendPoint struct {
	Semester   string  `json:"semester"`
	Percentage float64 `json:"percentage"`
	Trend      string  `json:"trend"`
}

// SemesterTrend is stored as JSONB.
type SemesterTrend []SemesterTrendPoint

// Value marshals the trend for persistence.
func (t SemesterTrend) Value() (driver.Value, error) {
	return jsonValue([]SemesterTrendPoint(t), "[]")
}

// Scan unmarshals the JSONB column.
func (t *SemesterTrend) Scan(value interface{}) error {
	*t = SemesterTrend{}
	return scanJSON(value, (*[]SemesterTrendPoint)(t), "semester_trend")
}

// SubjectPerformance is the average of one subject across marksheets.
type SubjectPerformance struct {
	Subject  string  `json:"subject"`
	Average  float64 `json:"average"`
	Attempts int     `json:"attempts"`
}

// SubjectPerformances is stored as JSONB.
type SubjectPerformances []SubjectPerformance

// Value marshals the list for persistence.
func (p SubjectPerformances) Value() (driver.Value, error) {
	return jsonValue([]SubjectPerformance(p), "[]")
}

// Scan unmarshals the JSONB column.
func (p *SubjectPerformances) Scan(value interface{}) error {
	*p = SubjectPerformances{}
	return scanJSON(value, (*[]SubjectPerformance)(p), "subject_wise_performance")
}

// AcademicSummary is derived from all marksheets of a student and replaced
// wholesale on every recomputation.
type AcademicSummary struct {
	StudentID              string              `db:"student_id" json:"studentId"`
	Strengths              pq.StringArray      `db:"strengths" json:"strengths"`
	Weaknesses             pq.StringArray      `db:"weaknesses" json:"weaknesses"`
	SemesterTrend          SemesterTrend       `db:"semester_trend" json:"semesterTrend"`
	ConsistencyScore       float64             `db:"consistency_score" json:"consistencyScore"`
	OverallAverage         float64             `db:"overall_average" json:"overallAverage"`
	TotalSemesters         int                 `db:"total_semesters" json:"totalSemesters"`
	SubjectWisePerformance SubjectPerformances `db:"subject_wise_performance" json:"subjectWisePerformance"`
	RecommendedDomain      string              `db:"recommended_domain" json:"recommendedDomain"`
	DomainConfidence       int                 `db:"domain_confidence" json:"domainConfidence"`
	UpdatedAt              time.Time           `db:"updated_at" json:"updatedAt"`
}
