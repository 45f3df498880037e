package models

import "time"

// LabelCount is a generic bucket used by dashboard charts.
type LabelCount struct {
	Label string `db:"label" json:"label"`
	Count int    `db:"count" json:"count"`
}

// DashboardStats is the admin analytics dashboard payload.
type DashboardStats struct {
	UsersByRole           []LabelCount   `json:"usersByRole"`
	TotalMarksheets       int            `json:"totalMarksheets"`
	AverageOverall        float64        `json:"averageOverallPercentage"`
	TopDomains            []LabelCount   `json:"topDomains"`
	ApplicationsByStatus  []LabelCount   `json:"applicationsByStatus"`
	TotalJobs             int            `json:"totalJobs"`
	StudentsWithSummaries int            `json:"studentsWithSummaries"`
	GeneratedAt           time.Time      `json:"generatedAt"`
	System                *SystemMetrics `json:"system,omitempty"`
}

// StudentPerformanceRow is one line of the admin student export.
type StudentPerformanceRow struct {
	StudentID         string  `db:"student_id" json:"studentId"`
	FullName          string  `db:"full_name" json:"fullName"`
	Email             string  `db:"email" json:"email"`
	TotalSemesters    int     `db:"total_semesters" json:"totalSemesters"`
	OverallAverage    float64 `db:"overall_average" json:"overallAverage"`
	ConsistencyScore  float64 `db:"consistency_score" json:"consistencyScore"`
	RecommendedDomain string  `db:"recommended_domain" json:"recommendedDomain"`
}

// SystemMetrics is a point-in-time view of process counters.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	CompletionsTotal         uint64    `json:"completionsTotal"`
	CompletionFailures       uint64    `json:"completionFailures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
