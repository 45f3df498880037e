package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus2career-api/internal/models"
)

// AnalyticsRepository exposes read-optimised queries for the admin dashboard.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository instantiates the repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// Dashboard gathers every counter shown on the admin dashboard.
func (r *AnalyticsRepository) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	if err := r.db.SelectContext(ctx, &stats.UsersByRole,
		`SELECT role AS label, COUNT(*) AS count FROM users GROUP BY role ORDER BY role`); err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}

	var marks struct {
		Total   int     `db:"total"`
		Average float64 `db:"average"`
	}
	if err := r.db.GetContext(ctx, &marks,
		`SELECT COUNT(*) AS total, COALESCE(ROUND(AVG(overall_percentage)::numeric, 2), 0) AS average FROM marksheets`); err != nil {
		return nil, fmt.Errorf("aggregate marksheets: %w", err)
	}
	stats.TotalMarksheets = marks.Total
	stats.AverageOverall = marks.Average

	if err := r.db.SelectContext(ctx, &stats.TopDomains,
		`SELECT predicted_domain AS label, COUNT(*) AS count FROM resumes WHERE predicted_domain <> '' GROUP BY predicted_domain ORDER BY count DESC, label ASC LIMIT 5`); err != nil {
		return nil, fmt.Errorf("count resume domains: %w", err)
	}

	if err := r.db.SelectContext(ctx, &stats.ApplicationsByStatus,
		`SELECT status AS label, COUNT(*) AS count FROM applications GROUP BY status ORDER BY status`); err != nil {
		return nil, fmt.Errorf("count applications by status: %w", err)
	}

	if err := r.db.GetContext(ctx, &stats.TotalJobs, `SELECT COUNT(*) FROM jobs`); err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	if err := r.db.GetContext(ctx, &stats.StudentsWithSummaries, `SELECT COUNT(*) FROM academic_summaries`); err != nil {
		return nil, fmt.Errorf("count academic summaries: %w", err)
	}

	return stats, nil
}

// StudentPerformance lists one row per student with a stored academic summary,
// best average first. An empty domain returns every student.
func (r *AnalyticsRepository) StudentPerformance(ctx context.Context, domain string) ([]models.StudentPerformanceRow, error) {
	var builder strings.Builder
	builder.WriteString(`SELECT u.id AS student_id, u.full_name, u.email, s.total_semesters, s.overall_average, s.consistency_score, s.recommended_domain
FROM academic_summaries s JOIN users u ON u.id = s.student_id`)
	var args []interface{}
	if domain != "" {
		args = append(args, domain)
		builder.WriteString(fmt.Sprintf(" WHERE s.recommended_domain = $%d", len(args)))
	}
	builder.WriteString(" ORDER BY s.overall_average DESC, u.full_name ASC")

	var rows []models.StudentPerformanceRow
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query student performance: %w", err)
	}
	return rows, nil
}
