package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus2career-api/internal/models"
)

// AcademicSummaryRepository stores one derived summary per student.
type AcademicSummaryRepository struct {
	db *sqlx.DB
}

// NewAcademicSummaryRepository constructs the repository.
func NewAcademicSummaryRepository(db *sqlx.DB) *AcademicSummaryRepository {
	return &AcademicSummaryRepository{db: db}
}

// Upsert replaces the stored summary of the student as a whole.
func (r *AcademicSummaryRepository) Upsert(ctx context.Context, summary *models.AcademicSummary) error {
	if summary.UpdatedAt.IsZero() {
		summary.UpdatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO academic_summaries (student_id, strengths, weaknesses, semester_trend, consistency_score, overall_average, total_semesters, subject_wise_performance, recommended_domain, domain_confidence, updated_at)
VALUES (:student_id, :strengths, :weaknesses, :semester_trend, :consistency_score, :overall_average, :total_semesters, :subject_wise_performance, :recommended_domain, :domain_confidence, :updated_at)
ON CONFLICT (student_id)
DO UPDATE SET strengths = EXCLUDED.strengths, weaknesses = EXCLUDED.weaknesses, semester_trend = EXCLUDED.semester_trend,
              consistency_score = EXCLUDED.consistency_score, overall_average = EXCLUDED.overall_average,
              total_semesters = EXCLUDED.total_semesters, subject_wise_performance = EXCLUDED.subject_wise_performance,
              recommended_domain = EXCLUDED.recommended_domain, domain_confidence = EXCLUDED.domain_confidence,
              updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, summary); err != nil {
		return fmt.Errorf("upsert academic summary: %w", err)
	}
	return nil
}

// Get returns the summary of a student.
func (r *AcademicSummaryRepository) Get(ctx context.Context, studentID string) (*models.AcademicSummary, error) {
	const query = `SELECT student_id, strengths, weaknesses, semester_trend, consistency_score, overall_average, total_semesters, subject_wise_performance, recommended_domain, domain_confidence, updated_at FROM academic_summaries WHERE student_id = $1`
	var summary models.AcademicSummary
	if err := r.db.GetContext(ctx, &summary, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get academic summary: %w", err)
	}
	return &summary, nil
}

// Delete drops the summary of a student.
func (r *AcademicSummaryRepository) Delete(ctx context.Context, studentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM academic_summaries WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("delete academic summary: %w", err)
	}
	return nil
}
