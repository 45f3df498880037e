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

// ResumeRepository keeps the latest analysed resume per student.
type ResumeRepository struct {
	db *sqlx.DB
}

// NewResumeRepository constructs the repository.
func NewResumeRepository(db *sqlx.DB) *ResumeRepository {
	return &ResumeRepository{db: db}
}

// Upsert replaces the resume of the student.
func (r *ResumeRepository) Upsert(ctx context.Context, resume *models.Resume) error {
	if resume.AnalyzedAt.IsZero() {
		resume.AnalyzedAt = time.Now().UTC()
	}
	const query = `INSERT INTO resumes (student_id, file_name, file_type, file_size, extracted_text, skills, experience_summary, education, suitable_roles, projects, missing_skills, predicted_domain, domain_confidence, strength_score, analyzed_at)
VALUES (:student_id, :file_name, :file_type, :file_size, :extracted_text, :skills, :experience_summary, :education, :suitable_roles, :projects, :missing_skills, :predicted_domain, :domain_confidence, :strength_score, :analyzed_at)
ON CONFLICT (student_id)
DO UPDATE SET file_name = EXCLUDED.file_name, file_type = EXCLUDED.file_type, file_size = EXCLUDED.file_size,
              extracted_text = EXCLUDED.extracted_text, skills = EXCLUDED.skills, experience_summary = EXCLUDED.experience_summary,
              education = EXCLUDED.education, suitable_roles = EXCLUDED.suitable_roles, projects = EXCLUDED.projects,
              missing_skills = EXCLUDED.missing_skills, predicted_domain = EXCLUDED.predicted_domain,
              domain_confidence = EXCLUDED.domain_confidence, strength_score = EXCLUDED.strength_score,
              analyzed_at = EXCLUDED.analyzed_at`
	if _, err := r.db.NamedExecContext(ctx, query, resume); err != nil {
		return fmt.Errorf("upsert resume: %w", err)
	}
	return nil
}

// Get returns the resume of a student.
func (r *ResumeRepository) Get(ctx context.Context, studentID string) (*models.Resume, error) {
	const query = `SELECT student_id, file_name, file_type, file_size, extracted_text, skills, experience_summary, education, suitable_roles, projects, missing_skills, predicted_domain, domain_confidence, strength_score, analyzed_at FROM resumes WHERE student_id = $1`
	var resume models.Resume
	if err := r.db.GetContext(ctx, &resume, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get resume: %w", err)
	}
	return &resume, nil
}
