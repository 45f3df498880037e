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

// CareerProfileRepository caches the last career analysis per student.
type CareerProfileRepository struct {
	db *sqlx.DB
}

// NewCareerProfileRepository constructs the repository.
func NewCareerProfileRepository(db *sqlx.DB) *CareerProfileRepository {
	return &CareerProfileRepository{db: db}
}

// Upsert replaces the career profile of the student.
func (r *CareerProfileRepository) Upsert(ctx context.Context, profile *models.CareerProfile) error {
	if profile.LastAnalyzed.IsZero() {
		profile.LastAnalyzed = time.Now().UTC()
	}
	const query = `INSERT INTO career_profiles (student_id, career_domains, recommended_roles, skill_gaps, certifications, suggested_projects, learning_roadmap, last_analyzed)
VALUES (:student_id, :career_domains, :recommended_roles, :skill_gaps, :certifications, :suggested_projects, :learning_roadmap, :last_analyzed)
ON CONFLICT (student_id)
DO UPDATE SET career_domains = EXCLUDED.career_domains, recommended_roles = EXCLUDED.recommended_roles,
              skill_gaps = EXCLUDED.skill_gaps, certifications = EXCLUDED.certifications,
              suggested_projects = EXCLUDED.suggested_projects, learning_roadmap = EXCLUDED.learning_roadmap,
              last_analyzed = EXCLUDED.last_analyzed`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("upsert career profile: %w", err)
	}
	return nil
}

// Get returns the career profile of a student.
func (r *CareerProfileRepository) Get(ctx context.Context, studentID string) (*models.CareerProfile, error) {
	const query = `SELECT student_id, career_domains, recommended_roles, skill_gaps, certifications, suggested_projects, learning_roadmap, last_analyzed FROM career_profiles WHERE student_id = $1`
	var profile models.CareerProfile
	if err := r.db.GetContext(ctx, &profile, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get career profile: %w", err)
	}
	return &profile, nil
}
