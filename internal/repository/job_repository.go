package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus2career-api/internal/models"
)

const jobColumns = `id, recruiter_id, title, company, location, salary, description, required_skills, created_at, updated_at`

// JobRepository manages job postings.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository constructs the repository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// List returns a page of jobs, newest first, with the total count.
func (r *JobRepository) List(ctx context.Context, filter models.JobFilter) ([]models.Job, int, error) {
	where, args := jobConditions(filter)
	page, pageSize := models.NormalizePage(filter.Page, filter.PageSize)

	listQuery := fmt.Sprintf("SELECT %s FROM jobs%s ORDER BY created_at DESC, id ASC LIMIT %d OFFSET %d", jobColumns, where, pageSize, (page-1)*pageSize)
	var jobs []models.Job
	if err := r.db.SelectContext(ctx, &jobs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM jobs"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}
	return jobs, total, nil
}

// ListAll returns every job in creation order. Used for opportunity ranking.
func (r *JobRepository) ListAll(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	if err := r.db.SelectContext(ctx, &jobs, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at ASC, id ASC`); err != nil {
		return nil, fmt.Errorf("list all jobs: %w", err)
	}
	return jobs, nil
}

// FindByID returns a job by identifier.
func (r *JobRepository) FindByID(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := r.db.GetContext(ctx, &job, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find job: %w", err)
	}
	return &job, nil
}

// Create inserts a job.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	const query = `INSERT INTO jobs (id, recruiter_id, title, company, location, salary, description, required_skills, created_at, updated_at)
VALUES (:id, :recruiter_id, :title, :company, :location, :salary, :description, :required_skills, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of a job.
func (r *JobRepository) Update(ctx context.Context, job *models.Job) error {
	job.UpdatedAt = time.Now().UTC()
	const query = `UPDATE jobs SET title = :title, company = :company, location = :location, salary = :salary,
description = :description, required_skills = :required_skills, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, job)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a job and, through the cascade, its applications.
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func jobConditions(filter models.JobFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	if filter.RecruiterID != "" {
		args = append(args, filter.RecruiterID)
		conditions = append(conditions, fmt.Sprintf("recruiter_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(company) LIKE $%d OR LOWER(location) LIKE $%d)", n, n, n))
	}
	if filter.Skill != "" {
		args = append(args, strings.ToLower(strings.TrimSpace(filter.Skill)))
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(required_skills) s WHERE LOWER(s) = $%d)", len(args)))
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
