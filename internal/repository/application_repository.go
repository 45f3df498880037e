package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus2career-api/internal/models"
)

const applicationSelect = `SELECT a.id, a.job_id, a.student_id, a.full_name, a.email, a.phone, a.resume_path, a.status, a.created_at, a.updated_at,
j.title AS job_title, j.company AS job_company
FROM applications a JOIN jobs j ON j.id = a.job_id`

// ApplicationRepository stores job applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts an application. A second application by the same student to
// the same job yields ErrDuplicate.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.Status == "" {
		app.Status = models.ApplicationApplied
	}
	now := time.Now().UTC()
	app.CreatedAt = now
	app.UpdatedAt = now
	const query = `INSERT INTO applications (id, job_id, student_id, full_name, email, phone, resume_path, status, created_at, updated_at)
VALUES (:id, :job_id, :student_id, :full_name, :email, :phone, :resume_path, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// Exists reports whether the student already applied to the job.
func (r *ApplicationRepository) Exists(ctx context.Context, jobID, studentID string) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS (SELECT 1 FROM applications WHERE job_id = $1 AND student_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, jobID, studentID); err != nil {
		return false, fmt.Errorf("check application: %w", err)
	}
	return exists, nil
}

// FindByID returns an application with its job title and company.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	if err := r.db.GetContext(ctx, &app, applicationSelect+` WHERE a.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return &app, nil
}

// ListByStudent returns the applications of a student, newest first.
func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Application, error) {
	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, applicationSelect+` WHERE a.student_id = $1 ORDER BY a.created_at DESC`, studentID); err != nil {
		return nil, fmt.Errorf("list applications by student: %w", err)
	}
	return apps, nil
}

// ListByJob returns the applications received by a job, oldest first.
func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID string) ([]models.Application, error) {
	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, applicationSelect+` WHERE a.job_id = $1 ORDER BY a.created_at ASC`, jobID); err != nil {
		return nil, fmt.Errorf("list applications by job: %w", err)
	}
	return apps, nil
}

// UpdateStatus moves an application to a new status.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE applications SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ResumePathsByStudent lists the stored resume keys of every application of a student.
func (r *ApplicationRepository) ResumePathsByStudent(ctx context.Context, studentID string) ([]string, error) {
	var paths []string
	if err := r.db.SelectContext(ctx, &paths, `SELECT resume_path FROM applications WHERE student_id = $1 AND resume_path <> ''`, studentID); err != nil {
		return nil, fmt.Errorf("list resume paths: %w", err)
	}
	return paths, nil
}

// ResumePathsByJob lists the stored resume keys of every application to a job.
func (r *ApplicationRepository) ResumePathsByJob(ctx context.Context, jobID string) ([]string, error) {
	var paths []string
	if err := r.db.SelectContext(ctx, &paths, `SELECT resume_path FROM applications WHERE job_id = $1 AND resume_path <> ''`, jobID); err != nil {
		return nil, fmt.Errorf("list resume paths: %w", err)
	}
	return paths, nil
}
