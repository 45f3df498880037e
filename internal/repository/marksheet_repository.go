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

const marksheetColumns = `id, student_id, semester, subjects, overall_percentage, file_name, file_type, file_size, uploaded_at, created_at, updated_at`

// MarksheetRepository persists semester marksheets keyed by (student, semester).
type MarksheetRepository struct {
	db *sqlx.DB
}

// NewMarksheetRepository constructs the repository.
func NewMarksheetRepository(db *sqlx.DB) *MarksheetRepository {
	return &MarksheetRepository{db: db}
}

// UpsertBySemester stores the marksheet, replacing every field of an existing
// row for the same student and semester except id and created_at. It reports
// whether the row was newly inserted and updates m with the stored id and
// creation time.
func (r *MarksheetRepository) UpsertBySemester(ctx context.Context, m *models.Marksheet) (bool, error) {
	now := time.Now().UTC()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.UploadedAt.IsZero() {
		m.UploadedAt = now
	}
	m.CreatedAt = now
	m.UpdatedAt = now

	const query = `INSERT INTO marksheets (id, student_id, semester, subjects, overall_percentage, file_name, file_type, file_size, uploaded_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (student_id, semester)
DO UPDATE SET subjects = EXCLUDED.subjects, overall_percentage = EXCLUDED.overall_percentage,
              file_name = EXCLUDED.file_name, file_type = EXCLUDED.file_type, file_size = EXCLUDED.file_size,
              uploaded_at = EXCLUDED.uploaded_at, updated_at = EXCLUDED.updated_at
RETURNING id, created_at, (xmax = 0) AS inserted`

	var stored struct {
		ID        string    `db:"id"`
		CreatedAt time.Time `db:"created_at"`
		Inserted  bool      `db:"inserted"`
	}
	if err := r.db.GetContext(ctx, &stored, query,
		m.ID, m.StudentID, m.Semester, m.Subjects, m.OverallPercentage,
		m.FileName, m.FileType, m.FileSize, m.UploadedAt, m.CreatedAt, m.UpdatedAt,
	); err != nil {
		return false, fmt.Errorf("upsert marksheet: %w", err)
	}
	m.ID = stored.ID
	m.CreatedAt = stored.CreatedAt
	return stored.Inserted, nil
}

// ListByStudent returns all marksheets of a student in upload order.
func (r *MarksheetRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Marksheet, error) {
	query := `SELECT ` + marksheetColumns + ` FROM marksheets WHERE student_id = $1 ORDER BY created_at ASC, id ASC`
	var sheets []models.Marksheet
	if err := r.db.SelectContext(ctx, &sheets, query, studentID); err != nil {
		return nil, fmt.Errorf("list marksheets: %w", err)
	}
	return sheets, nil
}

// FindByID returns a marksheet by identifier.
func (r *MarksheetRepository) FindByID(ctx context.Context, id string) (*models.Marksheet, error) {
	query := `SELECT ` + marksheetColumns + ` FROM marksheets WHERE id = $1`
	var m models.Marksheet
	if err := r.db.GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find marksheet: %w", err)
	}
	return &m, nil
}

// Delete removes a marksheet owned by studentID.
func (r *MarksheetRepository) Delete(ctx context.Context, id, studentID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM marksheets WHERE id = $1 AND student_id = $2`, id, studentID)
	if err != nil {
		return fmt.Errorf("delete marksheet: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByStudent returns the number of marksheets a student has uploaded.
func (r *MarksheetRepository) CountByStudent(ctx context.Context, studentID string) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM marksheets WHERE student_id = $1`, studentID); err != nil {
		return 0, fmt.Errorf("count marksheets: %w", err)
	}
	return total, nil
}
