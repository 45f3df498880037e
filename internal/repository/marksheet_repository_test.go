package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus2career-api/internal/models"
)

func TestMarksheetUpsertReportsInsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMarksheetRepository(db)

	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO marksheets .* ON CONFLICT \\(student_id, semester\\)").
		WithArgs(sqlmock.AnyArg(), "s1", "Semester 1", sqlmock.AnyArg(), 65.0, "m.pdf", "application/pdf", int64(10), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "inserted"}).AddRow("existing-id", created, false))

	m := &models.Marksheet{
		StudentID:         "s1",
		Semester:          "Semester 1",
		Subjects:          models.Subjects{{Name: "Math", Marks: 90, MaxMarks: 100}, {Name: "History", Marks: 40, MaxMarks: 100}},
		OverallPercentage: 65,
		FileName:          "m.pdf",
		FileType:          "application/pdf",
		FileSize:          10,
	}
	inserted, err := repo.UpsertBySemester(context.Background(), m)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, "existing-id", m.ID)
	assert.Equal(t, created, m.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarksheetListByStudentOrdersByCreation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMarksheetRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "semester", "subjects", "overall_percentage", "file_name", "file_type", "file_size", "uploaded_at", "created_at", "updated_at"}).
		AddRow("m1", "s1", "Semester 1", []byte(`[{"name":"Math","marks":90,"maxMarks":100,"grade":"A"}]`), 90.0, "a.pdf", "application/pdf", 1, now, now, now).
		AddRow("m2", "s1", "Semester 2", nil, 0.0, "b.pdf", "application/pdf", 1, now, now, now)
	mock.ExpectQuery("FROM marksheets WHERE student_id = \\$1 ORDER BY created_at ASC").WithArgs("s1").WillReturnRows(rows)

	sheets, err := repo.ListByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, "Math", sheets[0].Subjects[0].Name)
	assert.Equal(t, "A", sheets[0].Subjects[0].Grade)
	assert.NotNil(t, sheets[1].Subjects)
	assert.Empty(t, sheets[1].Subjects)
}

func TestMarksheetDeleteScopedToOwner(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMarksheetRepository(db)

	mock.ExpectExec("DELETE FROM marksheets WHERE id = \\$1 AND student_id = \\$2").
		WithArgs("m1", "other").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "m1", "other"), sql.ErrNoRows)
}

func TestMarksheetCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewMarksheetRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM marksheets").WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountByStudent(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
