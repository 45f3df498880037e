package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus2career-api/internal/models"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
)

type memoryJobs struct {
	jobs    map[string]*models.Job
	order   []string
	deleted []string
	filter  models.JobFilter
}

func newMemoryJobs(seed ...models.Job) *memoryJobs {
	m := &memoryJobs{jobs: make(map[string]*models.Job)}
	for i := range seed {
		job := seed[i]
		m.jobs[job.ID] = &job
		m.order = append(m.order, job.ID)
	}
	return m
}

func (m *memoryJobs) List(_ context.Context, filter models.JobFilter) ([]models.Job, int, error) {
	m.filter = filter
	var out []models.Job
	for _, id := range m.order {
		if job, ok := m.jobs[id]; ok {
			out = append(out, *job)
		}
	}
	return out, len(out), nil
}

func (m *memoryJobs) ListAll(ctx context.Context) ([]models.Job, error) {
	jobs, _, err := m.List(ctx, models.JobFilter{})
	return jobs, err
}

func (m *memoryJobs) FindByID(_ context.Context, id string) (*models.Job, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	found := *job
	return &found, nil
}

func (m *memoryJobs) Create(_ context.Context, job *models.Job) error {
	job.ID = "job-new"
	stored := *job
	m.jobs[job.ID] = &stored
	m.order = append(m.order, job.ID)
	return nil
}

func (m *memoryJobs) Update(_ context.Context, job *models.Job) error {
	if _, ok := m.jobs[job.ID]; !ok {
		return sql.ErrNoRows
	}
	stored := *job
	m.jobs[job.ID] = &stored
	return nil
}

func (m *memoryJobs) Delete(_ context.Context, id string) error {
	if _, ok := m.jobs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.jobs, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type staticResumePaths map[string][]string

func (s staticResumePaths) ResumePathsByJob(_ context.Context, jobID string) ([]string, error) {
	return s[jobID], nil
}

var (
	recruiter      = Actor{ID: "rec-1", Role: models.RoleRecruiter}
	otherRecruiter = Actor{ID: "rec-2", Role: models.RoleRecruiter}
	admin          = Actor{ID: "admin-1", Role: models.RoleAdmin}
)

func TestJobCreateNormalizesPayload(t *testing.T) {
	repo := newMemoryJobs()
	svc := NewJobService(repo, nil, nil, nil, nil)

	job, err := svc.Create(context.Background(), recruiter.ID, models.JobRequest{
		Title:          "  Data Analyst ",
		Company:        "Acme",
		RequiredSkills: []string{"SQL", " sql", "Python", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "job-new", job.ID)
	assert.Equal(t, "Data Analyst", job.Title)
	assert.Equal(t, recruiter.ID, job.RecruiterID)
	assert.Equal(t, []string{"SQL", "Python"}, []string(job.RequiredSkills))
}

func TestJobCreateValidates(t *testing.T) {
	svc := NewJobService(newMemoryJobs(), nil, nil, nil, nil)
	_, err := svc.Create(context.Background(), recruiter.ID, models.JobRequest{Title: "  "})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestJobUpdateChecksOwnership(t *testing.T) {
	repo := newMemoryJobs(models.Job{ID: "job-1", RecruiterID: recruiter.ID, Title: "Old", Company: "Acme"})
	svc := NewJobService(repo, nil, nil, nil, nil)
	req := models.JobRequest{Title: "New", Company: "Acme"}

	_, err := svc.Update(context.Background(), otherRecruiter, "job-1", req)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	job, err := svc.Update(context.Background(), recruiter, "job-1", req)
	require.NoError(t, err)
	assert.Equal(t, "New", job.Title)

	job, err = svc.Update(context.Background(), admin, "job-1", models.JobRequest{Title: "By admin", Company: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, recruiter.ID, job.RecruiterID)

	_, err = svc.Update(context.Background(), admin, "missing", req)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestJobDeleteRemovesStoredResumes(t *testing.T) {
	repo := newMemoryJobs(models.Job{ID: "job-1", RecruiterID: recruiter.ID})
	blobs := newMemoryStore()
	paths := staticResumePaths{"job-1": {"applications/s1/a.pdf", "applications/s2/b.pdf"}}
	svc := NewJobService(repo, paths, blobs, nil, nil)

	err := svc.Delete(context.Background(), otherRecruiter, "job-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	assert.Empty(t, repo.deleted)

	require.NoError(t, svc.Delete(context.Background(), recruiter, "job-1"))
	assert.Equal(t, []string{"job-1"}, repo.deleted)
	assert.Equal(t, []string{"applications/s1/a.pdf", "applications/s2/b.pdf"}, blobs.deleted)
}

func TestJobListReturnsPagination(t *testing.T) {
	repo := newMemoryJobs(models.Job{ID: "job-1"}, models.Job{ID: "job-2"})
	svc := NewJobService(repo, nil, nil, nil, nil)

	jobs, pagination, err := svc.List(context.Background(), models.JobFilter{Search: "  analyst ", Page: 0})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	assert.Equal(t, "analyst", repo.filter.Search)
	assert.Equal(t, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 2}, pagination)
}
