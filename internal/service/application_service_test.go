package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus2career-api/internal/models"
	"github.com/noah-isme/campus2career-api/internal/repository"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
)

type memoryApplications struct {
	apps      []models.Application
	createErr error
	nextID    int
}

func (m *memoryApplications) Create(_ context.Context, app *models.Application) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	app.ID = "app-" + strconv.Itoa(m.nextID)
	m.apps = append(m.apps, *app)
	return nil
}

func (m *memoryApplications) Exists(_ context.Context, jobID, studentID string) (bool, error) {
	for _, a := range m.apps {
		if a.JobID == jobID && a.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryApplications) FindByID(_ context.Context, id string) (*models.Application, error) {
	for _, a := range m.apps {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryApplications) ListByStudent(_ context.Context, studentID string) ([]models.Application, error) {
	var out []models.Application
	for _, a := range m.apps {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryApplications) ListByJob(_ context.Context, jobID string) ([]models.Application, error) {
	var out []models.Application
	for _, a := range m.apps {
		if a.JobID == jobID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryApplications) UpdateStatus(_ context.Context, id string, status models.ApplicationStatus) error {
	for i := range m.apps {
		if m.apps[i].ID == id {
			m.apps[i].Status = status
			return nil
		}
	}
	return sql.ErrNoRows
}

type applicationFixture struct {
	svc   *ApplicationService
	apps  *memoryApplications
	blobs *memoryStore
	audit *recordingAudit
	cache *recordingInvalidator
}

func newApplicationFixture() *applicationFixture {
	f := &applicationFixture{
		apps:  &memoryApplications{},
		blobs: newMemoryStore(),
		audit: &recordingAudit{},
		cache: &recordingInvalidator{},
	}
	jobs := newMemoryJobs(models.Job{ID: "job-1", RecruiterID: recruiter.ID, Title: "Data Analyst", Company: "Acme"})
	f.svc = NewApplicationService(ApplicationServiceParams{
		Apps:  f.apps,
		Jobs:  jobs,
		Store: f.blobs,
		Audit: f.audit,
		Cache: f.cache,
	})
	return f
}

func applyRequest() models.ApplyRequest {
	return models.ApplyRequest{
		FullName: " Jane Doe ",
		Email:    "Jane@Example.com",
		Phone:    "+62 811",
		Resume: &models.UploadedDocument{
			Filename: "cv.pdf",
			MimeType: "application/pdf",
			Size:     9,
			Content:  []byte("%PDF-1.4\n"),
		},
	}
}

func TestApplyStoresResumeAndApplication(t *testing.T) {
	f := newApplicationFixture()

	app, err := f.svc.Apply(context.Background(), "student-1", "job-1", applyRequest())
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationApplied, app.Status)
	assert.Equal(t, "jane@example.com", app.Email)
	assert.Equal(t, "Jane Doe", app.FullName)
	assert.Equal(t, "Data Analyst", app.JobTitle)
	assert.True(t, strings.HasPrefix(app.ResumePath, "applications/student-1/"))
	assert.True(t, strings.HasSuffix(app.ResumePath, ".pdf"))
	assert.Equal(t, []byte("%PDF-1.4\n"), f.blobs.objects[app.ResumePath])
	assert.Equal(t, []string{analyticsCachePattern}, f.cache.patterns)
}

func TestApplyRejectsDuplicates(t *testing.T) {
	f := newApplicationFixture()
	_, err := f.svc.Apply(context.Background(), "student-1", "job-1", applyRequest())
	require.NoError(t, err)

	_, err = f.svc.Apply(context.Background(), "student-1", "job-1", applyRequest())
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Len(t, f.blobs.objects, 1)
}

func TestApplyCleansUpWhenInsertFails(t *testing.T) {
	f := newApplicationFixture()
	f.apps.createErr = repository.ErrDuplicate

	_, err := f.svc.Apply(context.Background(), "student-1", "job-1", applyRequest())
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Empty(t, f.blobs.objects)
	require.Len(t, f.blobs.deleted, 1)

	f.apps.createErr = errors.New("db down")
	_, err = f.svc.Apply(context.Background(), "student-1", "job-1", applyRequest())
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
	assert.Empty(t, f.blobs.objects)
}

func TestApplyValidation(t *testing.T) {
	f := newApplicationFixture()

	req := applyRequest()
	req.Email = "not-an-email"
	_, err := f.svc.Apply(context.Background(), "student-1", "job-1", req)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	req = applyRequest()
	req.Resume = nil
	_, err = f.svc.Apply(context.Background(), "student-1", "job-1", req)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	req = applyRequest()
	req.Resume.MimeType = "image/png"
	_, err = f.svc.Apply(context.Background(), "student-1", "job-1", req)
	assert.True(t, appErrors.Is(err, appErrors.ErrUnsupportedFormat))

	_, err = f.svc.Apply(context.Background(), "student-1", "job-404", applyRequest())
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	assert.Empty(t, f.blobs.objects)
}

func TestApplicationStatusFlow(t *testing.T) {
	f := newApplicationFixture()
	app, err := f.svc.Apply(context.Background(), "student-1", "job-1", applyRequest())
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), otherRecruiter, app.ID, models.StatusUpdateRequest{Status: "shortlisted"}, RequestMeta{})
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = f.svc.UpdateStatus(context.Background(), recruiter, app.ID, models.StatusUpdateRequest{Status: "hired"}, RequestMeta{})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	updated, err := f.svc.UpdateStatus(context.Background(), recruiter, app.ID, models.StatusUpdateRequest{Status: " Shortlisted "}, RequestMeta{IP: "1.2.3.4"})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationShortlisted, updated.Status)
	require.Len(t, f.audit.logs, 1)
	assert.Equal(t, models.AuditActionApplicationMove, f.audit.logs[0].Action)
	assert.JSONEq(t, `{"status":"applied"}`, string(f.audit.logs[0].OldValues))

	mine, err := f.svc.Mine(context.Background(), "student-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.ApplicationShortlisted, mine[0].Status)

	_, err = f.svc.ForJob(context.Background(), otherRecruiter, "job-1")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
	received, err := f.svc.ForJob(context.Background(), admin, "job-1")
	require.NoError(t, err)
	assert.Len(t, received, 1)
}

func TestResumeLinkAccess(t *testing.T) {
	f := newApplicationFixture()
	app, err := f.svc.Apply(context.Background(), "student-1", "job-1", applyRequest())
	require.NoError(t, err)

	link, err := f.svc.ResumeLink(context.Background(), recruiter, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/"+app.ID+"/"+app.ResumePath, link.URL)

	_, err = f.svc.ResumeLink(context.Background(), Actor{ID: "student-1", Role: models.RoleStudent}, app.ID)
	require.NoError(t, err)

	_, err = f.svc.ResumeLink(context.Background(), Actor{ID: "student-2", Role: models.RoleStudent}, app.ID)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = f.svc.ResumeLink(context.Background(), admin, "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
