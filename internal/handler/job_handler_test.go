package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus2career-api/internal/models"
	"github.com/noah-isme/campus2career-api/internal/service"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
)

type fakeJobService struct {
	lastFilter models.JobFilter
	lastActor  service.Actor
	lastReq    models.JobRequest
	err        error
}

func (f *fakeJobService) List(_ context.Context, filter models.JobFilter) ([]models.Job, *models.Pagination, error) {
	f.lastFilter = filter
	return []models.Job{{ID: "job-1"}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, f.err
}

func (f *fakeJobService) Get(_ context.Context, id string) (*models.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Job{ID: id}, nil
}

func (f *fakeJobService) Create(_ context.Context, recruiterID string, req models.JobRequest) (*models.Job, error) {
	f.lastReq = req
	return &models.Job{ID: "job-9", RecruiterID: recruiterID, Title: req.Title}, f.err
}

func (f *fakeJobService) Update(_ context.Context, actor service.Actor, id string, req models.JobRequest) (*models.Job, error) {
	f.lastActor = actor
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Job{ID: id, Title: req.Title}, nil
}

func (f *fakeJobService) Delete(_ context.Context, actor service.Actor, _ string) error {
	f.lastActor = actor
	return f.err
}

func TestJobHandlerListParsesQuery(t *testing.T) {
	svc := &fakeJobService{}
	handler := NewJobHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/jobs?search=go&skill=docker&page=2&pageSize=5", nil, "")
	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.JobFilter{Search: "go", Skill: "docker", Page: 2, PageSize: 5}, svc.lastFilter)
}

func TestJobHandlerListMineNeedsToken(t *testing.T) {
	svc := &fakeJobService{}
	handler := NewJobHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/jobs?mine=true", nil, "")
	handler.List(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/jobs?mine=true", nil, "")
	withClaims(c, "recruiter-1", models.RoleRecruiter)
	handler.List(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "recruiter-1", svc.lastFilter.RecruiterID)
}

func TestJobHandlerCreate(t *testing.T) {
	svc := &fakeJobService{}
	handler := NewJobHandler(svc)

	payload := map[string]interface{}{"title": "Backend Engineer", "company": "Acme", "requiredSkills": []string{"Go", "SQL"}}
	c, rec := newTestContext(http.MethodPost, "/jobs", jsonBody(t, payload), "application/json")
	withClaims(c, "recruiter-1", models.RoleRecruiter)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Backend Engineer", svc.lastReq.Title)
	assert.JSONEq(t, `"recruiter-1"`, string(extractField(t, decodeEnvelope(t, rec).Data, "recruiterId")))
}

func TestJobHandlerUpdateForbidden(t *testing.T) {
	svc := &fakeJobService{err: appErrors.Clone(appErrors.ErrForbidden, "not your job")}
	handler := NewJobHandler(svc)

	c, rec := newTestContext(http.MethodPut, "/jobs/job-1", jsonBody(t, map[string]string{"title": "x", "company": "y"}), "application/json")
	withClaims(c, "recruiter-2", models.RoleRecruiter)
	c.AddParam("id", "job-1")

	handler.Update(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "recruiter-2", svc.lastActor.ID)
}

func TestJobHandlerGetNotFound(t *testing.T) {
	handler := NewJobHandler(&fakeJobService{err: appErrors.Clone(appErrors.ErrNotFound, "job not found")})

	c, rec := newTestContext(http.MethodGet, "/jobs/nope", nil, "")
	c.AddParam("id", "nope")
	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
