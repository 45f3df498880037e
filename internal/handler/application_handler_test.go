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

type fakeApplicationService struct {
	lastJob    string
	lastReq    models.ApplyRequest
	lastActor  service.Actor
	lastStatus models.StatusUpdateRequest
	err        error
}

func (f *fakeApplicationService) Apply(_ context.Context, studentID, jobID string, req models.ApplyRequest) (*models.Application, error) {
	f.lastJob = jobID
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Application{ID: "app-1", JobID: jobID, StudentID: studentID, Status: models.ApplicationApplied}, nil
}

func (f *fakeApplicationService) Mine(context.Context, string) ([]models.Application, error) {
	return []models.Application{}, f.err
}

func (f *fakeApplicationService) ForJob(_ context.Context, actor service.Actor, jobID string) ([]models.Application, error) {
	f.lastActor = actor
	f.lastJob = jobID
	return nil, f.err
}

func (f *fakeApplicationService) UpdateStatus(_ context.Context, actor service.Actor, id string, req models.StatusUpdateRequest, _ service.RequestMeta) (*models.Application, error) {
	f.lastActor = actor
	f.lastStatus = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Application{ID: id, Status: req.Status}, nil
}

func (f *fakeApplicationService) ResumeLink(_ context.Context, actor service.Actor, id string) (*models.ResumeLink, error) {
	f.lastActor = actor
	if f.err != nil {
		return nil, f.err
	}
	return &models.ResumeLink{URL: "/api/v1/files/token-" + id}, nil
}

func TestApplicationHandlerApplyBindsFormAndResume(t *testing.T) {
	svc := &fakeApplicationService{}
	handler := NewApplicationHandler(svc, 1024)

	body, contentType := multipartBody(t, map[string]string{
		"fullName": "Asha Rao",
		"email":    "asha@example.com",
		"phone":    "+91 90000 00000",
	}, formFile{field: "resume", filename: "cv.pdf", contentType: "application/pdf", content: []byte("%PDF-1.4")})
	c, rec := newTestContext(http.MethodPost, "/jobs/job-1/apply", body, contentType)
	withClaims(c, "student-1", models.RoleStudent)
	c.AddParam("id", "job-1")

	handler.Apply(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "job-1", svc.lastJob)
	assert.Equal(t, "Asha Rao", svc.lastReq.FullName)
	assert.Equal(t, "asha@example.com", svc.lastReq.Email)
	require.NotNil(t, svc.lastReq.Resume)
	assert.Equal(t, "cv.pdf", svc.lastReq.Resume.Filename)
	assert.Equal(t, []byte("%PDF-1.4"), svc.lastReq.Resume.Content)
}

func TestApplicationHandlerApplyConflict(t *testing.T) {
	svc := &fakeApplicationService{err: appErrors.Clone(appErrors.ErrConflict, "already applied to this job")}
	handler := NewApplicationHandler(svc, 1024)

	body, contentType := multipartBody(t, map[string]string{"fullName": "Asha", "email": "asha@example.com"},
		formFile{field: "resume", filename: "cv.txt", contentType: "text/plain", content: []byte("resume")})
	c, rec := newTestContext(http.MethodPost, "/jobs/job-1/apply", body, contentType)
	withClaims(c, "student-1", models.RoleStudent)
	c.AddParam("id", "job-1")

	handler.Apply(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, appErrors.ErrConflict.Code, decodeEnvelope(t, rec).Error.Code)
}

func TestApplicationHandlerApplyCapsRequestBody(t *testing.T) {
	svc := &fakeApplicationService{}
	handler := NewApplicationHandler(svc, 16)

	body, contentType := multipartBody(t, map[string]string{"fullName": "Asha", "email": "asha@example.com"},
		formFile{field: "resume", filename: "cv.pdf", contentType: "application/pdf", content: make([]byte, 2*multipartOverhead)})
	c, rec := newTestContext(http.MethodPost, "/jobs/job-1/apply", body, contentType)
	withClaims(c, "student-1", models.RoleStudent)
	c.AddParam("id", "job-1")

	handler.Apply(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, appErrors.ErrFileTooLarge.Code, decodeEnvelope(t, rec).Error.Code)
	assert.Empty(t, svc.lastReq.FullName)
}

func TestApplicationHandlerUpdateStatusUsesActor(t *testing.T) {
	svc := &fakeApplicationService{}
	handler := NewApplicationHandler(svc, 1024)

	c, rec := newTestContext(http.MethodPatch, "/applications/app-1/status", jsonBody(t, map[string]string{"status": "shortlisted"}), "application/json")
	withClaims(c, "recruiter-1", models.RoleRecruiter)
	c.AddParam("id", "app-1")

	handler.UpdateStatus(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.Actor{ID: "recruiter-1", Role: models.RoleRecruiter}, svc.lastActor)
	assert.Equal(t, models.ApplicationShortlisted, svc.lastStatus.Status)
}

func TestApplicationHandlerUpdateStatusRejectsBadJSON(t *testing.T) {
	handler := NewApplicationHandler(&fakeApplicationService{}, 1024)

	c, rec := newTestContext(http.MethodPatch, "/applications/app-1/status", nil, "application/json")
	withClaims(c, "recruiter-1", models.RoleRecruiter)
	c.AddParam("id", "app-1")

	handler.UpdateStatus(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplicationHandlerResumeLinkForbidden(t *testing.T) {
	svc := &fakeApplicationService{err: appErrors.Clone(appErrors.ErrForbidden, "not allowed to view this resume")}
	handler := NewApplicationHandler(svc, 1024)

	c, rec := newTestContext(http.MethodGet, "/applications/app-1/resume", nil, "")
	withClaims(c, "recruiter-2", models.RoleRecruiter)
	c.AddParam("id", "app-1")

	handler.ResumeLink(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
