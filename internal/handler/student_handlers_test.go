package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus2career-api/internal/models"
	"github.com/noah-isme/campus2career-api/internal/service"
	"github.com/noah-isme/campus2career-api/pkg/document"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
)

type fakeSummaryService struct {
	summary *models.AcademicSummary
	report  *service.ExportFile
	err     error
}

func (f *fakeSummaryService) Get(context.Context, string) (*models.AcademicSummary, error) {
	return f.summary, f.err
}

func (f *fakeSummaryService) Report(context.Context, string) (*service.ExportFile, error) {
	if f.report == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no academic summary yet")
	}
	return f.report, nil
}

func TestAcademicSummaryHandlerGetReturnsNullWhenMissing(t *testing.T) {
	handler := NewAcademicSummaryHandler(&fakeSummaryService{})

	c, rec := newTestContext(http.MethodGet, "/academic-summary", nil, "")
	withClaims(c, "student-1", models.RoleStudent)
	handler.Get(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)
	assert.JSONEq(t, `null`, string(envelope.Data))
}

func TestAcademicSummaryHandlerReport(t *testing.T) {
	handler := NewAcademicSummaryHandler(&fakeSummaryService{report: &service.ExportFile{
		Filename: "academic-summary-20250101.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3"),
	}})

	c, rec := newTestContext(http.MethodGet, "/academic-summary/report", nil, "")
	withClaims(c, "student-1", models.RoleStudent)
	handler.Report(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.3", rec.Body.String())

	handler = NewAcademicSummaryHandler(&fakeSummaryService{})
	c, rec = newTestContext(http.MethodGet, "/academic-summary/report", nil, "")
	withClaims(c, "student-1", models.RoleStudent)
	handler.Report(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

type fakeResumeService struct {
	lastDoc models.UploadedDocument
	resume  *models.Resume
	err     error
}

func (f *fakeResumeService) Analyze(_ context.Context, _ string, doc models.UploadedDocument) (*models.Resume, error) {
	f.lastDoc = doc
	return f.resume, f.err
}

func (f *fakeResumeService) Get(context.Context, string) (*models.Resume, error) {
	return f.resume, f.err
}

func TestResumeHandlerAnalyze(t *testing.T) {
	svc := &fakeResumeService{resume: &models.Resume{StudentID: "student-1", PredictedDomain: "Data Science"}}
	handler := NewResumeHandler(svc, 1024)

	body, contentType := multipartBody(t, nil, formFile{field: "file", filename: "cv.txt", content: []byte("Python SQL")})
	c, rec := newTestContext(http.MethodPost, "/resume", body, contentType)
	withClaims(c, "student-1", models.RoleStudent)
	handler.Analyze(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, document.MIMEText, svc.lastDoc.MimeType)
	assert.Equal(t, int64(len("Python SQL")), svc.lastDoc.Size)
}

func TestResumeHandlerExtractionFailure(t *testing.T) {
	svc := &fakeResumeService{err: appErrors.Clone(appErrors.ErrExtractionFailed, "document has no text layer")}
	handler := NewResumeHandler(svc, 1024)

	body, contentType := multipartBody(t, nil, formFile{field: "file", filename: "scan.pdf", contentType: "application/pdf", content: []byte("%PDF")})
	c, rec := newTestContext(http.MethodPost, "/resume", body, contentType)
	withClaims(c, "student-1", models.RoleStudent)
	handler.Analyze(c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

type fakeCareerService struct {
	profile *models.CareerProfile
	matches []models.JobMatch
	err     error
	jobID   string
}

func (f *fakeCareerService) Analyze(context.Context, string) (*models.CareerProfile, error) {
	return f.profile, f.err
}

func (f *fakeCareerService) Profile(context.Context, string) (*models.CareerProfile, error) {
	return f.profile, f.err
}

func (f *fakeCareerService) Opportunities(context.Context, string) ([]models.JobMatch, error) {
	return f.matches, f.err
}

func (f *fakeCareerService) JobMatch(_ context.Context, _ string, jobID string) (*models.JobMatch, error) {
	f.jobID = jobID
	return &models.JobMatch{Job: models.Job{ID: jobID}, Match: models.MatchResult{MatchScore: 50}}, f.err
}

func TestCareerHandlerAnalyzeNeedsEvidence(t *testing.T) {
	handler := NewCareerHandler(&fakeCareerService{err: appErrors.Clone(appErrors.ErrValidation, "upload a marksheet or a resume first")})

	c, rec := newTestContext(http.MethodPost, "/career/analyze", nil, "")
	withClaims(c, "student-1", models.RoleStudent)
	handler.Analyze(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCareerHandlerProfileAndMatch(t *testing.T) {
	svc := &fakeCareerService{}
	handler := NewCareerHandler(svc)

	c, rec := newTestContext(http.MethodGet, "/career/profile", nil, "")
	withClaims(c, "student-1", models.RoleStudent)
	handler.Profile(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `null`, string(decodeEnvelope(t, rec).Data))

	c, rec = newTestContext(http.MethodGet, "/jobs/job-7/match", nil, "")
	withClaims(c, "student-1", models.RoleStudent)
	c.AddParam("id", "job-7")
	handler.JobMatch(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "job-7", svc.jobID)
	assert.JSONEq(t, `{"matchScore":50,"matchedSkills":null,"missingSkills":null}`,
		string(extractField(t, decodeEnvelope(t, rec).Data, "match")))
}
