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

type fakeMarksheetService struct {
	lastStudent string
	lastUpload  models.MarksheetUpload
	lastMeta    service.RequestMeta
	result      *models.MarksheetUploadResult
	items       []models.Marksheet
	err         error
	deleted     string
}

func (f *fakeMarksheetService) Upload(_ context.Context, studentID string, upload models.MarksheetUpload, meta service.RequestMeta) (*models.MarksheetUploadResult, error) {
	f.lastStudent = studentID
	f.lastUpload = upload
	f.lastMeta = meta
	return f.result, f.err
}

func (f *fakeMarksheetService) List(_ context.Context, studentID string) ([]models.Marksheet, error) {
	f.lastStudent = studentID
	return f.items, f.err
}

func (f *fakeMarksheetService) Get(_ context.Context, studentID, id string) (*models.Marksheet, error) {
	f.lastStudent = studentID
	for i := range f.items {
		if f.items[i].ID == id {
			return &f.items[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "marksheet not found")
}

func (f *fakeMarksheetService) Delete(_ context.Context, studentID, id string, _ service.RequestMeta) error {
	f.lastStudent = studentID
	f.deleted = id
	return f.err
}

func TestMarksheetHandlerUploadPassesFileAndSemester(t *testing.T) {
	svc := &fakeMarksheetService{result: &models.MarksheetUploadResult{
		Marksheet: &models.Marksheet{ID: "m-1", Semester: "Semester 3"},
	}}
	handler := NewMarksheetHandler(svc, 1024)

	body, contentType := multipartBody(t, map[string]string{"semester": " sem 3 "}, formFile{
		field:       "file",
		filename:    "s3.docx",
		contentType: "application/octet-stream",
		content:     []byte("fake docx bytes"),
	})
	c, rec := newTestContext(http.MethodPost, "/marksheets", body, contentType)
	c.Request.Header.Set("User-Agent", "test-agent")
	withClaims(c, "student-1", models.RoleStudent)

	handler.Upload(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "student-1", svc.lastStudent)
	assert.Equal(t, "sem 3", svc.lastUpload.Semester)
	assert.Equal(t, "s3.docx", svc.lastUpload.Filename)
	assert.Equal(t, document.MIMEDOCX, svc.lastUpload.MimeType)
	assert.Equal(t, []byte("fake docx bytes"), svc.lastUpload.Content)
	assert.Equal(t, "test-agent", svc.lastMeta.UserAgent)
}

func TestMarksheetHandlerUploadSkipsBufferingOversizedFiles(t *testing.T) {
	svc := &fakeMarksheetService{err: appErrors.Clone(appErrors.ErrFileTooLarge, "too big")}
	handler := NewMarksheetHandler(svc, 4)

	body, contentType := multipartBody(t, nil, formFile{
		field: "file", filename: "big.pdf", contentType: "application/pdf", content: []byte("0123456789"),
	})
	c, rec := newTestContext(http.MethodPost, "/marksheets", body, contentType)
	withClaims(c, "student-1", models.RoleStudent)

	handler.Upload(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, svc.lastUpload.Content)
	assert.Equal(t, int64(10), svc.lastUpload.Size)
	assert.Equal(t, appErrors.ErrFileTooLarge.Code, decodeEnvelope(t, rec).Error.Code)
}

func TestMarksheetHandlerUploadCapsRequestBody(t *testing.T) {
	svc := &fakeMarksheetService{}
	handler := NewMarksheetHandler(svc, 16)

	body, contentType := multipartBody(t, map[string]string{"semester": "Semester 1"}, formFile{
		field: "file", filename: "huge.pdf", contentType: "application/pdf", content: make([]byte, 2*multipartOverhead),
	})
	c, rec := newTestContext(http.MethodPost, "/marksheets", body, contentType)
	withClaims(c, "student-1", models.RoleStudent)

	handler.Upload(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, appErrors.ErrFileTooLarge.Code, decodeEnvelope(t, rec).Error.Code)
	assert.Empty(t, svc.lastStudent)
}

func TestMarksheetHandlerUploadRequiresFile(t *testing.T) {
	svc := &fakeMarksheetService{}
	handler := NewMarksheetHandler(svc, 1024)

	body, contentType := multipartBody(t, map[string]string{"semester": "Semester 1"})
	c, rec := newTestContext(http.MethodPost, "/marksheets", body, contentType)
	withClaims(c, "student-1", models.RoleStudent)

	handler.Upload(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.lastStudent)
}

func TestMarksheetHandlerRequiresClaims(t *testing.T) {
	handler := NewMarksheetHandler(&fakeMarksheetService{}, 1024)
	c, rec := newTestContext(http.MethodGet, "/marksheets", nil, "")

	handler.List(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMarksheetHandlerGetAndDelete(t *testing.T) {
	svc := &fakeMarksheetService{items: []models.Marksheet{{ID: "m-1", StudentID: "student-1"}}}
	handler := NewMarksheetHandler(svc, 1024)

	c, rec := newTestContext(http.MethodGet, "/marksheets/m-2", nil, "")
	withClaims(c, "student-1", models.RoleStudent)
	c.AddParam("id", "m-2")
	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, _ = newTestContext(http.MethodDelete, "/marksheets/m-1", nil, "")
	withClaims(c, "student-1", models.RoleStudent)
	c.AddParam("id", "m-1")
	handler.Delete(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "m-1", svc.deleted)
}
