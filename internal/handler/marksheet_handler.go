package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus2career-api/internal/models"
	"github.com/noah-isme/campus2career-api/internal/service"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
	"github.com/noah-isme/campus2career-api/pkg/response"
)

type marksheetService interface {
	Upload(ctx context.Context, studentID string, upload models.MarksheetUpload, meta service.RequestMeta) (*models.MarksheetUploadResult, error)
	List(ctx context.Context, studentID string) ([]models.Marksheet, error)
	Get(ctx context.Context, studentID, id string) (*models.Marksheet, error)
	Delete(ctx context.Context, studentID, id string, meta service.RequestMeta) error
}

// MarksheetHandler serves the student's semester marksheets.
type MarksheetHandler struct {
	service  marksheetService
	maxBytes int64
}

// NewMarksheetHandler constructs the handler. maxBytes bounds how much of an
// upload is buffered.
func NewMarksheetHandler(svc marksheetService, maxBytes int64) *MarksheetHandler {
	return &MarksheetHandler{service: svc, maxBytes: maxBytes}
}

// Upload godoc
// @Summary Upload a semester marksheet
// @Description Extracts subjects from a PDF, DOCX or text marksheet, stores them and refreshes the academic summary
// @Tags Marksheets
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Marksheet document"
// @Param semester formData string false "Semester label overriding the detected one"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /marksheets [post]
func (h *MarksheetHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	limitUploadBody(c, h.maxBytes)
	doc, err := formDocument(c, "file", h.maxBytes)
	if err != nil {
		response.Error(c, err)
		return
	}

	upload := models.MarksheetUpload{
		UploadedDocument: *doc,
		Semester:         strings.TrimSpace(c.PostForm("semester")),
	}
	result, err := h.service.Upload(c.Request.Context(), claims.UserID, upload, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// List godoc
// @Summary List my marksheets
// @Tags Marksheets
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /marksheets [get]
func (h *MarksheetHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	items, err := h.service.List(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get one of my marksheets
// @Tags Marksheets
// @Produce json
// @Param id path string true "Marksheet ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /marksheets/{id} [get]
func (h *MarksheetHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	item, err := h.service.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete one of my marksheets
// @Tags Marksheets
// @Param id path string true "Marksheet ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /marksheets/{id} [delete]
func (h *MarksheetHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("id"), requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
