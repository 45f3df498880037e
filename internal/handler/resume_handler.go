package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus2career-api/internal/models"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
	"github.com/noah-isme/campus2career-api/pkg/response"
)

type resumeService interface {
	Analyze(ctx context.Context, studentID string, doc models.UploadedDocument) (*models.Resume, error)
	Get(ctx context.Context, studentID string) (*models.Resume, error)
}

// ResumeHandler serves resume analysis.
type ResumeHandler struct {
	service  resumeService
	maxBytes int64
}

// NewResumeHandler constructs the handler.
func NewResumeHandler(svc resumeService, maxBytes int64) *ResumeHandler {
	return &ResumeHandler{service: svc, maxBytes: maxBytes}
}

// Analyze godoc
// @Summary Upload and analyse my resume
// @Tags Resume
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Resume document"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /resume [post]
func (h *ResumeHandler) Analyze(c *gin.Context) {
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

	resume, err := h.service.Analyze(c.Request.Context(), claims.UserID, *doc)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, resume)
}

// Get godoc
// @Summary Get my analysed resume
// @Tags Resume
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /resume [get]
func (h *ResumeHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	resume, err := h.service.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if resume == nil {
		response.Empty(c, "no resume uploaded yet")
		return
	}

	response.JSON(c, http.StatusOK, resume, nil)
}
