package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus2career-api/internal/models"
	"github.com/noah-isme/campus2career-api/internal/service"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
	"github.com/noah-isme/campus2career-api/pkg/response"
)

type applicationService interface {
	Apply(ctx context.Context, studentID, jobID string, req models.ApplyRequest) (*models.Application, error)
	Mine(ctx context.Context, studentID string) ([]models.Application, error)
	ForJob(ctx context.Context, actor service.Actor, jobID string) ([]models.Application, error)
	UpdateStatus(ctx context.Context, actor service.Actor, id string, req models.StatusUpdateRequest, meta service.RequestMeta) (*models.Application, error)
	ResumeLink(ctx context.Context, actor service.Actor, id string) (*models.ResumeLink, error)
}

// ApplicationHandler manages job applications.
type ApplicationHandler struct {
	service  applicationService
	maxBytes int64
}

// NewApplicationHandler constructs the handler.
func NewApplicationHandler(svc applicationService, maxBytes int64) *ApplicationHandler {
	return &ApplicationHandler{service: svc, maxBytes: maxBytes}
}

// Apply godoc
// @Summary Apply to a job
// @Tags Applications
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Job ID"
// @Param fullName formData string true "Full name"
// @Param email formData string true "Contact email"
// @Param phone formData string false "Phone"
// @Param resume formData file true "Resume document"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /jobs/{id}/apply [post]
func (h *ApplicationHandler) Apply(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	limitUploadBody(c, h.maxBytes)
	var req models.ApplyRequest
	if err := c.ShouldBind(&req); err != nil {
		if bodyTooLarge(err) {
			response.Error(c, fileTooLarge(h.maxBytes))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid application payload"))
		return
	}
	if _, err := c.FormFile("resume"); err == nil {
		doc, err := formDocument(c, "resume", h.maxBytes)
		if err != nil {
			response.Error(c, err)
			return
		}
		req.Resume = doc
	}

	app, err := h.service.Apply(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, app)
}

// Mine godoc
// @Summary List my applications
// @Tags Applications
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /applications/me [get]
func (h *ApplicationHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	apps, err := h.service.Mine(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, apps, nil)
}

// ForJob godoc
// @Summary List applications for one of my jobs
// @Tags Applications
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /jobs/{id}/applications [get]
func (h *ApplicationHandler) ForJob(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	apps, err := h.service.ForJob(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, apps, nil)
}

// UpdateStatus godoc
// @Summary Move an application to a new status
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body models.StatusUpdateRequest true "Status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /applications/{id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	app, err := h.service.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, app, nil)
}

// ResumeLink godoc
// @Summary Signed download link for an application resume
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /applications/{id}/resume [get]
func (h *ApplicationHandler) ResumeLink(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	link, err := h.service.ResumeLink(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, link, nil)
}
