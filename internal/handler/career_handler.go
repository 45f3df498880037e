package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus2career-api/internal/models"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
	"github.com/noah-isme/campus2career-api/pkg/response"
)

type careerService interface {
	Analyze(ctx context.Context, studentID string) (*models.CareerProfile, error)
	Profile(ctx context.Context, studentID string) (*models.CareerProfile, error)
	Opportunities(ctx context.Context, studentID string) ([]models.JobMatch, error)
	JobMatch(ctx context.Context, studentID, jobID string) (*models.JobMatch, error)
}

// CareerHandler exposes career analysis and job matching for students.
type CareerHandler struct {
	service careerService
}

// NewCareerHandler constructs the handler.
func NewCareerHandler(svc careerService) *CareerHandler {
	return &CareerHandler{service: svc}
}

// Analyze godoc
// @Summary Run a career analysis
// @Description Combines the academic summary and resume into a career profile
// @Tags Career
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Security BearerAuth
// @Router /career/analyze [post]
func (h *CareerHandler) Analyze(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	profile, err := h.service.Analyze(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, profile, nil)
}

// Profile godoc
// @Summary Get my career profile
// @Tags Career
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /career/profile [get]
func (h *CareerHandler) Profile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	profile, err := h.service.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if profile == nil {
		response.Empty(c, "no career analysis yet")
		return
	}

	response.JSON(c, http.StatusOK, profile, nil)
}

// Opportunities godoc
// @Summary Jobs ranked by relevance to my skills
// @Tags Career
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /career/opportunities [get]
func (h *CareerHandler) Opportunities(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	matches, err := h.service.Opportunities(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, matches, nil)
}

// JobMatch godoc
// @Summary Match my skills against a job
// @Tags Career
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /jobs/{id}/match [get]
func (h *CareerHandler) JobMatch(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	match, err := h.service.JobMatch(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, match, nil)
}
