package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus2career-api/internal/models"
	"github.com/noah-isme/campus2career-api/internal/service"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
	"github.com/noah-isme/campus2career-api/pkg/response"
)

type academicSummaryService interface {
	Get(ctx context.Context, studentID string) (*models.AcademicSummary, error)
	Report(ctx context.Context, studentID string) (*service.ExportFile, error)
}

// AcademicSummaryHandler exposes the aggregated academic record.
type AcademicSummaryHandler struct {
	service academicSummaryService
}

// NewAcademicSummaryHandler constructs the handler.
func NewAcademicSummaryHandler(svc academicSummaryService) *AcademicSummaryHandler {
	return &AcademicSummaryHandler{service: svc}
}

// Get godoc
// @Summary Get my academic summary
// @Description Returns data null until the first marksheet is uploaded
// @Tags Academic
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /academic-summary [get]
func (h *AcademicSummaryHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	summary, err := h.service.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if summary == nil {
		response.Empty(c, "no academic summary yet")
		return
	}

	response.JSON(c, http.StatusOK, summary, nil)
}

// Report godoc
// @Summary Download my academic summary as PDF
// @Tags Academic
// @Produce application/pdf
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /academic-summary/report [get]
func (h *AcademicSummaryHandler) Report(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	file, err := h.service.Report(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	sendFile(c, file)
}

func sendFile(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
