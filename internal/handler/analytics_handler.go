package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus2career-api/internal/middleware"
	"github.com/noah-isme/campus2career-api/internal/models"
	"github.com/noah-isme/campus2career-api/internal/service"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
	"github.com/noah-isme/campus2career-api/pkg/response"
)

type dashboardService interface {
	Dashboard(ctx context.Context) (*models.DashboardStats, bool, error)
}

type studentExporter interface {
	StudentPerformance(ctx context.Context, format, domain string) (*service.ExportFile, error)
}

// AnalyticsHandler exposes admin analytics.
type AnalyticsHandler struct {
	analytics dashboardService
	exports   studentExporter
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics dashboardService, exports studentExporter) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, exports: exports}
}

// Dashboard godoc
// @Summary Platform dashboard
// @Description User counts, marksheet volume, top resume domains and application funnel
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/analytics [get]
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	stats, cacheHit, err := h.analytics.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, stats, nil, middleware.ExtractMeta(c))
}

// ExportStudents godoc
// @Summary Export per-student academic performance
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param domain query string false "Only students recommended for this domain"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/analytics/students [get]
func (h *AnalyticsHandler) ExportStudents(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	file, err := h.exports.StudentPerformance(c.Request.Context(), c.Query("format"), c.Query("domain"))
	if err != nil {
		response.Error(c, err)
		return
	}
	sendFile(c, file)
}
