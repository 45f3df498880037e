package router

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus2career-api/internal/handler"
	"github.com/noah-isme/campus2career-api/internal/middleware"
	"github.com/noah-isme/campus2career-api/internal/models"
)

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Auth            *handler.AuthHandler
	Users           *handler.UserHandler
	Marksheets      *handler.MarksheetHandler
	AcademicSummary *handler.AcademicSummaryHandler
	Resume          *handler.ResumeHandler
	Career          *handler.CareerHandler
	Jobs            *handler.JobHandler
	Applications    *handler.ApplicationHandler
	Analytics       *handler.AnalyticsHandler
	Files           *handler.FileHandler
}

// Options carries the cross-cutting dependencies of the routes.
type Options struct {
	Tokens middleware.TokenValidator
	Audit  middleware.AuditWriter
}

// RegisterRoutes mounts the API on group.
func RegisterRoutes(api *gin.RouterGroup, h Handlers, opts Options) {
	auth := middleware.JWT(opts.Tokens)
	student := middleware.RequireRoles(models.RoleStudent)
	recruiter := middleware.RequireRoles(models.RoleRecruiter)
	recruiterOrAdmin := middleware.RequireRoles(models.RoleRecruiter, models.RoleAdmin)
	admin := middleware.RequireRoles(models.RoleAdmin)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.POST("/logout", auth, h.Auth.Logout)
	authGroup.GET("/me", auth, h.Auth.Me)
	authGroup.POST("/change-password", auth, h.Auth.ChangePassword)

	marksheets := api.Group("/marksheets", auth, student)
	marksheets.POST("", h.Marksheets.Upload)
	marksheets.GET("", h.Marksheets.List)
	marksheets.GET("/:id", h.Marksheets.Get)
	marksheets.DELETE("/:id", h.Marksheets.Delete)

	summary := api.Group("/academic-summary", auth, student)
	summary.GET("", h.AcademicSummary.Get)
	summary.GET("/report", h.AcademicSummary.Report)

	resume := api.Group("/resume", auth, student)
	resume.POST("", h.Resume.Analyze)
	resume.GET("", h.Resume.Get)

	career := api.Group("/career", auth, student)
	career.POST("/analyze", h.Career.Analyze)
	career.GET("/profile", h.Career.Profile)
	career.GET("/opportunities", h.Career.Opportunities)

	jobs := api.Group("/jobs")
	jobs.GET("", middleware.OptionalJWT(opts.Tokens), h.Jobs.List)
	jobs.GET("/:id", h.Jobs.Get)
	jobs.POST("", auth, recruiter, h.Jobs.Create)
	jobs.PUT("/:id", auth, recruiterOrAdmin, h.Jobs.Update)
	jobs.DELETE("/:id", auth, recruiterOrAdmin, h.Jobs.Delete)
	jobs.GET("/:id/match", auth, student, h.Career.JobMatch)
	jobs.POST("/:id/apply", auth, student, h.Applications.Apply)
	jobs.GET("/:id/applications", auth, recruiterOrAdmin, h.Applications.ForJob)

	applications := api.Group("/applications", auth)
	applications.GET("/me", student, h.Applications.Mine)
	applications.PATCH("/:id/status", recruiterOrAdmin, h.Applications.UpdateStatus)
	applications.GET("/:id/resume", h.Applications.ResumeLink)

	adminGroup := api.Group("/admin", auth, admin)
	adminGroup.GET("/users", h.Users.List)
	adminGroup.DELETE("/users/:id", h.Users.Delete)
	adminGroup.GET("/analytics", middleware.WithResponseMeta(), h.Analytics.Dashboard)
	adminGroup.GET("/analytics/students", middleware.Audit(opts.Audit, "EXPORT_STUDENTS", "analytics"), h.Analytics.ExportStudents)

	if h.Files != nil {
		api.GET("/files/:token", h.Files.Download)
	}
}
