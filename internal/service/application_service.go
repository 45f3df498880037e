package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus2career-api/internal/models"
	"github.com/noah-isme/campus2career-api/internal/repository"
	"github.com/noah-isme/campus2career-api/pkg/document"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
	"github.com/noah-isme/campus2career-api/pkg/storage"
)

type applicationStore interface {
	Create(ctx context.Context, app *models.Application) error
	Exists(ctx context.Context, jobID, studentID string) (bool, error)
	FindByID(ctx context.Context, id string) (*models.Application, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Application, error)
	ListByJob(ctx context.Context, jobID string) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error
}

type jobFinder interface {
	FindByID(ctx context.Context, id string) (*models.Job, error)
}

// ApplicationService handles job applications and their stored resumes.
type ApplicationService struct {
	apps      applicationStore
	jobs      jobFinder
	store     storage.Store
	audit     auditWriter
	cache     cacheInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	policy    UploadPolicy
	logger    *zap.Logger
}

// ApplicationServiceParams groups constructor dependencies.
type ApplicationServiceParams struct {
	Apps      applicationStore
	Jobs      jobFinder
	Store     storage.Store
	Audit     auditWriter
	Cache     cacheInvalidator
	Metrics   *MetricsService
	Validator *validator.Validate
	Policy    UploadPolicy
	Logger    *zap.Logger
}

// NewApplicationService constructs an ApplicationService.
func NewApplicationService(params ApplicationServiceParams) *ApplicationService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		apps:      params.Apps,
		jobs:      params.Jobs,
		store:     params.Store,
		audit:     params.Audit,
		cache:     params.Cache,
		metrics:   params.Metrics,
		validator: validate,
		policy:    params.Policy.normalized(),
		logger:    logger,
	}
}

// Apply stores the resume and records an application of the student to the job.
// The stored resume is removed again when the application cannot be saved.
func (s *ApplicationService) Apply(ctx context.Context, studentID, jobID string, req models.ApplyRequest) (app *models.Application, err error) {
	defer func() { s.metrics.ObserveUpload(UploadKindApplication, uploadOutcome(err)) }()

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}
	if req.Resume == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "resume file is required")
	}
	if err := s.policy.Check(*req.Resume); err != nil {
		return nil, err
	}
	job, err := s.findJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	exists, err := s.apps.Exists(ctx, job.ID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check application")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "already applied to this job")
	}

	mimeType := document.NormalizeMIME(req.Resume.MimeType)
	key := fmt.Sprintf("applications/%s/%s%s", studentID, uuid.NewString(), resumeExtension(mimeType))
	if err := s.store.Put(ctx, key, bytes.NewReader(req.Resume.Content), int64(len(req.Resume.Content)), mimeType); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store resume")
	}

	app = &models.Application{
		JobID:      job.ID,
		StudentID:  studentID,
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		ResumePath: key,
		Status:     models.ApplicationApplied,
		JobTitle:   job.Title,
		JobCompany: job.Company,
	}
	if err := s.apps.Create(ctx, app); err != nil {
		s.discard(ctx, key)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "already applied to this job")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}
	s.invalidate(ctx)
	s.logger.Info("application submitted", zap.String("application_id", app.ID), zap.String("job_id", job.ID), zap.String("student_id", studentID))
	return app, nil
}

// Mine lists the applications of a student, newest first.
func (s *ApplicationService) Mine(ctx context.Context, studentID string) ([]models.Application, error) {
	apps, err := s.apps.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	if apps == nil {
		apps = []models.Application{}
	}
	return apps, nil
}

// ForJob lists the applications to a job for its recruiter or an admin.
func (s *ApplicationService) ForJob(ctx context.Context, actor Actor, jobID string) ([]models.Application, error) {
	job, err := s.findJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.RecruiterID != actor.ID && !actor.isAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "job belongs to another recruiter")
	}
	apps, err := s.apps.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	if apps == nil {
		apps = []models.Application{}
	}
	return apps, nil
}

// UpdateStatus moves an application to one of the fixed statuses.
func (s *ApplicationService) UpdateStatus(ctx context.Context, actor Actor, id string, req models.StatusUpdateRequest, meta RequestMeta) (*models.Application, error) {
	req.Status = models.ApplicationStatus(strings.ToLower(strings.TrimSpace(string(req.Status))))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application status")
	}
	app, err := s.findApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	job, err := s.findJob(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if job.RecruiterID != actor.ID && !actor.isAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "job belongs to another recruiter")
	}
	if app.Status == req.Status {
		return app, nil
	}

	previous := app.Status
	if err := s.apps.UpdateStatus(ctx, app.ID, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application")
	}
	app.Status = req.Status
	s.invalidate(ctx)

	if s.audit != nil {
		oldValues, _ := json.Marshal(map[string]string{"status": string(previous)})
		newValues, _ := json.Marshal(map[string]string{"status": string(req.Status)})
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &actor.ID,
			Action:     models.AuditActionApplicationMove,
			Resource:   "applications",
			ResourceID: &app.ID,
			OldValues:  oldValues,
			NewValues:  newValues,
			IPAddress:  meta.IP,
			UserAgent:  meta.UserAgent,
		}); err != nil {
			s.logger.Warn("failed to record application audit log", zap.Error(err))
		}
	}
	return app, nil
}

// ResumeLink returns a time-limited link to the resume of an application. The
// applicant, the job's recruiter and admins may request it.
func (s *ApplicationService) ResumeLink(ctx context.Context, actor Actor, id string) (*models.ResumeLink, error) {
	app, err := s.findApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.StudentID != actor.ID && !actor.isAdmin() {
		job, err := s.findJob(ctx, app.JobID)
		if err != nil {
			return nil, err
		}
		if job.RecruiterID != actor.ID {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to view this resume")
		}
	}
	if app.ResumePath == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "application has no stored resume")
	}
	url, expiresAt, err := s.store.DownloadURL(ctx, app.ID, app.ResumePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign resume link")
	}
	return &models.ResumeLink{URL: url, ExpiresAt: expiresAt}, nil
}

func (s *ApplicationService) findJob(ctx context.Context, id string) (*models.Job, error) {
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	return job, nil
}

func (s *ApplicationService) findApplication(ctx context.Context, id string) (*models.Application, error) {
	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return app, nil
}

func (s *ApplicationService) discard(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to remove orphaned resume", zap.String("key", key), zap.Error(err))
	}
}

func (s *ApplicationService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, analyticsCachePattern); err != nil {
		s.logger.Warn("failed to invalidate analytics cache", zap.Error(err))
	}
}

func resumeExtension(mimeType string) string {
	switch mimeType {
	case document.MIMEPDF:
		return ".pdf"
	case document.MIMEDOCX:
		return ".docx"
	default:
		return ".txt"
	}
}
