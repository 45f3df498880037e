package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/campus2career-api/internal/models"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
)

// Actor is the authenticated caller of an ownership-checked operation.
type Actor struct {
	ID   string
	Role models.UserRole
}

func (a Actor) isAdmin() bool {
	return a.Role == models.RoleAdmin
}

type jobStore interface {
	List(ctx context.Context, filter models.JobFilter) ([]models.Job, int, error)
	FindByID(ctx context.Context, id string) (*models.Job, error)
	Create(ctx context.Context, job *models.Job) error
	Update(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, id string) error
}

type jobResumePathLister interface {
	ResumePathsByJob(ctx context.Context, jobID string) ([]string, error)
}

// JobService manages job postings.
type JobService struct {
	repo      jobStore
	apps      jobResumePathLister
	blobs     blobDeleter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewJobService creates an instance of JobService.
func NewJobService(repo jobStore, apps jobResumePathLister, blobs blobDeleter, validate *validator.Validate, logger *zap.Logger) *JobService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobService{repo: repo, apps: apps, blobs: blobs, validator: validate, logger: logger}
}

// List returns a page of jobs.
func (s *JobService) List(ctx context.Context, filter models.JobFilter) ([]models.Job, *models.Pagination, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Skill = strings.TrimSpace(filter.Skill)
	jobs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list jobs")
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	page, pageSize := models.NormalizePage(filter.Page, filter.PageSize)
	return jobs, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a job by id.
func (s *JobService) Get(ctx context.Context, id string) (*models.Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	return job, nil
}

// Create publishes a job owned by the recruiter.
func (s *JobService) Create(ctx context.Context, recruiterID string, req models.JobRequest) (*models.Job, error) {
	req = normalizeJobRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid job payload")
	}
	job := &models.Job{RecruiterID: recruiterID}
	applyJobRequest(job, req)
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create job")
	}
	s.logger.Info("job created", zap.String("job_id", job.ID), zap.String("recruiter_id", recruiterID))
	return job, nil
}

// Update replaces the editable fields of a job. Only the owner or an admin may edit it.
func (s *JobService) Update(ctx context.Context, actor Actor, id string, req models.JobRequest) (*models.Job, error) {
	req = normalizeJobRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid job payload")
	}
	job, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	applyJobRequest(job, req)
	if err := s.repo.Update(ctx, job); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update job")
	}
	return job, nil
}

// Delete removes a job with its applications and their stored resumes.
func (s *JobService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	var paths []string
	if s.apps != nil {
		var err error
		if paths, err = s.apps.ResumePathsByJob(ctx, id); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list stored resumes")
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete job")
	}
	if s.blobs != nil {
		for _, path := range paths {
			if err := s.blobs.Delete(ctx, path); err != nil {
				s.logger.Warn("failed to remove stored resume", zap.String("key", path), zap.Error(err))
			}
		}
	}
	return nil
}

func (s *JobService) owned(ctx context.Context, actor Actor, id string) (*models.Job, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.RecruiterID != actor.ID && !actor.isAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "job belongs to another recruiter")
	}
	return job, nil
}

func normalizeJobRequest(req models.JobRequest) models.JobRequest {
	req.Title = strings.TrimSpace(req.Title)
	req.Company = strings.TrimSpace(req.Company)
	req.Location = strings.TrimSpace(req.Location)
	req.Salary = strings.TrimSpace(req.Salary)
	req.Description = strings.TrimSpace(req.Description)
	req.RequiredSkills = dedupeStrings(req.RequiredSkills)
	return req
}

func applyJobRequest(job *models.Job, req models.JobRequest) {
	job.Title = req.Title
	job.Company = req.Company
	job.Location = req.Location
	job.Salary = req.Salary
	job.Description = req.Description
	job.RequiredSkills = req.RequiredSkills
}
