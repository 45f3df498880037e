package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus2career-api/internal/models"
	"github.com/noah-isme/campus2career-api/internal/scoring"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
)

type summaryReader interface {
	Get(ctx context.Context, studentID string) (*models.AcademicSummary, error)
}

type resumeReader interface {
	Get(ctx context.Context, studentID string) (*models.Resume, error)
}

type careerProfileStore interface {
	Upsert(ctx context.Context, profile *models.CareerProfile) error
	Get(ctx context.Context, studentID string) (*models.CareerProfile, error)
}

type jobCatalog interface {
	ListAll(ctx context.Context) ([]models.Job, error)
	FindByID(ctx context.Context, id string) (*models.Job, error)
}

type careerAnalyser interface {
	Career(ctx context.Context, in CareerContext) (*CareerAnalysis, error)
}

// CareerService builds career profiles and ranks job openings for students.
type CareerService struct {
	summaries summaryReader
	resumes   resumeReader
	profiles  careerProfileStore
	jobs      jobCatalog
	analyser  careerAnalyser
	logger    *zap.Logger
	now       func() time.Time
}

// NewCareerService constructs a CareerService.
func NewCareerService(summaries summaryReader, resumes resumeReader, profiles careerProfileStore, jobs jobCatalog, analyser careerAnalyser, logger *zap.Logger) *CareerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CareerService{
		summaries: summaries,
		resumes:   resumes,
		profiles:  profiles,
		jobs:      jobs,
		analyser:  analyser,
		logger:    logger,
		now:       time.Now,
	}
}

// Analyze runs a career analysis over the academic summary and resume of the
// student and stores it as the student's career profile.
func (s *CareerService) Analyze(ctx context.Context, studentID string) (*models.CareerProfile, error) {
	summary, err := s.summaries.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	resume, err := s.resumes.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if summary == nil && resume == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "upload a marksheet or a resume before requesting a career analysis")
	}

	analysis, err := s.analyser.Career(ctx, CareerContext{Summary: summary, Resume: resume})
	if err != nil {
		return nil, err
	}

	profile := &models.CareerProfile{
		StudentID:         studentID,
		CareerDomains:     analysis.CareerDomains,
		RecommendedRoles:  dedupeStrings(analysis.RecommendedRoles),
		SkillGaps:         dedupeStrings(analysis.SkillGaps),
		Certifications:    dedupeStrings(analysis.Certifications),
		SuggestedProjects: dedupeStrings(analysis.SuggestedProjects),
		LearningRoadmap:   analysis.LearningRoadmap,
		LastAnalyzed:      s.now().UTC(),
	}
	if profile.CareerDomains == nil {
		profile.CareerDomains = models.CareerDomains{}
	}
	if profile.LearningRoadmap == nil {
		profile.LearningRoadmap = models.Roadmap{}
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store career profile")
	}
	s.logger.Info("career profile analysed", zap.String("student_id", studentID), zap.Int("domains", len(profile.CareerDomains)))
	return profile, nil
}

// Profile returns the stored career profile, or nil when none exists.
func (s *CareerService) Profile(ctx context.Context, studentID string) (*models.CareerProfile, error) {
	profile, err := s.profiles.Get(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load career profile")
	}
	return profile, nil
}

// Opportunities ranks every job by relevance to the student's resume skills.
// Jobs with equal relevance keep their listing order.
func (s *CareerService) Opportunities(ctx context.Context, studentID string) ([]models.JobMatch, error) {
	skills, err := s.skills(ctx, studentID)
	if err != nil {
		return nil, err
	}
	jobs, err := s.jobs.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list jobs")
	}
	matches := make([]models.JobMatch, 0, len(jobs))
	for _, job := range jobs {
		matches = append(matches, models.JobMatch{
			Job:       job,
			Match:     scoring.Match(skills, job.RequiredSkills),
			Relevance: scoring.Relevance(skills, job.RequiredSkills),
		})
	}
	scoring.SortByRelevance(matches)
	return matches, nil
}

// JobMatch compares the student's resume skills with one job.
func (s *CareerService) JobMatch(ctx context.Context, studentID, jobID string) (*models.JobMatch, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	skills, err := s.skills(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return &models.JobMatch{
		Job:       *job,
		Match:     scoring.Match(skills, job.RequiredSkills),
		Relevance: scoring.Relevance(skills, job.RequiredSkills),
	}, nil
}

func (s *CareerService) skills(ctx context.Context, studentID string) ([]string, error) {
	resume, err := s.resumes.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if resume == nil {
		return nil, nil
	}
	return resume.Skills, nil
}
