package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus2career-api/internal/models"
	"github.com/noah-isme/campus2career-api/internal/scoring"
	"github.com/noah-isme/campus2career-api/pkg/document"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
)

const maxStoredResumeRunes = 20000

type resumeStore interface {
	Upsert(ctx context.Context, resume *models.Resume) error
	Get(ctx context.Context, studentID string) (*models.Resume, error)
}

type resumeStructurer interface {
	Resume(ctx context.Context, text string) (*models.ResumeFields, error)
}

// ResumeService analyses uploaded resumes and keeps the latest one per student.
type ResumeService struct {
	store      resumeStore
	extractor  textExtractor
	structurer resumeStructurer
	cache      cacheInvalidator
	metrics    *MetricsService
	policy     UploadPolicy
	logger     *zap.Logger
	now        func() time.Time
}

// ResumeServiceParams groups constructor dependencies.
type ResumeServiceParams struct {
	Store      resumeStore
	Extractor  textExtractor
	Structurer resumeStructurer
	Cache      cacheInvalidator
	Metrics    *MetricsService
	Policy     UploadPolicy
	Logger     *zap.Logger
}

// NewResumeService constructs a ResumeService.
func NewResumeService(params ResumeServiceParams) *ResumeService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResumeService{
		store:      params.Store,
		extractor:  params.Extractor,
		structurer: params.Structurer,
		cache:      params.Cache,
		metrics:    params.Metrics,
		policy:     params.Policy.normalized(),
		logger:     logger,
		now:        time.Now,
	}
}

// Analyze extracts and structures the resume, classifies its skills and
// replaces the stored resume of the student.
func (s *ResumeService) Analyze(ctx context.Context, studentID string, doc models.UploadedDocument) (resume *models.Resume, err error) {
	defer func() { s.metrics.ObserveUpload(UploadKindResume, uploadOutcome(err)) }()

	if err := s.policy.Check(doc); err != nil {
		return nil, err
	}
	text, err := extractText(ctx, s.extractor, doc)
	if err != nil {
		return nil, err
	}
	fields, err := s.structurer.Resume(ctx, text)
	if err != nil {
		return nil, err
	}

	skills := dedupeStrings(fields.Skills)
	domain := scoring.ClassifySkills(skills)
	missing := scoring.FillMissingSkills(domain.Domain, skills, dedupeStrings(fields.MissingSkills))
	roles := dedupeStrings(fields.SuitableRoles)
	if len(roles) == 0 {
		if d, ok := scoring.Lookup(domain.Domain); ok {
			roles = append(roles, d.Roles...)
		}
	}

	resume = &models.Resume{
		StudentID:         studentID,
		FileName:          doc.Filename,
		FileType:          document.NormalizeMIME(doc.MimeType),
		FileSize:          doc.Size,
		ExtractedText:     truncateRunes(text, maxStoredResumeRunes),
		Skills:            skills,
		ExperienceSummary: fields.ExperienceSummary,
		Education:         dedupeStrings(fields.Education),
		SuitableRoles:     roles,
		Projects:          dedupeStrings(fields.Projects),
		MissingSkills:     missing,
		PredictedDomain:   domain.Domain,
		DomainConfidence:  domain.Confidence,
		AnalyzedAt:        s.now().UTC(),
	}
	resume.StrengthScore = ResumeStrength(resume)

	if err := s.store.Upsert(ctx, resume); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store resume")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, analyticsCachePattern); err != nil {
			s.logger.Warn("failed to invalidate analytics cache", zap.Error(err))
		}
	}
	s.logger.Info("resume analysed",
		zap.String("student_id", studentID),
		zap.String("domain", resume.PredictedDomain),
		zap.Int("skills", len(resume.Skills)),
		zap.Int("strength", resume.StrengthScore),
	)
	return resume, nil
}

// Get returns the stored resume, or nil when the student has none.
func (s *ResumeService) Get(ctx context.Context, studentID string) (*models.Resume, error) {
	resume, err := s.store.Get(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resume")
	}
	return resume, nil
}

// ResumeStrength scores a resume out of 100: up to 40 for ten or more skills,
// up to 20 for three or more projects, 20 for an experience summary and 20 for
// education entries.
func ResumeStrength(r *models.Resume) int {
	score := 40*math.Min(1, float64(len(r.Skills))/10) + 20*math.Min(1, float64(len(r.Projects))/3)
	if r.ExperienceSummary != "" {
		score += 20
	}
	if len(r.Education) > 0 {
		score += 20
	}
	return int(math.Round(score))
}
