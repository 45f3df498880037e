package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus2career-api/internal/models"
	"github.com/noah-isme/campus2career-api/internal/scoring"
	"github.com/noah-isme/campus2career-api/pkg/document"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
)

const defaultMaxMarks = 100

type marksheetStore interface {
	UpsertBySemester(ctx context.Context, m *models.Marksheet) (bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Marksheet, error)
	FindByID(ctx context.Context, id string) (*models.Marksheet, error)
	Delete(ctx context.Context, id, studentID string) error
	CountByStudent(ctx context.Context, studentID string) (int, error)
}

type marksheetStructurer interface {
	Marksheet(ctx context.Context, text string) (*MarksheetDraft, error)
}

type summaryRecomputer interface {
	Recompute(ctx context.Context, studentID string) (*models.AcademicSummary, error)
	Refresh(ctx context.Context, studentID string) (*models.AcademicSummary, error)
}

// MarksheetService runs the marksheet upload pipeline and owns marksheet CRUD.
type MarksheetService struct {
	store      marksheetStore
	extractor  textExtractor
	structurer marksheetStructurer
	summaries  summaryRecomputer
	audit      auditWriter
	cache      cacheInvalidator
	metrics    *MetricsService
	policy     UploadPolicy
	logger     *zap.Logger
	now        func() time.Time
}

// MarksheetServiceParams groups constructor dependencies.
type MarksheetServiceParams struct {
	Store      marksheetStore
	Extractor  textExtractor
	Structurer marksheetStructurer
	Summaries  summaryRecomputer
	Audit      auditWriter
	Cache      cacheInvalidator
	Metrics    *MetricsService
	Policy     UploadPolicy
	Logger     *zap.Logger
}

// NewMarksheetService constructs a MarksheetService.
func NewMarksheetService(params MarksheetServiceParams) *MarksheetService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarksheetService{
		store:      params.Store,
		extractor:  params.Extractor,
		structurer: params.Structurer,
		summaries:  params.Summaries,
		audit:      params.Audit,
		cache:      params.Cache,
		metrics:    params.Metrics,
		policy:     params.Policy.normalized(),
		logger:     logger,
		now:        time.Now,
	}
}

// Upload extracts, structures and stores one marksheet, then refreshes the
// academic summary. Nothing is written unless every step before the upsert
// succeeds.
func (s *MarksheetService) Upload(ctx context.Context, studentID string, upload models.MarksheetUpload, meta RequestMeta) (result *models.MarksheetUploadResult, err error) {
	defer func() { s.metrics.ObserveUpload(UploadKindMarksheet, uploadOutcome(err)) }()

	if err := s.policy.Check(upload.UploadedDocument); err != nil {
		return nil, err
	}
	text, err := extractText(ctx, s.extractor, upload.UploadedDocument)
	if err != nil {
		return nil, err
	}
	draft, err := s.structurer.Marksheet(ctx, text)
	if err != nil {
		return nil, err
	}

	subjects := coerceSubjects(draft.Subjects)
	if len(subjects) == 0 {
		return nil, appErrors.Clone(appErrors.ErrExtractionFailed, "no subjects found in marksheet")
	}
	semester := normalizeSemester(upload.Semester)
	if semester == "" {
		semester = normalizeSemester(draft.Semester)
	}
	if semester == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "semester could not be detected; provide it in the form")
	}

	now := s.now().UTC()
	marksheet := &models.Marksheet{
		StudentID:         studentID,
		Semester:          semester,
		Subjects:          subjects,
		OverallPercentage: scoring.OverallPercentage(subjects),
		FileName:          upload.Filename,
		FileType:          document.NormalizeMIME(upload.MimeType),
		FileSize:          upload.Size,
		UploadedAt:        now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	inserted, err := s.store.UpsertBySemester(ctx, marksheet)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store marksheet")
	}

	summary, err := s.summaries.Recompute(ctx, studentID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	payload, _ := json.Marshal(map[string]interface{}{
		"semester":          marksheet.Semester,
		"subjects":          len(marksheet.Subjects),
		"overallPercentage": marksheet.OverallPercentage,
		"replaced":          !inserted,
	})
	s.writeAudit(ctx, studentID, models.AuditActionMarksheetUpload, marksheet.ID, nil, payload, meta)
	s.logger.Info("marksheet stored",
		zap.String("student_id", studentID),
		zap.String("semester", semester),
		zap.Int("subjects", len(subjects)),
		zap.Bool("replaced", !inserted),
	)

	return &models.MarksheetUploadResult{Marksheet: marksheet, Summary: summary, Replaced: !inserted}, nil
}

// List returns the student's marksheets in upload order.
func (s *MarksheetService) List(ctx context.Context, studentID string) ([]models.Marksheet, error) {
	items, err := s.store.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list marksheets")
	}
	if items == nil {
		items = []models.Marksheet{}
	}
	return items, nil
}

// Get returns one marksheet owned by the student.
func (s *MarksheetService) Get(ctx context.Context, studentID, id string) (*models.Marksheet, error) {
	m, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "marksheet not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load marksheet")
	}
	if m.StudentID != studentID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "marksheet not found")
	}
	return m, nil
}

// Delete removes a marksheet of the student and refreshes the summary. The
// summary is dropped when no marksheet remains.
func (s *MarksheetService) Delete(ctx context.Context, studentID, id string, meta RequestMeta) error {
	m, err := s.Get(ctx, studentID, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "marksheet not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete marksheet")
	}

	if _, err := s.summaries.Refresh(ctx, studentID); err != nil {
		return err
	}
	s.invalidate(ctx)

	old, _ := json.Marshal(map[string]interface{}{"semester": m.Semester, "overallPercentage": m.OverallPercentage})
	s.writeAudit(ctx, studentID, models.AuditActionMarksheetDelete, m.ID, old, nil, meta)
	return nil
}

// Count returns how many marksheets the student has uploaded.
func (s *MarksheetService) Count(ctx context.Context, studentID string) (int, error) {
	n, err := s.store.CountByStudent(ctx, studentID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count marksheets")
	}
	return n, nil
}

func (s *MarksheetService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, analyticsCachePattern); err != nil {
		s.logger.Warn("failed to invalidate analytics cache", zap.Error(err))
	}
}

func (s *MarksheetService) writeAudit(ctx context.Context, studentID, action, resourceID string, oldValues, newValues []byte, meta RequestMeta) {
	if s.audit == nil {
		return
	}
	var rid *string
	if resourceID != "" {
		rid = &resourceID
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &studentID,
		Action:     action,
		Resource:   "marksheets",
		ResourceID: rid,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record marksheet audit log", zap.String("action", action), zap.Error(err))
	}
}

// coerceSubjects applies the marksheet defaults: a missing or non-positive
// maximum becomes 100, missing marks become 0 and marks are kept within
// [0, maxMarks]. Rows without a name are dropped.
func coerceSubjects(drafts []SubjectDraft) models.Subjects {
	out := make(models.Subjects, 0, len(drafts))
	for _, d := range drafts {
		name := strings.Join(strings.Fields(d.Name), " ")
		if name == "" {
			continue
		}
		maxMarks := float64(defaultMaxMarks)
		if d.MaxMarks != nil && *d.MaxMarks > 0 {
			maxMarks = *d.MaxMarks
		}
		marks := 0.0
		if d.Marks != nil {
			marks = clamp(*d.Marks, 0, maxMarks)
		}
		var credits *float64
		if d.Credits != nil && *d.Credits >= 0 {
			c := *d.Credits
			credits = &c
		}
		out = append(out, models.Subject{
			Name:     name,
			Marks:    marks,
			MaxMarks: maxMarks,
			Grade:    strings.TrimSpace(d.Grade),
			Credits:  credits,
		})
	}
	return out
}

// normalizeSemester maps labels that consist only of a semester marker
// ("sem 2", "Semester II", "2") onto "Semester 2". Any other label is kept as
// typed, whitespace collapsed, so "Year 2 Semester 1" stays distinct from
// "Year 1 Semester 1".
func normalizeSemester(raw string) string {
	raw = strings.Join(strings.Fields(raw), " ")
	if raw == "" {
		return ""
	}
	if m := semesterLabelPattern.FindStringSubmatch(raw); m != nil {
		if canonical := semesterFromToken(m[1]); canonical != "" {
			return canonical
		}
	}
	return raw
}
