package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus2career-api/internal/models"
	"github.com/noah-isme/campus2career-api/internal/scoring"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
	"github.com/noah-isme/campus2career-api/pkg/export"
	"github.com/noah-isme/campus2career-api/pkg/keylock"
)

type marksheetLister interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Marksheet, error)
}

type academicSummaryStore interface {
	Upsert(ctx context.Context, summary *models.AcademicSummary) error
	Get(ctx context.Context, studentID string) (*models.AcademicSummary, error)
	Delete(ctx context.Context, studentID string) error
}

type reportRenderer interface {
	Render(report export.Report) ([]byte, error)
}

// AcademicSummaryService keeps the per-student academic summary in step with
// the stored marksheets.
type AcademicSummaryService struct {
	marksheets marksheetLister
	summaries  academicSummaryStore
	pdf        reportRenderer
	locks      keylock.Mutex
	logger     *zap.Logger
	now        func() time.Time
}

// NewAcademicSummaryService constructs the service.
func NewAcademicSummaryService(marksheets marksheetLister, summaries academicSummaryStore, pdf reportRenderer, logger *zap.Logger) *AcademicSummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicSummaryService{
		marksheets: marksheets,
		summaries:  summaries,
		pdf:        pdf,
		logger:     logger,
		now:        time.Now,
	}
}

// Recompute rebuilds the summary from every marksheet of the student and
// replaces the stored one. A student without marksheets is left untouched and
// nil is returned. Calls for the same student run one at a time.
func (s *AcademicSummaryService) Recompute(ctx context.Context, studentID string) (*models.AcademicSummary, error) {
	unlock := s.locks.Lock(studentID)
	defer unlock()
	return s.recompute(ctx, studentID, false)
}

// Refresh is Recompute for callers that removed marksheets. When none remain
// the stored summary is deleted while the student's lock is still held.
func (s *AcademicSummaryService) Refresh(ctx context.Context, studentID string) (*models.AcademicSummary, error) {
	unlock := s.locks.Lock(studentID)
	defer unlock()
	return s.recompute(ctx, studentID, true)
}

func (s *AcademicSummaryService) recompute(ctx context.Context, studentID string, clearWhenEmpty bool) (*models.AcademicSummary, error) {
	marksheets, err := s.marksheets.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load marksheets")
	}
	summary := scoring.Summarize(studentID, marksheets)
	if summary == nil {
		if clearWhenEmpty {
			if err := s.summaries.Delete(ctx, studentID); err != nil && !errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete academic summary")
			}
		}
		return nil, nil
	}
	summary.UpdatedAt = s.now().UTC()
	if err := s.summaries.Upsert(ctx, summary); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store academic summary")
	}
	s.logger.Debug("academic summary recomputed",
		zap.String("student_id", studentID),
		zap.Int("semesters", summary.TotalSemesters),
		zap.Float64("overall_average", summary.OverallAverage),
	)
	return summary, nil
}

// Get returns the stored summary, or nil when the student has none.
func (s *AcademicSummaryService) Get(ctx context.Context, studentID string) (*models.AcademicSummary, error) {
	summary, err := s.summaries.Get(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic summary")
	}
	return summary, nil
}

// Report renders the stored summary as a PDF document.
func (s *AcademicSummaryService) Report(ctx context.Context, studentID string) (*ExportFile, error) {
	summary, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no academic summary yet; upload a marksheet first")
	}
	data, err := s.pdf.Render(summaryReport(summary))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render academic report")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("academic-summary-%s.pdf", summary.UpdatedAt.Format("20060102")),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

func summaryReport(summary *models.AcademicSummary) export.Report {
	trend := export.Dataset{Headers: []string{"Semester", "Percentage", "Trend"}}
	for _, point := range summary.SemesterTrend {
		trend.Rows = append(trend.Rows, map[string]string{
			"Semester":   point.Semester,
			"Percentage": formatPercent(point.Percentage),
			"Trend":      point.Trend,
		})
	}
	subjects := export.Dataset{Headers: []string{"Subject", "Average", "Attempts"}}
	for _, p := range summary.SubjectWisePerformance {
		subjects.Rows = append(subjects.Rows, map[string]string{
			"Subject":  p.Subject,
			"Average":  formatPercent(p.Average),
			"Attempts": strconv.Itoa(p.Attempts),
		})
	}
	return export.Report{
		Title: "Academic Summary",
		Facts: []export.Fact{
			{Label: "Semesters", Value: strconv.Itoa(summary.TotalSemesters)},
			{Label: "Overall average", Value: formatPercent(summary.OverallAverage)},
			{Label: "Consistency", Value: strconv.FormatFloat(summary.ConsistencyScore, 'f', 2, 64)},
			{Label: "Recommended domain", Value: fmt.Sprintf("%s (%d%%)", summary.RecommendedDomain, summary.DomainConfidence)},
			{Label: "Strengths", Value: listOrDash(summary.Strengths)},
			{Label: "Weaknesses", Value: listOrDash(summary.Weaknesses)},
		},
		Sections: []export.Section{
			{Heading: "Semester trend", Table: trend},
			{Heading: "Subject performance", Table: subjects},
		},
	}
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func listOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
