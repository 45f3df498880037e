package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/campus2career-api/internal/models"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
	"github.com/noah-isme/campus2career-api/pkg/export"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type studentPerformanceSource interface {
	StudentPerformance(ctx context.Context, domain string) ([]models.StudentPerformanceRow, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	RenderTable(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders admin datasets as CSV or PDF.
type ExportService struct {
	source studentPerformanceSource
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an export service.
func NewExportService(source studentPerformanceSource, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{source: source, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

var studentExportHeaders = []string{"Student ID", "Full Name", "Email", "Semesters", "Overall Average", "Consistency", "Recommended Domain"}

// StudentPerformance exports one row per summarised student, optionally
// restricted to a recommended domain.
func (s *ExportService) StudentPerformance(ctx context.Context, format, domain string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	rows, err := s.source.StudentPerformance(ctx, domain)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student performance")
	}

	dataset := export.Dataset{Headers: studentExportHeaders}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student ID":         row.StudentID,
			"Full Name":          row.FullName,
			"Email":              row.Email,
			"Semesters":          strconv.Itoa(row.TotalSemesters),
			"Overall Average":    strconv.FormatFloat(row.OverallAverage, 'f', 2, 64),
			"Consistency":        strconv.FormatFloat(row.ConsistencyScore, 'f', 2, 64),
			"Recommended Domain": row.RecommendedDomain,
		})
	}

	stamp := s.now().UTC().Format("20060102-150405")
	file := &ExportFile{Filename: fmt.Sprintf("student-performance-%s.%s", stamp, format)}
	switch format {
	case FormatPDF:
		file.ContentType = "application/pdf"
		file.Data, err = s.pdf.RenderTable(dataset, "Student Performance")
	default:
		file.ContentType = "text/csv"
		file.Data, err = s.csv.Render(dataset)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("student performance exported", zap.String("format", format), zap.Int("rows", len(rows)))
	return file, nil
}
