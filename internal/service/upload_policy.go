package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/noah-isme/campus2career-api/internal/models"
	"github.com/noah-isme/campus2career-api/pkg/document"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
)

const defaultMaxUploadBytes int64 = 5 * 1024 * 1024

type textExtractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (string, error)
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// UploadPolicy bounds the documents accepted by upload endpoints.
type UploadPolicy struct {
	MaxBytes     int64
	AllowedMIMEs []string
}

func (p UploadPolicy) normalized() UploadPolicy {
	if p.MaxBytes <= 0 {
		p.MaxBytes = defaultMaxUploadBytes
	}
	if len(p.AllowedMIMEs) == 0 {
		p.AllowedMIMEs = []string{document.MIMEPDF, document.MIMEDOCX, document.MIMEText}
	}
	return p
}

// Check rejects empty, oversized and non-whitelisted documents. It never
// looks at the content beyond its length.
func (p UploadPolicy) Check(doc models.UploadedDocument) error {
	p = p.normalized()
	size := doc.Size
	if int64(len(doc.Content)) > size {
		size = int64(len(doc.Content))
	}
	if size == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "file is empty")
	}
	if size > p.MaxBytes {
		return appErrors.Clone(appErrors.ErrFileTooLarge, fmt.Sprintf("file exceeds %d bytes", p.MaxBytes))
	}
	kind := document.NormalizeMIME(doc.MimeType)
	for _, allowed := range p.AllowedMIMEs {
		if strings.EqualFold(kind, document.NormalizeMIME(allowed)) && document.Supported(kind) {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported file type %q", doc.MimeType))
}

// extractText runs the extractor and treats an empty result as a failed
// extraction.
func extractText(ctx context.Context, ex textExtractor, doc models.UploadedDocument) (string, error) {
	text, err := ex.Extract(ctx, doc.Content, doc.MimeType)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", appErrors.Clone(appErrors.ErrExtractionFailed, "document has no text layer")
	}
	return text, nil
}

func uploadOutcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if e := appErrors.FromError(err); e.Status < 500 {
		return OutcomeRejected
	}
	return OutcomeFailed
}
