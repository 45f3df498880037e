// Package document turns uploaded PDF, DOCX and plain-text files into UTF-8 text.
package document

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"mime"
	"regexp"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"github.com/nguyenthenguyen/docx"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEText = "text/plain"
)

// pdfParser is satisfied by the eino PDF parser.
type pdfParser interface {
	Parse(ctx context.Context, reader io.Reader, opts ...einoParser.Option) ([]*schema.Document, error)
}

// Extractor converts document bytes to text according to their MIME type.
type Extractor struct {
	pdf    pdfParser
	logger *zap.Logger
}

// NewExtractor builds an extractor backed by the eino PDF parser.
func NewExtractor(ctx context.Context, logger *zap.Logger) (*Extractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		return nil, fmt.Errorf("create pdf parser: %w", err)
	}
	return newExtractor(p, logger), nil
}

func newExtractor(p pdfParser, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{pdf: p, logger: logger}
}

// NormalizeMIME lower-cases the media type and drops parameters such as charset.
func NormalizeMIME(raw string) string {
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return mediaType
}

// Supported reports whether mimeType can be extracted.
func Supported(mimeType string) bool {
	switch NormalizeMIME(mimeType) {
	case MIMEPDF, MIMEDOCX, MIMEText:
		return true
	}
	return false
}

// Extract returns the text content of data. Unknown types fail with
// ErrUnsupportedFormat before any decoding; decoder failures surface as
// ErrExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, data []byte, mimeType string) (text string, err error) {
	kind := NormalizeMIME(mimeType)
	if !Supported(kind) {
		return "", appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("unsupported file type %q", mimeType))
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = appErrors.Wrap(fmt.Errorf("decoder panic: %v", r), appErrors.ErrExtractionFailed.Code,
				appErrors.ErrExtractionFailed.Status, appErrors.ErrExtractionFailed.Message)
		}
		e.logger.Debug("document extracted",
			zap.String("mime", kind),
			zap.Int("bytes", len(data)),
			zap.Int("chars", len(text)),
			zap.Duration("took", time.Since(start)),
			zap.Error(err),
		)
	}()

	switch kind {
	case MIMEPDF:
		text, err = e.extractPDF(ctx, data)
	case MIMEDOCX:
		text, err = extractDOCX(data)
	default:
		text = extractPlain(data)
	}
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrExtractionFailed.Code, appErrors.ErrExtractionFailed.Status, appErrors.ErrExtractionFailed.Message)
	}
	return strings.TrimSpace(text), nil
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte) (string, error) {
	if e.pdf == nil {
		return "", fmt.Errorf("pdf parser not configured")
	}
	docs, err := e.pdf.Parse(ctx, bytes.NewReader(data), einoParser.WithURI("upload.pdf"))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}
	var b strings.Builder
	for i, doc := range docs {
		if doc == nil {
			continue
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(doc.Content)
	}
	return b.String(), nil
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:cr\s*/>`)
	docxTab          = regexp.MustCompile(`<w:tab\s*/>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
	blankLines       = regexp.MustCompile(`\n{3,}`)
)

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close() //nolint:errcheck

	raw := doc.Editable().GetContent()
	raw = docxParagraphEnd.ReplaceAllString(raw, "\n")
	raw = docxTab.ReplaceAllString(raw, "\t")
	raw = xmlTag.ReplaceAllString(raw, "")
	raw = html.UnescapeString(raw)
	return blankLines.ReplaceAllString(raw, "\n\n"), nil
}

func extractPlain(data []byte) string {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return strings.ToValidUTF8(string(data), "�")
}
