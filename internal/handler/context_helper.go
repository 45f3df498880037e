package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus2career-api/internal/middleware"
	"github.com/noah-isme/campus2career-api/internal/models"
	"github.com/noah-isme/campus2career-api/internal/service"
	"github.com/noah-isme/campus2career-api/pkg/document"
	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.Claims(c)
	if !ok {
		return nil
	}
	return claims
}

func actorFromContext(c *gin.Context) (service.Actor, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		return service.Actor{}, false
	}
	return service.Actor{ID: claims.UserID, Role: claims.Role}, true
}

func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

var extensionMIMEs = map[string]string{
	".pdf":  document.MIMEPDF,
	".docx": document.MIMEDOCX,
	".txt":  document.MIMEText,
}

// multipartOverhead is the room left for form fields and part headers on top
// of the file size limit.
const multipartOverhead = 64 << 10

// limitUploadBody caps the request body before gin parses the multipart form.
func limitUploadBody(c *gin.Context, maxBytes int64) {
	if maxBytes <= 0 || c.Request.Body == nil {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)
}

func bodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || (err != nil && strings.Contains(err.Error(), "request body too large"))
}

func fileTooLarge(maxBytes int64) error {
	return appErrors.Clone(appErrors.ErrFileTooLarge, "file exceeds "+strconv.FormatInt(maxBytes, 10)+" bytes")
}

// formDocument reads the named multipart file. Files larger than maxBytes are
// not buffered; the returned document carries only the declared size so the
// upload policy can reject it.
func formDocument(c *gin.Context, field string, maxBytes int64) (*models.UploadedDocument, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if bodyTooLarge(err) {
			return nil, fileTooLarge(maxBytes)
		}
		return nil, appErrors.Clone(appErrors.ErrValidation, field+" is required")
	}
	doc := &models.UploadedDocument{
		Filename: filepath.Base(header.Filename),
		MimeType: detectMIME(header),
		Size:     header.Size,
	}
	if maxBytes > 0 && header.Size > maxBytes {
		return doc, nil
	}

	src, err := header.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
	}
	defer src.Close() //nolint:errcheck

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer file")
	}
	doc.Content = content
	doc.Size = int64(len(content))
	return doc, nil
}

// detectMIME trusts the part's Content-Type unless the client sent a generic
// one, in which case the file extension decides.
func detectMIME(header *multipart.FileHeader) string {
	declared := document.NormalizeMIME(header.Header.Get("Content-Type"))
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if byExt, ok := extensionMIMEs[strings.ToLower(filepath.Ext(header.Filename))]; ok {
		return byExt
	}
	return declared
}
