package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
	"github.com/noah-isme/campus2career-api/pkg/response"
	"github.com/noah-isme/campus2career-api/pkg/storage"
)

type signedFileStore interface {
	Resolve(token string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// FileHandler serves locally stored files behind signed tokens.
type FileHandler struct {
	store signedFileStore
}

// NewFileHandler constructs the handler.
func NewFileHandler(store signedFileStore) *FileHandler {
	return &FileHandler{store: store}
}

// Download godoc
// @Summary Download a stored file through a signed token
// @Tags Files
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /files/{token} [get]
func (h *FileHandler) Download(c *gin.Context) {
	if h.store == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file downloads are served by object storage"))
		return
	}
	key, err := h.store.Resolve(c.Param("token"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired download link"))
		return
	}
	file, err := h.store.Get(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer file.Close() //nolint:errcheck

	name := filepath.Base(key)
	contentType := extensionMIMEs[filepath.Ext(name)]
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", "attachment; filename=\""+name+"\"")
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, -1, contentType, file, nil)
}
