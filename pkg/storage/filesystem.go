package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage persists files on disk under a base directory and hands out
// signed links served by the API itself.
type LocalStorage struct {
	baseDir    string
	signer     *SignedURLSigner
	publicPath string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
// publicPath is the route prefix that serves signed tokens, e.g. /api/v1/files.
func NewLocalStorage(baseDir string, signer *SignedURLSigner, publicPath string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, signer: signer, publicPath: strings.TrimRight(publicPath, "/")}, nil
}

// Put copies r into key under the base dir.
func (s *LocalStorage) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare upload directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write upload stream: %w", err)
	}
	return file.Close()
}

// Get returns a read-only handle for the stored file.
func (s *LocalStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("open upload file: %w", err)
	}
	return file, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// DownloadURL signs key for owner and points at the API file route.
func (s *LocalStorage) DownloadURL(_ context.Context, owner, key string) (string, time.Time, error) {
	if s.signer == nil {
		return "", time.Time{}, fmt.Errorf("signed downloads not configured")
	}
	token, expiresAt, err := s.signer.Generate(owner, key)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.publicPath + "/" + url.PathEscape(token), expiresAt, nil
}

// Resolve validates a token produced by DownloadURL and returns the stored key.
func (s *LocalStorage) Resolve(token string) (string, error) {
	if s.signer == nil {
		return "", ErrInvalidToken
	}
	_, key, _, err := s.signer.Parse(token)
	return key, err
}

func (s *LocalStorage) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if key == "" || clean == "/" {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.baseDir, clean), nil
}
