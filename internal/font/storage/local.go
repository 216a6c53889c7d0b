package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/typetester/font-tester-backend/internal/pkg/logger"
	apperrors "github.com/typetester/font-tester-backend/internal/pkg/errors"
	"go.uber.org/zap"
)

// LocalStore keeps font blobs in a single directory on the local filesystem
type LocalStore struct {
	root    string // asset directory, absolute or relative to the working dir
	baseURL string // public URL prefix the stored filename is appended to
	logger  *logger.Logger
}

// NewLocalStore creates a filesystem-backed store rooted at dir
func NewLocalStore(dir, baseURL string, log *logger.Logger) *LocalStore {
	return &LocalStore{
		root:    dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  log,
	}
}

// Put writes content into the asset directory under a generated name. The
// bytes land in a temp file first and are renamed into place so a failed
// write never leaves a partial font visible.
func (s *LocalStore) Put(ctx context.Context, ext string, content io.Reader, size int64) (*StoredFont, error) {
	if err := s.EnsureRoot(ctx); err != nil {
		return nil, err
	}

	name, err := generateFilename(ext)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFontMoveFailed)
	}
	target := filepath.Join(s.root, name)

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFontMoveFailed)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return nil, apperrors.Wrap(err, apperrors.ErrFontMoveFailed)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, apperrors.Wrap(err, apperrors.ErrFontMoveFailed)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return nil, apperrors.Wrap(err, apperrors.ErrFontMoveFailed)
	}

	s.logger.Info("font stored",
		zap.String("filename", name),
		zap.Int64("size", size),
	)

	return &StoredFont{Filename: name, Path: target}, nil
}

// Remove deletes the blob at path; a missing file is not an error
func (s *LocalStore) Remove(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to remove font file: %w", err)
	}
	return nil
}

// ResolveURL derives the public URL for a stored filename
func (s *LocalStore) ResolveURL(storedFilename string) string {
	return s.baseURL + "/" + url.PathEscape(storedFilename)
}

// EnsureRoot creates the asset directory if it does not exist
func (s *LocalStore) EnsureRoot(ctx context.Context) error {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFontStorageDir)
	}
	return nil
}

// RemoveRoot deletes the asset directory tree; a missing tree is a no-op
func (s *LocalStore) RemoveRoot(ctx context.Context) error {
	if err := os.RemoveAll(s.root); err != nil {
		return fmt.Errorf("failed to remove asset directory: %w", err)
	}

	s.logger.Info("asset directory removed", zap.String("dir", s.root))
	return nil
}

// Root returns the asset directory path
func (s *LocalStore) Root() string {
	return s.root
}
