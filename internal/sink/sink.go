// Package sink writes rendered documents to their destination.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"kbsync/internal/logger"
	"kbsync/pkg/metadata"
)

// ErrMissingPath is returned by a FileSink without a destination path.
var ErrMissingPath = errors.New("sink path is required")

// Document is what a sync run hands to a sink.
type Document struct {
	SyncedAt  time.Time
	Text      string
	Articles  int
	Validated bool
}

// WriterSink writes documents to a stream, e.g. stdout for dry runs.
type WriterSink struct {
	W io.Writer
}

// Write writes doc.Text to the underlying writer.
func (s *WriterSink) Write(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := io.WriteString(s.W, doc.Text); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	return nil
}

// FileSink replaces a file with each written document.
type FileSink struct {
	log          *logger.Logger
	Path         string
	CreateBackup bool
	Sign         bool
}

// NewFileSink creates a file sink.
func NewFileSink(path string, createBackup, sign bool, log *logger.Logger) *FileSink {
	return &FileSink{
		log:          log,
		Path:         path,
		CreateBackup: createBackup,
		Sign:         sign,
	}
}

// Write stores doc at Path. The file is replaced atomically; with CreateBackup the
// previous file is kept as <path>.bak, and with Sign a snapshot block is appended.
func (s *FileSink) Write(ctx context.Context, doc Document) error {
	if s.Path == "" {
		return ErrMissingPath
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	text := doc.Text
	if s.Sign {
		text = metadata.Sign(text, metadata.Metadata{
			SyncedAt:   doc.SyncedAt,
			Articles:   doc.Articles,
			Validation: doc.Validated,
		})
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if s.CreateBackup {
		if err := s.backup(); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	tmpName := tmp.Name()

	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := os.Rename(tmpName, s.Path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.Path, err)
	}

	s.log.Info("document written", "path", s.Path, "bytes", len(text), "signed", s.Sign)

	return nil
}

// backup copies the current file to <path>.bak. A missing file is not an error.
func (s *FileSink) backup() error {
	current, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to read existing document: %w", err)
	}

	backupPath := s.Path + ".bak"
	if err := os.WriteFile(backupPath, current, 0644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	s.log.Debug("backup created", "path", backupPath)

	return nil
}
