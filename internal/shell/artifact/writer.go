// Package artifact writes compiled documents to disk atomically and
// idempotently. This is part of the Imperative Shell - it owns all output
// filesystem access.
//
// Idempotence contract: a file whose content hash already matches is never
// opened for writing, so repeated builds against unchanged configuration do
// not perturb modification times or trigger spurious redeploys by directory
// watchers. Replacement is write-to-temporary-then-rename, so a concurrent
// reader (the stack manager polls the output directory) never observes a
// partial file.
package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// =============================================================================
// Errors
// =============================================================================

var ErrWriteFailed = errors.New("artifact write failed")

// WriteError reports an I/O failure during atomic write. Any temporary
// file is cleaned up before the error is returned.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// =============================================================================
// Artifacts
// =============================================================================

// Artifact is one compiled output document.
type Artifact struct {
	// Path is the target file path.
	Path string
	// Content is the full file content.
	Content []byte
	// Mode is the file permission mode; 0 means 0o644. Generated env
	// files carry secrets and use 0o600.
	Mode fs.FileMode
}

// Hash returns the hex SHA-256 of the artifact content.
func (a Artifact) Hash() string {
	sum := sha256.Sum256(a.Content)
	return hex.EncodeToString(sum[:])
}

// =============================================================================
// Writer
// =============================================================================

// Writer commits artifacts to disk.
type Writer struct{}

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteAll writes every artifact whose content differs from what is on
// disk and returns the paths actually changed, in input order. The caller
// can use the changed list to decide whether affected services need a
// restart.
func (w *Writer) WriteAll(artifacts []Artifact) (changed []string, err error) {
	for _, a := range artifacts {
		didChange, err := w.Write(a)
		if err != nil {
			return changed, err
		}
		if didChange {
			changed = append(changed, a.Path)
		}
	}
	return changed, nil
}

// Write commits one artifact. It reports whether the file content changed.
func (w *Writer) Write(a Artifact) (changed bool, err error) {
	if existing, readErr := os.ReadFile(a.Path); readErr == nil {
		if sha256.Sum256(existing) == sha256.Sum256(a.Content) {
			return false, nil
		}
	}

	mode := a.Mode
	if mode == 0 {
		mode = 0o644
	}

	dir := filepath.Dir(a.Path)
	if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
		return false, &WriteError{Path: a.Path, Err: mkErr}
	}

	// Temp file in the target directory so the rename stays on one
	// filesystem and is atomic.
	tmp, tmpErr := os.CreateTemp(dir, filepath.Base(a.Path)+".tmp-*")
	if tmpErr != nil {
		return false, &WriteError{Path: a.Path, Err: tmpErr}
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if _, wErr := tmp.Write(a.Content); wErr != nil {
		tmp.Close()
		return false, &WriteError{Path: a.Path, Err: wErr}
	}
	if chErr := tmp.Chmod(mode); chErr != nil {
		tmp.Close()
		return false, &WriteError{Path: a.Path, Err: chErr}
	}
	if cErr := tmp.Close(); cErr != nil {
		return false, &WriteError{Path: a.Path, Err: cErr}
	}
	if rnErr := os.Rename(tmpPath, a.Path); rnErr != nil {
		return false, &WriteError{Path: a.Path, Err: rnErr}
	}
	return true, nil
}
