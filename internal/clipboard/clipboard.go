// Package clipboard delivers serialized documents to where the user wants
// them: the system pasteboard, a stream, or a file.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
)

// ErrUnavailable is returned by System when no clipboard utility is present.
var ErrUnavailable = errors.New("system clipboard unavailable")

// Sink receives the full text of a document.
type Sink interface {
	Write(text string) error
}

// System writes to the operating system clipboard.
type System struct{}

func (System) Write(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// WriterSink writes to an io.Writer such as stdout.
type WriterSink struct {
	W io.Writer
}

func (s WriterSink) Write(text string) error {
	if _, err := io.WriteString(s.W, text); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// FileSink replaces the file at Path. The new content becomes visible in a
// single rename, so readers never see a partial document.
type FileSink struct {
	Path string
}

func (s FileSink) Write(text string) (err error) {
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = io.WriteString(tmp, text); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
