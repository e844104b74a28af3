package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bhaveshprodev/OhOnePro/internal/config"
	"github.com/bhaveshprodev/OhOnePro/internal/doctree"
	"github.com/bhaveshprodev/OhOnePro/internal/parser"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrTooLarge is recorded for files above the configured size limit.
	ErrTooLarge = errors.New("file exceeds max size")
	// ErrNotRegular is recorded for directories and special files.
	ErrNotRegular = errors.New("not a regular file")
)

// Loader turns file paths into documents with bounded concurrency.
type Loader struct {
	opts     parser.Options
	maxBytes int64
	workers  int
	log      *slog.Logger
}

// NewLoader creates a loader from the configuration.
func NewLoader(cfg config.Config, log *slog.Logger) *Loader {
	return &Loader{
		opts: parser.Options{
			Mode:                 cfg.ExtractMode,
			PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
			ImageOCR:             cfg.ImageOCR,
		},
		maxBytes: cfg.MaxFileBytes,
		workers:  cfg.Workers,
		log:      log,
	}
}

// Load reads every path. Files that fail are recorded on the batch and
// skipped; only cancellation of ctx aborts the whole batch.
func (l *Loader) Load(ctx context.Context, paths []string) (*Batch, error) {
	batch := NewBatch(len(paths))
	batch.SetStatus(StatusLoading)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(l.workers, 1))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			log := l.log.With("path", path)
			doc, err := l.loadOne(path)
			if err != nil {
				log.Warn("skipping file", "error", err)
				batch.Fail(path, err)
				return nil
			}
			log.Debug("loaded file", "kind", doc.Kind, "bytes", len(doc.Content))
			batch.Put(i, doc)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		batch.SetStatus(StatusFailed)
		return batch, fmt.Errorf("load files: %w", err)
	}
	batch.finish()

	snap := batch.Snapshot()
	l.log.Info("load complete", "status", snap.Status, "loaded", snap.Progress.Loaded, "failed", snap.Progress.Failed)
	return batch, nil
}

func (l *Loader) loadOne(path string) (doctree.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return doctree.Document{}, fmt.Errorf("stat: %w", err)
	}
	if !info.Mode().IsRegular() {
		return doctree.Document{}, ErrNotRegular
	}
	if l.maxBytes > 0 && info.Size() > l.maxBytes {
		return doctree.Document{}, fmt.Errorf("%w (%d > %d bytes)", ErrTooLarge, info.Size(), l.maxBytes)
	}

	p, kind, err := parser.ForPath(path, l.opts)
	if err != nil {
		return doctree.Document{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return doctree.Document{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	text, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return doctree.Document{}, err
	}

	doc := doctree.Document{Path: path, Content: text, Kind: kind}
	if err := doc.Validate(); err != nil {
		return doctree.Document{}, err
	}
	return doc, nil
}
