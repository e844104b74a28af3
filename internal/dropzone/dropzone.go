// Package dropzone holds the documents the user has dropped and turns them
// into a single XML document on request.
package dropzone

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bhaveshprodev/OhOnePro/internal/clipboard"
	"github.com/bhaveshprodev/OhOnePro/internal/collect"
	"github.com/bhaveshprodev/OhOnePro/internal/config"
	"github.com/bhaveshprodev/OhOnePro/internal/doctree"
	"github.com/bhaveshprodev/OhOnePro/internal/pipeline"
	"github.com/bhaveshprodev/OhOnePro/internal/tokens"
)

var (
	// ErrRootConflict is returned when a drop would mix loose files with a
	// folder, or two different folders.
	ErrRootConflict = errors.New("drop conflicts with loaded documents")
	// ErrNotDirectory is returned by AddFolder for anything but a directory.
	ErrNotDirectory = errors.New("not a directory")
)

// Zone is the application state: one builder plus the set of paths already
// loaded. Commands are serialized by a mutex.
type Zone struct {
	mu      sync.Mutex
	builder *doctree.Builder
	seen    map[string]bool

	loader    *pipeline.Loader
	walk      collect.Options
	sink      clipboard.Sink
	maxTokens int
	log       *slog.Logger
}

// New creates an empty zone that copies to sink.
func New(cfg config.Config, sink clipboard.Sink, log *slog.Logger) *Zone {
	return &Zone{
		builder: doctree.NewBuilder(""),
		seen:    make(map[string]bool),
		loader:  pipeline.NewLoader(cfg, log),
		walk: collect.Options{
			IncludeHidden: cfg.IncludeHidden,
			Exclude:       cfg.Exclude,
			MaxFiles:      cfg.MaxFiles,
			SupportedOnly: true,
		},
		sink:      sink,
		maxTokens: cfg.MaxTokens,
		log:       log,
	}
}

// AddFiles loads loose files. Paths already in the zone are ignored.
func (z *Zone) AddFiles(ctx context.Context, paths ...string) (*pipeline.Batch, error) {
	z.mu.Lock()
	defer z.mu.Unlock()

	if root := z.builder.Root(); root != "" {
		if z.builder.Len() > 0 {
			return nil, fmt.Errorf("%w: folder %s is loaded", ErrRootConflict, root)
		}
		z.builder = doctree.NewBuilder("")
	}
	abs, err := absPaths(paths)
	if err != nil {
		return nil, err
	}
	return z.load(ctx, abs)
}

// AddFolder makes dir the root and loads every file found under it. Adding
// the loaded folder again picks up only files not seen before.
func (z *Zone) AddFolder(ctx context.Context, dir string) (*pipeline.Batch, error) {
	z.mu.Lock()
	defer z.mu.Unlock()

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	// WalkDir does not follow a symlinked root. The resolved path is both the
	// walk root and the builder root so prefix stripping still lines up.
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, abs)
	}

	if z.builder.Len() > 0 {
		switch root := z.builder.Root(); {
		case root == "":
			return nil, fmt.Errorf("%w: loose files are loaded", ErrRootConflict)
		case root != abs:
			return nil, fmt.Errorf("%w: folder %s is loaded", ErrRootConflict, root)
		}
	} else {
		z.builder = doctree.NewBuilder(abs)
	}

	files, err := collect.Walk(abs, z.walk)
	if err != nil {
		return nil, fmt.Errorf("enumerate folder: %w", err)
	}
	z.log.Debug("enumerated folder", "root", abs, "files", len(files))
	return z.load(ctx, files)
}

// load must be called with z.mu held.
func (z *Zone) load(ctx context.Context, paths []string) (*pipeline.Batch, error) {
	fresh := make([]string, 0, len(paths))
	for _, p := range paths {
		if z.seen[p] {
			z.log.Debug("ignoring duplicate drop", "path", p)
			continue
		}
		z.seen[p] = true
		fresh = append(fresh, p)
	}

	batch, err := z.loader.Load(ctx, fresh)
	if err != nil {
		for _, p := range fresh {
			delete(z.seen, p)
		}
		return batch, err
	}
	for _, f := range batch.Failures() {
		delete(z.seen, f.Path)
	}
	for _, doc := range batch.Documents() {
		if err := z.builder.Add(doc); err != nil {
			return batch, fmt.Errorf("add %s: %w", doc.Path, err)
		}
	}
	return batch, nil
}

// Clear drops every document and the root.
func (z *Zone) Clear() {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.builder = doctree.NewBuilder("")
	z.seen = make(map[string]bool)
}

// XML serializes the loaded documents.
func (z *Zone) XML() (string, error) {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.builder.Serialize()
}

// Copy serializes the loaded documents and hands the text to the sink.
func (z *Zone) Copy(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	z.mu.Lock()
	text, err := z.builder.Serialize()
	summary := z.summaryLocked()
	z.mu.Unlock()
	if err != nil {
		return fmt.Errorf("serialize documents: %w", err)
	}

	if z.maxTokens > 0 && summary.Tokens > z.maxTokens {
		z.log.Warn("document exceeds token budget", "tokens", summary.Tokens, "max_tokens", z.maxTokens)
	}
	if err := z.sink.Write(text); err != nil {
		return err
	}
	z.log.Info("copied documents", "documents", summary.Documents, "tokens", tokens.Format(summary.Tokens))
	return nil
}

// Summary describes what the zone holds.
type Summary struct {
	Root      string
	Documents int
	ByKind    map[doctree.Kind]int
	Bytes     int
	Tokens    int
}

func (s Summary) String() string {
	out := fmt.Sprintf("%d documents", s.Documents)
	if s.Root != "" {
		out = fmt.Sprintf("%s in %s", out, filepath.Base(s.Root))
	}
	return fmt.Sprintf("%s (%d plain, %d pdf, %d image), ~%s tokens",
		out, s.ByKind[doctree.KindPlain], s.ByKind[doctree.KindPDF], s.ByKind[doctree.KindImage], tokens.Format(s.Tokens))
}

// Summary returns document counts and the estimated token cost.
func (z *Zone) Summary() Summary {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.summaryLocked()
}

func (z *Zone) summaryLocked() Summary {
	s := Summary{
		Root:   z.builder.Root(),
		ByKind: make(map[doctree.Kind]int),
	}
	for _, doc := range z.builder.Documents() {
		s.Documents++
		s.ByKind[doc.Kind]++
		s.Bytes += len(doc.Content)
		s.Tokens += tokens.Estimate(doc.Content)
	}
	return s
}

func absPaths(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		out = append(out, abs)
	}
	return out, nil
}
