// Package collect enumerates the files under a dropped folder.
package collect

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bhaveshprodev/OhOnePro/internal/parser"
	"github.com/gobwas/glob"
)

// ErrTooManyFiles is returned when a walk exceeds Options.MaxFiles.
var ErrTooManyFiles = errors.New("too many files")

// Options controls which entries a walk returns.
type Options struct {
	IncludeHidden bool     // Walk dot-files and dot-directories
	Exclude       []string // Glob patterns matched against the relative path and the base name
	MaxFiles      int      // 0 means unlimited
	SupportedOnly bool     // Drop files no parser can read
}

// skippedDirs are never descended into.
var skippedDirs = map[string]bool{
	".git": true, "node_modules": true, "vendor": true, "__pycache__": true,
	".idea": true, ".vscode": true, ".cache": true, ".svn": true, ".hg": true,
}

// skippedNames are OS metadata files.
var skippedNames = map[string]bool{
	".ds_store":   true,
	"thumbs.db":   true,
	"desktop.ini": true,
	".localized":  true,
	"icon\r":      true,
}

// Matcher holds compiled exclude patterns.
type Matcher struct {
	globs []glob.Glob
}

// CompilePatterns compiles glob patterns. '*' stops at '/', '**' does not.
func CompilePatterns(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", p, err)
		}
		m.globs = append(m.globs, g)
	}
	return m, nil
}

// Match reports whether rel (slash separated) or its base name matches.
func (m *Matcher) Match(rel string) bool {
	if m == nil {
		return false
	}
	base := rel
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		base = rel[i+1:]
	}
	for _, g := range m.globs {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

// Walk returns the regular files under root in lexical order. Paths are
// root joined with the entry's relative path.
func Walk(root string, opts Options) ([]string, error) {
	exclude, err := CompilePatterns(opts.Exclude)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		name := d.Name()

		if d.IsDir() {
			if skippedDirs[name] || (!opts.IncludeHidden && isHidden(name)) || exclude.Match(rel) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if skippedNames[strings.ToLower(name)] || (!opts.IncludeHidden && isHidden(name)) {
			return nil
		}
		if exclude.Match(rel) {
			return nil
		}
		if opts.SupportedOnly && !parser.IsSupported(path) {
			return nil
		}

		if opts.MaxFiles > 0 && len(files) >= opts.MaxFiles {
			return fmt.Errorf("%w: more than %d under %s", ErrTooManyFiles, opts.MaxFiles, root)
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
