package doctree

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind classifies where a document's text came from.
type Kind string

const (
	KindPlain Kind = "plain"
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

// ParseKind maps a kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPlain, "":
		return KindPlain, nil
	case KindPDF:
		return KindPDF, nil
	case KindImage:
		return KindImage, nil
	}
	return "", fmt.Errorf("unknown document kind: %q", s)
}

// ErrEmptyPath is returned when a document path has no name segment.
var ErrEmptyPath = errors.New("document path is empty")

// Document is one dropped file with its already-extracted text.
type Document struct {
	Path    string // Absolute or relative path; OS or slash separated
	Content string // Extracted text, emitted verbatim
	Kind    Kind
}

// Segments splits the path into its non-empty components.
func (d Document) Segments() []string {
	return splitPath(d.Path)
}

// Name is the final path segment.
func (d Document) Name() string {
	segs := d.Segments()
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

func splitPath(p string) []string {
	p = filepath.ToSlash(p)
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// EncodingError reports text that cannot be carried by an XML 1.0 document.
type EncodingError struct {
	Path   string // Document path the text belongs to
	Offset int    // Byte offset of the offending sequence
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode %s: %s at byte %d", e.Path, e.Reason, e.Offset)
}

// Validate reports whether the document can be serialized. Callers use it
// to filter documents before Add.
func (d Document) Validate() error {
	if len(d.Segments()) == 0 {
		return ErrEmptyPath
	}
	if err := checkText(d.Path, d.Name()); err != nil {
		return err
	}
	return checkText(d.Path, d.Content)
}
