package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bhaveshprodev/OhOnePro/internal/doctree"
	"github.com/gabriel-vasile/mimetype"
)

// Parser extracts the text of one file.
type Parser interface {
	Parse(r io.Reader, filename string) (string, error)
}

// Mode selects how markup formats are rendered.
type Mode string

const (
	// ModeRaw keeps text-based files byte for byte.
	ModeRaw Mode = "raw"
	// ModePlain strips markup from Markdown and HTML.
	ModePlain Mode = "plain"
)

// ParseMode maps a mode name to a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeRaw, "":
		return ModeRaw, nil
	case ModePlain:
		return ModePlain, nil
	}
	return "", fmt.Errorf("unknown extract mode: %q", s)
}

// Options configures parser selection.
type Options struct {
	Mode                 Mode
	PDFFallbackPdftotext bool
	ImageOCR             bool
}

// ErrUnsupported is returned for files no parser can handle.
var ErrUnsupported = errors.New("unsupported file type")

// SupportedExtensions lists file extensions handled without sniffing.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".text":     true,
	".log":      true,
	".csv":      true,
	".tsv":      true,
	".json":     true,
	".xml":      true,
	".yaml":     true,
	".yml":      true,
	".toml":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".png":      true,
	".jpg":      true,
	".jpeg":     true,
	".gif":      true,
	".heic":     true,
	".tiff":     true,
	".webp":     true,
}

// ForFile returns the parser and document kind for a filename.
func ForFile(filename string, opts Options) (Parser, doctree.Kind, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return &MarkdownParser{Mode: opts.Mode}, doctree.KindPlain, nil
	case ".html", ".htm":
		return &HTMLParser{Mode: opts.Mode}, doctree.KindPlain, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, doctree.KindPDF, nil
	case ".csv":
		return &CSVParser{Mode: opts.Mode}, doctree.KindPlain, nil
	case ".tsv":
		return &CSVParser{Mode: opts.Mode, Comma: '\t'}, doctree.KindPlain, nil
	case ".docx":
		return &DOCXParser{}, doctree.KindPlain, nil
	case ".png", ".jpg", ".jpeg", ".gif", ".heic", ".tiff", ".webp":
		return &ImageParser{OCR: opts.ImageOCR}, doctree.KindImage, nil
	}
	if SupportedExtensions[ext] {
		return &TextParser{}, doctree.KindPlain, nil
	}
	return nil, "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
}

// ForPath is ForFile with a content sniff for extensions ForFile does not know.
func ForPath(path string, opts Options) (Parser, doctree.Kind, error) {
	p, kind, err := ForFile(path, opts)
	if err == nil || !errors.Is(err, ErrUnsupported) {
		return p, kind, err
	}
	return Sniff(path, opts)
}

// Sniff picks a parser from the file's detected MIME type.
func Sniff(path string, opts Options) (Parser, doctree.Kind, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("detect mime type: %w", err)
	}
	return forMIME(mtype, opts)
}

func forMIME(mtype *mimetype.MIME, opts Options) (Parser, doctree.Kind, error) {
	switch {
	case mtype.Is("application/pdf"):
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, doctree.KindPDF, nil
	case mtype.Is("text/html"):
		return &HTMLParser{Mode: opts.Mode}, doctree.KindPlain, nil
	case isText(mtype):
		return &TextParser{}, doctree.KindPlain, nil
	case strings.HasPrefix(mtype.String(), "image/"):
		return &ImageParser{OCR: opts.ImageOCR}, doctree.KindImage, nil
	}
	return nil, "", fmt.Errorf("%w: %s", ErrUnsupported, mtype.String())
}

// isText walks the MIME hierarchy; text/plain is an ancestor of every
// text-based type mimetype knows about.
func isText(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "text/") {
			return true
		}
	}
	return false
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// IsSupported reports whether ForPath would find a parser for path.
func IsSupported(path string) bool {
	if IsSupportedExtension(path) {
		return true
	}
	_, _, err := Sniff(path, Options{})
	return err == nil
}
