package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ImageParser handles raster images. Without OCR the document carries no
// text; with OCR it shells out to tesseract.
type ImageParser struct {
	OCR bool
}

func (p *ImageParser) Parse(r io.Reader, filename string) (string, error) {
	if !p.OCR {
		_, err := io.Copy(io.Discard, r)
		return "", err
	}

	// tesseract reads from a path; keep the extension so it can pick a decoder.
	tmp, err := os.CreateTemp("", "ohonepro-img-*"+filepath.Ext(filename))
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	out, err := exec.Command("tesseract", tmpPath, "stdout").Output()
	if err != nil {
		return "", fmt.Errorf("tesseract %s: %w", filename, err)
	}
	return sanitize(strings.TrimSpace(string(out))), nil
}
