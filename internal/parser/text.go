package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrNotUTF8 is returned for text files that are not valid UTF-8.
var ErrNotUTF8 = errors.New("file is not valid UTF-8 text")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextParser reads plain text files verbatim.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (string, error) {
	src, err := readUTF8(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	return src, nil
}

// readUTF8 reads all of r, dropping a leading byte order mark.
func readUTF8(r io.Reader) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	src = bytes.TrimPrefix(src, utf8BOM)
	if !utf8.Valid(src) {
		return "", ErrNotUTF8
	}
	return string(src), nil
}
