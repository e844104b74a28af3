package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files. In plain mode the goldmark AST is
// flattened to block text, one block per paragraph.
type MarkdownParser struct {
	Mode Mode
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (string, error) {
	src, err := readUTF8(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	if p.Mode != ModePlain {
		return src, nil
	}

	raw := []byte(src)
	doc := goldmark.New().Parser().Parse(text.NewReader(raw))

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		t := extractText(n, raw)
		if t != "" {
			blocks = append(blocks, t)
		}
	}
	return strings.Join(blocks, "\n\n"), nil
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	switch n.Kind() {
	case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			s := extractText(c, src)
			if s == "" {
				continue
			}
			if c.Type() == ast.TypeBlock && buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(s)
		}
	}
	return strings.TrimSpace(buf.String())
}
