package doctree

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"
)

// Declaration is the XML prolog written ahead of every document.
const Declaration = `<?xml version="1.0" encoding="utf-8" standalone="yes"?>`

const indentUnit = "  "

type encoder struct {
	w   *bufio.Writer
	n   int64
	err error
}

func newEncoder(w io.Writer) *encoder {
	return &encoder{w: bufio.NewWriter(w)}
}

func (e *encoder) str(s string) {
	if e.err != nil {
		return
	}
	n, err := e.w.WriteString(s)
	e.n += int64(n)
	e.err = err
}

func (e *encoder) flush() (int64, error) {
	if e.err != nil {
		return e.n, e.err
	}
	return e.n, e.w.Flush()
}

func (e *encoder) indent(depth int) {
	e.str("\n")
	for range depth {
		e.str(indentUnit)
	}
}

func (e *encoder) open(tag, name string, named bool) {
	e.str("<" + tag)
	if named {
		e.str(` name="`)
		e.str(escapeAttr(name))
		e.str(`"`)
	}
}

func (e *encoder) document(t *tree) {
	e.str(Declaration)
	e.indent(0)
	e.open(t.wrapper, t.rootName, t.hasRoot)
	if t.emptyInput {
		e.str("/>")
		return
	}
	e.str(">")
	e.children(t, 0, 1)
	e.indent(0)
	e.str("</" + t.wrapper + ">")
}

func (e *encoder) children(t *tree, folder, depth int) {
	for _, c := range t.folders[folder].children {
		e.indent(depth)
		if c.folder >= 0 {
			e.open("folder", t.folders[c.folder].name, true)
			if len(t.folders[c.folder].children) == 0 {
				e.str("/>")
				continue
			}
			e.str(">")
			e.children(t, c.folder, depth+1)
			e.indent(depth)
			e.str("</folder>")
			continue
		}
		e.open("file", t.fileNames[c.doc], true)
		e.str(">")
		e.indent(depth + 1)
		if content := t.docs[c.doc].Content; content == "" {
			e.str("<content/>")
		} else {
			e.str("<content>")
			e.str(escapeText(content))
			e.str("</content>")
		}
		e.indent(depth)
		e.str("</file>")
	}
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\r", "&#xD;",
)

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"\t", "&#x9;",
	"\n", "&#xA;",
	"\r", "&#xD;",
)

func escapeText(s string) string { return textEscaper.Replace(s) }

func escapeAttr(s string) string { return attrEscaper.Replace(s) }

// checkText rejects strings an XML 1.0 document cannot represent.
func checkText(path, s string) error {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return &EncodingError{Path: path, Offset: i, Reason: "invalid UTF-8"}
		}
		if !isXMLChar(r) {
			return &EncodingError{Path: path, Offset: i, Reason: "character not allowed in XML"}
		}
		i += size
	}
	return nil
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}
