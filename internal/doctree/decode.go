package doctree

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Entry is one file recovered from a serialized document.
type Entry struct {
	Path    string // Slash-separated path relative to the wrapper element
	Content string
}

// Decode parses a document produced by Serialize and returns the wrapper's
// folder name (empty for a files wrapper) and the files in document order.
func Decode(r io.Reader) (string, []Entry, error) {
	dec := xml.NewDecoder(r)

	var (
		root    string
		entries []Entry
		folders []string
		depth   int
		file    *Entry
		inBody  bool
		sawRoot bool
		body    strings.Builder
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", nil, fmt.Errorf("decode xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			name := attr(t, "name")
			switch {
			case depth == 1:
				if t.Name.Local != "files" && t.Name.Local != "folder" {
					return "", nil, fmt.Errorf("decode xml: unexpected root element <%s>", t.Name.Local)
				}
				root = name
				sawRoot = true
			case t.Name.Local == "folder":
				folders = append(folders, name)
			case t.Name.Local == "file":
				p := strings.Join(append(append([]string(nil), folders...), name), "/")
				file = &Entry{Path: p}
			case t.Name.Local == "content" && file != nil:
				inBody = true
				body.Reset()
			default:
				return "", nil, fmt.Errorf("decode xml: unexpected element <%s>", t.Name.Local)
			}
		case xml.CharData:
			if inBody {
				body.Write(t)
			}
		case xml.EndElement:
			depth--
			switch t.Name.Local {
			case "content":
				if inBody {
					file.Content = body.String()
					inBody = false
				}
			case "file":
				if file != nil {
					entries = append(entries, *file)
					file = nil
				}
			case "folder":
				if depth > 0 && len(folders) > 0 {
					folders = folders[:len(folders)-1]
				}
			}
		}
	}

	if !sawRoot {
		return "", nil, fmt.Errorf("decode xml: no files or folder element")
	}
	if depth != 0 {
		return "", nil, fmt.Errorf("decode xml: unbalanced document")
	}
	return root, entries, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
