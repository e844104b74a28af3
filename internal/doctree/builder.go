package doctree

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Builder accumulates documents and serializes them as one XML tree.
// It is not safe for concurrent use; callers own synchronization.
type Builder struct {
	root string
	docs []Document
}

// NewBuilder returns a builder rooted at root. An empty root means the
// documents are loose files and are addressed by name only.
func NewBuilder(root string) *Builder {
	return &Builder{root: root}
}

// Root returns the root path the builder was created with.
func (b *Builder) Root() string { return b.root }

// Len returns the number of accumulated documents.
func (b *Builder) Len() int { return len(b.docs) }

// Documents returns a copy of the accumulated documents in insertion order.
func (b *Builder) Documents() []Document {
	out := make([]Document, len(b.docs))
	copy(out, b.docs)
	return out
}

// Add appends a document. The only validation is a non-empty path.
func (b *Builder) Add(doc Document) error {
	if len(doc.Segments()) == 0 {
		return ErrEmptyPath
	}
	if doc.Kind == "" {
		doc.Kind = KindPlain
	}
	b.docs = append(b.docs, doc)
	return nil
}

// Clear drops every document. The root is kept.
func (b *Builder) Clear() {
	b.docs = nil
}

// Serialize renders the accumulated documents as a pretty-printed XML
// document. Output is deterministic for a given insertion order.
func (b *Builder) Serialize() (string, error) {
	var buf bytes.Buffer
	if _, err := b.WriteTo(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteTo streams the serialized document to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	t, err := b.build()
	if err != nil {
		return 0, err
	}
	enc := newEncoder(w)
	enc.document(t)
	return enc.flush()
}

// folderNode is one directory level. Index 0 of the arena is the wrapper.
type folderNode struct {
	name     string
	children []childRef
}

// childRef points either at a folder in the arena or at a document.
type childRef struct {
	folder int // -1 for a file entry
	doc    int
}

type tree struct {
	wrapper    string // "folder" or "files"
	rootName   string
	hasRoot    bool
	folders    []folderNode
	docs       []Document
	fileNames  []string
	emptyInput bool
}

func (b *Builder) build() (*tree, error) {
	t := &tree{wrapper: "files", docs: b.docs}
	if b.root != "" {
		t.wrapper = "folder"
		t.hasRoot = true
		t.rootName = rootName(b.root)
		if err := checkText(b.root, t.rootName); err != nil {
			return nil, err
		}
	}

	if len(b.docs) == 0 {
		t.emptyInput = true
		return t, nil
	}

	prefix := rootPrefix(b.root)
	t.folders = []folderNode{{name: t.rootName}}
	t.fileNames = make([]string, len(b.docs))
	memo := make(map[string]int)

	for i, doc := range b.docs {
		var segs []string
		if t.hasRoot {
			segs = splitPath(relativeTo(doc.Path, prefix))
		} else {
			segs = []string{doc.Name()}
		}
		if len(segs) == 0 || segs[len(segs)-1] == "" {
			return nil, &EncodingError{Path: doc.Path, Reason: "path has no file name"}
		}

		current := 0
		var key strings.Builder
		for _, seg := range segs[:len(segs)-1] {
			key.WriteString("/")
			key.WriteString(seg)
			idx, ok := memo[key.String()]
			if !ok {
				if err := checkText(doc.Path, seg); err != nil {
					return nil, err
				}
				idx = len(t.folders)
				t.folders = append(t.folders, folderNode{name: seg})
				t.folders[current].children = append(t.folders[current].children, childRef{folder: idx})
				memo[key.String()] = idx
			}
			current = idx
		}

		name := segs[len(segs)-1]
		if err := checkText(doc.Path, name); err != nil {
			return nil, err
		}
		if err := checkText(doc.Path, doc.Content); err != nil {
			return nil, err
		}
		t.fileNames[i] = name
		t.folders[current].children = append(t.folders[current].children, childRef{folder: -1, doc: i})
	}
	return t, nil
}

// rootName is the wrapper's name attribute: the last root segment, or "/"
// for the filesystem root, which has none.
func rootName(root string) string {
	segs := splitPath(root)
	if len(segs) == 0 {
		return "/"
	}
	return segs[len(segs)-1]
}

// rootPrefix normalizes the root so it ends in exactly one separator.
func rootPrefix(root string) string {
	if root == "" {
		return ""
	}
	r := strings.TrimRight(filepath.ToSlash(root), "/")
	return r + "/"
}

// relativeTo strips prefix from p. Paths outside the root are returned
// unchanged and keep their full hierarchy.
func relativeTo(p, prefix string) string {
	p = filepath.ToSlash(p)
	if prefix != "" && strings.HasPrefix(p, prefix) {
		return p[len(prefix):]
	}
	return p
}
