package dropzone

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bhaveshprodev/OhOnePro/internal/config"
	"github.com/bhaveshprodev/OhOnePro/internal/doctree"
)

type recordingSink struct {
	texts []string
	err   error
}

func (s *recordingSink) Write(text string) error {
	if s.err != nil {
		return s.err
	}
	s.texts = append(s.texts, text)
	return nil
}

func newZone(t *testing.T) (*Zone, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(config.Defaults(), sink, log), sink
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestZone_AddFolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")
	writeTree(t, dir, map[string]string{
		"a.txt":          "A",
		"src/b.md":       "B",
		".git/HEAD":      "ref",
		"src/.env":       "SECRET=1",
		"build/blob.bin": "\x00\x01\x02\x03\xff\xfe\x00\x00",
	})

	z, _ := newZone(t)
	batch, err := z.AddFolder(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(batch.Documents()); n != 2 {
		t.Fatalf("expected 2 loaded documents, got %d", n)
	}

	got, err := z.XML()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := doctree.Declaration + `
<folder name="proj">
  <file name="a.txt">
    <content>A</content>
  </file>
  <folder name="src">
    <file name="b.md">
      <content>B</content>
    </file>
  </folder>
</folder>`
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}

	s := z.Summary()
	if s.Documents != 2 || s.ByKind[doctree.KindPlain] != 2 || s.Tokens != 2 || s.Bytes != 2 {
		t.Errorf("unexpected summary %+v", s)
	}
	if want := "2 documents in proj (2 plain, 0 pdf, 0 image), ~2 tokens"; s.String() != want {
		t.Errorf("expected %q, got %q", want, s.String())
	}
}

func TestZone_AddFilesFlattens(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"one/x.txt": "x", "two/y.txt": "y"})

	z, _ := newZone(t)
	_, err := z.AddFiles(context.Background(), filepath.Join(dir, "one", "x.txt"), filepath.Join(dir, "two", "y.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := z.XML()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "<folder") {
		t.Errorf("expected flat output, got:\n%s", got)
	}
	if strings.Index(got, `name="x.txt"`) > strings.Index(got, `name="y.txt"`) {
		t.Errorf("expected x.txt before y.txt, got:\n%s", got)
	}
}

func TestZone_DuplicatesIgnored(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "a"})
	a := filepath.Join(dir, "a.txt")

	z, _ := newZone(t)
	ctx := context.Background()
	if _, err := z.AddFiles(ctx, a, a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := z.AddFiles(ctx, filepath.Join(dir, ".", "a.txt")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := z.Summary().Documents; n != 1 {
		t.Errorf("expected 1 document, got %d", n)
	}
}

func TestZone_RefreshFolderAddsOnlyNewFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")
	writeTree(t, dir, map[string]string{"a.txt": "a"})

	z, _ := newZone(t)
	ctx := context.Background()
	if _, err := z.AddFolder(ctx, dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	writeTree(t, dir, map[string]string{"b.txt": "b"})
	batch, err := z.AddFolder(ctx, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(batch.Documents()); n != 1 {
		t.Errorf("expected 1 new document, got %d", n)
	}
	if n := z.Summary().Documents; n != 2 {
		t.Errorf("expected 2 documents, got %d", n)
	}
}

func TestZone_RootConflicts(t *testing.T) {
	base := t.TempDir()
	one := filepath.Join(base, "one")
	two := filepath.Join(base, "two")
	writeTree(t, one, map[string]string{"a.txt": "a"})
	writeTree(t, two, map[string]string{"b.txt": "b"})
	ctx := context.Background()

	z, _ := newZone(t)
	if _, err := z.AddFolder(ctx, one); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := z.AddFolder(ctx, two); !errors.Is(err, ErrRootConflict) {
		t.Errorf("expected ErrRootConflict for second folder, got %v", err)
	}
	if _, err := z.AddFiles(ctx, filepath.Join(two, "b.txt")); !errors.Is(err, ErrRootConflict) {
		t.Errorf("expected ErrRootConflict for loose file, got %v", err)
	}

	z.Clear()
	if _, err := z.AddFiles(ctx, filepath.Join(two, "b.txt")); err != nil {
		t.Fatalf("unexpected error after clear: %v", err)
	}
	if _, err := z.AddFolder(ctx, one); !errors.Is(err, ErrRootConflict) {
		t.Errorf("expected ErrRootConflict for folder over loose files, got %v", err)
	}
}

func TestZone_AddFolderSymlinkRoot(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "real")
	writeTree(t, target, map[string]string{"a.txt": "A", "sub/b.txt": "B"})
	link := filepath.Join(base, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	z, _ := newZone(t)
	ctx := context.Background()
	batch, err := z.AddFolder(ctx, link)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(batch.Documents()); n != 2 {
		t.Fatalf("expected 2 loaded documents, got %d", n)
	}

	got, err := z.XML()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := doctree.Declaration + `
<folder name="real">
  <file name="a.txt">
    <content>A</content>
  </file>
  <folder name="sub">
    <file name="b.txt">
      <content>B</content>
    </file>
  </folder>
</folder>`
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}

	if _, err := z.AddFolder(ctx, target); err != nil {
		t.Errorf("expected the link target to count as the loaded folder, got %v", err)
	}
	if n := z.Summary().Documents; n != 2 {
		t.Errorf("expected 2 documents, got %d", n)
	}
}

func TestZone_AddFolderRejectsFile(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "a"})

	z, _ := newZone(t)
	if _, err := z.AddFolder(context.Background(), filepath.Join(dir, "a.txt")); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("expected ErrNotDirectory, got %v", err)
	}
}

func TestZone_FailedFileCanBeRetried(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "late.txt")

	z, _ := newZone(t)
	ctx := context.Background()
	batch, err := z.AddFiles(ctx, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(batch.Failures()) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(batch.Failures()))
	}

	writeTree(t, dir, map[string]string{"late.txt": "here now"})
	if _, err := z.AddFiles(ctx, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := z.Summary().Documents; n != 1 {
		t.Errorf("expected 1 document after retry, got %d", n)
	}
}

func TestZone_ClearResets(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "proj")
	writeTree(t, dir, map[string]string{"a.txt": "a"})

	z, _ := newZone(t)
	if _, err := z.AddFolder(context.Background(), dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	z.Clear()
	z.Clear()

	got, err := z.XML()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := doctree.Declaration + "\n<files/>"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestZone_Copy(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "a & b"})

	z, sink := newZone(t)
	ctx := context.Background()
	if _, err := z.AddFiles(ctx, filepath.Join(dir, "a.txt")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := z.Copy(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sink.texts) != 1 {
		t.Fatalf("expected 1 write, got %d", len(sink.texts))
	}
	if !strings.Contains(sink.texts[0], "<content>a &amp; b</content>") {
		t.Errorf("expected escaped content, got:\n%s", sink.texts[0])
	}
}

func TestZone_CopyErrors(t *testing.T) {
	z, sink := newZone(t)
	sink.err = errors.New("clipboard locked")
	if err := z.Copy(context.Background()); !errors.Is(err, sink.err) {
		t.Errorf("expected sink error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := z.Copy(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
