package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bhaveshprodev/OhOnePro/internal/parser"
)

var keys = []string{
	FileEnv, "WORKERS", "MAX_FILE_BYTES", "MAX_FILES", "INCLUDE_HIDDEN", "EXCLUDE",
	"EXTRACT_MODE", "PDF_FALLBACK_PDFTOTEXT", "IMAGE_OCR", "MAX_TOKENS", "LOG_LEVEL", "LOG_FORMAT",
}

// isolate clears every config variable and moves into an empty directory so
// no stray .env file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Defaults()) {
		t.Errorf("expected defaults %+v, got %+v", Defaults(), cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("WORKERS", "8")
	t.Setenv("MAX_FILE_BYTES", "1024")
	t.Setenv("INCLUDE_HIDDEN", "true")
	t.Setenv("EXCLUDE", "*.log, dist/** ,,")
	t.Setenv("EXTRACT_MODE", "plain")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")
	t.Setenv("MAX_TOKENS", "100000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Workers)
	}
	if cfg.MaxFileBytes != 1024 {
		t.Errorf("expected 1024 max bytes, got %d", cfg.MaxFileBytes)
	}
	if !cfg.IncludeHidden {
		t.Error("expected IncludeHidden")
	}
	if want := []string{"*.log", "dist/**"}; !reflect.DeepEqual(cfg.Exclude, want) {
		t.Errorf("expected exclude %v, got %v", want, cfg.Exclude)
	}
	if cfg.ExtractMode != parser.ModePlain {
		t.Errorf("expected mode %q, got %q", parser.ModePlain, cfg.ExtractMode)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback disabled")
	}
	if cfg.MaxTokens != 100000 {
		t.Errorf("expected 100000 max tokens, got %d", cfg.MaxTokens)
	}
}

func TestLoad_ClampsInvalidNumbers(t *testing.T) {
	isolate(t)
	t.Setenv("WORKERS", "-3")
	t.Setenv("MAX_FILES", "0")
	t.Setenv("MAX_FILE_BYTES", "lots")
	t.Setenv("MAX_TOKENS", "-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := Defaults()
	if cfg.Workers != d.Workers || cfg.MaxFiles != d.MaxFiles || cfg.MaxFileBytes != d.MaxFileBytes {
		t.Errorf("expected clamped defaults, got %+v", cfg)
	}
	if cfg.MaxTokens != 0 {
		t.Errorf("expected MaxTokens 0, got %d", cfg.MaxTokens)
	}
}

func TestLoad_YAMLOverlayUnderEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "ohonepro.yaml")
	yml := "workers: 2\nimage_ocr: true\nexclude:\n  - \"*.tmp\"\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(FileEnv, path)
	t.Setenv("WORKERS", "6")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Workers != 6 {
		t.Errorf("expected env to win with 6 workers, got %d", cfg.Workers)
	}
	if !cfg.ImageOCR {
		t.Error("expected ImageOCR from file")
	}
	if want := []string{"*.tmp"}; !reflect.DeepEqual(cfg.Exclude, want) {
		t.Errorf("expected exclude %v, got %v", want, cfg.Exclude)
	}
	if level, _ := cfg.SlogLevel(); level != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", level)
	}
	if cfg.MaxFiles != Defaults().MaxFiles {
		t.Errorf("expected untouched default max files, got %d", cfg.MaxFiles)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("workers: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(FileEnv, path)

	if _, err := Load(); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestLoad_MissingYAML(t *testing.T) {
	dir := isolate(t)
	t.Setenv(FileEnv, filepath.Join(dir, "absent.yaml"))

	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	os.Unsetenv("MAX_FILES")
	t.Cleanup(func() { os.Unsetenv("MAX_FILES") })
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("MAX_FILES=42\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxFiles != 42 {
		t.Errorf("expected 42 max files from .env, got %d", cfg.MaxFiles)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"plain mode", func(c *Config) { c.ExtractMode = parser.ModePlain }, false},
		{"json logs", func(c *Config) { c.LogFormat = "JSON" }, false},
		{"bad mode", func(c *Config) { c.ExtractMode = "fancy" }, true},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, true},
	}
	for _, tt := range tests {
		cfg := Defaults()
		tt.mutate(&cfg)
		err := cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: expected error=%v, got %v", tt.name, tt.wantErr, err)
		}
	}
}
