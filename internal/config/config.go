package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/bhaveshprodev/OhOnePro/internal/parser"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileEnv names the optional YAML file layered under the environment.
const FileEnv = "OHONEPRO_CONFIG"

type Config struct {
	// Loader
	Workers      int   `yaml:"workers"`
	MaxFileBytes int64 `yaml:"max_file_bytes"`

	// Folder enumeration
	MaxFiles      int      `yaml:"max_files"`
	IncludeHidden bool     `yaml:"include_hidden"`
	Exclude       []string `yaml:"exclude"`

	// Extraction
	ExtractMode          parser.Mode `yaml:"extract_mode"`
	PDFFallbackPdftotext bool        `yaml:"pdf_fallback_pdftotext"`
	ImageOCR             bool        `yaml:"image_ocr"`

	// Warn when the copied document is estimated above this many tokens. 0 disables.
	MaxTokens int `yaml:"max_tokens"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Workers:              4,
		MaxFileBytes:         52428800, // 50MB
		MaxFiles:             5000,
		ExtractMode:          parser.ModeRaw,
		PDFFallbackPdftotext: true,
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// OHONEPRO_CONFIG, then the environment. A .env file in the working
// directory is loaded into the environment first and never overrides
// variables that are already set.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()
	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.Workers = envInt("WORKERS", cfg.Workers)
	cfg.MaxFileBytes = envInt64("MAX_FILE_BYTES", cfg.MaxFileBytes)
	cfg.MaxFiles = envInt("MAX_FILES", cfg.MaxFiles)
	cfg.IncludeHidden = envBool("INCLUDE_HIDDEN", cfg.IncludeHidden)
	cfg.Exclude = envList("EXCLUDE", cfg.Exclude)
	cfg.ExtractMode = parser.Mode(envOr("EXTRACT_MODE", string(cfg.ExtractMode)))
	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)
	cfg.ImageOCR = envBool("IMAGE_OCR", cfg.ImageOCR)
	cfg.MaxTokens = envInt("MAX_TOKENS", cfg.MaxTokens)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOr("LOG_FORMAT", cfg.LogFormat)

	cfg.clamp()
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) clamp() {
	d := Defaults()
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.MaxFileBytes <= 0 {
		c.MaxFileBytes = d.MaxFileBytes
	}
	if c.MaxFiles <= 0 {
		c.MaxFiles = d.MaxFiles
	}
	if c.MaxTokens < 0 {
		c.MaxTokens = 0
	}
}

func (c Config) Validate() error {
	if _, err := parser.ParseMode(string(c.ExtractMode)); err != nil {
		return fmt.Errorf("EXTRACT_MODE: %w", err)
	}
	if _, err := c.SlogLevel(); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// SlogLevel parses LogLevel (debug, info, warn, error).
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// envList splits a comma separated variable, dropping empty items.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
