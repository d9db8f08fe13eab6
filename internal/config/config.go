// Package config loads settings for the docxmark CLI, HTTP service and MCP
// server: defaults, then a TOML or YAML file, then DOCXMARK_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/docxmark"
	"github.com/tsawler/docxmark/ocr"
)

// DefaultPath is read when Load is given no path. A missing default file is
// not an error.
const DefaultPath = "docxmark.toml"

type Config struct {
	// HTTP service
	Port           string        `toml:"port" yaml:"port"`
	MaxUploadBytes int64         `toml:"max_upload_bytes" yaml:"max_upload_bytes"`
	ReadTimeout    time.Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout   time.Duration `toml:"write_timeout" yaml:"write_timeout"`
	APIKey         string        `toml:"api_key" yaml:"api_key"`

	// Conversion
	StyleMap                string `toml:"style_map" yaml:"style_map"`
	StyleMapFile            string `toml:"style_map_file" yaml:"style_map_file"`
	IncludeDefaultStyleMap  bool   `toml:"include_default_style_map" yaml:"include_default_style_map"`
	IncludeEmbeddedStyleMap bool   `toml:"include_embedded_style_map" yaml:"include_embedded_style_map"`
	IgnoreEmptyParagraphs   bool   `toml:"ignore_empty_paragraphs" yaml:"ignore_empty_paragraphs"`
	IDPrefix                string `toml:"id_prefix" yaml:"id_prefix"`
	TrackedChangeTokens     bool   `toml:"tracked_change_tokens" yaml:"tracked_change_tokens"`
	CommentTokens           bool   `toml:"comment_tokens" yaml:"comment_tokens"`
	ExternalFileAccess      bool   `toml:"external_file_access" yaml:"external_file_access"`
	OCRAltText              bool   `toml:"ocr_alt_text" yaml:"ocr_alt_text"`
	OCRLanguage             string `toml:"ocr_language" yaml:"ocr_language"`
	OCRPageSegMode          string `toml:"ocr_page_seg_mode" yaml:"ocr_page_seg_mode"`
	MarkdownEngine          string `toml:"markdown_engine" yaml:"markdown_engine"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Port:                    "8090",
		MaxUploadBytes:          50 << 20,
		ReadTimeout:             30 * time.Second,
		WriteTimeout:            2 * time.Minute,
		IncludeDefaultStyleMap:  true,
		IncludeEmbeddedStyleMap: true,
		IgnoreEmptyParagraphs:   true,
		OCRPageSegMode:          "auto",
		MarkdownEngine:          docxmark.MarkdownNative,
	}
}

// Load reads config: defaults -> file -> env vars (env wins). Files ending
// in .yaml or .yml are decoded as YAML, anything else as TOML. When the
// style map file is set its rules are appended to the inline style map.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(path, data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	cfg.applyEnv()

	if cfg.StyleMapFile != "" {
		rules, err := os.ReadFile(cfg.StyleMapFile)
		if err != nil {
			return cfg, fmt.Errorf("reading style map: %w", err)
		}
		cfg.StyleMap = joinLines(cfg.StyleMap, string(rules))
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return toml.Unmarshal(data, cfg)
	}
}

func (c *Config) applyEnv() {
	c.Port = envOr("DOCXMARK_PORT", c.Port)
	c.MaxUploadBytes = envInt64("DOCXMARK_MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	c.ReadTimeout = envDuration("DOCXMARK_READ_TIMEOUT", c.ReadTimeout)
	c.WriteTimeout = envDuration("DOCXMARK_WRITE_TIMEOUT", c.WriteTimeout)
	c.APIKey = envOr("DOCXMARK_API_KEY", c.APIKey)

	c.StyleMap = envOr("DOCXMARK_STYLE_MAP", c.StyleMap)
	c.StyleMapFile = envOr("DOCXMARK_STYLE_MAP_FILE", c.StyleMapFile)
	c.IncludeDefaultStyleMap = envBool("DOCXMARK_INCLUDE_DEFAULT_STYLE_MAP", c.IncludeDefaultStyleMap)
	c.IncludeEmbeddedStyleMap = envBool("DOCXMARK_INCLUDE_EMBEDDED_STYLE_MAP", c.IncludeEmbeddedStyleMap)
	c.IgnoreEmptyParagraphs = envBool("DOCXMARK_IGNORE_EMPTY_PARAGRAPHS", c.IgnoreEmptyParagraphs)
	c.IDPrefix = envOr("DOCXMARK_ID_PREFIX", c.IDPrefix)
	c.TrackedChangeTokens = envBool("DOCXMARK_TRACKED_CHANGE_TOKENS", c.TrackedChangeTokens)
	c.CommentTokens = envBool("DOCXMARK_COMMENT_TOKENS", c.CommentTokens)
	c.ExternalFileAccess = envBool("DOCXMARK_EXTERNAL_FILE_ACCESS", c.ExternalFileAccess)
	c.OCRAltText = envBool("DOCXMARK_OCR_ALT_TEXT", c.OCRAltText)
	c.OCRLanguage = envOr("DOCXMARK_OCR_LANGUAGE", c.OCRLanguage)
	c.OCRPageSegMode = envOr("DOCXMARK_OCR_PAGE_SEG_MODE", c.OCRPageSegMode)
	c.MarkdownEngine = envOr("DOCXMARK_MARKDOWN_ENGINE", c.MarkdownEngine)
}

// Validate reports settings the service cannot run with.
func (c Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return errors.New("read_timeout and write_timeout must be positive")
	}
	switch c.MarkdownEngine {
	case docxmark.MarkdownNative, docxmark.MarkdownFromHTML:
	default:
		return fmt.Errorf("unknown markdown_engine %q", c.MarkdownEngine)
	}
	if _, ok := ocr.ParsePageSegMode(c.OCRPageSegMode); !ok {
		return fmt.Errorf("unknown ocr_page_seg_mode %q", c.OCRPageSegMode)
	}
	return nil
}

// Apply configures conv with the conversion settings.
func (c Config) Apply(conv *docxmark.Converter) *docxmark.Converter {
	conv = conv.
		IncludeDefaultStyleMap(c.IncludeDefaultStyleMap).
		IncludeEmbeddedStyleMap(c.IncludeEmbeddedStyleMap).
		IgnoreEmptyParagraphs(c.IgnoreEmptyParagraphs).
		IDPrefix(c.IDPrefix).
		ExternalFileAccess(c.ExternalFileAccess).
		MarkdownEngine(c.MarkdownEngine)
	if c.StyleMap != "" {
		conv = conv.StyleMap(c.StyleMap)
	}
	if c.TrackedChangeTokens {
		conv = conv.TrackedChangeTokens()
	}
	if c.CommentTokens {
		conv = conv.CommentTokens()
	}
	if c.OCRAltText {
		conv = conv.OCRAltText().OCRPageSegMode(c.OCRPageSegMode)
		if c.OCRLanguage != "" {
			conv = conv.OCRLanguage(c.OCRLanguage)
		}
	}
	return conv
}

func joinLines(a, b string) string {
	if a == "" {
		return b
	}
	return a + "\n" + b
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
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

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
