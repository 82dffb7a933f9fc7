package convert

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the conversion pipeline. All quality
// thresholds are configuration, never hardcoded at call sites.
type Config struct {
	// MaxWorkers bounds the batch worker pool.
	MaxWorkers int `yaml:"max_workers"`

	// SizeThresholdKB flags artifacts below this size for quality-gate
	// reprocessing.
	SizeThresholdKB int `yaml:"size_threshold_kb"`

	// PageValidRatio is the loose non-whitespace ratio used for per-page
	// warnings and the quality-gate content check.
	PageValidRatio float64 `yaml:"page_valid_ratio"`

	// DocValidRatio is the strict non-whitespace ratio a whole extracted
	// document must exceed to avoid OCR escalation.
	DocValidRatio float64 `yaml:"doc_valid_ratio"`

	// ConfidenceFloor discards OCR detections below this confidence.
	ConfidenceFloor float64 `yaml:"confidence_floor"`

	// OCRDPI is the rasterization resolution for the OCR path.
	OCRDPI int `yaml:"ocr_dpi"`

	// ParagraphGap is the vertical distance (image pixels) above which two
	// consecutive detections start a new paragraph.
	ParagraphGap float64 `yaml:"paragraph_gap"`

	// MinChars is the floor below which a direct extraction strategy's
	// result counts as trivial and the next strategy is tried.
	MinChars int `yaml:"min_chars"`

	// DocTimeoutSec bounds the processing of a single document. Zero
	// disables the timeout.
	DocTimeoutSec int `yaml:"doc_timeout_sec"`

	// Languages lists OCR language hints (e.g. "eng", "deu").
	Languages []string `yaml:"languages"`

	// Logger for progress and containment messages.
	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns sane defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxWorkers:      4,
		SizeThresholdKB: 15,
		PageValidRatio:  0.1,
		DocValidRatio:   0.2,
		ConfidenceFloor: 0.6,
		OCRDPI:          400,
		ParagraphGap:    20,
		MinChars:        50,
		DocTimeoutSec:   600,
		Languages:       []string{"eng"},
	}
}

// LoadConfig reads and parses a YAML config file, merged over DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that values are sane.
func (c *Config) Validate() error {
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("max_workers must be > 0")
	}
	if c.SizeThresholdKB < 0 {
		return fmt.Errorf("size_threshold_kb must be >= 0")
	}
	if c.PageValidRatio < 0 || c.PageValidRatio >= 1 {
		return fmt.Errorf("page_valid_ratio must be in [0,1)")
	}
	if c.DocValidRatio < 0 || c.DocValidRatio >= 1 {
		return fmt.Errorf("doc_valid_ratio must be in [0,1)")
	}
	if c.ConfidenceFloor < 0 || c.ConfidenceFloor > 1 {
		return fmt.Errorf("confidence_floor must be in [0,1]")
	}
	if c.OCRDPI <= 0 {
		return fmt.Errorf("ocr_dpi must be > 0")
	}
	if c.ParagraphGap <= 0 {
		return fmt.Errorf("paragraph_gap must be > 0")
	}
	if c.MinChars < 0 {
		return fmt.Errorf("min_chars must be >= 0")
	}
	if c.DocTimeoutSec < 0 {
		return fmt.Errorf("doc_timeout_sec must be >= 0")
	}
	return nil
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// SizeThresholdBytes returns the small-file threshold in bytes.
func (c *Config) SizeThresholdBytes() int64 { return int64(c.SizeThresholdKB) * 1024 }

// DocTimeout returns the per-document timeout; zero means unbounded.
func (c *Config) DocTimeout() time.Duration {
	return time.Duration(c.DocTimeoutSec) * time.Second
}
