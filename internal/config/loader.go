package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/kyoshitsu/saiten/internal/columns"
	"github.com/kyoshitsu/saiten/internal/scoring"
	"github.com/kyoshitsu/saiten/internal/submission"
	"github.com/kyoshitsu/saiten/internal/textnorm"
)

var (
	// ErrNotFound indicates the config file does not exist.
	ErrNotFound = errors.New("config file not found")

	// ErrInvalid indicates a config value that would make the formula
	// ill-defined.
	ErrInvalid = errors.New("invalid config")

	// ErrUnsupportedFormat indicates a config file extension we cannot decode.
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

// Config is the full saiten configuration: the grading formula, the column
// hints used to read form uploads, and identity matching options.
type Config struct {
	scoring.Config `yaml:",inline"`

	Columns  columns.Hints  `toml:"columns" yaml:"columns"`
	Identity IdentityConfig `toml:"identity" yaml:"identity"`
}

// IdentityConfig controls how emails and student numbers are matched.
type IdentityConfig struct {
	// FoldWidth folds full-width letters and digits to ASCII before
	// lower-casing identity keys.
	FoldWidth bool `toml:"fold_width" yaml:"fold_width"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Config: scoring.DefaultConfig(),
		Columns: columns.Hints{
			Timestamp: "タイムスタンプ",
			Email:     "メール",
			Class:     "class",
			Name:      "name",
			StudentNo: "学籍番号",
		},
	}
}

// IdentityKey returns the normalizer used to match identities across
// tables.
func (c *Config) IdentityKey() submission.KeyFunc {
	if c.Identity.FoldWidth {
		return textnorm.FoldedIdentity
	}
	return textnorm.Identity
}

// LoadFile reads a TOML or YAML config file, chosen by extension, on top of
// the built-in defaults and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := decode(path, data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadColumnsFile reads a flat column-hint file. Its keys (timestamp, email,
// class, name, student_no, quiz_cols) sit at the top level rather than
// under a [columns] table.
func LoadColumnsFile(path string) (columns.Hints, error) {
	var hints columns.Hints
	data, err := readFile(path)
	if err != nil {
		return hints, err
	}
	if err := decode(path, data, &hints); err != nil {
		return hints, err
	}
	return hints, nil
}

// MergeHints overlays the non-empty hints of h onto the config's hints.
func (c *Config) MergeHints(h columns.Hints) {
	for _, pair := range []struct {
		dst *string
		src string
	}{
		{&c.Columns.Timestamp, h.Timestamp},
		{&c.Columns.Email, h.Email},
		{&c.Columns.Class, h.Class},
		{&c.Columns.Name, h.Name},
		{&c.Columns.StudentNo, h.StudentNo},
	} {
		if pair.src != "" {
			*pair.dst = pair.src
		}
	}
	if len(h.QuizCols) > 0 {
		c.Columns.QuizCols = append([]string(nil), h.QuizCols...)
	}
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is supplied by the operator
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return data, nil
}

func decode(path string, data []byte, v any) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), v); err != nil {
			return fmt.Errorf("parsing config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parsing config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return nil
}

// Validate checks only what keeps the grading formula well-defined.
func (c *Config) Validate() error {
	a := c.Attendance
	if a.TotalSessions < 0 {
		return fmt.Errorf("%w: attendance.total_sessions must be >= 0, got %d", ErrInvalid, a.TotalSessions)
	}
	if a.MaxPoints < 0 {
		return fmt.Errorf("%w: attendance.max_points must be >= 0, got %v", ErrInvalid, a.MaxPoints)
	}
	if a.GateRate < 0 || a.GateRate > 1 {
		return fmt.Errorf("%w: attendance.gate_rate must be within [0,1], got %v", ErrInvalid, a.GateRate)
	}

	l := c.Learning
	for name, w := range map[string]float64{"paiza": l.Paiza, "site": l.Site, "form": l.Form} {
		if w < 0 {
			return fmt.Errorf("%w: learning.%s must be >= 0, got %v", ErrInvalid, name, w)
		}
	}

	b := c.GradeBoundary
	if !(b.S > b.A && b.A > b.B && b.B > b.C) {
		return fmt.Errorf("%w: grade_boundary must descend strictly S > A > B > C, got %v/%v/%v/%v",
			ErrInvalid, b.S, b.A, b.B, b.C)
	}

	if c.Defaults.SiteRequirementsTotal < 1 {
		return fmt.Errorf("%w: defaults.site_requirements_total must be >= 1, got %d",
			ErrInvalid, c.Defaults.SiteRequirementsTotal)
	}
	return nil
}
