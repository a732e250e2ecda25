package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"sha1link/internal/link"
	"sha1link/internal/tree"
	"sha1link/internal/validate"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "sha1link.yaml"

type Config struct {
	Scheme       string   `yaml:"scheme"`
	MaxFirstLine int      `yaml:"max_first_line"`
	WrapperLabel string   `yaml:"wrapper_label"`
	Workers      int      `yaml:"workers"`
	Skip         []string `yaml:"skip"`
	LogLevel     string   `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Scheme:       link.DefaultScheme,
		MaxFirstLine: validate.DefaultMaxLineBytes,
		WrapperLabel: tree.DefaultWrapperLabel,
		Workers:      runtime.NumCPU(),
		Skip: []string{
			".git/",
			"*.tmp",
			"*.swp",
		},
		LogLevel: "info",
	}
}

// LoadConfig reads path over the defaults. A missing file yields the
// defaults unchanged.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	// Initialize Skip slice if nil (for explicit empty lists)
	if cfg.Skip == nil {
		cfg.Skip = []string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var problems []error

	if !strings.HasSuffix(c.Scheme, "://") || len(c.Scheme) == len("://") {
		problems = append(problems, fmt.Errorf("scheme %q must look like name://", c.Scheme))
	}
	if c.MaxFirstLine <= 0 {
		problems = append(problems, fmt.Errorf("max_first_line must be positive, got %d", c.MaxFirstLine))
	}
	if c.WrapperLabel == "" || tree.SanitizeLabel(c.WrapperLabel) != c.WrapperLabel {
		problems = append(problems, fmt.Errorf("wrapper_label %q must be non-empty without line breaks or backslashes", c.WrapperLabel))
	}
	if c.Workers <= 0 {
		problems = append(problems, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Errorf("log_level: %w", err))
	}

	return errors.Join(problems...)
}
