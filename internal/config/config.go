package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel        = "gemini-2.0-flash"
	DefaultDepth        = 1
	DefaultPreviewBytes = 500
	DefaultTimeout      = 60 * time.Second
	DefaultLogFile      = "tidydir.log"
)

// Failure policies for the executor.
const (
	PolicyStop     = "stop"
	PolicyContinue = "continue"
)

var defaultAllowedPrograms = []string{"mkdir", "mv", "cp", "rmdir"}

type Config struct {
	Model           string        `yaml:"model,omitempty" jsonschema:"description=Generative model ID used to plan file organization. Defaults to gemini-2.0-flash." default:"gemini-2.0-flash"`
	APIKey          string        `yaml:"-" jsonschema:"-"`
	Timeout         time.Duration `yaml:"timeout,omitempty" jsonschema:"description=Upper bound on the remote planning call (Go duration string). Defaults to 60s."`
	Depth           int           `yaml:"depth,omitempty" jsonschema:"description=Default directory traversal depth. 1 means only the root's immediate entries. Defaults to 1." default:"1"`
	PreviewBytes    int           `yaml:"preview_bytes,omitempty" jsonschema:"description=Maximum bytes of extracted text per file sent to the model. Defaults to 500." default:"500"`
	FailurePolicy   string        `yaml:"failure_policy,omitempty" jsonschema:"description=What to do when a planned command fails: stop (halt remaining commands) or continue. Defaults to stop." default:"stop"`
	AllowedPrograms []string      `yaml:"allowed_programs,omitempty" jsonschema:"description=Programs the model is allowed to propose. Defaults to mkdir mv cp rmdir."`
	LogFile         string        `yaml:"log_file,omitempty" jsonschema:"description=Path of the append-only run log. Defaults to tidydir.log in the working directory." default:"tidydir.log"`
}

// Default returns a Config with every field at its documented default.
// The API key is left empty; commands that need it check at call time.
func Default() *Config {
	return &Config{
		Model:           DefaultModel,
		Timeout:         DefaultTimeout,
		Depth:           DefaultDepth,
		PreviewBytes:    DefaultPreviewBytes,
		FailurePolicy:   PolicyStop,
		AllowedPrograms: append([]string(nil), defaultAllowedPrograms...),
		LogFile:         DefaultLogFile,
	}
}

// Load reads an optional YAML config file, overlays environment
// variables on top, and validates the result. A missing file is not an
// error; a present but unreadable or invalid one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays process environment on the file values. A .env file
// in the working directory is honored first, best effort.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.APIKey = key
	}
	if model := os.Getenv("TIDYDIR_MODEL"); model != "" {
		c.Model = model
	}
	if raw := os.Getenv("TIDYDIR_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			c.Timeout = d
		} else {
			log.Warn("ignoring malformed TIDYDIR_TIMEOUT", "value", raw, "err", err)
		}
	}
	if raw := os.Getenv("TIDYDIR_DEPTH"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			c.Depth = n
		} else {
			log.Warn("ignoring malformed TIDYDIR_DEPTH", "value", raw, "err", err)
		}
	}
}

func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Depth < 1 {
		return fmt.Errorf("depth must be at least 1, got %d", c.Depth)
	}
	if c.PreviewBytes <= 0 {
		return fmt.Errorf("preview_bytes must be positive, got %d", c.PreviewBytes)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch c.FailurePolicy {
	case PolicyStop, PolicyContinue:
	default:
		return fmt.Errorf("unsupported failure_policy %q (supported: stop, continue)", c.FailurePolicy)
	}
	if len(c.AllowedPrograms) == 0 {
		return fmt.Errorf("at least one allowed program is required")
	}
	if c.LogFile == "" {
		return fmt.Errorf("log_file is required")
	}
	return nil
}

// RequireAPIKey reports an error when no credential is configured.
// Only the organize pipeline calls the remote service; index and match
// run fully offline and never need it.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is not set (export it or put it in a .env file)")
	}
	return nil
}
