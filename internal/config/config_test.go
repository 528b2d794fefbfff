package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() is not valid: %v", err)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("model = %q, want %q", cfg.Model, DefaultModel)
	}
	if cfg.FailurePolicy != PolicyStop {
		t.Errorf("failure policy = %q, want %q", cfg.FailurePolicy, PolicyStop)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Depth != DefaultDepth {
		t.Errorf("depth = %d, want %d", cfg.Depth, DefaultDepth)
	}
}

func TestLoadFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tidydir.yml")
	content := "model: gemini-2.5-pro\ndepth: 3\npreview_bytes: 200\nfailure_policy: continue\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Model != "gemini-2.5-pro" {
		t.Errorf("model = %q", cfg.Model)
	}
	if cfg.Depth != 3 {
		t.Errorf("depth = %d", cfg.Depth)
	}
	if cfg.PreviewBytes != 200 {
		t.Errorf("preview_bytes = %d", cfg.PreviewBytes)
	}
	if cfg.FailurePolicy != PolicyContinue {
		t.Errorf("failure_policy = %q", cfg.FailurePolicy)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tidydir.yml")
	if err := os.WriteFile(path, []byte("model: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on invalid YAML")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tidydir.yml")
	if err := os.WriteFile(path, []byte("model: from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TIDYDIR_MODEL", "from-env")
	t.Setenv("TIDYDIR_TIMEOUT", "5s")
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Model != "from-env" {
		t.Errorf("model = %q, want env override", cfg.Model)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("timeout = %s, want 5s", cfg.Timeout)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		t.Errorf("RequireAPIKey() = %v with key set", err)
	}
}

func TestEnvMalformedValuesWarnAndKeepDefaults(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	t.Setenv("TIDYDIR_TIMEOUT", "soon")
	t.Setenv("TIDYDIR_DEPTH", "two")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("timeout = %s, want default %s", cfg.Timeout, DefaultTimeout)
	}
	if cfg.Depth != DefaultDepth {
		t.Errorf("depth = %d, want default %d", cfg.Depth, DefaultDepth)
	}

	out := buf.String()
	for _, want := range []string{"TIDYDIR_TIMEOUT", "TIDYDIR_DEPTH"} {
		if !strings.Contains(out, want) {
			t.Errorf("no warning for %s, log output:\n%s", want, out)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty model", func(c *Config) { c.Model = "" }},
		{"zero depth", func(c *Config) { c.Depth = 0 }},
		{"zero preview", func(c *Config) { c.PreviewBytes = 0 }},
		{"bad policy", func(c *Config) { c.FailurePolicy = "retry" }},
		{"no programs", func(c *Config) { c.AllowedPrograms = nil }},
		{"no log file", func(c *Config) { c.LogFile = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}

func TestRequireAPIKeyMissing(t *testing.T) {
	cfg := Default()
	if err := cfg.RequireAPIKey(); err == nil {
		t.Error("RequireAPIKey() should fail with no key")
	}
}
