package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rupor-github/gencfg"

	"stylc/common"
)

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}

	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `version: 1
compiler:
  style: compressed
  diagnostics: comment
  variables:
    theme: dark
    accent: "#f00"
  input_extensions: [".scss"]
output:
  extension: .min.css
  slug_names: true
cache:
  enable: true
  path: ` + filepath.Join(tmpDir, "cache", "stylc.db") + `
logging:
  console:
    level: normal
  file:
    level: debug
    destination: ` + filepath.Join(tmpDir, "test.log") + `
    mode: append
reporting:
  destination: ` + filepath.Join(tmpDir, "test-report.zip") + `
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfiguration(configPath)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Compiler.Style != common.StyleCompressed {
		t.Errorf("Style = %s, want compressed", cfg.Compiler.Style)
	}
	if cfg.Compiler.Diagnostics != common.DiagnosticsComment {
		t.Errorf("Diagnostics = %s, want comment", cfg.Compiler.Diagnostics)
	}
	if cfg.Compiler.Variables["theme"] != "dark" || cfg.Compiler.Variables["accent"] != "#f00" {
		t.Errorf("Variables = %v", cfg.Compiler.Variables)
	}
	if cfg.Output.Extension != ".min.css" || !cfg.Output.SlugNames {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if !cfg.Cache.Enable {
		t.Error("Expected cache to be enabled")
	}
	// sanitizer makes sure directory for the cache exists
	if _, err := os.Stat(filepath.Join(tmpDir, "cache")); err != nil {
		t.Errorf("cache directory was not created: %v", err)
	}
}

func TestLoadConfiguration_NonExistentFile(t *testing.T) {
	_, err := LoadConfiguration("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestLoadConfiguration_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `version: 1
compiler:
  style: nested
  invalid indent
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestLoadConfiguration_UnknownFields(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "unknown.yaml")

	configWithUnknown := `version: 1
unknown_field: value
compiler:
  style: nested
`

	if err := os.WriteFile(configPath, []byte(configWithUnknown), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err := LoadConfiguration(configPath)
	if err == nil {
		t.Error("Expected error for unknown fields")
	}
}

func TestLoadConfiguration_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"version", "version: 2\n"},
		{"unknown style", "version: 1\ncompiler:\n  style: fancy\n"},
		{"extension without dot", "version: 1\noutput:\n  extension: css\n"},
		{"output overwrites sources", "version: 1\noutput:\n  extension: .scss\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid_values.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write config file: %v", err)
			}
			if _, err := LoadConfiguration(configPath); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoadConfiguration_WithOptions(t *testing.T) {
	option := func(opts *gencfg.ProcessingOptions) {
		// Options are opaque, just test that we can pass them
	}

	cfg, err := LoadConfiguration("", option)
	if err != nil {
		t.Fatalf("LoadConfiguration() with options error = %v", err)
	}

	if cfg == nil {
		t.Fatal("LoadConfiguration() returned nil config")
	}
}

func TestPrepare(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	if len(data) == 0 {
		t.Error("Prepare() returned empty data")
	}

	// Verify it's valid YAML by trying to unmarshal
	cfg := &Config{}
	_, err = unmarshalConfig(data, cfg, true)
	if err != nil {
		t.Errorf("Prepared config is not valid: %v", err)
	}
	if !strings.Contains(cfg.Cache.Path, "-test") {
		t.Errorf("cache path under test = %q", cfg.Cache.Path)
	}
}

func TestDump(t *testing.T) {
	cfg := &Config{
		Version: 1,
		Compiler: CompilerConfig{
			Style:       common.StyleExpanded,
			Diagnostics: common.DiagnosticsStructured,
			Variables:   map[string]string{"a": "1"},
			Extensions:  []string{".scss"},
		},
		Output: OutputConfig{Extension: ".css"},
	}

	data, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}

	if !strings.Contains(string(data), "style: expanded") {
		t.Errorf("enums must be dumped by name:\n%s", data)
	}

	// Verify we can load it back
	cfg2 := &Config{}
	_, err = unmarshalConfig(data, cfg2, false)
	if err != nil {
		t.Errorf("Dumped config cannot be loaded: %v", err)
	}

	if cfg2.Compiler.Style != cfg.Compiler.Style || cfg2.Compiler.Diagnostics != cfg.Compiler.Diagnostics {
		t.Errorf("enums mismatch after dump/load: %+v", cfg2.Compiler)
	}
}

func TestUnmarshalConfig(t *testing.T) {
	t.Run("valid config without processing", func(t *testing.T) {
		data := []byte(`version: 1`)
		cfg := &Config{}

		result, err := unmarshalConfig(data, cfg, false)
		if err != nil {
			t.Errorf("unmarshalConfig() error = %v", err)
		}

		if result == nil {
			t.Fatal("unmarshalConfig() returned nil")
		}

		if result.Version != 1 {
			t.Errorf("Version = %d, want 1", result.Version)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		data := []byte(`invalid: [yaml`)
		cfg := &Config{}

		_, err := unmarshalConfig(data, cfg, false)
		if err == nil {
			t.Error("Expected error for invalid YAML")
		}
	})
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Compiler.Style != common.StyleNested {
		t.Errorf("default style = %s, want nested", cfg.Compiler.Style)
	}
	if cfg.Compiler.Diagnostics != common.DiagnosticsNone {
		t.Errorf("default diagnostics = %s, want none", cfg.Compiler.Diagnostics)
	}
	if cfg.Output.Extension != ".css" {
		t.Errorf("default extension = %q", cfg.Output.Extension)
	}
	if len(cfg.Compiler.Extensions) == 0 {
		t.Error("input extensions should not be empty")
	}
	if cfg.Cache.Enable {
		t.Error("cache should be disabled by default")
	}
}

func TestCompilerConfig_InputExt(t *testing.T) {
	conf := CompilerConfig{Extensions: []string{".scss", ".stylc"}}

	tests := []struct {
		name    string
		matches bool
		trimmed string
	}{
		{"main.scss", true, "main"},
		{"Main.SCSS", true, "Main"},
		{"theme.stylc", true, "theme"},
		{"main.css", false, "main.css"},
	}
	for _, tt := range tests {
		if got := conf.HasInputExt(tt.name); got != tt.matches {
			t.Errorf("HasInputExt(%q) = %v, want %v", tt.name, got, tt.matches)
		}
		if got := conf.TrimInputExt(tt.name); got != tt.trimmed {
			t.Errorf("TrimInputExt(%q) = %q, want %q", tt.name, got, tt.trimmed)
		}
	}
}

func TestUnmarshalConfig_WrapsValidationError(t *testing.T) {
	// version: 99 will fail validation (validate:"eq=1").
	data := []byte("version: 99\n")
	cfg := &Config{}

	_, err := unmarshalConfig(data, cfg, true)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}

	if !strings.Contains(err.Error(), "validat") {
		t.Errorf("expected error to mention validation, got: %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Errorf("expected wrapped error (errors.Unwrap non-nil), got bare error: %v", err)
	}
}

func TestCleanFileName(t *testing.T) {
	if got := CleanFileName("a" + string(os.PathSeparator) + "b"); strings.ContainsRune(got, os.PathSeparator) {
		t.Errorf("CleanFileName() = %q", got)
	}
	if got := CleanFileName(string(os.PathSeparator)); got != "_bad_file_name_" {
		t.Errorf("CleanFileName() = %q", got)
	}
}

func TestIsHidden(t *testing.T) {
	if !IsHidden(filepath.Join("a", ".git")) {
		t.Error(".git must be hidden")
	}
	if IsHidden(filepath.Join("a", "main.scss")) || IsHidden("..") {
		t.Error("unexpected hidden file")
	}
}
