package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Turtle.UVScaleU != 1 || cfg.Turtle.UVScaleV != 1 {
		t.Errorf("expected uv scale 1,1, got %g,%g", cfg.Turtle.UVScaleU, cfg.Turtle.UVScaleV)
	}
	if cfg.Engine.Timeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.Engine.Timeout)
	}
	if !cfg.Output.Validate {
		t.Error("expected validation to be enabled by default")
	}
	if cfg.Output.STLPath != "" || cfg.Output.JSONPath != "" {
		t.Errorf("expected no output paths, got %q and %q", cfg.Output.STLPath, cfg.Output.JSONPath)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "spire.yaml")

	yamlContent := `
turtle:
  uv_scale_u: 2.5
  uv_scale_v: 0.5

engine:
  timeout: 10s

output:
  stl_path: "out/tree.stl"
  json_path: "out/tree.json"
  validate: false

logging:
  level: "debug"
  log_file: "spire.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Turtle.UVScaleU != 2.5 || cfg.Turtle.UVScaleV != 0.5 {
		t.Errorf("expected uv scale 2.5,0.5, got %g,%g", cfg.Turtle.UVScaleU, cfg.Turtle.UVScaleV)
	}
	if cfg.Engine.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %v", cfg.Engine.Timeout)
	}
	if cfg.Output.STLPath != "out/tree.stl" {
		t.Errorf("expected stl path out/tree.stl, got %s", cfg.Output.STLPath)
	}
	if cfg.Output.JSONPath != "out/tree.json" {
		t.Errorf("expected json path out/tree.json, got %s", cfg.Output.JSONPath)
	}
	if cfg.Output.Validate {
		t.Error("expected validation to be disabled")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "spire.log" {
		t.Errorf("expected log file 'spire.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "spire.yaml")
	if err := os.WriteFile(configPath, []byte("turtle:\n  uv_scale_v: 3\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Turtle.UVScaleV != 3 {
		t.Errorf("expected uv_scale_v 3, got %g", cfg.Turtle.UVScaleV)
	}
	if cfg.Turtle.UVScaleU != 1 {
		t.Errorf("expected uv_scale_u to keep its default, got %g", cfg.Turtle.UVScaleU)
	}
	if cfg.Engine.Timeout != 5*time.Second {
		t.Errorf("expected timeout to keep its default, got %v", cfg.Engine.Timeout)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
engine:
  timeout: not a duration
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/spire.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero timeout", func(c *Config) { c.Engine.Timeout = 0 }, true},
		{"negative timeout", func(c *Config) { c.Engine.Timeout = -time.Second }, true},
		{"warn level", func(c *Config) { c.Logging.Level = "warn" }, false},
		{"unknown level", func(c *Config) { c.Logging.Level = "verbose" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "spire.yaml")
	if err := os.WriteFile(configPath, []byte("engine:\n  timeout: 1s\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find spire.yaml in current directory")
	}
}

func TestParseUVScale(t *testing.T) {
	tests := []struct {
		in      string
		u, v    float64
		wantErr bool
	}{
		{"2,3", 2, 3, false},
		{" 0.5 , 1.5 ", 0.5, 1.5, false},
		{"4", 4, 4, false},
		{"1,2,3", 0, 0, true},
		{"a,b", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			u, v, err := parseUVScale(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseUVScale(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && (u != tt.u || v != tt.v) {
				t.Errorf("parseUVScale(%q) = %g,%g, want %g,%g", tt.in, u, v, tt.u, tt.v)
			}
		})
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name: "debug flag",
			setup: func() {
				*flagDebug = true
			},
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() {
				*flagDebug = false
			},
		},
		{
			name: "output flags",
			setup: func() {
				*flagSTL = "a.stl"
				*flagJSON = "a.json"
			},
			verify: func(cfg *Config) {
				if cfg.Output.STLPath != "a.stl" {
					t.Errorf("expected stl path a.stl, got %s", cfg.Output.STLPath)
				}
				if cfg.Output.JSONPath != "a.json" {
					t.Errorf("expected json path a.json, got %s", cfg.Output.JSONPath)
				}
			},
			teardown: func() {
				*flagSTL = ""
				*flagJSON = ""
			},
		},
		{
			name: "timeout flag",
			setup: func() {
				*flagTimeout = 250 * time.Millisecond
			},
			verify: func(cfg *Config) {
				if cfg.Engine.Timeout != 250*time.Millisecond {
					t.Errorf("expected timeout 250ms, got %v", cfg.Engine.Timeout)
				}
			},
			teardown: func() {
				*flagTimeout = 0
			},
		},
		{
			name: "uv scale flag",
			setup: func() {
				*flagUVScale = "2,0.25"
			},
			verify: func(cfg *Config) {
				if cfg.Turtle.UVScaleU != 2 || cfg.Turtle.UVScaleV != 0.25 {
					t.Errorf("expected uv scale 2,0.25, got %g,%g", cfg.Turtle.UVScaleU, cfg.Turtle.UVScaleV)
				}
			},
			teardown: func() {
				*flagUVScale = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			if err := applyFlags(cfg); err != nil {
				t.Fatalf("applyFlags: %v", err)
			}
			tt.verify(cfg)
		})
	}
}

func TestApplyFlagsBadUVScale(t *testing.T) {
	*flagUVScale = "wide"
	defer func() { *flagUVScale = "" }()

	if err := applyFlags(Default()); err == nil {
		t.Error("expected error for malformed -uv-scale")
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "spire.yaml")

	yamlContent := `
turtle:
  uv_scale_u: 4
  uv_scale_v: 6
engine:
  timeout: 2s
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagUVScale = "8,9"
	defer func() {
		*flagConfig = ""
		*flagUVScale = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// UV scale comes from the flag, not the file.
	if cfg.Turtle.UVScaleU != 8 || cfg.Turtle.UVScaleV != 9 {
		t.Errorf("expected uv scale 8,9 from flag, got %g,%g", cfg.Turtle.UVScaleU, cfg.Turtle.UVScaleV)
	}
	// Timeout comes from the file since no flag overrides it.
	if cfg.Engine.Timeout != 2*time.Second {
		t.Errorf("expected timeout 2s from file, got %v", cfg.Engine.Timeout)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "spire.yaml")

	cfg := Default()
	cfg.Turtle.UVScaleU = 3
	cfg.Engine.Timeout = 1500 * time.Millisecond
	cfg.Output.STLPath = "tree.stl"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *loaded, *cfg)
	}
}

func TestSave(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	if err := Default().Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ConfigDir(), "spire.yaml")); err != nil {
		t.Errorf("expected saved config in %s: %v", ConfigDir(), err)
	}
}
