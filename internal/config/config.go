// Package config handles Spire configuration loading and management.
package config

import "time"

// Config holds all Spire settings.
type Config struct {
	Turtle  TurtleConfig  `yaml:"turtle"`
	Engine  EngineConfig  `yaml:"engine"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// TurtleConfig holds defaults applied to the root turtle of every script.
type TurtleConfig struct {
	UVScaleU float64 `yaml:"uv_scale_u"` // texture scale along the ring perimeter
	UVScaleV float64 `yaml:"uv_scale_v"` // texture scale along the sweep
}

// EngineConfig holds script evaluation settings.
type EngineConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// OutputConfig holds where and how finished models are written.
type OutputConfig struct {
	STLPath  string `yaml:"stl_path"`
	JSONPath string `yaml:"json_path"`
	Validate bool   `yaml:"validate"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Turtle: TurtleConfig{
			UVScaleU: 1,
			UVScaleV: 1,
		},
		Engine: EngineConfig{
			Timeout: 5 * time.Second,
		},
		Output: OutputConfig{
			Validate: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
