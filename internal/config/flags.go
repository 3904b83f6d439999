package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagSTL     = flag.String("stl", "", "Write the model as binary STL to this path")
	flagJSON    = flag.String("json", "", "Write the model as JSON mesh data to this path")
	flagTimeout = flag.Duration("timeout", 0, "Script evaluation timeout")
	flagUVScale = flag.String("uv-scale", "", "Texture scale as U,V")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// Script returns the script path given as the first positional argument.
func Script() string {
	return flag.Arg(0)
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) error {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSTL != "" {
		cfg.Output.STLPath = *flagSTL
	}
	if *flagJSON != "" {
		cfg.Output.JSONPath = *flagJSON
	}
	if *flagTimeout > 0 {
		cfg.Engine.Timeout = *flagTimeout
	}
	if *flagUVScale != "" {
		u, v, err := parseUVScale(*flagUVScale)
		if err != nil {
			return fmt.Errorf("-uv-scale: %w", err)
		}
		cfg.Turtle.UVScaleU, cfg.Turtle.UVScaleV = u, v
	}
	return nil
}

// parseUVScale parses "U,V" or a single "S" meaning "S,S".
func parseUVScale(s string) (u, v float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) > 2 {
		return 0, 0, fmt.Errorf("expected U,V, got %q", s)
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		if vals[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64); err != nil {
			return 0, 0, fmt.Errorf("expected U,V, got %q: %w", s, err)
		}
	}
	if len(vals) == 1 {
		return vals[0], vals[0], nil
	}
	return vals[0], vals[1], nil
}

