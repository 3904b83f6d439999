// Command spire evaluates a Spire script and writes the generated mesh.
//
//	spire [flags] script.spire
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chazu/spire/internal/config"
	"github.com/chazu/spire/internal/logger"
	"go.uber.org/zap"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: spire [flags] script.spire\n")
		flag.PrintDefaults()
	}
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "spire: %v\n", err)
		os.Exit(2)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "spire: %v\n", err)
		os.Exit(2)
	}

	script := config.Script()
	if script == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(cfg, script); err != nil {
		logger.Error("spire failed", zap.String("script", script), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

// run evaluates the script at path and writes the configured outputs.
func run(cfg *config.Config, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	app := NewApp(cfg)
	result := app.Evaluate(string(source))

	for _, w := range result.Warnings {
		logger.Warn("validation", zap.String("finding", w.Message))
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			logger.Error("evaluation", zap.Int("line", e.Line), zap.String("error", e.Message))
		}
		return fmt.Errorf("%s: %d error(s)", path, len(result.Errors))
	}

	logger.Info("model built",
		zap.String("script", path),
		zap.Int("parts", len(result.Meshes)))

	if p := cfg.Output.STLPath; p != "" {
		if err := app.WriteSTL(p); err != nil {
			return err
		}
		logger.Info("wrote stl", zap.String("path", p))
	}
	if p := cfg.Output.JSONPath; p != "" {
		if err := app.WriteJSON(p, result); err != nil {
			return err
		}
		logger.Info("wrote json", zap.String("path", p))
	}
	return nil
}
