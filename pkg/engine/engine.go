// Package engine provides the Lisp evaluation engine for Spire.
// It wraps zygomys in a sandboxed environment whose builtins drive a root
// turtle, and returns the finished kernel.Model.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/spire/internal/logger"
	"github.com/chazu/spire/pkg/kernel"
	"github.com/chazu/spire/pkg/kernel/batch"
	"github.com/chazu/spire/pkg/turtle"
	v2 "github.com/deadsy/sdfx/vec/v2"
	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter for Spire evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment, builder and root turtle for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	timeout time.Duration
	uvScale v2.Vec
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout overrides EvalTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithUVScale sets the root turtle's initial texture scale.
func WithUVScale(scale v2.Vec) Option {
	return func(e *Engine) {
		e.uvScale = scale
	}
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeout: EvalTimeout,
		uvScale: v2.Vec{X: 1, Y: 1},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs a Spire script and returns the model it built.
//
// Return semantics:
//   - On success: returns model + nil errors + nil error
//   - On parse/eval failure: returns nil model + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*kernel.Model, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		m, evalErrs, err := e.evaluate(source)
		ch <- evalResult{model: m, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, e.timeout, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*kernel.Model, []EvalError, error) {
	start := time.Now()

	// Empty source is a valid program that produces an empty model.
	if strings.TrimSpace(source) == "" {
		return &kernel.Model{}, nil, nil
	}

	root := turtle.New(batch.New())
	root.UVScale = e.uvScale

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, root)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	model := root.End()
	logger.Debug("engine: evaluation finished",
		zap.Int("parts", model.PartCount()),
		zap.Int("triangles", model.TriangleCount()),
		zap.Duration("elapsed", time.Since(start)))
	return model, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values,
// extracting the line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
