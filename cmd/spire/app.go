package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/spire/internal/config"
	"github.com/chazu/spire/internal/logger"
	"github.com/chazu/spire/pkg/engine"
	"github.com/chazu/spire/pkg/kernel"
	"github.com/chazu/spire/pkg/kernel/sdfx"
	v2 "github.com/deadsy/sdfx/vec/v2"
	"go.uber.org/zap"
)

// colorPalette colors parts whose material has no diffuse color.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App evaluates scripts and writes the resulting models.
type App struct {
	engine   *engine.Engine
	validate bool

	// model is the most recent successfully evaluated model.
	model *kernel.Model
}

// MeshData is the JSON-serializable form of one part.
type MeshData struct {
	PartName  string    `json:"partName"`
	Material  string    `json:"material"`
	Color     string    `json:"color"`
	Opacity   float64   `json:"opacity"`
	Primitive string    `json:"primitive"`
	Vertices  []float32 `json:"vertices"`
	Normals   []float32 `json:"normals"`
	UVs       []float32 `json:"uvs"`
	Indices   []uint32  `json:"indices"`
}

// EvalErrorData is a JSON-serializable eval error or validation finding.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App configured from cfg.
func NewApp(cfg *config.Config) *App {
	return &App{
		engine: engine.NewEngine(
			engine.WithTimeout(cfg.Engine.Timeout),
			engine.WithUVScale(v2.Vec{X: cfg.Turtle.UVScaleU, Y: cfg.Turtle.UVScaleV}),
		),
		validate: cfg.Output.Validate,
	}
}

// Evaluate runs source and returns mesh data plus errors and warnings.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
	a.model = nil

	model, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		logger.Error("evaluate: fatal error", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	if a.validate {
		vr := kernel.Validate(model)
		for _, e := range vr.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Message: e.Error()})
		}
		for _, w := range vr.Warnings {
			result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Error()})
		}
		if !vr.OK() {
			return result
		}
	}

	for i, m := range model.Meshes {
		result.Meshes = append(result.Meshes, meshData(m, i))
	}
	a.model = model
	return result
}

// meshData splits an interleaved mesh into separate attribute arrays.
func meshData(m *kernel.Mesh, index int) MeshData {
	n := m.VertexCount()
	md := MeshData{
		PartName:  m.Name,
		Material:  m.Material.Name,
		Color:     m.Material.Diffuse,
		Opacity:   m.Material.Opacity,
		Primitive: m.Primitive.String(),
		Vertices:  make([]float32, 0, n*3),
		Normals:   make([]float32, 0, n*3),
		UVs:       make([]float32, 0, n*2),
		Indices:   m.Indices,
	}
	if md.Color == "" {
		md.Color = colorPalette[index%len(colorPalette)]
	}
	for i := 0; i < n; i++ {
		v := m.Vertices[i*kernel.VertexStride : (i+1)*kernel.VertexStride]
		md.Vertices = append(md.Vertices, v[0], v[1], v[2])
		md.Normals = append(md.Normals, v[3], v[4], v[5])
		md.UVs = append(md.UVs, v[6], v[7])
	}
	return md
}

// WriteSTL saves the last evaluated model as binary STL.
func (a *App) WriteSTL(path string) error {
	if a.model == nil {
		return fmt.Errorf("write stl: no model")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("write stl: %w", err)
	}
	return sdfx.SaveSTL(path, a.model)
}

// WriteJSON saves result as indented JSON.
func (a *App) WriteJSON(path string, result EvalResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
