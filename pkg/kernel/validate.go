package kernel

import (
	"fmt"
	"math"
)

// normalTolerance is how far a triangle normal's length may stray from 1.
const normalTolerance = 1e-3

// ValidationSeverity indicates whether a validation finding makes the model
// unusable or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // model buffers are unusable
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Part     string             // which part has the problem
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Part == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] part %s: %s", e.Severity, e.Part, e.Message)
}

// ValidationResult bundles errors (blocking) and warnings (advisory).
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether the model has no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks the buffers of a finalized model for structural
// consistency. It does not check that the surface is manifold or free of
// self-intersections. Validate never mutates the model.
func Validate(m *Model) ValidationResult {
	var result ValidationResult
	if m == nil {
		return result
	}
	for _, mesh := range m.Meshes {
		for _, f := range validateMesh(mesh) {
			if f.Severity == SeverityWarning {
				result.Warnings = append(result.Warnings, f)
			} else {
				result.Errors = append(result.Errors, f)
			}
		}
	}
	return result
}

func validateMesh(mesh *Mesh) []ValidationError {
	var found []ValidationError
	report := func(sev ValidationSeverity, format string, args ...any) {
		found = append(found, ValidationError{
			Part:     mesh.Name,
			Message:  fmt.Sprintf(format, args...),
			Severity: sev,
		})
	}

	if mesh.IsEmpty() {
		report(SeverityWarning, "part has no vertices")
		return found
	}
	if len(mesh.Vertices)%VertexStride != 0 {
		report(SeverityError, "vertex buffer length %d is not a multiple of %d", len(mesh.Vertices), VertexStride)
		return found
	}

	arity := 3
	if mesh.Primitive == PrimitiveLines {
		arity = 2
	}
	if len(mesh.Indices)%arity != 0 {
		report(SeverityError, "index count %d is not a multiple of %d for %s", len(mesh.Indices), arity, mesh.Primitive)
	}

	n := uint32(mesh.VertexCount())
	for i, idx := range mesh.Indices {
		if idx >= n {
			report(SeverityError, "index %d at position %d out of range (%d vertices)", idx, i, n)
			break
		}
	}

	for i, f := range mesh.Vertices {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			report(SeverityError, "vertex %d has a non-finite component", i/VertexStride)
			break
		}
	}

	if mesh.Primitive == PrimitiveTriangles {
		for i := 0; i < mesh.VertexCount(); i++ {
			l := mesh.Normal(i).Length()
			if math.Abs(l-1) > normalTolerance {
				report(SeverityWarning, "vertex %d normal has length %.4f", i, l)
				break
			}
		}
	}

	return found
}
