// Package sdfx exports finished models through the github.com/deadsy/sdfx
// CAD library: triangle soup, bounding boxes and STL files.
package sdfx

import (
	"fmt"

	"github.com/chazu/spire/internal/logger"
	"github.com/chazu/spire/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"go.uber.org/zap"
)

// degenerateTolerance is the distance below which triangle corners are
// considered coincident.
const degenerateTolerance = 1e-9

// Triangles flattens the triangle parts of model into sdfx triangles.
// Line parts are skipped. Degenerate triangles, such as the apex band of a
// closed extrusion, are dropped.
func Triangles(model *kernel.Model) []*sdf.Triangle3 {
	if model == nil {
		return nil
	}
	out := make([]*sdf.Triangle3, 0, model.TriangleCount())
	for _, mesh := range model.Meshes {
		if mesh.Primitive != kernel.PrimitiveTriangles {
			continue
		}
		for i := 0; i+2 < len(mesh.Indices); i += 3 {
			tri := &sdf.Triangle3{
				mesh.Position(int(mesh.Indices[i])),
				mesh.Position(int(mesh.Indices[i+1])),
				mesh.Position(int(mesh.Indices[i+2])),
			}
			if tri.Degenerate(degenerateTolerance) {
				continue
			}
			out = append(out, tri)
		}
	}
	return out
}

// BoundingBox returns the axis-aligned box enclosing every vertex of the
// model, lines included. ok is false for a model without vertices.
func BoundingBox(model *kernel.Model) (box sdf.Box3, ok bool) {
	if model == nil {
		return box, false
	}
	for _, mesh := range model.Meshes {
		for i := 0; i < mesh.VertexCount(); i++ {
			p := mesh.Position(i)
			if !ok {
				box = sdf.Box3{Min: p, Max: p}
				ok = true
				continue
			}
			box.Min = box.Min.Min(p)
			box.Max = box.Max.Max(p)
		}
	}
	return box, ok
}

// SaveSTL writes the triangle parts of model to path as binary STL.
func SaveSTL(path string, model *kernel.Model) error {
	tris := Triangles(model)
	if len(tris) == 0 {
		return fmt.Errorf("sdfx: save %s: model has no triangles", path)
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("sdfx: save %s: %w", path, err)
	}
	logger.Debug("sdfx: stl written",
		zap.String("path", path),
		zap.Int("triangles", len(tris)))
	return nil
}
