package engine

import (
	"errors"
	"fmt"

	"github.com/chazu/spire/pkg/kernel"
	"github.com/chazu/spire/pkg/turtle"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// builtin is the signature zygomys expects from Go functions.
type builtin = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// debugMaterial is used by the debug builtins unless :material is given.
var debugMaterial = kernel.Material{Name: "debug", Diffuse: "#ff0000", Opacity: 1}

// defaultDebugSize is the edge length of a debug-point box.
const defaultDebugSize = 0.05

var (
	errNoCrossSection = errors.New("empty cross-section; start one with regular-polygon, polygon or polygon-points")
	errUnplaced       = errors.New("sub-turtle is not placed yet; advance its parent past the side first")
)

// session is the state one evaluation's builtins operate on.
type session struct {
	env  *zygo.Zlisp
	root *turtle.Turtle

	// err is the first error raised by a Lisp lambda called back from the
	// turtle; turtle callbacks cannot return errors themselves.
	err error
}

// fail records err unless an earlier callback already failed.
func (s *session) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// flush reports and clears a recorded callback error.
func (s *session) flush(name string) (zygo.Sexp, error) {
	if err := s.err; err != nil {
		s.err = nil
		return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
	}
	return zygo.SexpNull, nil
}

// target resolves the turtle a builtin acts on: the :turtle keyword if
// present, else the root turtle.
func (s *session) target(pa kwArgs) (*turtle.Turtle, error) {
	v, ok := pa.kw["turtle"]
	if !ok {
		return s.root, nil
	}
	t, err := toTurtle(v)
	if err != nil {
		return nil, fmt.Errorf("turtle: %w", err)
	}
	if t.Builder == nil {
		return nil, errUnplaced
	}
	return t, nil
}

// apply calls fn with args and converts the result, recording any failure
// on the session and returning the zero value.
func apply[T any](s *session, fn *zygo.SexpFunction, conv func(zygo.Sexp) (T, error), args ...zygo.Sexp) T {
	var zero T
	if s.err != nil {
		return zero
	}
	res, err := s.env.Apply(fn, args)
	if err != nil {
		s.fail(err)
		return zero
	}
	v, err := conv(res)
	if err != nil {
		s.fail(err)
		return zero
	}
	return v
}

// indexArg reads a per-corner argument: either a constant or a lambda
// called as (fn [i] ...).
func indexArg[T any](s *session, v zygo.Sexp, conv func(zygo.Sexp) (T, error)) (turtle.IndexFunc[T], error) {
	if fn, ok := v.(*zygo.SexpFunction); ok {
		return func(i int) T { return apply(s, fn, conv, sexpInt(i)) }, nil
	}
	c, err := conv(v)
	if err != nil {
		return nil, err
	}
	return turtle.Const(c), nil
}

// indexMapArg reads a forward index map, a lambda called as
// (fn [virtual-index virtual-count] ...). Results outside [0, limit] are
// recorded as errors and clamped.
func indexMapArg(s *session, v zygo.Sexp, limit int) (turtle.IndexMap, error) {
	fn, ok := v.(*zygo.SexpFunction)
	if !ok {
		return nil, fmt.Errorf("expected function, got %T (%s)", v, v.SexpString(nil))
	}
	return func(vi, vc int) int {
		idx := apply(s, fn, toInt, sexpInt(vi), sexpInt(vc))
		if idx < 0 || idx > limit {
			s.fail(fmt.Errorf("index %d for virtual side %d out of range [0, %d]", idx, vi, limit))
			return min(max(idx, 0), limit)
		}
		return idx
	}, nil
}

// accessor builds a builtin over one per-corner property:
//
//	(name)                   ; value of the property
//	(name v)                 ; set every corner
//	(name (fn [i current]))  ; map every corner
func accessor[T any](
	s *session,
	name string,
	conv func(zygo.Sexp) (T, error),
	box func(T) zygo.Sexp,
	get func(*turtle.Turtle) T,
	set func(*turtle.Turtle, T),
	mapAll func(*turtle.Turtle, turtle.MapFunc[T]),
) builtin {
	return func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		t, err := s.target(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		if t.CornerCount() == 0 {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, errNoCrossSection)
		}
		if len(pa.positional) == 0 {
			return box(get(t)), nil
		}

		arg := pa.positional[0]
		if fn, ok := arg.(*zygo.SexpFunction); ok {
			mapAll(t, func(i int, cur T) T {
				v := apply(s, fn, conv, sexpInt(i), box(cur))
				if s.err != nil {
					return cur
				}
				return v
			})
			return s.flush(name)
		}
		v, err := conv(arg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		set(t, v)
		return zygo.SexpNull, nil
	}
}

// motion builds a builtin taking one number and applying it to the target
// turtle's frame.
func motion(s *session, name string, move func(*turtle.Turtle, float64)) builtin {
	return func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		t, err := s.target(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("%s requires exactly 1 argument, got %d", name, len(pa.positional))
		}
		f, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		move(t, f)
		return zygo.SexpNull, nil
	}
}

// sectionMaterial returns the material a new cross-section starts with
// when the script names none: the current one, if any.
func sectionMaterial(t *turtle.Turtle) kernel.Material {
	if t.CornerCount() == 0 {
		return kernel.DefaultMaterial
	}
	return t.Material()
}

// materialArg reads the optional :material keyword as a per-side value.
func materialArg(s *session, pa kwArgs, t *turtle.Turtle) (turtle.IndexFunc[kernel.Material], error) {
	v, ok := pa.kw["material"]
	if !ok {
		return turtle.Const(sectionMaterial(t)), nil
	}
	return indexArg(s, v, toMaterial)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the Spire DSL into env. Builtins drive root
// unless given a :turtle keyword naming a sub-turtle.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens and kebab-case names match the registrations below.
func registerBuiltins(env *zygo.Zlisp, root *turtle.Turtle) *session {
	s := &session{env: env, root: root}

	// -----------------------------------------------------------------------
	// (material "bark" :diffuse "#553311" :opacity 1)
	// -----------------------------------------------------------------------
	env.AddFunction("material", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		m := kernel.DefaultMaterial
		m.Name = ""

		if len(pa.positional) > 0 {
			n, err := toString(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("material: name: %w", err)
			}
			m.Name = n
		}
		if v, ok := pa.kw["name"]; ok {
			n, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("material: name: %w", err)
			}
			m.Name = n
		}
		if v, ok := pa.kw["diffuse"]; ok {
			d, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("material: diffuse: %w", err)
			}
			m.Diffuse = d
			if _, _, _, err := m.RGB(); err != nil {
				return zygo.SexpNull, fmt.Errorf("material: diffuse: %w", err)
			}
		}
		if v, ok := pa.kw["opacity"]; ok {
			o, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("material: opacity: %w", err)
			}
			if o < 0 || o > 1 {
				return zygo.SexpNull, fmt.Errorf("material: opacity %g outside [0, 1]", o)
			}
			m.Opacity = o
		}

		return sexpMat(m), nil
	})

	// -----------------------------------------------------------------------
	// (vec2 1 0) (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("vec2 requires exactly 2 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: y: %w", err)
		}
		return &sexpVec2{vec: v2.Vec{X: x, Y: y}}, nil
	})

	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (regular-polygon 6 :radius 1.5 :material bark)
	// (regular-polygon 6 :radius (fn [i] (+ 1 (* i 0.1))))
	// -----------------------------------------------------------------------
	env.AddFunction("regular_polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		t, err := s.target(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("regular-polygon: %w", err)
		}
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("regular-polygon requires a corner count")
		}
		n, err := toInt(pa.positional[0])
		if err != nil || n < 1 {
			return zygo.SexpNull, fmt.Errorf("regular-polygon: corner count must be a positive integer")
		}

		radius := turtle.Const(1.0)
		if v, ok := pa.kw["radius"]; ok {
			if radius, err = indexArg(s, v, toFloat64); err != nil {
				return zygo.SexpNull, fmt.Errorf("regular-polygon: radius: %w", err)
			}
		}
		material, err := materialArg(s, pa, t)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("regular-polygon: material: %w", err)
		}

		t.StartRegularPolygonFunc(n, radius, material)
		return s.flush("regular-polygon")
	})

	// -----------------------------------------------------------------------
	// (polygon 4 :angle (fn [i] (* i 90)) :radius 1 :material bark)
	// -----------------------------------------------------------------------
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		t, err := s.target(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
		}
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("polygon requires a corner count")
		}
		n, err := toInt(pa.positional[0])
		if err != nil || n < 1 {
			return zygo.SexpNull, fmt.Errorf("polygon: corner count must be a positive integer")
		}

		angle := turtle.IndexFunc[float64](func(i int) float64 { return 360 / float64(n) * float64(i) })
		if v, ok := pa.kw["angle"]; ok {
			if angle, err = indexArg(s, v, toFloat64); err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: angle: %w", err)
			}
		}
		radius := turtle.Const(1.0)
		if v, ok := pa.kw["radius"]; ok {
			if radius, err = indexArg(s, v, toFloat64); err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: radius: %w", err)
			}
		}
		material, err := materialArg(s, pa, t)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: material: %w", err)
		}

		t.StartPolygon(n, angle, radius, material)
		return s.flush("polygon")
	})

	// -----------------------------------------------------------------------
	// (polygon-points (vec2 1 0) (vec2 0 1) (vec2 -1 0) :material leaf)
	// (polygon-points (list (vec2 1 0) ...))
	// -----------------------------------------------------------------------
	env.AddFunction("polygon_points", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		t, err := s.target(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon-points: %w", err)
		}

		var points []v2.Vec
		for i, arg := range pa.positional {
			items := []zygo.Sexp{arg}
			if _, isPoint := arg.(*sexpVec2); !isPoint {
				if items, err = sexpListToSlice(arg); err != nil {
					return zygo.SexpNull, fmt.Errorf("polygon-points: argument %d: %w", i, err)
				}
			}
			for _, item := range items {
				p, err := toVec2(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("polygon-points: point %d: %w", len(points), err)
				}
				points = append(points, p)
			}
		}
		if len(points) == 0 {
			return zygo.SexpNull, fmt.Errorf("polygon-points requires at least one point")
		}
		material, err := materialArg(s, pa, t)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon-points: material: %w", err)
		}

		t.StartPolygonPoints(material, points...)
		return s.flush("polygon-points")
	})

	// -----------------------------------------------------------------------
	// (forward 2)
	// (forward 2 :new-map (fn [vi vc] 0))
	// -----------------------------------------------------------------------
	env.AddFunction("forward", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		t, err := s.target(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("forward: %w", err)
		}
		if t.CornerCount() == 0 {
			return zygo.SexpNull, fmt.Errorf("forward: %w", errNoCrossSection)
		}
		step := 0.0
		if len(pa.positional) > 0 {
			if step, err = toFloat64(pa.positional[0]); err != nil {
				return zygo.SexpNull, fmt.Errorf("forward: step: %w", err)
			}
		}

		lastSides := max(t.RingSize()-1, 0)
		oldMap := turtle.Proportional(lastSides)
		newMap := turtle.Proportional(t.CornerCount())
		if v, ok := pa.kw["old-map"]; ok {
			if oldMap, err = indexMapArg(s, v, lastSides); err != nil {
				return zygo.SexpNull, fmt.Errorf("forward: old-map: %w", err)
			}
		}
		if v, ok := pa.kw["new-map"]; ok {
			if newMap, err = indexMapArg(s, v, t.CornerCount()); err != nil {
				return zygo.SexpNull, fmt.Errorf("forward: new-map: %w", err)
			}
		}

		t.ForwardMapped(step, oldMap, newMap)
		return s.flush("forward")
	})

	// -----------------------------------------------------------------------
	// (move-forward 1) (rotate 45) (yaw 30) (pitch -15)
	// -----------------------------------------------------------------------
	env.AddFunction("move_forward", motion(s, "move-forward", (*turtle.Turtle).MoveForward))
	env.AddFunction("rotate", motion(s, "rotate", (*turtle.Turtle).Rotate))
	env.AddFunction("yaw", motion(s, "yaw", (*turtle.Turtle).Yaw))
	env.AddFunction("pitch", motion(s, "pitch", (*turtle.Turtle).Pitch))

	// -----------------------------------------------------------------------
	// (radius) (radius 2) (radius (fn [i r] (* r 0.9)))
	// and likewise angle, set-material, smooth
	// -----------------------------------------------------------------------
	env.AddFunction("radius", accessor(s, "radius", toFloat64, sexpFloat,
		(*turtle.Turtle).Radius, (*turtle.Turtle).SetRadius, (*turtle.Turtle).MapRadius))
	env.AddFunction("angle", accessor(s, "angle", toFloat64, sexpFloat,
		(*turtle.Turtle).Angle, (*turtle.Turtle).SetAngle, (*turtle.Turtle).MapAngle))
	env.AddFunction("set_material", accessor(s, "set-material", toMaterial, sexpMat,
		(*turtle.Turtle).Material, (*turtle.Turtle).SetMaterial, (*turtle.Turtle).MapMaterial))
	env.AddFunction("smooth", accessor(s, "smooth", toBool, sexpBool,
		(*turtle.Turtle).Smooth, (*turtle.Turtle).SetSmooth, (*turtle.Turtle).MapSmooth))

	// -----------------------------------------------------------------------
	// (uv-scale) (uv-scale 2 1) (uv-scale (vec2 2 1))
	// -----------------------------------------------------------------------
	env.AddFunction("uv_scale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		t, err := s.target(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("uv-scale: %w", err)
		}
		switch len(pa.positional) {
		case 0:
			return &sexpVec2{vec: t.UVScale}, nil
		case 1:
			v, err := toVec2(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("uv-scale: %w", err)
			}
			t.UVScale = v
		case 2:
			u, err := toFloat64(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("uv-scale: u: %w", err)
			}
			v, err := toFloat64(pa.positional[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("uv-scale: v: %w", err)
			}
			t.UVScale = v2.Vec{X: u, Y: v}
		default:
			return zygo.SexpNull, fmt.Errorf("uv-scale takes at most 2 arguments, got %d", len(pa.positional))
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (close) (close-single-sided) (close-single-sided 2)
	// -----------------------------------------------------------------------
	env.AddFunction("close", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		t, err := s.target(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("close: %w", err)
		}
		if t.CornerCount() == 0 {
			return zygo.SexpNull, fmt.Errorf("close: %w", errNoCrossSection)
		}
		t.Close()
		return zygo.SexpNull, nil
	})

	env.AddFunction("close_single_sided", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		t, err := s.target(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("close-single-sided: %w", err)
		}
		side := 0
		if len(pa.positional) > 0 {
			if side, err = toInt(pa.positional[0]); err != nil {
				return zygo.SexpNull, fmt.Errorf("close-single-sided: side: %w", err)
			}
		}
		if side < 0 || side >= t.CornerCount() {
			return zygo.SexpNull, fmt.Errorf("close-single-sided: side %d out of range [0, %d)", side, t.CornerCount())
		}
		if err := t.CloseSingleSided(side); err != nil {
			return zygo.SexpNull, fmt.Errorf("close-single-sided: %w", err)
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (def leaf (side-turtle 2))
	// (forward 1)
	// (forward 0.5 :turtle leaf)
	// -----------------------------------------------------------------------
	env.AddFunction("side_turtle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		t, err := s.target(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("side-turtle: %w", err)
		}
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("side-turtle requires a side index")
		}
		i, err := toInt(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("side-turtle: side: %w", err)
		}
		if i < 0 || i >= t.CornerCount() {
			return zygo.SexpNull, fmt.Errorf("side-turtle: side %d out of range [0, %d)", i, t.CornerCount())
		}
		return &sexpTurtle{t: t.Sides[i].SubTurtle()}, nil
	})

	env.AddFunction("corner_count", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		t, err := s.target(parseArgs(args))
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("corner-count: %w", err)
		}
		return sexpInt(t.CornerCount()), nil
	})

	// -----------------------------------------------------------------------
	// (debug-point (vec3 0 1 0) :size 0.1 :material m)
	// (debug-line (vec3 0 0 0) (vec3 0 1 0))
	// -----------------------------------------------------------------------
	env.AddFunction("debug_point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		t, err := s.target(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("debug-point: %w", err)
		}
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("debug-point requires a position")
		}
		pos, err := toVec3(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("debug-point: position: %w", err)
		}
		size := defaultDebugSize
		if v, ok := pa.kw["size"]; ok {
			if size, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("debug-point: size: %w", err)
			}
		}
		m := debugMaterial
		if v, ok := pa.kw["material"]; ok {
			if m, err = toMaterial(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("debug-point: material: %w", err)
			}
		}
		t.DebugPoint(pos, m, size)
		return zygo.SexpNull, nil
	})

	env.AddFunction("debug_line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		t, err := s.target(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("debug-line: %w", err)
		}
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("debug-line requires 2 points, got %d", len(pa.positional))
		}
		a, err := toVec3(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("debug-line: from: %w", err)
		}
		b, err := toVec3(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("debug-line: to: %w", err)
		}
		m := debugMaterial
		if v, ok := pa.kw["material"]; ok {
			if m, err = toMaterial(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("debug-line: material: %w", err)
			}
		}
		t.DebugLine(a, b, m)
		return zygo.SexpNull, nil
	})

	return s
}
