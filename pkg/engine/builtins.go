package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/sculpt/pkg/graph"
	"github.com/chazu/sculpt/pkg/sdf"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by
// preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource transforms authoring source before zygomys sees it:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal),
//     avoiding global symbol registration.
//  2. Kebab-case to underscore: torus-sector -> torus_sector, since
//     zygomys reads hyphens as subtraction.
//  3. ; line comments become // comments.
//
// All three respect string literal boundaries.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Copy double-quoted string literals untouched.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to the // form zygomys expects.
		if b[i] == ';' {
			result = append(result, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword". := stays assignment.
		if b[i] == ':' && i+1 < len(b) && b[i+1] != '=' && isLetter(b[i+1]) {
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			for k := i + 1; k < j; k++ {
				c := b[k]
				if c == '-' {
					c = '_'
				}
				result = append(result, c)
			}
			result = append(result, '"')
			i = j
			continue
		}
		// Kebab-case identifiers: hyphen between identifier chars is
		// not a minus.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isKWChar(c)
}

// ---------------------------------------------------------------------------
// Sexp wrapper types
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a graph.NodeID so shapes can flow between
// builtins.
type sexpNodeRef struct {
	id graph.NodeID
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(shape %d)", n.id)
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps an sdf.Vec3.
type sexpVec3 struct {
	vec sdf.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.3g %.3g %.3g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Argument parsing
// ---------------------------------------------------------------------------

// kwArgs holds a parsed mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// isKW checks whether a Sexp is a preprocessed keyword string and
// returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		if name, ok := isKW(args[i]); ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// toFloat32 extracts a float32 from a SexpInt or SexpFloat.
func toFloat32(s zygo.Sexp) (float32, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float32(v.Val), nil
	case *zygo.SexpFloat:
		return float32(v.Val), nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (sdf.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return sdf.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return 0, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// kwFloat reads an optional keyword number, keeping def when absent.
func (a kwArgs) kwFloat(name string, def float32) (float32, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat32(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// kwVec3 reads an optional keyword vector, keeping def when absent.
func (a kwArgs) kwVec3(name string, def sdf.Vec3) (sdf.Vec3, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return sdf.Vec3{}, fmt.Errorf("%s: %w", name, err)
	}
	return vec, nil
}

// shapeArgs converts every positional argument to a node reference.
func shapeArgs(args []zygo.Sexp) ([]graph.NodeID, error) {
	ids := make([]graph.NodeID, 0, len(args))
	for _, a := range args {
		id, err := toNodeRef(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// shapeFunc is a builtin returning a shape node.
type shapeFunc func(b *builder, pa kwArgs) (graph.NodeID, error)

// registerBuiltins installs the authoring DSL into a zygomys
// environment. The builtins populate b's graph during evaluation.
//
// Source must be preprocessed with preprocessSource() first so
// :keyword tokens arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	addShape := func(name string, fn shapeFunc) {
		env.AddFunction(name, func(env *zygo.Zlisp, fname string, args []zygo.Sexp) (zygo.Sexp, error) {
			id, err := fn(b, parseArgs(args))
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return &sexpNodeRef{id: id}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var v [3]float32
		for i, a := range args {
			f, err := toFloat32(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
			}
			v[i] = f
		}
		return &sexpVec3{vec: sdf.Vec3{X: v[0], Y: v[1], Z: v[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 1 :center (vec3 0 0 0))
	// -----------------------------------------------------------------------
	addShape("sphere", func(b *builder, pa kwArgs) (graph.NodeID, error) {
		radius, err := pa.kwFloat("radius", 1)
		if err != nil {
			return 0, err
		}
		center, err := pa.kwVec3("center", sdf.Vec3{})
		if err != nil {
			return 0, err
		}
		return b.graph.Sphere(center, radius), nil
	})

	// -----------------------------------------------------------------------
	// (capsule :from (vec3 0 0 0) :to (vec3 0 1 0) :radius 0.25)
	// -----------------------------------------------------------------------
	addShape("capsule", func(b *builder, pa kwArgs) (graph.NodeID, error) {
		from, err := pa.kwVec3("from", sdf.Vec3{})
		if err != nil {
			return 0, err
		}
		to, err := pa.kwVec3("to", sdf.Vec3{Y: 1})
		if err != nil {
			return 0, err
		}
		radius, err := pa.kwFloat("radius", 0.5)
		if err != nil {
			return 0, err
		}
		return b.graph.Capsule(from, to, radius), nil
	})

	// -----------------------------------------------------------------------
	// (tapered-capsule :from v :r0 0.5 :to v :r1 0.2)
	// -----------------------------------------------------------------------
	addShape("tapered_capsule", func(b *builder, pa kwArgs) (graph.NodeID, error) {
		from, err := pa.kwVec3("from", sdf.Vec3{})
		if err != nil {
			return 0, err
		}
		to, err := pa.kwVec3("to", sdf.Vec3{Y: 1})
		if err != nil {
			return 0, err
		}
		r0, err := pa.kwFloat("r0", 0.5)
		if err != nil {
			return 0, err
		}
		r1, err := pa.kwFloat("r1", 0.25)
		if err != nil {
			return 0, err
		}
		return b.graph.TaperedCapsule(from, to, r0, r1), nil
	})

	// -----------------------------------------------------------------------
	// (box :size (vec3 1 1 1) :round 0.1) — size is the half extent
	// -----------------------------------------------------------------------
	addShape("box", func(b *builder, pa kwArgs) (graph.NodeID, error) {
		size, err := pa.kwVec3("size", sdf.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
		if err != nil {
			return 0, err
		}
		round, err := pa.kwFloat("round", 0)
		if err != nil {
			return 0, err
		}
		return b.graph.RoundedBox(size, round), nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :radius 1 :half-height 1 :round 0.1)
	// -----------------------------------------------------------------------
	addShape("cylinder", func(b *builder, pa kwArgs) (graph.NodeID, error) {
		radius, err := pa.kwFloat("radius", 0.5)
		if err != nil {
			return 0, err
		}
		halfHeight, err := pa.kwFloat("half_height", 0.5)
		if err != nil {
			return 0, err
		}
		round, err := pa.kwFloat("round", 0)
		if err != nil {
			return 0, err
		}
		return b.graph.RoundedCylinder(radius, halfHeight, round), nil
	})

	// -----------------------------------------------------------------------
	// (cone :radius 1 :height 2)
	// -----------------------------------------------------------------------
	addShape("cone", func(b *builder, pa kwArgs) (graph.NodeID, error) {
		radius, err := pa.kwFloat("radius", 0.5)
		if err != nil {
			return 0, err
		}
		height, err := pa.kwFloat("height", 1)
		if err != nil {
			return 0, err
		}
		return b.graph.Cone(radius, height), nil
	})

	// -----------------------------------------------------------------------
	// (torus :big-r 1 :small-r 0.25)
	// -----------------------------------------------------------------------
	addShape("torus", func(b *builder, pa kwArgs) (graph.NodeID, error) {
		bigR, err := pa.kwFloat("big_r", 1)
		if err != nil {
			return 0, err
		}
		smallR, err := pa.kwFloat("small_r", 0.25)
		if err != nil {
			return 0, err
		}
		return b.graph.Torus(bigR, smallR), nil
	})

	// -----------------------------------------------------------------------
	// (torus-sector :big-r 1 :small-r 0.25 :half-angle 1.5)
	// -----------------------------------------------------------------------
	addShape("torus_sector", func(b *builder, pa kwArgs) (graph.NodeID, error) {
		bigR, err := pa.kwFloat("big_r", 1)
		if err != nil {
			return 0, err
		}
		smallR, err := pa.kwFloat("small_r", 0.25)
		if err != nil {
			return 0, err
		}
		halfAngle, err := pa.kwFloat("half_angle", 3.14159265)
		if err != nil {
			return 0, err
		}
		return b.graph.TorusSector(bigR, smallR, halfAngle), nil
	})

	// -----------------------------------------------------------------------
	// (lens :lower 0.3 :upper 0.3 :chord 1)
	// -----------------------------------------------------------------------
	addShape("lens", func(b *builder, pa kwArgs) (graph.NodeID, error) {
		lower, err := pa.kwFloat("lower", 0.3)
		if err != nil {
			return 0, err
		}
		upper, err := pa.kwFloat("upper", 0.3)
		if err != nil {
			return 0, err
		}
		chord, err := pa.kwFloat("chord", 1)
		if err != nil {
			return 0, err
		}
		return b.graph.BiconvexLens(lower, upper, chord), nil
	})

	// -----------------------------------------------------------------------
	// (plane :normal (vec3 0 1 0) :offset 0)
	// -----------------------------------------------------------------------
	addShape("plane", func(b *builder, pa kwArgs) (graph.NodeID, error) {
		normal, err := pa.kwVec3("normal", sdf.Vec3{Y: 1})
		if err != nil {
			return 0, err
		}
		offset, err := pa.kwFloat("offset", 0)
		if err != nil {
			return 0, err
		}
		n := normal.Normalize()
		return b.graph.Plane(sdf.Vec4{X: n.X, Y: n.Y, Z: n.Z, W: offset}), nil
	})

	// -----------------------------------------------------------------------
	// (rgb shape 1 0 0)
	// -----------------------------------------------------------------------
	addShape("rgb", func(b *builder, pa kwArgs) (graph.NodeID, error) {
		if len(pa.positional) != 4 {
			return 0, fmt.Errorf("requires a shape and 3 color components")
		}
		child, err := toNodeRef(pa.positional[0])
		if err != nil {
			return 0, err
		}
		var c [3]float32
		for i := 0; i < 3; i++ {
			f, err := toFloat32(pa.positional[i+1])
			if err != nil {
				return 0, err
			}
			c[i] = f
		}
		return b.graph.Material(child, sdf.Vec3{X: c[0], Y: c[1], Z: c[2]}), nil
	})

	// -----------------------------------------------------------------------
	// CSG: (union a b ...) (subtract a b) (intersect a b)
	// Smooth: (union-smooth 0.3 a b ...) etc.
	// -----------------------------------------------------------------------
	addShape("union", func(b *builder, pa kwArgs) (graph.NodeID, error) {
		ids, err := shapeArgs(pa.positional)
		if err != nil {
			return 0, err
		}
		if len(ids) < 2 {
			return 0, fmt.Errorf("requires at least two shapes")
		}
		return b.graph.UnionMulti(ids...), nil
	})

	addShape("union_smooth", func(b *builder, pa kwArgs) (graph.NodeID, error) {
		if len(pa.positional) < 3 {
			return 0, fmt.Errorf("requires a size and at least two shapes")
		}
		size, err := toFloat32(pa.positional[0])
		if err != nil {
			return 0, err
		}
		ids, err := shapeArgs(pa.positional[1:])
		if err != nil {
			return 0, err
		}
		return b.graph.UnionMultiSmooth(size, ids...), nil
	})

	binary := func(fn func(g *graph.Graph, lhs, rhs graph.NodeID) graph.NodeID) shapeFunc {
		return func(b *builder, pa kwArgs) (graph.NodeID, error) {
			if len(pa.positional) != 2 {
				return 0, fmt.Errorf("requires exactly two shapes")
			}
			lhs, err := toNodeRef(pa.positional[0])
			if err != nil {
				return 0, err
			}
			rhs, err := toNodeRef(pa.positional[1])
			if err != nil {
				return 0, err
			}
			return fn(b.graph, lhs, rhs), nil
		}
	}
	binarySmooth := func(fn func(g *graph.Graph, lhs, rhs graph.NodeID, size float32) graph.NodeID) shapeFunc {
		return func(b *builder, pa kwArgs) (graph.NodeID, error) {
			if len(pa.positional) != 3 {
				return 0, fmt.Errorf("requires a size and exactly two shapes")
			}
			size, err := toFloat32(pa.positional[0])
			if err != nil {
				return 0, err
			}
			lhs, err := toNodeRef(pa.positional[1])
			if err != nil {
				return 0, err
			}
			rhs, err := toNodeRef(pa.positional[2])
			if err != nil {
				return 0, err
			}
			return fn(b.graph, lhs, rhs, size), nil
		}
	}

	addShape("subtract", binary((*graph.Graph).Subtract))
	addShape("subtract_smooth", binarySmooth((*graph.Graph).SubtractSmooth))
	addShape("intersect", binary((*graph.Graph).Intersect))
	addShape("intersect_smooth", binarySmooth((*graph.Graph).IntersectSmooth))

	// -----------------------------------------------------------------------
	// (translate shape (vec3 1 0 0))
	// -----------------------------------------------------------------------
	addShape("translate", func(b *builder, pa kwArgs) (graph.NodeID, error) {
		if len(pa.positional) != 2 {
			return 0, fmt.Errorf("requires a shape and a vec3")
		}
		child, err := toNodeRef(pa.positional[0])
		if err != nil {
			return 0, err
		}
		t, err := toVec3(pa.positional[1])
		if err != nil {
			return 0, err
		}
		return b.graph.Translate(child, t), nil
	})

	// -----------------------------------------------------------------------
	// (rotate shape :axis (vec3 0 1 0) :angle 1.57)
	// -----------------------------------------------------------------------
	addShape("rotate", func(b *builder, pa kwArgs) (graph.NodeID, error) {
		if len(pa.positional) != 1 {
			return 0, fmt.Errorf("requires a shape")
		}
		child, err := toNodeRef(pa.positional[0])
		if err != nil {
			return 0, err
		}
		axis, err := pa.kwVec3("axis", sdf.Vec3{Y: 1})
		if err != nil {
			return 0, err
		}
		angle, err := pa.kwFloat("angle", 0)
		if err != nil {
			return 0, err
		}
		return b.graph.Rotate(child, sdf.QuatFromAxisAngle(axis.Normalize(), angle)), nil
	})

	// -----------------------------------------------------------------------
	// (scale shape 2)
	// -----------------------------------------------------------------------
	addShape("scale", func(b *builder, pa kwArgs) (graph.NodeID, error) {
		if len(pa.positional) != 2 {
			return 0, fmt.Errorf("requires a shape and a factor")
		}
		child, err := toNodeRef(pa.positional[0])
		if err != nil {
			return 0, err
		}
		factor, err := toFloat32(pa.positional[1])
		if err != nil {
			return 0, err
		}
		if factor <= 0 {
			return 0, fmt.Errorf("factor must be positive, got %g", factor)
		}
		return b.graph.Scale(child, factor), nil
	})

	// -----------------------------------------------------------------------
	// (emit shape) — register a root; multiple emits are unioned
	// -----------------------------------------------------------------------
	env.AddFunction("emit", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("emit requires exactly one shape")
		}
		id, err := toNodeRef(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("emit: %w", err)
		}
		b.roots = append(b.roots, id)
		return args[0], nil
	})
}
