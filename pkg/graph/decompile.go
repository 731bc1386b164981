package graph

import (
	"math"

	"github.com/chazu/sculpt/pkg/sdf"
)

// pendingDecompTransform mirrors a PushTranslation/PushRotation whose
// PopTransform has not been seen yet.
type pendingDecompTransform struct {
	isRotation  bool
	translation sdf.Vec3
	rotation    sdf.Quat
}

// Decompile rebuilds a graph from bytecode. Compile(Decompile(p))
// reproduces p exactly, which makes the pair usable for program
// rewriting and for tests. Transform constants are un-inverted on the
// way out.
func Decompile(p *sdf.Program) (*Graph, NodeID, error) {
	g := New()
	var stack []NodeID
	var transforms []pendingDecompTransform
	r := sdf.NewConstantReader(p.Constants)
	hitEnd := false

	pop := func() (NodeID, bool) {
		if len(stack) == 0 {
			return 0, false
		}
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return id, true
	}
	pop2 := func() (lhs, rhs NodeID, ok bool) {
		rhs, ok = pop()
		if !ok {
			return 0, 0, false
		}
		lhs, ok = pop()
		return lhs, rhs, ok
	}

loop:
	for _, op := range p.Opcodes {
		switch op {
		case sdf.OpPlane:
			plane, err := r.Vec4()
			if err != nil {
				return nil, 0, err
			}
			stack = append(stack, g.Plane(plane))
		case sdf.OpSphere:
			center, err := r.Vec3()
			if err != nil {
				return nil, 0, err
			}
			radius, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			stack = append(stack, g.Sphere(center, radius))
		case sdf.OpCapsule:
			p0, err := r.Vec3()
			if err != nil {
				return nil, 0, err
			}
			p1, err := r.Vec3()
			if err != nil {
				return nil, 0, err
			}
			radius, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			stack = append(stack, g.Capsule(p0, p1, radius))
		case sdf.OpTaperedCapsule:
			p0, err := r.Vec3()
			if err != nil {
				return nil, 0, err
			}
			r0, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			p1, err := r.Vec3()
			if err != nil {
				return nil, 0, err
			}
			r1, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			stack = append(stack, g.TaperedCapsule(p0, p1, r0, r1))
		case sdf.OpRoundedCylinder:
			cr, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			hh, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			rr, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			stack = append(stack, g.RoundedCylinder(cr, hh, rr))
		case sdf.OpCone:
			radius, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			height, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			stack = append(stack, g.Cone(radius, height))
		case sdf.OpRoundedBox:
			halfSize, err := r.Vec3()
			if err != nil {
				return nil, 0, err
			}
			rr, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			stack = append(stack, g.RoundedBox(halfSize, rr))
		case sdf.OpTorus:
			bigR, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			smallR, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			stack = append(stack, g.Torus(bigR, smallR))
		case sdf.OpTorusSector:
			bigR, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			smallR, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			sin, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			cos, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			halfAngle := float32(math.Atan2(float64(sin), float64(cos)))
			stack = append(stack, g.TorusSector(bigR, smallR, halfAngle))
		case sdf.OpBiconvexLens:
			lower, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			upper, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			chord, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			stack = append(stack, g.BiconvexLens(lower, upper, chord))
		case sdf.OpMaterial:
			child, ok := pop()
			if !ok {
				return nil, 0, &BuildError{Msg: "Material on empty stack"}
			}
			rgb, err := r.Vec3()
			if err != nil {
				return nil, 0, err
			}
			stack = append(stack, g.Material(child, rgb))
		case sdf.OpUnion, sdf.OpSubtract, sdf.OpIntersect:
			lhs, rhs, ok := pop2()
			if !ok {
				return nil, 0, &BuildError{Msg: op.String() + " needs two operands"}
			}
			stack = append(stack, g.add(csgNode{op: op, lhs: lhs, rhs: rhs}))
		case sdf.OpUnionSmooth, sdf.OpSubtractSmooth, sdf.OpIntersectSmooth:
			lhs, rhs, ok := pop2()
			if !ok {
				return nil, 0, &BuildError{Msg: op.String() + " needs two operands"}
			}
			size, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			stack = append(stack, g.add(csgNode{op: op, lhs: lhs, rhs: rhs, size: size}))
		case sdf.OpPushTranslation:
			t, err := r.Vec3()
			if err != nil {
				return nil, 0, err
			}
			transforms = append(transforms, pendingDecompTransform{translation: t.Neg()})
		case sdf.OpPushRotation:
			q, err := r.Quat()
			if err != nil {
				return nil, 0, err
			}
			transforms = append(transforms, pendingDecompTransform{
				isRotation: true,
				rotation:   q.Conjugate(),
			})
		case sdf.OpPopTransform:
			child, ok := pop()
			if !ok || len(transforms) == 0 {
				return nil, 0, &BuildError{Msg: "PopTransform without matching push"}
			}
			t := transforms[len(transforms)-1]
			transforms = transforms[:len(transforms)-1]
			if t.isRotation {
				stack = append(stack, g.Rotate(child, t.rotation))
			} else {
				stack = append(stack, g.Translate(child, t.translation))
			}
		case sdf.OpPushScale:
			// The non-inverted scale rides on the matching PopScale.
			r.Skip(1)
		case sdf.OpPopScale:
			child, ok := pop()
			if !ok {
				return nil, 0, &BuildError{Msg: "PopScale on empty stack"}
			}
			scale, err := r.F32()
			if err != nil {
				return nil, 0, err
			}
			stack = append(stack, g.Scale(child, scale))
		case sdf.OpEnd:
			hitEnd = true
			break loop
		default:
			return nil, 0, &BuildError{Msg: "unknown opcode " + op.String()}
		}
	}

	if !hitEnd {
		return nil, 0, &BuildError{Msg: "missing End"}
	}
	if len(stack) != 1 || len(transforms) != 0 {
		return nil, 0, &BuildError{Msg: "unbalanced stack"}
	}
	if !r.AtEnd() {
		return nil, 0, &BuildError{Msg: "unused constants"}
	}
	return g, stack[0], nil
}
