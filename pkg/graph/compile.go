package graph

import (
	"fmt"

	"github.com/chazu/sculpt/pkg/sdf"
)

// BuildError reports a program that violates the static contract:
// unknown nodes, stack depths beyond sdf.StackDepth, or an unbalanced
// result. Build-time validation is the sole gate; once a Program is
// returned, evaluation is a total function.
type BuildError struct {
	Msg string
}

func (e *BuildError) Error() string {
	return "graph: " + e.Msg
}

// minSmoothing keeps the smooth combinators from dividing by zero;
// compiled smoothness constants never go below it.
const minSmoothing = 1e-4

// Compile flattens the subtree rooted at root into a validated
// Program. Transform constants are stored pre-inverted (negated
// translation, conjugated rotation, reciprocal scale) so the
// interpreter applies them directly.
func Compile(g *Graph, root NodeID) (*sdf.Program, error) {
	p := &sdf.Program{}
	if err := compileNode(g, root, p); err != nil {
		return nil, err
	}
	p.Opcodes = append(p.Opcodes, sdf.OpEnd)
	if err := p.Validate(); err != nil {
		return nil, &BuildError{Msg: err.Error()}
	}
	return p, nil
}

func pushVec3(p *sdf.Program, v sdf.Vec3) {
	p.Constants = append(p.Constants, v.X, v.Y, v.Z)
}

func smoothing(size float32) float32 {
	if size < minSmoothing {
		return minSmoothing
	}
	return size
}

func compileNode(g *Graph, id NodeID, p *sdf.Program) error {
	if int(id) >= len(g.nodes) {
		return &BuildError{Msg: fmt.Sprintf("node %d does not exist", id)}
	}
	switch n := g.nodes[id].(type) {
	case planeNode:
		p.Opcodes = append(p.Opcodes, sdf.OpPlane)
		p.Constants = append(p.Constants, n.plane.X, n.plane.Y, n.plane.Z, n.plane.W)
	case sphereNode:
		p.Opcodes = append(p.Opcodes, sdf.OpSphere)
		pushVec3(p, n.center)
		p.Constants = append(p.Constants, n.radius)
	case capsuleNode:
		p.Opcodes = append(p.Opcodes, sdf.OpCapsule)
		pushVec3(p, n.p0)
		pushVec3(p, n.p1)
		p.Constants = append(p.Constants, n.radius)
	case taperedCapsuleNode:
		p.Opcodes = append(p.Opcodes, sdf.OpTaperedCapsule)
		pushVec3(p, n.p0)
		p.Constants = append(p.Constants, n.r0)
		pushVec3(p, n.p1)
		p.Constants = append(p.Constants, n.r1)
	case roundedCylinderNode:
		p.Opcodes = append(p.Opcodes, sdf.OpRoundedCylinder)
		p.Constants = append(p.Constants, n.cylinderRadius, n.halfHeight, n.roundingRadius)
	case coneNode:
		p.Opcodes = append(p.Opcodes, sdf.OpCone)
		p.Constants = append(p.Constants, n.radius, n.height)
	case roundedBoxNode:
		p.Opcodes = append(p.Opcodes, sdf.OpRoundedBox)
		pushVec3(p, n.halfSize)
		p.Constants = append(p.Constants, n.roundingRadius)
	case torusNode:
		p.Opcodes = append(p.Opcodes, sdf.OpTorus)
		p.Constants = append(p.Constants, n.bigR, n.smallR)
	case torusSectorNode:
		p.Opcodes = append(p.Opcodes, sdf.OpTorusSector)
		p.Constants = append(p.Constants, n.bigR, n.smallR, n.sinHalf, n.cosHalf)
	case biconvexLensNode:
		p.Opcodes = append(p.Opcodes, sdf.OpBiconvexLens)
		p.Constants = append(p.Constants, n.lowerSagitta, n.upperSagitta, n.chord)
	case materialNode:
		if err := compileNode(g, n.child, p); err != nil {
			return err
		}
		p.Opcodes = append(p.Opcodes, sdf.OpMaterial)
		pushVec3(p, n.rgb)
	case csgNode:
		if err := compileNode(g, n.lhs, p); err != nil {
			return err
		}
		if err := compileNode(g, n.rhs, p); err != nil {
			return err
		}
		p.Opcodes = append(p.Opcodes, n.op)
		switch n.op {
		case sdf.OpUnionSmooth, sdf.OpSubtractSmooth, sdf.OpIntersectSmooth:
			p.Constants = append(p.Constants, smoothing(n.size))
		}
	case multiUnionNode:
		if len(n.children) == 0 {
			return &BuildError{Msg: "empty multi-union"}
		}
		for i, child := range n.children {
			if err := compileNode(g, child, p); err != nil {
				return err
			}
			if i == 0 {
				continue
			}
			if n.smooth {
				p.Opcodes = append(p.Opcodes, sdf.OpUnionSmooth)
				p.Constants = append(p.Constants, smoothing(n.size))
			} else {
				p.Opcodes = append(p.Opcodes, sdf.OpUnion)
			}
		}
	case translateNode:
		p.Opcodes = append(p.Opcodes, sdf.OpPushTranslation)
		pushVec3(p, n.translation.Neg())
		if err := compileNode(g, n.child, p); err != nil {
			return err
		}
		p.Opcodes = append(p.Opcodes, sdf.OpPopTransform)
	case rotateNode:
		q := n.rotation.Conjugate()
		p.Opcodes = append(p.Opcodes, sdf.OpPushRotation)
		p.Constants = append(p.Constants, q.X, q.Y, q.Z, q.W)
		if err := compileNode(g, n.child, p); err != nil {
			return err
		}
		p.Opcodes = append(p.Opcodes, sdf.OpPopTransform)
	case scaleNode:
		if n.scale <= 0 {
			return &BuildError{Msg: fmt.Sprintf("scale must be positive, got %g", n.scale)}
		}
		p.Opcodes = append(p.Opcodes, sdf.OpPushScale)
		p.Constants = append(p.Constants, 1/n.scale)
		if err := compileNode(g, n.child, p); err != nil {
			return err
		}
		p.Opcodes = append(p.Opcodes, sdf.OpPopScale)
		p.Constants = append(p.Constants, n.scale)
	default:
		return &BuildError{Msg: fmt.Sprintf("unknown node kind %T", n)}
	}
	return nil
}
