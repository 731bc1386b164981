package graph

import (
	"math"

	"github.com/chazu/sculpt/pkg/sdf"
)

// NodeID identifies a node within its Graph.
type NodeID uint32

// Graph is a high-level definition of a signed distance field
// function. Nodes reference their children by ID; the graph must stay
// acyclic, which the builder guarantees because children always exist
// before their parents.
type Graph struct {
	nodes []node
}

// node is the closed set of graph node kinds. Each concrete type
// carries exactly the parameters its opcode consumes.
type node interface{ isNode() }

type planeNode struct{ plane sdf.Vec4 }

type sphereNode struct {
	center sdf.Vec3
	radius float32
}

type capsuleNode struct {
	p0, p1 sdf.Vec3
	radius float32
}

type taperedCapsuleNode struct {
	p0, p1 sdf.Vec3
	r0, r1 float32
}

type roundedCylinderNode struct {
	cylinderRadius float32
	halfHeight     float32
	roundingRadius float32
}

type coneNode struct {
	radius float32
	height float32
}

type roundedBoxNode struct {
	halfSize       sdf.Vec3
	roundingRadius float32
}

type torusNode struct {
	bigR, smallR float32
}

type torusSectorNode struct {
	bigR, smallR  float32
	sinHalf, cosHalf float32
}

type biconvexLensNode struct {
	lowerSagitta, upperSagitta, chord float32
}

type materialNode struct {
	child NodeID
	rgb   sdf.Vec3
}

type csgNode struct {
	op       sdf.Opcode // Union, Subtract, Intersect or smooth variant
	lhs, rhs NodeID
	size     float32 // smooth variants only
}

type multiUnionNode struct {
	children []NodeID
	smooth   bool
	size     float32
}

type translateNode struct {
	child       NodeID
	translation sdf.Vec3
}

type rotateNode struct {
	child    NodeID
	rotation sdf.Quat
}

type scaleNode struct {
	child NodeID
	scale float32
}

func (planeNode) isNode()           {}
func (sphereNode) isNode()          {}
func (capsuleNode) isNode()         {}
func (taperedCapsuleNode) isNode()  {}
func (roundedCylinderNode) isNode() {}
func (coneNode) isNode()            {}
func (roundedBoxNode) isNode()      {}
func (torusNode) isNode()           {}
func (torusSectorNode) isNode()     {}
func (biconvexLensNode) isNode()    {}
func (materialNode) isNode()        {}
func (csgNode) isNode()             {}
func (multiUnionNode) isNode()      {}
func (translateNode) isNode()       {}
func (rotateNode) isNode()          {}
func (scaleNode) isNode()           {}

// New returns an empty graph.
func New() *Graph {
	return &Graph{}
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

func (g *Graph) add(n node) NodeID {
	g.nodes = append(g.nodes, n)
	return NodeID(len(g.nodes) - 1)
}

// Plane adds a half-space: distance = dot(pos, plane.xyz) + plane.w.
// The normal should be unit length.
func (g *Graph) Plane(plane sdf.Vec4) NodeID {
	return g.add(planeNode{plane: plane})
}

// Sphere adds a sphere with the given center and radius.
func (g *Graph) Sphere(center sdf.Vec3, radius float32) NodeID {
	return g.add(sphereNode{center: center, radius: radius})
}

// Capsule adds a capsule between two endpoint centers. Coincident
// endpoints degenerate to a sphere.
func (g *Graph) Capsule(p0, p1 sdf.Vec3, radius float32) NodeID {
	if p0 == p1 {
		return g.Sphere(p0, radius)
	}
	return g.add(capsuleNode{p0: p0, p1: p1, radius: radius})
}

// CapsuleY adds a capsule from the origin along the positive Y axis.
func (g *Graph) CapsuleY(length, radius float32) NodeID {
	return g.Capsule(sdf.Vec3{}, sdf.Vec3{Y: length}, radius)
}

// TaperedCapsule adds the convex hull of two spheres. If one sphere
// fully contains the other the node degenerates to that sphere, which
// the distance kernel cannot represent.
func (g *Graph) TaperedCapsule(p0, p1 sdf.Vec3, r0, r1 float32) NodeID {
	d := p0.Sub(p1).Length()
	if d+r1 <= r0 {
		return g.Sphere(p0, r0)
	}
	if d+r0 <= r1 {
		return g.Sphere(p1, r1)
	}
	return g.add(taperedCapsuleNode{p0: p0, p1: p1, r0: r0, r1: r1})
}

// RoundedCylinder adds a Y-axis cylinder centered at the origin with
// the edges sandpapered down by roundingRadius.
func (g *Graph) RoundedCylinder(cylinderRadius, halfHeight, roundingRadius float32) NodeID {
	return g.add(roundedCylinderNode{
		cylinderRadius: cylinderRadius,
		halfHeight:     halfHeight,
		roundingRadius: roundingRadius,
	})
}

// Cone adds a cone with its base center at the origin, extending
// height along positive Y.
func (g *Graph) Cone(radius, height float32) NodeID {
	return g.add(coneNode{radius: radius, height: height})
}

// RoundedBox adds a box with rounded edges and corners.
func (g *Graph) RoundedBox(halfSize sdf.Vec3, roundingRadius float32) NodeID {
	return g.add(roundedBoxNode{halfSize: halfSize, roundingRadius: roundingRadius})
}

// Torus adds a ring centered at the origin, lying in the XZ plane.
func (g *Graph) Torus(bigR, smallR float32) NodeID {
	return g.add(torusNode{bigR: bigR, smallR: smallR})
}

// TorusSector adds a partial torus. halfAngle = pi gives the full
// ring; the missing piece faces negative Z.
func (g *Graph) TorusSector(bigR, smallR, halfAngle float32) NodeID {
	s, c := math.Sincos(float64(halfAngle))
	return g.add(torusSectorNode{
		bigR: bigR, smallR: smallR,
		sinHalf: float32(s), cosHalf: float32(c),
	})
}

// BiconvexLens adds a lens made of two spherical caps sharing a chord.
// Sagittas are clamped to avoid degenerate sphere radii.
func (g *Graph) BiconvexLens(lowerSagitta, upperSagitta, chord float32) NodeID {
	const minSagitta = 1e-3
	maxSagitta := chord / 2
	clamp := func(s float32) float32 {
		if s < minSagitta {
			return minSagitta
		}
		if s > maxSagitta {
			return maxSagitta
		}
		return s
	}
	return g.add(biconvexLensNode{
		lowerSagitta: clamp(lowerSagitta),
		upperSagitta: clamp(upperSagitta),
		chord:        chord,
	})
}

// Material sets the color of everything below child.
func (g *Graph) Material(child NodeID, rgb sdf.Vec3) NodeID {
	return g.add(materialNode{child: child, rgb: rgb})
}

// Union combines two shapes, keeping the closer surface.
func (g *Graph) Union(lhs, rhs NodeID) NodeID {
	return g.add(csgNode{op: sdf.OpUnion, lhs: lhs, rhs: rhs})
}

// UnionSmooth blends two shapes together over the given size.
func (g *Graph) UnionSmooth(lhs, rhs NodeID, size float32) NodeID {
	return g.add(csgNode{op: sdf.OpUnionSmooth, lhs: lhs, rhs: rhs, size: size})
}

// UnionMulti unions any number of children as a chain.
func (g *Graph) UnionMulti(children ...NodeID) NodeID {
	return g.add(multiUnionNode{children: append([]NodeID(nil), children...)})
}

// UnionMultiSmooth smooth-unions any number of children as a chain.
func (g *Graph) UnionMultiSmooth(size float32, children ...NodeID) NodeID {
	return g.add(multiUnionNode{
		children: append([]NodeID(nil), children...),
		smooth:   true,
		size:     size,
	})
}

// Subtract removes rhs from lhs.
func (g *Graph) Subtract(lhs, rhs NodeID) NodeID {
	return g.add(csgNode{op: sdf.OpSubtract, lhs: lhs, rhs: rhs})
}

// SubtractSmooth removes rhs from lhs with a blended seam.
func (g *Graph) SubtractSmooth(lhs, rhs NodeID, size float32) NodeID {
	return g.add(csgNode{op: sdf.OpSubtractSmooth, lhs: lhs, rhs: rhs, size: size})
}

// Intersect keeps the overlap of two shapes.
func (g *Graph) Intersect(lhs, rhs NodeID) NodeID {
	return g.add(csgNode{op: sdf.OpIntersect, lhs: lhs, rhs: rhs})
}

// IntersectSmooth keeps the overlap with a blended seam.
func (g *Graph) IntersectSmooth(lhs, rhs NodeID, size float32) NodeID {
	return g.add(csgNode{op: sdf.OpIntersectSmooth, lhs: lhs, rhs: rhs, size: size})
}

// Translate moves child by translation.
func (g *Graph) Translate(child NodeID, translation sdf.Vec3) NodeID {
	return g.add(translateNode{child: child, translation: translation})
}

// Rotate rotates child by the given quaternion.
func (g *Graph) Rotate(child NodeID, rotation sdf.Quat) NodeID {
	return g.add(rotateNode{child: child, rotation: rotation})
}

// Scale scales child uniformly. Non-uniform scale does not commute
// with signed distance and is not supported.
func (g *Graph) Scale(child NodeID, scale float32) NodeID {
	return g.add(scaleNode{child: child, scale: scale})
}
