// Package grid stores discretized field samples on a dense 3D lattice
// and fills them from a compiled program, skipping cells the Lipschitz
// property proves are far from the surface.
package grid

import (
	"github.com/chazu/sculpt/pkg/sdf"
)

// Index3 addresses a lattice cell as [x, y, z].
type Index3 = [3]int

// Grid is a dense 3D array of samples on the cube lattice
// [0,0,0]..[W-1,H-1,D-1]. Cell (x,y,z) maps to world space at
// Origin + CellSize*(x,y,z). The grid is created empty, filled once by
// Discretize, consumed by the mesher, and discarded.
type Grid struct {
	size     Index3
	origin   sdf.Vec3
	cellSize float32
	data     []sdf.Sample
}

// NewGrid allocates an unfilled grid.
func NewGrid(size Index3, origin sdf.Vec3, cellSize float32) *Grid {
	return &Grid{
		size:     size,
		origin:   origin,
		cellSize: cellSize,
		data:     make([]sdf.Sample, size[0]*size[1]*size[2]),
	}
}

// Size returns the lattice dimensions.
func (g *Grid) Size() Index3 {
	return g.size
}

// Origin returns the world position of cell (0,0,0).
func (g *Grid) Origin() sdf.Vec3 {
	return g.origin
}

// CellSize returns the world-space edge length of one cell.
func (g *Grid) CellSize() float32 {
	return g.cellSize
}

// Data returns the flat sample buffer, x-major then y then z.
func (g *Grid) Data() []sdf.Sample {
	return g.data
}

// FlatIndex converts a lattice coordinate to a buffer offset.
func (g *Grid) FlatIndex(p Index3) int {
	return p[0] + g.size[0]*(p[1]+g.size[1]*p[2])
}

// At returns the sample at the given lattice coordinate.
func (g *Grid) At(p Index3) sdf.Sample {
	return g.data[g.FlatIndex(p)]
}

// Set stores a sample at the given lattice coordinate.
func (g *Grid) Set(p Index3, s sdf.Sample) {
	g.data[g.FlatIndex(p)] = s
}

// WorldPos returns the world position of a cell center.
func (g *Grid) WorldPos(p Index3) sdf.Vec3 {
	return g.origin.Add(sdf.V3(float32(p[0]), float32(p[1]), float32(p[2])).Mul(g.cellSize))
}

// Gradient estimates the distance gradient at a cell by central
// differences in lattice units, falling back to one-sided differences
// on the boundary. The result is unnormalized.
func (g *Grid) Gradient(p Index3) sdf.Vec3 {
	x, y, z := p[0], p[1], p[2]
	i := g.FlatIndex(p)
	ys := g.size[0]
	zs := g.size[0] * g.size[1]

	x1, x2 := i, i
	if x < g.size[0]-1 {
		x1 = i + 1
	}
	if x > 0 {
		x2 = i - 1
	}
	y1, y2 := i, i
	if y < g.size[1]-1 {
		y1 = i + ys
	}
	if y > 0 {
		y2 = i - ys
	}
	z1, z2 := i, i
	if z < g.size[2]-1 {
		z1 = i + zs
	}
	if z > 0 {
		z2 = i - zs
	}

	return sdf.Vec3{
		X: g.data[x1].Distance - g.data[x2].Distance,
		Y: g.data[y1].Distance - g.data[y2].Distance,
		Z: g.data[z1].Distance - g.data[z2].Distance,
	}
}
