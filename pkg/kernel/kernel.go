// Package kernel defines the meshing backend interface: a compiled
// program goes in, a triangle mesh comes out. The native backend uses
// this module's discretizer and marching cubes; pkg/kernel/sdfx meshes
// through the deadsy/sdfx renderer instead. The abstraction allows
// swapping backends without changing the rest of the system.
package kernel

import (
	"github.com/chazu/sculpt/pkg/mesh"
	"github.com/chazu/sculpt/pkg/sdf"
)

// MeshOptions controls grid sizing when meshing a program.
type MeshOptions struct {
	// MeanResolution is the desired mean grid resolution per axis;
	// the total number of grid points lands near its cube.
	MeanResolution float32

	// MaxResolution and MinResolution clamp the per-axis resolution
	// for very elongated or very thin bounding boxes. The minimum
	// overrules the maximum.
	MaxResolution float32
	MinResolution float32
}

// DefaultMeshOptions is a medium quality/speed trade-off.
func DefaultMeshOptions() MeshOptions {
	return MeshOptions{
		MeanResolution: 64,
		MaxResolution:  128,
		MinResolution:  8,
	}
}

// LowMeshOptions favors speed over fidelity.
func LowMeshOptions() MeshOptions {
	return MeshOptions{
		MeanResolution: 32,
		MaxResolution:  64,
		MinResolution:  8,
	}
}

// Mesher converts a compiled program into a triangle mesh.
type Mesher interface {
	Mesh(p *sdf.Program, opts MeshOptions) (*mesh.TriangleMesh, error)
}

// GridLayout is a concrete grid sizing derived from a bounding box
// and MeshOptions: the expanded box, the cell size, and the lattice
// dimensions.
type GridLayout struct {
	Box      sdf.Aabb
	CellSize float32
	Size     [3]int
}

// Layout picks an expanded bounding box and grid dimensions for the
// given tight box. The box is padded by one grid cell on each side so
// the surface never touches the lattice boundary.
func Layout(box sdf.Aabb, opts MeshOptions) GridLayout {
	if opts.MeanResolution <= 0 {
		opts = DefaultMeshOptions()
	}
	// Preliminary scale, so the padding is in world units.
	gridFromWorld := opts.MeanResolution / cbrt32(box.Volume())
	padding := 1 / gridFromWorld
	box = box.Expanded(sdf.Splat(padding))

	gridFromWorld = opts.MeanResolution / cbrt32(box.Volume())
	size := box.Size()
	res := [3]float32{
		gridFromWorld * size.X,
		gridFromWorld * size.Y,
		gridFromWorld * size.Z,
	}

	maxSide := max3(res[0], res[1], res[2])
	maxFactor := float32(1)
	if maxSide > opts.MaxResolution {
		maxFactor = opts.MaxResolution / maxSide
	}
	minSide := min3(res[0], res[1], res[2])
	minFactor := float32(1)
	if minSide < opts.MinResolution {
		minFactor = opts.MinResolution / minSide
	}

	// Let the minimum overrule the maximum.
	factor := maxFactor
	if minFactor > factor {
		factor = minFactor
	}

	dims := [3]int{
		ceilInt(factor * res[0]),
		ceilInt(factor * res[1]),
		ceilInt(factor * res[2]),
	}
	// Cell size so that dims-1 cells span the box on X.
	cell := size.X / float32(dims[0]-1)
	return GridLayout{Box: box, CellSize: cell, Size: dims}
}
