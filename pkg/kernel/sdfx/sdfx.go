// Package sdfx implements the kernel.Mesher interface through the
// github.com/deadsy/sdfx CAD library: a compiled program is adapted to
// sdfx's SDF3 interface and meshed with its marching cubes renderer.
// Useful as an independent cross-check of the native backend and as a
// bridge into sdfx's export pipeline.
package sdfx

import (
	"github.com/chazu/sculpt/pkg/kernel"
	"github.com/chazu/sculpt/pkg/mesh"
	coresdf "github.com/chazu/sculpt/pkg/sdf"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface checks.
var (
	_ kernel.Mesher = (*Mesher)(nil)
	_ sdf.SDF3      = (*SDF3)(nil)
)

// defaultMeshCells controls marching cubes tessellation resolution
// when the caller does not specify one.
const defaultMeshCells = 128

// SDF3 adapts a compiled program to sdfx's SDF3 interface so it can be
// fed to any sdfx renderer or exporter. Not safe for concurrent use;
// the underlying interpreter owns its evaluation stacks.
type SDF3 struct {
	interp *coresdf.DistanceInterpreter
	bounds sdf.Box3
}

// Wrap adapts the program. The bounding box comes from the
// conservative bounds pass.
func Wrap(p *coresdf.Program) *SDF3 {
	box := coresdf.Bounds(p)
	return &SDF3{
		interp: coresdf.NewDistanceInterpreter(p),
		bounds: sdf.Box3{
			Min: v3.Vec{X: float64(box.Min.X), Y: float64(box.Min.Y), Z: float64(box.Min.Z)},
			Max: v3.Vec{X: float64(box.Max.X), Y: float64(box.Max.Y), Z: float64(box.Max.Z)},
		},
	}
}

// Evaluate returns the signed distance at p.
func (s *SDF3) Evaluate(p v3.Vec) float64 {
	return float64(s.interp.Eval(coresdf.V3(float32(p.X), float32(p.Y), float32(p.Z))))
}

// BoundingBox returns the conservative axis-aligned bounding box.
func (s *SDF3) BoundingBox() sdf.Box3 {
	return s.bounds
}

// Mesher meshes programs through sdfx's marching cubes.
type Mesher struct {
	// Cells overrides the tessellation resolution when positive.
	Cells int
}

// New returns an sdfx-backed mesher with default resolution.
func New() *Mesher {
	return &Mesher{}
}

// Mesh renders the program with sdfx marching cubes. sdfx emits
// unwelded triangle soup with face normals; vertex colors are gathered
// with the full rgb interpreter afterwards, the way the native grid is
// colored at discretization time.
func (k *Mesher) Mesh(p *coresdf.Program, opts kernel.MeshOptions) (*mesh.TriangleMesh, error) {
	wrapped := Wrap(p)
	box := coresdf.Bounds(p)
	if box.IsEmpty() || !box.IsFinite() || box.Volume() <= 0 {
		return nil, kernel.ErrUnbounded
	}

	cells := k.Cells
	if cells <= 0 {
		cells = defaultMeshCells
		if opts.MeanResolution > 0 {
			cells = int(opts.MeanResolution)
		}
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(wrapped, renderer)

	rgb := coresdf.NewInterpreter(p)
	m := &mesh.TriangleMesh{
		Positions: make([]coresdf.Vec3, 0, len(triangles)*3),
		Normals:   make([]coresdf.Vec3, 0, len(triangles)*3),
		Colors:    make([]coresdf.Vec3, 0, len(triangles)*3),
		Indices:   make([]uint32, 0, len(triangles)*3),
	}
	for i, tri := range triangles {
		n := tri.Normal()
		normal := coresdf.V3(float32(n.X), float32(n.Y), float32(n.Z))
		for j := 0; j < 3; j++ {
			v := tri[j]
			pos := coresdf.V3(float32(v.X), float32(v.Y), float32(v.Z))
			m.Positions = append(m.Positions, pos)
			m.Normals = append(m.Normals, normal)
			m.Colors = append(m.Colors, rgb.Eval(pos).RGB)
			m.Indices = append(m.Indices, uint32(i*3+j))
		}
	}
	return m, nil
}
