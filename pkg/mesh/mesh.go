// Package mesh extracts triangle meshes from discretized sample grids
// using marching cubes, with welded vertices, interpolated vertex
// colors, and gradient normals.
package mesh

import (
	"fmt"
	"strings"

	"github.com/chazu/sculpt/pkg/sdf"
)

// TriangleMesh is an indexed triangle mesh with per-vertex color and
// normal. Triangles wind counter-clockwise viewed from outside the
// surface.
type TriangleMesh struct {
	Positions []sdf.Vec3
	Normals   []sdf.Vec3
	Colors    []sdf.Vec3
	Indices   []uint32
}

// VertexCount returns the number of vertices.
func (m *TriangleMesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *TriangleMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty reports whether the mesh has no geometry.
func (m *TriangleMesh) IsEmpty() bool {
	return len(m.Indices) == 0
}

// ToOBJ renders the mesh as a Wavefront OBJ file. Vertex colors after
// the positions are a non-standard but widely supported extension.
func (m *TriangleMesh) ToOBJ() string {
	var b strings.Builder
	b.WriteString("# Generated by sculpt\n")

	b.WriteString("\n# Vertex positions and colors:\n")
	for i, p := range m.Positions {
		c := m.Colors[i]
		fmt.Fprintf(&b, "v %g %g %g %g %g %g\n", p.X, p.Y, p.Z, c.X, c.Y, c.Z)
	}

	b.WriteString("\n# Vertex normals:\n")
	for _, n := range m.Normals {
		fmt.Fprintf(&b, "vn %g %g %g\n", n.X, n.Y, n.Z)
	}

	b.WriteString("\n# Triangle faces:\n")
	for i := 0; i+2 < len(m.Indices); i += 3 {
		// OBJ indices are 1-based.
		fmt.Fprintf(&b, "f %d %d %d\n", m.Indices[i]+1, m.Indices[i+1]+1, m.Indices[i+2]+1)
	}

	return b.String()
}
