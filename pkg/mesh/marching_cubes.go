package mesh

import (
	"errors"

	"github.com/chazu/sculpt/pkg/grid"
	"github.com/chazu/sculpt/pkg/sdf"
)

// ErrNotFinite reports a grid whose sampled field contains NaN or
// infinity, which would poison every interpolated vertex.
var ErrNotFinite = errors.New("mesh: field evaluated to a non-finite value")

// edgeKey identifies a lattice edge for vertex welding: the flat index
// of the edge's minimum corner plus the axis it runs along.
type edgeKey struct {
	corner int
	axis   int
}

// FromGrid extracts the zero isosurface of the grid as a triangle
// mesh. Vertices on shared cell edges are welded; positions are
// returned in world space. Corners with distance exactly zero count
// as outside, so coplanar-with-the-lattice surfaces still mesh.
func FromGrid(g *grid.Grid) (*TriangleMesh, error) {
	size := g.Size()
	data := g.Data()

	// A NaN usually floods the whole grid; one probe catches it.
	if len(data) > 0 && !data[len(data)/2].IsFinite() {
		return nil, ErrNotFinite
	}

	m := &TriangleMesh{}
	weld := make(map[edgeKey]uint32)
	h := g.CellSize()
	// Collinear slivers below this area are dropped. Computed in grid
	// units where the cell edge is 1.
	const minArea2 = 2e-12 // twice the area threshold

	// vertexOnEdge welds or creates the interpolated vertex on the
	// lattice edge from corner a to corner b of the cell at (x,y,z).
	vertexOnEdge := func(x, y, z, e int) uint32 {
		a, b := edgeCorner[e][0], edgeCorner[e][1]
		ax, ay, az := x+cornerOffset[a][0], y+cornerOffset[a][1], z+cornerOffset[a][2]
		bx, by, bz := x+cornerOffset[b][0], y+cornerOffset[b][1], z+cornerOffset[b][2]
		ia := g.FlatIndex(grid.Index3{ax, ay, az})
		ib := g.FlatIndex(grid.Index3{bx, by, bz})
		// Half the cube edges run in the negative direction; key on
		// the lattice-minimum endpoint so neighbors share the vertex.
		minCorner := ia
		if ib < minCorner {
			minCorner = ib
		}
		sa := data[ia]
		sb := data[ib]
		t := sa.Distance / (sa.Distance - sb.Distance)
		key := edgeKey{corner: minCorner, axis: edgeAxis[e]}
		// A vertex within 1e-4 cell of a corner snaps onto it and is
		// keyed on the corner (axis 3), so every edge meeting there
		// shares it and the triangles collapsing onto it are skipped
		// below instead of leaving holes.
		switch {
		case t <= 1e-4:
			t, key = 0, edgeKey{corner: ia, axis: 3}
		case t >= 1-1e-4:
			t, key = 1, edgeKey{corner: ib, axis: 3}
		}
		if id, ok := weld[key]; ok {
			return id
		}

		pa := sdf.V3(float32(ax), float32(ay), float32(az))
		pb := sdf.V3(float32(bx), float32(by), float32(bz))
		pos := pa.Lerp(pb, t)

		ga := g.Gradient(grid.Index3{ax, ay, az})
		gb := g.Gradient(grid.Index3{bx, by, bz})
		normal := ga.Lerp(gb, t).Normalize()

		id := uint32(len(m.Positions))
		m.Positions = append(m.Positions, pos)
		m.Normals = append(m.Normals, normal)
		m.Colors = append(m.Colors, sa.RGB.Lerp(sb.RGB, t))
		weld[key] = id
		return id
	}

	for z := 0; z < size[2]-1; z++ {
		for y := 0; y < size[1]-1; y++ {
			for x := 0; x < size[0]-1; x++ {
				ci := 0
				for i := 0; i < 8; i++ {
					d := data[g.FlatIndex(grid.Index3{
						x + cornerOffset[i][0],
						y + cornerOffset[i][1],
						z + cornerOffset[i][2],
					})].Distance
					if d < 0 {
						ci |= 1 << i
					}
				}
				if edgeTable[ci] == 0 {
					continue
				}
				row := &triTable[ci]
				for i := 0; i < 16 && row[i] != -1; i += 3 {
					i0 := vertexOnEdge(x, y, z, int(row[i]))
					i1 := vertexOnEdge(x, y, z, int(row[i+1]))
					i2 := vertexOnEdge(x, y, z, int(row[i+2]))
					if i0 == i1 || i1 == i2 || i2 == i0 {
						continue
					}
					if triangleArea2(m.Positions[i0], m.Positions[i1], m.Positions[i2]) <= minArea2 {
						continue
					}
					// The case table winds toward the inside; reverse
					// so normals point from negative to positive.
					m.Indices = append(m.Indices, i0, i2, i1)
				}
			}
		}
	}

	// Map lattice coordinates to world space.
	origin := g.Origin()
	for i, p := range m.Positions {
		m.Positions[i] = origin.Add(p.Mul(h))
	}

	return m, nil
}

// triangleArea2 returns twice the triangle area.
func triangleArea2(a, b, c sdf.Vec3) float32 {
	return b.Sub(a).Cross(c.Sub(a)).Length()
}
