package kernel

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/chazu/sculpt/pkg/grid"
	"github.com/chazu/sculpt/pkg/mesh"
	"github.com/chazu/sculpt/pkg/sdf"
)

// ErrUnbounded reports a program whose field has no finite bounding
// box (for example a bare plane), which cannot be gridded.
var ErrUnbounded = errors.New("kernel: program has an unbounded or empty surface")

// Compile-time interface check.
var _ Mesher = (*Native)(nil)

// Native is the built-in meshing backend: conservative bounds, the
// Lipschitz-assisted discretizer, then marching cubes.
type Native struct {
	// Grid tunes the discretizer (band width, workers, cell ceiling).
	Grid grid.Options

	// Ctx, when set, cancels long discretizations. Defaults to
	// context.Background().
	Ctx context.Context
}

// New returns a Native mesher with default options.
func New() *Native {
	return &Native{}
}

func (n *Native) ctx() context.Context {
	if n.Ctx != nil {
		return n.Ctx
	}
	return context.Background()
}

// Mesh discretizes the program over its bounding box and extracts the
// surface.
func (n *Native) Mesh(p *sdf.Program, opts MeshOptions) (*mesh.TriangleMesh, error) {
	box := sdf.Bounds(p)
	if box.IsEmpty() || !box.IsFinite() || box.Volume() <= 0 {
		return nil, ErrUnbounded
	}

	layout := Layout(box, opts)
	g, err := grid.Discretize(n.ctx(), p, layout.Box.Min, layout.CellSize, layout.Size, n.Grid)
	if err != nil {
		return nil, fmt.Errorf("kernel: discretize: %w", err)
	}

	m, err := mesh.FromGrid(g)
	if err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}
	return m, nil
}

func cbrt32(x float32) float32 {
	return float32(math.Cbrt(float64(x)))
}

func ceilInt(x float32) int {
	return int(math.Ceil(float64(x)))
}

func max3(a, b, c float32) float32 {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}

func min3(a, b, c float32) float32 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
