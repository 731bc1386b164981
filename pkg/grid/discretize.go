package grid

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/chazu/sculpt/pkg/sdf"
)

// DiscretizeError reports a grid request rejected by the memory guard.
type DiscretizeError struct {
	Cells    int
	MaxCells int
}

func (e *DiscretizeError) Error() string {
	return fmt.Sprintf("grid: %d cells exceeds the ceiling of %d", e.Cells, e.MaxCells)
}

// DefaultMaxCells caps grids at 512^3 samples unless overridden.
const DefaultMaxCells = 512 * 512 * 512

// DefaultBand is the exactness band in cell units. Every cell whose
// center distance is within Band*CellSize of the surface is sampled
// exactly; sqrt(3)/2 is the theoretical floor, 2 leaves headroom for
// the mesher's gradient stencil.
const DefaultBand = 2.0

// Options tunes Discretize. The zero value selects the defaults.
type Options struct {
	// Band is the exactness band in cell units. Values below
	// sqrt(3)/2 are raised to the default.
	Band float32

	// Workers is the number of goroutines filling z-planes.
	// 0 means runtime.NumCPU(), 1 forces a serial fill.
	Workers int

	// MaxCells overrides DefaultMaxCells when positive.
	MaxCells int
}

func (o Options) band() float32 {
	if o.Band < float32(math.Sqrt(3)/2) {
		return DefaultBand
	}
	return o.Band
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.NumCPU()
	}
	return o.Workers
}

func (o Options) maxCells() int {
	if o.MaxCells > 0 {
		return o.MaxCells
	}
	return DefaultMaxCells
}

// Discretize fills a grid with samples of the program's field. Cells
// within the exactness band hold the exact sample at their center;
// cells farther out may hold a copy of a nearby sample, justified by
// the Lipschitz bound: a center with |d| > (n+band)*h proves the next
// n cells along +X cannot reach the surface.
//
// Z-planes are filled concurrently; each worker owns disjoint cells so
// no synchronization beyond the final join is needed. Cancellation is
// observed between planes.
func Discretize(ctx context.Context, p *sdf.Program, origin sdf.Vec3, cellSize float32, size Index3, opts Options) (*Grid, error) {
	cells := size[0] * size[1] * size[2]
	if cells <= 0 {
		return nil, &DiscretizeError{Cells: cells, MaxCells: opts.maxCells()}
	}
	if cells > opts.maxCells() {
		return nil, &DiscretizeError{Cells: cells, MaxCells: opts.maxCells()}
	}

	g := NewGrid(size, origin, cellSize)
	band := opts.band()
	workers := opts.workers()
	if workers > size[2] {
		workers = size[2]
	}

	if workers <= 1 {
		in := sdf.NewInterpreter(p)
		for z := 0; z < size[2]; z++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			g.fillPlane(in, z, band)
		}
		return g, nil
	}

	var wg sync.WaitGroup
	planes := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Evaluation state is per worker; interpreters are not
			// safe for concurrent use.
			in := sdf.NewInterpreter(p)
			for z := range planes {
				g.fillPlane(in, z, band)
			}
		}()
	}

	var cancelErr error
feed:
	for z := 0; z < size[2]; z++ {
		select {
		case planes <- z:
		case <-ctx.Done():
			cancelErr = ctx.Err()
			break feed
		}
	}
	close(planes)
	wg.Wait()
	if cancelErr != nil {
		return nil, cancelErr
	}
	return g, nil
}

// fillPlane fills one z-plane span by span. After an exact sample at
// x, the span copies it into the following cells while the Lipschitz
// bound keeps them provably outside the band.
func (g *Grid) fillPlane(in *sdf.Interpreter, z int, band float32) {
	w, h := g.size[0], g.size[1]
	for y := 0; y < h; y++ {
		row := g.data[g.FlatIndex(Index3{0, y, z}) : g.FlatIndex(Index3{0, y, z})+w]
		x := 0
		for x < w {
			s := in.Eval(g.WorldPos(Index3{x, y, z}))
			row[x] = s
			x++

			// Distance to the surface in cell units, minus one cell
			// per copy already made.
			bound := absf(s.Distance)/g.cellSize - 1
			for bound > band && x < w {
				row[x] = s
				x++
				bound--
			}
		}
	}
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
