package grid

import (
	"context"
	"errors"
	"testing"

	"github.com/chazu/sculpt/pkg/sdf"
)

// blobProgram is a union of spheres with a material, enough structure
// to exercise span skipping across sign changes.
func blobProgram() *sdf.Program {
	return &sdf.Program{
		Opcodes: []sdf.Opcode{
			sdf.OpSphere, sdf.OpMaterial,
			sdf.OpSphere,
			sdf.OpSphere,
			sdf.OpUnion, sdf.OpUnion,
			sdf.OpEnd,
		},
		Constants: []float32{
			0, 0, 0, 1,
			0.9, 0.4, 0.2,
			-1, 0, 0, 0.5,
			1, 0, 0, 0.5,
		},
	}
}

func discretizeOrDie(t *testing.T, p *sdf.Program, opts Options) *Grid {
	t.Helper()
	g, err := Discretize(context.Background(), p,
		sdf.V3(-2, -2, -2), 0.125, Index3{33, 33, 33}, opts)
	if err != nil {
		t.Fatalf("Discretize: %v", err)
	}
	return g
}

func TestDiscretizeBandCellsAreExact(t *testing.T) {
	p := blobProgram()
	g := discretizeOrDie(t, p, Options{Workers: 1})

	in := sdf.NewInterpreter(p)
	band := Options{}.band() * g.CellSize()
	size := g.Size()
	for z := 0; z < size[2]; z++ {
		for y := 0; y < size[1]; y++ {
			for x := 0; x < size[0]; x++ {
				idx := Index3{x, y, z}
				want := in.Eval(g.WorldPos(idx))
				got := g.At(idx)
				if absf(want.Distance) <= band {
					if got != want {
						t.Fatalf("band cell %v: got %+v, want exact %+v", idx, got, want)
					}
				}
			}
		}
	}
}

func TestDiscretizeCopiesStayConservative(t *testing.T) {
	// Copied cells may be approximate but must never claim to be near
	// the surface when they are not: |stored| + cellDistance bounds
	// the true distance by Lipschitz.
	p := blobProgram()
	g := discretizeOrDie(t, p, Options{Workers: 1})

	in := sdf.NewInterpreter(p)
	size := g.Size()
	for z := 0; z < size[2]; z += 3 {
		for y := 0; y < size[1]; y += 3 {
			for x := 0; x < size[0]; x++ {
				idx := Index3{x, y, z}
				got := g.At(idx).Distance
				want := in.Eval(g.WorldPos(idx)).Distance
				// A copy from up to w cells back can differ by at
				// most that walk in world units.
				if absf(got-want) > float32(size[0])*g.CellSize()+1e-4 {
					t.Fatalf("cell %v: stored %g wildly off true %g", idx, got, want)
				}
				if got < 0 != (want < 0) && absf(want) > (Options{}).band()*g.CellSize() {
					t.Fatalf("cell %v: sign flipped outside band (stored %g, true %g)", idx, got, want)
				}
			}
		}
	}
}

func TestDiscretizeParallelMatchesSerial(t *testing.T) {
	p := blobProgram()
	serial := discretizeOrDie(t, p, Options{Workers: 1})
	parallel := discretizeOrDie(t, p, Options{Workers: 8})

	if serial.Size() != parallel.Size() {
		t.Fatalf("size mismatch")
	}
	a, b := serial.Data(), parallel.Data()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("cell %d: serial %+v != parallel %+v", i, a[i], b[i])
		}
	}
}

func TestDiscretizeCellCeiling(t *testing.T) {
	p := blobProgram()
	_, err := Discretize(context.Background(), p,
		sdf.Vec3{}, 0.1, Index3{100, 100, 100}, Options{MaxCells: 1000})
	var de *DiscretizeError
	if !errors.As(err, &de) {
		t.Fatalf("error %v, want DiscretizeError", err)
	}
}

func TestDiscretizeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Discretize(ctx, blobProgram(),
		sdf.V3(-2, -2, -2), 0.125, Index3{33, 33, 33}, Options{Workers: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error %v, want context.Canceled", err)
	}
}

func TestGridIndexing(t *testing.T) {
	g := NewGrid(Index3{4, 5, 6}, sdf.V3(1, 2, 3), 0.5)
	if got := g.FlatIndex(Index3{1, 2, 3}); got != 1+4*(2+5*3) {
		t.Errorf("FlatIndex = %d", got)
	}
	p := g.WorldPos(Index3{2, 0, 4})
	want := sdf.V3(2, 2, 5)
	if p != want {
		t.Errorf("WorldPos = %v, want %v", p, want)
	}
	s := sdf.Sample{RGB: sdf.V3(1, 0, 0), Distance: 2}
	g.Set(Index3{3, 4, 5}, s)
	if g.At(Index3{3, 4, 5}) != s {
		t.Error("Set/At mismatch")
	}
}
