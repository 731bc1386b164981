package kernel_test

import (
	"errors"
	"testing"

	"github.com/chazu/sculpt/pkg/graph"
	"github.com/chazu/sculpt/pkg/kernel"
	"github.com/chazu/sculpt/pkg/sdf"
)

func sphereProgram(t *testing.T, radius float32) *sdf.Program {
	t.Helper()
	g := graph.New()
	p, err := graph.Compile(g, g.Sphere(sdf.Vec3{}, radius))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return p
}

func TestNativeMeshSphere(t *testing.T) {
	p := sphereProgram(t, 1)
	m, err := kernel.New().Mesh(p, kernel.DefaultMeshOptions())
	if err != nil {
		t.Fatalf("Mesh: %v", err)
	}
	if m.IsEmpty() {
		t.Fatal("empty mesh")
	}
	for i, pos := range m.Positions {
		r := pos.Length()
		if r < 0.85 || r > 1.15 {
			t.Fatalf("vertex %d at radius %g, want near 1", i, r)
		}
	}
}

func TestNativeMeshUnboundedProgram(t *testing.T) {
	g := graph.New()
	p, err := graph.Compile(g, g.Plane(sdf.Vec4{Y: 1}))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, err := kernel.New().Mesh(p, kernel.DefaultMeshOptions()); !errors.Is(err, kernel.ErrUnbounded) {
		t.Fatalf("error %v, want ErrUnbounded", err)
	}
}

func TestLayoutPadsAndScales(t *testing.T) {
	box := sdf.AabbFromMinMax(sdf.V3(-1, -1, -1), sdf.V3(1, 1, 1))
	l := kernel.Layout(box, kernel.DefaultMeshOptions())
	// The layout box is padded outward.
	if !(l.Box.Min.X < -1 && l.Box.Max.X > 1) {
		t.Errorf("layout box %+v should pad the input", l.Box)
	}
	for i, d := range l.Size {
		if d < 8 || d > 200 {
			t.Errorf("axis %d resolution %d out of range", i, d)
		}
	}
	if l.CellSize <= 0 {
		t.Errorf("cell size %g", l.CellSize)
	}
}

func TestLayoutMinimumOverrulesMaximum(t *testing.T) {
	// A needle box: the thin axes must still get MinResolution cells
	// even if the long axis then exceeds MaxResolution.
	box := sdf.AabbFromMinMax(sdf.V3(0, 0, 0), sdf.V3(100, 0.5, 0.5))
	opts := kernel.MeshOptions{MeanResolution: 32, MaxResolution: 64, MinResolution: 8}
	l := kernel.Layout(box, opts)
	if l.Size[1] < 8 || l.Size[2] < 8 {
		t.Errorf("thin axes %v, want at least the minimum resolution", l.Size)
	}
}

func TestNativeMeshMatchesMaterial(t *testing.T) {
	g := graph.New()
	root := g.Material(g.Sphere(sdf.Vec3{}, 1), sdf.V3(0, 1, 0))
	p, err := graph.Compile(g, root)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	m, err := kernel.New().Mesh(p, kernel.LowMeshOptions())
	if err != nil {
		t.Fatalf("Mesh: %v", err)
	}
	for i, c := range m.Colors {
		if c != sdf.V3(0, 1, 0) {
			t.Fatalf("vertex %d color %v, want green", i, c)
		}
	}
}
