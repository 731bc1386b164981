package sdfx_test

import (
	"testing"

	"github.com/chazu/sculpt/pkg/graph"
	"github.com/chazu/sculpt/pkg/kernel"
	kernelsdfx "github.com/chazu/sculpt/pkg/kernel/sdfx"
	coresdf "github.com/chazu/sculpt/pkg/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func sphereProgram(t *testing.T) *coresdf.Program {
	t.Helper()
	g := graph.New()
	p, err := graph.Compile(g, g.Sphere(coresdf.Vec3{}, 1))
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return p
}

func TestWrapEvaluate(t *testing.T) {
	s := kernelsdfx.Wrap(sphereProgram(t))

	tests := []struct {
		p    v3.Vec
		want float64
	}{
		{v3.Vec{X: 2}, 1},
		{v3.Vec{}, -1},
		{v3.Vec{Y: 1}, 0},
	}
	for _, tt := range tests {
		if got := s.Evaluate(tt.p); got < tt.want-1e-5 || got > tt.want+1e-5 {
			t.Errorf("Evaluate(%v) = %g, want %g", tt.p, got, tt.want)
		}
	}

	bb := s.BoundingBox()
	if bb.Min.X > -1 || bb.Max.X < 1 {
		t.Errorf("bounding box %+v does not cover the sphere", bb)
	}
}

func TestSdfxMesherSphere(t *testing.T) {
	if testing.Short() {
		t.Skip("sdfx meshing is slow")
	}
	m, err := kernelsdfx.New().Mesh(sphereProgram(t), kernel.LowMeshOptions())
	if err != nil {
		t.Fatalf("Mesh: %v", err)
	}
	if m.IsEmpty() {
		t.Fatal("empty mesh")
	}
	for i, pos := range m.Positions {
		r := pos.Length()
		if r < 0.8 || r > 1.2 {
			t.Fatalf("vertex %d at radius %g, want near 1", i, r)
		}
	}
}
