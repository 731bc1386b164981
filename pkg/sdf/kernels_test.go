package sdf

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float32) bool {
	return abs32(a-b) <= tol
}

func TestSpherePrimitive(t *testing.T) {
	tests := []struct {
		name   string
		pos    Vec3
		center Vec3
		radius float32
		want   float32
	}{
		{"outside", V3(2, 0, 0), Vec3{}, 1, 1},
		{"center", Vec3{}, Vec3{}, 1, -1},
		{"surface", V3(0, 1, 0), Vec3{}, 1, 0},
		{"offcenter", V3(4, 0, 0), V3(1, 0, 0), 2, 1},
	}
	for _, tt := range tests {
		if got := sdSphere(tt.pos, tt.center, tt.radius); !almostEqual(got, tt.want, 1e-6) {
			t.Errorf("%s: sdSphere = %g, want %g", tt.name, got, tt.want)
		}
	}
}

func TestPlanePrimitive(t *testing.T) {
	// y=0 plane, normal up.
	p := Vec4{0, 1, 0, 0}
	if got := sdPlane(V3(3, 2, -1), p); !almostEqual(got, 2, 1e-6) {
		t.Errorf("above plane: got %g, want 2", got)
	}
	if got := sdPlane(V3(0, -0.5, 0), p); !almostEqual(got, -0.5, 1e-6) {
		t.Errorf("below plane: got %g, want -0.5", got)
	}
}

func TestRoundedBoxPrimitive(t *testing.T) {
	half := V3(1, 1, 1)
	// Flat face: distance along an axis ignores rounding.
	if got := sdRoundedBox(V3(2, 0, 0), half, 0.2); !almostEqual(got, 1, 1e-6) {
		t.Errorf("face: got %g, want 1", got)
	}
	if got := sdRoundedBox(V3(0, 0, 0), half, 0.2); got >= 0 {
		t.Errorf("center: got %g, want negative", got)
	}
	// The sharp corner was sandpapered off, so the old corner point is
	// outside by r*(sqrt(3)-1).
	want := 0.2 * (float32(math.Sqrt(3)) - 1)
	if got := sdRoundedBox(V3(1, 1, 1), half, 0.2); !almostEqual(got, want, 1e-5) {
		t.Errorf("corner: got %g, want %g", got, want)
	}
}

func TestTorusPrimitive(t *testing.T) {
	// Ring R=2 r=0.5 in the XZ plane.
	if got := sdTorus(V3(2, 0, 0), 2, 0.5); !almostEqual(got, -0.5, 1e-6) {
		t.Errorf("ring center: got %g, want -0.5", got)
	}
	if got := sdTorus(V3(3, 0, 0), 2, 0.5); !almostEqual(got, 0.5, 1e-6) {
		t.Errorf("outside ring: got %g, want 0.5", got)
	}
	if got := sdTorus(Vec3{}, 2, 0.5); !almostEqual(got, 1.5, 1e-6) {
		t.Errorf("hole center: got %g, want 1.5", got)
	}
}

func TestTorusSectorFullAngleMatchesTorus(t *testing.T) {
	// half angle pi keeps the whole ring.
	s, c := float32(math.Sin(math.Pi)), float32(math.Cos(math.Pi))
	pts := []Vec3{V3(2, 0, 0), V3(0, 0.3, -2), V3(1, 1, 1), V3(-2.4, 0, 0.2)}
	for _, p := range pts {
		full := sdTorus(p, 2, 0.5)
		sector := sdTorusSector(p, 2, 0.5, s, c)
		if !almostEqual(full, sector, 1e-5) {
			t.Errorf("at %v: torus %g != full sector %g", p, full, sector)
		}
	}
}

func TestCapsulePrimitive(t *testing.T) {
	p0, p1 := V3(-1, 0, 0), V3(1, 0, 0)
	tests := []struct {
		pos  Vec3
		want float32
	}{
		{V3(0, 1, 0), 0.5},       // beside the shaft
		{V3(3, 0, 0), 1.5},       // past an endpoint
		{V3(0, 0, 0), -0.5},      // on the axis
		{V3(-1, -0.5, 0), 0},     // on the cap surface
	}
	for _, tt := range tests {
		if got := sdCapsule(tt.pos, p0, p1, 0.5); !almostEqual(got, tt.want, 1e-6) {
			t.Errorf("at %v: got %g, want %g", tt.pos, got, tt.want)
		}
	}
}

func TestRoundedCylinderPrimitive(t *testing.T) {
	// r=1, half height 1, rounding 0.2.
	if got := sdRoundedCylinder(V3(0, 2, 0), 1, 1, 0.2); !almostEqual(got, 1, 1e-6) {
		t.Errorf("above cap: got %g, want 1", got)
	}
	if got := sdRoundedCylinder(V3(2, 0, 0), 1, 1, 0.2); !almostEqual(got, 1, 1e-6) {
		t.Errorf("beside wall: got %g, want 1", got)
	}
	if got := sdRoundedCylinder(Vec3{}, 1, 1, 0.2); got >= 0 {
		t.Errorf("center: got %g, want negative", got)
	}
}

func TestTaperedCapsuleDegeneratesToCapsule(t *testing.T) {
	// Equal radii make it a plain capsule.
	p0, p1 := V3(0, -1, 0), V3(0, 1, 0)
	pts := []Vec3{V3(0.9, 0, 0), V3(0, 2, 0), V3(0, 0, 0), V3(1, 1, 1)}
	for _, p := range pts {
		tc := sdTaperedCapsule(p, p0, p1, 0.5, 0.5)
		cap := sdCapsule(p, p0, p1, 0.5)
		if !almostEqual(tc, cap, 1e-5) {
			t.Errorf("at %v: tapered %g != capsule %g", p, tc, cap)
		}
	}
}

func TestTaperedCapsuleCaps(t *testing.T) {
	p0, p1 := V3(0, 0, 0), V3(0, 2, 0)
	// Below the fat cap the nearest surface is the r0 sphere.
	if got := sdTaperedCapsule(V3(0, -2, 0), p0, p1, 1, 0.25); !almostEqual(got, 1, 1e-5) {
		t.Errorf("below: got %g, want 1", got)
	}
	// Above the thin cap the nearest surface is the r1 sphere.
	if got := sdTaperedCapsule(V3(0, 3, 0), p0, p1, 1, 0.25); !almostEqual(got, 0.75, 1e-5) {
		t.Errorf("above: got %g, want 0.75", got)
	}
}

func TestConePrimitive(t *testing.T) {
	// r=1, h=2.
	if got := sdCone(V3(0, 3, 0), 1, 2); !almostEqual(got, 1, 1e-5) {
		t.Errorf("above apex: got %g, want 1", got)
	}
	if got := sdCone(V3(0, 0.5, 0), 1, 2); got >= 0 {
		t.Errorf("inside: got %g, want negative", got)
	}
	if got := sdCone(V3(3, 0, 0), 1, 2); got <= 0 {
		t.Errorf("beside base: got %g, want positive", got)
	}
}

func TestBiconvexLens(t *testing.T) {
	// Symmetric lens: chord 2, sagittas 0.5. Sphere radius = (1+0.25)/1 = 1.25.
	inside := sdBiconvexLens(Vec3{}, 0.5, 0.5, 2)
	if !almostEqual(inside, -0.5, 1e-5) {
		t.Errorf("center: got %g, want -0.5", inside)
	}
	if got := sdBiconvexLens(V3(0, 0.5, 0), 0.5, 0.5, 2); !almostEqual(got, 0, 1e-5) {
		t.Errorf("apex: got %g, want 0", got)
	}
	if got := sdBiconvexLens(V3(0, 2, 0), 0.5, 0.5, 2); got <= 0 {
		t.Errorf("above: got %g, want positive", got)
	}
}

func TestUnionKeepsWinnerColor(t *testing.T) {
	red := Sample{RGB: V3(1, 0, 0), Distance: 0.5}
	blue := Sample{RGB: V3(0, 0, 1), Distance: 1.5}
	got := sdOpUnion(red, blue)
	if got.Distance != 0.5 || got.RGB != V3(1, 0, 0) {
		t.Errorf("union = %+v, want red at 0.5", got)
	}
	got = sdOpIntersect(red, blue)
	if got.Distance != 1.5 || got.RGB != V3(0, 0, 1) {
		t.Errorf("intersect = %+v, want blue at 1.5", got)
	}
}

func TestSubtractKeepsCutterColor(t *testing.T) {
	cutter := Sample{RGB: V3(1, 0, 0), Distance: -1} // deep inside the cutter
	base := Sample{RGB: V3(0, 0, 1), Distance: -0.25}
	got := sdOpSubtract(cutter, base)
	if got.Distance != 1 || got.RGB != V3(1, 0, 0) {
		t.Errorf("subtract = %+v, want cutter color at +1", got)
	}

	// Far from the cutter the base wins unchanged.
	farCutter := Sample{RGB: V3(1, 0, 0), Distance: 3}
	got = sdOpSubtract(farCutter, base)
	if got != base {
		t.Errorf("subtract = %+v, want base %+v", got, base)
	}
}

func TestSmoothUnionDipsBelowParents(t *testing.T) {
	a := Sample{RGB: V3(1, 0, 0), Distance: 0}
	b := Sample{RGB: V3(0, 0, 1), Distance: 0}
	got := sdOpUnionSmooth(a, b, 0.5)
	// h = 0.5, blend dips by size*h*(1-h).
	if !almostEqual(got.Distance, -0.125, 1e-6) {
		t.Errorf("smooth union distance = %g, want -0.125", got.Distance)
	}
	if !almostEqual(got.RGB.X, 0.5, 1e-6) || !almostEqual(got.RGB.Z, 0.5, 1e-6) {
		t.Errorf("smooth union rgb = %v, want even mix", got.RGB)
	}
}

func TestSmoothCombinatorsMatchSharpOutsideBand(t *testing.T) {
	// Far from the blend band the smooth ops reduce to the sharp ones.
	a := Sample{RGB: V3(1, 0, 0), Distance: 5}
	b := Sample{RGB: V3(0, 0, 1), Distance: 0.25}
	if got := sdOpUnionSmooth(a, b, 0.1); !almostEqual(got.Distance, 0.25, 1e-6) {
		t.Errorf("smooth union = %g, want 0.25", got.Distance)
	}
	if got := sdOpIntersectSmooth(a, b, 0.1); !almostEqual(got.Distance, 5, 1e-6) {
		t.Errorf("smooth intersect = %g, want 5", got.Distance)
	}
	if got := sdOpSubtractSmooth(a, b, 0.1); !almostEqual(got.Distance, 0.25, 1e-6) {
		t.Errorf("smooth subtract = %g, want 0.25", got.Distance)
	}
}

func TestDistanceVariantsAgreeWithSampleVariants(t *testing.T) {
	pairs := []struct{ d1, d2 float32 }{
		{0.5, 1.5}, {-1, 0.2}, {0, 0}, {-0.3, -0.7}, {2, -2},
	}
	for _, p := range pairs {
		s1 := Sample{RGB: defaultRGB, Distance: p.d1}
		s2 := Sample{RGB: defaultRGB, Distance: p.d2}
		checks := []struct {
			name string
			a    float32
			b    float32
		}{
			{"union", sdOpUnion(s1, s2).Distance, sdOpUnionDist(p.d1, p.d2)},
			{"subtract", sdOpSubtract(s1, s2).Distance, sdOpSubtractDist(p.d1, p.d2)},
			{"intersect", sdOpIntersect(s1, s2).Distance, sdOpIntersectDist(p.d1, p.d2)},
			{"unionSmooth", sdOpUnionSmooth(s1, s2, 0.4).Distance, sdOpUnionSmoothDist(p.d1, p.d2, 0.4)},
			{"subtractSmooth", sdOpSubtractSmooth(s1, s2, 0.4).Distance, sdOpSubtractSmoothDist(p.d1, p.d2, 0.4)},
			{"intersectSmooth", sdOpIntersectSmooth(s1, s2, 0.4).Distance, sdOpIntersectSmoothDist(p.d1, p.d2, 0.4)},
		}
		for _, c := range checks {
			if !almostEqual(c.a, c.b, 1e-6) {
				t.Errorf("%s(%g, %g): sample %g != dist %g", c.name, p.d1, p.d2, c.a, c.b)
			}
		}
	}
}
