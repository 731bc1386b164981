package sdf

import (
	"math"
	"math/rand"
	"testing"
)

// prog is a test helper for hand-assembled programs.
func prog(ops []Opcode, consts []float32) *Program {
	return &Program{Opcodes: ops, Constants: consts}
}

func unitSphere() *Program {
	return prog(
		[]Opcode{OpSphere, OpEnd},
		[]float32{0, 0, 0, 1},
	)
}

func TestEvalUnitSphere(t *testing.T) {
	in := NewInterpreter(unitSphere())

	got := in.Eval(V3(2, 0, 0))
	if !almostEqual(got.Distance, 1, 1e-6) {
		t.Errorf("outside: d = %g, want 1", got.Distance)
	}
	if got.RGB != V3(1, 1, 1) {
		t.Errorf("default rgb = %v, want white", got.RGB)
	}

	got = in.Eval(Vec3{})
	if !almostEqual(got.Distance, -1, 1e-6) {
		t.Errorf("center: d = %g, want -1", got.Distance)
	}
}

func TestEvalTranslatedSphere(t *testing.T) {
	// Sphere translated by (1,0,0): the stored constant is the
	// negated translation.
	p := prog(
		[]Opcode{OpPushTranslation, OpSphere, OpPopTransform, OpEnd},
		[]float32{-1, 0, 0, 0, 0, 0, 1},
	)
	in := NewInterpreter(p)
	if got := in.Eval(V3(3, 0, 0)).Distance; !almostEqual(got, 1, 1e-6) {
		t.Errorf("d = %g, want 1", got)
	}
	if got := in.Eval(V3(1, 0, 0)).Distance; !almostEqual(got, -1, 1e-6) {
		t.Errorf("at new center: d = %g, want -1", got)
	}
}

func TestEvalUnion(t *testing.T) {
	p := prog(
		[]Opcode{OpSphere, OpSphere, OpUnion, OpEnd},
		[]float32{
			-1, 0, 0, 1,
			1, 0, 0, 1,
		},
	)
	in := NewInterpreter(p)
	if got := in.Eval(Vec3{}).Distance; !almostEqual(got, 0, 1e-6) {
		t.Errorf("midpoint on both surfaces: d = %g, want 0", got)
	}
	if got := in.Eval(V3(3, 0, 0)).Distance; !almostEqual(got, 1, 1e-6) {
		t.Errorf("outside: d = %g, want 1", got)
	}
	if got := in.Eval(V3(1, 0, 0)).Distance; !almostEqual(got, -1, 1e-6) {
		t.Errorf("inside right sphere: d = %g, want -1", got)
	}
}

func TestEvalSmoothUnionDipsBelowParents(t *testing.T) {
	sharp := prog(
		[]Opcode{OpSphere, OpSphere, OpUnion, OpEnd},
		[]float32{-1, 0, 0, 1, 1, 0, 0, 1},
	)
	smooth := prog(
		[]Opcode{OpSphere, OpSphere, OpUnionSmooth, OpEnd},
		[]float32{-1, 0, 0, 1, 1, 0, 0, 1, 0.5},
	)
	ds := NewInterpreter(sharp).Eval(Vec3{}).Distance
	dm := NewInterpreter(smooth).Eval(Vec3{}).Distance
	if dm >= ds {
		t.Errorf("smooth union %g should dip below sharp union %g", dm, ds)
	}
}

func TestEvalMaterial(t *testing.T) {
	p := prog(
		[]Opcode{OpSphere, OpMaterial, OpEnd},
		[]float32{0, 0, 0, 1, 1, 0, 0},
	)
	in := NewInterpreter(p)
	got := in.Eval(V3(0.5, 0, 0))
	if got.RGB != V3(1, 0, 0) {
		t.Errorf("rgb = %v, want red", got.RGB)
	}
	if !almostEqual(got.Distance, -0.5, 1e-6) {
		t.Errorf("d = %g, want -0.5", got.Distance)
	}
}

func TestMaterialDoesNotCrossCombinator(t *testing.T) {
	// Red sphere on the left, uncolored on the right: the winner's
	// color survives the union.
	p := prog(
		[]Opcode{OpSphere, OpMaterial, OpSphere, OpUnion, OpEnd},
		[]float32{
			-1, 0, 0, 1,
			1, 0, 0,
			1, 0, 0, 1,
		},
	)
	in := NewInterpreter(p)
	if got := in.Eval(V3(-1, 0, 0)); got.RGB != V3(1, 0, 0) {
		t.Errorf("left rgb = %v, want red", got.RGB)
	}
	if got := in.Eval(V3(1, 0, 0)); got.RGB != V3(1, 1, 1) {
		t.Errorf("right rgb = %v, want white", got.RGB)
	}
}

func TestEvalScalePair(t *testing.T) {
	// PushScale(1/s) sphere PopScale(s) is the unit sphere scaled to
	// radius s.
	for _, s := range []float32{0.5, 2, 10} {
		p := prog(
			[]Opcode{OpPushScale, OpSphere, OpPopScale, OpEnd},
			[]float32{1 / s, 0, 0, 0, 1, s},
		)
		in := NewInterpreter(p)
		for _, x := range []float32{0, 0.25, 1, 3, 20} {
			want := x - s
			if got := in.Eval(V3(x, 0, 0)).Distance; !almostEqual(got, want, 1e-4*s) {
				t.Errorf("s=%g at x=%g: d = %g, want %g", s, x, got, want)
			}
		}
	}
}

func TestEvalRotation(t *testing.T) {
	// Cone rotated a quarter turn around Z: its apex moves from +Y to
	// -X. The stored quaternion is the conjugate.
	q := QuatFromAxisAngle(V3(0, 0, 1), float32(math.Pi/2)).Conjugate()
	p := prog(
		[]Opcode{OpPushRotation, OpCone, OpPopTransform, OpEnd},
		[]float32{q.X, q.Y, q.Z, q.W, 1, 2},
	)
	plain := prog([]Opcode{OpCone, OpEnd}, []float32{1, 2})

	in := NewInterpreter(p)
	ref := NewInterpreter(plain)
	// Points related by the forward rotation must agree.
	pts := []Vec3{V3(0, 3, 0), V3(0.5, 0.5, 0), V3(1, 0, 1), V3(-2, 1, 0.5)}
	rot := QuatFromAxisAngle(V3(0, 0, 1), float32(math.Pi/2))
	for _, pt := range pts {
		got := in.Eval(rot.Rotate(pt)).Distance
		want := ref.Eval(pt).Distance
		if !almostEqual(got, want, 1e-5) {
			t.Errorf("at %v: rotated %g != reference %g", pt, got, want)
		}
	}
}

func TestTransformInvariance(t *testing.T) {
	// Translating by t then evaluating at p equals evaluating the
	// untranslated shape at p-t.
	tr := V3(0.7, -1.3, 2.1)
	translated := prog(
		[]Opcode{OpPushTranslation, OpTorus, OpPopTransform, OpEnd},
		[]float32{-tr.X, -tr.Y, -tr.Z, 1.5, 0.4},
	)
	plain := prog([]Opcode{OpTorus, OpEnd}, []float32{1.5, 0.4})

	a := NewInterpreter(translated)
	b := NewInterpreter(plain)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		p := V3(rng.Float32()*8-4, rng.Float32()*8-4, rng.Float32()*8-4)
		got := a.Eval(p).Distance
		want := b.Eval(p.Sub(tr)).Distance
		if !almostEqual(got, want, 1e-5) {
			t.Fatalf("at %v: translated %g != shifted %g", p, got, want)
		}
	}
}

func TestUnionIdempotence(t *testing.T) {
	singleOps := []Opcode{OpSphere, OpEnd}
	doubled := prog(
		[]Opcode{OpSphere, OpSphere, OpUnion, OpEnd},
		[]float32{0.3, 0, 0, 1.2, 0.3, 0, 0, 1.2},
	)
	single := prog(singleOps, []float32{0.3, 0, 0, 1.2})

	a := NewInterpreter(doubled)
	b := NewInterpreter(single)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		p := V3(rng.Float32()*6-3, rng.Float32()*6-3, rng.Float32()*6-3)
		if got, want := a.Eval(p).Distance, b.Eval(p).Distance; got != want {
			t.Fatalf("at %v: A union A = %g, A = %g", p, got, want)
		}
	}
}

// complementProgram builds Subtract(universe, shape...) style programs
// for the De Morgan check: universe is a large rounded box.
func TestDeMorgan(t *testing.T) {
	universe := []float32{8, 8, 8, 0} // rounded box constants
	sphereA := []float32{-1, 0, 0, 1.5}
	sphereB := []float32{0.5, 0.5, 0, 1}

	// not(A union B) = universe minus (A union B)
	lhs := prog(
		[]Opcode{OpRoundedBox, OpSphere, OpSphere, OpUnion, OpSubtract, OpEnd},
		append(append(append([]float32{}, universe...), sphereA...), sphereB...),
	)
	// (not A) intersect (not B)
	rhsConsts := append(append([]float32{}, universe...), sphereA...)
	rhsConsts = append(rhsConsts, universe...)
	rhsConsts = append(rhsConsts, sphereB...)
	rhs := prog(
		[]Opcode{
			OpRoundedBox, OpSphere, OpSubtract,
			OpRoundedBox, OpSphere, OpSubtract,
			OpIntersect, OpEnd,
		},
		rhsConsts,
	)

	a := NewInterpreter(lhs)
	b := NewInterpreter(rhs)
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 500; i++ {
		p := V3(rng.Float32()*10-5, rng.Float32()*10-5, rng.Float32()*10-5)
		got, want := a.Eval(p).Distance, b.Eval(p).Distance
		if !almostEqual(got, want, 1e-6) {
			t.Fatalf("at %v: not(A|B) = %g, (!A)&(!B) = %g", p, got, want)
		}
	}
}

func TestLipschitz(t *testing.T) {
	// A program exercising every combinator stays 1-Lipschitz.
	p := prog(
		[]Opcode{
			OpSphere,
			OpTorus,
			OpUnionSmooth,
			OpRoundedBox,
			OpSubtractSmooth,
			OpCapsule,
			OpUnion,
			OpEnd,
		},
		[]float32{
			0, 0, 0, 1.5,
			1.2, 0.4,
			0.3,
			0.8, 0.8, 0.8, 0.1,
			0.25,
			-2, 0, 0, 2, 0, 0, 0.5,
		},
	)
	in := NewInterpreter(p)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		a := V3(rng.Float32()*8-4, rng.Float32()*8-4, rng.Float32()*8-4)
		b := V3(rng.Float32()*8-4, rng.Float32()*8-4, rng.Float32()*8-4)
		da := in.Eval(a).Distance
		db := in.Eval(b).Distance
		if abs32(da-db) > a.Sub(b).Length()+1e-5 {
			t.Fatalf("Lipschitz violated: |%g - %g| > |%v - %v|", da, db, a, b)
		}
	}
}

func TestSignConsistencyConvexPrimitives(t *testing.T) {
	in := NewInterpreter(unitSphere())
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		p := V3(rng.Float32()*4-2, rng.Float32()*4-2, rng.Float32()*4-2)
		r := p.Length()
		d := in.Eval(p).Distance
		switch {
		case r < 1-1e-5 && d >= 0:
			t.Fatalf("inside point %v (r=%g) has d=%g", p, r, d)
		case r > 1+1e-5 && d <= 0:
			t.Fatalf("outside point %v (r=%g) has d=%g", p, r, d)
		}
	}
}

func TestDistanceInterpreterMatchesFull(t *testing.T) {
	// Every opcode appears at least once.
	tr := V3(0.2, 0.1, -0.3)
	q := QuatFromAxisAngle(V3(0, 1, 0), 0.8).Conjugate()
	p := prog(
		[]Opcode{
			OpPlane,
			OpSphere,
			OpMaterial,
			OpUnionSmooth,
			OpPushTranslation,
			OpCapsule,
			OpTaperedCapsule,
			OpSubtractSmooth,
			OpPopTransform,
			OpIntersectSmooth,
			OpPushRotation,
			OpRoundedBox,
			OpBiconvexLens,
			OpSubtract,
			OpPopTransform,
			OpPushScale,
			OpRoundedCylinder,
			OpTorus,
			OpIntersect,
			OpTorusSector,
			OpCone,
			OpUnion,
			OpUnion,
			OpPopScale,
			OpUnion,
			OpUnion,
			OpEnd,
		},
		[]float32{
			0, 1, 0, 2, // plane
			0, 0, 0, 1.5, // sphere
			0.9, 0.2, 0.1, // material
			0.3,                          // union smooth
			-tr.X, -tr.Y, -tr.Z,          // push translation
			-1, 0, 0, 1, 0, 0, 0.4,       // capsule
			0, 0, 0, 0.8, 0, 2, 0, 0.3,   // tapered capsule
			0.25,                         // subtract smooth
			0.2,                          // intersect smooth
			q.X, q.Y, q.Z, q.W,           // push rotation
			0.7, 0.7, 0.7, 0.1,           // rounded box
			0.4, 0.3, 1.2,                // lens
			0.5,                          // push scale (1/2)
			0.9, 0.6, 0.1,                // rounded cylinder
			1.1, 0.3,                     // torus
			1.4, 0.35, 0.84147, 0.5403,   // torus sector
			0.8, 1.6,                     // cone
			2,                            // pop scale
		},
	)
	if err := p.Validate(); err != nil {
		t.Fatalf("test program invalid: %v", err)
	}

	full := NewInterpreter(p)
	dist := NewDistanceInterpreter(p)
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		pt := V3(rng.Float32()*6-3, rng.Float32()*6-3, rng.Float32()*6-3)
		a := full.Eval(pt).Distance
		b := dist.Eval(pt)
		if a != b {
			t.Fatalf("at %v: full %g != distance-only %g", pt, a, b)
		}
	}
}
