package engine

import (
	"testing"

	"github.com/chazu/sculpt/pkg/graph"
	"github.com/chazu/sculpt/pkg/sdf"
)

// evalScene is a helper that evaluates source and fails on any error.
func evalScene(t *testing.T, source string) *Scene {
	t.Helper()
	scene, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if scene == nil {
		t.Fatal("nil scene without errors")
	}
	return scene
}

// compileScene compiles the scene and returns its program.
func compileScene(t *testing.T, scene *Scene) *sdf.Program {
	t.Helper()
	p, err := graph.Compile(scene.Graph, scene.Root)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return p
}

func TestEvaluateSphere(t *testing.T) {
	scene := evalScene(t, `(emit (sphere :radius 1))`)
	p := compileScene(t, scene)

	// The script result matches the Go builder byte for byte.
	g := graph.New()
	want, err := graph.Compile(g, g.Sphere(sdf.Vec3{}, 1))
	if err != nil {
		t.Fatalf("builder Compile: %v", err)
	}
	if p.Hash() != want.Hash() {
		t.Fatalf("script program differs from builder program:\nscript %v %v\nbuilder %v %v",
			p.Opcodes, p.Constants, want.Opcodes, want.Constants)
	}
}

func TestEvaluateKeywordsAndVectors(t *testing.T) {
	scene := evalScene(t, `(emit (sphere :radius 2 :center (vec3 1 0 0)))`)
	p := compileScene(t, scene)
	in := sdf.NewInterpreter(p)
	if d := in.Eval(sdf.V3(4, 0, 0)).Distance; d < 0.9 || d > 1.1 {
		t.Errorf("d = %g, want ~1", d)
	}
}

func TestEvaluateKebabCaseBuiltins(t *testing.T) {
	scene := evalScene(t, `
; kebab-case forms are the documented spelling
(emit (torus-sector :big-r 1.5 :small-r 0.3 :half-angle 2.0))`)
	p := compileScene(t, scene)
	if p.Opcodes[0] != sdf.OpTorusSector {
		t.Errorf("opcode %v, want TorusSector", p.Opcodes[0])
	}
}

func TestEvaluateCSGAndTransforms(t *testing.T) {
	scene := evalScene(t, `
(def left (translate (sphere :radius 1) (vec3 -1 0 0)))
(def right (translate (sphere :radius 1) (vec3 1 0 0)))
(emit (union-smooth 0.5 left right))`)
	p := compileScene(t, scene)
	in := sdf.NewInterpreter(p)
	// The blend dips below both parents between the spheres.
	if d := in.Eval(sdf.Vec3{}).Distance; d >= 0 {
		t.Errorf("blend midpoint d = %g, want negative", d)
	}
}

func TestEvaluateMaterial(t *testing.T) {
	scene := evalScene(t, `(emit (rgb (sphere :radius 1) 1 0 0))`)
	p := compileScene(t, scene)
	in := sdf.NewInterpreter(p)
	got := in.Eval(sdf.V3(0.5, 0, 0))
	if got.RGB != sdf.V3(1, 0, 0) {
		t.Errorf("rgb = %v, want red", got.RGB)
	}
	if got.Distance >= 0 {
		t.Errorf("d = %g, want negative", got.Distance)
	}
}

func TestEvaluateMultipleEmitsUnion(t *testing.T) {
	scene := evalScene(t, `
(emit (sphere :radius 0.5 :center (vec3 -2 0 0)))
(emit (sphere :radius 0.5 :center (vec3 2 0 0)))`)
	p := compileScene(t, scene)
	in := sdf.NewInterpreter(p)
	if d := in.Eval(sdf.V3(-2, 0, 0)).Distance; d >= 0 {
		t.Errorf("left emit missing, d = %g", d)
	}
	if d := in.Eval(sdf.V3(2, 0, 0)).Distance; d >= 0 {
		t.Errorf("right emit missing, d = %g", d)
	}
}

func TestEvaluateScaleRejectsZero(t *testing.T) {
	_, evalErrs, err := NewEngine().Evaluate(`(emit (scale (sphere :radius 1) 0))`)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("zero scale should report an eval error")
	}
}

func TestEvaluateParseError(t *testing.T) {
	scene, evalErrs, err := NewEngine().Evaluate(`(emit (sphere :radius 1`)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if scene != nil || len(evalErrs) == 0 {
		t.Fatalf("scene %v errs %v, want parse errors", scene, evalErrs)
	}
}

func TestEvaluateEmptySource(t *testing.T) {
	scene, evalErrs, err := NewEngine().Evaluate("  \n\t")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if scene != nil || len(evalErrs) == 0 {
		t.Fatal("empty script should report an error, not a scene")
	}
}

func TestEvaluateNoEmit(t *testing.T) {
	scene, evalErrs, err := NewEngine().Evaluate(`(sphere :radius 1)`)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if scene != nil || len(evalErrs) == 0 {
		t.Fatal("script without emit should report an error")
	}
}

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"keyword", `(sphere :radius 1)`, `(sphere "__kw_radius" 1)`},
		{"kebab keyword", `(:big-r 2)`, `("__kw_big_r" 2)`},
		{"kebab call", `(torus-sector)`, `(torus_sector)`},
		{"minus untouched", `(- 3 1)`, `(- 3 1)`},
		{"string untouched", `"a-b :c"`, `"a-b :c"`},
		{"comment", "; hi\n(f)", "// hi\n(f)"},
		{"assignment", `(x := 1)`, `(x := 1)`},
	}
	for _, tt := range tests {
		if got := preprocessSource(tt.in); got != tt.want {
			t.Errorf("%s: preprocess(%q) = %q, want %q", tt.name, tt.in, got, tt.want)
		}
	}
}
