package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"

	"github.com/chazu/sculpt/pkg/engine"
	"github.com/chazu/sculpt/pkg/graph"
	"github.com/chazu/sculpt/pkg/kernel"
	"github.com/chazu/sculpt/pkg/sdf"
	"github.com/chazu/sculpt/pkg/trace"
)

// demoScene is the default script rendered when no input is given.
const demoScene = `
; A donut with a bite taken out, resting on a blended blob.
(emit
  (union-smooth 0.3
    (rgb (torus-sector :big-r 1.2 :small-r 0.4 :half-angle 2.4) 0.9 0.6 0.2)
    (rgb (translate (sphere :radius 0.7) (vec3 0 -0.9 0)) 0.3 0.5 0.9)))
`

func main() {
	scriptPath := flag.String("script", "", "authoring script to evaluate (default: built-in demo)")
	objPath := flag.String("obj", "scene.obj", "output OBJ path")
	previewPath := flag.String("preview", "", "optional sphere-traced PNG preview path")
	flag.Parse()

	source := demoScene
	if *scriptPath != "" {
		data, err := os.ReadFile(*scriptPath)
		if err != nil {
			log.Fatalf("read script: %v", err)
		}
		source = string(data)
	}

	eng := engine.NewEngine()
	scene, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		log.Fatalf("evaluate: %v", err)
	}
	for _, e := range evalErrs {
		log.Printf("script error: %v", e)
	}
	if scene == nil {
		os.Exit(1)
	}

	prog, err := graph.Compile(scene.Graph, scene.Root)
	if err != nil {
		log.Fatalf("compile: %v", err)
	}
	progHash := prog.Hash()
	log.Printf("compiled %d opcodes, %d constants, hash %x",
		len(prog.Opcodes), len(prog.Constants), progHash[:8])

	m, err := kernel.New().Mesh(prog, kernel.DefaultMeshOptions())
	if err != nil {
		log.Fatalf("mesh: %v", err)
	}
	log.Printf("meshed %d vertices, %d triangles", m.VertexCount(), m.TriangleCount())

	if err := os.WriteFile(*objPath, []byte(m.ToOBJ()), 0o644); err != nil {
		log.Fatalf("write obj: %v", err)
	}
	log.Printf("wrote %s", *objPath)

	if *previewPath != "" {
		if err := writePreview(*previewPath, prog); err != nil {
			log.Fatalf("preview: %v", err)
		}
		log.Printf("wrote %s", *previewPath)
	}
}

// writePreview sphere-traces a head-on view of the program into a PNG
// with simple headlight shading.
func writePreview(path string, prog *sdf.Program) error {
	const size = 256
	box := sdf.Bounds(prog)
	if box.IsEmpty() || !box.IsFinite() {
		return fmt.Errorf("program bounds unusable for a preview")
	}
	center := box.Center()
	extent := box.Size().Length()
	eye := center.Add(sdf.V3(0, 0, extent*1.5))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for py := 0; py < size; py++ {
		for px := 0; px < size; px++ {
			// Map the pixel onto a view plane through the box center.
			u := (float32(px)/size - 0.5) * extent
			v := (0.5 - float32(py)/size) * extent
			target := center.Add(sdf.V3(u, v, 0))
			ray := trace.Ray{Origin: eye, Dir: target.Sub(eye).Normalize()}

			hit := trace.March(prog, ray, 0, extent*4, trace.Options{})
			if !hit.IsHit {
				img.Set(px, py, color.RGBA{A: 255})
				continue
			}
			// Headlight diffuse term.
			l := hit.Normal.Dot(ray.Dir.Neg())
			if l < 0.1 {
				l = 0.1
			}
			img.Set(px, py, color.RGBA{
				R: uint8(clamp01(hit.RGB.X*l) * 255),
				G: uint8(clamp01(hit.RGB.Y*l) * 255),
				B: uint8(clamp01(hit.RGB.Z*l) * 255),
				A: 255,
			})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
