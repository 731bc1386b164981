package sdf

// StackDepth bounds both the sample stack and the transform stack.
// Programs requiring deeper nesting are rejected at build time; the
// depth is fixed so evaluation state stays flat and predictable.
const StackDepth = 64

// creader is the interpreter's unchecked constant cursor. The builder
// guarantees the pool covers the opcode sequence, so no bounds checks
// happen on the hot path.
type creader struct {
	c []float32
	i int
}

func (r *creader) f32() float32 {
	v := r.c[r.i]
	r.i++
	return v
}

func (r *creader) vec3() Vec3 {
	v := Vec3{r.c[r.i], r.c[r.i+1], r.c[r.i+2]}
	r.i += 3
	return v
}

func (r *creader) vec4() Vec4 {
	v := Vec4{r.c[r.i], r.c[r.i+1], r.c[r.i+2], r.c[r.i+3]}
	r.i += 4
	return v
}

func (r *creader) quat() Quat {
	q := Quat{r.c[r.i], r.c[r.i+1], r.c[r.i+2], r.c[r.i+3]}
	r.i += 4
	return q
}

// Interpreter evaluates a program to a full (rgb, distance) sample.
// The stacks live in the struct so repeated Eval calls do not
// allocate. An Interpreter is not safe for concurrent use; create one
// per goroutine.
type Interpreter struct {
	prog      *Program
	stack     [StackDepth]Sample
	positions [StackDepth]Vec3
}

// NewInterpreter returns an interpreter for the given program. The
// program must have passed Validate; evaluation performs no
// well-formedness checks.
func NewInterpreter(p *Program) *Interpreter {
	return &Interpreter{prog: p}
}

// Eval returns the sample of the field at pos.
func (in *Interpreter) Eval(pos Vec3) Sample {
	ops := in.prog.Opcodes
	cr := creader{c: in.prog.Constants}
	sp, tp := 0, 0
	cur := pos

	for pc := 0; ; pc++ {
		switch ops[pc] {
		case OpPlane:
			in.stack[sp] = newSample(sdPlane(cur, cr.vec4()))
			sp++
		case OpSphere:
			in.stack[sp] = newSample(sdSphere(cur, cr.vec3(), cr.f32()))
			sp++
		case OpCapsule:
			in.stack[sp] = newSample(sdCapsule(cur, cr.vec3(), cr.vec3(), cr.f32()))
			sp++
		case OpTaperedCapsule:
			p0 := cr.vec3()
			r0 := cr.f32()
			p1 := cr.vec3()
			r1 := cr.f32()
			in.stack[sp] = newSample(sdTaperedCapsule(cur, p0, p1, r0, r1))
			sp++
		case OpMaterial:
			in.stack[sp-1].RGB = cr.vec3()
		case OpUnion:
			sp--
			in.stack[sp-1] = sdOpUnion(in.stack[sp], in.stack[sp-1])
		case OpUnionSmooth:
			sp--
			in.stack[sp-1] = sdOpUnionSmooth(in.stack[sp], in.stack[sp-1], cr.f32())
		case OpSubtract:
			sp--
			in.stack[sp-1] = sdOpSubtract(in.stack[sp], in.stack[sp-1])
		case OpSubtractSmooth:
			sp--
			in.stack[sp-1] = sdOpSubtractSmooth(in.stack[sp], in.stack[sp-1], cr.f32())
		case OpIntersect:
			sp--
			in.stack[sp-1] = sdOpIntersect(in.stack[sp], in.stack[sp-1])
		case OpIntersectSmooth:
			sp--
			in.stack[sp-1] = sdOpIntersectSmooth(in.stack[sp], in.stack[sp-1], cr.f32())
		case OpPushTranslation:
			in.positions[tp] = cur
			tp++
			cur = cur.Add(cr.vec3())
		case OpPushRotation:
			in.positions[tp] = cur
			tp++
			cur = cr.quat().Rotate(cur)
		case OpPushScale:
			in.positions[tp] = cur
			tp++
			cur = cur.Mul(cr.f32())
		case OpPopTransform:
			tp--
			cur = in.positions[tp]
		case OpPopScale:
			tp--
			cur = in.positions[tp]
			in.stack[sp-1].Distance *= cr.f32()
		case OpRoundedBox:
			in.stack[sp] = newSample(sdRoundedBox(cur, cr.vec3(), cr.f32()))
			sp++
		case OpBiconvexLens:
			in.stack[sp] = newSample(sdBiconvexLens(cur, cr.f32(), cr.f32(), cr.f32()))
			sp++
		case OpRoundedCylinder:
			in.stack[sp] = newSample(sdRoundedCylinder(cur, cr.f32(), cr.f32(), cr.f32()))
			sp++
		case OpTorus:
			in.stack[sp] = newSample(sdTorus(cur, cr.f32(), cr.f32()))
			sp++
		case OpTorusSector:
			in.stack[sp] = newSample(sdTorusSector(cur, cr.f32(), cr.f32(), cr.f32(), cr.f32()))
			sp++
		case OpCone:
			in.stack[sp] = newSample(sdCone(cur, cr.f32(), cr.f32()))
			sp++
		default: // OpEnd
			return in.stack[sp-1]
		}
	}
}

// DistanceInterpreter evaluates only the distance channel over a plain
// float32 stack. This is the hot path for ray marching and the sdfx
// adapter, where the material color is not needed.
type DistanceInterpreter struct {
	prog      *Program
	stack     [StackDepth]float32
	positions [StackDepth]Vec3
}

// NewDistanceInterpreter returns a distance-only interpreter for the
// given validated program.
func NewDistanceInterpreter(p *Program) *DistanceInterpreter {
	return &DistanceInterpreter{prog: p}
}

// Eval returns the signed distance of the field at pos.
func (in *DistanceInterpreter) Eval(pos Vec3) float32 {
	ops := in.prog.Opcodes
	cr := creader{c: in.prog.Constants}
	sp, tp := 0, 0
	cur := pos

	for pc := 0; ; pc++ {
		switch ops[pc] {
		case OpPlane:
			in.stack[sp] = sdPlane(cur, cr.vec4())
			sp++
		case OpSphere:
			in.stack[sp] = sdSphere(cur, cr.vec3(), cr.f32())
			sp++
		case OpCapsule:
			in.stack[sp] = sdCapsule(cur, cr.vec3(), cr.vec3(), cr.f32())
			sp++
		case OpTaperedCapsule:
			p0 := cr.vec3()
			r0 := cr.f32()
			p1 := cr.vec3()
			r1 := cr.f32()
			in.stack[sp] = sdTaperedCapsule(cur, p0, p1, r0, r1)
			sp++
		case OpMaterial:
			cr.i += 3
		case OpUnion:
			sp--
			in.stack[sp-1] = sdOpUnionDist(in.stack[sp], in.stack[sp-1])
		case OpUnionSmooth:
			sp--
			in.stack[sp-1] = sdOpUnionSmoothDist(in.stack[sp], in.stack[sp-1], cr.f32())
		case OpSubtract:
			sp--
			in.stack[sp-1] = sdOpSubtractDist(in.stack[sp], in.stack[sp-1])
		case OpSubtractSmooth:
			sp--
			in.stack[sp-1] = sdOpSubtractSmoothDist(in.stack[sp], in.stack[sp-1], cr.f32())
		case OpIntersect:
			sp--
			in.stack[sp-1] = sdOpIntersectDist(in.stack[sp], in.stack[sp-1])
		case OpIntersectSmooth:
			sp--
			in.stack[sp-1] = sdOpIntersectSmoothDist(in.stack[sp], in.stack[sp-1], cr.f32())
		case OpPushTranslation:
			in.positions[tp] = cur
			tp++
			cur = cur.Add(cr.vec3())
		case OpPushRotation:
			in.positions[tp] = cur
			tp++
			cur = cr.quat().Rotate(cur)
		case OpPushScale:
			in.positions[tp] = cur
			tp++
			cur = cur.Mul(cr.f32())
		case OpPopTransform:
			tp--
			cur = in.positions[tp]
		case OpPopScale:
			tp--
			cur = in.positions[tp]
			in.stack[sp-1] *= cr.f32()
		case OpRoundedBox:
			in.stack[sp] = sdRoundedBox(cur, cr.vec3(), cr.f32())
			sp++
		case OpBiconvexLens:
			in.stack[sp] = sdBiconvexLens(cur, cr.f32(), cr.f32(), cr.f32())
			sp++
		case OpRoundedCylinder:
			in.stack[sp] = sdRoundedCylinder(cur, cr.f32(), cr.f32(), cr.f32())
			sp++
		case OpTorus:
			in.stack[sp] = sdTorus(cur, cr.f32(), cr.f32())
			sp++
		case OpTorusSector:
			in.stack[sp] = sdTorusSector(cur, cr.f32(), cr.f32(), cr.f32(), cr.f32())
			sp++
		case OpCone:
			in.stack[sp] = sdCone(cur, cr.f32(), cr.f32())
			sp++
		default: // OpEnd
			return in.stack[sp-1]
		}
	}
}
