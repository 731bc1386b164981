package sdf

// Bounds pass: runs the program over boxes instead of points. Each
// primitive has an analytically conservative box in local coordinates;
// combinators merge boxes and the transform opcodes map them back to
// world space on pop. The result only needs to be conservative, so
// finite boxes are inflated by a small epsilon at the end.

// boundsEpsilon inflates the final box to absorb float32 rounding in
// the transform chain.
const boundsEpsilon = 1e-4

// pendingTransform records a pushed transform so the matching pop can
// map the subtree's box back to world space. The stored parameters are
// the bytecode constants, which already encode world-to-local.
type pendingTransform struct {
	kind        Opcode
	translation Vec3
	rotation    Quat
	scale       float32
}

// Bounds returns a conservative world-space box around all points
// where the field may be non-positive. The program must be
// well-formed, with every Push/Pop pair wrapping a subtree that nets
// exactly one stack value. An empty program yields an empty box; a
// bare plane yields an infinite one.
func Bounds(p *Program) Aabb {
	var stack [StackDepth]Aabb
	var transforms [StackDepth]pendingTransform
	sp, tp := 0, 0
	cr := creader{c: p.Constants}

	for _, op := range p.Opcodes {
		switch op {
		case OpPlane:
			cr.i += 4
			stack[sp] = EverythingAabb()
			sp++
		case OpSphere:
			center := cr.vec3()
			radius := cr.f32()
			stack[sp] = AabbFromCenterSize(center, Splat(2*radius))
			sp++
		case OpCapsule:
			p0 := cr.vec3()
			p1 := cr.vec3()
			r := cr.f32()
			a := AabbFromCenterSize(p0, Splat(2*r))
			b := AabbFromCenterSize(p1, Splat(2*r))
			stack[sp] = a.Union(b)
			sp++
		case OpTaperedCapsule:
			p0 := cr.vec3()
			r0 := cr.f32()
			p1 := cr.vec3()
			r1 := cr.f32()
			a := AabbFromCenterSize(p0, Splat(2*r0))
			b := AabbFromCenterSize(p1, Splat(2*r1))
			stack[sp] = a.Union(b)
			sp++
		case OpMaterial:
			cr.i += 3
		case OpUnion:
			sp--
			stack[sp-1] = stack[sp].Union(stack[sp-1])
		case OpUnionSmooth:
			cr.i++
			sp--
			stack[sp-1] = stack[sp].Union(stack[sp-1])
		case OpSubtract:
			// Subtraction only removes material from the base shape,
			// whose box is already below the popped operand.
			sp--
		case OpSubtractSmooth:
			cr.i++
			sp--
		case OpIntersect:
			sp--
			stack[sp-1] = stack[sp].Intersection(stack[sp-1])
		case OpIntersectSmooth:
			cr.i++
			sp--
			stack[sp-1] = stack[sp].Intersection(stack[sp-1])
		case OpPushTranslation:
			transforms[tp] = pendingTransform{kind: op, translation: cr.vec3()}
			tp++
		case OpPushRotation:
			transforms[tp] = pendingTransform{kind: op, rotation: cr.quat()}
			tp++
		case OpPushScale:
			transforms[tp] = pendingTransform{kind: op, scale: cr.f32()}
			tp++
		case OpPopTransform:
			tp--
			t := transforms[tp]
			switch t.kind {
			case OpPushTranslation:
				// The stored constant is local = world + t, so the
				// subtree occupies world = local - t.
				stack[sp-1] = stack[sp-1].Translated(t.translation.Neg())
			case OpPushRotation:
				stack[sp-1] = stack[sp-1].RotatedAroundOrigin(t.rotation.Conjugate())
			}
		case OpPopScale:
			tp--
			// local = world * s; the pop carries 1/s.
			inv := cr.f32()
			stack[sp-1] = stack[sp-1].Scaled(inv)
		case OpRoundedBox:
			halfSize := cr.vec3()
			cr.i++
			stack[sp] = AabbFromCenterSize(Vec3{}, halfSize.Mul(2))
			sp++
		case OpBiconvexLens:
			lower := cr.f32()
			upper := cr.f32()
			chord := cr.f32()
			cr2 := chord / 2
			stack[sp] = AabbFromMinMax(Vec3{-cr2, -lower, -cr2}, Vec3{cr2, upper, cr2})
			sp++
		case OpRoundedCylinder:
			r := cr.f32()
			hh := cr.f32()
			cr.i++
			stack[sp] = AabbFromMinMax(Vec3{-r, -hh, -r}, Vec3{r, hh, r})
			sp++
		case OpTorus:
			bigR := cr.f32()
			smallR := cr.f32()
			e := bigR + smallR
			stack[sp] = AabbFromMinMax(Vec3{-e, -smallR, -e}, Vec3{e, smallR, e})
			sp++
		case OpTorusSector:
			bigR := cr.f32()
			smallR := cr.f32()
			sin := cr.f32()
			cos := cr.f32()
			var box Aabb
			if cos > 0 {
				// Less than half a torus.
				x := bigR * sin
				box = AabbFromMinMax(Vec3{-x, 0, bigR * cos}, Vec3{x, 0, bigR})
			} else {
				box = AabbFromMinMax(Vec3{-bigR, 0, bigR * cos}, Vec3{bigR, 0, bigR})
			}
			stack[sp] = box.Expanded(Splat(smallR))
			sp++
		case OpCone:
			r := cr.f32()
			h := cr.f32()
			stack[sp] = AabbFromMinMax(Vec3{-r, 0, -r}, Vec3{r, h, r})
			sp++
		case OpEnd:
			if sp < 1 {
				return EmptyAabb()
			}
			box := stack[sp-1]
			if box.IsFinite() && !box.IsEmpty() {
				box = box.Expanded(Splat(boundsEpsilon))
			}
			return box
		}
	}
	return EmptyAabb()
}
