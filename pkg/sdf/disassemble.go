package sdf

import (
	"fmt"
	"strings"
)

// Disassemble renders the program as a human-readable listing, one
// opcode per line with its constants. Intended for debugging and
// golden tests; the output format is not stable.
func (p *Program) Disassemble() (string, error) {
	var b strings.Builder
	b.Grow(len(p.Opcodes) * 32)
	r := NewConstantReader(p.Constants)

	for _, op := range p.Opcodes {
		switch op {
		case OpPlane:
			v, err := r.Vec4()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "Plane n=(%g %g %g) d=%g\n", v.X, v.Y, v.Z, v.W)
		case OpSphere:
			c, err := r.Vec3()
			if err != nil {
				return "", err
			}
			rad, err := r.F32()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "Sphere c=(%g %g %g) r=%g\n", c.X, c.Y, c.Z, rad)
		case OpCapsule:
			p0, err := r.Vec3()
			if err != nil {
				return "", err
			}
			p1, err := r.Vec3()
			if err != nil {
				return "", err
			}
			rad, err := r.F32()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "Capsule p0=(%g %g %g) p1=(%g %g %g) r=%g\n",
				p0.X, p0.Y, p0.Z, p1.X, p1.Y, p1.Z, rad)
		case OpTaperedCapsule:
			p0, err := r.Vec3()
			if err != nil {
				return "", err
			}
			r0, err := r.F32()
			if err != nil {
				return "", err
			}
			p1, err := r.Vec3()
			if err != nil {
				return "", err
			}
			r1, err := r.F32()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "TaperedCapsule p0=(%g %g %g) r0=%g p1=(%g %g %g) r1=%g\n",
				p0.X, p0.Y, p0.Z, r0, p1.X, p1.Y, p1.Z, r1)
		case OpMaterial:
			rgb, err := r.Vec3()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "Material rgb=(%g %g %g)\n", rgb.X, rgb.Y, rgb.Z)
		case OpUnionSmooth, OpSubtractSmooth, OpIntersectSmooth:
			size, err := r.F32()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%s size=%g\n", op, size)
		case OpPushTranslation:
			t, err := r.Vec3()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "PushTranslation (%g %g %g)\n", t.X, t.Y, t.Z)
		case OpPushRotation:
			q, err := r.Quat()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "PushRotation (%g %g %g %g)\n", q.X, q.Y, q.Z, q.W)
		case OpPushScale, OpPopScale:
			s, err := r.F32()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%s %g\n", op, s)
		case OpRoundedBox:
			hs, err := r.Vec3()
			if err != nil {
				return "", err
			}
			rad, err := r.F32()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "RoundedBox half=(%g %g %g) r=%g\n", hs.X, hs.Y, hs.Z, rad)
		case OpBiconvexLens:
			lo, err := r.F32()
			if err != nil {
				return "", err
			}
			up, err := r.F32()
			if err != nil {
				return "", err
			}
			chord, err := r.F32()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "BiconvexLens lower=%g upper=%g chord=%g\n", lo, up, chord)
		case OpRoundedCylinder:
			cr, err := r.F32()
			if err != nil {
				return "", err
			}
			hh, err := r.F32()
			if err != nil {
				return "", err
			}
			rr, err := r.F32()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "RoundedCylinder r=%g h=%g round=%g\n", cr, hh, rr)
		case OpTorus:
			bigR, err := r.F32()
			if err != nil {
				return "", err
			}
			smallR, err := r.F32()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "Torus R=%g r=%g\n", bigR, smallR)
		case OpTorusSector:
			bigR, err := r.F32()
			if err != nil {
				return "", err
			}
			smallR, err := r.F32()
			if err != nil {
				return "", err
			}
			sin, err := r.F32()
			if err != nil {
				return "", err
			}
			cos, err := r.F32()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "TorusSector R=%g r=%g sin=%g cos=%g\n", bigR, smallR, sin, cos)
		case OpCone:
			rad, err := r.F32()
			if err != nil {
				return "", err
			}
			h, err := r.F32()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "Cone r=%g h=%g\n", rad, h)
		case OpEnd:
			b.WriteString("End\n")
			return b.String(), nil
		default:
			fmt.Fprintf(&b, "%s\n", op)
		}
	}
	return b.String(), nil
}
