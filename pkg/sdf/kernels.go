package sdf

// Primitive distance kernels and CSG combinators. Each kernel is a
// pure function of the query position and the shape parameters.
// Formulas follow Inigo Quilez's distance function catalogue; the
// combinator formulas are part of the serialized contract and must
// not be reformulated.

// sdPlane: dot(pos, n) + d. The normal should be unit length.
func sdPlane(pos Vec3, plane Vec4) float32 {
	return pos.Dot(plane.XYZ()) + plane.W
}

func sdSphere(pos, center Vec3, radius float32) float32 {
	return pos.Sub(center).Length() - radius
}

func sdRoundedBox(pos, halfSize Vec3, roundingRadius float32) float32 {
	q := pos.Abs().Sub(halfSize).Add(Splat(roundingRadius))
	outside := q.Max(Vec3{}).Length()
	inside := min32(max32(q.X, max32(q.Y, q.Z)), 0)
	return outside + inside - roundingRadius
}

func sdTorus(pos Vec3, bigR, smallR float32) float32 {
	qx := hypot32(pos.X, pos.Z) - bigR
	return hypot32(qx, pos.Y) - smallR
}

// sdTorusSector is a torus with a sector removed; the missing piece
// faces negative Z. sinHalf and cosHalf are the sin and cos of the
// half-angle.
func sdTorusSector(pos Vec3, bigR, smallR, sinHalf, cosHalf float32) float32 {
	pos.X = abs32(pos.X)
	var k float32
	if cosHalf*pos.X > sinHalf*pos.Z {
		k = pos.X*sinHalf + pos.Z*cosHalf
	} else {
		k = hypot32(pos.X, pos.Z)
	}
	d := pos.Dot(pos) + bigR*bigR - 2*bigR*k
	return sqrt32(max32(d, 0)) - smallR
}

// sdBiconvexLens is the intersection of two spheres derived from the
// chord and the two sagittas.
func sdBiconvexLens(pos Vec3, lowerSagitta, upperSagitta, chord float32) float32 {
	chordRadius := chord / 2
	lowerRadius := (chordRadius*chordRadius + lowerSagitta*lowerSagitta) / (2 * lowerSagitta)
	upperRadius := (chordRadius*chordRadius + upperSagitta*upperSagitta) / (2 * upperSagitta)
	lowerCenter := Vec3{0, lowerRadius - lowerSagitta, 0}
	upperCenter := Vec3{0, -(upperRadius - upperSagitta), 0}
	return sdOpIntersectDist(
		sdSphere(pos, lowerCenter, lowerRadius),
		sdSphere(pos, upperCenter, upperRadius),
	)
}

func sdCapsule(pos, p0, p1 Vec3, radius float32) float32 {
	pa := pos.Sub(p0)
	ba := p1.Sub(p0)
	h := clamp32(pa.Dot(ba)/ba.Dot(ba), 0, 1)
	return pa.Sub(ba.Mul(h)).Length() - radius
}

// sdRoundedCylinder: axis along Y, centered at the origin. The
// rounding is sandpapered off the edges.
func sdRoundedCylinder(pos Vec3, cylinderRadius, halfHeight, roundingRadius float32) float32 {
	dx := hypot32(pos.X, pos.Z) - cylinderRadius + roundingRadius
	dy := abs32(pos.Y) - halfHeight + roundingRadius
	inside := min32(max32(dx, dy), 0)
	outside := hypot32(max32(dx, 0), max32(dy, 0))
	return inside + outside - roundingRadius
}

// sdTaperedCapsule is the convex hull of two spheres. Single square
// root, three-way branch on which cap or the cone wall is closest.
func sdTaperedCapsule(pos, p0, p1 Vec3, r0, r1 float32) float32 {
	ba := p1.Sub(p0)
	l2 := ba.Dot(ba)
	rr := r0 - r1
	a2 := l2 - rr*rr
	il2 := 1 / l2

	pa := pos.Sub(p0)
	y := pa.Dot(ba)
	z := y - l2
	xv := pa.Mul(l2).Sub(ba.Mul(y))
	x2 := xv.Dot(xv)
	y2 := y * y * l2
	z2 := z * z * l2

	k := sign32(rr) * rr * rr * x2
	switch {
	case sign32(z)*a2*z2 > k:
		return sqrt32(x2+z2)*il2 - r1
	case sign32(y)*a2*y2 < k:
		return sqrt32(x2+y2)*il2 - r0
	default:
		return (y*rr+sqrt32(x2*a2*il2))*il2 - r0
	}
}

// sdCone: base of radius r at the origin, apex at (0, h, 0).
func sdCone(pos Vec3, r, h float32) float32 {
	qx, qy := r, h
	wx := hypot32(pos.X, pos.Z)
	wy := h - pos.Y
	t := clamp32((wx*qx+wy*qy)/(qx*qx+qy*qy), 0, 1)
	ax := wx - qx*t
	ay := wy - qy*t
	bx := wx - r*clamp32(wx/r, 0, 1)
	by := wy - h
	d := min32(ax*ax+ay*ay, bx*bx+by*by)
	s := max32(wx*h-wy*r, wy-h)
	return sqrt32(d) * sign32(s)
}

// sdOpUnion keeps the closer operand, color included.
func sdOpUnion(d1, d2 Sample) Sample {
	if d1.Distance < d2.Distance {
		return d1
	}
	return d2
}

// sdOpSubtract removes d1 from d2. The carved surface keeps the color
// of the subtracted shape.
func sdOpSubtract(d1, d2 Sample) Sample {
	neg := -d1.Distance
	if neg > d2.Distance {
		return d1.withDistance(neg)
	}
	return d2
}

// sdOpIntersect keeps the farther operand, color included.
func sdOpIntersect(d1, d2 Sample) Sample {
	if d1.Distance > d2.Distance {
		return d1
	}
	return d2
}

func sdOpUnionSmooth(d1, d2 Sample, size float32) Sample {
	h := clamp32(0.5+0.5*(d2.Distance-d1.Distance)/size, 0, 1)
	n := d2.lerp(d1, h)
	return n.withDistance(n.Distance - size*h*(1-h))
}

// sdOpSubtractSmooth blends toward the subtracted shape's color with
// its distance sign-flipped. The formula is part of the serialized
// contract; keep it verbatim.
func sdOpSubtractSmooth(d1, d2 Sample, size float32) Sample {
	h := clamp32(0.5-0.5*(d2.Distance+d1.Distance)/size, 0, 1)
	d1 = d1.withDistance(-d1.Distance)
	n := d2.lerp(d1, h)
	return n.withDistance(size*h*(1-h) + n.Distance)
}

func sdOpIntersectSmooth(d1, d2 Sample, size float32) Sample {
	h := clamp32(0.5-0.5*(d2.Distance-d1.Distance)/size, 0, 1)
	n := d2.lerp(d1, h)
	return n.withDistance(size*h*(1-h) + n.Distance)
}

// Distance-only combinator variants for the float32 fast path.

func sdOpUnionDist(d1, d2 float32) float32 {
	return min32(d1, d2)
}

func sdOpSubtractDist(d1, d2 float32) float32 {
	return max32(-d1, d2)
}

func sdOpIntersectDist(d1, d2 float32) float32 {
	return max32(d1, d2)
}

func sdOpUnionSmoothDist(d1, d2, size float32) float32 {
	h := clamp32(0.5+0.5*(d2-d1)/size, 0, 1)
	return d2 + (d1-d2)*h - size*h*(1-h)
}

func sdOpSubtractSmoothDist(d1, d2, size float32) float32 {
	h := clamp32(0.5-0.5*(d2+d1)/size, 0, 1)
	return d2 + (-d1-d2)*h + size*h*(1-h)
}

func sdOpIntersectSmoothDist(d1, d2, size float32) float32 {
	h := clamp32(0.5-0.5*(d2-d1)/size, 0, 1)
	return d2 + (d1-d2)*h + size*h*(1-h)
}
