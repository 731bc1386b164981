package sdf

import "math"

// Vec3 is a 3-component float32 vector. The whole evaluation pipeline
// works in float32 to stay bit-compatible with the serialized
// constant pool.
type Vec3 struct {
	X, Y, Z float32
}

// V3 constructs a Vec3.
func V3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Splat returns a vector with all components set to s.
func Splat(s float32) Vec3 {
	return Vec3{X: s, Y: s, Z: s}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Mul returns the vector scaled by s.
func (v Vec3) Mul(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product of v and o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Length returns the magnitude of the vector.
func (v Vec3) Length() float32 {
	return sqrt32(v.Dot(v))
}

// Abs returns the component-wise absolute value.
func (v Vec3) Abs() Vec3 {
	return Vec3{abs32(v.X), abs32(v.Y), abs32(v.Z)}
}

// Max returns the component-wise maximum of v and o.
func (v Vec3) Max(o Vec3) Vec3 {
	return Vec3{max32(v.X, o.X), max32(v.Y, o.Y), max32(v.Z, o.Z)}
}

// Min returns the component-wise minimum of v and o.
func (v Vec3) Min(o Vec3) Vec3 {
	return Vec3{min32(v.X, o.X), min32(v.Y, o.Y), min32(v.Z, o.Z)}
}

// Lerp returns v + (o-v)*t.
func (v Vec3) Lerp(o Vec3, t float32) Vec3 {
	return Vec3{
		v.X + (o.X-v.X)*t,
		v.Y + (o.Y-v.Y)*t,
		v.Z + (o.Z-v.Z)*t,
	}
}

// Normalize returns a unit vector in the same direction, or the zero
// vector if v has zero length.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Mul(1 / l)
}

// IsFinite reports whether all components are finite.
func (v Vec3) IsFinite() bool {
	return isFinite32(v.X) && isFinite32(v.Y) && isFinite32(v.Z)
}

// Vec4 is a 4-component float32 vector, used for plane coefficients.
type Vec4 struct {
	X, Y, Z, W float32
}

// XYZ returns the first three components as a Vec3.
func (v Vec4) XYZ() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// Quat is a rotation quaternion stored as (x, y, z, w).
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity is the identity rotation.
var QuatIdentity = Quat{W: 1}

// QuatFromAxisAngle returns the rotation of angle radians around the
// given axis. The axis must be unit length.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	s := float32(math.Sin(float64(angle) / 2))
	c := float32(math.Cos(float64(angle) / 2))
	return Quat{axis.X * s, axis.Y * s, axis.Z * s, c}
}

// Conjugate returns the inverse rotation (for unit quaternions).
func (q Quat) Conjugate() Quat {
	return Quat{-q.X, -q.Y, -q.Z, q.W}
}

// Rotate rotates v by q: v + 2*(q.xyz x (q.xyz x v + q.w*v)).
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Add(v.Mul(q.W))
	return v.Add(u.Cross(t).Mul(2))
}

func sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

func abs32(x float32) float32 {
	return float32(math.Abs(float64(x)))
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func clamp32(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func sign32(x float32) float32 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// hypot32 computes sqrt(x*x + y*y) without undue overflow.
func hypot32(x, y float32) float32 {
	return float32(math.Hypot(float64(x), float64(y)))
}

func isFinite32(x float32) bool {
	return !math.IsInf(float64(x), 0) && !math.IsNaN(float64(x))
}
