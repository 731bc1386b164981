package sdf

import "math"

// Aabb is an axis-aligned bounding box in world space. A box with
// Min > Max on any axis is empty.
type Aabb struct {
	Min, Max Vec3
}

// EmptyAabb returns the box that contains nothing. Union with any box
// yields the other box.
func EmptyAabb() Aabb {
	inf := float32(math.Inf(1))
	return Aabb{Min: Splat(inf), Max: Splat(-inf)}
}

// EverythingAabb returns the box that contains all of space, used for
// unbounded primitives such as planes.
func EverythingAabb() Aabb {
	inf := float32(math.Inf(1))
	return Aabb{Min: Splat(-inf), Max: Splat(inf)}
}

// AabbFromMinMax constructs a box from its corners.
func AabbFromMinMax(min, max Vec3) Aabb {
	return Aabb{Min: min, Max: max}
}

// AabbFromCenterSize constructs a box from its center and full extent.
func AabbFromCenterSize(center, size Vec3) Aabb {
	half := size.Mul(0.5)
	return Aabb{Min: center.Sub(half), Max: center.Add(half)}
}

// IsEmpty reports whether the box contains no points.
func (b Aabb) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// IsFinite reports whether both corners are finite.
func (b Aabb) IsFinite() bool {
	return b.Min.IsFinite() && b.Max.IsFinite()
}

// Size returns the full extent on each axis.
func (b Aabb) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the center point of the box.
func (b Aabb) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Volume returns the enclosed volume, or 0 for an empty box.
func (b Aabb) Volume() float32 {
	if b.IsEmpty() {
		return 0
	}
	s := b.Size()
	return s.X * s.Y * s.Z
}

// Contains reports whether p lies inside the box (inclusive).
func (b Aabb) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Union returns the smallest box containing both b and o.
func (b Aabb) Union(o Aabb) Aabb {
	return Aabb{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Intersection returns the overlap of b and o, which may be empty.
func (b Aabb) Intersection(o Aabb) Aabb {
	return Aabb{Min: b.Min.Max(o.Min), Max: b.Max.Min(o.Max)}
}

// Translated returns the box moved by t.
func (b Aabb) Translated(t Vec3) Aabb {
	return Aabb{Min: b.Min.Add(t), Max: b.Max.Add(t)}
}

// Expanded returns the box grown by d on every side.
func (b Aabb) Expanded(d Vec3) Aabb {
	return Aabb{Min: b.Min.Sub(d), Max: b.Max.Add(d)}
}

// Scaled returns the box with both corners multiplied by s. s must be
// non-negative.
func (b Aabb) Scaled(s float32) Aabb {
	return Aabb{Min: b.Min.Mul(s), Max: b.Max.Mul(s)}
}

// RotatedAroundOrigin returns the box of the eight rotated corners.
func (b Aabb) RotatedAroundOrigin(q Quat) Aabb {
	if b.IsEmpty() || !b.IsFinite() {
		return b
	}
	out := EmptyAabb()
	for i := 0; i < 8; i++ {
		c := Vec3{b.Min.X, b.Min.Y, b.Min.Z}
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		p := q.Rotate(c)
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}
