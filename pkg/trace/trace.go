// Package trace implements sphere tracing (ray marching) against a
// compiled program, for diagnostics, previews, and normal estimation.
package trace

import (
	"math"

	"github.com/chazu/sculpt/pkg/sdf"
)

// Ray is a world-space ray. Dir should be unit length.
type Ray struct {
	Origin, Dir sdf.Vec3
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) sdf.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// Options tunes the march. The zero value selects the defaults.
type Options struct {
	// MaxSteps bounds the number of field evaluations. 0 means 1024.
	MaxSteps int

	// StepConstant scales each advance. 1 for a true distance field;
	// lower it if the field overestimates distances.
	StepConstant float32
}

func (o Options) maxSteps() int {
	if o.MaxSteps <= 0 {
		return 1024
	}
	return o.MaxSteps
}

func (o Options) stepConstant() float32 {
	if o.StepConstant <= 0 {
		return 1
	}
	return o.StepConstant
}

// ClosestHit is a point along a march. When IsHit is false it is the
// point that came closest to a surface, by angular distance as seen
// from the ray origin.
type ClosestHit struct {
	// T is the distance along the ray.
	T float32
	// Pos is the point in world space.
	Pos sdf.Vec3
	// Dist is the field distance at Pos.
	Dist float32
	// RGB is the material color at Pos.
	RGB sdf.Vec3
	// Normal is the estimated surface normal at Pos. Only meaningful
	// for hits.
	Normal sdf.Vec3
	// IsHit reports whether the point is on the surface.
	IsHit bool
}

// Miss returns the sentinel for a march that found nothing.
func Miss() ClosestHit {
	nan := float32(math.NaN())
	return ClosestHit{
		T:    float32(math.Inf(1)),
		Pos:  sdf.Splat(nan),
		Dist: float32(math.Inf(1)),
	}
}

// AngleDistance is how close the point came to a surface as seen from
// the ray origin: Dist/T, or +inf when that makes no sense.
func (h ClosestHit) AngleDistance() float32 {
	if h.T <= h.Dist {
		return float32(math.Inf(1))
	}
	return h.Dist / h.T
}

// March casts a ray against the program from tMin to tMax, advancing
// by the field distance at each step. It returns the first hit, or on
// a miss the sample along the ray with the smallest angular distance.
// A point counts as a hit when its distance falls below 0.001*t, so
// the tolerance grows with perspective distance.
func March(p *sdf.Program, ray Ray, tMin, tMax float32, opt Options) ClosestHit {
	dist := sdf.NewDistanceInterpreter(p)
	hit := Trace(dist.Eval, ray, tMin, tMax, opt)
	if hit.IsHit {
		full := sdf.NewInterpreter(p)
		hit.RGB = full.Eval(hit.Pos).RGB
		hit.Normal = Normal(dist.Eval, hit.Pos, 0.001*max32(hit.T, 1))
	}
	return hit
}

// Trace is March over an arbitrary distance function. sd must never
// overestimate the distance to the surface.
func Trace(sd func(sdf.Vec3) float32, ray Ray, tMin, tMax float32, opt Options) ClosestHit {
	t := tMin
	closestAngle := float32(math.Inf(1))
	closest := Miss()
	stepConstant := opt.stepConstant()

	for i := 0; i < opt.maxSteps(); i++ {
		pos := ray.At(t)
		d := sd(pos)
		if d <= 0.001*t {
			return ClosestHit{T: t, Pos: pos, Dist: d, IsHit: true}
		}
		if t > 0 {
			if angle := d / t; angle < closestAngle {
				closestAngle = angle
				closest = ClosestHit{T: t, Pos: pos, Dist: d}
			}
		}
		t += d * stepConstant
		if t >= tMax {
			return closest
		}
	}
	return closest
}

// Normal estimates the surface normal at pos by central differences
// with the given step.
func Normal(sd func(sdf.Vec3) float32, pos sdf.Vec3, step float32) sdf.Vec3 {
	dx := sd(pos.Add(sdf.V3(step, 0, 0))) - sd(pos.Sub(sdf.V3(step, 0, 0)))
	dy := sd(pos.Add(sdf.V3(0, step, 0))) - sd(pos.Sub(sdf.V3(0, step, 0)))
	dz := sd(pos.Add(sdf.V3(0, 0, step))) - sd(pos.Sub(sdf.V3(0, 0, step)))
	return sdf.V3(dx, dy, dz).Normalize()
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
