package sdf

import "math"

// Sample is the value of the field at a point: the material color of
// the primitive that won the combinator chain, and the signed distance
// to the surface. Distance < 0 is inside, 0 is the surface, > 0 is
// outside.
type Sample struct {
	RGB      Vec3
	Distance float32
}

// defaultRGB is the material color of a primitive with no Material
// opcode applied.
var defaultRGB = Vec3{1, 1, 1}

// farSample is infinitely far outside everything.
func farSample() Sample {
	return Sample{RGB: defaultRGB, Distance: float32(math.Inf(1))}
}

func newSample(d float32) Sample {
	return Sample{RGB: defaultRGB, Distance: d}
}

// withDistance returns the sample with its distance replaced,
// keeping the color.
func (s Sample) withDistance(d float32) Sample {
	s.Distance = d
	return s
}

// lerp interpolates both color and distance: s + (o-s)*t.
func (s Sample) lerp(o Sample, t float32) Sample {
	return Sample{
		RGB:      s.RGB.Lerp(o.RGB, t),
		Distance: s.Distance + (o.Distance-s.Distance)*t,
	}
}

// IsFinite reports whether both color and distance are finite.
func (s Sample) IsFinite() bool {
	return s.RGB.IsFinite() && isFinite32(s.Distance)
}
