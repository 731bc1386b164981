package sdf

import "fmt"

// Opcode is a single instruction tag in a compiled program. The
// numeric values are fixed for bit-compatibility with the serialized
// form; never renumber them.
type Opcode uint16

const (
	// Primitives.
	OpPlane          Opcode = 0 // vec4 (normal, offset)
	OpSphere         Opcode = 1 // center vec3, radius f32
	OpCapsule        Opcode = 2 // p0 vec3, p1 vec3, radius f32
	OpTaperedCapsule Opcode = 3 // p0 vec3, r0 f32, p1 vec3, r1 f32

	// OpMaterial overwrites the color of the top of the sample stack.
	OpMaterial Opcode = 4 // rgb vec3

	// Combinators.
	OpUnion           Opcode = 5
	OpUnionSmooth     Opcode = 6 // size f32
	OpSubtract        Opcode = 7
	OpSubtractSmooth  Opcode = 8 // size f32
	OpIntersect       Opcode = 9
	OpIntersectSmooth Opcode = 10 // size f32

	// Transforms.
	OpPushTranslation Opcode = 11 // translation vec3
	OpPushRotation    Opcode = 12 // quaternion vec4 (x, y, z, w)
	OpPopTransform    Opcode = 13
	OpPushScale       Opcode = 14 // scale f32
	OpPopScale        Opcode = 15 // inverse scale f32

	OpEnd Opcode = 16

	OpRoundedBox      Opcode = 17 // half size vec3, rounding radius f32
	OpBiconvexLens    Opcode = 18 // lower sagitta, upper sagitta, chord
	OpRoundedCylinder Opcode = 19 // cylinder radius, half height, rounding radius
	OpTorus           Opcode = 20 // big r, small r
	OpTorusSector     Opcode = 21 // big r, small r, sin/cos half angle
	OpCone            Opcode = 22 // radius, height
)

// opcodeNames indexes by tag value.
var opcodeNames = [...]string{
	OpPlane:           "Plane",
	OpSphere:          "Sphere",
	OpCapsule:         "Capsule",
	OpTaperedCapsule:  "TaperedCapsule",
	OpMaterial:        "Material",
	OpUnion:           "Union",
	OpUnionSmooth:     "UnionSmooth",
	OpSubtract:        "Subtract",
	OpSubtractSmooth:  "SubtractSmooth",
	OpIntersect:       "Intersect",
	OpIntersectSmooth: "IntersectSmooth",
	OpPushTranslation: "PushTranslation",
	OpPushRotation:    "PushRotation",
	OpPopTransform:    "PopTransform",
	OpPushScale:       "PushScale",
	OpPopScale:        "PopScale",
	OpEnd:             "End",
	OpRoundedBox:      "RoundedBox",
	OpBiconvexLens:    "BiconvexLens",
	OpRoundedCylinder: "RoundedCylinder",
	OpTorus:           "Torus",
	OpTorusSector:     "TorusSector",
	OpCone:            "Cone",
}

// opcodeConstants counts the float32 constants each opcode consumes.
var opcodeConstants = [...]int{
	OpPlane:           4,
	OpSphere:          4,
	OpCapsule:         7,
	OpTaperedCapsule:  8,
	OpMaterial:        3,
	OpUnion:           0,
	OpUnionSmooth:     1,
	OpSubtract:        0,
	OpSubtractSmooth:  1,
	OpIntersect:       0,
	OpIntersectSmooth: 1,
	OpPushTranslation: 3,
	OpPushRotation:    4,
	OpPopTransform:    0,
	OpPushScale:       1,
	OpPopScale:        1,
	OpEnd:             0,
	OpRoundedBox:      4,
	OpBiconvexLens:    3,
	OpRoundedCylinder: 3,
	OpTorus:           2,
	OpTorusSector:     4,
	OpCone:            2,
}

// Valid reports whether the tag is a known opcode.
func (op Opcode) Valid() bool {
	return int(op) < len(opcodeNames)
}

// ConstantCount returns the number of float32 constants the opcode
// consumes from the constant pool.
func (op Opcode) ConstantCount() int {
	if !op.Valid() {
		return 0
	}
	return opcodeConstants[op]
}

// String returns the mnemonic name of the opcode.
func (op Opcode) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Opcode(%d)", uint16(op))
	}
	return opcodeNames[op]
}
