package sdf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/zeebo/blake3"
)

// Validation and decoding errors.
var (
	ErrUnknownOpcode = errors.New("sdf: unknown opcode")
	ErrBadConstants  = errors.New("sdf: constant pool exhausted")
	ErrUnusedConsts  = errors.New("sdf: unused constants after End")
	ErrStackTooDeep  = errors.New("sdf: program exceeds stack depth")
	ErrUnbalanced    = errors.New("sdf: unbalanced stack")
	ErrMissingEnd    = errors.New("sdf: program has no End opcode")
	ErrTruncated     = errors.New("sdf: truncated program bytes")
)

// Program is a signed distance field function compiled to a flat
// opcode sequence and a constant pool. Opcodes consume their constants
// in declaration order with no alignment or padding.
//
// Programs are built by pkg/graph and are immutable once validated.
type Program struct {
	Opcodes   []Opcode
	Constants []float32
}

// Validate checks the static contract a well-formed program obeys:
// known opcodes only, an End terminator, constants that exactly cover
// the opcode sequence, balanced transform pushes and pops, both stacks
// within StackDepth, and exactly one value on the sample stack at End.
//
// The interpreter itself performs no checks on the hot path; this is
// the sole gate.
func (p *Program) Validate() error {
	sp, tp, cp := 0, 0, 0
	maxSP, maxTP := 0, 0
	for i, op := range p.Opcodes {
		if !op.Valid() {
			return fmt.Errorf("%w: tag %d at opcode %d", ErrUnknownOpcode, uint16(op), i)
		}
		cp += op.ConstantCount()
		if cp > len(p.Constants) {
			return fmt.Errorf("%w: opcode %d (%s)", ErrBadConstants, i, op)
		}
		switch op {
		case OpPlane, OpSphere, OpCapsule, OpTaperedCapsule, OpRoundedBox,
			OpBiconvexLens, OpRoundedCylinder, OpTorus, OpTorusSector, OpCone:
			sp++
		case OpMaterial:
			if sp < 1 {
				return fmt.Errorf("%w: Material at opcode %d on empty stack", ErrUnbalanced, i)
			}
		case OpUnion, OpUnionSmooth, OpSubtract, OpSubtractSmooth,
			OpIntersect, OpIntersectSmooth:
			if sp < 2 {
				return fmt.Errorf("%w: %s at opcode %d needs two operands", ErrUnbalanced, op, i)
			}
			sp--
		case OpPushTranslation, OpPushRotation, OpPushScale:
			tp++
		case OpPopTransform:
			if tp < 1 {
				return fmt.Errorf("%w: PopTransform at opcode %d without a push", ErrUnbalanced, i)
			}
			tp--
		case OpPopScale:
			if tp < 1 {
				return fmt.Errorf("%w: PopScale at opcode %d without a push", ErrUnbalanced, i)
			}
			if sp < 1 {
				return fmt.Errorf("%w: PopScale at opcode %d on empty stack", ErrUnbalanced, i)
			}
			tp--
		case OpEnd:
			if sp != 1 {
				return fmt.Errorf("%w: %d values on the stack at End", ErrUnbalanced, sp)
			}
			if tp != 0 {
				return fmt.Errorf("%w: %d transforms still pushed at End", ErrUnbalanced, tp)
			}
			if cp != len(p.Constants) {
				return fmt.Errorf("%w: %d of %d consumed", ErrUnusedConsts, cp, len(p.Constants))
			}
			return nil
		}
		if sp > maxSP {
			maxSP = sp
		}
		if tp > maxTP {
			maxTP = tp
		}
		if maxSP > StackDepth || maxTP > StackDepth {
			return fmt.Errorf("%w: depth %d/%d at opcode %d", ErrStackTooDeep, maxSP, maxTP, i)
		}
	}
	return ErrMissingEnd
}

// Encode serializes the program as two length-prefixed little-endian
// buffers: u32 opcode count, u16 opcodes, u32 constant count, f32
// constants. Decode reverses it byte-exactly.
func (p *Program) Encode() []byte {
	buf := make([]byte, 0, 8+2*len(p.Opcodes)+4*len(p.Constants))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.Opcodes)))
	for _, op := range p.Opcodes {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(op))
	}
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.Constants)))
	for _, c := range p.Constants {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(c))
	}
	return buf
}

// Decode parses the wire form produced by Encode and validates the
// resulting program.
func Decode(data []byte) (*Program, error) {
	if len(data) < 4 {
		return nil, ErrTruncated
	}
	nOp := binary.LittleEndian.Uint32(data)
	data = data[4:]
	if uint64(len(data)) < 2*uint64(nOp)+4 {
		return nil, ErrTruncated
	}
	p := &Program{Opcodes: make([]Opcode, nOp)}
	for i := range p.Opcodes {
		p.Opcodes[i] = Opcode(binary.LittleEndian.Uint16(data[2*i:]))
	}
	data = data[2*nOp:]
	nConst := binary.LittleEndian.Uint32(data)
	data = data[4:]
	if uint64(len(data)) < 4*uint64(nConst) {
		return nil, ErrTruncated
	}
	p.Constants = make([]float32, nConst)
	for i := range p.Constants {
		p.Constants[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Hash returns a content hash of the program, suitable as a cache
// identity for meshes and grids derived from it.
func (p *Program) Hash() [32]byte {
	return blake3.Sum256(p.Encode())
}

// ConstantReader walks a constant pool in opcode declaration order.
// It is used by the disassembler and the decompiler; the interpreter
// uses its own unchecked cursor.
type ConstantReader struct {
	constants []float32
	offset    int
}

// NewConstantReader returns a reader positioned at the first constant.
func NewConstantReader(constants []float32) *ConstantReader {
	return &ConstantReader{constants: constants}
}

// AtEnd reports whether every constant has been consumed.
func (r *ConstantReader) AtEnd() bool {
	return r.offset == len(r.constants)
}

// Skip advances the cursor without reading.
func (r *ConstantReader) Skip(n int) {
	r.offset += n
}

// F32 reads a single constant.
func (r *ConstantReader) F32() (float32, error) {
	if r.offset >= len(r.constants) {
		return 0, ErrBadConstants
	}
	v := r.constants[r.offset]
	r.offset++
	return v, nil
}

// Vec3 reads three constants.
func (r *ConstantReader) Vec3() (Vec3, error) {
	x, err := r.F32()
	if err != nil {
		return Vec3{}, err
	}
	y, err := r.F32()
	if err != nil {
		return Vec3{}, err
	}
	z, err := r.F32()
	if err != nil {
		return Vec3{}, err
	}
	return Vec3{x, y, z}, nil
}

// Vec4 reads four constants.
func (r *ConstantReader) Vec4() (Vec4, error) {
	v, err := r.Vec3()
	if err != nil {
		return Vec4{}, err
	}
	w, err := r.F32()
	if err != nil {
		return Vec4{}, err
	}
	return Vec4{v.X, v.Y, v.Z, w}, nil
}

// Quat reads four constants as a quaternion (x, y, z, w).
func (r *ConstantReader) Quat() (Quat, error) {
	v, err := r.Vec4()
	if err != nil {
		return Quat{}, err
	}
	return Quat{v.X, v.Y, v.Z, v.W}, nil
}
