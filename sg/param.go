package sg

import (
	"fmt"

	"github.com/borealis-gfx/borealis/types"
)

// The type tag of a parameter value.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindFloat
	KindVec2i
	KindVec3f
	KindUInt
	KindString
	KindVertexArray
	KindColorArray
	KindIndexArray
	KindScalarArray
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindVec2i:
		return "vec2i"
	case KindVec3f:
		return "vec3f"
	case KindUInt:
		return "uint"
	case KindString:
		return "string"
	case KindVertexArray:
		return "vertex-array"
	case KindColorArray:
		return "color-array"
	case KindIndexArray:
		return "index-array"
	case KindScalarArray:
		return "scalar-array"
	default:
		return "unknown"
	}
}

// KindOf maps a Go value to its parameter kind. Values with no mapping
// report KindUnknown.
func KindOf(value interface{}) Kind {
	switch value.(type) {
	case float32:
		return KindFloat
	case types.Vec2i:
		return KindVec2i
	case types.Vec3:
		return KindVec3f
	case uint32:
		return KindUInt
	case string:
		return KindString
	case []types.Vec3:
		return KindVertexArray
	case []types.Vec4:
		return KindColorArray
	case [][3]uint32:
		return KindIndexArray
	case []uint32:
		return KindScalarArray
	default:
		return KindUnknown
	}
}

// A Param is a named, typed value owned by a scene node: a scalar, a small
// vector or a contiguous data buffer. The kind tag always matches the
// payload; retyping a declared parameter is explicit (remove, then set).
type Param struct {
	name  string
	kind  Kind
	value interface{}
}

func newParam(name string, value interface{}) (*Param, error) {
	kind := KindOf(value)
	if kind == KindUnknown {
		return nil, fmt.Errorf("%w: unsupported value type %T for parameter %q", ErrUnknownType, value, name)
	}
	return &Param{name: name, kind: kind, value: value}, nil
}

// Get parameter name.
func (p *Param) Name() string {
	return p.name
}

// Get parameter kind tag.
func (p *Param) Kind() Kind {
	return p.kind
}

// Get the raw parameter value.
func (p *Param) Value() interface{} {
	return p.value
}

// Typed accessors. Each returns the zero value when the parameter holds a
// different kind; callers that care should check Kind first.

func (p *Param) Float() float32 {
	v, _ := p.value.(float32)
	return v
}

func (p *Param) Vec2i() types.Vec2i {
	v, _ := p.value.(types.Vec2i)
	return v
}

func (p *Param) Vec3f() types.Vec3 {
	v, _ := p.value.(types.Vec3)
	return v
}

func (p *Param) UInt() uint32 {
	v, _ := p.value.(uint32)
	return v
}

func (p *Param) Str() string {
	v, _ := p.value.(string)
	return v
}

func (p *Param) Vertices() []types.Vec3 {
	v, _ := p.value.([]types.Vec3)
	return v
}

func (p *Param) Colors() []types.Vec4 {
	v, _ := p.value.([]types.Vec4)
	return v
}

func (p *Param) Indices() [][3]uint32 {
	v, _ := p.value.([][3]uint32)
	return v
}

func (p *Param) Scalars() []uint32 {
	v, _ := p.value.([]uint32)
	return v
}
