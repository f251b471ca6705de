package types

import (
	"fmt"
	"strings"
)

type (
	// Type is a general interface for all type definitions.
	Type interface {
		fmt.Stringer
		// Size is the storage size of a value of the type in bytes.
		Size() int
	}
	// PrimitiveKind enumerates the builtin scalar types.
	PrimitiveKind int
	// Primitive is a builtin scalar type.
	Primitive struct {
		Name string
		Kind PrimitiveKind
	}
	// Pointer is a pointer to Elem. It is never numeric.
	Pointer struct{ Elem Type }
	// Array is a fixed length array of Elem.
	Array struct {
		Elem Type
		Len  int
	}
	// Struct is a named aggregate with ordered fields.
	Struct struct {
		Name   string
		Fields []Field
	}
	// Field is a single member of a struct.
	Field struct {
		Name string
		Type Type
	}
)

const (
	// KindVoid is the void type.
	KindVoid PrimitiveKind = iota
	// KindBool is _Bool.
	KindBool
	// KindInt8 is signed char.
	KindInt8
	// KindInt16 is short.
	KindInt16
	// KindInt32 is int.
	KindInt32
	// KindInt64 is long and long long.
	KindInt64
	// KindUInt8 is unsigned char.
	KindUInt8
	// KindUInt16 is unsigned short.
	KindUInt16
	// KindUInt32 is unsigned int.
	KindUInt32
	// KindUInt64 is unsigned long and unsigned long long.
	KindUInt64
	// KindFloat32 is float.
	KindFloat32
	// KindFloat64 is double.
	KindFloat64
)

const (
	// NameVoid is a label for the void type.
	NameVoid = "void"
	// NameBool is a label for the bool type.
	NameBool = "_Bool"
	// NameInt8 is a label for the signed char type.
	NameInt8 = "signed char"
	// NameInt16 is a label for the short type.
	NameInt16 = "short"
	// NameInt32 is a label for the int type.
	NameInt32 = "int"
	// NameInt64 is a label for the long type.
	NameInt64 = "long"
	// NameUInt8 is a label for the unsigned char type.
	NameUInt8 = "unsigned char"
	// NameUInt16 is a label for the unsigned short type.
	NameUInt16 = "unsigned short"
	// NameUInt32 is a label for the unsigned int type.
	NameUInt32 = "unsigned int"
	// NameUInt64 is a label for the unsigned long type.
	NameUInt64 = "unsigned long"
	// NameFloat32 is a label for the float type.
	NameFloat32 = "float"
	// NameFloat64 is a label for the double type.
	NameFloat64 = "double"
)

var kindSizes = map[PrimitiveKind]int{
	KindVoid:    0,
	KindBool:    1,
	KindInt8:    1,
	KindInt16:   2,
	KindInt32:   4,
	KindInt64:   8,
	KindUInt8:   1,
	KindUInt16:  2,
	KindUInt32:  4,
	KindUInt64:  8,
	KindFloat32: 4,
	KindFloat64: 8,
}

func (t *Primitive) String() string { return t.Name }

// Size returns the byte size of the primitive.
func (t *Primitive) Size() int { return kindSizes[t.Kind] }

// IsInteger is true for the eight fixed width integer kinds. _Bool is not one of them.
func (t *Primitive) IsInteger() bool { return t.Kind >= KindInt8 && t.Kind <= KindUInt64 }

// IsFloat is true for float and double.
func (t *Primitive) IsFloat() bool { return t.Kind == KindFloat32 || t.Kind == KindFloat64 }

// IsUnsigned is true for unsigned integers.
func (t *Primitive) IsUnsigned() bool { return t.Kind >= KindUInt8 && t.Kind <= KindUInt64 }

// Truncate wraps v to the width of the kind and extends it back to 64 bits,
// with sign extension for signed kinds. _Bool collapses to 0 or 1.
func (k PrimitiveKind) Truncate(v int64) int64 {
	switch k {
	case KindBool:
		if v != 0 {
			return 1
		}
		return 0
	case KindInt8:
		return int64(int8(v))
	case KindInt16:
		return int64(int16(v))
	case KindInt32:
		return int64(int32(v))
	case KindUInt8:
		return int64(uint8(v))
	case KindUInt16:
		return int64(uint16(v))
	case KindUInt32:
		return int64(uint32(v))
	default:
		return v
	}
}

func (t *Pointer) String() string { return t.Elem.String() + "*" }

// Size of a pointer on the 64 bit target.
func (t *Pointer) Size() int { return 8 }

func (t *Array) String() string { return fmt.Sprintf("%s[%d]", t.Elem, t.Len) }

// Size is the element size times the length.
func (t *Array) Size() int { return t.Elem.Size() * t.Len }

func (t *Struct) String() string { return "struct " + t.Name }

// Size is the sum of the field sizes. Padding is not modelled.
func (t *Struct) Size() int {
	size := 0
	for _, field := range t.Fields {
		size += field.Type.Size()
	}
	return size
}

// FieldIndex finds the position of the named field.
func (t *Struct) FieldIndex(name string) (int, bool) {
	for i, field := range t.Fields {
		if field.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Describe renders the full struct definition.
func (t *Struct) Describe() string {
	parts := make([]string, len(t.Fields))
	for i, field := range t.Fields {
		parts[i] = fmt.Sprintf("%s %s;", field.Type, field.Name)
	}
	return fmt.Sprintf("struct %s { %s }", t.Name, strings.Join(parts, " "))
}

// Equal compares two types. Primitives are equal only when they are the same
// reference; pointers, arrays and structs compare structurally.
func Equal(a, b Type) bool {
	if a == b {
		return true
	}
	switch ta := a.(type) {
	case *Pointer:
		other, isPtr := b.(*Pointer)
		return isPtr && Equal(ta.Elem, other.Elem)
	case *Array:
		other, isArr := b.(*Array)
		return isArr && ta.Len == other.Len && Equal(ta.Elem, other.Elem)
	case *Struct:
		other, isStruct := b.(*Struct)
		if !isStruct || ta.Name != other.Name || len(ta.Fields) != len(other.Fields) {
			return false
		}
		for i, field := range ta.Fields {
			if field.Name != other.Fields[i].Name || !Equal(field.Type, other.Fields[i].Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
