package types

import (
	"strings"

	"github.com/pkg/errors"
)

type (
	// System is the type system facade the compiler consults. It never
	// constructs new primitive types; every primitive it hands out is one of the
	// named singletons.
	System interface {
		IsBool(t Type) bool
		IsInteger(t Type) bool
		IsNumeric(t Type) bool
		IsFloat(t Type) bool
		IsUnsigned(t Type) bool
		Void() Type
		Bool() Type
		SByte() Type
		Int16() Type
		Int32() Type
		Int64() Type
		Byte() Type
		UInt16() Type
		UInt32() Type
		UInt64() Type
		Single() Type
		Double() Type
		// CommonType applies the usual arithmetic conversions to a pair of
		// operand types.
		CommonType(a, b Type) (Type, error)
		// Lookup finds a type by its C spelling, e.g. "unsigned int" or "int32_t".
		Lookup(spelling string) (Type, bool)
	}
	// Registry is the default System. It is immutable after NewRegistry.
	Registry struct {
		void, boolean                *Primitive
		sbyte, int16, int32, int64   *Primitive
		byte, uint16, uint32, uint64 *Primitive
		single, double               *Primitive
		spellings                    map[string]*Primitive
	}
)

// NewRegistry constructs the primitive singletons and their C spellings.
func NewRegistry() *Registry {
	r := &Registry{
		void:    &Primitive{Name: NameVoid, Kind: KindVoid},
		boolean: &Primitive{Name: NameBool, Kind: KindBool},
		sbyte:   &Primitive{Name: NameInt8, Kind: KindInt8},
		int16:   &Primitive{Name: NameInt16, Kind: KindInt16},
		int32:   &Primitive{Name: NameInt32, Kind: KindInt32},
		int64:   &Primitive{Name: NameInt64, Kind: KindInt64},
		byte:    &Primitive{Name: NameUInt8, Kind: KindUInt8},
		uint16:  &Primitive{Name: NameUInt16, Kind: KindUInt16},
		uint32:  &Primitive{Name: NameUInt32, Kind: KindUInt32},
		uint64:  &Primitive{Name: NameUInt64, Kind: KindUInt64},
		single:  &Primitive{Name: NameFloat32, Kind: KindFloat32},
		double:  &Primitive{Name: NameFloat64, Kind: KindFloat64},
	}
	r.spellings = map[string]*Primitive{
		"void":                   r.void,
		"_Bool":                  r.boolean,
		"bool":                   r.boolean,
		"char":                   r.sbyte,
		"signed char":            r.sbyte,
		"int8_t":                 r.sbyte,
		"unsigned char":          r.byte,
		"uint8_t":                r.byte,
		"short":                  r.int16,
		"short int":              r.int16,
		"signed short":           r.int16,
		"signed short int":       r.int16,
		"int16_t":                r.int16,
		"unsigned short":         r.uint16,
		"unsigned short int":     r.uint16,
		"uint16_t":               r.uint16,
		"int":                    r.int32,
		"signed":                 r.int32,
		"signed int":             r.int32,
		"int32_t":                r.int32,
		"unsigned":               r.uint32,
		"unsigned int":           r.uint32,
		"uint32_t":               r.uint32,
		"long":                   r.int64,
		"long int":               r.int64,
		"signed long":            r.int64,
		"long long":              r.int64,
		"long long int":          r.int64,
		"signed long long":       r.int64,
		"int64_t":                r.int64,
		"unsigned long":          r.uint64,
		"unsigned long int":      r.uint64,
		"unsigned long long":     r.uint64,
		"unsigned long long int": r.uint64,
		"uint64_t":               r.uint64,
		"size_t":                 r.uint64,
		"float":                  r.single,
		"double":                 r.double,
	}
	return r
}

func (r *Registry) Void() Type   { return r.void }
func (r *Registry) Bool() Type   { return r.boolean }
func (r *Registry) SByte() Type  { return r.sbyte }
func (r *Registry) Int16() Type  { return r.int16 }
func (r *Registry) Int32() Type  { return r.int32 }
func (r *Registry) Int64() Type  { return r.int64 }
func (r *Registry) Byte() Type   { return r.byte }
func (r *Registry) UInt16() Type { return r.uint16 }
func (r *Registry) UInt32() Type { return r.uint32 }
func (r *Registry) UInt64() Type { return r.uint64 }
func (r *Registry) Single() Type { return r.single }
func (r *Registry) Double() Type { return r.double }

// IsBool reports whether t is _Bool.
func (r *Registry) IsBool(t Type) bool { return t == Type(r.boolean) }

// IsInteger reports whether t is one of the eight fixed width integer types.
func (r *Registry) IsInteger(t Type) bool {
	prim, isPrim := t.(*Primitive)
	return isPrim && prim.IsInteger()
}

// IsFloat reports whether t is float or double.
func (r *Registry) IsFloat(t Type) bool {
	prim, isPrim := t.(*Primitive)
	return isPrim && prim.IsFloat()
}

// IsNumeric reports whether t is a member of the ten type numeric set.
func (r *Registry) IsNumeric(t Type) bool { return r.IsInteger(t) || r.IsFloat(t) }

// IsUnsigned reports whether t is an unsigned integer.
func (r *Registry) IsUnsigned(t Type) bool {
	prim, isPrim := t.(*Primitive)
	return isPrim && prim.IsUnsigned()
}

// Lookup finds a primitive by any of its C spellings. Whitespace between words
// is normalized.
func (r *Registry) Lookup(spelling string) (Type, bool) {
	prim, found := r.spellings[strings.Join(strings.Fields(spelling), " ")]
	return prim, found
}

// CommonType applies the usual arithmetic conversions: a double operand makes
// the result double, then float; otherwise both operands are promoted to at
// least int and the result is the wider type, preferring the unsigned type
// unless the signed type is strictly wider.
func (r *Registry) CommonType(a, b Type) (Type, error) {
	if !r.arithmetic(a) || !r.arithmetic(b) {
		return nil, errors.Errorf("invalid operands to binary expression (%s and %s)", a, b)
	}
	if a == Type(r.double) || b == Type(r.double) {
		return r.double, nil
	} else if a == Type(r.single) || b == Type(r.single) {
		return r.single, nil
	}
	pa, pb := r.promote(a.(*Primitive)), r.promote(b.(*Primitive))
	switch {
	case pa == pb:
		return pa, nil
	case pa.IsUnsigned() == pb.IsUnsigned():
		if pa.Size() >= pb.Size() {
			return pa, nil
		}
		return pb, nil
	}
	unsigned, signed := pa, pb
	if pb.IsUnsigned() {
		unsigned, signed = pb, pa
	}
	if signed.Size() > unsigned.Size() {
		return signed, nil
	}
	return unsigned, nil
}

func (r *Registry) arithmetic(t Type) bool {
	return r.IsNumeric(t) || r.IsBool(t)
}

// promote applies the integer promotions: everything narrower than int becomes int.
func (r *Registry) promote(t *Primitive) *Primitive {
	if t.Kind == KindBool || t.Size() < r.int32.Size() {
		return r.int32
	}
	return t
}
