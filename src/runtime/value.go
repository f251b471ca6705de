package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tanema/cfront/src/types"
)

type (
	// Struct is a struct value created by NEWOBJ.
	Struct struct {
		Type   *types.Struct
		Fields []any
	}
	// Array is an array value created by NEWARR.
	Array struct {
		Type  *types.Array
		Elems []any
	}
)

// Zero creates the zero value of typ. Integers, bools and pointers are int64,
// floats are float64.
func Zero(typ types.Type) any {
	switch ttyp := typ.(type) {
	case *types.Primitive:
		if ttyp.IsFloat() {
			return float64(0)
		}
		return int64(0)
	case *types.Struct:
		obj := &Struct{Type: ttyp, Fields: make([]any, len(ttyp.Fields))}
		for i, field := range ttyp.Fields {
			obj.Fields[i] = Zero(field.Type)
		}
		return obj
	case *types.Array:
		arr := &Array{Type: ttyp, Elems: make([]any, ttyp.Len)}
		for i := range arr.Elems {
			arr.Elems[i] = Zero(ttyp.Elem)
		}
		return arr
	default:
		return int64(0)
	}
}

// Normalize brings val into the range of typ, the way storing into a variable
// of that type does.
func Normalize(typ types.Type, val any) any {
	prim, isPrim := typ.(*types.Primitive)
	if !isPrim {
		return val
	}
	switch tval := val.(type) {
	case int64:
		if prim.IsFloat() {
			return roundFloat(prim.Kind, float64(tval))
		}
		return prim.Kind.Truncate(tval)
	case float64:
		if prim.IsFloat() {
			return roundFloat(prim.Kind, tval)
		} else if prim.Kind == types.KindBool {
			return toBool(tval != 0)
		}
		return prim.Kind.Truncate(floatToInt(prim.Kind, tval))
	default:
		return val
	}
}

func roundFloat(kind types.PrimitiveKind, val float64) float64 {
	if kind == types.KindFloat32 {
		return float64(float32(val))
	}
	return val
}

// floatToInt truncates toward zero. Unsigned 64 bit targets keep the bit
// pattern of values above the signed range.
func floatToInt(kind types.PrimitiveKind, val float64) int64 {
	if kind == types.KindUInt64 && val >= math.MaxInt64 {
		return int64(uint64(val))
	}
	return int64(val)
}

// clone copies aggregates so that loading or storing a variable never
// aliases it. DUP shares the reference so that stores into a fresh aggregate
// land in the value left on the stack.
func clone(val any) any {
	switch tval := val.(type) {
	case *Struct:
		obj := &Struct{Type: tval.Type, Fields: make([]any, len(tval.Fields))}
		for i, field := range tval.Fields {
			obj.Fields[i] = clone(field)
		}
		return obj
	case *Array:
		arr := &Array{Type: tval.Type, Elems: make([]any, len(tval.Elems))}
		for i, elem := range tval.Elems {
			arr.Elems[i] = clone(elem)
		}
		return arr
	default:
		return val
	}
}

// ToString formats val as a C initializer of type typ.
func ToString(typ types.Type, val any) string {
	switch tval := val.(type) {
	case int64:
		if prim, isPrim := typ.(*types.Primitive); isPrim && prim.IsUnsigned() {
			return strconv.FormatUint(uint64(tval), 10)
		}
		return strconv.FormatInt(tval, 10)
	case float64:
		return strconv.FormatFloat(tval, 'g', -1, 64)
	case *Struct:
		parts := make([]string, len(tval.Fields))
		for i, field := range tval.Type.Fields {
			parts[i] = fmt.Sprintf(".%s = %s", field.Name, ToString(field.Type, tval.Fields[i]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Array:
		parts := make([]string, len(tval.Elems))
		for i, elem := range tval.Elems {
			parts[i] = ToString(tval.Type.Elem, elem)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(val)
	}
}

func toBool(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
