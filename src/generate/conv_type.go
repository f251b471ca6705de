package generate

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/tanema/cfront/src/lerrors"
	ctypes "github.com/tanema/cfront/src/types"
)

// convType maps the type of a local onto its storage type in LLVM. _Bool is
// stored as a byte and pointers as an opaque byte pointer.
func convType(typ ctypes.Type) (types.Type, error) {
	switch ttyp := typ.(type) {
	case *ctypes.Primitive:
		switch ttyp.Kind {
		case ctypes.KindBool, ctypes.KindInt8, ctypes.KindUInt8:
			return types.I8, nil
		case ctypes.KindInt16, ctypes.KindUInt16:
			return types.I16, nil
		case ctypes.KindInt32, ctypes.KindUInt32:
			return types.I32, nil
		case ctypes.KindInt64, ctypes.KindUInt64:
			return types.I64, nil
		case ctypes.KindFloat32:
			return types.Float, nil
		case ctypes.KindFloat64:
			return types.Double, nil
		}
	case *ctypes.Pointer:
		return types.I8Ptr, nil
	}
	return nil, &lerrors.WipError{Feature: fmt.Sprintf("llvm storage for %v", typ)}
}

// zeroValue is the value a local holds before it is first assigned.
func zeroValue(typ types.Type) constant.Constant {
	switch ttyp := typ.(type) {
	case *types.IntType:
		return constant.NewInt(ttyp, 0)
	case *types.FloatType:
		return constant.NewFloat(ttyp, 0)
	case *types.PointerType:
		return constant.NewNull(ttyp)
	default:
		return constant.NewZeroInitializer(typ)
	}
}

// convKind is the target of a conversion instruction.
type convKind struct {
	bits     uint64
	unsigned bool
	float    bool
}

func isUnsigned(typ ctypes.Type) bool {
	prim, isPrim := typ.(*ctypes.Primitive)
	return isPrim && (prim.IsUnsigned() || prim.Kind == ctypes.KindBool)
}

func isBool(typ ctypes.Type) bool {
	prim, isPrim := typ.(*ctypes.Primitive)
	return isPrim && prim.Kind == ctypes.KindBool
}
