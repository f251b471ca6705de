package ir

import (
	"math"

	"github.com/tanema/cfront/src/ast"
	"github.com/tanema/cfront/src/types"
)

type (
	// IntegerConstant is an integer value already normalized to its kind.
	IntegerConstant struct {
		Kind  types.PrimitiveKind
		Value int64
	}
	// FloatConstant is a float or double value.
	FloatConstant struct {
		Value  float64
		Single bool
	}
)

// NewIntegerConstant normalizes value to kind.
func NewIntegerConstant(kind types.PrimitiveKind, value int64) *IntegerConstant {
	return &IntegerConstant{Kind: kind, Value: kind.Truncate(value)}
}

// NewIntegerLiteral picks the type of an integer literal the way C does: the
// first candidate of the suffix list that can represent the value.
func NewIntegerLiteral(lit *ast.IntegerLiteral) *IntegerConstant {
	var candidates []types.PrimitiveKind
	switch {
	case lit.Unsigned && lit.Long:
		candidates = []types.PrimitiveKind{types.KindUInt64}
	case lit.Unsigned:
		candidates = []types.PrimitiveKind{types.KindUInt32, types.KindUInt64}
	case lit.Long && lit.Decimal:
		candidates = []types.PrimitiveKind{types.KindInt64}
	case lit.Long:
		candidates = []types.PrimitiveKind{types.KindInt64, types.KindUInt64}
	case lit.Decimal:
		candidates = []types.PrimitiveKind{types.KindInt32, types.KindInt64}
	default:
		candidates = []types.PrimitiveKind{types.KindInt32, types.KindUInt32, types.KindInt64, types.KindUInt64}
	}
	for _, kind := range candidates {
		if fits(kind, lit.Value) {
			return NewIntegerConstant(kind, int64(lit.Value))
		}
	}
	return NewIntegerConstant(types.KindUInt64, int64(lit.Value))
}

func fits(kind types.PrimitiveKind, val uint64) bool {
	switch kind {
	case types.KindInt32:
		return val <= math.MaxInt32
	case types.KindUInt32:
		return val <= math.MaxUint32
	case types.KindInt64:
		return val <= math.MaxInt64
	default:
		return true
	}
}

func (expr *IntegerConstant) Lower(Scope) (LoweredExpression, error) { return expr, nil }

func (expr *IntegerConstant) ExpressionType(scope Scope) (types.Type, error) {
	return kindType(scope.TypeSystem(), expr.Kind), nil
}

func (expr *IntegerConstant) EmitTo(scope EmitScope) error {
	return scope.Method().LoadInteger(expr.Value)
}

func (expr *FloatConstant) Lower(Scope) (LoweredExpression, error) { return expr, nil }

func (expr *FloatConstant) ExpressionType(scope Scope) (types.Type, error) {
	if expr.Single {
		return scope.TypeSystem().Single(), nil
	}
	return scope.TypeSystem().Double(), nil
}

func (expr *FloatConstant) EmitTo(scope EmitScope) error {
	if expr.Single {
		return scope.Method().LoadFloat(float64(float32(expr.Value)))
	}
	return scope.Method().LoadFloat(expr.Value)
}

// kindType maps a primitive kind to the registry's singleton.
func kindType(ts types.System, kind types.PrimitiveKind) types.Type {
	switch kind {
	case types.KindBool:
		return ts.Bool()
	case types.KindInt8:
		return ts.SByte()
	case types.KindInt16:
		return ts.Int16()
	case types.KindInt32:
		return ts.Int32()
	case types.KindInt64:
		return ts.Int64()
	case types.KindUInt8:
		return ts.Byte()
	case types.KindUInt16:
		return ts.UInt16()
	case types.KindUInt32:
		return ts.UInt32()
	case types.KindUInt64:
		return ts.UInt64()
	case types.KindFloat32:
		return ts.Single()
	case types.KindFloat64:
		return ts.Double()
	default:
		return ts.Void()
	}
}
