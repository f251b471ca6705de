package ir

import (
	"github.com/tanema/cfront/src/bytecode"
	"github.com/tanema/cfront/src/lerrors"
	"github.com/tanema/cfront/src/types"
)

// EmitConversion appends the single conversion instruction that turns a value
// of type from into a value of type to. Identical types and bool to integer
// in either direction need no instruction. The instruction depends only on
// the target type.
func EmitConversion(scope EmitScope, from, to types.Type) error {
	ts := scope.TypeSystem()
	if types.Equal(from, to) ||
		(ts.IsBool(from) && ts.IsInteger(to)) ||
		(ts.IsInteger(from) && ts.IsBool(to)) {
		return nil
	}
	failed := &lerrors.ConversionError{From: from.String(), To: to.String()}
	if !ts.IsNumeric(from) {
		return failed
	}

	op, found := conversionOp(ts, to)
	if !found {
		return failed
	}
	scope.Method().Code(bytecode.I(op))
	return nil
}

// conversionOp is the conversion instruction producing a value of type to.
func conversionOp(ts types.System, to types.Type) (bytecode.Op, bool) {
	switch to {
	case ts.SByte():
		return bytecode.CONV_I1, true
	case ts.Int16():
		return bytecode.CONV_I2, true
	case ts.Int32():
		return bytecode.CONV_I4, true
	case ts.Int64():
		return bytecode.CONV_I8, true
	case ts.Byte():
		return bytecode.CONV_U1, true
	case ts.UInt16():
		return bytecode.CONV_U2, true
	case ts.UInt32():
		return bytecode.CONV_U4, true
	case ts.UInt64():
		return bytecode.CONV_U8, true
	case ts.Single():
		return bytecode.CONV_R4, true
	case ts.Double():
		return bytecode.CONV_R8, true
	default:
		return bytecode.NOP, false
	}
}

// ConversionExpression converts Value to Type, as the scalar form of a
// compound literal does.
type ConversionExpression struct {
	Value LoweredExpression
	Type  types.Type
}

func (expr *ConversionExpression) Lower(Scope) (LoweredExpression, error) { return expr, nil }

func (expr *ConversionExpression) ExpressionType(Scope) (types.Type, error) { return expr.Type, nil }

func (expr *ConversionExpression) EmitTo(scope EmitScope) error {
	from, err := expr.Value.ExpressionType(scope)
	if err != nil {
		return err
	}
	if err := expr.Value.EmitTo(scope); err != nil {
		return err
	}
	return EmitConversion(scope, from, expr.Type)
}
