package ir

import (
	"github.com/tanema/cfront/src/bytecode"
	"github.com/tanema/cfront/src/lerrors"
	"github.com/tanema/cfront/src/types"
)

// ArithmeticExpression is a lowered + - * << >> | & or ^. The result is the
// common type of both operands.
type ArithmeticExpression struct {
	Left     LoweredExpression
	Operator BinaryOperator
	Right    LoweredExpression
}

func (expr *ArithmeticExpression) Lower(Scope) (LoweredExpression, error) { return expr, nil }

func (expr *ArithmeticExpression) ExpressionType(scope Scope) (types.Type, error) {
	ltype, rtype, err := operandTypes(scope, expr.Left, expr.Right)
	if err != nil {
		return nil, err
	}
	ts := scope.TypeSystem()
	common, err := ts.CommonType(ltype, rtype)
	if err != nil {
		return nil, operandError(expr.Operator, ltype, rtype)
	}
	if (expr.Operator.IsBitwise() || expr.Operator.IsShift()) && !ts.IsInteger(common) {
		return nil, operandError(expr.Operator, ltype, rtype)
	}
	return common, nil
}

func (expr *ArithmeticExpression) EmitTo(scope EmitScope) error {
	opType, err := expr.ExpressionType(scope)
	if err != nil {
		return err
	}
	if err := emitOperands(scope, expr.Left, expr.Right, opType); err != nil {
		return err
	}
	unsigned := scope.TypeSystem().IsUnsigned(opType)
	var op bytecode.Op
	switch expr.Operator {
	case Add:
		op = bytecode.ADD
	case Subtract:
		op = bytecode.SUB
	case Multiply:
		op = bytecode.MUL
	case BitwiseLeftShift:
		op = bytecode.SHL
	case BitwiseRightShift:
		op = bytecode.SHR
		if unsigned {
			op = bytecode.SHR_UN
		}
	case BitwiseOr:
		op = bytecode.OR
	case BitwiseAnd:
		op = bytecode.AND
	case BitwiseXor:
		op = bytecode.XOR
	default:
		return &lerrors.UnsupportedOperatorError{Operator: expr.Operator.String()}
	}
	scope.Method().Code(bytecode.I(op))
	return wrapUnsigned(scope, op, opType)
}

// wrapUnsigned brings the result of an operation that can carry out of an
// unsigned type narrower than 64 bits back into its range. Unsigned
// arithmetic is modular while the stack holds 64 bit values.
func wrapUnsigned(scope EmitScope, op bytecode.Op, opType types.Type) error {
	ts := scope.TypeSystem()
	if !ts.IsUnsigned(opType) || opType.Size() >= 8 {
		return nil
	}
	switch op {
	case bytecode.ADD, bytecode.SUB, bytecode.MUL, bytecode.SHL:
	default:
		return nil
	}
	conv, found := conversionOp(ts, opType)
	if !found {
		return &lerrors.ConversionError{From: opType.String(), To: opType.String()}
	}
	scope.Method().Code(bytecode.I(conv))
	return nil
}

func operandTypes(scope Scope, left, right Expression) (types.Type, types.Type, error) {
	ltype, err := left.ExpressionType(scope)
	if err != nil {
		return nil, nil, err
	}
	rtype, err := right.ExpressionType(scope)
	if err != nil {
		return nil, nil, err
	}
	return ltype, rtype, nil
}

// emitOperands emits left, its conversion to opType, right and its conversion.
func emitOperands(scope EmitScope, left, right LoweredExpression, opType types.Type) error {
	for _, operand := range []LoweredExpression{left, right} {
		typ, err := operand.ExpressionType(scope)
		if err != nil {
			return err
		}
		if err := operand.EmitTo(scope); err != nil {
			return err
		}
		if err := EmitConversion(scope, typ, opType); err != nil {
			return err
		}
	}
	return nil
}

func operandError(op BinaryOperator, left, right types.Type) error {
	return &lerrors.OperandError{Operator: op.String(), Left: left.String(), Right: right.String()}
}
