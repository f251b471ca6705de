package ir

import (
	"github.com/tanema/cfront/src/bytecode"
	"github.com/tanema/cfront/src/lerrors"
	"github.com/tanema/cfront/src/types"
)

// ComparisonExpression is a lowered relational or equality operator. Both
// operands are compared in their common type and the result is bool.
type ComparisonExpression struct {
	Left     LoweredExpression
	Operator BinaryOperator
	Right    LoweredExpression
}

func (expr *ComparisonExpression) Lower(Scope) (LoweredExpression, error) { return expr, nil }

func (expr *ComparisonExpression) ExpressionType(scope Scope) (types.Type, error) {
	if _, err := expr.operandType(scope); err != nil {
		return nil, err
	}
	return scope.TypeSystem().Bool(), nil
}

func (expr *ComparisonExpression) operandType(scope Scope) (types.Type, error) {
	ltype, rtype, err := operandTypes(scope, expr.Left, expr.Right)
	if err != nil {
		return nil, err
	}
	common, err := scope.TypeSystem().CommonType(ltype, rtype)
	if err != nil {
		return nil, operandError(expr.Operator, ltype, rtype)
	}
	return common, nil
}

func (expr *ComparisonExpression) EmitTo(scope EmitScope) error {
	opType, err := expr.operandType(scope)
	if err != nil {
		return err
	}
	if err := emitOperands(scope, expr.Left, expr.Right, opType); err != nil {
		return err
	}
	method := scope.Method()
	unsigned := scope.TypeSystem().IsUnsigned(opType)
	gt, lt := bytecode.CGT, bytecode.CLT
	if unsigned {
		gt, lt = bytecode.CGT_UN, bytecode.CLT_UN
	}
	switch expr.Operator {
	case EqualTo:
		method.Code(bytecode.I(bytecode.CEQ))
	case NotEqualTo:
		method.Code(bytecode.I(bytecode.CEQ))
		emitNot(method)
	case GreaterThan:
		method.Code(bytecode.I(gt))
	case LessThan:
		method.Code(bytecode.I(lt))
	case GreaterThanOrEqualTo:
		method.Code(bytecode.I(lt))
		emitNot(method)
	case LessThanOrEqualTo:
		method.Code(bytecode.I(gt))
		emitNot(method)
	default:
		return &lerrors.UnsupportedOperatorError{Operator: expr.Operator.String()}
	}
	return nil
}

// emitNot flips the bool on top of the stack.
func emitNot(method *Method) {
	method.Code(bytecode.IsA(bytecode.LDI, 0))
	method.Code(bytecode.I(bytecode.CEQ))
}
