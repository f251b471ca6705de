package ir

import (
	"github.com/tanema/cfront/src/bytecode"
	"github.com/tanema/cfront/src/lerrors"
	"github.com/tanema/cfront/src/types"
)

// LogicalExpression is a lowered && or ||. The right operand is only evaluated
// when the left one does not decide the result.
type LogicalExpression struct {
	Left     LoweredExpression
	Operator BinaryOperator
	Right    LoweredExpression
}

func (expr *LogicalExpression) Lower(Scope) (LoweredExpression, error) { return expr, nil }

func (expr *LogicalExpression) ExpressionType(scope Scope) (types.Type, error) {
	ltype, rtype, err := operandTypes(scope, expr.Left, expr.Right)
	if err != nil {
		return nil, err
	}
	ts := scope.TypeSystem()
	if !isScalar(ts, ltype) || !isScalar(ts, rtype) {
		return nil, operandError(expr.Operator, ltype, rtype)
	}
	return ts.Bool(), nil
}

// EmitTo emits a short circuit:
//
//	&&: left; BRFALSE F; right; BRFALSE F; LDI 1; BR E; F: LDI 0; E:
//	||: left; BRTRUE T; right; BRTRUE T; LDI 0; BR E; T: LDI 1; E:
func (expr *LogicalExpression) EmitTo(scope EmitScope) error {
	if _, err := expr.ExpressionType(scope); err != nil {
		return err
	}
	branch, short, full := bytecode.BRFALSE, int32(0), int32(1)
	switch expr.Operator {
	case LogicalAnd:
	case LogicalOr:
		branch, short, full = bytecode.BRTRUE, 1, 0
	default:
		return &lerrors.UnsupportedOperatorError{Operator: expr.Operator.String()}
	}

	method := scope.Method()
	jumps := make([]int, 0, 2)
	for _, operand := range []LoweredExpression{expr.Left, expr.Right} {
		if err := emitCondition(scope, operand); err != nil {
			return err
		}
		jumps = append(jumps, method.Code(bytecode.IsA(branch, 0)))
	}
	method.Code(bytecode.IsA(bytecode.LDI, full))
	exit := method.Code(bytecode.IsA(bytecode.BR, 0))
	for _, jmp := range jumps {
		if err := method.Patch(jmp, method.Label()); err != nil {
			return err
		}
	}
	method.Code(bytecode.IsA(bytecode.LDI, short))
	return method.Patch(exit, method.Label())
}

// emitCondition leaves an integer truth value of operand on the stack. Floats
// are compared against zero, integers and bools are branched on directly.
func emitCondition(scope EmitScope, operand LoweredExpression) error {
	typ, err := operand.ExpressionType(scope)
	if err != nil {
		return err
	}
	if err := operand.EmitTo(scope); err != nil {
		return err
	}
	if !scope.TypeSystem().IsFloat(typ) {
		return nil
	}
	method := scope.Method()
	if err := method.LoadFloat(0); err != nil {
		return err
	}
	method.Code(bytecode.I(bytecode.CEQ))
	emitNot(method)
	return nil
}

func isScalar(ts types.System, typ types.Type) bool {
	return ts.IsNumeric(typ) || ts.IsBool(typ)
}
