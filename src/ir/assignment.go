package ir

import (
	"github.com/tanema/cfront/src/bytecode"
	"github.com/tanema/cfront/src/types"
)

type (
	// AssignmentExpression stores Value into Target. Its type is the target's
	// type and it leaves nothing on the stack.
	AssignmentExpression struct {
		Target *VariableExpression
		Value  LoweredExpression
	}
	// AssignmentValueExpression is an assignment used as an operand. It stores
	// and also yields the stored value.
	AssignmentValueExpression struct {
		Assignment *AssignmentExpression
	}
)

func (expr *AssignmentExpression) Lower(Scope) (LoweredExpression, error) { return expr, nil }

func (expr *AssignmentExpression) ExpressionType(scope Scope) (types.Type, error) {
	return expr.Target.ExpressionType(scope)
}

func (expr *AssignmentExpression) EmitTo(scope EmitScope) error {
	return expr.emit(scope, false)
}

func (expr *AssignmentExpression) emit(scope EmitScope, keep bool) error {
	lcl, err := expr.Target.resolve(scope)
	if err != nil {
		return err
	}
	valueType, err := expr.Value.ExpressionType(scope)
	if err != nil {
		return err
	}
	if err := expr.Value.EmitTo(scope); err != nil {
		return err
	}
	if err := EmitConversion(scope, valueType, lcl.Type); err != nil {
		return err
	}
	method := scope.Method()
	if keep {
		method.Code(bytecode.I(bytecode.DUP))
	}
	method.Code(bytecode.IA(bytecode.STLOC, uint32(lcl.Index)))
	return nil
}

func (expr *AssignmentValueExpression) Lower(Scope) (LoweredExpression, error) { return expr, nil }

func (expr *AssignmentValueExpression) ExpressionType(scope Scope) (types.Type, error) {
	return expr.Assignment.ExpressionType(scope)
}

func (expr *AssignmentValueExpression) EmitTo(scope EmitScope) error {
	return expr.Assignment.emit(scope, true)
}
