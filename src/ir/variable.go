package ir

import (
	"fmt"

	"github.com/tanema/cfront/src/bytecode"
	"github.com/tanema/cfront/src/types"
)

// VariableExpression references a local by name.
type VariableExpression struct {
	Name string
}

func (expr *VariableExpression) Lower(scope Scope) (LoweredExpression, error) {
	if _, err := expr.resolve(scope); err != nil {
		return nil, err
	}
	return expr, nil
}

func (expr *VariableExpression) ExpressionType(scope Scope) (types.Type, error) {
	lcl, err := expr.resolve(scope)
	if err != nil {
		return nil, err
	}
	return lcl.Type, nil
}

func (expr *VariableExpression) EmitTo(scope EmitScope) error {
	lcl, err := expr.resolve(scope)
	if err != nil {
		return err
	}
	scope.Method().Code(bytecode.IA(bytecode.LDLOC, uint32(lcl.Index)))
	return nil
}

func (expr *VariableExpression) resolve(scope Scope) (*Local, error) {
	lcl, found := scope.ResolveLocal(expr.Name)
	if !found {
		return nil, fmt.Errorf("use of undeclared identifier %v", expr.Name)
	}
	return lcl, nil
}
