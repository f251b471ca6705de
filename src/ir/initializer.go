package ir

import (
	"github.com/tanema/cfront/src/ast"
	"github.com/tanema/cfront/src/types"
)

type (
	// CompoundObjectFieldInitializer is one entry of an initializer list. The
	// designation is carried along untouched; placing the value is the job of
	// the enclosing compound literal.
	CompoundObjectFieldInitializer struct {
		Inner       Expression
		Designation *ast.Designation
	}
	// LoweredCompoundObjectFieldInitializer is the lowered form, with the same
	// designation.
	LoweredCompoundObjectFieldInitializer struct {
		Inner       LoweredExpression
		Designation *ast.Designation
	}
)

func (init *CompoundObjectFieldInitializer) Lower(scope Scope) (LoweredExpression, error) {
	inner, err := init.Inner.Lower(scope)
	if err != nil {
		return nil, err
	}
	return &LoweredCompoundObjectFieldInitializer{Inner: inner, Designation: init.Designation}, nil
}

func (init *CompoundObjectFieldInitializer) ExpressionType(scope Scope) (types.Type, error) {
	return init.Inner.ExpressionType(scope)
}

func (init *LoweredCompoundObjectFieldInitializer) Lower(scope Scope) (LoweredExpression, error) {
	inner, err := init.Inner.Lower(scope)
	if err != nil {
		return nil, err
	}
	return &LoweredCompoundObjectFieldInitializer{Inner: inner, Designation: init.Designation}, nil
}

func (init *LoweredCompoundObjectFieldInitializer) ExpressionType(scope Scope) (types.Type, error) {
	return init.Inner.ExpressionType(scope)
}

func (init *LoweredCompoundObjectFieldInitializer) EmitTo(scope EmitScope) error {
	return init.Inner.EmitTo(scope)
}
