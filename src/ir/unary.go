package ir

import (
	"fmt"

	"github.com/tanema/cfront/src/lerrors"
	"github.com/tanema/cfront/src/types"
)

// UnaryExpression is a prefix operator. Only constant operands are supported;
// they are folded while lowering.
type UnaryExpression struct {
	Operator string
	Operand  Expression
}

func (expr *UnaryExpression) Lower(scope Scope) (LoweredExpression, error) {
	operand, err := expr.Operand.Lower(scope)
	if err != nil {
		return nil, err
	}
	switch konst := operand.(type) {
	case *IntegerConstant:
		return foldInteger(scope.TypeSystem(), expr.Operator, konst)
	case *FloatConstant:
		switch expr.Operator {
		case "-":
			return &FloatConstant{Value: -konst.Value, Single: konst.Single}, nil
		case "+":
			return konst, nil
		case "!":
			return NewIntegerConstant(types.KindInt32, boolInt(konst.Value == 0)), nil
		}
	}
	return nil, &lerrors.WipError{Feature: fmt.Sprintf("unary operator %v", expr.Operator)}
}

func (expr *UnaryExpression) ExpressionType(scope Scope) (types.Type, error) {
	lowered, err := expr.Lower(scope)
	if err != nil {
		return nil, err
	}
	return lowered.ExpressionType(scope)
}

// foldInteger applies the integer promotions to the operand before folding, so
// -(unsigned char)1 is an int.
func foldInteger(ts types.System, op string, konst *IntegerConstant) (LoweredExpression, error) {
	kind := konst.Kind
	if prim, isPrim := kindType(ts, kind).(*types.Primitive); isPrim && prim.Size() < 4 {
		kind = types.KindInt32
	}
	switch op {
	case "-":
		return NewIntegerConstant(kind, -konst.Value), nil
	case "+":
		return NewIntegerConstant(kind, konst.Value), nil
	case "~":
		return NewIntegerConstant(kind, ^konst.Value), nil
	case "!":
		return NewIntegerConstant(types.KindInt32, boolInt(konst.Value == 0)), nil
	default:
		return nil, &lerrors.WipError{Feature: fmt.Sprintf("unary operator %v", op)}
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
