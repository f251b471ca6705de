package ir

import (
	"fmt"

	"github.com/tanema/cfront/src/ast"
	"github.com/tanema/cfront/src/lerrors"
	"github.com/tanema/cfront/src/types"
)

type (
	// Expression is an IR node that has not been lowered. Lowering is a pure
	// rewrite: it never mutates the receiver.
	Expression interface {
		Lower(scope Scope) (LoweredExpression, error)
		ExpressionType(scope Scope) (types.Type, error)
	}
	// LoweredExpression is an expression that is ready to be emitted. EmitTo
	// leaves exactly one value on the stack, except for assignments which leave
	// none.
	LoweredExpression interface {
		Expression
		EmitTo(scope EmitScope) error
	}
)

// ToIntermediate converts a syntax tree expression into its IR node,
// converting operands recursively.
func ToIntermediate(expr ast.Expression) (Expression, error) {
	switch node := expr.(type) {
	case *ast.IntegerLiteral:
		return NewIntegerLiteral(node), nil
	case *ast.FloatLiteral:
		return &FloatConstant{Value: node.Value, Single: node.Single}, nil
	case *ast.Identifier:
		return &VariableExpression{Name: node.Name}, nil
	case *ast.BinaryExpression:
		return NewBinaryOperatorExpressionFromAST(node)
	case *ast.UnaryExpression:
		operand, err := ToIntermediate(node.Operand)
		if err != nil {
			return nil, err
		}
		return &UnaryExpression{Operator: node.Operator, Operand: operand}, nil
	case *ast.AssignmentInitializer:
		inner, err := ToIntermediate(node.Expression)
		if err != nil {
			return nil, err
		}
		return &CompoundObjectFieldInitializer{Inner: inner, Designation: node.Designation}, nil
	case *ast.CompoundLiteralExpression:
		lit := &CompoundLiteralExpression{TypeName: node.Type}
		for _, entry := range node.Initializers {
			init, err := ToIntermediate(entry)
			if err != nil {
				return nil, err
			}
			lit.Initializers = append(lit.Initializers, init.(*CompoundObjectFieldInitializer))
		}
		return lit, nil
	default:
		return nil, &lerrors.WipError{Feature: fmt.Sprintf("expression %T", expr)}
	}
}

// Compile lowers expr and emits it into the scope's method.
func Compile(scope EmitScope, expr Expression) (types.Type, error) {
	lowered, err := expr.Lower(scope)
	if err != nil {
		return nil, err
	}
	typ, err := lowered.ExpressionType(scope)
	if err != nil {
		return nil, err
	}
	return typ, lowered.EmitTo(scope)
}

// LeavesValue reports whether emitting a lowered expression pushes a value.
func LeavesValue(expr LoweredExpression) bool {
	_, isAssign := expr.(*AssignmentExpression)
	return !isAssign
}
