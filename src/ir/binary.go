package ir

import (
	"fmt"

	"github.com/tanema/cfront/src/ast"
	"github.com/tanema/cfront/src/types"
)

// BinaryOperatorExpression is an unlowered binary operation. Lowering it
// yields the node of the operator's family.
type BinaryOperatorExpression struct {
	Left     Expression
	Operator BinaryOperator
	Right    Expression
}

// NewBinaryOperatorExpression builds a binary node from IR operands.
func NewBinaryOperatorExpression(left Expression, op BinaryOperator, right Expression) *BinaryOperatorExpression {
	return &BinaryOperatorExpression{Left: left, Operator: op, Right: right}
}

// NewBinaryOperatorExpressionFromAST converts both operands and maps the
// operator token. An unknown token fails here rather than at lowering.
func NewBinaryOperatorExpressionFromAST(node *ast.BinaryExpression) (*BinaryOperatorExpression, error) {
	op, err := GetOperatorKind(node.Operator)
	if err != nil {
		return nil, err
	}
	left, err := ToIntermediate(node.Left)
	if err != nil {
		return nil, err
	}
	right, err := ToIntermediate(node.Right)
	if err != nil {
		return nil, err
	}
	return NewBinaryOperatorExpression(left, op, right), nil
}

// Lower rewrites compound assignments into Assign(Left, Left op Right) and
// lowers the operands of everything else.
func (expr *BinaryOperatorExpression) Lower(scope Scope) (LoweredExpression, error) {
	if expr.Operator.IsCompoundAssignment() {
		return NewBinaryOperatorExpression(
			expr.Left,
			Assign,
			NewBinaryOperatorExpression(expr.Left, expr.Operator.Base(), expr.Right),
		).Lower(scope)
	}

	left, err := expr.Left.Lower(scope)
	if err != nil {
		return nil, err
	}
	right, err := expr.Right.Lower(scope)
	if err != nil {
		return nil, err
	}

	switch {
	case expr.Operator == Assign:
		target, isVar := left.(*VariableExpression)
		if !isVar {
			return nil, fmt.Errorf("expression is not assignable")
		}
		return &AssignmentExpression{Target: target, Value: asValue(right)}, nil
	case expr.Operator.IsComparison():
		return &ComparisonExpression{Left: asValue(left), Operator: expr.Operator, Right: asValue(right)}, nil
	case expr.Operator.IsLogical():
		return &LogicalExpression{Left: asValue(left), Operator: expr.Operator, Right: asValue(right)}, nil
	default:
		return &ArithmeticExpression{Left: asValue(left), Operator: expr.Operator, Right: asValue(right)}, nil
	}
}

// ExpressionType is the type of the lowered node.
func (expr *BinaryOperatorExpression) ExpressionType(scope Scope) (types.Type, error) {
	lowered, err := expr.Lower(scope)
	if err != nil {
		return nil, err
	}
	return lowered.ExpressionType(scope)
}

// asValue turns an assignment used as an operand into its value yielding form.
func asValue(expr LoweredExpression) LoweredExpression {
	if assign, isAssign := expr.(*AssignmentExpression); isAssign {
		return &AssignmentValueExpression{Assignment: assign}
	}
	return expr
}
