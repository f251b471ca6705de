package cpp

import (
	"github.com/tanema/cfront/src/parse"
)

type (
	// Expression is a node of a conditional directive expression. Evaluating a
	// node yields its text, or false when it has none.
	Expression interface {
		EvaluateExpression(ctx MacroContext) (string, bool)
	}
	// IdentifierExpression is an identifier or a number token, kept as written.
	IdentifierExpression struct {
		Identifier string
	}
	// DefinedExpression is defined NAME or defined(NAME).
	DefinedExpression struct {
		Identifier string
	}
	// UnaryExpression is one of ! - + ~ applied to Operand.
	UnaryExpression struct {
		Operator string
		Operand  Expression
	}
	// BinaryExpression is an arithmetic, relational or logical operator.
	BinaryExpression struct {
		Left     Expression
		Operator string
		Right    Expression
	}
	// ConditionalExpression is Condition ? Then : Else.
	ConditionalExpression struct {
		Condition Expression
		Then      Expression
		Else      Expression
	}
)

// EvaluateExpression resolves the identifier as a macro first, then accepts it
// as is when it is an integer literal. Anything else has no value.
func (expr *IdentifierExpression) EvaluateExpression(ctx MacroContext) (string, bool) {
	if text, found := ctx.TryResolveMacro(expr.Identifier); found {
		return text, true
	}
	if parse.IsIntegerLiteral(expr.Identifier) {
		return expr.Identifier, true
	}
	return "", false
}

func (expr *DefinedExpression) EvaluateExpression(ctx MacroContext) (string, bool) {
	return evaluateText(ctx, expr)
}

func (expr *UnaryExpression) EvaluateExpression(ctx MacroContext) (string, bool) {
	return evaluateText(ctx, expr)
}

func (expr *BinaryExpression) EvaluateExpression(ctx MacroContext) (string, bool) {
	return evaluateText(ctx, expr)
}

func (expr *ConditionalExpression) EvaluateExpression(ctx MacroContext) (string, bool) {
	return evaluateText(ctx, expr)
}

func evaluateText(ctx MacroContext, expr Expression) (string, bool) {
	val, err := (&Evaluator{Context: ctx}).value(expr, nil)
	if err != nil {
		return "", false
	}
	return val.String(), true
}
