package ir

import "github.com/tanema/cfront/src/lerrors"

// BinaryOperator is the closed set of binary operators the compiler lowers.
type BinaryOperator int

const (
	// Add is +.
	Add BinaryOperator = iota
	// Subtract is -.
	Subtract
	// Multiply is *.
	Multiply
	// Assign is =.
	Assign
	// AddAndAssign is +=.
	AddAndAssign
	// SubtractAndAssign is -=.
	SubtractAndAssign
	// MultiplyAndAssign is *=.
	MultiplyAndAssign
	// BitwiseLeftShift is <<.
	BitwiseLeftShift
	// BitwiseRightShift is >>, arithmetic for signed and logical for unsigned operands.
	BitwiseRightShift
	// BitwiseOr is |.
	BitwiseOr
	// BitwiseAnd is &.
	BitwiseAnd
	// BitwiseXor is ^.
	BitwiseXor
	// BitwiseLeftShiftAndAssign is <<=.
	BitwiseLeftShiftAndAssign
	// BitwiseRightShiftAndAssign is >>=.
	BitwiseRightShiftAndAssign
	// BitwiseOrAndAssign is |=.
	BitwiseOrAndAssign
	// BitwiseAndAndAssign is &=.
	BitwiseAndAndAssign
	// BitwiseXorAndAssign is ^=.
	BitwiseXorAndAssign
	// GreaterThan is >.
	GreaterThan
	// LessThan is <.
	LessThan
	// GreaterThanOrEqualTo is >=.
	GreaterThanOrEqualTo
	// LessThanOrEqualTo is <=.
	LessThanOrEqualTo
	// EqualTo is ==.
	EqualTo
	// NotEqualTo is !=.
	NotEqualTo
	// LogicalAnd is &&.
	LogicalAnd
	// LogicalOr is ||.
	LogicalOr
)

var operatorTokens = map[string]BinaryOperator{
	"+":   Add,
	"-":   Subtract,
	"*":   Multiply,
	"=":   Assign,
	"+=":  AddAndAssign,
	"-=":  SubtractAndAssign,
	"*=":  MultiplyAndAssign,
	"<<":  BitwiseLeftShift,
	">>":  BitwiseRightShift,
	"|":   BitwiseOr,
	"&":   BitwiseAnd,
	"^":   BitwiseXor,
	"<<=": BitwiseLeftShiftAndAssign,
	">>=": BitwiseRightShiftAndAssign,
	"|=":  BitwiseOrAndAssign,
	"&=":  BitwiseAndAndAssign,
	"^=":  BitwiseXorAndAssign,
	">":   GreaterThan,
	"<":   LessThan,
	">=":  GreaterThanOrEqualTo,
	"<=":  LessThanOrEqualTo,
	"==":  EqualTo,
	"!=":  NotEqualTo,
	"&&":  LogicalAnd,
	"||":  LogicalOr,
}

var operatorNames = func() map[BinaryOperator]string {
	names := make(map[BinaryOperator]string, len(operatorTokens))
	for tk, op := range operatorTokens {
		names[op] = tk
	}
	return names
}()

// GetOperatorKind maps a source token to its operator.
func GetOperatorKind(token string) (BinaryOperator, error) {
	op, found := operatorTokens[token]
	if !found {
		return 0, &lerrors.UnsupportedOperatorError{Operator: token}
	}
	return op, nil
}

func (op BinaryOperator) String() string {
	if name, found := operatorNames[op]; found {
		return name
	}
	return "UNDEFINED"
}

// Base returns the plain operator a compound assignment applies. Every other
// operator is its own base.
func (op BinaryOperator) Base() BinaryOperator {
	switch op {
	case AddAndAssign:
		return Add
	case SubtractAndAssign:
		return Subtract
	case MultiplyAndAssign:
		return Multiply
	case BitwiseLeftShiftAndAssign:
		return BitwiseLeftShift
	case BitwiseRightShiftAndAssign:
		return BitwiseRightShift
	case BitwiseOrAndAssign:
		return BitwiseOr
	case BitwiseAndAndAssign:
		return BitwiseAnd
	case BitwiseXorAndAssign:
		return BitwiseXor
	default:
		return op
	}
}

// IsCompoundAssignment is true for op= forms.
func (op BinaryOperator) IsCompoundAssignment() bool {
	return op != Assign && op.Base() != op
}

// IsAssignment is true for = and every op= form.
func (op BinaryOperator) IsAssignment() bool {
	return op == Assign || op.IsCompoundAssignment()
}

// IsArithmetic is true for + - *.
func (op BinaryOperator) IsArithmetic() bool {
	return op == Add || op == Subtract || op == Multiply
}

// IsBitwise is true for | & ^.
func (op BinaryOperator) IsBitwise() bool {
	return op == BitwiseOr || op == BitwiseAnd || op == BitwiseXor
}

// IsShift is true for << >>.
func (op BinaryOperator) IsShift() bool {
	return op == BitwiseLeftShift || op == BitwiseRightShift
}

// IsComparison is true for the relational and equality operators.
func (op BinaryOperator) IsComparison() bool {
	switch op {
	case GreaterThan, LessThan, GreaterThanOrEqualTo, LessThanOrEqualTo, EqualTo, NotEqualTo:
		return true
	default:
		return false
	}
}

// IsLogical is true for && ||.
func (op BinaryOperator) IsLogical() bool {
	return op == LogicalAnd || op == LogicalOr
}
