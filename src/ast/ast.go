// Package ast holds the syntax tree produced by the parser. Nodes are plain
// data; typing and lowering happen in the ir package.
package ast

import (
	"fmt"
	"strings"
)

type (
	// LineInfo is a shared struct that is used for tracking where the behaviour
	// originated from in the sourcecode.
	LineInfo struct {
		Line   int64
		Column int64
	}
	// Node is any syntax tree node.
	Node interface {
		Position() LineInfo
	}
	// Expression is any node that produces a value.
	Expression interface {
		Node
		expressionNode()
	}
	// Statement is any top level construct of a unit.
	Statement interface {
		Node
		statementNode()
	}
	// Designator is a single step of a designation, either .field or [index].
	Designator interface {
		fmt.Stringer
		designatorNode()
	}
)

type (
	// IntegerLiteral is an integer constant with its suffix flags. Value holds
	// the bit pattern.
	IntegerLiteral struct {
		LineInfo
		Text     string
		Value    uint64
		Unsigned bool
		Long     bool
		Decimal  bool
	}
	// FloatLiteral is a floating constant. Single is set by an f suffix.
	FloatLiteral struct {
		LineInfo
		Text   string
		Value  float64
		Single bool
	}
	// Identifier references a variable.
	Identifier struct {
		LineInfo
		Name string
	}
	// BinaryExpression keeps the raw operator token so that unknown operators
	// can be reported with their spelling.
	BinaryExpression struct {
		LineInfo
		Left     Expression
		Operator string
		Right    Expression
	}
	// UnaryExpression is a prefix operator applied to Operand.
	UnaryExpression struct {
		LineInfo
		Operator string
		Operand  Expression
	}
	// CompoundLiteralExpression is (Type){ initializers }.
	CompoundLiteralExpression struct {
		LineInfo
		Type         TypeName
		Initializers []*AssignmentInitializer
	}
	// AssignmentInitializer is a single entry of an initializer list. Designation
	// is nil for positional initializers.
	AssignmentInitializer struct {
		LineInfo
		Expression  Expression
		Designation *Designation
	}
	// Designation is the ordered list of designators before the = of an
	// initializer.
	Designation struct {
		Designators []Designator
	}
	// FieldDesignator is .Name.
	FieldDesignator struct{ Name string }
	// IndexDesignator is [Index].
	IndexDesignator struct{ Index int64 }
)

type (
	// TypeName is a type as written: a base spelling, an optional struct tag,
	// pointer depth and array length.
	TypeName struct {
		Base     string
		Struct   bool
		Pointers int
		ArrayLen int
		IsArray  bool
	}
	// Declaration is a local variable declaration with an optional initializer.
	Declaration struct {
		LineInfo
		Type TypeName
		Name string
		Init Expression
	}
	// FieldDeclaration is a member of a struct definition.
	FieldDeclaration struct {
		Type TypeName
		Name string
	}
	// StructDefinition is struct Name { fields };
	StructDefinition struct {
		LineInfo
		Name   string
		Fields []FieldDeclaration
	}
	// ExpressionStatement is an expression evaluated for its side effects.
	ExpressionStatement struct {
		LineInfo
		Expression Expression
	}
)

// Position returns the line info of the node.
func (li LineInfo) Position() LineInfo { return li }

func (*IntegerLiteral) expressionNode()            {}
func (*FloatLiteral) expressionNode()              {}
func (*Identifier) expressionNode()                {}
func (*BinaryExpression) expressionNode()          {}
func (*UnaryExpression) expressionNode()           {}
func (*CompoundLiteralExpression) expressionNode() {}
func (*AssignmentInitializer) expressionNode()     {}

func (*Declaration) statementNode()         {}
func (*StructDefinition) statementNode()    {}
func (*ExpressionStatement) statementNode() {}

func (FieldDesignator) designatorNode() {}
func (IndexDesignator) designatorNode() {}

func (d FieldDesignator) String() string { return "." + d.Name }
func (d IndexDesignator) String() string { return fmt.Sprintf("[%d]", d.Index) }

func (d *Designation) String() string {
	if d == nil {
		return ""
	}
	parts := make([]string, len(d.Designators))
	for i, des := range d.Designators {
		parts[i] = des.String()
	}
	return strings.Join(parts, "")
}

func (tn TypeName) String() string {
	out := tn.Base
	if tn.Struct {
		out = "struct " + out
	}
	out += strings.Repeat("*", tn.Pointers)
	if tn.IsArray {
		out += fmt.Sprintf("[%d]", tn.ArrayLen)
	}
	return out
}
