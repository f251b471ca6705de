// Package lerrors are a unified errors package for lexing, parsing, compiling,
// preprocessing and running so that they can be formatted in a unified way and
// handled in a unified way.
package lerrors

import (
	"fmt"
)

type (
	// ErrorKind is an enum to describe where the error originates from.
	ErrorKind int
	// Error captures positioned errors in cfront. It distinguishes between lexer,
	// parser, compiler, preprocessor and runtime errors and will format them
	// accordingly.
	Error struct {
		Line     int64
		Column   int64
		Kind     ErrorKind
		Err      error
		Filename string
	}
	// UnsupportedOperatorError is raised when a binary expression carries an
	// operator token that has no BinaryOperator. It marks a language feature
	// that is not implemented yet rather than a syntax error.
	UnsupportedOperatorError struct {
		Operator string
	}
	// ConversionError is raised when a value of type From cannot be implicitly
	// converted to type To.
	ConversionError struct {
		From string
		To   string
	}
	// OperandError is raised when the operand types of a binary operator are not
	// valid for it, like a float operand of a shift.
	OperandError struct {
		Operator string
		Left     string
		Right    string
	}
	// WipError marks any other feature that is not supported, yet.
	WipError struct {
		Feature string
	}
)

const (
	// LexerErr is an error that originates from the lexer.
	LexerErr ErrorKind = iota
	// ParserErr is an error that originates from the parser.
	ParserErr
	// CompileErr is an error raised while lowering or emitting.
	CompileErr
	// PreprocessorErr is an error raised while evaluating a conditional expression.
	PreprocessorErr
	// RuntimeErr is an error that originates from the vm.
	RuntimeErr
)

func (err *Error) Error() string {
	switch err.Kind {
	case LexerErr:
		return fmt.Sprintf("Lex Error: %v", err.Err)
	case ParserErr:
		return fmt.Sprintf("Parse Error: %s:%v:%v %v", err.Filename, err.Line, err.Column, err.Err)
	case CompileErr:
		return fmt.Sprintf("Compile Error: %s:%v:%v %v", err.Filename, err.Line, err.Column, err.Err)
	case PreprocessorErr:
		return fmt.Sprintf("Preprocessor Error: %v", err.Err)
	case RuntimeErr:
		return fmt.Sprintf("Runtime Error: %s %v", err.Filename, err.Err)
	default:
		return err.Err.Error()
	}
}

// Unwrap exposes the underlying error for errors.Is and errors.As.
func (err *Error) Unwrap() error { return err.Err }

func (err *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("binary operator not supported, yet: %s", err.Operator)
}

func (err *ConversionError) Error() string {
	return fmt.Sprintf("conversion from %s to %s is not supported", err.From, err.To)
}

func (err *OperandError) Error() string {
	return fmt.Sprintf("invalid operands to binary %s (have %s and %s)", err.Operator, err.Left, err.Right)
}

func (err *WipError) Error() string {
	return fmt.Sprintf("%s not supported, yet", err.Feature)
}
