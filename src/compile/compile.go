// Package compile drives a translation unit through lowering and emission. A
// unit is compiled into a single method whose locals are the declared
// variables and whose body is the unit's statements in order.
package compile

import (
	"errors"
	"fmt"
	"io"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/tanema/cfront/src/ast"
	"github.com/tanema/cfront/src/bytecode"
	"github.com/tanema/cfront/src/ir"
	"github.com/tanema/cfront/src/lerrors"
	"github.com/tanema/cfront/src/parse"
	"github.com/tanema/cfront/src/types"
)

// DefaultName is the method name used for a compiled unit.
const DefaultName = "main"

// Compiler compiles statements one at a time into the same method, so that
// declarations stay visible to later statements.
type Compiler struct {
	filename string
	scope    *ir.FunctionScope
}

// New creates a compiler emitting into a fresh method.
func New(filename, name string, ts types.System) *Compiler {
	return &Compiler{
		filename: filename,
		scope:    ir.NewFunctionScope(ts, ir.NewMethod(filename, name)),
	}
}

// File is a helper function around Unit to open and close a file automatically.
func File(path string, ts types.System) (*ir.Method, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()
	return Unit(path, src, ts)
}

// Unit parses and compiles a whole translation unit.
func Unit(filename string, src io.Reader, ts types.System) (*ir.Method, error) {
	stmts, err := parse.Parse(filename, src)
	if err != nil {
		return nil, err
	}
	return Statements(filename, DefaultName, stmts, ts)
}

// Statements compiles stmts into a method terminated by RET. Any failure
// discards the method.
func Statements(filename, name string, stmts []ast.Statement, ts types.System) (*ir.Method, error) {
	c := New(filename, name, ts)
	for _, stmt := range stmts {
		if err := c.Statement(stmt); err != nil {
			return nil, err
		}
	}
	return c.Finish(), nil
}

// Method is the method being compiled into.
func (c *Compiler) Method() *ir.Method { return c.scope.Method() }

// Scope is the scope statements are compiled in.
func (c *Compiler) Scope() *ir.FunctionScope { return c.scope }

// Finish terminates the method.
func (c *Compiler) Finish() *ir.Method {
	method := c.scope.Method()
	method.Code(bytecode.I(bytecode.RET))
	return method
}

// Statement compiles a single statement. When it fails the method is left as
// it was before the statement.
func (c *Compiler) Statement(stmt ast.Statement) error {
	method := c.scope.Method()
	codeMark, localMark := len(method.ByteCodes), len(method.Locals)
	if err := c.statement(stmt); err != nil {
		method.ByteCodes = method.ByteCodes[:codeMark]
		method.Locals = method.Locals[:localMark]
		return c.compileErr(stmt, err)
	}
	return nil
}

func (c *Compiler) statement(stmt ast.Statement) error {
	switch node := stmt.(type) {
	case *ast.StructDefinition:
		_, err := c.scope.DeclareStruct(node)
		return err
	case *ast.Declaration:
		if _, err := c.scope.DeclareLocal(node.Name, node.Type); err != nil {
			return err
		} else if node.Init == nil {
			return nil
		}
		init, err := ir.ToIntermediate(node.Init)
		if err != nil {
			return err
		}
		assign := ir.NewBinaryOperatorExpression(&ir.VariableExpression{Name: node.Name}, ir.Assign, init)
		return c.expression(assign)
	case *ast.ExpressionStatement:
		expr, err := ir.ToIntermediate(node.Expression)
		if err != nil {
			return err
		}
		return c.expression(expr)
	default:
		return &lerrors.WipError{Feature: fmt.Sprintf("statement %T", stmt)}
	}
}

// Evaluate compiles an expression statement and leaves its value on the
// stack. The returned type is nil when the expression leaves no value, like an
// assignment. When it fails the method is left as it was.
func (c *Compiler) Evaluate(stmt *ast.ExpressionStatement) (types.Type, error) {
	method := c.scope.Method()
	codeMark := len(method.ByteCodes)
	expr, err := ir.ToIntermediate(stmt.Expression)
	if err != nil {
		return nil, c.compileErr(stmt, err)
	}
	typ, leaves, err := c.emit(expr)
	if err != nil {
		method.ByteCodes = method.ByteCodes[:codeMark]
		return nil, c.compileErr(stmt, err)
	} else if !leaves {
		return nil, nil
	}
	return typ, nil
}

// expression lowers and emits expr, dropping any value it leaves behind.
func (c *Compiler) expression(expr ir.Expression) error {
	_, leaves, err := c.emit(expr)
	if err != nil {
		return err
	} else if leaves {
		c.scope.Method().Code(bytecode.I(bytecode.POP))
	}
	return nil
}

func (c *Compiler) emit(expr ir.Expression) (types.Type, bool, error) {
	lowered, err := expr.Lower(c.scope)
	if err != nil {
		return nil, false, err
	}
	typ, err := lowered.ExpressionType(c.scope)
	if err != nil {
		return nil, false, err
	} else if err := lowered.EmitTo(c.scope); err != nil {
		return nil, false, pkgerrors.Wrap(err, "emit")
	}
	return typ, ir.LeavesValue(lowered), nil
}

func (c *Compiler) compileErr(stmt ast.Statement, err error) error {
	var cErr *lerrors.Error
	if errors.As(err, &cErr) {
		return err
	}
	pos := stmt.Position()
	return &lerrors.Error{
		Kind:     lerrors.CompileErr,
		Filename: c.filename,
		Line:     pos.Line,
		Column:   pos.Column,
		Err:      err,
	}
}
