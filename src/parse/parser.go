package parse

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tanema/cfront/src/ast"
	"github.com/tanema/cfront/src/lerrors"
)

type (
	// Parser is the object that will parse a file into a list of statements
	// ready for the compiler.
	Parser struct {
		lex      *Lexer
		filename string
	}
)

// New creates a new parser that can parse one file at a time.
func New() *Parser {
	return &Parser{}
}

// File is a helper function around Parse to open and close a file automatically.
func File(path string) ([]ast.Statement, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()
	return Parse(path, src)
}

// Parse parses a whole translation unit.
func Parse(filename string, src io.Reader) ([]ast.Statement, error) {
	return New().Parse(filename, src)
}

// Expression parses a single expression with nothing after it. This is mainly
// used by tests and the repl.
func Expression(src string) (ast.Expression, error) {
	p := New()
	p.filename = "<expression>"
	p.lex = NewLexer(p.filename, strings.NewReader(src))
	expr, err := p.expression()
	if err != nil {
		return nil, err
	} else if err := p.next(TokenEOS); err != nil {
		return nil, err
	}
	return expr, nil
}

// Parse will reset the parser and parse all statements in src.
func (p *Parser) Parse(filename string, src io.Reader) ([]ast.Statement, error) {
	p.filename = filename
	p.lex = NewLexer(filename, src)
	stmts := []ast.Statement{}
	for {
		tk, err := p.peek()
		if err != nil {
			return nil, err
		} else if tk.Kind == TokenEOS {
			return stmts, nil
		}
		stmt, err := p.stat()
		if err != nil {
			return nil, err
		} else if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
}

func (p *Parser) parseErr(tk *Token, err error) error {
	if err == nil {
		return nil
	}
	var cErr *lerrors.Error
	if errors.As(err, &cErr) {
		return err
	}
	newErr := &lerrors.Error{
		Kind:     lerrors.ParserErr,
		Filename: p.filename,
		Err:      err,
	}
	if tk != nil {
		newErr.Line = tk.Line
		newErr.Column = tk.Column
	}
	return newErr
}

func (p *Parser) peek() (*Token, error) {
	return p.lex.Peek()
}

func (p *Parser) consumeToken(tt TokenType) (*Token, error) {
	tk, err := p.lex.Next()
	if errors.Is(err, io.EOF) {
		tk, err = &Token{Kind: TokenEOS, LineInfo: p.lex.LineInfo}, nil
	}
	if err != nil {
		return nil, p.parseErr(tk, err)
	} else if tt != tk.Kind {
		return nil, p.parseErr(tk, fmt.Errorf("expected %q but consumed %q", tt, tk.Kind))
	}
	return tk, nil
}

func (p *Parser) next(tt TokenType) error {
	_, err := p.consumeToken(tt)
	return err
}

// case something goes funky.
func (p *Parser) mustnext(tt TokenType) *Token {
	tk, err := p.consumeToken(tt)
	if err != nil {
		panic(err)
	}
	return tk
}

// stat -> ';' | structdef | declaration | expression ';'.
func (p *Parser) stat() (ast.Statement, error) {
	tk, err := p.peek()
	if err != nil {
		return nil, err
	}
	switch {
	case tk.Kind == TokenSemiColon:
		p.mustnext(TokenSemiColon)
		return nil, nil
	case tk.Kind == TokenStruct:
		p.mustnext(TokenStruct)
		name, err := p.consumeToken(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		if ptk, err := p.peek(); err != nil {
			return nil, err
		} else if ptk.Kind == TokenOpenCurly {
			return p.structdef(tk, name)
		}
		typeName, err := p.pointers(ast.TypeName{Base: name.Text, Struct: true})
		if err != nil {
			return nil, err
		}
		return p.declaration(tk, typeName)
	case tk.isTypeKeyword():
		typeName, err := p.typename()
		if err != nil {
			return nil, err
		}
		return p.declaration(tk, typeName)
	default:
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{LineInfo: tk.LineInfo, Expression: expr}, p.next(TokenSemiColon)
	}
}

// structdef -> 'struct' NAME '{' { typename NAME [arraydecl] ';' } '}' ';'.
func (p *Parser) structdef(start, name *Token) (ast.Statement, error) {
	p.mustnext(TokenOpenCurly)
	def := &ast.StructDefinition{LineInfo: start.LineInfo, Name: name.Text}
	for {
		tk, err := p.peek()
		if err != nil {
			return nil, err
		} else if tk.Kind == TokenCloseCurly {
			break
		}
		typeName, err := p.typename()
		if err != nil {
			return nil, err
		}
		fieldName, err := p.consumeToken(TokenIdentifier)
		if err != nil {
			return nil, err
		}
		if typeName, err = p.arraydecl(typeName); err != nil {
			return nil, err
		}
		def.Fields = append(def.Fields, ast.FieldDeclaration{Type: typeName, Name: fieldName.Text})
		if err := p.next(TokenSemiColon); err != nil {
			return nil, err
		}
	}
	p.mustnext(TokenCloseCurly)
	if len(def.Fields) == 0 {
		return nil, p.parseErr(start, fmt.Errorf("struct %s has no members", name.Text))
	}
	return def, p.next(TokenSemiColon)
}

// declaration -> typename NAME [arraydecl] ['=' (expression | initlist)] ';'.
func (p *Parser) declaration(start *Token, typeName ast.TypeName) (ast.Statement, error) {
	name, err := p.consumeToken(TokenIdentifier)
	if err != nil {
		return nil, err
	}
	if typeName, err = p.arraydecl(typeName); err != nil {
		return nil, err
	}
	decl := &ast.Declaration{LineInfo: start.LineInfo, Type: typeName, Name: name.Text}
	if tk, err := p.peek(); err != nil {
		return nil, err
	} else if tk.Kind == TokenAssign {
		p.mustnext(TokenAssign)
		if ptk, err := p.peek(); err != nil {
			return nil, err
		} else if ptk.Kind == TokenOpenCurly {
			inits, err := p.initlist()
			if err != nil {
				return nil, err
			}
			decl.Init = &ast.CompoundLiteralExpression{LineInfo: ptk.LineInfo, Type: typeName, Initializers: inits}
		} else if decl.Init, err = p.expression(); err != nil {
			return nil, err
		}
	}
	return decl, p.next(TokenSemiColon)
}

// typename -> ('struct' NAME | typekeyword {typekeyword}) {'*'}.
func (p *Parser) typename() (ast.TypeName, error) {
	tk, err := p.peek()
	if err != nil {
		return ast.TypeName{}, err
	} else if tk.Kind == TokenStruct {
		p.mustnext(TokenStruct)
		name, err := p.consumeToken(TokenIdentifier)
		if err != nil {
			return ast.TypeName{}, err
		}
		return p.pointers(ast.TypeName{Base: name.Text, Struct: true})
	}
	words := []string{}
	for {
		tk, err := p.peek()
		if err != nil {
			return ast.TypeName{}, err
		} else if !tk.isTypeKeyword() || tk.Kind == TokenStruct {
			break
		}
		words = append(words, p.mustnext(tk.Kind).Text)
	}
	if len(words) == 0 {
		return ast.TypeName{}, p.parseErr(tk, fmt.Errorf("expected type name but found %v", tk.Kind))
	}
	return p.pointers(ast.TypeName{Base: strings.Join(words, " ")})
}

func (p *Parser) pointers(typeName ast.TypeName) (ast.TypeName, error) {
	for {
		tk, err := p.peek()
		if err != nil {
			return typeName, err
		} else if tk.Kind != TokenMultiply {
			return typeName, nil
		}
		p.mustnext(TokenMultiply)
		typeName.Pointers++
	}
}

// arraydecl -> '[' INTEGER ']'.
func (p *Parser) arraydecl(typeName ast.TypeName) (ast.TypeName, error) {
	tk, err := p.peek()
	if err != nil || tk.Kind != TokenOpenBracket {
		return typeName, err
	}
	p.mustnext(TokenOpenBracket)
	size, err := p.consumeToken(TokenInteger)
	if err != nil {
		return typeName, err
	} else if size.IntVal == 0 {
		return typeName, p.parseErr(size, errors.New("array size must be greater than zero"))
	}
	typeName.IsArray = true
	typeName.ArrayLen = int(size.IntVal)
	return typeName, p.next(TokenCloseBracket)
}

func (p *Parser) expression() (ast.Expression, error) {
	return p.expr(0)
}

// where 'binop' is any binary operator with a priority higher than 'limit'.
func (p *Parser) expr(limit int) (ast.Expression, error) {
	var desc ast.Expression
	if tk, err := p.peek(); err != nil {
		return nil, err
	} else if tk.IsUnary() {
		if err = p.next(tk.Kind); err != nil {
			return nil, err
		} else if desc, err = p.expr(unaryPriority); err != nil {
			return nil, err
		}
		desc = &ast.UnaryExpression{LineInfo: tk.LineInfo, Operator: string(tk.Kind), Operand: desc}
	} else if desc, err = p.simpleexp(); err != nil {
		return nil, err
	}
	op, err := p.peek()
	if err != nil {
		return nil, err
	}
	for op.isBinary() && binaryPriority[op.Kind][0] > limit {
		p.mustnext(op.Kind)
		rdesc, err := p.expr(binaryPriority[op.Kind][1])
		if err != nil {
			return nil, err
		}
		desc = &ast.BinaryExpression{LineInfo: op.LineInfo, Left: desc, Operator: string(op.Kind), Right: rdesc}
		op, err = p.peek()
		if err != nil {
			return nil, err
		}
	}
	return desc, nil
}

// simpleexp -> Float | Integer | NAME | '(' expr ')' | '(' typename ')' initlist.
func (p *Parser) simpleexp() (ast.Expression, error) {
	tk, err := p.peek()
	if err != nil {
		return nil, err
	}
	switch tk.Kind {
	case TokenFloat:
		tk := p.mustnext(TokenFloat)
		return &ast.FloatLiteral{
			LineInfo: tk.LineInfo,
			Text:     tk.Text,
			Value:    tk.FloatVal,
			Single:   strings.HasSuffix(strings.ToLower(tk.Text), "f"),
		}, nil
	case TokenInteger:
		tk := p.mustnext(TokenInteger)
		suffix := strings.ToLower(tk.Text[len(strings.TrimRight(tk.Text, "uUlL")):])
		return &ast.IntegerLiteral{
			LineInfo: tk.LineInfo,
			Text:     tk.Text,
			Value:    tk.IntVal,
			Unsigned: strings.Contains(suffix, "u"),
			Long:     strings.Contains(suffix, "l"),
			Decimal:  tk.Text[0] != '0',
		}, nil
	case TokenIdentifier:
		tk := p.mustnext(TokenIdentifier)
		return &ast.Identifier{LineInfo: tk.LineInfo, Name: tk.Text}, nil
	case TokenOpenParen:
		p.mustnext(TokenOpenParen)
		if ptk, err := p.peek(); err != nil {
			return nil, err
		} else if ptk.isTypeKeyword() {
			return p.compoundLiteral(tk)
		}
		desc, err := p.expression()
		if err != nil {
			return nil, err
		}
		return desc, p.next(TokenCloseParen)
	default:
		return nil, p.parseErr(tk, fmt.Errorf("unexpected symbol %v", tk.Kind))
	}
}

// compoundLiteral -> '(' typename [arraydecl] ')' initlist. The open paren has
// already been consumed.
func (p *Parser) compoundLiteral(start *Token) (ast.Expression, error) {
	typeName, err := p.typename()
	if err != nil {
		return nil, err
	} else if typeName, err = p.arraydecl(typeName); err != nil {
		return nil, err
	} else if err := p.next(TokenCloseParen); err != nil {
		return nil, err
	}
	inits, err := p.initlist()
	if err != nil {
		return nil, err
	}
	return &ast.CompoundLiteralExpression{LineInfo: start.LineInfo, Type: typeName, Initializers: inits}, nil
}

// initlist -> '{' [initializer {',' initializer} [',']] '}'.
func (p *Parser) initlist() ([]*ast.AssignmentInitializer, error) {
	if err := p.next(TokenOpenCurly); err != nil {
		return nil, err
	}
	inits := []*ast.AssignmentInitializer{}
	for {
		tk, err := p.peek()
		if err != nil {
			return nil, err
		} else if tk.Kind == TokenCloseCurly {
			break
		}
		entry, err := p.initializer()
		if err != nil {
			return nil, err
		}
		inits = append(inits, entry)
		if tk, err := p.peek(); err != nil {
			return nil, err
		} else if tk.Kind != TokenComma {
			break
		}
		p.mustnext(TokenComma)
	}
	return inits, p.next(TokenCloseCurly)
}

// initializer -> [designation '='] expr.
func (p *Parser) initializer() (*ast.AssignmentInitializer, error) {
	tk, err := p.peek()
	if err != nil {
		return nil, err
	}
	entry := &ast.AssignmentInitializer{LineInfo: tk.LineInfo}
	if tk.Kind == TokenPeriod || tk.Kind == TokenOpenBracket {
		if entry.Designation, err = p.designation(); err != nil {
			return nil, err
		} else if err := p.next(TokenAssign); err != nil {
			return nil, err
		}
	} else if tk.Kind == TokenOpenCurly {
		return nil, p.parseErr(tk, errors.New("nested initializer lists are not supported, use a compound literal"))
	}
	entry.Expression, err = p.expr(assignmentPriority)
	return entry, err
}

// designation -> designator {designator}; designator -> '.' NAME | '[' INTEGER ']'.
func (p *Parser) designation() (*ast.Designation, error) {
	des := &ast.Designation{}
	for {
		tk, err := p.peek()
		if err != nil {
			return nil, err
		}
		switch tk.Kind {
		case TokenPeriod:
			p.mustnext(TokenPeriod)
			name, err := p.consumeToken(TokenIdentifier)
			if err != nil {
				return nil, err
			}
			des.Designators = append(des.Designators, ast.FieldDesignator{Name: name.Text})
		case TokenOpenBracket:
			p.mustnext(TokenOpenBracket)
			index, err := p.consumeToken(TokenInteger)
			if err != nil {
				return nil, err
			}
			des.Designators = append(des.Designators, ast.IndexDesignator{Index: int64(index.IntVal)})
			if err := p.next(TokenCloseBracket); err != nil {
				return nil, err
			}
		default:
			return des, nil
		}
	}
}
