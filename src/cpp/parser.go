package cpp

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/tanema/cfront/src/lerrors"
	"github.com/tanema/cfront/src/parse"
)

// binaryPriority of the operators allowed in a conditional directive.
var binaryPriority = map[parse.TokenType]int{
	parse.TokenOr:         1,
	parse.TokenAnd:        2,
	parse.TokenBitwiseOr:  3,
	parse.TokenBitwiseXor: 4,
	parse.TokenBitwiseAnd: 5,
	parse.TokenEq:         6,
	parse.TokenNe:         6,
	parse.TokenLt:         7,
	parse.TokenLe:         7,
	parse.TokenGt:         7,
	parse.TokenGe:         7,
	parse.TokenShiftLeft:  8,
	parse.TokenShiftRight: 8,
	parse.TokenAdd:        9,
	parse.TokenMinus:      9,
	parse.TokenMultiply:   10,
	parse.TokenDivide:     10,
	parse.TokenModulo:     10,
}

type exprParser struct {
	lex *parse.Lexer
}

// Parse parses the expression of an #if or #elif directive.
func Parse(line string) (Expression, error) {
	p := &exprParser{lex: parse.NewLexer("<cond>", strings.NewReader(line))}
	tk, err := p.peek()
	if err != nil {
		return nil, err
	} else if tk.Kind == parse.TokenEOS {
		return nil, ppErrorf("#if with no expression")
	}
	expr, err := p.conditional()
	if err != nil {
		return nil, err
	}
	if tk, err := p.peek(); err != nil {
		return nil, err
	} else if tk.Kind != parse.TokenEOS {
		return nil, ppErrorf("missing binary operator before token %q", tk.Text)
	}
	return expr, nil
}

func (p *exprParser) peek() (*parse.Token, error) {
	tk, err := p.lex.Peek()
	if err != nil {
		return nil, wrapLexErr(err)
	}
	return tk, nil
}

func (p *exprParser) next() (*parse.Token, error) {
	tk, err := p.peek()
	if err != nil {
		return nil, err
	} else if tk.Kind != parse.TokenEOS {
		_, _ = p.lex.Next()
	}
	return tk, nil
}

func (p *exprParser) expect(kind parse.TokenType) error {
	tk, err := p.next()
	if err != nil {
		return err
	} else if tk.Kind != kind {
		return ppErrorf("expected %q but found %q", kind, tk.Kind)
	}
	return nil
}

// conditional -> binary(0) ['?' conditional ':' conditional].
func (p *exprParser) conditional() (Expression, error) {
	cond, err := p.binary(0)
	if err != nil {
		return nil, err
	}
	if tk, err := p.peek(); err != nil {
		return nil, err
	} else if tk.Kind != parse.TokenQuestion {
		return cond, nil
	}
	_, _ = p.next()
	then, err := p.conditional()
	if err != nil {
		return nil, err
	} else if err := p.expect(parse.TokenColon); err != nil {
		return nil, err
	}
	els, err := p.conditional()
	if err != nil {
		return nil, err
	}
	return &ConditionalExpression{Condition: cond, Then: then, Else: els}, nil
}

// binary -> unary {binop unary} where binop has a priority higher than limit.
func (p *exprParser) binary(limit int) (Expression, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op, err := p.peek()
		if err != nil {
			return nil, err
		}
		priority, isBinary := binaryPriority[op.Kind]
		if !isBinary || priority <= limit {
			return left, nil
		}
		_, _ = p.next()
		right, err := p.binary(priority)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpression{Left: left, Operator: string(op.Kind), Right: right}
	}
}

// unary -> ('!' | '-' | '+' | '~') unary | primary.
func (p *exprParser) unary() (Expression, error) {
	tk, err := p.peek()
	if err != nil {
		return nil, err
	} else if !tk.IsUnary() {
		return p.primary()
	}
	_, _ = p.next()
	operand, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &UnaryExpression{Operator: string(tk.Kind), Operand: operand}, nil
}

// primary -> NUMBER | NAME | 'defined' NAME | 'defined' '(' NAME ')' | '(' conditional ')'.
func (p *exprParser) primary() (Expression, error) {
	tk, err := p.next()
	if err != nil {
		return nil, err
	}
	switch {
	case tk.Kind == parse.TokenInteger:
		return &IdentifierExpression{Identifier: tk.Text}, nil
	case tk.Kind == parse.TokenFloat:
		return nil, ppErrorf("floating constant in preprocessor expression")
	case tk.Kind == parse.TokenOpenParen:
		expr, err := p.conditional()
		if err != nil {
			return nil, err
		}
		return expr, p.expect(parse.TokenCloseParen)
	case tk.Text == "defined":
		return p.defined()
	case isWord(tk):
		return &IdentifierExpression{Identifier: tk.Text}, nil
	case tk.Kind == parse.TokenEOS:
		return nil, ppErrorf("unexpected end of expression")
	default:
		return nil, ppErrorf("token %q is not valid in preprocessor expressions", tk.Text)
	}
}

func (p *exprParser) defined() (Expression, error) {
	tk, err := p.next()
	if err != nil {
		return nil, err
	}
	paren := tk.Kind == parse.TokenOpenParen
	if paren {
		if tk, err = p.next(); err != nil {
			return nil, err
		}
	}
	if !isWord(tk) {
		return nil, ppErrorf("operator \"defined\" requires an identifier")
	}
	if paren {
		if err := p.expect(parse.TokenCloseParen); err != nil {
			return nil, err
		}
	}
	return &DefinedExpression{Identifier: tk.Text}, nil
}

// isWord is true for identifiers and keywords, which are plain identifiers to
// the preprocessor.
func isWord(tk *parse.Token) bool {
	if tk.Text == "" || tk.Kind == parse.TokenInteger || tk.Kind == parse.TokenFloat {
		return false
	}
	first := rune(tk.Text[0])
	return first == '_' || unicode.IsLetter(first)
}

func wrapLexErr(err error) error {
	var lerr *lerrors.Error
	if errors.As(err, &lerr) {
		return &lerrors.Error{Kind: lerrors.PreprocessorErr, Err: lerr.Err}
	}
	return &lerrors.Error{Kind: lerrors.PreprocessorErr, Err: fmt.Errorf("%w", err)}
}
