package parse

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/tanema/cfront/src/ast"
	"github.com/tanema/cfront/src/lerrors"
)

type (
	// Lexer turns C source text into tokens. It is shared by the parser and the
	// conditional expression parser of the preprocessor.
	Lexer struct {
		filename string
		rdr      *bufio.Reader
		peeked   []*Token
		ast.LineInfo
	}
)

// NewLexer creates a lexer reading from src.
func NewLexer(filename string, src io.Reader) *Lexer {
	return &Lexer{
		filename: filename,
		LineInfo: ast.LineInfo{Line: 1},
		rdr:      bufio.NewReaderSize(src, 4096),
		peeked:   []*Token{},
	}
}

func (lex *Lexer) errf(msg string, data ...any) error {
	return lex.err(fmt.Errorf(msg, data...))
}

func (lex *Lexer) err(err error) error {
	if errors.Is(err, io.EOF) {
		return err
	}
	return &lerrors.Error{
		Filename: lex.filename,
		Kind:     lerrors.LexerErr,
		Line:     lex.Line,
		Column:   lex.Column,
		Err:      err,
	}
}

func (lex *Lexer) peek() rune {
	chs, _ := lex.rdr.Peek(1)
	if len(chs) == 0 {
		return 0
	}
	return rune(chs[0])
}

func (lex *Lexer) peekAt(n int) rune {
	chs, _ := lex.rdr.Peek(n)
	if len(chs) < n {
		return 0
	}
	return rune(chs[n-1])
}

func (lex *Lexer) next() (rune, error) {
	ch, _, err := lex.rdr.ReadRune()
	if err != nil {
		return ch, lex.err(err)
	}
	if ch == '\n' {
		lex.Line++
		lex.Column = 0
	} else {
		lex.Column++
	}
	return ch, err
}

func (lex *Lexer) skipWhitespace() error {
	for {
		if ch := lex.peek(); ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\v' || ch == '\f' {
			if _, err := lex.next(); err != nil {
				return err
			}
			continue
		} else if ch == '/' && lex.peekAt(2) == '/' {
			if err := lex.skipLineComment(); err != nil {
				return err
			}
			continue
		} else if ch == '/' && lex.peekAt(2) == '*' {
			if err := lex.skipBlockComment(); err != nil {
				return err
			}
			continue
		}
		return nil
	}
}

func (lex *Lexer) skipLineComment() error {
	for {
		ch, err := lex.next()
		if err != nil || ch == '\n' {
			return err
		}
	}
}

func (lex *Lexer) skipBlockComment() error {
	if _, err := lex.next(); err != nil {
		return err
	} else if _, err := lex.next(); err != nil {
		return err
	}
	for {
		ch, err := lex.next()
		if errors.Is(err, io.EOF) {
			return lex.errf("unterminated comment")
		} else if err != nil {
			return err
		} else if ch == '*' && lex.peek() == '/' {
			_, err := lex.next()
			return err
		}
	}
}

func (lex *Lexer) tokenVal(tk TokenType) (*Token, error) {
	return &Token{
		Kind:     tk,
		Text:     string(tk),
		LineInfo: ast.LineInfo{Line: lex.Line, Column: lex.Column - int64(len(tk)) + 1},
	}, nil
}

func (lex *Lexer) takeTokenVal(tk TokenType) (*Token, error) {
	_, err := lex.next()
	if err != nil {
		return nil, err
	}
	return lex.tokenVal(tk)
}

// Back pushes a token back onto the lexer. The last token pushed back is the
// next one returned.
func (lex *Lexer) Back(tk *Token) {
	lex.peeked = append(lex.peeked, tk)
}

// Peek returns the next token without consuming it. At the end of the input
// it returns an EOS token.
func (lex *Lexer) Peek() (*Token, error) {
	if len(lex.peeked) == 0 {
		tk, err := lex.Next()
		if err != nil && !errors.Is(err, io.EOF) {
			return &Token{Kind: TokenEOS}, err
		} else if err != nil && errors.Is(err, io.EOF) {
			return &Token{Kind: TokenEOS, LineInfo: lex.LineInfo}, nil
		}
		lex.peeked = append(lex.peeked, tk)
	}
	return lex.peeked[len(lex.peeked)-1], nil
}

// Next consumes the next token. It returns io.EOF at the end of the input.
func (lex *Lexer) Next() (*Token, error) {
	if len(lex.peeked) != 0 {
		top := lex.peeked[len(lex.peeked)-1]
		lex.peeked = lex.peeked[:len(lex.peeked)-1]
		return top, nil
	}
	if err := lex.skipWhitespace(); err != nil {
		return nil, err
	}
	ch, err := lex.next()
	if err != nil {
		return nil, err
	}
	peekCh := lex.peek()
	switch {
	case ch == '+' && peekCh == '+':
		return lex.takeTokenVal(TokenIncrement)
	case ch == '+' && peekCh == '=':
		return lex.takeTokenVal(TokenAddAssign)
	case ch == '+':
		return lex.tokenVal(TokenAdd)
	case ch == '-' && peekCh == '-':
		return lex.takeTokenVal(TokenDecrement)
	case ch == '-' && peekCh == '=':
		return lex.takeTokenVal(TokenMinusAssign)
	case ch == '-' && peekCh == '>':
		return lex.takeTokenVal(TokenArrow)
	case ch == '-':
		return lex.tokenVal(TokenMinus)
	case ch == '*' && peekCh == '=':
		return lex.takeTokenVal(TokenMultiplyAssign)
	case ch == '*':
		return lex.tokenVal(TokenMultiply)
	case ch == '/' && peekCh == '=':
		return lex.takeTokenVal(TokenDivideAssign)
	case ch == '/':
		return lex.tokenVal(TokenDivide)
	case ch == '%' && peekCh == '=':
		return lex.takeTokenVal(TokenModuloAssign)
	case ch == '%':
		return lex.tokenVal(TokenModulo)
	case ch == '<' && peekCh == '<':
		if lex.peekAt(2) == '=' {
			if _, err := lex.next(); err != nil {
				return nil, err
			}
			return lex.takeTokenVal(TokenShiftLeftAssign)
		}
		return lex.takeTokenVal(TokenShiftLeft)
	case ch == '<' && peekCh == '=':
		return lex.takeTokenVal(TokenLe)
	case ch == '<':
		return lex.tokenVal(TokenLt)
	case ch == '>' && peekCh == '>':
		if lex.peekAt(2) == '=' {
			if _, err := lex.next(); err != nil {
				return nil, err
			}
			return lex.takeTokenVal(TokenShiftRightAssign)
		}
		return lex.takeTokenVal(TokenShiftRight)
	case ch == '>' && peekCh == '=':
		return lex.takeTokenVal(TokenGe)
	case ch == '>':
		return lex.tokenVal(TokenGt)
	case ch == '=' && peekCh == '=':
		return lex.takeTokenVal(TokenEq)
	case ch == '=':
		return lex.tokenVal(TokenAssign)
	case ch == '!' && peekCh == '=':
		return lex.takeTokenVal(TokenNe)
	case ch == '!':
		return lex.tokenVal(TokenNot)
	case ch == '&' && peekCh == '&':
		return lex.takeTokenVal(TokenAnd)
	case ch == '&' && peekCh == '=':
		return lex.takeTokenVal(TokenBitwiseAndAssign)
	case ch == '&':
		return lex.tokenVal(TokenBitwiseAnd)
	case ch == '|' && peekCh == '|':
		return lex.takeTokenVal(TokenOr)
	case ch == '|' && peekCh == '=':
		return lex.takeTokenVal(TokenBitwiseOrAssign)
	case ch == '|':
		return lex.tokenVal(TokenBitwiseOr)
	case ch == '^' && peekCh == '=':
		return lex.takeTokenVal(TokenBitwiseXorAssign)
	case ch == '^':
		return lex.tokenVal(TokenBitwiseXor)
	case ch == '~':
		return lex.tokenVal(TokenBitwiseNot)
	case ch == '?':
		return lex.tokenVal(TokenQuestion)
	case ch == ':':
		return lex.tokenVal(TokenColon)
	case ch == ',':
		return lex.tokenVal(TokenComma)
	case ch == ';':
		return lex.tokenVal(TokenSemiColon)
	case ch == '#':
		return lex.tokenVal(TokenHash)
	case ch == '(':
		return lex.tokenVal(TokenOpenParen)
	case ch == ')':
		return lex.tokenVal(TokenCloseParen)
	case ch == '{':
		return lex.tokenVal(TokenOpenCurly)
	case ch == '}':
		return lex.tokenVal(TokenCloseCurly)
	case ch == '[':
		return lex.tokenVal(TokenOpenBracket)
	case ch == ']':
		return lex.tokenVal(TokenCloseBracket)
	case ch == '.' && unicode.IsDigit(peekCh):
		return lex.parseNumber(ch)
	case ch == '.':
		return lex.tokenVal(TokenPeriod)
	case unicode.IsDigit(ch):
		return lex.parseNumber(ch)
	case unicode.IsLetter(ch) || ch == '_':
		return lex.parseIdentifier(ch)
	}
	return nil, lex.errf("unexpected character %v", string(ch))
}

func (lex *Lexer) parseIdentifier(start rune) (*Token, error) {
	linfo := lex.LineInfo
	var ident bytes.Buffer
	if _, err := ident.WriteRune(start); err != nil {
		return nil, err
	}
	for {
		if peekCh := lex.peek(); unicode.IsLetter(peekCh) || unicode.IsDigit(peekCh) || peekCh == '_' {
			if err := lex.writeNext(&ident); err != nil {
				return nil, err
			}
		} else {
			break
		}
	}

	strVal := ident.String()
	if kw, ok := keywords[strVal]; ok {
		return &Token{Kind: kw, Text: strVal, LineInfo: linfo}, nil
	}
	return &Token{
		Kind:     TokenIdentifier,
		Text:     strVal,
		LineInfo: linfo,
	}, nil
}

// parseNumber consumes a preprocessing number and then classifies it as an
// integer or floating constant.
func (lex *Lexer) parseNumber(start rune) (*Token, error) {
	linfo := lex.LineInfo
	var number bytes.Buffer
	if _, err := number.WriteRune(start); err != nil {
		return nil, lex.err(err)
	}
	for {
		ch := lex.peek()
		if ch == '+' || ch == '-' {
			last := number.Bytes()[number.Len()-1]
			isHex := strings.HasPrefix(strings.ToLower(number.String()), "0x")
			if (!isHex && (last == 'e' || last == 'E')) || (isHex && (last == 'p' || last == 'P')) {
				if err := lex.writeNext(&number); err != nil {
					return nil, err
				}
				continue
			}
			break
		} else if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != '.' && ch != '_' {
			break
		} else if err := lex.writeNext(&number); err != nil {
			return nil, err
		}
	}

	text := number.String()
	if IsIntegerLiteral(text) {
		digits := strings.TrimRight(text, "uUlL")
		ivalue, err := strconv.ParseUint(digits, 0, 64)
		if err != nil {
			return nil, lex.err(fmt.Errorf("parse int: %w", errors.Unwrap(err)))
		}
		return &Token{
			Kind:     TokenInteger,
			Text:     text,
			IntVal:   ivalue,
			LineInfo: linfo,
		}, nil
	}

	isHex := strings.HasPrefix(strings.ToLower(text), "0x")
	if (isHex && !strings.ContainsAny(text, "pP")) || (!isHex && !strings.ContainsAny(text, ".eE")) {
		return nil, lex.errf("invalid integer constant %s", text)
	}
	fvalue, err := strconv.ParseFloat(strings.TrimRight(text, "fFlL"), 64)
	if err != nil {
		return nil, lex.errf("malformed number near %s", text)
	}
	return &Token{
		Kind:     TokenFloat,
		Text:     text,
		FloatVal: fvalue,
		LineInfo: linfo,
	}, nil
}

func (lex *Lexer) writeNext(buf *bytes.Buffer) error {
	if ch, err := lex.next(); err != nil {
		return err
	} else if _, err := buf.WriteRune(ch); err != nil {
		return lex.err(err)
	}
	return nil
}
