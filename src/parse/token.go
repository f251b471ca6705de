package parse

import (
	"fmt"
	"regexp"

	"github.com/tanema/cfront/src/ast"
)

type (
	// TokenType is the kind of a token. Punctuators use their spelling.
	TokenType string
	// Token is a single lexical unit. Text is always the raw spelling as it
	// appeared in the source.
	Token struct {
		ast.LineInfo
		Kind     TokenType
		Text     string
		IntVal   uint64
		FloatVal float64
	}
)

// Token kinds.
const (
	TokenAdd              TokenType = "+"
	TokenMinus            TokenType = "-"
	TokenMultiply         TokenType = "*"
	TokenDivide           TokenType = "/"
	TokenModulo           TokenType = "%"
	TokenIncrement        TokenType = "++"
	TokenDecrement        TokenType = "--"
	TokenBitwiseAnd       TokenType = "&"
	TokenBitwiseOr        TokenType = "|"
	TokenBitwiseXor       TokenType = "^"
	TokenBitwiseNot       TokenType = "~"
	TokenNot              TokenType = "!"
	TokenShiftLeft        TokenType = "<<"
	TokenShiftRight       TokenType = ">>"
	TokenAnd              TokenType = "&&"
	TokenOr               TokenType = "||"
	TokenAssign           TokenType = "="
	TokenAddAssign        TokenType = "+="
	TokenMinusAssign      TokenType = "-="
	TokenMultiplyAssign   TokenType = "*="
	TokenDivideAssign     TokenType = "/="
	TokenModuloAssign     TokenType = "%="
	TokenShiftLeftAssign  TokenType = "<<="
	TokenShiftRightAssign TokenType = ">>="
	TokenBitwiseAndAssign TokenType = "&="
	TokenBitwiseOrAssign  TokenType = "|="
	TokenBitwiseXorAssign TokenType = "^="
	TokenEq               TokenType = "=="
	TokenNe               TokenType = "!="
	TokenGe               TokenType = ">="
	TokenGt               TokenType = ">"
	TokenLe               TokenType = "<="
	TokenLt               TokenType = "<"
	TokenQuestion         TokenType = "?"
	TokenColon            TokenType = ":"
	TokenComma            TokenType = ","
	TokenPeriod           TokenType = "."
	TokenArrow            TokenType = "->"
	TokenSemiColon        TokenType = ";"
	TokenHash             TokenType = "#"
	TokenOpenParen        TokenType = "("
	TokenCloseParen       TokenType = ")"
	TokenOpenCurly        TokenType = "{"
	TokenCloseCurly       TokenType = "}"
	TokenOpenBracket      TokenType = "["
	TokenCloseBracket     TokenType = "]"
	TokenStruct           TokenType = "struct"
	TokenSigned           TokenType = "signed"
	TokenUnsigned         TokenType = "unsigned"
	TokenChar             TokenType = "char"
	TokenShort            TokenType = "short"
	TokenInt              TokenType = "int"
	TokenLong             TokenType = "long"
	TokenFloatKw          TokenType = "float"
	TokenDouble           TokenType = "double"
	TokenVoid             TokenType = "void"
	TokenBool             TokenType = "_Bool"
	TokenFloat            TokenType = "floating"
	TokenInteger          TokenType = "integer"
	TokenIdentifier       TokenType = "identifier"
	TokenEOS              TokenType = "<EOS>"
)

const (
	assignmentPriority = 1
	unaryPriority      = 12
)

// IntLiteralPattern matches a C integer literal with an optional suffix. The
// macro evaluator uses it to tell literal identifiers apart from names.
var IntLiteralPattern = regexp.MustCompile(`^(0[xX][0-9a-fA-F]+|0[0-7]*|[1-9][0-9]*)([uU](ll|LL|l|L)?|(ll|LL|l|L)[uU]?)?$`)

// left, right priority for binary ops. Assignment is right associative.
var (
	binaryPriority = map[TokenType][2]int{
		TokenAssign:           {assignmentPriority, assignmentPriority - 1},
		TokenAddAssign:        {assignmentPriority, assignmentPriority - 1},
		TokenMinusAssign:      {assignmentPriority, assignmentPriority - 1},
		TokenMultiplyAssign:   {assignmentPriority, assignmentPriority - 1},
		TokenDivideAssign:     {assignmentPriority, assignmentPriority - 1},
		TokenModuloAssign:     {assignmentPriority, assignmentPriority - 1},
		TokenShiftLeftAssign:  {assignmentPriority, assignmentPriority - 1},
		TokenShiftRightAssign: {assignmentPriority, assignmentPriority - 1},
		TokenBitwiseAndAssign: {assignmentPriority, assignmentPriority - 1},
		TokenBitwiseOrAssign:  {assignmentPriority, assignmentPriority - 1},
		TokenBitwiseXorAssign: {assignmentPriority, assignmentPriority - 1},
		TokenOr:               {2, 2},
		TokenAnd:              {3, 3},
		TokenBitwiseOr:        {4, 4},
		TokenBitwiseXor:       {5, 5},
		TokenBitwiseAnd:       {6, 6},
		TokenEq:               {7, 7},
		TokenNe:               {7, 7},
		TokenLt:               {8, 8},
		TokenLe:               {8, 8},
		TokenGt:               {8, 8},
		TokenGe:               {8, 8},
		TokenShiftLeft:        {9, 9},
		TokenShiftRight:       {9, 9},
		TokenAdd:              {10, 10},
		TokenMinus:            {10, 10},
		TokenMultiply:         {11, 11},
		TokenModulo:           {11, 11},
		TokenDivide:           {11, 11},
	}
	keywords = map[string]TokenType{
		string(TokenStruct):   TokenStruct,
		string(TokenSigned):   TokenSigned,
		string(TokenUnsigned): TokenUnsigned,
		string(TokenChar):     TokenChar,
		string(TokenShort):    TokenShort,
		string(TokenInt):      TokenInt,
		string(TokenLong):     TokenLong,
		string(TokenFloatKw):  TokenFloatKw,
		string(TokenDouble):   TokenDouble,
		string(TokenVoid):     TokenVoid,
		string(TokenBool):     TokenBool,
	}
)

// IsIntegerLiteral reports whether text is spelled like a C integer literal.
func IsIntegerLiteral(text string) bool { return IntLiteralPattern.MatchString(text) }

func (tk *Token) String() string {
	switch tk.Kind {
	case TokenFloat:
		return fmt.Sprintf("f%v", tk.FloatVal)
	case TokenInteger:
		return fmt.Sprintf("i%v", tk.IntVal)
	case TokenIdentifier:
		return fmt.Sprintf("<%v>", tk.Text)
	default:
		return string(tk.Kind)
	}
}

// IsUnary reports whether the token can start a prefix operation.
func (tk *Token) IsUnary() bool {
	switch tk.Kind {
	case TokenNot, TokenMinus, TokenAdd, TokenBitwiseNot:
		return true
	default:
		return false
	}
}

func (tk *Token) isBinary() bool {
	_, ok := binaryPriority[tk.Kind]
	return ok
}

func (tk *Token) isTypeKeyword() bool {
	switch tk.Kind {
	case TokenStruct, TokenSigned, TokenUnsigned, TokenChar, TokenShort, TokenInt,
		TokenLong, TokenFloatKw, TokenDouble, TokenVoid, TokenBool:
		return true
	default:
		return false
	}
}
