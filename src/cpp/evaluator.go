package cpp

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/tanema/cfront/src/conf"
	"github.com/tanema/cfront/src/parse"
)

type (
	// Evaluator computes the value of conditional directive expressions.
	// Identifiers that are neither macros nor integer literals evaluate to 0,
	// unless Strict is set in which case they are an error.
	Evaluator struct {
		Context MacroContext
		Strict  bool
		// signs caches the signedness of each macro for one evaluation.
		signs map[string]bool
	}
	// value is an intmax_t or uintmax_t.
	value struct {
		bits     int64
		unsigned bool
	}
)

// Evaluate reports whether expr is true.
func (ev *Evaluator) Evaluate(expr Expression) (bool, error) {
	val, err := ev.evaluate(expr)
	return val.bits != 0, err
}

// EvaluateLine parses and evaluates the expression of an #if line.
func (ev *Evaluator) EvaluateLine(line string) (bool, error) {
	expr, err := Parse(line)
	if err != nil {
		return false, err
	}
	return ev.Evaluate(expr)
}

// Value computes the integer value of expr. Unsigned results are returned with
// the same bits.
func (ev *Evaluator) Value(expr Expression) (int64, error) {
	val, err := ev.evaluate(expr)
	return val.bits, err
}

// Format computes the value of expr and formats it in decimal. Unsigned
// results carry a u suffix.
func (ev *Evaluator) Format(expr Expression) (string, error) {
	val, err := ev.evaluate(expr)
	if err != nil {
		return "", err
	}
	return val.String(), nil
}

func (ev *Evaluator) evaluate(expr Expression) (value, error) {
	ev.signs = map[string]bool{}
	return ev.value(expr, nil)
}

// value evaluates expr while the macros in expanding are being replaced.
func (ev *Evaluator) value(expr Expression, expanding []string) (value, error) {
	switch node := expr.(type) {
	case *IdentifierExpression:
		return ev.identifier(node, expanding)
	case *DefinedExpression:
		_, found := ev.Context.TryResolveMacro(node.Identifier)
		return boolValue(found), nil
	case *UnaryExpression:
		return ev.unary(node, expanding)
	case *BinaryExpression:
		return ev.binary(node, expanding)
	case *ConditionalExpression:
		cond, err := ev.value(node.Condition, expanding)
		if err != nil {
			return value{}, err
		}
		branch := node.Else
		if cond.bits != 0 {
			branch = node.Then
		}
		val, err := ev.value(branch, expanding)
		if err != nil {
			return value{}, err
		}
		if ev.unsigned(node.Then, expanding) || ev.unsigned(node.Else, expanding) {
			val.unsigned = true
		}
		return val, nil
	default:
		return value{}, ppErrorf("unknown expression %T", expr)
	}
}

func (ev *Evaluator) identifier(node *IdentifierExpression, expanding []string) (value, error) {
	text, found := node.EvaluateExpression(ev.Context)
	if !found {
		if ev.Strict {
			return value{}, ppErrorf("%q is not defined", node.Identifier)
		}
		return value{}, nil
	}
	if parse.IsIntegerLiteral(text) {
		return parseInteger(text)
	}
	if slices.Contains(expanding, node.Identifier) {
		return value{}, ppErrorf("macro %v expands to itself", node.Identifier)
	} else if len(expanding) >= conf.MAXMACRODEPTH {
		return value{}, ppErrorf("macro expansion of %v is nested too deeply", node.Identifier)
	} else if text == "" {
		return value{}, ppErrorf("macro %v expands to an empty expression", node.Identifier)
	}
	expr, err := Parse(text)
	if err != nil {
		return value{}, ppErrorf("in expansion of macro %v: %w", node.Identifier, err)
	}
	return ev.value(expr, append(slices.Clone(expanding), node.Identifier))
}

func (ev *Evaluator) unary(node *UnaryExpression, expanding []string) (value, error) {
	operand, err := ev.value(node.Operand, expanding)
	if err != nil {
		return value{}, err
	}
	switch node.Operator {
	case "!":
		return boolValue(operand.bits == 0), nil
	case "-":
		return value{bits: -operand.bits, unsigned: operand.unsigned}, nil
	case "+":
		return operand, nil
	case "~":
		return value{bits: ^operand.bits, unsigned: operand.unsigned}, nil
	default:
		return value{}, ppErrorf("unknown unary operator %v", node.Operator)
	}
}

func (ev *Evaluator) binary(node *BinaryExpression, expanding []string) (value, error) {
	left, err := ev.value(node.Left, expanding)
	if err != nil {
		return value{}, err
	}
	switch node.Operator {
	case "&&":
		if left.bits == 0 {
			return boolValue(false), nil
		}
		right, err := ev.value(node.Right, expanding)
		return boolValue(right.bits != 0), err
	case "||":
		if left.bits != 0 {
			return boolValue(true), nil
		}
		right, err := ev.value(node.Right, expanding)
		return boolValue(right.bits != 0), err
	}

	right, err := ev.value(node.Right, expanding)
	if err != nil {
		return value{}, err
	}
	unsigned := left.unsigned || right.unsigned
	l, r := left.bits, right.bits
	switch node.Operator {
	case "*":
		return value{bits: l * r, unsigned: unsigned}, nil
	case "/", "%":
		if r == 0 {
			return value{}, ppErrorf("division by zero in preprocessor expression")
		}
		return divide(node.Operator, l, r, unsigned), nil
	case "+":
		return value{bits: l + r, unsigned: unsigned}, nil
	case "-":
		return value{bits: l - r, unsigned: unsigned}, nil
	case "<<", ">>":
		if r < 0 || r >= 64 {
			return value{}, ppErrorf("shift count %v is out of range", r)
		}
		if node.Operator == "<<" {
			return value{bits: l << uint(r), unsigned: left.unsigned}, nil
		} else if left.unsigned {
			return value{bits: int64(uint64(l) >> uint(r)), unsigned: true}, nil
		}
		return value{bits: l >> uint(r)}, nil
	case "<":
		return boolValue(less(l, r, unsigned)), nil
	case ">":
		return boolValue(less(r, l, unsigned)), nil
	case "<=":
		return boolValue(!less(r, l, unsigned)), nil
	case ">=":
		return boolValue(!less(l, r, unsigned)), nil
	case "==":
		return boolValue(l == r), nil
	case "!=":
		return boolValue(l != r), nil
	case "&":
		return value{bits: l & r, unsigned: unsigned}, nil
	case "^":
		return value{bits: l ^ r, unsigned: unsigned}, nil
	case "|":
		return value{bits: l | r, unsigned: unsigned}, nil
	default:
		return value{}, ppErrorf("unknown binary operator %v", node.Operator)
	}
}

// unsigned reports whether expr has an unsigned type without evaluating it,
// so the branch of a conditional that is not taken costs only a walk of its
// tree. Errors are left for evaluation to report.
func (ev *Evaluator) unsigned(expr Expression, expanding []string) bool {
	switch node := expr.(type) {
	case *IdentifierExpression:
		text, found := node.EvaluateExpression(ev.Context)
		if !found {
			return false
		} else if parse.IsIntegerLiteral(text) {
			val, err := parseInteger(text)
			return err == nil && val.unsigned
		} else if slices.Contains(expanding, node.Identifier) || len(expanding) >= conf.MAXMACRODEPTH {
			return false
		} else if sign, cached := ev.signs[node.Identifier]; cached {
			return sign
		}
		expansion, err := Parse(text)
		if err != nil {
			return false
		}
		sign := ev.unsigned(expansion, append(slices.Clone(expanding), node.Identifier))
		if ev.signs == nil {
			ev.signs = map[string]bool{}
		}
		ev.signs[node.Identifier] = sign
		return sign
	case *UnaryExpression:
		return node.Operator != "!" && ev.unsigned(node.Operand, expanding)
	case *BinaryExpression:
		switch node.Operator {
		case "&&", "||", "<", ">", "<=", ">=", "==", "!=":
			return false
		case "<<", ">>":
			return ev.unsigned(node.Left, expanding)
		}
		return ev.unsigned(node.Left, expanding) || ev.unsigned(node.Right, expanding)
	case *ConditionalExpression:
		return ev.unsigned(node.Then, expanding) || ev.unsigned(node.Else, expanding)
	default:
		return false
	}
}

func divide(op string, l, r int64, unsigned bool) value {
	if unsigned {
		if op == "/" {
			return value{bits: int64(uint64(l) / uint64(r)), unsigned: true}
		}
		return value{bits: int64(uint64(l) % uint64(r)), unsigned: true}
	}
	if l == math.MinInt64 && r == -1 {
		if op == "/" {
			return value{bits: l}
		}
		return value{}
	}
	if op == "/" {
		return value{bits: l / r}
	}
	return value{bits: l % r}
}

func less(l, r int64, unsigned bool) bool {
	if unsigned {
		return uint64(l) < uint64(r)
	}
	return l < r
}

func boolValue(b bool) value {
	if b {
		return value{bits: 1}
	}
	return value{}
}

// parseInteger parses a C integer literal. Values that do not fit intmax_t
// and literals with a u suffix are unsigned.
func parseInteger(text string) (value, error) {
	digits := strings.TrimRight(text, "uUlL")
	suffix := strings.ToLower(text[len(digits):])
	if len(digits) > 1 && digits[0] == '0' && digits[1] != 'x' && digits[1] != 'X' {
		digits = "0o" + digits[1:]
	}
	bits, err := strconv.ParseUint(digits, 0, 64)
	if err != nil {
		return value{}, ppErrorf("integer constant %v is too large", text)
	}
	return value{
		bits:     int64(bits),
		unsigned: strings.Contains(suffix, "u") || bits > math.MaxInt64,
	}, nil
}

func (v value) String() string {
	if v.unsigned {
		return fmt.Sprintf("%du", uint64(v.bits))
	}
	return strconv.FormatInt(v.bits, 10)
}
