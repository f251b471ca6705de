package cpp

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/cfront/src/conf"
	"github.com/tanema/cfront/src/lerrors"
)

type mapContext map[string]string

func (ctx mapContext) TryResolveMacro(name string) (string, bool) {
	text, found := ctx[name]
	return text, found
}

func TestIdentifierExpression(t *testing.T) {
	t.Parallel()
	ctx := mapContext{"FOO": "1 + 2", "EMPTY": ""}
	testcases := []struct {
		identifier string
		text       string
		found      bool
	}{
		{"FOO", "1 + 2", true},
		{"EMPTY", "", true},
		{"42", "42", true},
		{"0x1fUL", "0x1fUL", true},
		{"017", "017", true},
		{"BAR", "", false},
		{"1.5", "", false},
		{"089", "", false},
	}
	for _, tc := range testcases {
		text, found := (&IdentifierExpression{Identifier: tc.identifier}).EvaluateExpression(ctx)
		assert.Equal(t, tc.found, found, tc.identifier)
		assert.Equal(t, tc.text, text, tc.identifier)
	}
}

func TestParse(t *testing.T) {
	t.Parallel()
	expr, err := Parse("defined(FOO) && !defined BAR || X ? 1 : 2")
	require.NoError(t, err)
	assert.Equal(t, &ConditionalExpression{
		Condition: &BinaryExpression{
			Left: &BinaryExpression{
				Left:     &DefinedExpression{Identifier: "FOO"},
				Operator: "&&",
				Right:    &UnaryExpression{Operator: "!", Operand: &DefinedExpression{Identifier: "BAR"}},
			},
			Operator: "||",
			Right:    &IdentifierExpression{Identifier: "X"},
		},
		Then: &IdentifierExpression{Identifier: "1"},
		Else: &IdentifierExpression{Identifier: "2"},
	}, expr)

	expr, err = Parse("int + 0x10u")
	require.NoError(t, err)
	assert.Equal(t, &BinaryExpression{
		Left:     &IdentifierExpression{Identifier: "int"},
		Operator: "+",
		Right:    &IdentifierExpression{Identifier: "0x10u"},
	}, expr)

	for _, src := range []string{"", "1 +", "(1", "1 2", "defined", "defined(1)", "defined(X", "1.5", "a = 1", "1 ? 2", "@"} {
		_, err := Parse(src)
		var ppErr *lerrors.Error
		require.ErrorAs(t, err, &ppErr, src)
		assert.Equal(t, lerrors.PreprocessorErr, ppErr.Kind, src)
	}
}

func TestEvaluator_Value(t *testing.T) {
	t.Parallel()
	ctx := mapContext{
		"ONE":     "1",
		"TWO":     "(ONE + ONE)",
		"FOUR":    "TWO * TWO",
		"VERSION": "201112L",
		"BIG":     "0xffffffffffffffff",
		"HAS_ONE": "defined ONE",
	}
	testcases := []struct {
		src      string
		expected int64
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 / 3", 3},
		{"-7 / 2", -3},
		{"-7 % 3", -1},
		{"1 << 4 >> 2", 4},
		{"-16 >> 2", -4},
		{"~0", -1},
		{"!0 + !5", 1},
		{"+3 - -3", 6},
		{"5 & 3 | 8 ^ 1", 9},
		{"1 < 2 == 2 > 1", 1},
		{"3 <= 3 && 4 >= 5", 0},
		{"2 != 2 || 0", 0},
		{"0 ? 7 : 8", 8},
		{"1 ? 2 ? 3 : 4 : 5", 3},
		{"FOUR", 4},
		{"VERSION >= 199901L", 1},
		{"MISSING", 0},
		{"MISSING + ONE", 1},
		{"defined(ONE) + defined MISSING", 1},
		{"HAS_ONE", 1},
		{"BIG > 0", 1},
		{"-1 < 0u", 0},
		{"BIG / 2", 0x7fffffffffffffff},
		{"0 && 1 / 0", 0},
		{"1 || 1 / 0", 1},
		{"017 + 0x1", 16},
	}
	for _, tc := range testcases {
		expr, err := Parse(tc.src)
		require.NoError(t, err, tc.src)
		ev := &Evaluator{Context: ctx}
		actual, err := ev.Value(expr)
		require.NoError(t, err, tc.src)
		assert.Equal(t, tc.expected, actual, tc.src)
	}
}

func TestEvaluator_Format(t *testing.T) {
	t.Parallel()
	ctx := mapContext{"U": "2u", "MINUS": "(0 - 1)"}
	testcases := []struct {
		src      string
		expected string
	}{
		{"0xffffffffffffffff", "18446744073709551615u"},
		{"-1 + 0u", "18446744073709551615u"},
		{"MINUS", "-1"},
		{"1 ? -1 : 0", "-1"},
		{"1 ? -1 : 0u", "18446744073709551615u"},
		{"0 ? U : 3", "3u"},
		{"1 ? 1 : MISSING", "1"},
		{"U < 3", "1"},
		{"U << 1", "4u"},
		{"1 << U", "4"},
	}
	for _, tc := range testcases {
		expr, err := Parse(tc.src)
		require.NoError(t, err, tc.src)
		actual, err := (&Evaluator{Context: ctx}).Format(expr)
		require.NoError(t, err, tc.src)
		assert.Equal(t, tc.expected, actual, tc.src)
	}
}

func TestEvaluator_DeepConditionals(t *testing.T) {
	t.Parallel()
	const depth = 30
	nested := strings.Repeat("1 ? ", depth) + "1" + strings.Repeat(" : 0u", depth)
	actual, err := (&Evaluator{Context: mapContext{}}).Format(mustParse(t, nested))
	require.NoError(t, err)
	assert.Equal(t, "1u", actual)

	ctx := mapContext{"M0": "1"}
	for i := 1; i <= depth; i++ {
		ctx[fmt.Sprintf("M%d", i)] = fmt.Sprintf("(1 ? M%d : M%d)", i-1, i-1)
	}
	ok, err := (&Evaluator{Context: ctx}).EvaluateLine(fmt.Sprintf("M%d", depth))
	require.NoError(t, err)
	assert.True(t, ok)
}

func mustParse(t *testing.T, src string) Expression {
	t.Helper()
	expr, err := Parse(src)
	require.NoError(t, err, src)
	return expr
}

func TestEvaluator_Errors(t *testing.T) {
	t.Parallel()
	ctx := mapContext{
		"SELF":  "SELF + 1",
		"PING":  "PONG",
		"PONG":  "PING",
		"EMPTY": "",
		"BAD":   "1 +",
	}
	testcases := []string{"1 / 0", "1 % (2 - 2)", "1 << 64", "1 >> -1", "SELF", "PING", "EMPTY", "BAD", "99999999999999999999"}
	for _, src := range testcases {
		_, err := (&Evaluator{Context: ctx}).EvaluateLine(src)
		var ppErr *lerrors.Error
		require.ErrorAs(t, err, &ppErr, src)
		assert.Equal(t, lerrors.PreprocessorErr, ppErr.Kind, src)
	}
}

func TestEvaluator_Strict(t *testing.T) {
	t.Parallel()
	ctx := mapContext{"ONE": "1"}
	ev := &Evaluator{Context: ctx, Strict: true}
	ok, err := ev.EvaluateLine("ONE && defined(MISSING) == 0")
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = ev.EvaluateLine("MISSING")
	assert.Error(t, err)

	ok, err = (&Evaluator{Context: ctx}).EvaluateLine("MISSING")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompositeEvaluateExpression(t *testing.T) {
	t.Parallel()
	ctx := mapContext{"TWO": "2"}
	expr, err := Parse("TWO * 21")
	require.NoError(t, err)
	text, found := expr.EvaluateExpression(ctx)
	assert.True(t, found)
	assert.Equal(t, "42", text)

	expr, err = Parse("TWO - 3u")
	require.NoError(t, err)
	text, found = expr.EvaluateExpression(ctx)
	assert.True(t, found)
	assert.Equal(t, "18446744073709551615u", text)

	expr, err = Parse("1 / 0")
	require.NoError(t, err)
	_, found = expr.EvaluateExpression(ctx)
	assert.False(t, found)
}

func TestMacroTable(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, time.March, 5, 9, 7, 3, 0, time.UTC)
	mt := NewMacroTable(now)
	text, found := mt.TryResolveMacro("__DATE__")
	require.True(t, found)
	assert.Equal(t, `"Mar  5 2024"`, text)
	text, _ = mt.TryResolveMacro("__TIME__")
	assert.Equal(t, `"09:07:03"`, text)
	text, _ = mt.TryResolveMacro("__STDC_VERSION__")
	assert.Equal(t, conf.STDCVERSION, text)
	assert.True(t, mt.IsDefined("__STDC__"))

	require.NoError(t, mt.Define("DEBUG", "1"))
	require.NoError(t, mt.Define("DEBUG", " 1 "))
	assert.Error(t, mt.Define("DEBUG", "2"))
	assert.Error(t, mt.Define("__STDC__", "0"))
	assert.Error(t, mt.Define("defined", "1"))
	assert.Error(t, mt.Define("1abc", "1"))
	assert.Error(t, mt.Undefine("__STDC_HOSTED__"))
	require.NoError(t, mt.Undefine("DEBUG"))
	require.NoError(t, mt.Undefine("NEVER"))
	assert.False(t, mt.IsDefined("DEBUG"))

	require.NoError(t, mt.DefineLine("#define  LEVEL  (1 +   2)"))
	text, _ = mt.TryResolveMacro("LEVEL")
	assert.Equal(t, "(1 + 2)", text)
	require.NoError(t, mt.DefineLine("#define FLAG"))
	text, found = mt.TryResolveMacro("FLAG")
	assert.True(t, found)
	assert.Empty(t, text)
	require.NoError(t, mt.DefineLine("# undef FLAG"))
	assert.False(t, mt.IsDefined("FLAG"))

	var wipErr *lerrors.WipError
	assert.ErrorAs(t, mt.DefineLine("#define MAX(a, b) a"), &wipErr)
	for _, line := range []string{"#define", "#undef", "#undef A B", "#include <stdio.h>"} {
		assert.Error(t, mt.DefineLine(line), line)
	}
	assert.Equal(t, []string{"LEVEL", "__DATE__", "__STDC_HOSTED__", "__STDC_VERSION__", "__STDC__", "__TIME__"}, mt.Names())

	ok, err := (&Evaluator{Context: mt}).EvaluateLine("defined(__STDC__) && __STDC_VERSION__ >= 201112L && LEVEL == 3")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewConfiguredMacroTable(t *testing.T) {
	t.Parallel()
	cfg := conf.Default()
	cfg.Preprocessor.Macros["DEBUG"] = "2"
	mt, err := NewConfiguredMacroTable(time.Now(), cfg)
	require.NoError(t, err)
	text, found := mt.TryResolveMacro("DEBUG")
	require.True(t, found)
	assert.Equal(t, "2", text)

	cfg.Preprocessor.Macros["__STDC__"] = "0"
	_, err = NewConfiguredMacroTable(time.Now(), cfg)
	assert.Error(t, err)
}
