package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/cfront/src/ast"
	"github.com/tanema/cfront/src/bytecode"
	"github.com/tanema/cfront/src/lerrors"
	"github.com/tanema/cfront/src/parse"
	"github.com/tanema/cfront/src/types"
)

type testLocal struct {
	name string
	typ  func(types.System) types.Type
}

func newTestScope(t *testing.T, locals ...testLocal) *FunctionScope {
	t.Helper()
	ts := types.NewRegistry()
	scope := NewFunctionScope(ts, NewMethod("test.c", "main"))
	for _, lcl := range locals {
		_, err := scope.Method().AddLocal(lcl.name, lcl.typ(ts))
		require.NoError(t, err)
	}
	return scope
}

func local(name string, typ func(types.System) types.Type) testLocal {
	return testLocal{name: name, typ: typ}
}

func toIR(t *testing.T, src string) Expression {
	t.Helper()
	node, err := parse.Expression(src)
	require.NoError(t, err, src)
	expr, err := ToIntermediate(node)
	require.NoError(t, err, src)
	return expr
}

func compileSrc(t *testing.T, scope *FunctionScope, src string) []uint32 {
	t.Helper()
	_, err := Compile(scope, toIR(t, src))
	require.NoError(t, err, src)
	return scope.Method().ByteCodes
}

func intType(ts types.System) types.Type    { return ts.Int32() }
func longType(ts types.System) types.Type   { return ts.Int64() }
func uintType(ts types.System) types.Type   { return ts.UInt32() }
func charType(ts types.System) types.Type   { return ts.SByte() }
func floatType(ts types.System) types.Type  { return ts.Single() }
func doubleType(ts types.System) types.Type { return ts.Double() }
func boolType(ts types.System) types.Type   { return ts.Bool() }

func TestGetOperatorKind(t *testing.T) {
	t.Parallel()
	expected := map[string]BinaryOperator{
		"+": Add, "-": Subtract, "*": Multiply, "=": Assign, "+=": AddAndAssign,
		"-=": SubtractAndAssign, "*=": MultiplyAndAssign, "<<": BitwiseLeftShift,
		">>": BitwiseRightShift, "|": BitwiseOr, "&": BitwiseAnd, "^": BitwiseXor,
		"<<=": BitwiseLeftShiftAndAssign, ">>=": BitwiseRightShiftAndAssign,
		"|=": BitwiseOrAndAssign, "&=": BitwiseAndAndAssign, "^=": BitwiseXorAndAssign,
		">": GreaterThan, "<": LessThan, ">=": GreaterThanOrEqualTo,
		"<=": LessThanOrEqualTo, "==": EqualTo, "!=": NotEqualTo, "&&": LogicalAnd,
		"||": LogicalOr,
	}
	require.Len(t, expected, 25)
	for token, op := range expected {
		actual, err := GetOperatorKind(token)
		require.NoError(t, err, token)
		assert.Equal(t, op, actual, token)
		assert.Equal(t, token, actual.String())
	}

	for _, token := range []string{"%", "/", "**", "%=", "/=", ",", ""} {
		_, err := GetOperatorKind(token)
		var opErr *lerrors.UnsupportedOperatorError
		require.ErrorAs(t, err, &opErr, token)
		assert.Equal(t, token, opErr.Operator)
	}
}

func TestNewBinaryOperatorExpressionFromAST(t *testing.T) {
	t.Parallel()
	node, err := parse.Expression("a % b")
	require.NoError(t, err)
	_, err = NewBinaryOperatorExpressionFromAST(node.(*ast.BinaryExpression))
	var opErr *lerrors.UnsupportedOperatorError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "%", opErr.Operator)

	// nested operands are converted as well
	_, err = ToIntermediate(&ast.BinaryExpression{
		Left:     &ast.Identifier{Name: "a"},
		Operator: "+",
		Right:    &ast.BinaryExpression{Left: &ast.Identifier{Name: "b"}, Operator: "/", Right: &ast.Identifier{Name: "c"}},
	})
	assert.ErrorAs(t, err, &opErr)
}

func TestOperatorFamilies(t *testing.T) {
	t.Parallel()
	compound := map[BinaryOperator]BinaryOperator{
		AddAndAssign:               Add,
		SubtractAndAssign:          Subtract,
		MultiplyAndAssign:          Multiply,
		BitwiseLeftShiftAndAssign:  BitwiseLeftShift,
		BitwiseRightShiftAndAssign: BitwiseRightShift,
		BitwiseOrAndAssign:         BitwiseOr,
		BitwiseAndAndAssign:        BitwiseAnd,
		BitwiseXorAndAssign:        BitwiseXor,
	}
	for op, base := range compound {
		assert.True(t, op.IsCompoundAssignment(), op.String())
		assert.True(t, op.IsAssignment(), op.String())
		assert.Equal(t, base, op.Base(), op.String())
	}
	assert.False(t, Assign.IsCompoundAssignment())
	assert.True(t, Assign.IsAssignment())
	assert.Equal(t, Add, Add.Base())
	assert.True(t, NotEqualTo.IsComparison())
	assert.True(t, LogicalOr.IsLogical())
	assert.True(t, BitwiseXor.IsBitwise())
	assert.True(t, BitwiseRightShift.IsShift())
	assert.False(t, LogicalAnd.IsComparison())
}

func TestCompoundAssignmentLowering(t *testing.T) {
	t.Parallel()
	scope := newTestScope(t, local("a", intType), local("b", intType))
	a, b := &VariableExpression{Name: "a"}, &VariableExpression{Name: "b"}
	for _, op := range []BinaryOperator{
		AddAndAssign, SubtractAndAssign, MultiplyAndAssign, BitwiseLeftShiftAndAssign,
		BitwiseRightShiftAndAssign, BitwiseOrAndAssign, BitwiseAndAndAssign, BitwiseXorAndAssign,
	} {
		compound, err := NewBinaryOperatorExpression(a, op, b).Lower(scope)
		require.NoError(t, err, op.String())
		rewritten, err := NewBinaryOperatorExpression(a, Assign, NewBinaryOperatorExpression(a, op.Base(), b)).Lower(scope)
		require.NoError(t, err, op.String())
		assert.Equal(t, rewritten, compound, op.String())

		relowered, err := compound.Lower(scope)
		require.NoError(t, err)
		assert.Equal(t, compound, relowered, op.String())

		assign, isAssign := compound.(*AssignmentExpression)
		require.True(t, isAssign, op.String())
		assert.Same(t, a, assign.Target)
	}
}

func TestCompoundAssignmentEmission(t *testing.T) {
	t.Parallel()
	scope := newTestScope(t, local("a", intType), local("b", intType))
	assert.Equal(t, []uint32{
		bytecode.IA(bytecode.LDLOC, 0),
		bytecode.IA(bytecode.LDLOC, 1),
		bytecode.I(bytecode.ADD),
		bytecode.IA(bytecode.STLOC, 0),
	}, compileSrc(t, scope, "a += b"))
}

func TestArithmeticEmission(t *testing.T) {
	t.Parallel()
	locals := []testLocal{
		local("i", intType), local("l", longType), local("u", uintType),
		local("c", charType), local("f", floatType), local("d", doubleType),
	}
	testcases := []struct {
		src      string
		typ      func(types.System) types.Type
		expected []uint32
	}{
		{"i - c", intType, []uint32{
			bytecode.IA(bytecode.LDLOC, 0), bytecode.IA(bytecode.LDLOC, 3), bytecode.I(bytecode.CONV_I4),
			bytecode.I(bytecode.SUB),
		}},
		{"i * l", longType, []uint32{
			bytecode.IA(bytecode.LDLOC, 0), bytecode.I(bytecode.CONV_I8), bytecode.IA(bytecode.LDLOC, 1),
			bytecode.I(bytecode.MUL),
		}},
		{"f + d", doubleType, []uint32{
			bytecode.IA(bytecode.LDLOC, 4), bytecode.I(bytecode.CONV_R8), bytecode.IA(bytecode.LDLOC, 5),
			bytecode.I(bytecode.ADD),
		}},
		{"i >> 2", intType, []uint32{
			bytecode.IA(bytecode.LDLOC, 0), bytecode.IsA(bytecode.LDI, 2), bytecode.I(bytecode.SHR),
		}},
		{"u >> 2", uintType, []uint32{
			bytecode.IA(bytecode.LDLOC, 2), bytecode.IsA(bytecode.LDI, 2), bytecode.I(bytecode.CONV_U4),
			bytecode.I(bytecode.SHR_UN),
		}},
		{"c << 1", intType, []uint32{
			bytecode.IA(bytecode.LDLOC, 3), bytecode.I(bytecode.CONV_I4), bytecode.IsA(bytecode.LDI, 1),
			bytecode.I(bytecode.SHL),
		}},
		{"i | u", uintType, []uint32{
			bytecode.IA(bytecode.LDLOC, 0), bytecode.I(bytecode.CONV_U4), bytecode.IA(bytecode.LDLOC, 2),
			bytecode.I(bytecode.OR),
		}},
		{"u + 1u", uintType, []uint32{
			bytecode.IA(bytecode.LDLOC, 2), bytecode.IsA(bytecode.LDI, 1), bytecode.I(bytecode.ADD),
			bytecode.I(bytecode.CONV_U4),
		}},
		{"u * u", uintType, []uint32{
			bytecode.IA(bytecode.LDLOC, 2), bytecode.IA(bytecode.LDLOC, 2), bytecode.I(bytecode.MUL),
			bytecode.I(bytecode.CONV_U4),
		}},
		{"u << 1", uintType, []uint32{
			bytecode.IA(bytecode.LDLOC, 2), bytecode.IsA(bytecode.LDI, 1), bytecode.I(bytecode.CONV_U4),
			bytecode.I(bytecode.SHL), bytecode.I(bytecode.CONV_U4),
		}},
		{"c & c", intType, []uint32{
			bytecode.IA(bytecode.LDLOC, 3), bytecode.I(bytecode.CONV_I4), bytecode.IA(bytecode.LDLOC, 3),
			bytecode.I(bytecode.CONV_I4), bytecode.I(bytecode.AND),
		}},
		{"l ^ 8589934592", longType, []uint32{
			bytecode.IA(bytecode.LDLOC, 1), bytecode.IA(bytecode.LDC, 0), bytecode.I(bytecode.XOR),
		}},
		{"d = i + 1.5", doubleType, []uint32{
			bytecode.IA(bytecode.LDLOC, 0), bytecode.I(bytecode.CONV_R8), bytecode.IA(bytecode.LDC, 0),
			bytecode.I(bytecode.ADD), bytecode.IA(bytecode.STLOC, 5),
		}},
		{"c = i + l", charType, []uint32{
			bytecode.IA(bytecode.LDLOC, 0), bytecode.I(bytecode.CONV_I8), bytecode.IA(bytecode.LDLOC, 1),
			bytecode.I(bytecode.ADD), bytecode.I(bytecode.CONV_I1), bytecode.IA(bytecode.STLOC, 3),
		}},
	}
	for _, tc := range testcases {
		scope := newTestScope(t, locals...)
		expr := toIR(t, tc.src)
		typ, err := expr.ExpressionType(scope)
		require.NoError(t, err, tc.src)
		assert.Same(t, tc.typ(scope.TypeSystem()), typ, tc.src)
		assert.Equal(t, tc.expected, compileSrc(t, scope, tc.src), tc.src)
	}
}

func TestArithmeticOperandErrors(t *testing.T) {
	t.Parallel()
	for _, src := range []string{"f << 1", "i & d", "d ^ d", "i | 1.5f"} {
		scope := newTestScope(t, local("i", intType), local("f", floatType), local("d", doubleType))
		_, err := Compile(scope, toIR(t, src))
		var opErr *lerrors.OperandError
		assert.ErrorAs(t, err, &opErr, src)
	}
}

func TestComparisonEmission(t *testing.T) {
	t.Parallel()
	not := []uint32{bytecode.IsA(bytecode.LDI, 0), bytecode.I(bytecode.CEQ)}
	testcases := []struct {
		src      string
		operands []uint32
		ops      []uint32
	}{
		{"a == b", nil, []uint32{bytecode.I(bytecode.CEQ)}},
		{"a != b", nil, append([]uint32{bytecode.I(bytecode.CEQ)}, not...)},
		{"a > b", nil, []uint32{bytecode.I(bytecode.CGT)}},
		{"a < b", nil, []uint32{bytecode.I(bytecode.CLT)}},
		{"a >= b", nil, append([]uint32{bytecode.I(bytecode.CLT)}, not...)},
		{"a <= b", nil, append([]uint32{bytecode.I(bytecode.CGT)}, not...)},
		{"u > v", []uint32{bytecode.IA(bytecode.LDLOC, 2), bytecode.IA(bytecode.LDLOC, 3)}, []uint32{bytecode.I(bytecode.CGT_UN)}},
		{"u < v", []uint32{bytecode.IA(bytecode.LDLOC, 2), bytecode.IA(bytecode.LDLOC, 3)}, []uint32{bytecode.I(bytecode.CLT_UN)}},
		{"u >= v", []uint32{bytecode.IA(bytecode.LDLOC, 2), bytecode.IA(bytecode.LDLOC, 3)}, append([]uint32{bytecode.I(bytecode.CLT_UN)}, not...)},
		{"u <= v", []uint32{bytecode.IA(bytecode.LDLOC, 2), bytecode.IA(bytecode.LDLOC, 3)}, append([]uint32{bytecode.I(bytecode.CGT_UN)}, not...)},
		{"a < u", []uint32{bytecode.IA(bytecode.LDLOC, 0), bytecode.I(bytecode.CONV_U4), bytecode.IA(bytecode.LDLOC, 2)}, []uint32{bytecode.I(bytecode.CLT_UN)}},
	}
	for _, tc := range testcases {
		scope := newTestScope(t, local("a", intType), local("b", intType), local("u", uintType), local("v", uintType))
		operands := tc.operands
		if operands == nil {
			operands = []uint32{bytecode.IA(bytecode.LDLOC, 0), bytecode.IA(bytecode.LDLOC, 1)}
		}
		expr := toIR(t, tc.src)
		typ, err := expr.ExpressionType(scope)
		require.NoError(t, err)
		assert.Same(t, scope.TypeSystem().Bool(), typ, tc.src)
		assert.Equal(t, append(operands, tc.ops...), compileSrc(t, scope, tc.src), tc.src)
	}
}

func TestLogicalEmission(t *testing.T) {
	t.Parallel()
	scope := newTestScope(t, local("a", intType), local("b", intType))
	assert.Equal(t, []uint32{
		bytecode.IA(bytecode.LDLOC, 0),
		bytecode.IsA(bytecode.BRFALSE, 4),
		bytecode.IA(bytecode.LDLOC, 1),
		bytecode.IsA(bytecode.BRFALSE, 2),
		bytecode.IsA(bytecode.LDI, 1),
		bytecode.IsA(bytecode.BR, 1),
		bytecode.IsA(bytecode.LDI, 0),
	}, compileSrc(t, scope, "a && b"))

	scope = newTestScope(t, local("a", intType), local("b", intType))
	assert.Equal(t, []uint32{
		bytecode.IA(bytecode.LDLOC, 0),
		bytecode.IsA(bytecode.BRTRUE, 4),
		bytecode.IA(bytecode.LDLOC, 1),
		bytecode.IsA(bytecode.BRTRUE, 2),
		bytecode.IsA(bytecode.LDI, 0),
		bytecode.IsA(bytecode.BR, 1),
		bytecode.IsA(bytecode.LDI, 1),
	}, compileSrc(t, scope, "a || b"))

	scope = newTestScope(t, local("d", doubleType), local("b", boolType))
	assert.Equal(t, []uint32{
		bytecode.IA(bytecode.LDLOC, 0),
		bytecode.IA(bytecode.LDC, 0),
		bytecode.I(bytecode.CEQ),
		bytecode.IsA(bytecode.LDI, 0),
		bytecode.I(bytecode.CEQ),
		bytecode.IsA(bytecode.BRFALSE, 4),
		bytecode.IA(bytecode.LDLOC, 1),
		bytecode.IsA(bytecode.BRFALSE, 2),
		bytecode.IsA(bytecode.LDI, 1),
		bytecode.IsA(bytecode.BR, 1),
		bytecode.IsA(bytecode.LDI, 0),
	}, compileSrc(t, scope, "d && b"))
	assert.Equal(t, []any{0.0}, scope.Method().Constants)
}

func TestAssignmentEmission(t *testing.T) {
	t.Parallel()
	scope := newTestScope(t, local("a", intType), local("b", longType))
	expr := toIR(t, "a = b = 3")
	typ, err := expr.ExpressionType(scope)
	require.NoError(t, err)
	assert.Same(t, scope.TypeSystem().Int32(), typ)
	assert.Equal(t, []uint32{
		bytecode.IsA(bytecode.LDI, 3),
		bytecode.I(bytecode.CONV_I8),
		bytecode.I(bytecode.DUP),
		bytecode.IA(bytecode.STLOC, 1),
		bytecode.I(bytecode.CONV_I4),
		bytecode.IA(bytecode.STLOC, 0),
	}, compileSrc(t, scope, "a = b = 3"))

	lowered, err := toIR(t, "a = 1").Lower(scope)
	require.NoError(t, err)
	assert.False(t, LeavesValue(lowered))
	lowered, err = toIR(t, "a + 1").Lower(scope)
	require.NoError(t, err)
	assert.True(t, LeavesValue(lowered))
}

func TestLoweringErrors(t *testing.T) {
	t.Parallel()
	testcases := []string{
		"1 = a",
		"a + 1 = 2",
		"a = missing",
		"missing += 1",
		"-a",
	}
	for _, src := range testcases {
		scope := newTestScope(t, local("a", intType))
		_, err := toIR(t, src).Lower(scope)
		assert.Error(t, err, src)
	}
}

func TestIntegerLiteralTypes(t *testing.T) {
	t.Parallel()
	testcases := []struct {
		src   string
		kind  types.PrimitiveKind
		value int64
	}{
		{"1", types.KindInt32, 1},
		{"2147483647", types.KindInt32, 2147483647},
		{"2147483648", types.KindInt64, 2147483648},
		{"0x7fffffff", types.KindInt32, 0x7fffffff},
		{"0x80000000", types.KindUInt32, 0x80000000},
		{"0x100000000", types.KindInt64, 0x100000000},
		{"0xffffffffffffffff", types.KindUInt64, -1},
		{"18446744073709551615", types.KindUInt64, -1},
		{"1u", types.KindUInt32, 1},
		{"4294967296u", types.KindUInt64, 4294967296},
		{"1l", types.KindInt64, 1},
		{"0xffffffffffffffffl", types.KindUInt64, -1},
		{"1ul", types.KindUInt64, 1},
	}
	for _, tc := range testcases {
		expr := toIR(t, tc.src)
		assert.Equal(t, &IntegerConstant{Kind: tc.kind, Value: tc.value}, expr, tc.src)
	}
}

func TestConstantLoads(t *testing.T) {
	t.Parallel()
	scope := newTestScope(t, local("l", longType), local("f", floatType))
	compileSrc(t, scope, "l = 8388607")
	compileSrc(t, scope, "l = -8388608")
	compileSrc(t, scope, "l = 8388608")
	compileSrc(t, scope, "f = 0.1f")
	compileSrc(t, scope, "f = 0.1f")
	assert.Equal(t, []uint32{
		bytecode.IsA(bytecode.LDI, 8388607), bytecode.I(bytecode.CONV_I8), bytecode.IA(bytecode.STLOC, 0),
		bytecode.IsA(bytecode.LDI, -8388608), bytecode.I(bytecode.CONV_I8), bytecode.IA(bytecode.STLOC, 0),
		bytecode.IA(bytecode.LDC, 0), bytecode.I(bytecode.CONV_I8), bytecode.IA(bytecode.STLOC, 0),
		bytecode.IA(bytecode.LDC, 1), bytecode.IA(bytecode.STLOC, 1),
		bytecode.IA(bytecode.LDC, 1), bytecode.IA(bytecode.STLOC, 1),
	}, scope.Method().ByteCodes)
	assert.Equal(t, []any{int64(8388608), float64(float32(0.1))}, scope.Method().Constants)
}

func TestUnaryFolding(t *testing.T) {
	t.Parallel()
	scope := newTestScope(t)
	testcases := []struct {
		src      string
		expected LoweredExpression
	}{
		{"-1", &IntegerConstant{Kind: types.KindInt32, Value: -1}},
		{"+7", &IntegerConstant{Kind: types.KindInt32, Value: 7}},
		{"~0", &IntegerConstant{Kind: types.KindInt32, Value: -1}},
		{"~0u", &IntegerConstant{Kind: types.KindUInt32, Value: 0xffffffff}},
		{"!0", &IntegerConstant{Kind: types.KindInt32, Value: 1}},
		{"!5", &IntegerConstant{Kind: types.KindInt32, Value: 0}},
		{"-2.5", &FloatConstant{Value: -2.5}},
		{"!0.0", &IntegerConstant{Kind: types.KindInt32, Value: 1}},
	}
	for _, tc := range testcases {
		lowered, err := toIR(t, tc.src).Lower(scope)
		require.NoError(t, err, tc.src)
		assert.Equal(t, tc.expected, lowered, tc.src)
	}
	_, err := toIR(t, "~1.5").Lower(scope)
	var wipErr *lerrors.WipError
	assert.ErrorAs(t, err, &wipErr)
}
