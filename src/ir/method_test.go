package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/cfront/src/bytecode"
	"github.com/tanema/cfront/src/conf"
	"github.com/tanema/cfront/src/types"
)

func TestMethod_Pools(t *testing.T) {
	t.Parallel()
	ts := types.NewRegistry()
	method := NewMethod("test.c", "main")

	lcl, err := method.AddLocal("a", ts.Int32())
	require.NoError(t, err)
	assert.Equal(t, 0, lcl.Index)
	_, err = method.AddLocal("a", ts.Int64())
	assert.Error(t, err)

	first, err := method.AddConst(int64(1 << 30))
	require.NoError(t, err)
	again, err := method.AddConst(int64(1 << 30))
	require.NoError(t, err)
	float, err := method.AddConst(float64(1 << 30))
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.NotEqual(t, first, float)
	assert.Equal(t, float64(1<<30), method.GetConst(int64(float)))
	assert.Nil(t, method.GetConst(99))

	zero, err := method.AddConst(0.0)
	require.NoError(t, err)
	negZero, err := method.AddConst(math.Copysign(0, -1))
	require.NoError(t, err)
	assert.NotEqual(t, zero, negZero)
	assert.True(t, math.Signbit(method.GetConst(int64(negZero)).(float64)))
	nan, err := method.AddConst(math.NaN())
	require.NoError(t, err)
	nanAgain, err := method.AddConst(math.NaN())
	require.NoError(t, err)
	assert.Equal(t, nan, nanAgain)

	arr := &types.Array{Elem: ts.Int32(), Len: 2}
	idx, err := method.AddType(arr)
	require.NoError(t, err)
	same, err := method.AddType(&types.Array{Elem: ts.Int32(), Len: 2})
	require.NoError(t, err)
	assert.Equal(t, idx, same)
	assert.Equal(t, types.Type(arr), method.GetType(int64(idx)))
	assert.Nil(t, method.GetType(-1))
}

func TestMethod_Loads(t *testing.T) {
	t.Parallel()
	method := NewMethod("test.c", "main")
	require.NoError(t, method.LoadInteger(conf.MAXINLINEINT-1))
	require.NoError(t, method.LoadInteger(conf.MAXINLINEINT))
	require.NoError(t, method.LoadInteger(conf.MININLINEINT))
	require.NoError(t, method.LoadFloat(2))
	assert.Equal(t, []uint32{
		bytecode.IsA(bytecode.LDI, conf.MAXINLINEINT-1),
		bytecode.IA(bytecode.LDC, 0),
		bytecode.IsA(bytecode.LDI, conf.MININLINEINT),
		bytecode.IA(bytecode.LDC, 1),
	}, method.ByteCodes)
	assert.Equal(t, []any{int64(conf.MAXINLINEINT), float64(2)}, method.Constants)
}

func TestMethod_Patch(t *testing.T) {
	t.Parallel()
	method := NewMethod("test.c", "main")
	jmp := method.Code(bytecode.I(bytecode.BRFALSE))
	method.Code(bytecode.I(bytecode.NOP))
	method.Code(bytecode.I(bytecode.NOP))
	require.NoError(t, method.Patch(jmp, method.Label()))
	assert.Equal(t, bytecode.IsA(bytecode.BRFALSE, 2), method.ByteCodes[jmp])
	assert.Error(t, method.Patch(1, 0))
	assert.Error(t, method.Patch(10, 0))
}

func TestMethod_String(t *testing.T) {
	t.Parallel()
	scope := newTestScope(t, local("a", intType), local("d", doubleType))
	compileSrc(t, scope, "d = a > 1 && 2.5")
	listing := scope.Method().String()
	for _, fragment := range []string{
		"main <test.c>",
		"2 locals, 2 constants, 0 types",
		".local 0 int a",
		".local 1 double d",
		"; a",
		"; 2.5",
		"; to ",
		"; d",
	} {
		assert.Contains(t, listing, fragment)
	}
}
