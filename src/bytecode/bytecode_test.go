package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytecodeA(t *testing.T) {
	t.Parallel()
	t.Run("iN", func(t *testing.T) {
		t.Parallel()
		code := I(ADD)
		assert.Equal(t, ADD, GetOp(code))
		assert.Equal(t, int64(0), GetA(code))
		assert.Equal(t, TypeN, Kind(code))
	})

	t.Run("iA", func(t *testing.T) {
		t.Parallel()
		code := IA(LDLOC, 300)
		assert.Equal(t, LDLOC, GetOp(code))
		assert.Equal(t, int64(300), GetA(code))
		assert.Equal(t, TypeA, Kind(code))
	})

	t.Run("iA max", func(t *testing.T) {
		t.Parallel()
		code := IA(LDC, 1<<24-1)
		assert.Equal(t, LDC, GetOp(code))
		assert.Equal(t, int64(1<<24-1), GetA(code))
	})

	t.Run("isA", func(t *testing.T) {
		t.Parallel()
		testcases := []int32{0, 1, -1, 300, -300, 1<<23 - 1, -(1 << 23)}
		for _, val := range testcases {
			code := IsA(LDI, val)
			assert.Equal(t, LDI, GetOp(code))
			assert.Equal(t, int64(val), GetsA(code))
			assert.Equal(t, TypesA, Kind(code))
		}
	})
}

func TestToString(t *testing.T) {
	t.Parallel()
	testcases := []struct {
		code     uint32
		expected string
	}{
		{I(ADD), "ADD       "},
		{IA(STLOC, 2), "STLOC      2    "},
		{IsA(BRFALSE, -3), "BRFALSE    -3   "},
		{I(CONV_R8), "CONV_R8   "},
		{uint32(250), "UNKNOWN OPCODE"},
	}
	for _, tc := range testcases {
		assert.Equal(t, tc.expected, ToString(tc.code))
	}
}

func TestIsBranch(t *testing.T) {
	t.Parallel()
	assert.True(t, IsBranch(IsA(BR, 1)))
	assert.True(t, IsBranch(IsA(BRTRUE, 1)))
	assert.True(t, IsBranch(IsA(BRFALSE, 1)))
	assert.False(t, IsBranch(IsA(LDI, 1)))
	assert.Equal(t, "UNDEFINED", Op(250).String())
}
