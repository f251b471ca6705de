package generate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/cfront/src/bytecode"
	"github.com/tanema/cfront/src/compile"
	cir "github.com/tanema/cfront/src/ir"
	"github.com/tanema/cfront/src/lerrors"
	"github.com/tanema/cfront/src/types"
)

func generateSrc(t *testing.T, src string) string {
	t.Helper()
	method, err := compile.Unit("test.c", strings.NewReader(src), types.NewRegistry())
	require.NoError(t, err)
	mod, err := Module(method)
	require.NoError(t, err)
	return mod.String()
}

func TestModule_Arithmetic(t *testing.T) {
	t.Parallel()
	out := generateSrc(t, `
int a = 1;
unsigned char c;
double d;
c = a + 300;
a <<= 2;
d = a * 1.5;
unsigned int u = 7;
u >> 1;
`)
	for _, fragment := range []string{
		`source_filename = "test.c"`,
		"define void @main()",
		"%a = alloca i32",
		"%c = alloca i8",
		"%d = alloca double",
		"store i32 0, i32* %a",
		"sext i32",
		"zext i32",
		"add i64",
		"trunc i64",
		"shl i64",
		"and i64",
		"sitofp i64",
		"fmul double",
		"lshr i64",
		"ret void",
	} {
		assert.Contains(t, out, fragment)
	}
	assert.NotContains(t, out, "phi")
}

func TestModule_Logical(t *testing.T) {
	t.Parallel()
	out := generateSrc(t, `
int a = 2;
float f = 0.5;
int r = a > 1 && f;
unsigned int x = 1;
int u = x < a;
`)
	for _, fragment := range []string{
		"icmp sgt i64",
		"fcmp oeq double",
		"br i1",
		"phi i64",
		"fpext float",
		"fptrunc double",
		"icmp ult i64",
	} {
		assert.Contains(t, out, fragment)
	}
}

func TestModule_Conversions(t *testing.T) {
	t.Parallel()
	method := cir.NewMethod("conv.c", "conv")
	_, err := method.AddConst(2.5)
	require.NoError(t, err)
	method.ByteCodes = []uint32{
		bytecode.IA(bytecode.LDC, 0), bytecode.I(bytecode.CONV_U2), bytecode.I(bytecode.CONV_R4), bytecode.I(bytecode.POP),
		bytecode.IsA(bytecode.LDI, -1), bytecode.I(bytecode.CONV_I1), bytecode.I(bytecode.CONV_R8), bytecode.I(bytecode.POP),
		bytecode.I(bytecode.RET),
	}
	mod, err := Module(method)
	require.NoError(t, err)
	out := mod.String()
	for _, fragment := range []string{
		"define void @conv()",
		"fptoui double 2.5 to i16",
		"zext i16",
		"uitofp i64",
		"trunc i64 -1 to i8",
		"sext i8",
		"sitofp i64",
	} {
		assert.Contains(t, out, fragment)
	}
}

func TestModule_Errors(t *testing.T) {
	t.Parallel()
	method, err := compile.Unit("test.c", strings.NewReader("struct p { int x; };\nstruct p v = { 1 };"), types.NewRegistry())
	require.NoError(t, err)
	_, err = Module(method)
	var wipErr *lerrors.WipError
	assert.ErrorAs(t, err, &wipErr)

	backward := cir.NewMethod("test.c", "loop")
	backward.ByteCodes = []uint32{bytecode.IsA(bytecode.BR, -1)}
	_, err = Module(backward)
	assert.ErrorAs(t, err, &wipErr)

	underflow := cir.NewMethod("test.c", "underflow")
	underflow.ByteCodes = []uint32{bytecode.I(bytecode.ADD)}
	_, err = Module(underflow)
	var cErr *lerrors.Error
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, lerrors.CompileErr, cErr.Kind)
}
