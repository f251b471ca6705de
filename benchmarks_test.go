package cfront

import (
	"testing"

	"github.com/tanema/cfront/src/conf"
)

func BenchmarkArithmeticUnit(b *testing.B) {
	src := `
int a = 1;
unsigned char c = 200;
double d = 0.5;
c += a * 100;
d = d * a + c / 3;
long r = (a << 4) | (c & 15) ^ 3;
_Bool t = d > r && a != 0 || c < 10;
`
	for n := 0; n < b.N; n++ {
		if _, err := String("bench.c", src); err != nil {
			panic(err)
		}
	}
}

func BenchmarkCondition(b *testing.B) {
	cfg := conf.Default()
	cfg.Preprocessor.Macros["VERSION"] = "(MAJOR * 100 + MINOR)"
	cfg.Preprocessor.Macros["MAJOR"] = "2"
	cfg.Preprocessor.Macros["MINOR"] = "17"
	for n := 0; n < b.N; n++ {
		if _, err := Condition("defined(MAJOR) && VERSION >= 200 ? 1 : UNKNOWN", cfg); err != nil {
			panic(err)
		}
	}
}
