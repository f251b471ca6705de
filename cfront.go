package cfront

import (
	"context"
	"strings"
	"time"

	"github.com/tanema/cfront/src/compile"
	"github.com/tanema/cfront/src/conf"
	"github.com/tanema/cfront/src/cpp"
	"github.com/tanema/cfront/src/ir"
	"github.com/tanema/cfront/src/runtime"
	"github.com/tanema/cfront/src/types"
)

// String will simply compile and run C source code, returning the value of
// each declared variable by name.
func String(label, src string) (map[string]any, error) {
	method, err := compile.Unit(label, strings.NewReader(src), types.NewRegistry())
	if err != nil {
		return nil, err
	}
	return run(method)
}

// File will compile and run a C source file.
func File(path string) (map[string]any, error) {
	method, err := compile.File(path, types.NewRegistry())
	if err != nil {
		return nil, err
	}
	return run(method)
}

// Condition evaluates a #if expression with the standard predefined macros and
// the macros of cfg.
func Condition(expr string, cfg *conf.Config) (bool, error) {
	macros, err := cpp.NewConfiguredMacroTable(time.Now(), cfg)
	if err != nil {
		return false, err
	}
	ev := &cpp.Evaluator{Context: macros, Strict: cfg.Preprocessor.StrictConditionals}
	return ev.EvaluateLine(expr)
}

func run(method *ir.Method) (map[string]any, error) {
	locals, err := runtime.New(context.Background()).Eval(method)
	if err != nil {
		return nil, err
	}
	vars := make(map[string]any, len(locals))
	for i, lcl := range method.Locals {
		vars[lcl.Name] = locals[i]
	}
	return vars, nil
}
