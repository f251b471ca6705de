package runtime

import (
	"errors"
	"fmt"

	"github.com/tanema/cfront/src/bytecode"
	"github.com/tanema/cfront/src/ir"
	"github.com/tanema/cfront/src/lerrors"
)

func newRuntimeErr(method *ir.Method, pc int64, err error) error {
	var cErr *lerrors.Error
	if errors.As(err, &cErr) {
		return cErr
	}
	return &lerrors.Error{
		Kind:     lerrors.RuntimeErr,
		Filename: method.Filename,
		Err:      fmt.Errorf("%v [%v] %s: %w", method.Name, pc, bytecode.GetOp(method.ByteCodes[pc]), err),
	}
}
