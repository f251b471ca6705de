// Package generate translates an emitted method into an LLVM module. The value
// stack only exists at translation time: every instruction consumes and
// produces SSA values, locals live in allocas and stack values that meet at a
// join are merged with phi nodes. Like the vm, integers are carried as i64 and
// floats as double between loads, stores and conversions.
package generate

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"
	"github.com/tanema/cfront/src/bytecode"
	cir "github.com/tanema/cfront/src/ir"
	"github.com/tanema/cfront/src/lerrors"
)

type (
	// stackValue is a value on the simulated stack. Unsigned records how the
	// value has to be widened or converted to a float.
	stackValue struct {
		val      value.Value
		unsigned bool
	}
	// edge is a branch into a block together with the stack at the branch.
	edge struct {
		from  *ir.Block
		stack []stackValue
	}
	// Generator converts a single method into an LLVM function.
	Generator struct {
		method   *cir.Method
		mod      *ir.Module
		fn       *ir.Func
		block    *ir.Block
		locals   []value.Value
		blocks   map[int]*ir.Block
		incoming map[int][]edge
		stack    []stackValue
	}
)

// Module translates method into a module with a single void function named
// after the method.
func Module(method *cir.Method) (*ir.Module, error) {
	g := &Generator{
		method:   method,
		mod:      ir.NewModule(),
		blocks:   map[int]*ir.Block{},
		incoming: map[int][]edge{},
	}
	g.mod.SourceFilename = method.Filename
	if err := g.generate(); err != nil {
		return nil, err
	}
	return g.mod, nil
}

func (g *Generator) generate() error {
	g.fn = g.mod.NewFunc(g.method.Name, types.Void)
	if err := g.splitBlocks(); err != nil {
		return err
	}
	g.block = g.blocks[0]
	for _, lcl := range g.method.Locals {
		typ, err := convType(lcl.Type)
		if err != nil {
			return g.genErr(0, err)
		}
		ptr := g.block.NewAlloca(typ)
		ptr.SetName(lcl.Name)
		g.block.NewStore(zeroValue(typ), ptr)
		g.locals = append(g.locals, ptr)
	}

	for pc, code := range g.method.ByteCodes {
		if err := g.startBlock(pc); err != nil {
			return g.genErr(pc, err)
		} else if err := g.genInstruction(pc, code); err != nil {
			return g.genErr(pc, err)
		}
	}
	end := len(g.method.ByteCodes)
	if err := g.startBlock(end); err != nil {
		return g.genErr(end, err)
	} else if g.block.Term == nil {
		g.block.NewRet(nil)
	}
	return nil
}

// startBlock switches to the block starting at pc, if there is one, falling
// through from the current block when it is not terminated.
func (g *Generator) startBlock(pc int) error {
	block, isLeader := g.blocks[pc]
	if !isLeader || pc == 0 {
		return nil
	}
	if g.block.Term == nil {
		g.branchTo(pc)
		g.block.NewBr(block)
	}
	return g.enterBlock(pc, block)
}

// splitBlocks creates a block for every instruction that starts one: the first
// instruction, branch targets and anything following a branch or a return.
func (g *Generator) splitBlocks() error {
	g.blocks[0] = g.fn.NewBlock("entry")
	leaders := map[int]bool{}
	for pc, code := range g.method.ByteCodes {
		if !bytecode.IsBranch(code) && bytecode.GetOp(code) != bytecode.RET {
			continue
		}
		leaders[pc+1] = true
		if bytecode.IsBranch(code) {
			target := pc + 1 + int(bytecode.GetsA(code))
			if target <= pc {
				return g.genErr(pc, &lerrors.WipError{Feature: "backward branches"})
			} else if target > len(g.method.ByteCodes) {
				return g.genErr(pc, fmt.Errorf("branch target %v out of range", target))
			}
			leaders[target] = true
		}
	}
	for pc := 1; pc <= len(g.method.ByteCodes); pc++ {
		if leaders[pc] {
			g.blocks[pc] = g.fn.NewBlock(fmt.Sprintf("bb%d", pc))
		}
	}
	return nil
}

// enterBlock makes block current and rebuilds the stack from the branches
// into it. Slots that differ between predecessors become phi nodes.
func (g *Generator) enterBlock(pc int, block *ir.Block) error {
	g.block = block
	edges := g.incoming[pc]
	g.stack = nil
	if len(edges) == 0 {
		return nil
	}
	depth := len(edges[0].stack)
	for _, e := range edges[1:] {
		if len(e.stack) != depth {
			return errors.Errorf("stack depth mismatch at join %v", pc)
		}
	}
	for i := 0; i < depth; i++ {
		first := edges[0].stack[i]
		merged := stackValue{val: first.val, unsigned: first.unsigned}
		same := true
		for _, e := range edges[1:] {
			if !e.stack[i].val.Type().Equal(first.val.Type()) {
				return errors.Errorf("stack type mismatch at join %v", pc)
			}
			same = same && e.stack[i].val == first.val
			merged.unsigned = merged.unsigned || e.stack[i].unsigned
		}
		if !same {
			incs := make([]*ir.Incoming, len(edges))
			for j, e := range edges {
				incs[j] = ir.NewIncoming(e.stack[i].val, e.from)
			}
			merged.val = block.NewPhi(incs...)
		}
		g.stack = append(g.stack, merged)
	}
	return nil
}

// branchTo records the current stack as flowing into the block at pc.
func (g *Generator) branchTo(pc int) {
	g.incoming[pc] = append(g.incoming[pc], edge{
		from:  g.block,
		stack: append([]stackValue{}, g.stack...),
	})
}

func (g *Generator) genInstruction(pc int, code uint32) error {
	switch op := bytecode.GetOp(code); op {
	case bytecode.NOP:
	case bytecode.LDI:
		g.push(constant.NewInt(types.I64, bytecode.GetsA(code)), false)
	case bytecode.LDC:
		switch konst := g.method.GetConst(bytecode.GetA(code)).(type) {
		case int64:
			g.push(constant.NewInt(types.I64, konst), false)
		case float64:
			g.push(constant.NewFloat(types.Double, konst), false)
		default:
			return fmt.Errorf("constant %v out of range", bytecode.GetA(code))
		}
	case bytecode.LDLOC:
		return g.genLoad(bytecode.GetA(code))
	case bytecode.STLOC:
		return g.genStore(bytecode.GetA(code))
	case bytecode.DUP:
		sv, err := g.pop()
		if err != nil {
			return err
		}
		g.stack = append(g.stack, sv, sv)
	case bytecode.POP:
		_, err := g.pop()
		return err
	case bytecode.ADD, bytecode.SUB, bytecode.MUL, bytecode.SHL, bytecode.SHR, bytecode.SHR_UN,
		bytecode.OR, bytecode.AND, bytecode.XOR:
		return g.genArith(op)
	case bytecode.CEQ, bytecode.CGT, bytecode.CGT_UN, bytecode.CLT, bytecode.CLT_UN:
		return g.genCompare(op)
	case bytecode.BR:
		target := pc + 1 + int(bytecode.GetsA(code))
		g.branchTo(target)
		g.block.NewBr(g.blocks[target])
	case bytecode.BRFALSE, bytecode.BRTRUE:
		return g.genCondBr(pc, op, pc+1+int(bytecode.GetsA(code)))
	case bytecode.CONV_I1, bytecode.CONV_I2, bytecode.CONV_I4, bytecode.CONV_I8,
		bytecode.CONV_U1, bytecode.CONV_U2, bytecode.CONV_U4, bytecode.CONV_U8,
		bytecode.CONV_R4, bytecode.CONV_R8:
		return g.genConv(op)
	case bytecode.NEWOBJ, bytecode.NEWARR, bytecode.STFLD, bytecode.STELEM:
		return &lerrors.WipError{Feature: fmt.Sprintf("llvm generation of %v", op)}
	case bytecode.RET:
		g.block.NewRet(nil)
	default:
		return fmt.Errorf("unknown opcode %v", op)
	}
	return nil
}

func (g *Generator) genCondBr(pc int, op bytecode.Op, target int) error {
	sv, err := g.pop()
	if err != nil {
		return err
	}
	cond := g.truthy(sv.val)
	next := pc + 1
	g.branchTo(target)
	g.branchTo(next)
	if op == bytecode.BRTRUE {
		g.block.NewCondBr(cond, g.blocks[target], g.blocks[next])
	} else {
		g.block.NewCondBr(cond, g.blocks[next], g.blocks[target])
	}
	return nil
}

func (g *Generator) truthy(val value.Value) value.Value {
	if types.IsFloat(val.Type()) {
		return g.block.NewFCmp(enum.FPredUNE, val, constant.NewFloat(types.Double, 0))
	}
	return g.block.NewICmp(enum.IPredNE, val, constant.NewInt(types.I64, 0))
}

func (g *Generator) local(idx int64) (*cir.Local, value.Value, error) {
	if idx < 0 || int(idx) >= len(g.locals) {
		return nil, nil, fmt.Errorf("local %v out of range", idx)
	}
	return g.method.Locals[idx], g.locals[idx], nil
}

// genLoad loads a local and widens it to i64 or double.
func (g *Generator) genLoad(idx int64) error {
	lcl, ptr, err := g.local(idx)
	if err != nil {
		return err
	}
	elemType, _ := convType(lcl.Type)
	var val value.Value = g.block.NewLoad(elemType, ptr)
	unsigned := isUnsigned(lcl.Type)
	switch typ := elemType.(type) {
	case *types.IntType:
		if typ.BitSize < 64 && unsigned {
			val = g.block.NewZExt(val, types.I64)
		} else if typ.BitSize < 64 {
			val = g.block.NewSExt(val, types.I64)
		}
	case *types.FloatType:
		if typ.Kind == types.FloatKindFloat {
			val = g.block.NewFPExt(val, types.Double)
		}
	}
	g.push(val, unsigned)
	return nil
}

// genStore narrows the top of the stack to the storage type of a local.
func (g *Generator) genStore(idx int64) error {
	lcl, ptr, err := g.local(idx)
	if err != nil {
		return err
	}
	sv, err := g.pop()
	if err != nil {
		return err
	}
	elemType, _ := convType(lcl.Type)
	val := sv.val
	switch typ := elemType.(type) {
	case *types.IntType:
		if isBool(lcl.Type) {
			val = g.block.NewZExt(g.truthy(val), typ)
			break
		}
		if types.IsFloat(val.Type()) {
			val = g.fpToInt(val, types.I64, isUnsigned(lcl.Type))
		}
		if typ.BitSize < 64 {
			val = g.block.NewTrunc(val, typ)
		}
	case *types.FloatType:
		if types.IsInt(val.Type()) {
			val = g.intToFP(sv, typ)
		} else if typ.Kind == types.FloatKindFloat {
			val = g.block.NewFPTrunc(val, typ)
		}
	}
	if !val.Type().Equal(elemType) {
		return errors.Errorf("cannot store %v into %v", val.Type(), lcl.Type)
	}
	g.block.NewStore(val, ptr)
	return nil
}

func (g *Generator) genArith(op bytecode.Op) error {
	rhs, lhs, err := g.pop2()
	if err != nil {
		return err
	}
	unsigned := lhs.unsigned || rhs.unsigned
	if types.IsFloat(lhs.val.Type()) && types.IsFloat(rhs.val.Type()) {
		switch op {
		case bytecode.ADD:
			g.push(g.block.NewFAdd(lhs.val, rhs.val), false)
		case bytecode.SUB:
			g.push(g.block.NewFSub(lhs.val, rhs.val), false)
		case bytecode.MUL:
			g.push(g.block.NewFMul(lhs.val, rhs.val), false)
		default:
			return errors.Errorf("cannot %v floats", op)
		}
		return nil
	} else if !types.IsInt(lhs.val.Type()) || !types.IsInt(rhs.val.Type()) {
		return errors.Errorf("cannot %v %v with %v", op, lhs.val.Type(), rhs.val.Type())
	}

	var val value.Value
	switch op {
	case bytecode.ADD:
		val = g.block.NewAdd(lhs.val, rhs.val)
	case bytecode.SUB:
		val = g.block.NewSub(lhs.val, rhs.val)
	case bytecode.MUL:
		val = g.block.NewMul(lhs.val, rhs.val)
	case bytecode.SHL:
		val = g.block.NewShl(lhs.val, g.shiftCount(rhs.val))
	case bytecode.SHR:
		val = g.block.NewAShr(lhs.val, g.shiftCount(rhs.val))
	case bytecode.SHR_UN:
		val = g.block.NewLShr(lhs.val, g.shiftCount(rhs.val))
	case bytecode.OR:
		val = g.block.NewOr(lhs.val, rhs.val)
	case bytecode.AND:
		val = g.block.NewAnd(lhs.val, rhs.val)
	default:
		val = g.block.NewXor(lhs.val, rhs.val)
	}
	g.push(val, unsigned)
	return nil
}

// shiftCount masks the count so that an oversized shift is not poison.
func (g *Generator) shiftCount(count value.Value) value.Value {
	return g.block.NewAnd(count, constant.NewInt(types.I64, 63))
}

var (
	intPreds = map[bytecode.Op]enum.IPred{
		bytecode.CEQ:    enum.IPredEQ,
		bytecode.CGT:    enum.IPredSGT,
		bytecode.CGT_UN: enum.IPredUGT,
		bytecode.CLT:    enum.IPredSLT,
		bytecode.CLT_UN: enum.IPredULT,
	}
	floatPreds = map[bytecode.Op]enum.FPred{
		bytecode.CEQ:    enum.FPredOEQ,
		bytecode.CGT:    enum.FPredOGT,
		bytecode.CGT_UN: enum.FPredUGT,
		bytecode.CLT:    enum.FPredOLT,
		bytecode.CLT_UN: enum.FPredULT,
	}
)

func (g *Generator) genCompare(op bytecode.Op) error {
	rhs, lhs, err := g.pop2()
	if err != nil {
		return err
	}
	var cmp value.Value
	switch {
	case types.IsFloat(lhs.val.Type()) && types.IsFloat(rhs.val.Type()):
		cmp = g.block.NewFCmp(floatPreds[op], lhs.val, rhs.val)
	case types.IsInt(lhs.val.Type()) && types.IsInt(rhs.val.Type()):
		cmp = g.block.NewICmp(intPreds[op], lhs.val, rhs.val)
	default:
		return errors.Errorf("cannot %v %v with %v", op, lhs.val.Type(), rhs.val.Type())
	}
	g.push(g.block.NewZExt(cmp, types.I64), false)
	return nil
}

var convKinds = map[bytecode.Op]convKind{
	bytecode.CONV_I1: {bits: 8},
	bytecode.CONV_I2: {bits: 16},
	bytecode.CONV_I4: {bits: 32},
	bytecode.CONV_I8: {bits: 64},
	bytecode.CONV_U1: {bits: 8, unsigned: true},
	bytecode.CONV_U2: {bits: 16, unsigned: true},
	bytecode.CONV_U4: {bits: 32, unsigned: true},
	bytecode.CONV_U8: {bits: 64, unsigned: true},
	bytecode.CONV_R4: {bits: 32, float: true},
	bytecode.CONV_R8: {bits: 64, float: true},
}

func (g *Generator) genConv(op bytecode.Op) error {
	sv, err := g.pop()
	if err != nil {
		return err
	}
	kind := convKinds[op]
	if kind.float {
		target := types.Double
		if kind.bits == 32 {
			target = types.Float
		}
		var val value.Value
		if types.IsInt(sv.val.Type()) {
			val = g.intToFP(sv, target)
		} else if target == types.Float {
			val = g.block.NewFPTrunc(sv.val, types.Float)
		} else {
			val = sv.val
		}
		if target == types.Float {
			val = g.block.NewFPExt(val, types.Double)
		}
		g.push(val, false)
		return nil
	}

	target := types.NewInt(kind.bits)
	val := sv.val
	switch {
	case types.IsFloat(val.Type()):
		val = g.fpToInt(val, target, kind.unsigned)
	case !types.IsInt(val.Type()):
		return errors.Errorf("cannot %v a %v value", op, val.Type())
	case kind.bits < 64:
		val = g.block.NewTrunc(val, target)
	}
	if kind.bits < 64 && kind.unsigned {
		val = g.block.NewZExt(val, types.I64)
	} else if kind.bits < 64 {
		val = g.block.NewSExt(val, types.I64)
	}
	g.push(val, kind.unsigned)
	return nil
}

func (g *Generator) intToFP(sv stackValue, target *types.FloatType) value.Value {
	if sv.unsigned {
		return g.block.NewUIToFP(sv.val, target)
	}
	return g.block.NewSIToFP(sv.val, target)
}

func (g *Generator) fpToInt(val value.Value, target *types.IntType, unsigned bool) value.Value {
	if unsigned {
		return g.block.NewFPToUI(val, target)
	}
	return g.block.NewFPToSI(val, target)
}

func (g *Generator) push(val value.Value, unsigned bool) {
	g.stack = append(g.stack, stackValue{val: val, unsigned: unsigned})
}

func (g *Generator) pop() (stackValue, error) {
	if len(g.stack) == 0 {
		return stackValue{}, errors.New("stack underflow")
	}
	sv := g.stack[len(g.stack)-1]
	g.stack = g.stack[:len(g.stack)-1]
	return sv, nil
}

func (g *Generator) pop2() (stackValue, stackValue, error) {
	top, err := g.pop()
	if err != nil {
		return top, top, err
	}
	below, err := g.pop()
	return top, below, err
}

func (g *Generator) genErr(pc int, err error) error {
	var cErr *lerrors.Error
	if errors.As(err, &cErr) {
		return err
	}
	return &lerrors.Error{
		Kind:     lerrors.CompileErr,
		Filename: g.method.Filename,
		Err:      errors.Wrapf(err, "llvm %v [%v]", g.method.Name, pc),
	}
}
