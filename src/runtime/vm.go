// Package runtime executes emitted methods on a value stack. Integers of every
// width live on the stack as int64 and floats as float64; values are brought
// back into the range of their C type by the conversion instructions and when
// they are stored.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/tanema/cfront/src/bytecode"
	"github.com/tanema/cfront/src/conf"
	"github.com/tanema/cfront/src/ir"
	"github.com/tanema/cfront/src/types"
)

// VM is the interpreter runtime that does everything in memory.
type VM struct {
	ctx    context.Context
	Stack  []any
	Locals []any
	top    int64
}

// New will create a new vm for evaluating.
func New(ctx context.Context) *VM {
	return &VM{
		ctx:   ctx,
		Stack: make([]any, conf.INITIALSTACKSIZE),
	}
}

// Eval runs method from its first instruction with fresh locals and returns
// the locals when it returns.
func (vm *VM) Eval(method *ir.Method) ([]any, error) {
	vm.Locals = nil
	vm.top = 0
	return vm.Exec(method, 0)
}

// Exec runs method starting at pc, keeping the locals of earlier runs. Locals
// declared since then start at their zero value.
func (vm *VM) Exec(method *ir.Method, pc int64) ([]any, error) {
	for i := len(vm.Locals); i < len(method.Locals); i++ {
		vm.Locals = append(vm.Locals, Zero(method.Locals[i].Type))
	}
	if err := vm.eval(method, pc); err != nil {
		return nil, err
	}
	return vm.Locals, nil
}

func (vm *VM) eval(method *ir.Method, pc int64) error {
	for {
		if err := vm.ctx.Err(); err != nil {
			return errors.New("vm interrupted")
		}
		if int64(len(method.ByteCodes)) <= pc {
			return nil
		}

		var err error
		instruction := method.ByteCodes[pc]
		switch op := bytecode.GetOp(instruction); op {
		case bytecode.NOP:
		case bytecode.LDI:
			err = vm.push(bytecode.GetsA(instruction))
		case bytecode.LDC:
			konst := method.GetConst(bytecode.GetA(instruction))
			if konst == nil {
				err = fmt.Errorf("constant %v out of range", bytecode.GetA(instruction))
				break
			}
			err = vm.push(konst)
		case bytecode.LDLOC:
			var lcl *ir.Local
			if lcl, err = vm.local(method, bytecode.GetA(instruction)); err == nil {
				err = vm.push(clone(vm.Locals[lcl.Index]))
			}
		case bytecode.STLOC:
			var lcl *ir.Local
			var val any
			if lcl, err = vm.local(method, bytecode.GetA(instruction)); err != nil {
				break
			} else if val, err = vm.pop(); err == nil {
				vm.Locals[lcl.Index] = Normalize(lcl.Type, clone(val))
			}
		case bytecode.DUP:
			var val any
			if val, err = vm.peek(); err == nil {
				err = vm.push(val)
			}
		case bytecode.POP:
			_, err = vm.pop()
		case bytecode.ADD, bytecode.SUB, bytecode.MUL, bytecode.SHL, bytecode.SHR, bytecode.SHR_UN,
			bytecode.OR, bytecode.AND, bytecode.XOR:
			err = vm.binary(op)
		case bytecode.CEQ, bytecode.CGT, bytecode.CGT_UN, bytecode.CLT, bytecode.CLT_UN:
			err = vm.compare(op)
		case bytecode.BR:
			pc += bytecode.GetsA(instruction)
		case bytecode.BRFALSE, bytecode.BRTRUE:
			var val any
			if val, err = vm.pop(); err != nil {
				break
			}
			if truthy(val) == (op == bytecode.BRTRUE) {
				pc += bytecode.GetsA(instruction)
			}
		case bytecode.CONV_I1, bytecode.CONV_I2, bytecode.CONV_I4, bytecode.CONV_I8,
			bytecode.CONV_U1, bytecode.CONV_U2, bytecode.CONV_U4, bytecode.CONV_U8,
			bytecode.CONV_R4, bytecode.CONV_R8:
			err = vm.convert(op)
		case bytecode.NEWOBJ, bytecode.NEWARR:
			err = vm.newAggregate(method, op, bytecode.GetA(instruction))
		case bytecode.STFLD, bytecode.STELEM:
			err = vm.store(bytecode.GetA(instruction))
		case bytecode.RET:
			return nil
		default:
			err = fmt.Errorf("unknown opcode %v", op)
		}
		if err != nil {
			return newRuntimeErr(method, pc, err)
		}
		pc++
	}
}

func (vm *VM) local(method *ir.Method, idx int64) (*ir.Local, error) {
	if idx < 0 || int(idx) >= len(method.Locals) || int(idx) >= len(vm.Locals) {
		return nil, fmt.Errorf("local %v out of range", idx)
	}
	return method.Locals[idx], nil
}

func (vm *VM) binary(op bytecode.Op) error {
	rhs, lhs, err := vm.pop2()
	if err != nil {
		return err
	}
	switch lval := lhs.(type) {
	case int64:
		rval, isInt := rhs.(int64)
		if !isInt {
			return mismatched(op, lhs, rhs)
		}
		return vm.push(intArith(op, lval, rval))
	case float64:
		rval, isFloat := rhs.(float64)
		if !isFloat {
			return mismatched(op, lhs, rhs)
		}
		switch op {
		case bytecode.ADD:
			return vm.push(lval + rval)
		case bytecode.SUB:
			return vm.push(lval - rval)
		case bytecode.MUL:
			return vm.push(lval * rval)
		}
	}
	return mismatched(op, lhs, rhs)
}

func intArith(op bytecode.Op, lval, rval int64) int64 {
	switch op {
	case bytecode.ADD:
		return lval + rval
	case bytecode.SUB:
		return lval - rval
	case bytecode.MUL:
		return lval * rval
	case bytecode.SHL:
		return lval << (uint64(rval) & 63)
	case bytecode.SHR:
		return lval >> (uint64(rval) & 63)
	case bytecode.SHR_UN:
		return int64(uint64(lval) >> (uint64(rval) & 63))
	case bytecode.OR:
		return lval | rval
	case bytecode.AND:
		return lval & rval
	default:
		return lval ^ rval
	}
}

func (vm *VM) compare(op bytecode.Op) error {
	rhs, lhs, err := vm.pop2()
	if err != nil {
		return err
	}
	var result bool
	switch lval := lhs.(type) {
	case int64:
		rval, isInt := rhs.(int64)
		if !isInt {
			return mismatched(op, lhs, rhs)
		}
		switch op {
		case bytecode.CEQ:
			result = lval == rval
		case bytecode.CGT:
			result = lval > rval
		case bytecode.CLT:
			result = lval < rval
		case bytecode.CGT_UN:
			result = uint64(lval) > uint64(rval)
		case bytecode.CLT_UN:
			result = uint64(lval) < uint64(rval)
		}
	case float64:
		rval, isFloat := rhs.(float64)
		if !isFloat {
			return mismatched(op, lhs, rhs)
		}
		unordered := math.IsNaN(lval) || math.IsNaN(rval)
		switch op {
		case bytecode.CEQ:
			result = lval == rval
		case bytecode.CGT:
			result = lval > rval
		case bytecode.CLT:
			result = lval < rval
		case bytecode.CGT_UN:
			result = unordered || lval > rval
		case bytecode.CLT_UN:
			result = unordered || lval < rval
		}
	default:
		return mismatched(op, lhs, rhs)
	}
	return vm.push(toBool(result))
}

var convKinds = map[bytecode.Op]types.PrimitiveKind{
	bytecode.CONV_I1: types.KindInt8,
	bytecode.CONV_I2: types.KindInt16,
	bytecode.CONV_I4: types.KindInt32,
	bytecode.CONV_I8: types.KindInt64,
	bytecode.CONV_U1: types.KindUInt8,
	bytecode.CONV_U2: types.KindUInt16,
	bytecode.CONV_U4: types.KindUInt32,
	bytecode.CONV_U8: types.KindUInt64,
	bytecode.CONV_R4: types.KindFloat32,
	bytecode.CONV_R8: types.KindFloat64,
}

// convert applies a conversion instruction. Integer sources are treated as
// signed, as the instruction does not carry the source type.
func (vm *VM) convert(op bytecode.Op) error {
	val, err := vm.pop()
	if err != nil {
		return err
	}
	kind := convKinds[op]
	switch tval := val.(type) {
	case int64:
		if kind == types.KindFloat32 || kind == types.KindFloat64 {
			return vm.push(roundFloat(kind, float64(tval)))
		}
		return vm.push(kind.Truncate(tval))
	case float64:
		if kind == types.KindFloat32 || kind == types.KindFloat64 {
			return vm.push(roundFloat(kind, tval))
		}
		return vm.push(kind.Truncate(floatToInt(kind, tval)))
	default:
		return fmt.Errorf("cannot %v a %T value", op, val)
	}
}

func (vm *VM) newAggregate(method *ir.Method, op bytecode.Op, idx int64) error {
	typ := method.GetType(idx)
	_, isStruct := typ.(*types.Struct)
	_, isArray := typ.(*types.Array)
	if (op == bytecode.NEWOBJ && !isStruct) || (op == bytecode.NEWARR && !isArray) {
		return fmt.Errorf("%v: type %v is not valid", op, idx)
	}
	return vm.push(Zero(typ))
}

// store pops a value and an aggregate and places the value into slot idx.
func (vm *VM) store(idx int64) error {
	val, target, err := vm.pop2()
	if err != nil {
		return err
	}
	switch agg := target.(type) {
	case *Struct:
		if idx < 0 || int(idx) >= len(agg.Fields) {
			return fmt.Errorf("field %v out of range for %v", idx, agg.Type)
		}
		agg.Fields[idx] = Normalize(agg.Type.Fields[idx].Type, clone(val))
	case *Array:
		if idx < 0 || int(idx) >= len(agg.Elems) {
			return fmt.Errorf("index %v out of range for %v", idx, agg.Type)
		}
		agg.Elems[idx] = Normalize(agg.Type.Elem, clone(val))
	default:
		return fmt.Errorf("cannot store into a %T value", target)
	}
	return nil
}

func truthy(val any) bool {
	switch tval := val.(type) {
	case int64:
		return tval != 0
	case float64:
		return tval != 0
	default:
		return val != nil
	}
}

func mismatched(op bytecode.Op, lhs, rhs any) error {
	return fmt.Errorf("cannot %v %T with %T", op, lhs, rhs)
}

func (vm *VM) push(val any) error {
	if err := vm.ensureStackSize(vm.top); err != nil {
		return err
	}
	vm.Stack[vm.top] = val
	vm.top++
	return nil
}

func (vm *VM) peek() (any, error) {
	if vm.top == 0 {
		return nil, errors.New("stack underflow")
	}
	return vm.Stack[vm.top-1], nil
}

func (vm *VM) pop() (any, error) {
	val, err := vm.peek()
	if err != nil {
		return nil, err
	}
	vm.top--
	vm.Stack[vm.top] = nil
	return val, nil
}

// pop2 pops the top value and the one below it.
func (vm *VM) pop2() (any, any, error) {
	top, err := vm.pop()
	if err != nil {
		return nil, nil, err
	}
	below, err := vm.pop()
	return top, below, err
}

func (vm *VM) ensureStackSize(index int64) error {
	sliceLen := int64(len(vm.Stack))
	if index < sliceLen {
		return nil
	}
	growth := max(sliceLen, conf.INITIALSTACKSIZE)
	newSlice := make([]any, sliceLen+growth)
	copy(newSlice, vm.Stack)
	vm.Stack = newSlice
	return nil
}
