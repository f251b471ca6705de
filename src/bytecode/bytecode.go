// Package bytecode handles formatting uint32 values which have meaning for the
// stack machine.
package bytecode

import (
	"fmt"
)

type (
	// Op is the descriptor of which kind of instruction each bytecode is.
	Op uint8
	// Type is a descriptor of what format an instruction has.
	Type string
)

const (
	// TypeN is an instruction without a parameter.
	TypeN Type = "iN"
	// TypeA is an instruction with an unsigned 24 bit parameter.
	TypeA Type = "iA"
	// TypesA is an instruction with a signed 24 bit parameter.
	TypesA Type = "isA"
)

const (
	// NOP does nothing.
	NOP Op = iota
	// LDI pushes the signed inline integer A.
	LDI
	// LDC pushes constant A from the constant pool.
	LDC
	// LDLOC pushes local A.
	LDLOC
	// STLOC pops a value into local A.
	STLOC
	// DUP duplicates the top of the stack.
	DUP
	// POP drops the top of the stack.
	POP
	// ADD Addition operator.
	ADD
	// SUB Subtraction operator.
	SUB
	// MUL Multiplication operator.
	MUL
	// SHL Shift bits left.
	SHL
	// SHR Arithmetic shift right.
	SHR
	// SHR_UN Logical shift right.
	SHR_UN //nolint:revive,stylecheck
	// OR Bit-wise OR operator.
	OR
	// AND Bit-wise AND operator.
	AND
	// XOR Bit-wise Exclusive OR operator.
	XOR
	// CEQ pushes 1 if the two top values are equal, 0 otherwise.
	CEQ
	// CGT pushes 1 if the lower value is greater than the top value.
	CGT
	// CGT_UN is CGT for unsigned integers.
	CGT_UN //nolint:revive,stylecheck
	// CLT pushes 1 if the lower value is less than the top value.
	CLT
	// CLT_UN is CLT for unsigned integers.
	CLT_UN //nolint:revive,stylecheck
	// BR Unconditional jump.
	BR
	// BRFALSE pops a value and jumps if it is zero.
	BRFALSE
	// BRTRUE pops a value and jumps if it is not zero.
	BRTRUE
	// CONV_I1 converts the top of the stack to int8.
	CONV_I1 //nolint:revive,stylecheck
	// CONV_I2 converts the top of the stack to int16.
	CONV_I2 //nolint:revive,stylecheck
	// CONV_I4 converts the top of the stack to int32.
	CONV_I4 //nolint:revive,stylecheck
	// CONV_I8 converts the top of the stack to int64.
	CONV_I8 //nolint:revive,stylecheck
	// CONV_U1 converts the top of the stack to uint8.
	CONV_U1 //nolint:revive,stylecheck
	// CONV_U2 converts the top of the stack to uint16.
	CONV_U2 //nolint:revive,stylecheck
	// CONV_U4 converts the top of the stack to uint32.
	CONV_U4 //nolint:revive,stylecheck
	// CONV_U8 converts the top of the stack to uint64.
	CONV_U8 //nolint:revive,stylecheck
	// CONV_R4 converts the top of the stack to float32.
	CONV_R4 //nolint:revive,stylecheck
	// CONV_R8 converts the top of the stack to float64.
	CONV_R8 //nolint:revive,stylecheck
	// NEWOBJ pushes a new zeroed struct of type A.
	NEWOBJ
	// NEWARR pushes a new zeroed array of type A.
	NEWARR
	// STFLD pops a value and stores it into field A of the struct below it.
	STFLD
	// STELEM pops a value and stores it into element A of the array below it.
	STELEM
	// RET Return from the method.
	RET
	// max possible is 8 bits or 256 codes.
)

var opcodeToString = map[Op]string{
	NOP:     "NOP",
	LDI:     "LDI",
	LDC:     "LDC",
	LDLOC:   "LDLOC",
	STLOC:   "STLOC",
	DUP:     "DUP",
	POP:     "POP",
	ADD:     "ADD",
	SUB:     "SUB",
	MUL:     "MUL",
	SHL:     "SHL",
	SHR:     "SHR",
	SHR_UN:  "SHR_UN",
	OR:      "OR",
	AND:     "AND",
	XOR:     "XOR",
	CEQ:     "CEQ",
	CGT:     "CGT",
	CGT_UN:  "CGT_UN",
	CLT:     "CLT",
	CLT_UN:  "CLT_UN",
	BR:      "BR",
	BRFALSE: "BRFALSE",
	BRTRUE:  "BRTRUE",
	CONV_I1: "CONV_I1",
	CONV_I2: "CONV_I2",
	CONV_I4: "CONV_I4",
	CONV_I8: "CONV_I8",
	CONV_U1: "CONV_U1",
	CONV_U2: "CONV_U2",
	CONV_U4: "CONV_U4",
	CONV_U8: "CONV_U8",
	CONV_R4: "CONV_R4",
	CONV_R8: "CONV_R8",
	NEWOBJ:  "NEWOBJ",
	NEWARR:  "NEWARR",
	STFLD:   "STFLD",
	STELEM:  "STELEM",
	RET:     "RET",
}

// Format values in the 32 bit opcode.
const (
	aShift     = 8
	maskByte   = 0xFF
	mask3Bytes = 0xFFFFFF
)

// I creates an instruction without a parameter.
// | unused: 24 | Opcode: u8 |.
func I(op Op) uint32 { return uint32(op) }

// IA creates an instruction with an unsigned parameter, usually an index into
// the locals, constants or type table.
// | A: u24 | Opcode: u8 |.
func IA(op Op, a uint32) uint32 { return (a&mask3Bytes)<<aShift | uint32(op) }

// IsA creates an instruction with a signed parameter, used for inline integers
// and jump offsets.
// | A: s24 | Opcode: u8 |.
func IsA(op Op, a int32) uint32 { return (uint32(a)&mask3Bytes)<<aShift | uint32(op) }

// GetOp gets what type of instruction it is. Used for the switch in the vm.
func GetOp(bc uint32) Op { return Op(bc & maskByte) }

// GetA gets the unsigned a param.
func GetA(bc uint32) int64 { return int64(bc >> aShift & mask3Bytes) }

// GetsA gets the signed a param. The arithmetic shift sign extends the 24 bits.
func GetsA(bc uint32) int64 { return int64(int32(bc) >> aShift) }

func (op Op) String() string {
	if name, ok := opcodeToString[op]; ok {
		return name
	}
	return "UNDEFINED"
}

// ToString will format an instruction to be understandable.
func ToString(bc uint32) string {
	op := GetOp(bc)
	switch Kind(bc) {
	case TypeA:
		return fmt.Sprintf("%-10v %-5v", op, GetA(bc))
	case TypesA:
		return fmt.Sprintf("%-10v %-5v", op, GetsA(bc))
	case TypeN:
		return fmt.Sprintf("%-10v", op)
	default:
		return "UNKNOWN OPCODE"
	}
}

// Kind will return which type of bytecode it is, iN, iA or isA.
func Kind(bc uint32) Type {
	switch GetOp(bc) {
	case LDC, LDLOC, STLOC, NEWOBJ, NEWARR, STFLD, STELEM:
		return TypeA
	case LDI, BR, BRFALSE, BRTRUE:
		return TypesA
	case NOP, DUP, POP, ADD, SUB, MUL, SHL, SHR, SHR_UN, OR, AND, XOR, CEQ, CGT,
		CGT_UN, CLT, CLT_UN, CONV_I1, CONV_I2, CONV_I4, CONV_I8, CONV_U1, CONV_U2,
		CONV_U4, CONV_U8, CONV_R4, CONV_R8, RET:
		return TypeN
	default:
		return ""
	}
}

// IsBranch reports whether the instruction transfers control.
func IsBranch(bc uint32) bool {
	switch GetOp(bc) {
	case BR, BRFALSE, BRTRUE:
		return true
	default:
		return false
	}
}
