// Package op defines the instruction vocabulary shared by the compiler, the
// optimizer and the code generators.
package op

import "fmt"

// Code is an integer opcode that indicates an operation to execute.
type Code uint8

const (
	Invalid Code = 0

	// Cell arithmetic, wrapping modulo 256
	AddVal Code = 1
	SubVal Code = 2

	// Cursor movement, range-checked at run time
	AddPtr Code = 3
	SubPtr Code = 4

	// I/O
	GetByte Code = 5
	PutByte Code = 6

	// Jump
	JumpIfZero    Code = 7
	JumpIfNonZero Code = 8
)

// OperandKind describes how the operand of an instruction is interpreted.
type OperandKind uint8

const (
	NoOperand OperandKind = iota
	ValueOperand
	PointerOperand
	TargetOperand
)

// Info contains information about an opcode.
type Info struct {
	Code        Code
	Name        string
	Symbol      byte
	OperandKind OperandKind
}

var infos = make([]Info, 16)

func init() {
	type opInfo struct {
		op     Code
		name   string
		symbol byte
		kind   OperandKind
	}
	ops := []opInfo{
		{AddVal, "ADD_VAL", '+', ValueOperand},
		{SubVal, "SUB_VAL", '-', ValueOperand},
		{AddPtr, "ADD_PTR", '>', PointerOperand},
		{SubPtr, "SUB_PTR", '<', PointerOperand},
		{GetByte, "GET_BYTE", ',', NoOperand},
		{PutByte, "PUT_BYTE", '.', NoOperand},
		{JumpIfZero, "JUMP_IF_ZERO", '[', TargetOperand},
		{JumpIfNonZero, "JUMP_IF_NON_ZERO", ']', TargetOperand},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:        o.op,
			Name:        o.name,
			Symbol:      o.symbol,
			OperandKind: o.kind,
		}
	}
}

// GetInfo returns information about the given opcode.
func GetInfo(op Code) Info {
	if int(op) >= len(infos) {
		return Info{}
	}
	return infos[op]
}

// String returns the opcode name, for example "ADD_PTR".
func (c Code) String() string {
	if name := GetInfo(c).Name; name != "" {
		return name
	}
	return fmt.Sprintf("INVALID(%d)", uint8(c))
}

// Foldable reports whether adjacent instructions with this opcode may be
// merged into one by summing their operands.
func (c Code) Foldable() bool {
	switch c {
	case AddVal, SubVal, AddPtr, SubPtr:
		return true
	}
	return false
}

// IsJump reports whether the opcode carries a jump target.
func (c Code) IsJump() bool {
	return c == JumpIfZero || c == JumpIfNonZero
}

// Instruction is one element of the IR. The meaning of Operand depends on
// the opcode: a byte amount for AddVal/SubVal, an unsigned 32-bit distance
// for AddPtr/SubPtr and an instruction index for the two jumps. GetByte and
// PutByte have no operand.
type Instruction struct {
	Code    Code
	Operand uint32
}

func NewAddVal(n uint8) Instruction           { return Instruction{AddVal, uint32(n)} }
func NewSubVal(n uint8) Instruction           { return Instruction{SubVal, uint32(n)} }
func NewAddPtr(n uint32) Instruction          { return Instruction{AddPtr, n} }
func NewSubPtr(n uint32) Instruction          { return Instruction{SubPtr, n} }
func NewGetByte() Instruction                 { return Instruction{Code: GetByte} }
func NewPutByte() Instruction                 { return Instruction{Code: PutByte} }
func NewJumpIfZero(target uint32) Instruction { return Instruction{JumpIfZero, target} }

func NewJumpIfNonZero(target uint32) Instruction {
	return Instruction{JumpIfNonZero, target}
}

// Value returns the operand of an AddVal or SubVal instruction.
func (i Instruction) Value() uint8 {
	return uint8(i.Operand)
}

// Target returns the instruction index a jump refers to.
func (i Instruction) Target() int {
	return int(i.Operand)
}

// String returns a listing form of the instruction, e.g. "ADD_VAL 5".
func (i Instruction) String() string {
	if GetInfo(i.Code).OperandKind == NoOperand {
		return i.Code.String()
	}
	return fmt.Sprintf("%s %d", i.Code, i.Operand)
}
