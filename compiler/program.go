package compiler

import (
	"fmt"
	"slices"

	"github.com/deepnoodle-ai/bfjit/op"
)

// Program is the output of the compiler: the instruction sequence plus a
// parallel table of source locations used only for diagnostics.
type Program struct {
	Instructions []op.Instruction

	// Locations holds one entry per instruction. It may be nil for programs
	// built by hand.
	Locations []SourceLocation

	// Filename is the source filename, if known.
	Filename string
}

// Len returns the number of instructions in the program.
func (p *Program) Len() int {
	return len(p.Instructions)
}

// LocationAt returns the source location of the instruction at index i, or
// the zero location if none is recorded.
func (p *Program) LocationAt(i int) SourceLocation {
	if i < 0 || i >= len(p.Locations) {
		return SourceLocation{}
	}
	return p.Locations[i]
}

// Verify checks the loop pairing invariant: every JumpIfZero at index i with
// target t has a JumpIfNonZero at t whose target is i, and loops nest
// strictly without crossing. It also rejects unknown opcodes and value
// operands that do not fit in a byte.
func (p *Program) Verify() error {
	if p.Locations != nil && len(p.Locations) != len(p.Instructions) {
		return fmt.Errorf("program has %d instructions but %d locations",
			len(p.Instructions), len(p.Locations))
	}
	var open []int
	n := len(p.Instructions)
	for i, instr := range p.Instructions {
		switch instr.Code {
		case op.AddVal, op.SubVal:
			if instr.Operand > 0xff {
				return fmt.Errorf("instruction %d: %s operand %d exceeds a byte",
					i, instr.Code, instr.Operand)
			}
		case op.AddPtr, op.SubPtr, op.GetByte, op.PutByte:
		case op.JumpIfZero:
			t := instr.Target()
			if t <= i || t >= n {
				return fmt.Errorf("instruction %d: %s target %d out of range", i, instr.Code, t)
			}
			if other := p.Instructions[t]; other.Code != op.JumpIfNonZero || other.Target() != i {
				return fmt.Errorf("instruction %d: %s target %d is %s, not its partner",
					i, instr.Code, t, other)
			}
			open = append(open, i)
		case op.JumpIfNonZero:
			if len(open) == 0 {
				return fmt.Errorf("instruction %d: %s has no open loop", i, instr.Code)
			}
			left := open[len(open)-1]
			open = open[:len(open)-1]
			if instr.Target() != left || p.Instructions[left].Target() != i {
				return fmt.Errorf("instruction %d: %s target %d crosses loop opened at %d",
					i, instr.Code, instr.Target(), left)
			}
		default:
			return fmt.Errorf("instruction %d: invalid opcode %d", i, uint8(instr.Code))
		}
	}
	if len(open) > 0 {
		return fmt.Errorf("instruction %d: loop is never closed", open[len(open)-1])
	}
	return nil
}

// Clone returns a deep copy of the program.
func (p *Program) Clone() *Program {
	return &Program{
		Instructions: slices.Clone(p.Instructions),
		Locations:    slices.Clone(p.Locations),
		Filename:     p.Filename,
	}
}
