// Package dis renders compiled programs as a human-readable listing.
package dis

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/deepnoodle-ai/bfjit/compiler"
	"github.com/deepnoodle-ai/bfjit/internal/table"
	"github.com/deepnoodle-ai/bfjit/jit"
	"github.com/deepnoodle-ai/bfjit/op"
)

// Instruction is one row of a listing.
type Instruction struct {
	Offset   int
	Name     string
	Operands []string
	Info     string
	Location string

	// Native is the offset of the instruction's machine code, or -1 if the
	// listing has no native code attached.
	Native int
}

// Disassemble converts a program into a list of instructions.
func Disassemble(p *compiler.Program) []Instruction {
	instructions := make([]Instruction, 0, len(p.Instructions))
	for i, instr := range p.Instructions {
		info := op.GetInfo(instr.Code)
		row := Instruction{
			Offset: i,
			Name:   info.Name,
			Native: -1,
		}
		if row.Name == "" {
			row.Name = instr.Code.String()
		}
		switch info.OperandKind {
		case op.ValueOperand, op.PointerOperand:
			row.Operands = []string{strconv.FormatUint(uint64(instr.Operand), 10)}
		case op.TargetOperand:
			row.Operands = []string{strconv.Itoa(instr.Target())}
			row.Info = fmt.Sprintf("-> %d", instr.Target())
		}
		if loc := p.LocationAt(i); !loc.IsZero() {
			row.Location = fmt.Sprintf("%d:%d", loc.Line, loc.Column)
		}
		instructions = append(instructions, row)
	}
	return instructions
}

// AttachNative records the machine code offset of every instruction.
func AttachNative(instructions []Instruction, code *jit.Code) error {
	if len(code.Offsets) != len(instructions) {
		return fmt.Errorf("native code covers %d instructions, listing has %d",
			len(code.Offsets), len(instructions))
	}
	for i := range instructions {
		instructions[i].Native = code.Offsets[i]
	}
	return nil
}

// Print writes the listing as a table. Opcode names are bold when color
// output is enabled.
func Print(instructions []Instruction, writer io.Writer) {
	native := len(instructions) > 0 && instructions[0].Native >= 0
	header := []string{"OFFSET", "OPCODE", "OPERANDS", "INFO", "LOCATION"}
	headerAlign := []table.Alignment{
		table.AlignCenter, table.AlignCenter, table.AlignCenter, table.AlignCenter, table.AlignCenter,
	}
	columnAlign := []table.Alignment{
		table.AlignRight, table.AlignLeft, table.AlignRight, table.AlignLeft, table.AlignLeft,
	}
	if native {
		header = append(header, "NATIVE")
		headerAlign = append(headerAlign, table.AlignCenter)
		columnAlign = append(columnAlign, table.AlignRight)
	}
	t := table.NewTable(writer).
		WithHeader(header).
		WithHeaderAlignment(headerAlign).
		WithColumnAlignment(columnAlign)

	bold := color.New(color.Bold)
	for _, instr := range instructions {
		row := []string{
			strconv.Itoa(instr.Offset),
			bold.Sprint(instr.Name),
			strings.Join(instr.Operands, ", "),
			instr.Info,
			instr.Location,
		}
		if native {
			row = append(row, fmt.Sprintf("%#x", instr.Native))
		}
		t.Append(row)
	}
	t.Render()
}
