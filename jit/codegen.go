// Package jit lowers a compiled program to x86-64 machine code and runs it
// in-process.
//
// # Generated Function
//
// Generate emits a single System V function:
//
//	fn(ctx, tapeStart, tapeEnd uintptr) uintptr
//
// The arguments are moved into callee-saved registers for the duration of
// the call: rbx holds ctx, r12 the tape start, r13 the tape end and r14 the
// cursor. Four pushes plus one padding slot keep rsp 16-byte aligned at
// every call site.
//
// A return value of zero means success. Any other value is a descriptor
// handle produced by one of the host hooks; see Descriptors.
//
// # Host Hooks
//
// The generated code calls out to three addresses with (ctx, cursor):
//
//   - Input stores at most one byte into the cell at cursor.
//   - Output writes the byte at cursor.
//   - Overflow builds the error for a cursor that left the tape.
//
// Input and Output return zero on success; a non-zero value is returned to
// the caller unchanged.
package jit

import (
	"math"

	"github.com/deepnoodle-ai/bfjit/compiler"
	"github.com/deepnoodle-ai/bfjit/errors"
	"github.com/deepnoodle-ai/bfjit/op"
)

// Register assignments inside the generated function.
const (
	regCtx    = RBX
	regStart  = R12
	regEnd    = R13
	regCursor = R14
)

// Hooks holds the native addresses of the host callbacks.
type Hooks struct {
	Input    uintptr
	Output   uintptr
	Overflow uintptr
}

func (h Hooks) validate() error {
	if h.Input == 0 || h.Output == 0 || h.Overflow == 0 {
		return errors.GenerationErrorf(-1, "host hook address is zero")
	}
	return nil
}

// Code is position-independent machine code ready to be mapped executable.
type Code struct {
	// Bytes is the encoded function.
	Bytes []byte

	// Entry is the offset of the function entry point within Bytes.
	Entry int

	// Offsets holds the start of each instruction's native code, indexed by
	// instruction.
	Offsets []int
}

type loopLabels struct {
	index int
	entry Label // loop body, target of the closing JumpIfNonZero
	exit  Label // just past the closing JumpIfNonZero
}

type generator struct {
	asm      *Assembler
	hooks    Hooks
	exit     Label
	overflow Label
	loops    []loopLabels
}

// Generate lowers p to machine code that calls back into the host through
// hooks.
func Generate(p *compiler.Program, hooks Hooks) (*Code, error) {
	if err := hooks.validate(); err != nil {
		return nil, err
	}
	if err := p.Verify(); err != nil {
		return nil, errors.GenerationErrorf(-1, "%v", err)
	}
	g := &generator{asm: NewAssembler(), hooks: hooks}
	g.exit = g.asm.NewLabel()
	g.overflow = g.asm.NewLabel()

	g.prologue()
	offsets := make([]int, len(p.Instructions))
	for i, instr := range p.Instructions {
		offsets[i] = g.asm.Len()
		if err := g.lower(i, instr); err != nil {
			return nil, err
		}
	}
	if n := len(g.loops); n > 0 {
		open := g.loops[n-1]
		return nil, errors.GenerationErrorf(open.index, "loop opened here is never closed")
	}

	// Success path falls through into the shared epilogue with rax = 0.
	g.asm.XorR32(RAX)
	g.asm.Bind(g.exit)
	g.epilogue()

	g.asm.Bind(g.overflow)
	g.hostCall(hooks.Overflow)
	g.asm.Jmp(g.exit)

	code, err := g.asm.Finalize()
	if err != nil {
		return nil, errors.GenerationErrorf(-1, "%v", err)
	}
	return &Code{Bytes: code, Entry: 0, Offsets: offsets}, nil
}

func (g *generator) prologue() {
	a := g.asm
	a.Push(RBX)
	a.Push(R12)
	a.Push(R13)
	a.Push(R14)
	a.SubRI(RSP, 8)
	a.MovRR(regCtx, RDI)
	a.MovRR(regStart, RSI)
	a.MovRR(regEnd, RDX)
	a.MovRR(regCursor, RSI)
}

func (g *generator) epilogue() {
	a := g.asm
	a.AddRI(RSP, 8)
	a.Pop(R14)
	a.Pop(R13)
	a.Pop(R12)
	a.Pop(RBX)
	a.Ret()
}

// hostCall emits fn(ctx, cursor) leaving the result in rax.
func (g *generator) hostCall(fn uintptr) {
	a := g.asm
	a.MovRR(RDI, regCtx)
	a.MovRR(RSI, regCursor)
	a.MovRI64(RAX, uint64(fn))
	a.CallR(RAX)
}

func (g *generator) lower(i int, instr op.Instruction) error {
	a := g.asm
	switch instr.Code {
	case op.AddVal:
		a.AddMem8(regCursor, instr.Value())
	case op.SubVal:
		a.SubMem8(regCursor, instr.Value())
	case op.AddPtr:
		g.movePointer(instr.Operand, a.AddRI, a.AddRR)
		// Carry means the address space wrapped.
		a.Jcc(CondB, g.overflow)
		a.CmpRR(regCursor, regEnd)
		a.Jcc(CondAE, g.overflow)
	case op.SubPtr:
		g.movePointer(instr.Operand, a.SubRI, a.SubRR)
		a.Jcc(CondB, g.overflow)
		a.CmpRR(regCursor, regStart)
		a.Jcc(CondB, g.overflow)
	case op.GetByte:
		g.hostCall(g.hooks.Input)
		a.TestRR(RAX, RAX)
		a.Jcc(CondNE, g.exit)
	case op.PutByte:
		g.hostCall(g.hooks.Output)
		a.TestRR(RAX, RAX)
		a.Jcc(CondNE, g.exit)
	case op.JumpIfZero:
		loop := loopLabels{index: i, entry: a.NewLabel(), exit: a.NewLabel()}
		g.loops = append(g.loops, loop)
		a.CmpMem8(regCursor, 0)
		a.Jcc(CondE, loop.exit)
		a.Bind(loop.entry)
	case op.JumpIfNonZero:
		n := len(g.loops)
		if n == 0 {
			return errors.GenerationErrorf(i, "loop end has no matching loop start")
		}
		loop := g.loops[n-1]
		g.loops = g.loops[:n-1]
		a.CmpMem8(regCursor, 0)
		a.Jcc(CondNE, loop.entry)
		a.Bind(loop.exit)
	default:
		return errors.GenerationErrorf(i, "cannot lower opcode %s", instr.Code)
	}
	return nil
}

// movePointer applies an unsigned 32-bit displacement to the cursor. The
// immediate forms sign-extend, so larger operands go through eax, whose
// 32-bit move zero-extends into rax.
func (g *generator) movePointer(n uint32, withImm func(Reg, int32), withReg func(Reg, Reg)) {
	if n <= math.MaxInt32 {
		withImm(regCursor, int32(n))
		return
	}
	g.asm.MovRI32(RAX, n)
	withReg(regCursor, RAX)
}
