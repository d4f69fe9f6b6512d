// Package llvmgen emits a compiled program as an LLVM IR module. The module
// defines `main` with the same tape, I/O and bounds semantics as the native
// code generator, so it can be built ahead of time with clang.
package llvmgen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/deepnoodle-ai/bfjit/compiler"
	"github.com/deepnoodle-ai/bfjit/op"
)

const overflowMessage = "pointer overflow\n"

type loop struct {
	body *ir.Block
	end  *ir.Block
}

type generator struct {
	fn       *ir.Func
	block    *ir.Block
	tapeType *types.ArrayType
	tape     *ir.Global
	cursor   value.Value
	size     int64
	overflow *ir.Block
	getchar  *ir.Func
	putchar  *ir.Func
}

// Generate builds the module for p with a tape of tapeSize cells.
func Generate(p *compiler.Program, tapeSize int) (*ir.Module, error) {
	if tapeSize <= 0 {
		return nil, fmt.Errorf("invalid tape size %d", tapeSize)
	}
	if err := p.Verify(); err != nil {
		return nil, err
	}
	mod := ir.NewModule()
	if p.Filename != "" {
		mod.SourceFilename = p.Filename
	}

	getchar := mod.NewFunc("getchar", types.I32)
	putchar := mod.NewFunc("putchar", types.I32, ir.NewParam("ch", types.I32))
	write := mod.NewFunc("write", types.I64,
		ir.NewParam("fd", types.I32), ir.NewParam("buf", types.I8Ptr), ir.NewParam("len", types.I64))
	exit := mod.NewFunc("exit", types.Void, ir.NewParam("status", types.I32))

	tapeType := types.NewArray(uint64(tapeSize), types.I8)
	tape := mod.NewGlobalDef("tape", constant.NewZeroInitializer(tapeType))
	tape.Linkage = enum.LinkageInternal

	msg := constant.NewCharArrayFromString(overflowMessage)
	msgGlobal := mod.NewGlobalDef("overflow_msg", msg)
	msgGlobal.Linkage = enum.LinkagePrivate
	msgGlobal.Immutable = true

	mainFn := mod.NewFunc("main", types.I32)
	entry := mainFn.NewBlock("entry")
	cursor := entry.NewAlloca(types.I64)
	entry.NewStore(constant.NewInt(types.I64, 0), cursor)

	overflow := mainFn.NewBlock("overflow")
	msgPtr := constant.NewGetElementPtr(msg.Typ, msgGlobal,
		constant.NewInt(types.I64, 0), constant.NewInt(types.I64, 0))
	overflow.NewCall(write, constant.NewInt(types.I32, 2), msgPtr,
		constant.NewInt(types.I64, int64(len(overflowMessage))))
	overflow.NewCall(exit, constant.NewInt(types.I32, 1))
	overflow.NewUnreachable()

	body := mainFn.NewBlock("body")
	entry.NewBr(body)

	g := &generator{
		fn:       mainFn,
		block:    body,
		tapeType: tapeType,
		tape:     tape,
		cursor:   cursor,
		size:     int64(tapeSize),
		overflow: overflow,
		getchar:  getchar,
		putchar:  putchar,
	}
	var stack []loop
	for i, instr := range p.Instructions {
		switch instr.Code {
		case op.AddVal:
			ptr := g.cell()
			sum := g.block.NewAdd(g.block.NewLoad(types.I8, ptr), constant.NewInt(types.I8, int64(instr.Value())))
			g.block.NewStore(sum, ptr)
		case op.SubVal:
			ptr := g.cell()
			diff := g.block.NewSub(g.block.NewLoad(types.I8, ptr), constant.NewInt(types.I8, int64(instr.Value())))
			g.block.NewStore(diff, ptr)
		case op.AddPtr:
			cur := g.block.NewLoad(types.I64, g.cursor)
			next := g.block.NewAdd(cur, constant.NewInt(types.I64, int64(instr.Operand)))
			out := g.block.NewICmp(enum.IPredUGE, next, constant.NewInt(types.I64, g.size))
			g.checked(out)
			g.block.NewStore(next, g.cursor)
		case op.SubPtr:
			cur := g.block.NewLoad(types.I64, g.cursor)
			n := constant.NewInt(types.I64, int64(instr.Operand))
			out := g.block.NewICmp(enum.IPredULT, cur, n)
			g.checked(out)
			g.block.NewStore(g.block.NewSub(cur, n), g.cursor)
		case op.GetByte:
			ch := g.block.NewCall(g.getchar)
			eof := g.block.NewICmp(enum.IPredEQ, ch, constant.NewInt(types.I32, -1))
			store := g.fn.NewBlock("")
			cont := g.fn.NewBlock("")
			g.block.NewCondBr(eof, cont, store)
			store.NewStore(store.NewTrunc(ch, types.I8), g.cellIn(store))
			store.NewBr(cont)
			g.block = cont
		case op.PutByte:
			ch := g.block.NewLoad(types.I8, g.cell())
			g.block.NewCall(g.putchar, g.block.NewZExt(ch, types.I32))
		case op.JumpIfZero:
			lp := loop{body: g.fn.NewBlock(""), end: g.fn.NewBlock("")}
			stack = append(stack, lp)
			g.block.NewCondBr(g.nonZero(), lp.body, lp.end)
			g.block = lp.body
		case op.JumpIfNonZero:
			if len(stack) == 0 {
				return nil, fmt.Errorf("instruction %d: loop end has no matching loop start", i)
			}
			lp := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			g.block.NewCondBr(g.nonZero(), lp.body, lp.end)
			g.block = lp.end
		default:
			return nil, fmt.Errorf("instruction %d: cannot lower opcode %s", i, instr.Code)
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("%d loops are never closed", len(stack))
	}
	g.block.NewRet(constant.NewInt(types.I32, 0))
	return mod, nil
}

func (g *generator) cell() value.Value {
	return g.cellIn(g.block)
}

func (g *generator) cellIn(block *ir.Block) value.Value {
	return block.NewGetElementPtr(g.tapeType, g.tape,
		constant.NewInt(types.I64, 0), block.NewLoad(types.I64, g.cursor))
}

func (g *generator) nonZero() value.Value {
	return g.block.NewICmp(enum.IPredNE, g.block.NewLoad(types.I8, g.cell()), constant.NewInt(types.I8, 0))
}

// checked branches to the overflow block when out is true and continues in
// a fresh block otherwise.
func (g *generator) checked(out value.Value) {
	cont := g.fn.NewBlock("")
	g.block.NewCondBr(out, g.overflow, cont)
	g.block = cont
}
