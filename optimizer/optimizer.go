// Package optimizer implements a peephole pass that collapses runs of
// identical arithmetic and cursor instructions.
//
// Runs of AddVal, SubVal, AddPtr or SubPtr merge into a single instruction
// whose operand is the wrapping sum of the run: modulo 256 for the value
// instructions and modulo 2^32 for the cursor instructions. GetByte, PutByte
// and both jumps are copied through unchanged and end any run.
//
// Jump targets are absolute instruction indices, so compaction moves them.
// The pass records where every surviving instruction lands and rewrites
// each jump target through that map once compaction is done.
package optimizer

import (
	"fmt"

	"github.com/deepnoodle-ai/bfjit/compiler"
	"github.com/deepnoodle-ai/bfjit/op"
)

// Stats describes the effect of an optimization pass.
type Stats struct {
	Before int
	After  int
}

// Removed returns the number of instructions eliminated.
func (s Stats) Removed() int {
	return s.Before - s.After
}

// Optimize folds p in place and returns what changed. It never fails on a
// program that satisfies compiler.Program.Verify; a pass that would break
// the loop pairing invariant panics, as that can only be a bug here.
func Optimize(p *compiler.Program) Stats {
	stats := Stats{Before: len(p.Instructions)}
	p.Instructions, p.Locations = coalesce(p.Instructions, p.Locations, op.Code.Foldable, combine)
	stats.After = len(p.Instructions)
	if err := p.Verify(); err != nil {
		panic(fmt.Sprintf("optimizer: folding broke the program: %v", err))
	}
	return stats
}

// combine adds two operands of the given foldable opcode with the
// wraparound of that opcode's operand width.
func combine(code op.Code, a, b uint32) uint32 {
	if op.GetInfo(code).OperandKind == op.ValueOperand {
		return uint32(uint8(a) + uint8(b))
	}
	return a + b
}

// coalesce merges runs of adjacent instructions that share an opcode for
// which foldable returns true, combining their operands with merge. It
// compacts instrs in place, keeps the first location of every run, and
// remaps jump targets to the new indices.
func coalesce(
	instrs []op.Instruction,
	locs []compiler.SourceLocation,
	foldable func(op.Code) bool,
	merge func(code op.Code, a, b uint32) uint32,
) ([]op.Instruction, []compiler.SourceLocation) {
	hasLocs := len(locs) == len(instrs) && locs != nil
	remap := make([]uint32, len(instrs))
	w := 0
	for r := 0; r < len(instrs); {
		cur := instrs[r]
		remap[r] = uint32(w)
		loc := r
		r++
		if foldable(cur.Code) {
			for r < len(instrs) && instrs[r].Code == cur.Code {
				cur.Operand = merge(cur.Code, cur.Operand, instrs[r].Operand)
				remap[r] = uint32(w)
				r++
			}
		}
		instrs[w] = cur
		if hasLocs {
			locs[w] = locs[loc]
		}
		w++
	}
	instrs = instrs[:w:w]
	for i := range instrs {
		if instrs[i].Code.IsJump() && int(instrs[i].Operand) < len(remap) {
			instrs[i].Operand = remap[instrs[i].Operand]
		}
	}
	if hasLocs {
		locs = locs[:w:w]
	}
	return instrs, locs
}
