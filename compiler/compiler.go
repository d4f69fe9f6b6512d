// Package compiler turns program text into the linear instruction sequence
// defined by the op package.
//
// # Single-Pass Compilation
//
// The source is scanned once, left to right. Each of the eight command
// characters emits exactly one instruction; every other character is a
// comment. Loops are resolved on the fly with an explicit stack:
//
//   - `[` records the index it is about to occupy and emits a JumpIfZero
//     whose target is a placeholder.
//   - `]` pops the innermost open loop, patches that JumpIfZero to point at
//     the JumpIfNonZero about to be emitted, and emits a JumpIfNonZero that
//     points back at the JumpIfZero.
//
// The two jumps of a loop therefore reference each other's index, so the
// loop test at either end is a single lookup.
//
// # Errors
//
// A `]` with no open loop fails immediately with UnexpectedRightBracket. If
// loops remain open at the end of input, compilation fails with
// UnclosedLeftBracket at the bracket on top of the stack, which is the most
// recently opened one.
package compiler

import (
	"math"
	"strings"

	"github.com/deepnoodle-ai/bfjit/errors"
	"github.com/deepnoodle-ai/bfjit/op"
)

// SourceLocation is an alias to errors.SourceLocation for convenience.
type SourceLocation = errors.SourceLocation

// Placeholder is the target written into a JumpIfZero before its loop is
// closed. It is always replaced before compilation completes.
const Placeholder = uint32(math.MaxUint32)

// Config holds compiler configuration options.
type Config struct {
	// Filename is the source filename, used for error messages.
	Filename string
}

// Compiler compiles source text into a Program.
type Compiler struct {
	filename     string
	instructions []op.Instruction
	locations    []SourceLocation

	// Open loops, innermost last.
	loops []openLoop
}

type openLoop struct {
	index    int
	location SourceLocation
}

// New returns a compiler configured by cfg. Pass nil for defaults.
func New(cfg *Config) *Compiler {
	c := &Compiler{}
	if cfg != nil {
		c.filename = cfg.Filename
	}
	return c
}

// Compile compiles source and returns the resulting program.
// Pass nil for cfg to use default settings.
func Compile(source string, cfg *Config) (*Program, error) {
	return New(cfg).Compile(source)
}

// Compile compiles source and returns the resulting program. The compiler
// may be reused; each call starts from a clean state.
func (c *Compiler) Compile(source string) (*Program, error) {
	c.instructions = make([]op.Instruction, 0, len(source))
	c.locations = make([]SourceLocation, 0, len(source))
	c.loops = c.loops[:0]

	line, col := 1, 0
	lineText := firstLine(source)
	for offset, ch := range source {
		col++
		if ch == '\n' {
			line++
			col = 0
			lineText = firstLine(source[offset+1:])
			continue
		}
		loc := SourceLocation{
			Filename: c.filename,
			Line:     line,
			Column:   col,
			Source:   lineText,
		}
		switch ch {
		case '+':
			c.emit(op.NewAddVal(1), loc)
		case '-':
			c.emit(op.NewSubVal(1), loc)
		case '>':
			c.emit(op.NewAddPtr(1), loc)
		case '<':
			c.emit(op.NewSubPtr(1), loc)
		case ',':
			c.emit(op.NewGetByte(), loc)
		case '.':
			c.emit(op.NewPutByte(), loc)
		case '[':
			c.loops = append(c.loops, openLoop{index: len(c.instructions), location: loc})
			c.emit(op.NewJumpIfZero(Placeholder), loc)
		case ']':
			if len(c.loops) == 0 {
				return nil, &errors.CompileError{
					Kind:     errors.UnexpectedRightBracket,
					Location: loc,
				}
			}
			left := c.loops[len(c.loops)-1]
			c.loops = c.loops[:len(c.loops)-1]
			right := len(c.instructions)
			c.instructions[left.index].Operand = uint32(right)
			c.emit(op.NewJumpIfNonZero(uint32(left.index)), loc)
		}
	}

	if len(c.loops) > 0 {
		return nil, &errors.CompileError{
			Kind:     errors.UnclosedLeftBracket,
			Location: c.loops[len(c.loops)-1].location,
		}
	}

	return &Program{
		Instructions: c.instructions,
		Locations:    c.locations,
		Filename:     c.filename,
	}, nil
}

func (c *Compiler) emit(instr op.Instruction, loc SourceLocation) {
	c.instructions = append(c.instructions, instr)
	c.locations = append(c.locations, loc)
}

// firstLine returns s up to, but not including, the first newline.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSuffix(s, "\r")
}
