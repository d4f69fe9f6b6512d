package vm

import (
	"context"

	bferrors "github.com/deepnoodle-ai/bfjit/errors"
	"github.com/deepnoodle-ai/bfjit/op"
)

// interpret runs the program one instruction at a time. It has the same
// observable behavior as the generated code and additionally attributes
// runtime errors to a source location.
func (e *Engine) interpret(ctx context.Context) error {
	instrs := e.program.Instructions
	tape := e.tape
	size := int64(len(tape))
	host := e.host
	cursor := 0

	var filter *stepFilter
	if e.observer != nil {
		filter = newStepFilter(e.observer.Config())
	}

	// Instruction counter for deterministic context checking
	var instructionCount int
	checkInterval := e.contextCheckInterval
	doneChan := ctx.Done()

	for ip := 0; ip < len(instrs); ip++ {
		if checkInterval > 0 && doneChan != nil {
			instructionCount++
			if instructionCount >= checkInterval {
				instructionCount = 0
				select {
				case <-doneChan:
					return ctx.Err()
				default:
				}
			}
		}

		instr := instrs[ip]

		if filter != nil {
			loc := e.program.LocationAt(ip)
			if filter.want(loc) {
				event := StepEvent{
					IP:         ip,
					Opcode:     instr.Code,
					OpcodeName: op.GetInfo(instr.Code).Name,
					Location:   loc,
					Cursor:     cursor,
					Cell:       tape[cursor],
				}
				if !e.observer.OnStep(event) {
					return ErrHalted
				}
			}
		}

		switch instr.Code {
		case op.AddVal:
			tape[cursor] += instr.Value()
		case op.SubVal:
			tape[cursor] -= instr.Value()
		case op.AddPtr:
			next := int64(cursor) + int64(instr.Operand)
			if next >= size {
				return e.overflow(ip, next)
			}
			cursor = int(next)
		case op.SubPtr:
			next := int64(cursor) - int64(instr.Operand)
			if next < 0 {
				return e.overflow(ip, next)
			}
			cursor = int(next)
		case op.GetByte:
			if err := host.GetByte(&tape[cursor]); err != nil {
				return bferrors.NewIOFailure(err).WithLocation(e.program.LocationAt(ip))
			}
		case op.PutByte:
			if err := host.PutByte(tape[cursor]); err != nil {
				return bferrors.NewIOFailure(err).WithLocation(e.program.LocationAt(ip))
			}
		case op.JumpIfZero:
			if tape[cursor] == 0 {
				ip = instr.Target()
			}
		case op.JumpIfNonZero:
			if tape[cursor] != 0 {
				ip = instr.Target()
			}
		default:
			return bferrors.GenerationErrorf(ip, "cannot interpret opcode %s", instr.Code)
		}
	}
	return nil
}

func (e *Engine) overflow(ip int, offset int64) error {
	return bferrors.NewPointerOverflow(offset).WithLocation(e.program.LocationAt(ip))
}
