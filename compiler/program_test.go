package compiler

import (
	"testing"

	"github.com/deepnoodle-ai/bfjit/op"
	"github.com/stretchr/testify/require"
)

func TestVerifyRejectsBrokenPrograms(t *testing.T) {
	tests := []struct {
		name   string
		instrs []op.Instruction
		errMsg string
	}{
		{
			name:   "jump out of range",
			instrs: []op.Instruction{op.NewJumpIfZero(5), op.NewJumpIfNonZero(0)},
			errMsg: "instruction 0: JUMP_IF_ZERO target 5 out of range",
		},
		{
			name:   "jump to wrong kind",
			instrs: []op.Instruction{op.NewJumpIfZero(1), op.NewAddVal(1)},
			errMsg: "instruction 0: JUMP_IF_ZERO target 1 is ADD_VAL 1, not its partner",
		},
		{
			name:   "backward target",
			instrs: []op.Instruction{op.NewAddVal(1), op.NewJumpIfZero(0)},
			errMsg: "instruction 1: JUMP_IF_ZERO target 0 out of range",
		},
		{
			name:   "dangling close",
			instrs: []op.Instruction{op.NewJumpIfNonZero(0)},
			errMsg: "instruction 0: JUMP_IF_NON_ZERO has no open loop",
		},
		{
			name: "crossing loops",
			instrs: []op.Instruction{
				op.NewJumpIfZero(2),
				op.NewJumpIfZero(3),
				op.NewJumpIfNonZero(0),
				op.NewJumpIfNonZero(1),
			},
			errMsg: "instruction 2: JUMP_IF_NON_ZERO target 0 crosses loop opened at 1",
		},
		{
			name:   "value operand too wide",
			instrs: []op.Instruction{{Code: op.AddVal, Operand: 256}},
			errMsg: "instruction 0: ADD_VAL operand 256 exceeds a byte",
		},
		{
			name:   "invalid opcode",
			instrs: []op.Instruction{{Code: op.Invalid}},
			errMsg: "instruction 0: invalid opcode 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&Program{Instructions: tt.instrs}).Verify()
			require.NotNil(t, err)
			require.Equal(t, tt.errMsg, err.Error())
		})
	}
}

func TestVerifyLocationCount(t *testing.T) {
	p := &Program{
		Instructions: []op.Instruction{op.NewAddVal(1)},
		Locations:    []SourceLocation{},
	}
	require.EqualError(t, p.Verify(), "program has 1 instructions but 0 locations")
}

func TestClone(t *testing.T) {
	prog, err := Compile("+[-]", &Config{Filename: "c.bf"})
	require.Nil(t, err)
	cp := prog.Clone()
	require.Equal(t, prog, cp)
	cp.Instructions[0] = op.NewSubVal(9)
	cp.Locations[0].Column = 42
	require.Equal(t, op.NewAddVal(1), prog.Instructions[0])
	require.Equal(t, 1, prog.Locations[0].Column)
}
