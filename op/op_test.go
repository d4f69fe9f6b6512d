package op

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(JumpIfNonZero)
	require.Equal(t, "JUMP_IF_NON_ZERO", info.Name)
	require.Equal(t, byte(']'), info.Symbol)
	require.Equal(t, TargetOperand, info.OperandKind)
	require.Equal(t, JumpIfNonZero, info.Code)
}

func TestGetInfoAllOpcodes(t *testing.T) {
	tests := []struct {
		code   Code
		name   string
		symbol byte
		kind   OperandKind
	}{
		{AddVal, "ADD_VAL", '+', ValueOperand},
		{SubVal, "SUB_VAL", '-', ValueOperand},
		{AddPtr, "ADD_PTR", '>', PointerOperand},
		{SubPtr, "SUB_PTR", '<', PointerOperand},
		{GetByte, "GET_BYTE", ',', NoOperand},
		{PutByte, "PUT_BYTE", '.', NoOperand},
		{JumpIfZero, "JUMP_IF_ZERO", '[', TargetOperand},
		{JumpIfNonZero, "JUMP_IF_NON_ZERO", ']', TargetOperand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := GetInfo(tt.code)
			require.Equal(t, tt.code, info.Code)
			require.Equal(t, tt.name, info.Name)
			require.Equal(t, tt.symbol, info.Symbol)
			require.Equal(t, tt.kind, info.OperandKind)
			require.Equal(t, tt.name, tt.code.String())
		})
	}
}

func TestInvalidCode(t *testing.T) {
	require.Equal(t, "", GetInfo(Invalid).Name)
	require.Equal(t, "INVALID(0)", Invalid.String())
	require.Equal(t, Info{}, GetInfo(Code(200)))
}

func TestFoldableAndJump(t *testing.T) {
	for _, c := range []Code{AddVal, SubVal, AddPtr, SubPtr} {
		require.True(t, c.Foldable(), c.String())
		require.False(t, c.IsJump(), c.String())
	}
	for _, c := range []Code{GetByte, PutByte} {
		require.False(t, c.Foldable(), c.String())
		require.False(t, c.IsJump(), c.String())
	}
	for _, c := range []Code{JumpIfZero, JumpIfNonZero} {
		require.False(t, c.Foldable(), c.String())
		require.True(t, c.IsJump(), c.String())
	}
}

func TestInstructionString(t *testing.T) {
	require.Equal(t, "ADD_VAL 5", NewAddVal(5).String())
	require.Equal(t, "SUB_PTR 4294967295", NewSubPtr(0xffffffff).String())
	require.Equal(t, "GET_BYTE", NewGetByte().String())
	require.Equal(t, "JUMP_IF_ZERO 4", NewJumpIfZero(4).String())
}

func TestInstructionAccessors(t *testing.T) {
	require.Equal(t, uint8(200), NewSubVal(200).Value())
	require.Equal(t, 7, NewJumpIfNonZero(7).Target())
	require.Equal(t, Instruction{Code: PutByte}, NewPutByte())
}
