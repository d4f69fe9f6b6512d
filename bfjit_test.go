package bfjit

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/bfjit/errors"
	"github.com/deepnoodle-ai/bfjit/op"
	"github.com/deepnoodle-ai/bfjit/vm"
)

func TestCompile(t *testing.T) {
	p, err := Compile("+[,.]")
	require.Nil(t, err)
	require.Equal(t, []op.Instruction{
		op.NewAddVal(1),
		op.NewJumpIfZero(4),
		op.NewGetByte(),
		op.NewPutByte(),
		op.NewJumpIfNonZero(1),
	}, p.Instructions)
}

func TestCompileOptimized(t *testing.T) {
	p, err := Compile("[+++++]", WithOptimize(true))
	require.Nil(t, err)
	require.Equal(t, []op.Instruction{
		op.NewJumpIfZero(2),
		op.NewAddVal(5),
		op.NewJumpIfNonZero(0),
	}, p.Instructions)
}

func TestCompileErrors(t *testing.T) {
	_, err := Compile("[", WithFilename("a.bf"))
	var compileErr *errors.CompileError
	require.ErrorAs(t, err, &compileErr)
	require.Equal(t, errors.UnclosedLeftBracket, compileErr.Kind)

	_, err = Compile("]")
	require.ErrorAs(t, err, &compileErr)
	require.Equal(t, errors.UnexpectedRightBracket, compileErr.Kind)
}

func TestRun(t *testing.T) {
	for _, backend := range []vm.Backend{vm.BackendAuto, vm.BackendInterpreter} {
		t.Run(backend.String(), func(t *testing.T) {
			var out bytes.Buffer
			err := Run(context.Background(), ",[.,]",
				WithInput(strings.NewReader("AB\x00")),
				WithOutput(&out),
				WithOptimize(true),
				WithTapeSize(64),
				WithBackend(backend))
			require.Nil(t, err)
			require.Equal(t, "AB", out.String())
		})
	}
}

func TestRunOverflow(t *testing.T) {
	err := Run(context.Background(), ">>", WithTapeSize(2))
	require.True(t, errors.IsPointerOverflow(err))
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bang.bf")
	require.Nil(t, os.WriteFile(path, []byte(strings.Repeat("+", 33)+"."), 0o644))
	var out bytes.Buffer
	require.Nil(t, RunFile(context.Background(), path, WithOutput(&out)))
	require.Equal(t, "!", out.String())

	err := RunFile(context.Background(), path+".missing")
	var vmErr *errors.VMError
	require.ErrorAs(t, err, &vmErr)
	require.Equal(t, errors.StageLoad, vmErr.Stage)
}
