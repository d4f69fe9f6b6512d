package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/bfjit/jit"
)

const helloWorld = "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(strings.NewReader(stdin), &stdout, &stderr)
	// Keep tests independent of the developer's home config.
	args = append(args, "--config", writeFile(t, "empty.yaml", ""))
	code := a.execute(context.Background(), args)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.Nil(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunHelloWorld(t *testing.T) {
	path := writeFile(t, "hello.bf", helloWorld)
	for _, args := range [][]string{
		{path},
		{path, "-o"},
		{path, "--optimize", "--backend", "interp"},
	} {
		res := runCLI(t, "", args...)
		require.Equal(t, 0, res.code, res.stderr)
		require.Equal(t, "Hello World!\n", res.stdout)
		require.Empty(t, res.stderr)
	}
}

func TestRunEcho(t *testing.T) {
	path := writeFile(t, "echo.bf", ",[.,]")
	res := runCLI(t, "AB\x00", path, "--optimize")
	require.Equal(t, 0, res.code)
	require.Equal(t, "AB", res.stdout)
}

func TestRunFailureFlushesOutput(t *testing.T) {
	path := writeFile(t, "bang.bf", strings.Repeat("+", 33)+".<")
	res := runCLI(t, "", path, "--tape-size", "8")
	require.Equal(t, 1, res.code)
	require.Equal(t, "!", res.stdout)
	require.Equal(t, 1, strings.Count(res.stderr, "\n"))
	require.Contains(t, res.stderr, "pointer overflow")
}

func TestRunCompileError(t *testing.T) {
	path := writeFile(t, "bad.bf", "+\n[")
	res := runCLI(t, "", path)
	require.Equal(t, 1, res.code)
	require.Equal(t, "compile error: unclosed left bracket at "+path+":2:1\n", res.stderr)
}

func TestRunMissingFile(t *testing.T) {
	res := runCLI(t, "", filepath.Join(t.TempDir(), "nope.bf"))
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "load error")
}

func TestRunRequiresFile(t *testing.T) {
	res := runCLI(t, "")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "accepts 1 arg(s)")
}

func TestRunBadBackend(t *testing.T) {
	path := writeFile(t, "p.bf", "+")
	res := runCLI(t, "", path, "--backend", "gpu")
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, `unknown backend "gpu"`)
}

func TestEnvironmentOverrides(t *testing.T) {
	path := writeFile(t, "right.bf", ">>>>+")
	t.Setenv("BFJIT_TAPE_SIZE", "4")
	res := runCLI(t, "", path)
	require.Equal(t, 1, res.code)
	require.Contains(t, res.stderr, "pointer overflow (cursor offset 4)")
}

func TestConfigFile(t *testing.T) {
	path := writeFile(t, "right.bf", ">>+")
	config := writeFile(t, "bfjit.yaml", "tape-size: 2\n")
	var stdout, stderr bytes.Buffer
	code := newApp(strings.NewReader(""), &stdout, &stderr).
		execute(context.Background(), []string{path, "--config", config})
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "pointer overflow (cursor offset 2)")
}

func TestMissingConfigFile(t *testing.T) {
	path := writeFile(t, "p.bf", "+")
	var stdout, stderr bytes.Buffer
	code := newApp(strings.NewReader(""), &stdout, &stderr).
		execute(context.Background(), []string{path, "--config", filepath.Join(t.TempDir(), "none.yaml")})
	require.Equal(t, 1, code)
	require.Contains(t, stderr.String(), "config file")
}

func TestDebugLogging(t *testing.T) {
	path := writeFile(t, "p.bf", "+++")
	res := runCLI(t, "", path, "--log-level", "debug", "-o", "--no-color")
	require.Equal(t, 0, res.code)
	require.Contains(t, res.stderr, "compiled program")
	require.Contains(t, res.stderr, "optimized program")
}

func TestDis(t *testing.T) {
	path := writeFile(t, "loop.bf", "+[,.]")
	res := runCLI(t, "", "dis", path, "--no-color")
	require.Equal(t, 0, res.code, res.stderr)
	expected := strings.TrimPrefix(`
+--------+------------------+----------+------+----------+
| OFFSET |      OPCODE      | OPERANDS | INFO | LOCATION |
+--------+------------------+----------+------+----------+
|      0 | ADD_VAL          |        1 |      | 1:1      |
|      1 | JUMP_IF_ZERO     |        4 | -> 4 | 1:2      |
|      2 | GET_BYTE         |          |      | 1:3      |
|      3 | PUT_BYTE         |          |      | 1:4      |
|      4 | JUMP_IF_NON_ZERO |        1 | -> 1 | 1:5      |
+--------+------------------+----------+------+----------+
`, "\n")
	require.Equal(t, expected, res.stdout)
}

func TestDisOptimizedNative(t *testing.T) {
	path := writeFile(t, "fold.bf", "+++>>")
	res := runCLI(t, "", "dis", path, "-o", "--native", "--no-color")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "| ADD_VAL ")
	require.Contains(t, res.stdout, "|        3 |")
	require.Contains(t, res.stdout, "|        2 |")
	require.Contains(t, res.stdout, "NATIVE")
}

func TestCheck(t *testing.T) {
	good := writeFile(t, "good.bf", "+[-]")
	res := runCLI(t, "", "check", good)
	require.Equal(t, 0, res.code)
	require.Equal(t, good+": ok (4 instructions)\n", res.stdout)

	bad := writeFile(t, "bad.bf", "++]")
	res = runCLI(t, "", "check", bad, "--no-color")
	require.Equal(t, 1, res.code)
	require.Equal(t, strings.Join([]string{
		"compile error[E1002]: unexpected right bracket",
		"  --> " + bad + ":1:3",
		"   |",
		" 1 | ++]",
		"   |   ^",
		"   = hint: remove this `]` or open the loop with a `[` before it",
		"",
	}, "\n"), res.stderr)
}

func TestLLVM(t *testing.T) {
	path := writeFile(t, "p.bf", "+.")
	res := runCLI(t, "", "llvm", path, "--tape-size", "32")
	require.Equal(t, 0, res.code, res.stderr)
	require.Contains(t, res.stdout, "@tape = internal global [32 x i8] zeroinitializer")
	require.Contains(t, res.stdout, "define i32 @main()")

	out := filepath.Join(t.TempDir(), "p.ll")
	res = runCLI(t, "", "llvm", path, "--out", out)
	require.Equal(t, 0, res.code, res.stderr)
	require.Empty(t, res.stdout)
	data, err := os.ReadFile(out)
	require.Nil(t, err)
	require.Contains(t, string(data), "call i32 @putchar")
}

func TestVersion(t *testing.T) {
	res := runCLI(t, "", "version")
	require.Equal(t, 0, res.code)
	require.True(t, strings.HasPrefix(res.stdout, "bfjit dev (commit unknown"))

	res = runCLI(t, "", "version", "--output", "json")
	require.Equal(t, 0, res.code)
	require.Contains(t, res.stdout, `"version": "dev"`)
	if jit.Supported() {
		require.Contains(t, res.stdout, `"jit": true`)
	}
}
