package vm

import (
	"context"
	"io"
	"strings"
	"testing"
)

// squares prints the squares from 0 to 10000; a common loop-heavy workload.
const squares = `++++[>+++++<-]>[<+++++>-]+<+[>[>+>+<<-]++>>[<<+>>-]>>>[-]++>[-]+>>>+[[-]++++++>>>]<<<[[<++++++++<++>>-]+<.<[>----<-]<]<<[>>>>>[>>>[-]+++++++++<[>-<-]+++++++++>[-[<->-]+[<<<]]<[>+<-]>]<<-]<<-]`

func benchmarkRun(b *testing.B, source string, opts ...Option) {
	opts = append(opts, WithOutput(io.Discard))
	e, err := New(strings.NewReader(source), opts...)
	if err != nil {
		b.Fatal(err)
	}
	defer e.Close()

	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := e.Run(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHelloWorld(b *testing.B) {
	for _, backend := range backends() {
		b.Run(backend.String(), func(b *testing.B) {
			benchmarkRun(b, helloWorld, WithBackend(backend), WithOptimize(true))
		})
	}
}

func BenchmarkSquares(b *testing.B) {
	for _, backend := range backends() {
		for _, optimize := range []bool{false, true} {
			name := backend.String()
			if optimize {
				name += "/optimized"
			}
			b.Run(name, func(b *testing.B) {
				benchmarkRun(b, squares, WithBackend(backend), WithOptimize(optimize))
			})
		}
	}
}

func BenchmarkCompile(b *testing.B) {
	source := strings.Repeat(helloWorld, 64)
	for i := 0; i < b.N; i++ {
		e, err := New(strings.NewReader(source), WithBackend(BackendInterpreter), WithTapeSize(64))
		if err != nil {
			b.Fatal(err)
		}
		e.Close()
	}
}
