package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/bfjit/llvmgen"
)

func (a *app) llvmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "llvm FILE",
		Short: "Emit the program as LLVM IR",
		Long: `Emit the program as an LLVM IR module defining main. Build it with:

  bfjit llvm prog.bf --out prog.ll && clang -O2 -o prog prog.ll`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.compileFile(args[0])
			if err != nil {
				return err
			}
			mod, err := llvmgen.Generate(p, a.v.GetInt("tape-size"))
			if err != nil {
				return err
			}
			path := a.v.GetString("out")
			if path == "" {
				_, err := io.WriteString(a.stdout, mod.String())
				return err
			}
			return os.WriteFile(path, []byte(mod.String()), 0o644)
		},
	}
	cmd.Flags().String("out", "", "write the module to this path instead of stdout")
	return cmd
}
