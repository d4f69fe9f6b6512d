package main

import (
	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/bfjit/dis"
	"github.com/deepnoodle-ai/bfjit/jit"
)

// listingHooks stand in for the host callbacks when generating code only to
// report its layout. The addresses are immediates and do not change sizes.
var listingHooks = jit.Hooks{Input: 1, Output: 2, Overflow: 3}

func (a *app) disCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dis FILE",
		Short: "Print the compiled instructions of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.compileFile(args[0])
			if err != nil {
				return err
			}
			instructions := dis.Disassemble(p)
			if a.v.GetBool("native") {
				code, err := jit.Generate(p, listingHooks)
				if err != nil {
					return err
				}
				if err := dis.AttachNative(instructions, code); err != nil {
					return err
				}
			}
			dis.Print(instructions, a.stdout)
			return nil
		},
	}
	cmd.Flags().Bool("native", false, "show the offset of each instruction's machine code")
	return cmd
}
