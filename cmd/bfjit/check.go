package main

import (
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/bfjit/errors"
)

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Compile a program and report problems with source context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.compileFile(args[0])
			if err != nil {
				var formattable errors.FormattableError
				if stderrors.As(err, &formattable) {
					formatter := errors.NewFormatter(a.colorize(a.stderr))
					fmt.Fprint(a.stderr, formatter.Format(formattable.ToFormatted()))
					return errReported
				}
				return err
			}
			fmt.Fprintf(a.stdout, "%s: ok (%d instructions)\n", args[0], p.Len())
			return nil
		},
	}
}
