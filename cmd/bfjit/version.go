package main

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deepnoodle-ai/bfjit/jit"
)

func (a *app) versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := map[string]any{
				"version": version,
				"commit":  commit,
				"date":    date,
				"jit":     jit.Supported(),
				"os":      runtime.GOOS,
				"arch":    runtime.GOARCH,
			}
			switch strings.ToLower(a.v.GetString("output")) {
			case "json":
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, string(data))
			case "", "text":
				fmt.Fprintf(a.stdout, "bfjit %s (commit %s, built %s, %s/%s, jit=%t)\n",
					version, commit, date, runtime.GOOS, runtime.GOARCH, jit.Supported())
			default:
				return fmt.Errorf("unknown output format: %s", a.v.GetString("output"))
			}
			return nil
		},
	}
	cmd.Flags().String("output", "text", "output format: text or json")
	return cmd
}
