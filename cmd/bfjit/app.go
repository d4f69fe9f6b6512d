package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deepnoodle-ai/bfjit/vm"
)

// errReported is returned by commands that already printed their own
// diagnostic. It sets the exit status without printing anything else.
var errReported = errors.New("error already reported")

type app struct {
	v      *viper.Viper
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger zerolog.Logger
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		v:      viper.New(),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: zerolog.Nop(),
	}
}

// execute runs the command line and returns the process exit status.
func (a *app) execute(ctx context.Context, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			a.printError(err)
		}
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bfjit FILE",
		Short: "Compile Brainfuck to native code and run it",
		Long: `bfjit compiles a Brainfuck program to x86-64 machine code and runs it
in-process, reading from stdin and writing to stdout.

Every flag can also be set with a BFJIT_ environment variable
(BFJIT_OPTIMIZE=true) or in $HOME/.bfjit.yaml.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFile(cmd.Context(), args[0])
		},
	}
	flags := root.PersistentFlags()
	flags.BoolP("optimize", "o", false, "fold repeated operations before running")
	flags.String("backend", "auto", "execution backend: auto, jit or interp")
	flags.Int("tape-size", vm.DefaultTapeSize, "number of tape cells")
	flags.String("log-level", "warn", "log level: debug, info, warn, error or disabled")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("config", "", "config file (default $HOME/.bfjit.yaml)")

	root.AddCommand(
		a.disCmd(),
		a.checkCmd(),
		a.llvmCmd(),
		a.versionCmd(),
	)
	return root
}

// initConfig binds flags, environment and config file into viper and
// applies the global settings.
func (a *app) initConfig(cmd *cobra.Command) error {
	a.v.SetEnvPrefix("BFJIT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := a.v.BindPFlags(cmd.InheritedFlags()); err != nil {
		return err
	}
	if err := a.readConfigFile(); err != nil {
		return err
	}
	a.processGlobalFlags()

	level, err := zerolog.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level %q", a.v.GetString("log-level"))
	}
	a.logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     a.stderr,
		NoColor: !a.colorize(a.stderr),
	}).Level(level).With().Timestamp().Logger()
	return nil
}

func (a *app) readConfigFile() error {
	path := a.v.GetString("config")
	explicit := path != ""
	if !explicit {
		home, err := homedir.Dir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, ".bfjit.yaml")
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("config file: %w", err)
		}
		return nil
	}
	a.v.SetConfigFile(path)
	if err := a.v.ReadInConfig(); err != nil {
		return fmt.Errorf("config file: %w", err)
	}
	return nil
}

// Reads global flags from viper and adjusts the environment accordingly.
func (a *app) processGlobalFlags() {
	if a.v.GetBool("no-color") {
		color.NoColor = true
	}
}

// colorize reports whether w is a terminal and color is enabled.
func (a *app) colorize(w io.Writer) bool {
	if a.v.GetBool("no-color") {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// printError writes err as a single line, in red on a terminal.
func (a *app) printError(err error) {
	msg := strings.Join(strings.Fields(err.Error()), " ")
	if a.colorize(a.stderr) {
		red := color.New(color.FgRed)
		red.EnableColor()
		msg = red.Sprint(msg)
	}
	fmt.Fprintln(a.stderr, msg)
}
