// Package cli wires the todo commands together.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/idilsaglam/todo-client/internal/config"
	"github.com/idilsaglam/todo-client/internal/controller"
	"github.com/idilsaglam/todo-client/internal/todoapi"
	"github.com/idilsaglam/todo-client/internal/ui"
	"github.com/idilsaglam/todo-client/internal/version"
)

// Exit codes (0 ok, 1 error, 2 usage).
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// exitError carries a message already meant for the user plus the exit
// code to finish with.
type exitError struct {
	code int
	msg  string
	hint string
}

func (e *exitError) Error() string { return e.msg }

func failf(code int, format string, args ...any) *exitError {
	return &exitError{code: code, msg: fmt.Sprintf(format, args...)}
}

func (e *exitError) withHint(h string) *exitError {
	e.hint = h
	return e
}

// rootFlags are the global flags shared by every command.
type rootFlags struct {
	configPath string
	baseURL    string
	timeout    time.Duration
	theme      string
	noColor    bool
	color      bool
	verbose    bool
}

func (f *rootFlags) register(pf *pflag.FlagSet) {
	pf.StringVar(&f.configPath, "config", "", "config file (default "+config.Path()+")")
	pf.StringVar(&f.baseURL, "base-url", "", "todo service URL (default "+config.DefaultBaseURL+")")
	pf.DurationVar(&f.timeout, "timeout", 0, "per-request timeout (default 30s)")
	pf.StringVar(&f.theme, "theme", "", "output theme: classic, neon or mono")
	pf.BoolVar(&f.noColor, "no-color", false, "disable colored output")
	pf.BoolVar(&f.color, "color", false, "force colored output even when not a TTY")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "log requests to stderr")
}

// app is what commands need once flags and config are resolved.
type app struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger
	out        io.Writer
	errOut     io.Writer
}

func (a *app) client(opts ...todoapi.Option) (*todoapi.Client, error) {
	opts = append([]todoapi.Option{
		todoapi.WithTimeout(a.cfg.Timeout),
		todoapi.WithLogger(a.logger),
	}, opts...)
	return todoapi.New(a.cfg.BaseURL, opts...)
}

func (a *app) controller() (*controller.Controller, error) {
	c, err := a.client()
	if err != nil {
		return nil, err
	}
	return controller.New(c, controller.WithLogger(a.logger)), nil
}

// NewRootCmd builds the command tree writing to out and errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	var flags rootFlags
	a := &app{out: out, errOut: errOut}

	cmd := &cobra.Command{
		Use:           "todo",
		Short:         "A tiny client for a remote todo list",
		Long:          "todo lists, adds, toggles, edits and removes items on a remote todo service.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath, config.FlagOverrides{
				BaseURL: flags.baseURL,
				Timeout: flags.timeout,
				Theme:   flags.theme,
				Verbose: flags.verbose,
				NoColor: flags.noColor,
			})
			if err != nil {
				return failf(ExitUsage, "config: %s", err)
			}
			a.cfg = cfg
			a.configPath = flags.configPath
			if a.configPath == "" {
				a.configPath = config.Path()
			}
			ui.SetColorForcing(flags.color, cfg.NoColor)
			ui.SetTheme(cfg.Theme)

			lvl, _ := cfg.Level()
			a.logger = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: lvl}))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return &exitError{code: ExitUsage}
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	flags.register(cmd.PersistentFlags())

	cmd.AddCommand(
		newListCmd(a),
		newAddCmd(a),
		newDoneCmd(a),
		newEditCmd(a),
		newRemoveCmd(a),
		newTUICmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return cmd
}

// Run executes the command line and returns the process exit code.
func Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	cmd := NewRootCmd(out, errOut)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.msg != "" {
			ui.Fail(errOut, ee.msg)
		}
		if ee.hint != "" {
			ui.Hint(errOut, ee.hint)
		}
		return ee.code
	}
	// anything else came from cobra itself: bad flags or arguments
	ui.Fail(errOut, err.Error())
	fmt.Fprintln(errOut, ui.Dim("Run `todo --help` for usage."))
	return ExitUsage
}

// Execute runs the CLI against the process arguments and exits.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
