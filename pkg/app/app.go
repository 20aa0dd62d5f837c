// Package app provides a small cobra-based scaffold shared by the fleet
// agent and cloud dispatcher binaries: wiring a RunFunc, a FlagSetOptions
// config object, and a signal-aware context behind one NewApp call so each
// cmd/ package only has to describe its own options and run loop.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RunFunc is the entry point a command hands to NewApp. It receives a
// context cancelled on SIGINT/SIGTERM so long-running loops (agent.Run,
// cloud dispatch loops) can shut down cleanly.
type RunFunc func(ctx context.Context) error

// FlagSetOptions is the capability an app's top-level options struct must
// provide: it registers every nested options.IOptions section's flags on
// one flag set and validates them all together.
type FlagSetOptions interface {
	AddFlags(fs *pflag.FlagSet)
	Validate() []error
}

// App wraps a cobra.Command with the defaults every fleetdiag binary
// shares: a description, a validated options object, and a signal-aware
// run function.
type App struct {
	name        string
	shortDesc   string
	description string
	options     FlagSetOptions
	runFunc     RunFunc
	validArgs   bool
	cmd         *cobra.Command
}

// Option configures an App during construction.
type Option func(*App)

// WithDescription sets the long description shown in --help output.
func WithDescription(desc string) Option {
	return func(a *App) { a.description = desc }
}

// WithOptions attaches the options object whose flags get bound to the
// command and which is validated before RunFunc runs.
func WithOptions(opts FlagSetOptions) Option {
	return func(a *App) { a.options = opts }
}

// WithRunFunc sets the function executed once flags are parsed and
// options validated.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) { a.runFunc = run }
}

// WithDefaultValidArgs rejects any positional arguments the command
// wasn't expecting, instead of silently ignoring them.
func WithDefaultValidArgs() Option {
	return func(a *App) { a.validArgs = true }
}

// NewApp builds an App ready to Run.
func NewApp(name, shortDesc string, opts ...Option) *App {
	a := &App{name: name, shortDesc: shortDesc}
	for _, opt := range opts {
		opt(a)
	}
	a.buildCommand()
	return a
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:           a.name,
		Short:         a.shortDesc,
		Long:          a.description,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd)
		},
	}
	if a.validArgs {
		cmd.Args = cobra.NoArgs
	}
	if a.options != nil {
		a.options.AddFlags(cmd.Flags())
	}
	a.cmd = cmd
}

func (a *App) run(cmd *cobra.Command) error {
	if a.options != nil {
		if errs := a.options.Validate(); len(errs) > 0 {
			for _, err := range errs {
				fmt.Fprintln(os.Stderr, "config error:", err)
			}
			return fmt.Errorf("%s: %d configuration error(s)", a.name, len(errs))
		}
	}
	if a.runFunc == nil {
		return fmt.Errorf("%s: no run function configured", a.name)
	}
	return a.runFunc(SetupSignalContext())
}

// Run executes the underlying cobra command against os.Args.
func (a *App) Run() error {
	return a.cmd.Execute()
}

// Command exposes the underlying cobra.Command, e.g. for tests that want
// to invoke it with SetArgs rather than os.Args.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

// SetupSignalContext returns a context cancelled on the first SIGINT or
// SIGTERM, so a RunFunc's blocking loop can exit instead of being killed.
func SetupSignalContext() context.Context {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx
}
