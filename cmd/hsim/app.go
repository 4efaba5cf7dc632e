package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/milk9111/nightshade/internal/log"
	"github.com/milk9111/nightshade/prefabs"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// App is the hsim command tree.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer

	logLevel   string
	logJSON    bool
	assetsDir  string
	configured bool
}

func New() *App {
	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = &cobra.Command{
		Use:   "hsim",
		Short: "Headless nightshade simulator",
		Long: `hsim runs nightshade scenes without a window.

It ticks the player and NPC state machines at a fixed step, driving the
player from an input tape, and can serve a live inspector over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.configure()
		},
	}

	flags := app.root.PersistentFlags()
	flags.StringVar(&app.logLevel, "log-level", "", "Log level (debug, info, warn, error); defaults to $LOG_LEVEL or info")
	flags.BoolVar(&app.logJSON, "log-json", false, "Write JSON logs instead of console output")
	flags.StringVar(&app.assetsDir, "assets", prefabs.Dir, "Directory whose assets override the embedded ones")

	app.root.AddCommand(
		app.newRunCmd(),
		app.newValidateCmd(),
		app.newServeCmd(),
	)
	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

func (a *App) configure() {
	if a.configured {
		return
	}
	a.configured = true
	prefabs.Dir = a.assetsDir
	log.Configure(log.Config{
		Level:   a.logLevel,
		Output:  zerolog.SyncWriter(a.stderr),
		Console: !a.logJSON,
	})
}

// Execute runs the command tree until it returns or SIGINT/SIGTERM arrives.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments.
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.stdout, format, args...)
}
