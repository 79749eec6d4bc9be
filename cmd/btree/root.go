package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zeusync/btengine/internal/injector"
)

type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "btree",
		Short: "Evaluate behavior trees against a small world model",
		Long: `btree builds behavior trees from YAML/JSON documents or their binary
encoding, evaluates them against a world scenario and reports what changed.

Tree files ending in .yaml, .yml or .json are read as documents, anything
else as the binary encoding produced by "btree encode".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to config file (default: built-in defaults)")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newEncodeCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newScenarioCmd())
	cmd.AddCommand(newStoreCmd(opts))
	cmd.AddCommand(newBatchCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	return cmd
}

// Execute runs the root command with signal handling
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return newRootCmd().ExecuteContext(ctx)
}

// withApp wires the application for one command invocation.
func withApp(opts *rootOptions, fn func(app *injector.App) error) error {
	app, cleanup, err := injector.InitializeApp(injector.ConfigPath(opts.configFile))
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(app)
}

// withEngine is withApp for commands that never touch the store.
func withEngine(opts *rootOptions, fn func(e *injector.Engine) error) error {
	engine, cleanup, err := injector.InitializeEngine(injector.ConfigPath(opts.configFile))
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(engine)
}
