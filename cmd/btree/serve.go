package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/zeusync/btengine/internal/core/observability/log"
	"github.com/zeusync/btengine/internal/injector"
	"github.com/zeusync/btengine/internal/server"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		tree     string
		scenario string
		port     int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve evaluation reports over websocket",
		Long: `Serve /ws, /tree and /healthz. Every websocket message {"debug": bool}
evaluates the tree against a fresh copy of the scenario and answers with the report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := loadTree(tree)
			if err != nil {
				return err
			}
			state, err := loadScenario(scenario)
			if err != nil {
				return err
			}

			return withEngine(root, func(e *injector.Engine) error {
				cfg := e.Config.Server
				if cmd.Flags().Changed("port") {
					cfg.Port = port
				}
				srv := server.NewServer(cfg, e.Runner, t, state.Snapshot(), e.Logger)
				if err := srv.Start(cmd.Context()); err != nil {
					return err
				}
				e.Logger.Info("Serving", log.String("addr", srv.Addr().String()))

				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Stop(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&tree, "tree", "", "Tree file (document or binary)")
	cmd.Flags().StringVar(&scenario, "scenario", "", "Scenario file (default: castle)")
	cmd.Flags().IntVar(&port, "port", 0, "Override server.port")
	return cmd
}
