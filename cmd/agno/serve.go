package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harshapalnati/agno/config"
	"github.com/harshapalnati/agno/deploy"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		teamMode   bool
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Deploy an agent or team over HTTP",
		Long: `Serve the chat contract for the configured agent (or team with --team):

  GET  /health
  GET  /status
  POST /chat   {"message": "...", "session_id": "..."}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			var target deploy.Target
			if teamMode {
				cfg, err := config.LoadTeam(configPath)
				if err != nil {
					return err
				}
				eng, err := cfg.Build(resolveModel, func(o *config.BuildOptions) { o.Logger = logger })
				if err != nil {
					return err
				}
				target = deploy.NewEngineTarget(eng)
			} else {
				cfg, err := config.LoadAgent(configPath)
				if err != nil {
					return err
				}
				a, err := cfg.Build(resolveModel, func(o *config.BuildOptions) { o.Logger = logger })
				if err != nil {
					return err
				}
				target = deploy.NewAgentTarget(a)
			}

			srv := deploy.NewServer(target, func(o *deploy.ServerOptions) {
				o.Logger = logger
			})
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Printf("serving %s on %s\n", target.Name(), addr)
			return srv.Run(ctx, addr)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "agent.yaml", "agent or team config file")
	cmd.Flags().BoolVar(&teamMode, "team", false, "treat the config file as a team definition")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
