package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harshapalnati/agno/config"
)

func teamCmd() *cobra.Command {
	var (
		configPath string
		showTrace  bool
	)

	cmd := &cobra.Command{
		Use:   "team [task]",
		Short: "Run a configured team once over a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadTeam(configPath)
			if err != nil {
				return err
			}
			eng, err := cfg.Build(resolveModel, func(o *config.BuildOptions) {
				o.Logger = newLogger()
			})
			if err != nil {
				return err
			}

			task := strings.Join(args, " ")
			res, runErr := eng.Run(cmd.Context(), task)

			if res != nil && showTrace {
				for _, step := range res.Trace.Steps() {
					line := fmt.Sprintf("%-10s %-12s %s", step.Status, step.Node, step.Agent)
					if step.Error != "" {
						line += " (" + step.Error + ")"
					}
					fmt.Println(line)
				}
			}
			if runErr != nil {
				return runErr
			}

			fmt.Println(res.Output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "team.yaml", "team config file")
	cmd.Flags().BoolVar(&showTrace, "trace", false, "print the per-step execution trace")
	return cmd
}
