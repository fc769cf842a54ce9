package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harshapalnati/agno/logging"
	"github.com/harshapalnati/agno/model"
	"github.com/harshapalnati/agno/model/anthropic"
	"github.com/harshapalnati/agno/model/openai"
)

var (
	flagEnvFile string
	flagVerbose bool
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "agno",
		Short:         "Run agents and multi-agent teams",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Missing env file is fine; explicit one must load.
			if flagEnvFile != "" {
				if err := godotenv.Load(flagEnvFile); err != nil {
					fmt.Fprintf(os.Stderr, "warning: could not load %s: %v\n", flagEnvFile, err)
				}
			} else {
				_ = godotenv.Load()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&flagEnvFile, "env", "", "path to a .env file (default: ./.env if present)")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(runCmd())
	cmd.AddCommand(teamCmd())
	cmd.AddCommand(serveCmd())
	return cmd
}

func newLogger() logging.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	return logging.NewTextLogger(os.Stderr, level)
}

// resolveModel binds a "provider:model-id" reference to a live model.
// A bare provider name selects that provider's default model.
func resolveModel(ref string) (model.Model, error) {
	provider, id, _ := strings.Cut(ref, ":")
	switch provider {
	case "openai":
		return openai.New(func(o *openai.Options) {
			if id != "" {
				o.Model = id
			}
		}), nil
	case "anthropic":
		if id == "" {
			return anthropic.New(), nil
		}
		return anthropic.New(anthropic.WithModel(id)), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q in reference %q", provider, ref)
	}
}
