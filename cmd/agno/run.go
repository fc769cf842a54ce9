package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harshapalnati/agno/agent"
	"github.com/harshapalnati/agno/config"
	"github.com/harshapalnati/agno/core"
)

func runCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Chat with a configured agent in an interactive REPL",
		Long: `Start an interactive session with the agent described by the config file.

Inside the REPL:
  /memory   print the session transcript
  /clear    wipe the session and start over
  /exit     quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadAgent(configPath)
			if err != nil {
				return err
			}
			a, err := cfg.Build(resolveModel, func(o *config.BuildOptions) {
				o.Logger = newLogger()
			})
			if err != nil {
				return err
			}
			return runREPL(cmd.Context(), a)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "agent.yaml", "agent config file")
	return cmd
}

func runREPL(ctx context.Context, a *agent.Agent) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionID := core.NewID()
	fmt.Printf("%s ready. Type /exit to quit, /memory to inspect, /clear to reset.\n", a.Name())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/exit", "/quit":
			return nil
		case "/memory":
			printTranscript(ctx, a, sessionID)
			continue
		case "/clear":
			if err := a.ClearSession(ctx, sessionID); err != nil {
				fmt.Fprintf(os.Stderr, "clear failed: %v\n", err)
				continue
			}
			sessionID = core.NewID()
			fmt.Println("session cleared.")
			continue
		}

		resp, err := a.RunOnce(ctx, sessionID, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if resp.Degraded {
			fmt.Printf("[degraded] %s\n", resp.Text)
			continue
		}
		fmt.Println(resp.Text)
	}
}

func printTranscript(ctx context.Context, a *agent.Agent, sessionID string) {
	messages, err := a.Transcript(ctx, sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read memory failed: %v\n", err)
		return
	}
	if len(messages) == 0 {
		fmt.Println("(empty session)")
		return
	}
	for _, msg := range messages {
		switch msg.Role {
		case core.RoleTool:
			fmt.Printf("  [tool %s(%s)] %s\n", msg.ToolName, msg.ToolArgs, msg.Content)
		default:
			fmt.Printf("  [%s] %s\n", msg.Role, msg.Content)
		}
	}
}
