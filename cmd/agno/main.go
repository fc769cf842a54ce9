// Command agno runs configured agents and teams: an interactive REPL, a
// one-shot team run, or an HTTP deployment of the chat contract.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
