// Package main is the entry point for the todont CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"todont/internal/cli"
	"todont/internal/commands"
)

func main() {
	// Cancel on interrupt so serve and watch shut down cleanly
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// A nil factory opens the backend named by the config
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, nil)

	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
