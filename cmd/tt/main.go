package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"timetrack/internal/cli"
	"timetrack/internal/config"
)

func main() {
	// Interrupt ends tt watch; other commands are bounded by the configured timeout
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(config.DefaultConfigFile(), openBackend, os.Stdout, os.Stderr)

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
