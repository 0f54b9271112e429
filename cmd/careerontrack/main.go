package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/benvon/careerontrack/cmd/careerontrack/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Run(ctx, os.Args[1:], commands.Options{}); err != nil {
		stop()
		os.Exit(1)
	}
}
