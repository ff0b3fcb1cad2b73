// Command webfront serves the form pages and forwards each submission to the
// relay.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sngm3741/webform-relay/internal/config"
	"github.com/sngm3741/webform-relay/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sender, closeSender, err := server.NewSender(cfg)
	if err != nil {
		cfg.ServerLog.Fatalf("failed to build relay sender: %v", err)
	}
	defer closeSender()

	if err := server.New(cfg, sender).Run(ctx); err != nil {
		cfg.ServerLog.Fatalf("HTTP server failed: %v", err)
	}
}
