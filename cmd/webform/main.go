// Command webform runs the web front and the relay listener side by side,
// the way the two processes are deployed together.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sngm3741/webform-relay/internal/config"
	mongodoc "github.com/sngm3741/webform-relay/internal/infrastructure/mongo"
	"github.com/sngm3741/webform-relay/internal/server"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Configuration is validated before either server starts.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mongodoc.Connect(ctx, cfg.MongoURI, cfg.Timeout)
	if err != nil {
		cfg.ServerLog.Fatalf("failed to connect to MongoDB: %v", err)
	}
	relayApp, err := server.NewRelay(cfg, client)
	if err != nil {
		cfg.ServerLog.Fatalf("failed to build relay: %v", err)
	}

	sender, closeSender, err := server.NewSender(cfg)
	if err != nil {
		cfg.ServerLog.Fatalf("failed to build relay sender: %v", err)
	}
	defer closeSender()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return relayApp.Run(gctx) })
	g.Go(func() error { return server.New(cfg, sender).Run(gctx) })

	if err := g.Wait(); err != nil {
		cfg.ServerLog.Printf("stopped with error: %v", err)
		closeSender()
		os.Exit(1)
	}
	cfg.ServerLog.Println("stopped")
}
