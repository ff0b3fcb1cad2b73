// Command relay connects to MongoDB and stores submissions relayed by the web
// front over TCP or NATS.
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
)

func main() {
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
	cfg.ServerLog.Println("Connected to MongoDB!")

	app, err := server.NewRelay(cfg, client)
	if err != nil {
		cfg.ServerLog.Fatalf("failed to build relay: %v", err)
	}
	if err := app.Run(ctx); err != nil {
		cfg.ServerLog.Fatalf("relay failed: %v", err)
	}
}
