package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	natstest "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/sngm3741/webform-relay/internal/config"
	"github.com/sngm3741/webform-relay/internal/relay"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func runNATSServer(t *testing.T) *natsserver.Server {
	t.Helper()
	opts := natstest.DefaultTestOptions
	opts.Port = -1
	srv := natstest.RunServer(&opts)
	t.Cleanup(srv.Shutdown)
	return srv
}

func natsConfig(t *testing.T, srv *natsserver.Server) config.Config {
	t.Helper()
	cfg := testConfig(t)
	cfg.RelayTransport = config.TransportNATS
	cfg.NatsURL = srv.ClientURL()
	cfg.NatsSubject = "webform.messages"
	cfg.MongoDatabase = "webform"
	cfg.MessageCollection = "messages"
	cfg.Timeout = time.Second
	return cfg
}

func TestNewSenderPublishesOverNATS(t *testing.T) {
	srv := runNATSServer(t)
	cfg := natsConfig(t, srv)

	nc, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		t.Fatalf("connect NATS: %v", err)
	}
	defer nc.Close()
	sub, err := nc.SubscribeSync(cfg.NatsSubject)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := nc.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	sender, closeSender, err := NewSender(cfg)
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	defer closeSender()

	ts := httptest.NewServer(New(cfg, sender).Router())
	defer ts.Close()

	if resp := postForm(t, ts, "name=Alice&text=Hello+World"); resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}

	msg, err := sub.NextMsg(5 * time.Second)
	if err != nil {
		t.Fatalf("NextMsg: %v", err)
	}
	got, err := relay.JSONCodec{}.Unmarshal(msg.Data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got) != 2 || got["name"] != "Alice" || got["text"] != "Hello World" {
		t.Fatalf("unexpected payload: %v", got)
	}
}

func TestNewSenderReportsUnreachableNATS(t *testing.T) {
	srv := runNATSServer(t)
	cfg := natsConfig(t, srv)
	srv.Shutdown()

	if _, _, err := NewSender(cfg); err == nil {
		t.Fatal("expected error for unreachable NATS server")
	}
}

// unreachableMongo returns a client whose operations fail fast. The driver
// connects lazily, so creating it succeeds.
func unreachableMongo(t *testing.T) *mongo.Client {
	t.Helper()
	opts := options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(200 * time.Millisecond)
	client, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		t.Fatalf("mongo.Connect: %v", err)
	}
	return client
}

func TestRelayRunOverNATS(t *testing.T) {
	srv := runNATSServer(t)
	cfg := natsConfig(t, srv)

	r, err := NewRelay(cfg, unreachableMongo(t))
	if err != nil {
		t.Fatalf("NewRelay: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for srv.NumSubscriptions() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("relay never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	nc, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		t.Fatalf("connect NATS: %v", err)
	}
	defer nc.Close()

	reply, err := nc.Request(cfg.NatsSubject, []byte("not json"), 5*time.Second)
	if err != nil {
		t.Fatalf("Request invalid: %v", err)
	}
	if string(reply.Data) != relay.DiagnosticInvalidData {
		t.Fatalf("reply = %q, want %q", reply.Data, relay.DiagnosticInvalidData)
	}

	reply, err = nc.Request(cfg.NatsSubject, []byte(`{"name":"Alice"}`), 5*time.Second)
	if err != nil {
		t.Fatalf("Request valid: %v", err)
	}
	if string(reply.Data) != relay.DiagnosticSaveFailed {
		t.Fatalf("reply = %q, want %q", reply.Data, relay.DiagnosticSaveFailed)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
