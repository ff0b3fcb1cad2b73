package relay

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	natstest "github.com/nats-io/nats-server/v2/test"
	"github.com/nats-io/nats.go"
	"github.com/sngm3741/webform-relay/internal/message/application"
	"github.com/sngm3741/webform-relay/internal/message/domain"
)

const testSubject = "webform.test"

func runNATSServer(t *testing.T) *server.Server {
	t.Helper()
	opts := natstest.DefaultTestOptions
	opts.Port = -1
	srv := natstest.RunServer(&opts)
	t.Cleanup(srv.Shutdown)
	return srv
}

func connectNATS(t *testing.T, srv *server.Server) *nats.Conn {
	t.Helper()
	nc, err := nats.Connect(srv.ClientURL())
	if err != nil {
		t.Fatalf("connect NATS: %v", err)
	}
	t.Cleanup(nc.Close)
	return nc
}

func waitForSubscription(t *testing.T, srv *server.Server) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for srv.NumSubscriptions() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered interest")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// startSubscriber runs a subscriber and returns its cancel func and result channel.
func startSubscriber(t *testing.T, srv *server.Server, repo application.MessageRepository) (context.CancelFunc, <-chan error) {
	t.Helper()
	handler := NewMessageHandler(JSONCodec{}, application.NewPersistService(repo, nil), discardLogger(), 5*time.Second)
	subscriber := NewSubscriber(connectNATS(t, srv), testSubject, handler, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- subscriber.Run(ctx) }()
	t.Cleanup(cancel)

	waitForSubscription(t, srv)
	return cancel, done
}

func waitRun(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestSubscriberStoresPublishedMessage(t *testing.T) {
	srv := runNATSServer(t)
	repo := newMemoryRepository()
	cancel, done := startSubscriber(t, srv, repo)

	sender := NewNATSSender(connectNATS(t, srv), testSubject, JSONCodec{}, time.Second)
	if err := sender.Send(context.Background(), domain.Submission{"name": "Alice", "text": "Hello World"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	msg := repo.expect(t)
	if msg.Fields["name"] != "Alice" || msg.Fields["text"] != "Hello World" {
		t.Fatalf("unexpected fields: %v", msg.Fields)
	}
	if !receivedAtPattern.MatchString(msg.Map()[domain.ReceivedAtField]) {
		t.Fatalf("date %q does not match layout", msg.ReceivedAt)
	}

	cancel()
	waitRun(t, done)
}

func TestSubscriberAnswersInvalidPayload(t *testing.T) {
	srv := runNATSServer(t)
	repo := newMemoryRepository()
	startSubscriber(t, srv, repo)

	reply, err := connectNATS(t, srv).Request(testSubject, []byte("definitely not json"), 5*time.Second)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if string(reply.Data) != DiagnosticInvalidData {
		t.Fatalf("reply = %q, want %q", reply.Data, DiagnosticInvalidData)
	}
	repo.expectNone(t)
}

type slowRepository struct {
	delay    time.Duration
	once     sync.Once
	started  chan struct{}
	finished atomic.Bool
}

func (r *slowRepository) Insert(_ context.Context, _ domain.StoredMessage) (string, error) {
	r.once.Do(func() { close(r.started) })
	time.Sleep(r.delay)
	r.finished.Store(true)
	return "id", nil
}

func TestSubscriberRunWaitsForInFlightInsert(t *testing.T) {
	srv := runNATSServer(t)
	repo := &slowRepository{delay: 300 * time.Millisecond, started: make(chan struct{})}
	cancel, done := startSubscriber(t, srv, repo)

	sender := NewNATSSender(connectNATS(t, srv), testSubject, JSONCodec{}, time.Second)
	if err := sender.Send(context.Background(), domain.Submission{"name": "Alice"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	select {
	case <-repo.started:
	case <-time.After(5 * time.Second):
		t.Fatal("insert never started")
	}
	cancel()
	waitRun(t, done)

	if !repo.finished.Load() {
		t.Fatal("Run returned while an insert was still running")
	}
}
