package relay

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// DefaultDrainTimeout bounds how long Run waits for queued messages after cancellation.
const DefaultDrainTimeout = 10 * time.Second

// Subscriber is the NATS counterpart of Listener: each message published on the
// subject is decoded and persisted. NATS delivers a subscription's messages one
// at a time, so the store handle is still used sequentially.
type Subscriber struct {
	conn         *nats.Conn
	subject      string
	handler      *MessageHandler
	logger       *log.Logger
	drainTimeout time.Duration

	mu      sync.Mutex
	stopped bool
}

// NewSubscriber creates a subscriber bound to subject on nc.
func NewSubscriber(nc *nats.Conn, subject string, handler *MessageHandler, logger *log.Logger) *Subscriber {
	return &Subscriber{
		conn:         nc,
		subject:      subject,
		handler:      handler,
		logger:       logger,
		drainTimeout: DefaultDrainTimeout,
	}
}

// Run subscribes and blocks until ctx is cancelled. It then drains the
// subscription and returns only once no handler is running, so the caller may
// close the store right after.
func (s *Subscriber) Run(ctx context.Context) error {
	sub, err := s.conn.Subscribe(s.subject, s.deliver(ctx))
	if err != nil {
		return fmt.Errorf("subscribe [%s]: %w", s.subject, err)
	}
	s.logger.Printf("Subscribed to NATS subject [%s]. Listening for messages...", s.subject)

	<-ctx.Done()
	drainErr := sub.Drain()
	if drainErr == nil {
		drainErr = s.waitDrained(sub)
	}

	// Holding mu waits out a callback that is still persisting.
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	if drainErr != nil {
		return fmt.Errorf("drain [%s]: %w", s.subject, drainErr)
	}
	return nil
}

func (s *Subscriber) deliver(ctx context.Context) nats.MsgHandler {
	return func(msg *nats.Msg) {
		s.mu.Lock()
		defer s.mu.Unlock()

		tag := uuid.NewString()
		if s.stopped {
			s.logger.Printf("relay %s | subscriber stopped, dropping message", tag)
			return
		}
		if err := s.handler.Handle(ctx, tag, msg.Data); err != nil && msg.Reply != "" {
			if rerr := msg.Respond(Diagnostic(err)); rerr != nil {
				s.logger.Printf("relay %s | respond diagnostic: %v", tag, rerr)
			}
		}
	}
}

// waitDrained polls until the drained subscription is removed from the connection.
func (s *Subscriber) waitDrained(sub *nats.Subscription) error {
	deadline := time.Now().Add(s.drainTimeout)
	for sub.IsValid() {
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out after %s", s.drainTimeout)
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}
