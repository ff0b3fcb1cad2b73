package relay

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sngm3741/webform-relay/internal/message/domain"
)

// Sender forwards a decoded submission to the persistence side.
// Delivery is fire-and-forget: no acknowledgement is read back.
type Sender interface {
	Send(ctx context.Context, sub domain.Submission) error
}

// TCPSender opens one loopback connection per submission, writes the encoded
// payload in a single write and closes the connection.
type TCPSender struct {
	addr   string
	codec  Codec
	dialer net.Dialer
}

// NewTCPSender creates a sender dialing addr.
func NewTCPSender(addr string, codec Codec, dialTimeout time.Duration) *TCPSender {
	return &TCPSender{
		addr:   addr,
		codec:  codec,
		dialer: net.Dialer{Timeout: dialTimeout},
	}
}

func (s *TCPSender) Send(ctx context.Context, sub domain.Submission) error {
	payload, err := s.codec.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}

	conn, err := s.dialer.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("connect relay %s: %w", s.addr, err)
	}
	defer conn.Close()

	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("send to relay %s: %w", s.addr, err)
	}
	return nil
}

// NATSSender publishes submissions on a NATS subject.
type NATSSender struct {
	conn         *nats.Conn
	subject      string
	codec        Codec
	flushTimeout time.Duration
}

// NewNATSSender creates a sender publishing on subject through nc.
func NewNATSSender(nc *nats.Conn, subject string, codec Codec, flushTimeout time.Duration) *NATSSender {
	return &NATSSender{conn: nc, subject: subject, codec: codec, flushTimeout: flushTimeout}
}

func (s *NATSSender) Send(_ context.Context, sub domain.Submission) error {
	payload, err := s.codec.Marshal(sub)
	if err != nil {
		return fmt.Errorf("encode submission: %w", err)
	}
	if err := s.conn.Publish(s.subject, payload); err != nil {
		return fmt.Errorf("publish to [%s]: %w", s.subject, err)
	}
	if err := s.conn.FlushTimeout(s.flushTimeout); err != nil {
		return fmt.Errorf("flush [%s]: %w", s.subject, err)
	}
	return nil
}
