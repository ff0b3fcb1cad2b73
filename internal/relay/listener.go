package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"

	"github.com/google/uuid"
)

// DefaultReadBuffer is the per-connection read size. Larger payloads are truncated.
const DefaultReadBuffer = 1024

// Listener accepts one-shot relay connections and persists one message per
// connection. Connections are handled one at a time on the accepting goroutine.
type Listener struct {
	addr       string
	handler    *MessageHandler
	readBuffer int
	logger     *log.Logger
}

// ListenerConfig defines dependencies required by Listener.
type ListenerConfig struct {
	Addr       string
	Handler    *MessageHandler
	ReadBuffer int
	Logger     *log.Logger
}

// NewListener constructs a relay listener.
func NewListener(cfg ListenerConfig) *Listener {
	readBuffer := cfg.ReadBuffer
	if readBuffer <= 0 {
		readBuffer = DefaultReadBuffer
	}
	return &Listener{
		addr:       cfg.Addr,
		handler:    cfg.Handler,
		readBuffer: readBuffer,
		logger:     cfg.Logger,
	}
}

// ListenAndServe binds the configured address and serves until ctx is cancelled.
func (l *Listener) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", l.addr, err)
	}
	l.logger.Printf("Socket Server running on %s", ln.Addr())
	return l.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then closes ln and
// returns nil. Any other accept failure is returned.
func (l *Listener) Serve(ctx context.Context, ln net.Listener) error {
	defer ln.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stop:
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				l.logger.Printf("relay | accept timeout: %v", err)
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		l.handleConn(ctx, conn)
	}
}

func (l *Listener) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	tag := uuid.NewString()
	buf := make([]byte, l.readBuffer)
	n, err := conn.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		l.logger.Printf("relay %s | read from %s: %v", tag, conn.RemoteAddr(), err)
	}
	if n == 0 {
		return
	}

	if err := l.handler.Handle(ctx, tag, buf[:n]); err != nil {
		if _, werr := conn.Write(Diagnostic(err)); werr != nil {
			l.logger.Printf("relay %s | write diagnostic: %v", tag, werr)
		}
	}
}
