package relay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sngm3741/webform-relay/internal/message/application"
)

// Diagnostics written back to a relay client. Senders never read them.
const (
	DiagnosticInvalidData = "Invalid data format"
	DiagnosticSaveFailed  = "Error saving message"
)

// MessageHandler decodes one relay payload and persists it.
type MessageHandler struct {
	codec   Codec
	persist application.PersistService
	logger  *log.Logger
	timeout time.Duration
}

// NewMessageHandler creates a handler. timeout bounds each store insert.
func NewMessageHandler(codec Codec, persist application.PersistService, logger *log.Logger, timeout time.Duration) *MessageHandler {
	return &MessageHandler{codec: codec, persist: persist, logger: logger, timeout: timeout}
}

// Handle decodes payload and stores it. Errors wrapping ErrInvalidPayload mean the
// payload was discarded undecoded; any other error means the insert failed.
func (h *MessageHandler) Handle(ctx context.Context, tag string, payload []byte) error {
	sub, err := h.codec.Unmarshal(payload)
	if err != nil {
		h.logger.Printf("relay %s | received invalid data: %v", tag, err)
		return err
	}

	// An insert already started is allowed to finish during shutdown.
	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	defer cancel()

	msg, err := h.persist.Persist(insertCtx, sub)
	if err != nil {
		h.logger.Printf("relay %s | error saving message: %v", tag, err)
		return fmt.Errorf("persist message: %w", err)
	}
	h.logger.Printf("relay %s | saved to MongoDB with _id %s: %v", tag, msg.ID, msg.Map())
	return nil
}

// Diagnostic returns the short reply for a Handle error.
func Diagnostic(err error) []byte {
	if errors.Is(err, ErrInvalidPayload) {
		return []byte(DiagnosticInvalidData)
	}
	return []byte(DiagnosticSaveFailed)
}
