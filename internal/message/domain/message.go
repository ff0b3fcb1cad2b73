package domain

import (
	"sort"
	"time"
)

const (
	// ReceivedAtField is the document key holding the receipt timestamp.
	ReceivedAtField = "date"
	// ReceivedAtLayout renders timestamps as YYYY-MM-DD HH:MM:SS.ffffff.
	ReceivedAtLayout = "2006-01-02 15:04:05.000000"
)

// Submission is a decoded form body: free-form key/value pairs with no schema.
type Submission map[string]string

// Keys returns the submission keys in sorted order.
func (s Submission) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StoredMessage is a submission stamped with the time the relay received it.
// ID is empty until the store has accepted the message.
type StoredMessage struct {
	ID         string
	Fields     Submission
	ReceivedAt string
}

// NewStoredMessage stamps sub with at. A client supplied "date" field is dropped
// so the document always carries the server-side timestamp.
func NewStoredMessage(sub Submission, at time.Time) StoredMessage {
	fields := make(Submission, len(sub))
	for k, v := range sub {
		if k == ReceivedAtField {
			continue
		}
		fields[k] = v
	}
	return StoredMessage{
		Fields:     fields,
		ReceivedAt: at.Format(ReceivedAtLayout),
	}
}

// Map flattens the message into the persisted key/value layout.
func (m StoredMessage) Map() map[string]string {
	out := make(map[string]string, len(m.Fields)+1)
	for k, v := range m.Fields {
		out[k] = v
	}
	out[ReceivedAtField] = m.ReceivedAt
	return out
}
