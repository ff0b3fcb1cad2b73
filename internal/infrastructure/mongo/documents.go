package mongo

import (
	"github.com/sngm3741/webform-relay/internal/message/domain"
	"go.mongodb.org/mongo-driver/bson"
)

// messageDocument renders a stored message as the persisted document: every
// submitted field verbatim in ascending key order, followed by the receipt
// timestamp. Submission is a map, so the client's field order is not kept.
func messageDocument(msg domain.StoredMessage) bson.D {
	doc := make(bson.D, 0, len(msg.Fields)+1)
	for _, key := range msg.Fields.Keys() {
		doc = append(doc, bson.E{Key: key, Value: msg.Fields[key]})
	}
	return append(doc, bson.E{Key: domain.ReceivedAtField, Value: msg.ReceivedAt})
}
