package mongo

import (
	"context"
	"fmt"

	"github.com/sngm3741/webform-relay/internal/message/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MessageRepository implements application.MessageRepository using MongoDB.
type MessageRepository struct {
	collection *mongo.Collection
}

// NewMessageRepository creates a Mongo-backed message repository.
func NewMessageRepository(db *mongo.Database, collectionName string) *MessageRepository {
	return &MessageRepository{collection: db.Collection(collectionName)}
}

// Insert writes msg as a single document and returns the generated id.
func (r *MessageRepository) Insert(ctx context.Context, msg domain.StoredMessage) (string, error) {
	result, err := r.collection.InsertOne(ctx, messageDocument(msg))
	if err != nil {
		return "", fmt.Errorf("insert message: %w", err)
	}
	switch id := result.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	case nil:
		return "", nil
	default:
		return fmt.Sprint(id), nil
	}
}
