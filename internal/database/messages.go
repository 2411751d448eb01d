package database

import (
	"context"
	"fmt"
	"time"

	"fdv-chatbot-platform/internal/config"
	"fdv-chatbot-platform/internal/telemetry"
	"fdv-chatbot-platform/models"
	"fdv-chatbot-platform/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultHistoryLimit caps a conversation history read.
const DefaultHistoryLimit = 100

// MessageStore persists question/answer turns in MongoDB.
type MessageStore struct {
	col     *mongo.Collection
	metrics *telemetry.Metrics
}

func NewMessageStore(db *mongo.Database, metrics *telemetry.Metrics) *MessageStore {
	return &MessageStore{
		col:     db.Collection(config.MessagesCollection),
		metrics: metrics,
	}
}

// Save inserts one turn. The timestamp defaults to now.
func (s *MessageStore) Save(ctx context.Context, msg *models.Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	_, err := s.col.InsertOne(ctx, msg)
	s.metrics.RecordDatabaseOperation("insert", config.MessagesCollection, err == nil)
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

// History returns the turns of a session oldest first. limit <= 0 means
// DefaultHistoryLimit.
func (s *MessageStore) History(ctx context.Context, sessionID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	ctx, cancel := utils.WithTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: 1}}).
		SetLimit(int64(limit))
	cursor, err := s.col.Find(ctx, bson.M{"session_id": sessionID}, opts)
	s.metrics.RecordDatabaseOperation("find", config.MessagesCollection, err == nil)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return messages, nil
}
