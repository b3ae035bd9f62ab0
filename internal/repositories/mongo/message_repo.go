package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"collabedit/internal/models"
)

// MessageRepo wraps the append-only chat history collection.
type MessageRepo struct{ col *mongo.Collection }

func NewMessageRepo(c *Client) (*MessageRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	col := db.Collection("messages")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "roomId", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	return &MessageRepo{col: col}, nil
}

func (r *MessageRepo) Append(ctx context.Context, msg models.ChatMessage) error {
	_, err := r.col.InsertOne(ctx, msg)
	return err
}

// ListRecent returns the latest messages for a room in ascending timestamp
// order: fetch newest-first with the limit, then reverse.
func (r *MessageRepo) ListRecent(ctx context.Context, roomID string, limit int64) ([]models.ChatMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	cur, err := r.col.Find(ctx, bson.M{"roomId": roomID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var newestFirst []models.ChatMessage
	if err := cur.All(ctx, &newestFirst); err != nil {
		return nil, err
	}
	out := make([]models.ChatMessage, len(newestFirst))
	for i, m := range newestFirst {
		out[len(newestFirst)-1-i] = m
	}
	return out, nil
}
