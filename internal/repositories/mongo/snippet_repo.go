package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"collabedit/internal/models"
)

// SnippetRepo stores saved copies of room code.
type SnippetRepo struct{ col *mongo.Collection }

func NewSnippetRepo(c *Client) (*SnippetRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	col := db.Collection("snippets")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
	})
	return &SnippetRepo{col: col}, nil
}

func (r *SnippetRepo) Create(ctx context.Context, s *models.Snippet) (*models.Snippet, error) {
	if s.Code == "" {
		return nil, errors.New("code required")
	}
	s.ID = uuid.New().String()
	s.CreatedAt = time.Now().UTC()
	if s.Name == "" {
		s.Name = "Untitled snippet"
	}
	if _, err := r.col.InsertOne(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SnippetRepo) GetByID(ctx context.Context, id string) (*models.Snippet, error) {
	var s models.Snippet
	err := r.col.FindOne(ctx, bson.M{"id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SnippetRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]models.Snippet, error) {
	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Snippet
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SnippetRepo) Delete(ctx context.Context, id, userID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"id": id, "userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
