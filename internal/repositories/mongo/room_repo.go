package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"collabedit/internal/models"
)

// RoomRepo wraps the rooms collection. roomId carries a unique index so a
// room maps to at most one document.
type RoomRepo struct{ col *mongo.Collection }

func NewRoomRepo(c *Client) (*RoomRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	col := db.Collection("rooms")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "roomId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return &RoomRepo{col: col}, nil
}

func (r *RoomRepo) Create(ctx context.Context, room *models.Room) (*models.Room, error) {
	if room.RoomID == "" {
		return nil, errors.New("roomId required")
	}
	now := time.Now().UTC()
	room.CreatedAt, room.UpdatedAt = now, now
	if _, err := r.col.InsertOne(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// FindByRoomID returns (nil, nil) for a missing room so callers can treat
// absence as a non-error.
func (r *RoomRepo) FindByRoomID(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room
	err := r.col.FindOne(ctx, bson.M{"roomId": roomID}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// UpsertCode applies the latest code (and language when present) for a room.
// Last-writer-wins at the storage layer; concurrent HTTP writers may also
// mutate the same document.
func (r *RoomRepo) UpsertCode(ctx context.Context, roomID, code, language string) error {
	set := bson.M{"code": code, "updatedAt": time.Now().UTC()}
	if language != "" {
		set["language"] = language
	}
	_, err := r.col.UpdateOne(ctx,
		bson.M{"roomId": roomID},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *RoomRepo) ListPublic(ctx context.Context, limit int64) ([]models.Room, error) {
	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"isPublic": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Room
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddParticipant appends a user to the participants list, once.
func (r *RoomRepo) AddParticipant(ctx context.Context, roomID, userID string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"roomId": roomID},
		bson.M{
			"$addToSet": bson.M{"participants": userID},
			"$set":      bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
