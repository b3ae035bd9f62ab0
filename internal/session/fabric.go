package session

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"collabedit/internal/models"
)

const fabricChannel = "collab:events"

// RedisFabric replicates room frames between coordinator processes over a
// redis pub/sub channel. Every instance publishes its own frames and applies
// frames from others; frames published by this instance are skipped on
// receipt.
type RedisFabric struct {
	rdb        *redis.Client
	log        *zap.Logger
	instanceID string
	cancel     context.CancelFunc
}

type fabricEnvelope struct {
	Instance string          `json:"instance"`
	RoomID   string          `json:"roomId"`
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data,omitempty"`
}

func NewRedisFabric(rdb *redis.Client, instanceID string, log *zap.Logger) *RedisFabric {
	return &RedisFabric{rdb: rdb, log: log, instanceID: instanceID}
}

// Publish sends a room frame to peer instances. Failures are logged and
// dropped; local delivery happened already and must not depend on the fabric.
func (f *RedisFabric) Publish(roomID string, frame models.WSFrame) {
	data, err := json.Marshal(frame.Data)
	if err != nil {
		f.log.Warn("fabric marshal failed", zap.String("type", frame.Type), zap.Error(err))
		return
	}
	env := fabricEnvelope{
		Instance: f.instanceID,
		RoomID:   roomID,
		Type:     frame.Type,
		Data:     data,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		f.log.Warn("fabric marshal failed", zap.String("type", frame.Type), zap.Error(err))
		return
	}
	if err := f.rdb.Publish(context.Background(), fabricChannel, payload).Err(); err != nil {
		f.log.Warn("fabric publish failed", zap.String("roomId", roomID), zap.Error(err))
	}
}

// Run subscribes to the fabric channel and applies peer frames to the local
// hub until Stop is called or ctx is done. Meant to run in its own goroutine.
func (f *RedisFabric) Run(ctx context.Context, co *Coordinator) {
	ctx, f.cancel = context.WithCancel(ctx)
	pubsub := f.rdb.Subscribe(ctx, fabricChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	f.log.Info("event fabric subscribed", zap.String("instance", f.instanceID))

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env fabricEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				f.log.Warn("fabric decode failed", zap.Error(err))
				continue
			}
			if env.Instance == f.instanceID {
				continue
			}
			co.ApplyRemote(env.RoomID, models.WSFrame{Type: env.Type, Data: env.Data})
		}
	}
}

func (f *RedisFabric) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
}
