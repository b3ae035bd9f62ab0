package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"collabedit/internal/models"
)

// RoomStore is the durable per-room document interface the coordinator
// consumes. Upserts are last-writer-wins at the storage layer.
type RoomStore interface {
	FindByRoomID(ctx context.Context, roomID string) (*models.Room, error)
	UpsertCode(ctx context.Context, roomID, code, language string) error
}

// MessageStore is the append-only chat history interface.
type MessageStore interface {
	Append(ctx context.Context, msg models.ChatMessage) error
	ListRecent(ctx context.Context, roomID string, limit int64) ([]models.ChatMessage, error)
}

// TokenVerifier turns an opaque token into an identity, or an error.
type TokenVerifier interface {
	Verify(token string) (*models.Identity, error)
}

// Fabric replicates room frames to other coordinator processes. Local
// delivery never depends on it.
type Fabric interface {
	Publish(roomID string, frame models.WSFrame)
}

// Coordinator owns the shared state of the collaboration subsystem: the
// presence registry, the broadcast hub and the storage collaborators.
// Sessions are created per connection and mutate the registry only from
// their own read loop.
type Coordinator struct {
	log      *zap.Logger
	registry *Registry
	hub      *Hub
	rooms    RoomStore
	messages MessageStore
	verifier TokenVerifier
	fabric   Fabric

	// storeTimeout bounds every fire-and-forget storage call.
	storeTimeout time.Duration
}

func NewCoordinator(log *zap.Logger, rooms RoomStore, messages MessageStore, verifier TokenVerifier) *Coordinator {
	return &Coordinator{
		log:          log,
		registry:     NewRegistry(),
		hub:          NewHub(),
		rooms:        rooms,
		messages:     messages,
		verifier:     verifier,
		storeTimeout: 5 * time.Second,
	}
}

// SetFabric attaches a cross-instance event fabric. Frames broadcast locally
// are also published; ApplyRemote delivers frames arriving from peers.
func (co *Coordinator) SetFabric(f Fabric) { co.fabric = f }

// ApplyRemote fans a frame from another coordinator instance out to the
// local clients subscribed to the room. The remote sender is not local, so
// nobody is excluded.
func (co *Coordinator) ApplyRemote(roomID string, frame models.WSFrame) {
	co.hub.BroadcastAll(roomID, frame)
}

// Registry exposes the presence registry for handlers and tests.
func (co *Coordinator) Registry() *Registry { return co.registry }

// Hub exposes the broadcast hub.
func (co *Coordinator) Hub() *Hub { return co.hub }

// fanout delivers a frame to the room's other local clients and replicates
// it to peer instances.
func (co *Coordinator) fanout(roomID string, sender *Client, frame models.WSFrame) {
	co.hub.Broadcast(roomID, sender, frame)
	if co.fabric != nil {
		co.fabric.Publish(roomID, frame)
	}
}

// fanoutAll is fanout without sender exclusion (chat semantics).
func (co *Coordinator) fanoutAll(roomID string, frame models.WSFrame) {
	co.hub.BroadcastAll(roomID, frame)
	if co.fabric != nil {
		co.fabric.Publish(roomID, frame)
	}
}

func (co *Coordinator) storeCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), co.storeTimeout)
}
