package session

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"collabedit/internal/models"
)

const (
	chatHistoryLimit  = 50
	maxChatContentLen = 2000
)

// Session is the per-connection state machine:
//
//	Connected(anonymous) -> Connected(authenticated) -> InRoom(roomId) -> Closed
//
// Its fields are the only mutable per-connection surface and are touched
// exclusively from the connection's read loop, so no locking is needed here.
// Async document loads and persistence writes never mutate session or
// registry state; they only deliver data or log failures.
type Session struct {
	co     *Coordinator
	client *Client

	user   *models.RoomUser // nil until authenticated or first join
	room   string           // "" while not in a room
	authed bool
	closed bool
}

func (co *Coordinator) NewSession(client *Client) *Session {
	return &Session{co: co, client: client}
}

// Authenticate upgrades the session to a known identity. Failure is reported
// only to this connection and leaves the session state untouched.
func (s *Session) Authenticate(token string) {
	identity, err := s.co.verifier.Verify(token)
	if err != nil {
		s.client.Send(models.WSFrame{Type: "auth-result", Data: models.AuthResult{
			Success: false,
			Error:   "Invalid token",
		}})
		return
	}
	prev := s.user
	s.user = &models.RoomUser{
		ID:           identity.UserID,
		ConnectionID: s.client.ID,
		Username:     identity.Username,
		Color:        UserColor(identity.Username),
	}
	s.authed = true

	// Re-key the presence entry when the identity changes mid-room, so the
	// guest record does not linger past Leave.
	if s.room != "" && prev != nil {
		s.user.Cursor = prev.Cursor
		if prev.ID != s.user.ID {
			s.co.registry.Remove(s.room, prev.ID)
		}
		s.co.registry.Add(s.room, *s.user)
	}

	s.client.Send(models.WSFrame{Type: "auth-result", Data: models.AuthResult{
		Success: true,
		User:    s.user,
	}})
}

// Join places the connection in a room, implicitly leaving any previous one.
// Peer notification is synchronous; the document snapshot is loaded in the
// background so slow storage never blocks the join.
func (s *Session) Join(req models.JoinRoomRequest) {
	if req.RoomID == "" {
		return
	}
	if s.room != "" {
		s.Leave()
	}

	if s.user == nil {
		name := req.Username
		if name == "" {
			name = "Guest-" + shortID(s.client.ID)
		}
		s.user = &models.RoomUser{
			ID:           s.client.ID,
			ConnectionID: s.client.ID,
			Username:     name,
			Color:        UserColor(name),
		}
	}

	s.room = req.RoomID
	s.co.registry.Add(req.RoomID, *s.user)
	s.co.hub.Subscribe(req.RoomID, s.client)

	s.co.fanout(req.RoomID, s.client, models.WSFrame{Type: "user-joined", Data: models.UserJoined{
		ID:       s.user.ID,
		Username: s.user.Username,
		Color:    s.user.Color,
	}})
	s.client.Send(models.WSFrame{Type: "room-users", Data: s.co.registry.List(req.RoomID)})

	go s.loadRoomData(req.RoomID)
}

// loadRoomData delivers the durable document snapshot to the joining
// connection only. A load failure means the client simply never receives
// room-data; no retry.
func (s *Session) loadRoomData(roomID string) {
	ctx, cancel := s.co.storeCtx()
	defer cancel()
	room, err := s.co.rooms.FindByRoomID(ctx, roomID)
	if err != nil {
		s.co.log.Warn("room load failed", zap.String("roomId", roomID), zap.Error(err))
		return
	}
	if room == nil {
		return
	}
	s.client.Send(models.WSFrame{Type: "room-data", Data: models.RoomData{
		Code:     room.Code,
		Language: room.Language,
	}})
}

// Leave removes the connection from its current room. Calling it while not
// in a room is a no-op.
func (s *Session) Leave() {
	if s.room == "" || s.user == nil {
		return
	}
	roomID := s.room
	s.room = ""
	s.co.registry.Remove(roomID, s.user.ID)
	s.co.hub.Unsubscribe(roomID, s.client)
	s.co.fanout(roomID, s.client, models.WSFrame{Type: "user-left", Data: models.UserLeft{
		ID:       s.user.ID,
		Username: s.user.Username,
	}})
}

// Close is the terminal transition, invoked when the transport disconnects.
// It behaves as Leave if the connection was in a room.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.Leave()
}

// CodeChange fans the new code out immediately and persists it in the
// background. The upsert is last-writer-wins; a failed write is logged and
// dropped because the next change persists newer state anyway.
func (s *Session) CodeChange(e models.CodeChange) {
	if s.room == "" || s.room != e.RoomID {
		return
	}
	s.co.fanout(e.RoomID, s.client, models.WSFrame{Type: "code-update", Data: models.CodeUpdate{
		Code:     e.Code,
		Language: e.Language,
	}})

	go func() {
		ctx, cancel := s.co.storeCtx()
		defer cancel()
		if err := s.co.rooms.UpsertCode(ctx, e.RoomID, e.Code, e.Language); err != nil {
			s.co.log.Warn("code save failed", zap.String("roomId", e.RoomID), zap.Error(err))
		}
	}()
}

// LanguageChange is fan-out only; persistence rides on the next code change.
func (s *Session) LanguageChange(e models.LanguageChange) {
	if s.room == "" || s.room != e.RoomID || e.Language == "" {
		return
	}
	s.co.fanout(e.RoomID, s.client, models.WSFrame{Type: "language-update", Data: e.Language})
}

// CursorMove updates this user's presence record and notifies peers. Purely
// ephemeral, never persisted.
func (s *Session) CursorMove(e models.CursorMove) {
	if s.user == nil || s.room == "" || s.room != e.RoomID {
		return
	}
	s.user.Cursor = &e.Cursor
	s.co.registry.UpdateCursor(e.RoomID, s.user.ID, e.Cursor)
	s.co.fanout(e.RoomID, s.client, models.WSFrame{Type: "cursor-update", Data: models.CursorUpdate{
		ID:       s.user.ID,
		Username: s.user.Username,
		Color:    s.user.Color,
		Cursor:   e.Cursor,
	}})
}

// CursorSelect is fan-out only; selections are not tracked in the registry.
func (s *Session) CursorSelect(e models.CursorSelect) {
	if s.user == nil || s.room == "" || s.room != e.RoomID {
		return
	}
	s.co.fanout(e.RoomID, s.client, models.WSFrame{Type: "selection-update", Data: models.SelectionUpdate{
		ID:        s.user.ID,
		Username:  s.user.Username,
		Color:     s.user.Color,
		Selection: e.Selection,
	}})
}

// TypingStart relays the discrete typing signal; the idle debounce lives on
// the client side.
func (s *Session) TypingStart(e models.TypingEvent) {
	if s.user == nil || s.room == "" || s.room != e.RoomID {
		return
	}
	s.co.fanout(e.RoomID, s.client, models.WSFrame{Type: "user-typing", Data: models.UserTyping{
		ID:       s.user.ID,
		Username: s.user.Username,
	}})
}

func (s *Session) TypingStop(e models.TypingEvent) {
	if s.user == nil || s.room == "" || s.room != e.RoomID {
		return
	}
	s.co.fanout(e.RoomID, s.client, models.WSFrame{Type: "user-stopped-typing", Data: models.UserTyping{
		ID: s.user.ID,
	}})
}

// Chat broadcasts to the full room, sender included, then appends to durable
// history in the background. Whitespace-only content is dropped silently.
func (s *Session) Chat(e models.ChatMessageInput) {
	if s.user == nil || s.room == "" || s.room != e.RoomID {
		return
	}
	content := strings.TrimSpace(e.Content)
	if content == "" {
		return
	}
	if runes := []rune(content); len(runes) > maxChatContentLen {
		content = string(runes[:maxChatContentLen])
	}

	msg := models.ChatMessage{
		ID:        fmt.Sprintf("%d-%s", time.Now().UnixMilli(), s.client.ID),
		RoomID:    e.RoomID,
		UserID:    s.user.ID,
		Username:  s.user.Username,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	s.co.fanoutAll(e.RoomID, models.WSFrame{Type: "chat-receive", Data: msg})

	go func() {
		ctx, cancel := s.co.storeCtx()
		defer cancel()
		if err := s.co.messages.Append(ctx, msg); err != nil {
			s.co.log.Warn("chat save failed", zap.String("roomId", e.RoomID), zap.Error(err))
		}
	}()
}

// ChatHistory replies with the latest messages for a room, oldest first.
// Callable regardless of room membership.
func (s *Session) ChatHistory(roomID string) {
	if roomID == "" {
		return
	}
	ctx, cancel := s.co.storeCtx()
	defer cancel()
	msgs, err := s.co.messages.ListRecent(ctx, roomID, chatHistoryLimit)
	if err != nil {
		s.co.log.Warn("chat history load failed", zap.String("roomId", roomID), zap.Error(err))
		s.client.Send(models.WSFrame{Type: "chat-history", Data: models.ChatHistoryResult{
			Success:  false,
			Messages: []models.ChatMessage{},
		}})
		return
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	s.client.Send(models.WSFrame{Type: "chat-history", Data: models.ChatHistoryResult{
		Success:  true,
		Messages: msgs,
	}})
}

// User returns the session's current presence record, nil when anonymous and
// never joined.
func (s *Session) User() *models.RoomUser { return s.user }

// Room returns the current room id, empty when not in a room.
func (s *Session) Room() string { return s.room }

func shortID(id string) string {
	if len(id) > 4 {
		return id[:4]
	}
	return id
}
