package session

import (
	"encoding/json"

	"collabedit/internal/models"
)

// HandleFrame routes one inbound frame to the matching session method.
// Malformed payloads are dropped defensively; an unknown type gets an error
// frame back, nothing else. Called serially from the connection's read loop,
// which is the ordering commitment the registry relies on.
func (s *Session) HandleFrame(frame models.RawFrame) {
	switch frame.Type {
	case "authenticate":
		if token, ok := decodeString(frame.Data, "token"); ok {
			s.Authenticate(token)
		}
	case "join-room":
		var req models.JoinRoomRequest
		if decode(frame.Data, &req) {
			s.Join(req)
		}
	case "leave-room":
		s.Leave()
	case "code-change":
		var e models.CodeChange
		if decode(frame.Data, &e) {
			s.CodeChange(e)
		}
	case "language-change":
		var e models.LanguageChange
		if decode(frame.Data, &e) {
			s.LanguageChange(e)
		}
	case "cursor-move":
		var e models.CursorMove
		if decode(frame.Data, &e) {
			s.CursorMove(e)
		}
	case "cursor-select":
		var e models.CursorSelect
		if decode(frame.Data, &e) {
			s.CursorSelect(e)
		}
	case "typing-start":
		var e models.TypingEvent
		if decode(frame.Data, &e) {
			s.TypingStart(e)
		}
	case "typing-stop":
		var e models.TypingEvent
		if decode(frame.Data, &e) {
			s.TypingStop(e)
		}
	case "chat-message":
		var e models.ChatMessageInput
		if decode(frame.Data, &e) {
			s.Chat(e)
		}
	case "chat-history":
		if roomID, ok := decodeString(frame.Data, "roomId"); ok {
			s.ChatHistory(roomID)
		}
	default:
		s.client.Send(models.WSFrame{Type: "error", Data: map[string]string{"message": "unknown event"}})
	}
}

func decode(data json.RawMessage, out any) bool {
	if len(data) == 0 {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// decodeString accepts either a bare JSON string or an object carrying the
// value under the given key, matching the loose payloads real clients send.
func decodeString(data json.RawMessage, key string) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, true
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", false
	}
	raw, ok := obj[key]
	if !ok {
		return "", false
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
