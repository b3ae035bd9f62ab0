package models

import (
	"encoding/json"
	"time"
)

// Identity is the result of verifying an auth token. Immutable for the
// lifetime of the connection that presented the token.
type Identity struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// CursorPosition is an editor point cursor.
type CursorPosition struct {
	LineNumber int `json:"lineNumber"`
	Column     int `json:"column"`
}

// RoomUser is the ephemeral presence record for one connection in one room.
// ID is the authenticated user id, or the connection id for guests.
type RoomUser struct {
	ID           string          `json:"id"`
	ConnectionID string          `json:"connectionId"`
	Username     string          `json:"username"`
	Color        string          `json:"color"`
	Cursor       *CursorPosition `json:"cursor,omitempty"`
}

// WSFrame is the wire envelope for every event on the collaboration channel.
type WSFrame struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// RawFrame is the inbound counterpart of WSFrame; Data stays undecoded until
// the event type is known.
type RawFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

/*** Inbound event payloads ***/

type JoinRoomRequest struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username,omitempty"`
}

type CodeChange struct {
	RoomID   string `json:"roomId"`
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
}

type LanguageChange struct {
	RoomID   string `json:"roomId"`
	Language string `json:"language"`
}

type CursorMove struct {
	RoomID string         `json:"roomId"`
	Cursor CursorPosition `json:"cursor"`
}

type CursorSelect struct {
	RoomID    string          `json:"roomId"`
	Selection json.RawMessage `json:"selection"`
}

type TypingEvent struct {
	RoomID string `json:"roomId"`
}

type ChatMessageInput struct {
	RoomID  string `json:"roomId"`
	Content string `json:"content"`
}

/*** Outbound event payloads ***/

type UserJoined struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Color    string `json:"color"`
}

type UserLeft struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type RoomData struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type CodeUpdate struct {
	Code     string `json:"code"`
	Language string `json:"language,omitempty"`
}

type CursorUpdate struct {
	ID       string         `json:"id"`
	Username string         `json:"username"`
	Color    string         `json:"color"`
	Cursor   CursorPosition `json:"cursor"`
}

type SelectionUpdate struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Color     string          `json:"color"`
	Selection json.RawMessage `json:"selection"`
}

type UserTyping struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

type AuthResult struct {
	Success bool      `json:"success"`
	User    *RoomUser `json:"user,omitempty"`
	Error   string    `json:"error,omitempty"`
}

type ChatHistoryResult struct {
	Success  bool          `json:"success"`
	Messages []ChatMessage `json:"messages"`
}

// ChatMessage is both the broadcast payload and the durable chat record.
type ChatMessage struct {
	ID        string    `json:"id" bson:"id"`
	RoomID    string    `json:"roomId" bson:"roomId"`
	UserID    string    `json:"userId" bson:"userId"`
	Username  string    `json:"username" bson:"username"`
	Content   string    `json:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

/*** Durable room document (Document Store) ***/

// Room is the persisted per-room document. The coordinator only reads it on
// join and upserts code/language on change; HTTP handlers own the rest.
type Room struct {
	RoomID       string    `json:"roomId" bson:"roomId"`
	Name         string    `json:"name" bson:"name"`
	Owner        string    `json:"owner" bson:"owner"`
	Language     string    `json:"language" bson:"language"`
	Code         string    `json:"code" bson:"code"`
	Participants []string  `json:"participants" bson:"participants"`
	IsPublic     bool      `json:"isPublic" bson:"isPublic"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Snippet is a saved copy of room code.
type Snippet struct {
	ID        string    `json:"id" bson:"id"`
	RoomID    string    `json:"roomId,omitempty" bson:"roomId,omitempty"`
	UserID    string    `json:"userId,omitempty" bson:"userId,omitempty"`
	Name      string    `json:"name" bson:"name"`
	Language  string    `json:"language" bson:"language"`
	Code      string    `json:"code" bson:"code"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

/*** HTTP API responses ***/

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

/*** Code execution (external collaborator) ***/

type ExecuteRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Stdin    string `json:"stdin,omitempty"`
}

type ExecuteResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	Output   string `json:"output"`
	Exit     int    `json:"exit"`
	Language string `json:"language"`
	Version  string `json:"version"`
}
