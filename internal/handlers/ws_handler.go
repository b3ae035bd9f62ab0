package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"collabedit/internal/metrics"
	"collabedit/internal/models"
	"collabedit/internal/session"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// WSHandler owns the collaboration event channel.
type WSHandler struct {
	log *zap.Logger
	co  *session.Coordinator
}

func NewWSHandler(log *zap.Logger, co *session.Coordinator) *WSHandler {
	return &WSHandler{log: log, co: co}
}

// Collab upgrades the connection and runs its event loop. Every frame is
// dispatched to completion before the next is read, which is the ordering
// guarantee the session state machine relies on. A read error of any kind
// means disconnect: the session is closed, and closing leaves the current
// room within the same loop turn.
func (h *WSHandler) Collab(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := session.NewClient(uuid.New().String(), conn)
	sess := h.co.NewSession(client)
	defer sess.Close()

	metrics.ConnectionOpened()
	defer metrics.ConnectionClosed()
	h.log.Info("socket connected", zap.String("connectionId", client.ID))

	for {
		var frame models.RawFrame
		if err := conn.ReadJSON(&frame); err != nil {
			h.log.Info("socket disconnected", zap.String("connectionId", client.ID))
			return
		}
		metrics.EventReceived(frame.Type)
		sess.HandleFrame(frame)
	}
}
