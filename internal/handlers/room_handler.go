package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"collabedit/internal/auth"
	"collabedit/internal/models"
	"collabedit/internal/utils"
)

// RoomDocuments is the slice of the document store the HTTP surface needs.
type RoomDocuments interface {
	Create(ctx context.Context, room *models.Room) (*models.Room, error)
	FindByRoomID(ctx context.Context, roomID string) (*models.Room, error)
	ListPublic(ctx context.Context, limit int64) ([]models.Room, error)
	AddParticipant(ctx context.Context, roomID, userID string) error
}

type RoomHandler struct {
	log  *zap.Logger
	repo RoomDocuments
}

func NewRoomHandler(log *zap.Logger, repo RoomDocuments) *RoomHandler {
	return &RoomHandler{log: log, repo: repo}
}

type createRoomRequest struct {
	Name     string `json:"name"`
	Language string `json:"language"`
	IsPublic *bool  `json:"isPublic"`
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFrom(r.Context())
	if identity == nil {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid_request", "invalid payload")
		return
	}

	roomID := uuid.New().String()[:8]
	name := req.Name
	if name == "" {
		name = "Room " + roomID
	}
	language := req.Language
	if language == "" {
		language = "javascript"
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	room := &models.Room{
		RoomID:       roomID,
		Name:         name,
		Owner:        identity.UserID,
		Language:     language,
		Code:         "// Start coding here...\n",
		Participants: []string{identity.UserID},
		IsPublic:     isPublic,
	}
	created, err := h.repo.Create(r.Context(), room)
	if err != nil {
		h.log.Error("create room failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to create room")
		return
	}
	utils.JSON(w, http.StatusCreated, created)
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	room, err := h.repo.FindByRoomID(r.Context(), roomID)
	if err != nil {
		h.log.Error("get room failed", zap.String("roomId", roomID), zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to fetch room")
		return
	}
	if room == nil {
		utils.JSONError(w, http.StatusNotFound, "room_not_found", "room not found")
		return
	}
	utils.JSON(w, http.StatusOK, room)
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.repo.ListPublic(r.Context(), 100)
	if err != nil {
		h.log.Error("list rooms failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to list rooms")
		return
	}
	if rooms == nil {
		rooms = []models.Room{}
	}
	utils.JSON(w, http.StatusOK, rooms)
}

func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFrom(r.Context())
	if identity == nil {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}
	roomID := chi.URLParam(r, "roomId")
	if err := h.repo.AddParticipant(r.Context(), roomID, identity.UserID); err != nil {
		utils.JSONError(w, http.StatusNotFound, "room_not_found", "room not found")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"roomId": roomID})
}
