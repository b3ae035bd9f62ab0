package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"collabedit/internal/auth"
	"collabedit/internal/models"
	"collabedit/internal/utils"
)

type SnippetDocuments interface {
	Create(ctx context.Context, s *models.Snippet) (*models.Snippet, error)
	GetByID(ctx context.Context, id string) (*models.Snippet, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.Snippet, error)
	Delete(ctx context.Context, id, userID string) error
}

type SnippetHandler struct {
	log  *zap.Logger
	repo SnippetDocuments
}

func NewSnippetHandler(log *zap.Logger, repo SnippetDocuments) *SnippetHandler {
	return &SnippetHandler{log: log, repo: repo}
}

type createSnippetRequest struct {
	RoomID   string `json:"roomId"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Code     string `json:"code"`
}

// Create saves a snippet. Works anonymously; an authenticated user gets the
// snippet attributed so it shows up in their listing.
func (h *SnippetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSnippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid_request", "invalid payload")
		return
	}
	if req.Code == "" {
		utils.JSONError(w, http.StatusBadRequest, "invalid_request", "code required")
		return
	}

	snippet := &models.Snippet{
		RoomID:   req.RoomID,
		Name:     req.Name,
		Language: req.Language,
		Code:     req.Code,
	}
	if identity := auth.IdentityFrom(r.Context()); identity != nil {
		snippet.UserID = identity.UserID
	}
	created, err := h.repo.Create(r.Context(), snippet)
	if err != nil {
		h.log.Error("create snippet failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to save snippet")
		return
	}
	utils.JSON(w, http.StatusCreated, created)
}

func (h *SnippetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snippet, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.log.Error("get snippet failed", zap.String("id", id), zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to fetch snippet")
		return
	}
	if snippet == nil {
		utils.JSONError(w, http.StatusNotFound, "snippet_not_found", "snippet not found")
		return
	}
	utils.JSON(w, http.StatusOK, snippet)
}

func (h *SnippetHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFrom(r.Context())
	if identity == nil {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}
	snippets, err := h.repo.ListByUser(r.Context(), identity.UserID, 100)
	if err != nil {
		h.log.Error("list snippets failed", zap.Error(err))
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to list snippets")
		return
	}
	if snippets == nil {
		snippets = []models.Snippet{}
	}
	utils.JSON(w, http.StatusOK, snippets)
}

func (h *SnippetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFrom(r.Context())
	if identity == nil {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.repo.Delete(r.Context(), id, identity.UserID); err != nil {
		utils.JSONError(w, http.StatusNotFound, "snippet_not_found", "snippet not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
