package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"collabedit/internal/auth"
	"collabedit/internal/models"
)

type fakeRoomDocs struct {
	rooms   map[string]*models.Room
	failing bool
}

func newFakeRoomDocs() *fakeRoomDocs {
	return &fakeRoomDocs{rooms: make(map[string]*models.Room)}
}

func (f *fakeRoomDocs) Create(_ context.Context, room *models.Room) (*models.Room, error) {
	if f.failing {
		return nil, errors.New("store down")
	}
	room.CreatedAt = time.Now()
	room.UpdatedAt = room.CreatedAt
	f.rooms[room.RoomID] = room
	return room, nil
}

func (f *fakeRoomDocs) FindByRoomID(_ context.Context, roomID string) (*models.Room, error) {
	if f.failing {
		return nil, errors.New("store down")
	}
	return f.rooms[roomID], nil
}

func (f *fakeRoomDocs) ListPublic(_ context.Context, limit int64) ([]models.Room, error) {
	if f.failing {
		return nil, errors.New("store down")
	}
	var out []models.Room
	for _, room := range f.rooms {
		if room.IsPublic {
			out = append(out, *room)
		}
	}
	return out, nil
}

func (f *fakeRoomDocs) AddParticipant(_ context.Context, roomID, userID string) error {
	room, ok := f.rooms[roomID]
	if !ok {
		return errors.New("not found")
	}
	room.Participants = append(room.Participants, userID)
	return nil
}

func roomTestRouter(t *testing.T, docs RoomDocuments) (chi.Router, *auth.JWT) {
	t.Helper()
	jwt := auth.NewJWT("test-secret", time.Hour)
	h := NewRoomHandler(zap.NewNop(), docs)

	r := chi.NewRouter()
	r.Get("/rooms", h.List)
	r.Get("/rooms/{roomId}", h.Get)
	r.With(jwt.Middleware).Post("/rooms", h.Create)
	r.With(jwt.Middleware).Post("/rooms/{roomId}/join", h.Join)
	return r, jwt
}

func authedRequest(t *testing.T, jwt *auth.JWT, method, path string, payload any) *http.Request {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	token, err := jwt.Sign(models.Identity{UserID: "u1", Username: "alice"})
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestCreateRoomAppliesDefaults(t *testing.T) {
	docs := newFakeRoomDocs()
	router, jwt := roomTestRouter(t, docs)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, jwt, http.MethodPost, "/rooms", map[string]any{}))
	require.Equal(t, http.StatusCreated, rec.Code)

	var room models.Room
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &room))
	assert.Len(t, room.RoomID, 8)
	assert.Equal(t, "Room "+room.RoomID, room.Name)
	assert.Equal(t, "javascript", room.Language)
	assert.Equal(t, "u1", room.Owner)
	assert.Equal(t, []string{"u1"}, room.Participants)
	assert.True(t, room.IsPublic)
}

func TestCreateRoomRequiresAuth(t *testing.T) {
	router, _ := roomTestRouter(t, newFakeRoomDocs())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rooms", bytes.NewReader([]byte("{}"))))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetRoomNotFound(t *testing.T) {
	router, _ := roomTestRouter(t, newFakeRoomDocs())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/missing1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "room_not_found", errResp.Code)
}

func TestGetRoomReturnsDocument(t *testing.T) {
	docs := newFakeRoomDocs()
	docs.rooms["abc12345"] = &models.Room{RoomID: "abc12345", Name: "Demo", Language: "go", IsPublic: true}
	router, _ := roomTestRouter(t, docs)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/abc12345", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var room models.Room
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &room))
	assert.Equal(t, "Demo", room.Name)
}

func TestListRoomsAlwaysReturnsArray(t *testing.T) {
	router, _ := roomTestRouter(t, newFakeRoomDocs())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", string(bytes.TrimSpace(rec.Body.Bytes())))
}

func TestJoinRoomAddsParticipant(t *testing.T) {
	docs := newFakeRoomDocs()
	docs.rooms["abc12345"] = &models.Room{RoomID: "abc12345", Participants: []string{"owner"}}
	router, jwt := roomTestRouter(t, docs)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, jwt, http.MethodPost, "/rooms/abc12345/join", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, docs.rooms["abc12345"].Participants, "u1")
}

func TestJoinMissingRoomIs404(t *testing.T) {
	router, jwt := roomTestRouter(t, newFakeRoomDocs())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, jwt, http.MethodPost, "/rooms/missing1/join", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRoomStoreFailureIs500(t *testing.T) {
	docs := newFakeRoomDocs()
	docs.failing = true
	router, jwt := roomTestRouter(t, docs)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(t, jwt, http.MethodPost, "/rooms", map[string]any{"name": "x"}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
