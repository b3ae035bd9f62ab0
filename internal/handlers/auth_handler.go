package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"collabedit/internal/auth"
	"collabedit/internal/models"
	"collabedit/internal/repositories"
	"collabedit/internal/utils"
)

// AuthHandler manages account registration and login.
type AuthHandler struct {
	Repo *repositories.UserRepository
	JWT  *auth.JWT
}

func NewAuthHandler(repo *repositories.UserRepository, jwt *auth.JWT) *AuthHandler {
	return &AuthHandler{Repo: repo, JWT: jwt}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string          `json:"token"`
	User  models.Identity `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid_request", "invalid payload")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		utils.JSONError(w, http.StatusBadRequest, "invalid_request", "missing fields")
		return
	}

	if existing, _ := h.Repo.GetUserByUsername(req.Username); existing != nil {
		utils.JSONError(w, http.StatusConflict, "conflict", "username taken")
		return
	}
	if existing, _ := h.Repo.GetUserByEmail(req.Email); existing != nil {
		utils.JSONError(w, http.StatusConflict, "conflict", "email taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to hash password")
		return
	}
	user := &models.User{Username: req.Username, Email: req.Email, PasswordHash: string(hash)}
	if err := h.Repo.CreateUser(user); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to create user")
		return
	}
	utils.JSON(w, http.StatusCreated, map[string]any{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid_request", "invalid payload")
		return
	}
	user, err := h.Repo.GetUserByUsername(req.Username)
	if err != nil {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}

	identity := models.Identity{
		UserID:   strconv.FormatUint(uint64(user.ID), 10),
		Username: user.Username,
	}
	signed, err := h.JWT.Sign(identity)
	if err != nil {
		utils.JSONError(w, http.StatusInternalServerError, "internal_error", "failed to sign token")
		return
	}
	utils.JSON(w, http.StatusOK, authResponse{Token: signed, User: identity})
}

// Me echoes the authenticated identity, for session restore on the client.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFrom(r.Context())
	if identity == nil {
		utils.JSONError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}
	utils.JSON(w, http.StatusOK, identity)
}
