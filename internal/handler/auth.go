package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"plantracker/internal/auth"
	"plantracker/internal/model"
	"plantracker/internal/store"
)

type AuthHandler struct {
	users    *store.UserStore
	tokens   *auth.TokenManager
	botToken string
	logger   *slog.Logger
}

func NewAuthHandler(users *store.UserStore, tokens *auth.TokenManager, botToken string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, botToken: botToken, logger: logger}
}

type telegramLoginRequest struct {
	InitData string `json:"initData"`
}

type telegramLoginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// TelegramLogin exchanges Mini App init data for a session token.
func (h *AuthHandler) TelegramLogin(w http.ResponseWriter, r *http.Request) {
	var req telegramLoginRequest
	if !decode(w, r, &req) {
		return
	}

	tu, err := auth.VerifyInitData(req.InitData, h.botToken, time.Hour, time.Now())
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid init data"})
		return
	}

	u, err := h.users.Upsert(fmt.Sprint(tu.ID), tu.FirstName, tu.LastName, tu.Username, tu.PhotoURL)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	token, err := h.tokens.Issue(u.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, telegramLoginResponse{Token: token, User: u})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if u == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}
