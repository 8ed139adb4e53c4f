package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pudaweed/clubman/internal/model"
	"github.com/pudaweed/clubman/internal/user"
)

// PlayerServiceInterface は選手管理ハンドラーが必要とするサービスインターフェース。
type PlayerServiceInterface interface {
	// ListPlayers は選手ロールのユーザーを名前順で返す。
	ListPlayers(ctx context.Context, filter user.PlayerFilter) ([]model.User, error)
	// SetAllowed は選手のアクセス許可フラグを更新する。
	SetAllowed(ctx context.Context, id string, allowed bool) error
}

// PlayerHandler は選手管理のHTTPハンドラー。
type PlayerHandler struct {
	service PlayerServiceInterface
}

// NewPlayerHandler はPlayerHandlerを生成する。
func NewPlayerHandler(service PlayerServiceInterface) *PlayerHandler {
	return &PlayerHandler{service: service}
}

// userResponse はユーザーのレスポンス。
type userResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Allowed bool   `json:"allowed"`
}

// playerListResponse は選手一覧のレスポンス。
type playerListResponse struct {
	Players []userResponse `json:"players"`
}

// setAllowedRequest はアクセス許可更新リクエストのボディ。
type setAllowedRequest struct {
	Allowed bool `json:"allowed"`
}

// List は選手一覧を返す。
// GET /api/players?filter=all|active|inactive
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := user.PlayerFilter(r.URL.Query().Get("filter"))

	players, err := h.service.ListPlayers(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := playerListResponse{Players: make([]userResponse, len(players))}
	for i, p := range players {
		resp.Players[i] = userResponse{
			ID:      p.ID,
			Email:   p.Email,
			Name:    p.Name,
			Role:    string(p.Role),
			Allowed: p.Allowed,
		}
	}
	writeJSON(w, resp)
}

// SetAllowed は選手のアクセス許可フラグを更新する。
// PUT /api/players/{id}/allowed
func (h *PlayerHandler) SetAllowed(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setAllowedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.SetAllowed(r.Context(), id, req.Allowed); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
