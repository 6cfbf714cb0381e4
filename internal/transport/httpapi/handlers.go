package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/solarsmart/salesbot/internal/core"
	"github.com/solarsmart/salesbot/internal/service/session"
	"github.com/solarsmart/salesbot/pkg/log"
)

// Orchestrator is the slice of the agent the bridge needs.
type Orchestrator interface {
	Submit(ctx context.Context, userID, userMessage string) (core.TurnResult, error)
	ResolveApprove(ctx context.Context, userID string) (string, error)
	ResolveReject(ctx context.Context, userID, editedText string) (string, error)
}

type Handler struct {
	agent    Orchestrator
	sessions *session.Store
	db       *sql.DB
}

func NewHandler(agent Orchestrator, sessions *session.Store, db *sql.DB) *Handler {
	return &Handler{
		agent:    agent,
		sessions: sessions,
		db:       db,
	}
}

type initRequest struct {
	UserID string `json:"user_id"`
}

type initResponse struct {
	UserID   string            `json:"user_id"`
	Messages []session.Message `json:"messages"`
}

func (h *Handler) Init(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	userID, messages := h.sessions.Init(req.UserID)
	writeJSON(w, http.StatusOK, initResponse{UserID: userID, Messages: messages})
}

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type chatResponse struct {
	Reply      string `json:"reply"`
	NeedsHuman bool   `json:"needs_human"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Message == "" {
		writeError(w, fmt.Errorf("%w: message is required", core.ErrValidation))
		return
	}

	userID := h.sessions.Ensure(req.UserID)

	result, err := h.agent.Submit(r.Context(), userID, req.Message)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Str("user_id", userID).Msg("chat turn failed")
		writeError(w, err)
		return
	}

	h.sessions.RecordTurn(userID, req.Message, result)
	writeJSON(w, http.StatusOK, chatResponse{Reply: result.Reply, NeedsHuman: result.NeedsHuman})
}

type approveRequest struct {
	UserID      string `json:"user_id"`
	Approve     bool   `json:"approve"`
	EditedReply string `json:"edited_reply"`
}

type approveResponse struct {
	Reply string `json:"reply"`
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.UserID == "" {
		writeError(w, fmt.Errorf("%w: user_id is required", core.ErrValidation))
		return
	}
	if !h.sessions.Exists(req.UserID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user session not found"})
		return
	}

	var reply string
	var err error
	if req.Approve {
		reply, err = h.agent.ResolveApprove(r.Context(), req.UserID)
	} else {
		reply, err = h.agent.ResolveReject(r.Context(), req.UserID, req.EditedReply)
	}
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Str("user_id", req.UserID).Msg("approval failed")
		writeError(w, err)
		return
	}

	h.sessions.ResolvePending(req.UserID, reply)
	writeJSON(w, http.StatusOK, approveResponse{Reply: reply})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "storage error"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body", core.ErrValidation)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// writeError maps component errors to a non-2xx response with a stable
// error-kind string, never internals.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": core.ErrValidation.Error()})
	case errors.Is(err, core.ErrNoDraft):
		writeJSON(w, http.StatusConflict, map[string]string{"error": core.ErrNoDraft.Error()})
	case errors.Is(err, core.ErrProvider):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": core.ErrProvider.Error()})
	case errors.Is(err, core.ErrStorage):
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": core.ErrStorage.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
