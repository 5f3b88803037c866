package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"jackaroo-server/room"
	"jackaroo-server/session"
	"jackaroo-server/storage"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	HistoryStore *storage.Store
	Rooms        *room.Manager
	Sessions     *session.Manager
}

// NewHandler creates a new API handler with the given dependencies.
func NewHandler(historyStore *storage.Store, rooms *room.Manager, sessions *session.Manager) *Handler {
	return &Handler{
		HistoryStore: historyStore,
		Rooms:        rooms,
		Sessions:     sessions,
	}
}

// CORS sets CORS headers on the response. Call before writing body.
func CORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

// Health reports process liveness plus room and session counts.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	resp := map[string]interface{}{
		"status":   "ok",
		"rooms":    h.Rooms.Count(),
		"sessions": h.Sessions.Count(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Warn("encode health response", "tag", "api", "err", err)
	}
}

// History returns recently finished matches, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if CORS(w, r) {
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := h.HistoryStore.ListRecent(r.Context(), limit)
	if err != nil {
		slog.Error("list recent matches", "tag", "api", "err", err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(list); err != nil {
		slog.Warn("encode history response", "tag", "api", "err", err)
	}
}
