package gameserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/greyhaven/thornwall/internal/game/combat"
)

// Handler serves the JSON command API and the websocket event stream.
type Handler struct {
	manager  *MatchManager
	hub      *Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a Handler over the given manager and hub.
//
// Precondition: manager and logger must be non-nil; hub may be nil
// (the websocket route then rejects connections).
func NewHandler(manager *MatchManager, hub *Hub, logger *zap.Logger) *Handler {
	return &Handler{
		manager: manager,
		hub:     hub,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Router builds the mux router with all API routes registered.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/healthz", h.health).Methods(http.MethodGet)
	r.HandleFunc("/api/matches/{id}", h.getMatch).Methods(http.MethodGet)
	r.HandleFunc("/api/matches/{id}/journal", h.getJournal).Methods(http.MethodGet)
	r.HandleFunc("/api/matches/{id}/assign-damage", h.assignDamage).Methods(http.MethodPost)
	r.HandleFunc("/api/matches/{id}/block-attack", h.blockAttack).Methods(http.MethodPost)
	r.HandleFunc("/api/matches/{id}/ws", h.stream).Methods(http.MethodGet)
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) getMatch(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	snap, err := h.manager.Snapshot(matchID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": snap})
}

func (h *Handler) getJournal(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	entries, err := h.manager.History(r.Context(), matchID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"journal": entries})
}

func (h *Handler) assignDamage(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	var cmd combat.AssignDamageCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("decoding request: "+err.Error()))
		return
	}
	result, err := h.manager.AssignDamage(r.Context(), matchID, cmd)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) blockAttack(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	var cmd combat.BlockAttackCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("decoding request: "+err.Error()))
		return
	}
	result, err := h.manager.BlockAttack(r.Context(), matchID, cmd)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	matchID := mux.Vars(r)["id"]
	if h.hub == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody("event streaming disabled"))
		return
	}
	if _, err := h.manager.Snapshot(matchID); err != nil {
		h.writeError(w, err)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	h.hub.Subscribe(matchID, conn)

	// Reader loop: the stream is write-only, but reading detects
	// disconnects and handles control frames.
	go func() {
		defer h.hub.Unsubscribe(matchID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// writeError maps manager/engine errors onto HTTP statuses. Engine
// validation failures are integration bugs, so they surface as 422
// with the error text intact rather than as friendly user feedback.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMatchNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, combat.ErrNoActiveCombat),
		errors.Is(err, combat.ErrUnknownPlayer),
		errors.Is(err, combat.ErrUnknownEnemy),
		errors.Is(err, combat.ErrUnknownUnit),
		errors.Is(err, combat.ErrEnemyDefeated),
		errors.Is(err, combat.ErrAttackIndexOutOfRange),
		errors.Is(err, combat.ErrAttackBlocked),
		errors.Is(err, combat.ErrAttackAlreadyAssigned),
		errors.Is(err, combat.ErrNoAssignableAttack),
		errors.Is(err, combat.ErrInvalidAssignment):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	default:
		h.logger.Error("internal error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
