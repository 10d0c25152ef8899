// Package gateway binds the chat core to the outside world: an HTTP API for
// health and stats, and a websocket endpoint carrying the message stream.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/harubot/haru/internal/bot"
	"github.com/harubot/haru/internal/flow"
)

// Handler serves the HTTP surface.
type Handler struct {
	router   *bot.Router
	registry *Registry
	deps     flow.Deps
}

// NewHandler creates the gateway over the message router and the connection
// registry.
func NewHandler(router *bot.Router, registry *Registry, deps flow.Deps) *Handler {
	return &Handler{router: router, registry: registry, deps: deps}
}

// Routes builds the chi router: /healthz, /api/stats, /ws.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Get("/api/stats", h.handleStats)
	r.Get("/ws", h.handleWS)
	return r
}

// handleStats reports today's schedule counts for a user, for dashboards and
// smoke checks.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}
	today := h.deps.Today()
	done, notDone, err := h.deps.Repo.ScheduleStats(r.Context(), userID, today, today)
	if err != nil {
		slog.Error("Stats query failed", "user_id", userID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"user_id": userID,
		"date":    today,
		"done":    done,
		"open":    notDone,
	}); err != nil {
		slog.Debug("Failed to write stats response", "error", err)
	}
}

// handleWS upgrades to a websocket and pumps text frames through the message
// router. Each inbound frame produces exactly one reply frame; unsolicited
// frames (digest, reminders) arrive through the registry.
func (h *Handler) handleWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		http.Error(w, "user_id is required", http.StatusBadRequest)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept websocket", "user_id", userID, "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "bye"); closeErr != nil {
			slog.Debug("Websocket close failed", "user_id", userID, "error", closeErr)
		}
	}()

	connID := h.registry.Register(userID, ws)
	defer h.registry.Unregister(userID, connID)
	slog.Info("User connected", "user_id", userID, "conn_id", connID, "ip", r.RemoteAddr)

	ctx := r.Context()
	for {
		kind, data, err := ws.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				slog.Info("User disconnected", "user_id", userID, "conn_id", connID)
			} else {
				slog.Debug("Websocket read failed", "user_id", userID, "error", err)
			}
			return
		}
		if kind != websocket.MessageText {
			continue
		}

		reply := h.router.Handle(ctx, userID, string(data))
		if err := ws.Write(ctx, websocket.MessageText, []byte(reply)); err != nil {
			slog.Debug("Reply write failed", "user_id", userID, "error", err)
			return
		}
	}
}
