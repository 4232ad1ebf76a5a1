// Package api exposes read-only JSON projections of sessions, players and statistics.
package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/verte-zerg/meeple/internal/model"
	"github.com/verte-zerg/meeple/internal/sessions"
	"github.com/verte-zerg/meeple/internal/stats"
)

const (
	defaultLeaderboardSize = 10
	maxPerPage             = 100
)

// SessionReader is the read side of the session store.
type SessionReader interface {
	All() []model.Session
	Get(id model.ID) (model.Session, bool)
}

// PlayerReader is the read side of the player directory.
type PlayerReader interface {
	All() []model.Player
	GetByName(name string) (model.Player, bool)
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// Handler serves the API endpoints.
type Handler struct {
	sessions        SessionReader
	players         PlayerReader
	agg             *stats.Aggregator
	logger          *log.Logger
	perPage         int
	leaderboardSize int
}

// HandlerConfig holds listing defaults.
type HandlerConfig struct {
	PerPage         int
	LeaderboardSize int
}

// NewHandler creates a handler over the given sources.
func NewHandler(s SessionReader, p PlayerReader, agg *stats.Aggregator, cfg HandlerConfig, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = sessions.DefaultPerPage
	}
	if cfg.LeaderboardSize <= 0 {
		cfg.LeaderboardSize = defaultLeaderboardSize
	}
	return &Handler{
		sessions:        s,
		players:         p,
		agg:             agg,
		logger:          logger,
		perPage:         cfg.PerPage,
		leaderboardSize: cfg.LeaderboardSize,
	}
}

// HealthCheck reports liveness and collection sizes.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"sessions":  len(h.sessions.All()),
		"players":   len(h.players.All()),
	})
}

// GetPlayers lists every player.
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	list := h.players.All()
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"players": list,
		"count":   len(list),
	})
}

// GetPlayerStats returns one player's statistics.
func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	player, ok := h.players.GetByName(name)
	if !ok {
		h.respondError(w, http.StatusNotFound, "player not found", nil)
		return
	}
	h.respondJSON(w, http.StatusOK, h.agg.PlayerStats(player.Name))
}

// GetSessions lists sessions newest first.
// Query params: game, player, page, per_page
func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := parseIntParam(r, "page", 1)
	perPage := parseIntParam(r, "per_page", h.perPage)
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	list := sessions.Filter(h.sessions.All(), q.Get("game"), q.Get("player"))
	sessions.SortByDate(list, true)
	h.respondJSON(w, http.StatusOK, sessions.Paginate(list, page, perPage))
}

// GetSession returns a single session by id.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "id is required", nil)
		return
	}
	s, ok := h.sessions.Get(model.ID(id))
	if !ok {
		h.respondError(w, http.StatusNotFound, "session not found", nil)
		return
	}
	h.respondJSON(w, http.StatusOK, s)
}

// GetGames returns statistics for every played game.
func (h *Handler) GetGames(w http.ResponseWriter, r *http.Request) {
	games := h.agg.RecomputeAll()
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"games": games,
		"count": len(games),
	})
}

// GetGame returns one game's statistics. The name is matched loosely.
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	name, gs, ok := h.agg.GameStats(pathParam(r, "name"))
	if !ok {
		h.respondError(w, http.StatusNotFound, "game not found", nil)
		return
	}
	resp := map[string]interface{}{
		"name":  name,
		"stats": gs,
	}
	if best, ok := h.agg.BestScore(name); ok {
		resp["bestScore"] = best
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// GetLeaderboard returns a game's leaderboard.
// Query params: limit
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	name, gs, ok := h.agg.GameStats(pathParam(r, "name"))
	if !ok {
		h.respondError(w, http.StatusNotFound, "game not found", nil)
		return
	}
	limit := parseIntParam(r, "limit", h.leaderboardSize)
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"name":        name,
		"leaderboard": stats.Leaderboard(gs, limit),
	})
}

// GetRanking returns the overall player ranking.
func (h *Handler) GetRanking(w http.ResponseWriter, r *http.Request) {
	ranking := stats.Ranking(h.agg.AllPlayerStats())
	if ranking == nil {
		ranking = []model.PlayerStats{}
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"ranking": ranking,
		"count":   len(ranking),
	})
}

// GetSummary returns totals and achievements across all players.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, stats.Summarize(h.agg.AllPlayerStats()))
}

func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func parseIntParam(r *http.Request, param string, defaultValue int) int {
	valueStr := r.URL.Query().Get(param)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Printf("error encoding response: %v", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		h.logger.Printf("error: %s: %v", message, err)
	}
	h.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
