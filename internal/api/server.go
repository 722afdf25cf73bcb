// Package api provides the HTTP API for running rounds headless.
// GET endpoints observe the engine and the round history; POST and DELETE
// endpoints start, steer and stop the current round. A WebSocket channel
// carries the same controls plus live state at the broadcast rate.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/duck-sorter/internal/agents"
	"github.com/talgya/duck-sorter/internal/engine"
	"github.com/talgya/duck-sorter/internal/entropy"
	"github.com/talgya/duck-sorter/internal/persistence"
	"github.com/talgya/duck-sorter/internal/protocol"
	"github.com/talgya/duck-sorter/internal/vec"
)

const (
	maxSSEConns = 8
	maxWSConns  = 32
)

// Round defaults when a request leaves the counts out.
const (
	DefaultGroups        = 3
	DefaultDucksPerGroup = 4
)

// Server serves the engine over HTTP.
type Server struct {
	Eng         *engine.Engine
	DB          *persistence.DB     // nil disables history endpoints
	Seeds       *entropy.SeedSource // nil means crypto/rand seeds
	Port        int
	BroadcastHz int
	CORSOrigins []string
	MaxWSConns  int // 0 means maxWSConns

	// RoundLimiter throttles round starts per client IP.
	RoundLimiter *RateLimiter

	// Now supplies the date for daily seeds.
	Now func() time.Time

	sseConns int32
	wsConns  int32
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	if s.RoundLimiter == nil {
		s.RoundLimiter = NewRateLimiter(30, time.Minute)
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.BroadcastHz <= 0 {
		s.BroadcastHz = protocol.BroadcastHz
	}
	if s.MaxWSConns <= 0 {
		s.MaxWSConns = maxWSConns
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/state", s.handleState)
	mux.HandleFunc("POST /api/v1/round", RateLimitMiddleware(s.RoundLimiter, s.handleStartRound))
	mux.HandleFunc("DELETE /api/v1/round", s.handleStopRound)
	mux.HandleFunc("POST /api/v1/target", s.handleTarget)

	mux.HandleFunc("GET /api/v1/seed/daily", s.handleDailySeed)
	mux.HandleFunc("GET /api/v1/seed/random", s.handleRandomSeed)

	mux.HandleFunc("GET /api/v1/rounds", s.handleRounds)
	mux.HandleFunc("GET /api/v1/rounds/{id}", s.handleRound)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/leaderboard", s.handleLeaderboard)

	mux.HandleFunc("GET /api/v1/stream", s.handleStream)
	mux.HandleFunc("GET /api/v1/ws", s.handleWS)

	return corsMiddleware(s.CORSOrigins, mux)
}

// Start begins serving the HTTP API in a goroutine. The returned server is
// for shutdown.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "random_org", s.Seeds.Enabled(), "history", s.DB != nil)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(extra []string, next http.Handler) http.Handler {
	allowed := allowedOrigins(extra)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func allowedOrigins(extra []string) map[string]bool {
	allowed := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range extra {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowed[origin] = true
		}
	}
	return allowed
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"name":         "duck-sorter",
		"engine":       s.Eng.Status(),
		"broadcast_hz": s.BroadcastHz,
		"random_org":   s.Seeds.Enabled(),
		"history":      s.DB != nil,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.Eng.Snapshot()
	if !ok {
		http.Error(w, "no round in progress", http.StatusNotFound)
		return
	}
	writeJSON(w, snap)
}

// resolveSeed picks the seed for a start request: an explicit seed wins,
// then the mode ("daily" or "random").
func (s *Server) resolveSeed(req protocol.Start) (int64, error) {
	if req.Seed != nil {
		return *req.Seed, nil
	}
	switch req.Mode {
	case "daily":
		return entropy.DailySeed(s.Now()), nil
	case "", "random":
		return s.Seeds.Seed(), nil
	}
	return 0, fmt.Errorf("%w: unknown mode %q", agents.ErrConfig, req.Mode)
}

// startRound validates req and starts it on the engine.
func (s *Server) startRound(req protocol.Start) (engine.Snapshot, error) {
	seed, err := s.resolveSeed(req)
	if err != nil {
		return engine.Snapshot{}, err
	}
	if req.NumGroups == 0 {
		req.NumGroups = DefaultGroups
	}
	if req.DucksPerGroup == 0 {
		req.DucksPerGroup = DefaultDucksPerGroup
	}
	return s.Eng.Start(engine.Round{
		Seed:          seed,
		NumGroups:     req.NumGroups,
		DucksPerGroup: req.DucksPerGroup,
	})
}

func (s *Server) handleStartRound(w http.ResponseWriter, r *http.Request) {
	var req protocol.Start
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
	}

	snap, err := s.startRound(req)
	if errors.Is(err, agents.ErrConfig) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("start round failed", "error", err)
		http.Error(w, "could not start round", http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, http.StatusCreated, snap)
}

func (s *Server) handleStopRound(w http.ResponseWriter, r *http.Request) {
	if !s.Eng.Stop() {
		http.Error(w, "no round in progress", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	var req protocol.Target
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	s.Eng.SetTarget(vec.New(req.X, req.Y))
	writeJSON(w, req)
}

func (s *Server) handleDailySeed(w http.ResponseWriter, r *http.Request) {
	now := s.Now()
	writeJSON(w, map[string]any{
		"seed": entropy.DailySeed(now),
		"date": now.Format(time.DateOnly),
	})
}

func (s *Server) handleRandomSeed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"seed": s.Seeds.Seed()})
}

func (s *Server) handleRounds(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "history disabled", http.StatusServiceUnavailable)
		return
	}
	rounds, err := s.DB.RecentRounds(queryInt(r, "limit", 20, 1, 500))
	if err != nil {
		slog.Error("list rounds failed", "error", err)
		http.Error(w, "could not list rounds", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rounds)
}

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "history disabled", http.StatusServiceUnavailable)
		return
	}
	round, err := s.DB.GetRound(r.PathValue("id"))
	if errors.Is(err, persistence.ErrNotFound) {
		http.Error(w, "round not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("get round failed", "error", err)
		http.Error(w, "could not load round", http.StatusInternalServerError)
		return
	}
	writeJSON(w, round)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "history disabled", http.StatusServiceUnavailable)
		return
	}
	events, err := s.DB.RecentEvents(queryInt(r, "limit", 50, 1, 500))
	if err != nil {
		slog.Error("list events failed", "error", err)
		http.Error(w, "could not list events", http.StatusInternalServerError)
		return
	}
	writeJSON(w, events)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "history disabled", http.StatusServiceUnavailable)
		return
	}
	q := persistence.LeaderboardQuery{
		NumGroups:     queryInt(r, "num_groups", 0, 1, 100),
		DucksPerGroup: queryInt(r, "ducks_per_group", 0, 1, 100),
		Limit:         queryInt(r, "limit", 10, 1, 100),
	}
	if v := r.URL.Query().Get("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid seed", http.StatusBadRequest)
			return
		}
		q.Seed = &seed
	}

	best, err := s.DB.BestTimes(q)
	if err != nil {
		slog.Error("leaderboard failed", "error", err)
		http.Error(w, "could not load leaderboard", http.StatusInternalServerError)
		return
	}
	writeJSON(w, best)
}

// queryInt reads an integer query parameter, falling back to def when it is
// missing or outside [lo, hi].
func queryInt(r *http.Request, key string, def, lo, hi int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= lo && n <= hi {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
