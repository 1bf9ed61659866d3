// Package api provides the HTTP API for observing the world and its events.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/worldevents/internal/agents"
	"github.com/talgya/worldevents/internal/engine"
	"github.com/talgya/worldevents/internal/events"
	"github.com/talgya/worldevents/internal/persistence"
)

// Event listing bounds.
const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// Server serves the world state over HTTP.
type Server struct {
	Sim         *engine.Simulation
	Eng         *engine.Engine
	DB          *persistence.DB // Optional; history and snapshot endpoints need it
	Port        int
	AdminKey    string   // Bearer token for POST endpoints. Empty = POST disabled.
	CORSOrigins []string // Extra allowed origins beyond localhost dev servers
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	// The event log lives on disk; keep scrapers from hammering it.
	historyLimiter := NewRateLimiter(120, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/events/history", RateLimitMiddleware(historyLimiter, s.handleEventHistory))
	mux.HandleFunc("GET /api/v1/summary", s.handleSummary)
	mux.HandleFunc("GET /api/v1/agents", s.handleAgents)
	mux.HandleFunc("GET /api/v1/agent/{name}", s.handleAgentDetail)
	mux.HandleFunc("GET /api/v1/templates", s.handleTemplates)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("POST /api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	return corsMiddleware(s.CORSOrigins, mux)
}

// Start serves the HTTP API in a goroutine until ctx is done.
func (s *Server) Start(ctx context.Context) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", srv.Addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no WORLDSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var status map[string]any
	s.Sim.Read(func() {
		resources := make(map[string]float64, len(s.Sim.World.Resources))
		for name, v := range s.Sim.World.Resources {
			resources[name] = v
		}
		status = map[string]any{
			"name":         "worldevents",
			"day":          s.Sim.World.Day,
			"sim_time":     engine.SimDate(s.Sim.World.Day),
			"season":       s.Sim.World.Season,
			"year":         s.Sim.World.Year(),
			"speed":        s.Eng.CurrentSpeed(),
			"alive":        s.Sim.Stats.Alive,
			"dead":         s.Sim.Stats.Dead,
			"total_events": s.Sim.Stats.TotalEvents,
			"templates":    s.Sim.Events.Catalog().Len(),
			"locations":    s.Sim.World.LocationNames(),
			"resources":    resources,
		}
	})
	writeJSON(w, status)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var stats engine.SimStats
	s.Sim.Read(func() { stats = s.Sim.Stats })
	writeJSON(w, stats)
}

// handleEvents returns the most recent in-memory events, optionally filtered
// by type or participant.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= maxEventLimit {
			limit = n
		}
	}
	typ := events.EventType(r.URL.Query().Get("type"))
	agent := r.URL.Query().Get("agent")

	list := []events.Event{}
	s.Sim.Read(func() {
		for _, e := range s.Sim.History {
			if typ != "" && e.Type != typ {
				continue
			}
			if agent != "" && !e.HasParticipant(agent) {
				continue
			}
			list = append(list, e)
		}
	})

	start := 0
	if len(list) > limit {
		start = len(list) - limit
	}
	writeJSON(w, list[start:])
}

// handleEventHistory reads the persisted event log from a given day.
func (s *Server) handleEventHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	since, err := strconv.Atoi(r.URL.Query().Get("since"))
	if err != nil || since < 0 {
		http.Error(w, "since must be a non-negative day", http.StatusBadRequest)
		return
	}

	list, err := s.DB.RecentEvents(since)
	if err != nil {
		slog.Error("event history query failed", "since", since, "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	days := 30
	if d := r.URL.Query().Get("days"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 0 {
			http.Error(w, "days must be a non-negative integer", http.StatusBadRequest)
			return
		}
		days = n
	}

	var sum events.Summary
	s.Sim.Read(func() { sum = events.Summarize(s.Sim.History, days) })
	writeJSON(w, sum)
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	onlyAlive := r.URL.Query().Get("alive") == "true"

	type agentSummary struct {
		Name      string   `json:"name"`
		Age       int      `json:"age"`
		Alive     bool     `json:"alive"`
		Traits    []string `json:"traits"`
		Location  string   `json:"location"`
		Emotion   string   `json:"emotion"`
		Intensity float64  `json:"intensity"`
		Friends   int      `json:"friends"`
	}

	result := []agentSummary{}
	s.Sim.Read(func() {
		for _, a := range s.Sim.Agents {
			if onlyAlive && !a.Alive {
				continue
			}
			friends := 0
			for _, tier := range a.Relationships {
				if tier == agents.TierFriend {
					friends++
				}
			}
			result = append(result, agentSummary{
				Name:      a.Name,
				Age:       a.Age,
				Alive:     a.Alive,
				Traits:    append([]string(nil), a.Traits...),
				Location:  a.Location,
				Emotion:   a.Emotion,
				Intensity: a.EmotionIntensity,
				Friends:   friends,
			})
		}
	})
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	writeJSON(w, result)
}

func (s *Server) handleAgentDetail(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var (
		detail map[string]any
		found  bool
	)
	s.Sim.Read(func() {
		for _, a := range s.Sim.Agents {
			if a.Name != name {
				continue
			}
			found = true

			var recent []events.Event
			for _, e := range s.Sim.History {
				if e.HasParticipant(name) {
					recent = append(recent, e)
				}
			}
			if len(recent) > 20 {
				recent = recent[len(recent)-20:]
			}

			relationships := make(map[string]agents.RelationshipTier, len(a.Relationships))
			for peer, tier := range a.Relationships {
				relationships[peer] = tier
			}
			detail = map[string]any{
				"name":          a.Name,
				"age":           a.Age,
				"alive":         a.Alive,
				"traits":        append([]string(nil), a.Traits...),
				"personality":   a.Personality,
				"location":      a.Location,
				"emotion":       a.Emotion,
				"intensity":     a.EmotionIntensity,
				"relationships": relationships,
				"recent_events": recent,
			}
			return
		}
	})

	if !found {
		http.Error(w, "agent not found", http.StatusNotFound)
		return
	}
	writeJSON(w, detail)
}

// handleTemplates lists the catalog with each template's cooldown state.
func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	type templateEntry struct {
		Key          string           `json:"key"`
		Name         string           `json:"name"`
		Type         events.EventType `json:"type"`
		Probability  float64          `json:"probability"`
		CooldownDays int              `json:"cooldown_days"`
		FollowUps    []string         `json:"follow_ups"`
		LastFired    *int             `json:"last_fired,omitempty"`
		ReadyInDays  int              `json:"ready_in_days"`
	}

	var result []templateEntry
	s.Sim.Read(func() {
		today := s.Sim.World.Day
		cooldowns := s.Sim.Events.Cooldowns()
		for _, t := range s.Sim.Events.Catalog().Templates() {
			entry := templateEntry{
				Key:          t.Key,
				Name:         t.Name,
				Type:         t.Type,
				Probability:  t.Probability,
				CooldownDays: t.CooldownDays,
				FollowUps:    t.FollowUps,
			}
			if last, ok := cooldowns.LastFired(t.Name); ok {
				entry.LastFired = &last
				if wait := last + t.CooldownDays - today; wait > 0 {
					entry.ReadyInDays = wait
				}
			}
			result = append(result, entry)
		}
	})
	writeJSON(w, result)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	} else if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.CurrentSpeed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	var (
		day int
		err error
	)
	s.Sim.Read(func() {
		day = s.Sim.World.Day
		err = s.DB.SaveWorldState(s.Sim)
	})
	if err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"day":     day,
		"message": "snapshot saved",
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
