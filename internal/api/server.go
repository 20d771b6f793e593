// Package api exposes a running settlement over HTTP. GET endpoints are
// public read-only views; POST endpoints advance or persist the world
// and require a bearer token. See design doc Section 6.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/talgya/steading/internal/economy"
	"github.com/talgya/steading/internal/engine"
	"github.com/talgya/steading/internal/persistence"
)

// Server wires an engine and its save store to an HTTP listener.
type Server struct {
	Eng      *engine.Engine
	DB       *persistence.DB
	Port     int
	AdminKey string // bearer token for POST endpoints; empty disables them

	// The engine is single-goroutine. One lock covers every handler,
	// including the reads: quoting a price updates smoothing history.
	mu sync.Mutex
}

// Start launches the HTTP server in a background goroutine.
func (s *Server) Start() {
	dayLimiter := NewRateLimiter(1, 3)

	mux := http.NewServeMux()

	// Public read-only endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/resources", s.handleResources)
	mux.HandleFunc("/api/v1/prices", s.handlePrices)
	mux.HandleFunc("/api/v1/ecosystem", s.handleEcosystem)
	mux.HandleFunc("/api/v1/characters", s.handleCharacters)
	mux.HandleFunc("/api/v1/progression", s.handleProgression)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/legacy", s.handleLegacy)

	// Mutating endpoints.
	mux.HandleFunc("/api/v1/day", RateLimitMiddleware(dayLimiter, s.adminOnly(s.handleDay)))
	mux.HandleFunc("/api/v1/save", s.adminOnly(s.handleSave))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// adminOnly gates a mutating handler behind the bearer token.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Eng.Snapshot())
}

func (s *Server) handleResources(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, map[string]any{
		"stocks":        s.Eng.Ledger.Snapshot(),
		"capacity":      s.Eng.Ledger.Capacity(),
		"storage_units": s.Eng.Ledger.StorageUnits,
		"buildings":     s.Eng.Buildings,
		"workers":       s.Eng.Workers,
		"idle_workers":  s.Eng.IdleWorkers,
	})
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, map[string]any{
		"day":    s.Eng.Day,
		"prices": s.Eng.Prices(),
	})
}

func (s *Server) handleEcosystem(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	eco := s.Eng.Eco
	writeJSON(w, map[string]any{
		"biomes":              eco.Health,
		"overall_health":      eco.OverallHealth(),
		"status":              eco.Status(),
		"pollution":           eco.Pollution,
		"biodiversity":        eco.Biodiversity,
		"production_modifier": eco.ProductionModifier(),
	})
}

func (s *Server) handleCharacters(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, map[string]any{"characters": s.Eng.Characters()})
}

// nodeView is the wire form of one progression entry.
type nodeView struct {
	ID          string                       `json:"id"`
	Name        string                       `json:"name"`
	Description string                       `json:"description"`
	Cost        map[economy.Resource]float64 `json:"cost,omitempty"`
	Research    float64                      `json:"research"`
	State       string                       `json:"state"`
}

func (s *Server) handleProgression(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.Eng
	techs := make([]nodeView, 0, 4)
	for _, t := range e.Tree.Technologies() {
		st, err := e.Tree.TechState(t.ID, e.Ledger, e.ResearchProgress)
		if err != nil {
			continue
		}
		techs = append(techs, nodeView{
			ID: t.ID, Name: t.Name, Description: t.Description,
			Cost: t.Cost, Research: t.Research, State: st.String(),
		})
	}
	secrets := make([]nodeView, 0, 3)
	for _, sec := range e.Tree.Secrets() {
		st, err := e.Tree.SecretState(sec.ID, e.Ledger, e.ResearchProgress)
		if err != nil {
			continue
		}
		secrets = append(secrets, nodeView{
			ID: sec.ID, Name: sec.Name, Description: sec.Description,
			Cost: sec.Cost, Research: sec.Research, State: st.String(),
		})
	}
	writeJSON(w, map[string]any{
		"research_progress": e.ResearchProgress,
		"research_complete": e.ResearchComplete,
		"technologies":      techs,
		"secrets":           secrets,
		"achievements":      e.UnlockedAchievements(),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, map[string]any{
		"day":    s.Eng.Day,
		"events": s.Eng.RecentEvents(limit),
	})
}

func (s *Server) handleLegacy(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.Eng.FinalLegacy())
}

// handleDay runs one full settlement day: morning phase, then close.
// Player actions are a console concern; over HTTP the world just turns.
func (s *Server) handleDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev, rolled := s.Eng.OpenDay()
	rep := s.Eng.CloseDay()

	resp := map[string]any{"report": rep}
	if rolled {
		resp["event"] = ev.Name
	}
	if rep.AutosaveDue && s.DB != nil {
		if err := s.saveLocked(); err != nil {
			slog.Error("autosave failed", "day", rep.Day, "error", err)
			resp["save_error"] = err.Error()
		} else {
			resp["saved"] = true
		}
	}
	writeJSON(w, resp)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "save store not configured", http.StatusServiceUnavailable)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveLocked(); err != nil {
		slog.Error("save failed", "error", err)
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"day":     s.Eng.Day,
		"message": "world saved",
	})
}

// saveLocked persists the current state and event log. Caller holds mu.
func (s *Server) saveLocked() error {
	if err := s.DB.SaveSnapshot(s.Eng.Serialize()); err != nil {
		return err
	}
	return s.DB.SaveEvents(s.Eng.Events)
}

// corsMiddleware allows browser dashboards on localhost by default;
// extra origins come from the CORS_ORIGINS env var, comma-separated.
func corsMiddleware(next http.Handler) http.Handler {
	allowed := map[string]bool{
		"http://localhost:3000": true,
		"http://localhost:5173": true,
		"http://127.0.0.1:3000": true,
		"http://127.0.0.1:5173": true,
	}
	if extra := os.Getenv("CORS_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			allowed[strings.TrimSpace(o)] = true
		}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); allowed[origin] {
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

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}
