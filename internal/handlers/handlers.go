// Package handlers is the HTTP facade over the vote engine. It is a thin
// adapter: all business logic lives behind the engine's entry points.
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"vote-engine/internal/engine"
	"vote-engine/internal/utils"
)

// Server holds the handler dependencies.
type Server struct {
	engine         *engine.Engine
	profiles       *engine.InMemoryProfiles
	rules          *engine.InMemoryRules
	metrics        *utils.Metrics
	logger         zerolog.Logger
	allowedOrigins []string
	metricsEnabled bool
}

func NewServer(
	eng *engine.Engine,
	profiles *engine.InMemoryProfiles,
	rules *engine.InMemoryRules,
	metrics *utils.Metrics,
	logger zerolog.Logger,
	allowedOrigins []string,
	metricsEnabled bool,
) *Server {
	return &Server{
		engine:         eng,
		profiles:       profiles,
		rules:          rules,
		metrics:        metrics,
		logger:         logger.With().Str("component", "http").Logger(),
		allowedOrigins: allowedOrigins,
		metricsEnabled: metricsEnabled,
	}
}

// Router builds the engine's HTTP surface.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.cors)

	r.Get("/health", s.handleHealth)
	if s.metricsEnabled && s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Post("/vote", s.handleVote)
	r.Post("/subject", s.handleLoadSubject)
	r.Delete("/subject/{subjectID}", s.handleUnloadSubject)
	r.Get("/subject/{subjectID}/score", s.handleSubjectScore)

	r.Post("/actor", s.handleUpsertActor)
	r.Post("/community", s.handleCommunityRules)

	return r
}

// cors mirrors the access policy the engine shipped with: configured
// origins only, wildcard allowed.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
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

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if appErr, ok := err.(*utils.AppError); ok {
		s.writeJSON(w, utils.AppErrorToHTTPStatus(appErr.Code), map[string]string{
			"code":  appErr.Code,
			"error": appErr.Message,
		})
		return
	}
	s.writeJSON(w, http.StatusInternalServerError, map[string]string{
		"code":  "INTERNAL",
		"error": err.Error(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"subjectsLoaded": s.engine.SubjectCount(),
	})
}
