package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vote-engine/internal/models"
)

type LoadSubjectRequest struct {
	ID               string  `json:"id"`
	CommunityID      string  `json:"communityId"`
	RawUpvotes       float64 `json:"rawUpvotes"`
	RawDownvotes     float64 `json:"rawDownvotes"`
	ControversyScore float64 `json:"controversyScore"`
}

func (s *Server) handleLoadSubject(w http.ResponseWriter, r *http.Request) {
	var req LoadSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	subjectID, err := uuid.Parse(req.ID)
	if err != nil {
		http.Error(w, "Invalid id format", http.StatusBadRequest)
		return
	}
	communityID, err := uuid.Parse(req.CommunityID)
	if err != nil {
		http.Error(w, "Invalid communityId format", http.StatusBadRequest)
		return
	}
	if req.RawUpvotes < 0 || req.RawDownvotes < 0 {
		http.Error(w, "Counters must be non-negative", http.StatusBadRequest)
		return
	}

	s.engine.LoadSubject(models.Subject{
		ID:               subjectID,
		CommunityID:      communityID,
		RawUpvotes:       req.RawUpvotes,
		RawDownvotes:     req.RawDownvotes,
		ControversyScore: req.ControversyScore,
		LoadedAt:         time.Now(),
	})
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleUnloadSubject(w http.ResponseWriter, r *http.Request) {
	subjectID, err := uuid.Parse(chi.URLParam(r, "subjectID"))
	if err != nil {
		http.Error(w, "Invalid subjectID format", http.StatusBadRequest)
		return
	}
	s.engine.UnloadSubject(subjectID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubjectScore(w http.ResponseWriter, r *http.Request) {
	subjectID, err := uuid.Parse(chi.URLParam(r, "subjectID"))
	if err != nil {
		http.Error(w, "Invalid subjectID format", http.StatusBadRequest)
		return
	}

	// actorId is optional; without it the view carries direction "none".
	actorID := uuid.Nil
	if raw := r.URL.Query().Get("actorId"); raw != "" {
		actorID, err = uuid.Parse(raw)
		if err != nil {
			http.Error(w, "Invalid actorId format", http.StatusBadRequest)
			return
		}
	}

	view, viewErr := s.engine.SubjectView(subjectID, actorID)
	if viewErr != nil {
		s.writeError(w, viewErr)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}
