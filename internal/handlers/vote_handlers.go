package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"vote-engine/internal/models"
)

type VoteRequest struct {
	SubjectID string `json:"subjectId"`
	ActorID   string `json:"actorId"`
	Direction string `json:"direction"`
}

type UpsertActorRequest struct {
	ID         string `json:"id"`
	Reputation int    `json:"reputation"`
	IsTrusted  bool   `json:"isTrusted"`
}

type CommunityRulesRequest struct {
	CommunityID string `json:"communityId"`
	WeightTiers []struct {
		ReputationThreshold int     `json:"reputationThreshold"`
		WeightMultiplier    float64 `json:"weightMultiplier"`
	} `json:"weightTiers"`
	HighKarmaBonus struct {
		Enabled    bool    `json:"enabled"`
		Threshold  int     `json:"threshold"`
		Multiplier float64 `json:"multiplier"`
	} `json:"highKarmaBonus"`
	TrustedUserMultiplier float64 `json:"trustedUserMultiplier"`
	MaxVoteWeight         float64 `json:"maxVoteWeight"`
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	subjectID, err := uuid.Parse(req.SubjectID)
	if err != nil {
		http.Error(w, "Invalid subjectId format", http.StatusBadRequest)
		return
	}
	actorID, err := uuid.Parse(req.ActorID)
	if err != nil {
		http.Error(w, "Invalid actorId format", http.StatusBadRequest)
		return
	}
	direction, ok := models.ParseVoteDirection(req.Direction)
	if !ok {
		http.Error(w, "Invalid direction", http.StatusBadRequest)
		return
	}

	subject, voteErr := s.engine.SubmitVote(r.Context(), subjectID, actorID, direction)
	if voteErr != nil {
		s.writeError(w, voteErr)
		return
	}

	view, viewErr := s.engine.SubjectView(subjectID, actorID)
	if viewErr != nil {
		s.writeError(w, viewErr)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"subjectId":        subject.ID,
		"canonicalScore":   subject.CanonicalScore(),
		"displayScore":     view.DisplayScore,
		"direction":        view.Direction,
		"controversyScore": view.ControversyScore,
	})
}

func (s *Server) handleUpsertActor(w http.ResponseWriter, r *http.Request) {
	var req UpsertActorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	actorID, err := uuid.Parse(req.ID)
	if err != nil {
		http.Error(w, "Invalid id format", http.StatusBadRequest)
		return
	}

	s.profiles.Upsert(models.ActorProfile{
		ID:         actorID,
		Reputation: req.Reputation,
		IsTrusted:  req.IsTrusted,
	})
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleCommunityRules(w http.ResponseWriter, r *http.Request) {
	var req CommunityRulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request format", http.StatusBadRequest)
		return
	}
	communityID, err := uuid.Parse(req.CommunityID)
	if err != nil {
		http.Error(w, "Invalid communityId format", http.StatusBadRequest)
		return
	}

	rules := models.CommunityVoteRules{
		TrustedUserMultiplier: req.TrustedUserMultiplier,
		MaxVoteWeight:         req.MaxVoteWeight,
		HighKarmaBonus: models.HighKarmaBonus{
			Enabled:    req.HighKarmaBonus.Enabled,
			Threshold:  req.HighKarmaBonus.Threshold,
			Multiplier: req.HighKarmaBonus.Multiplier,
		},
	}
	for _, tier := range req.WeightTiers {
		rules.WeightTiers = append(rules.WeightTiers, models.WeightTier{
			Reputation: tier.ReputationThreshold,
			Weight:     tier.WeightMultiplier,
		})
	}

	s.rules.SetRules(communityID, rules)
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
