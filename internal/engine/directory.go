package engine

import (
	"sync"

	"github.com/google/uuid"

	"vote-engine/internal/models"
)

// InMemoryProfiles is a ProfileDirectory backed by a map; it stands in
// for the identity/reputation service. Unknown actors resolve to a zero
// reputation, untrusted profile.
type InMemoryProfiles struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]models.ActorProfile
}

func NewInMemoryProfiles() *InMemoryProfiles {
	return &InMemoryProfiles{profiles: make(map[uuid.UUID]models.ActorProfile)}
}

func (d *InMemoryProfiles) Upsert(profile models.ActorProfile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.profiles[profile.ID] = profile
}

func (d *InMemoryProfiles) Profile(actorID uuid.UUID) models.ActorProfile {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if profile, ok := d.profiles[actorID]; ok {
		return profile
	}
	return models.ActorProfile{ID: actorID}
}

// InMemoryRules is a RulesProvider backed by a map; it stands in for the
// community configuration service. Communities without explicit rules get
// the documented defaults.
type InMemoryRules struct {
	mu    sync.RWMutex
	rules map[uuid.UUID]models.CommunityVoteRules
}

func NewInMemoryRules() *InMemoryRules {
	return &InMemoryRules{rules: make(map[uuid.UUID]models.CommunityVoteRules)}
}

func (r *InMemoryRules) SetRules(communityID uuid.UUID, rules models.CommunityVoteRules) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[communityID] = rules
}

func (r *InMemoryRules) RulesFor(communityID uuid.UUID) models.CommunityVoteRules {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rules[communityID]
}
