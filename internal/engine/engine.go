// Package engine exposes the vote engine's public entry points: subject
// lifecycle, vote submission, realtime reconciliation and the display
// read accessor. Everything that mutates a subject is routed through that
// subject's actor so per-subject operations never interleave.
package engine

import (
	"context"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	cmap "github.com/orcaman/concurrent-map"
	"github.com/rs/zerolog"

	"vote-engine/internal/engine/actors"
	"vote-engine/internal/models"
	"vote-engine/internal/realtime"
	"vote-engine/internal/remote"
	"vote-engine/internal/utils"
	"vote-engine/internal/voting"
)

// ProfileDirectory resolves actor profiles; backed by the identity
// service in production and an in-memory registry here.
type ProfileDirectory interface {
	Profile(actorID uuid.UUID) models.ActorProfile
}

// RulesProvider resolves per-community vote weighting rules.
type RulesProvider interface {
	RulesFor(communityID uuid.UUID) models.CommunityVoteRules
}

// Options wires the engine's collaborators.
type Options struct {
	Limiter   *voting.Limiter
	Submitter remote.Submitter
	Profiles  ProfileDirectory
	Rules     RulesProvider
	Bus       *realtime.Bus
	Metrics   *utils.Metrics
	Logger    zerolog.Logger

	SubmitTimeout time.Duration
	FuzzEnabled   bool
	Rand          voting.RandomSource

	// Bound on request futures to subject actors. Must exceed
	// SubmitTimeout or successful submissions would read as actor
	// timeouts.
	RequestTimeout time.Duration
}

type subjectRef struct {
	pid         *actor.PID
	communityID uuid.UUID
}

// Engine coordinates the per-subject actors.
type Engine struct {
	system   *actor.ActorSystem
	subjects cmap.ConcurrentMap // subject ID string -> *subjectRef
	opts     Options
	logger   zerolog.Logger
}

func NewEngine(system *actor.ActorSystem, opts Options) *Engine {
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = 5 * time.Second
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = opts.SubmitTimeout + 2*time.Second
	}
	if opts.Limiter == nil {
		opts.Limiter = voting.NewLimiter(voting.DefaultVoteInterval)
	}
	if opts.Profiles == nil {
		opts.Profiles = NewInMemoryProfiles()
	}
	if opts.Rules == nil {
		opts.Rules = NewInMemoryRules()
	}

	e := &Engine{
		system:   system,
		subjects: cmap.New(),
		opts:     opts,
		logger:   opts.Logger.With().Str("component", "vote-engine").Logger(),
	}
	if opts.Bus != nil {
		// Subscribe before returning so events published right after
		// construction are not lost.
		ch := opts.Bus.Subscribe()
		go e.consume(ch)
	}
	return e
}

// consume pumps realtime events into the reconciler until the bus closes.
func (e *Engine) consume(ch chan realtime.VoteUpdated) {
	for ev := range ch {
		e.OnRemoteDelta(ev)
	}
}

// LoadSubject registers a subject snapshot and spawns its actor. Loading
// an already-loaded subject is a no-op; the actor keeps its state.
func (e *Engine) LoadSubject(subject models.Subject) {
	key := subject.ID.String()
	if _, ok := e.subjects.Get(key); ok {
		return
	}

	props := actor.PropsFromProducer(func() actor.Actor {
		return actors.NewSubjectActor(subject, actors.SubjectConfig{
			Limiter:       e.opts.Limiter,
			Submitter:     e.opts.Submitter,
			SubmitTimeout: e.opts.SubmitTimeout,
			FuzzEnabled:   e.opts.FuzzEnabled,
			Rand:          e.opts.Rand,
			Metrics:       e.opts.Metrics,
			Logger:        e.opts.Logger,
		})
	})
	pid := e.system.Root.Spawn(props)
	ref := &subjectRef{pid: pid, communityID: subject.CommunityID}
	if !e.subjects.SetIfAbsent(key, ref) {
		// Lost a load race; the first actor wins.
		e.system.Root.Stop(pid)
		return
	}
	e.setLoadedGauge()
	e.logger.Debug().Str("subject", key).Msg("subject loaded")
}

// UnloadSubject discards a subject that is no longer displayed. The
// actor finishes any in-flight submission before stopping.
func (e *Engine) UnloadSubject(subjectID uuid.UUID) {
	if v, ok := e.subjects.Pop(subjectID.String()); ok {
		e.system.Root.Send(v.(*subjectRef).pid, &actors.UnloadMsg{})
		e.setLoadedGauge()
		e.logger.Debug().Str("subject", subjectID.String()).Msg("subject unloaded")
	}
}

// SubmitVote raises a vote intent and blocks until the optimistic
// mutation is confirmed or rolled back. On success the returned Subject
// carries the authoritative counters.
func (e *Engine) SubmitVote(ctx context.Context, subjectID, actorID uuid.UUID, direction models.VoteDirection) (*models.Subject, error) {
	if !direction.IsVote() {
		return nil, utils.NewValidationError("direction must be up or down")
	}
	ref, appErr := e.ref(subjectID)
	if appErr != nil {
		return nil, appErr
	}

	msg := &actors.VoteMsg{
		ActorID:   actorID,
		Direction: direction,
		Profile:   e.opts.Profiles.Profile(actorID),
		Rules:     e.opts.Rules.RulesFor(ref.communityID),
	}

	timeout := e.opts.RequestTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	future := e.system.Root.RequestFuture(ref.pid, msg, timeout)
	result, err := future.Result()
	if err != nil {
		return nil, utils.NewActorTimeoutError("subject " + subjectID.String())
	}
	switch v := result.(type) {
	case *utils.AppError:
		return nil, v
	case *models.Subject:
		return v, nil
	}
	return nil, utils.NewAppError(utils.ErrActorTimeout, "unexpected vote response", nil)
}

// OnRemoteDelta feeds an authoritative counter update to the subject's
// reconciler. Events for subjects that are not loaded are dropped.
func (e *Engine) OnRemoteDelta(ev realtime.VoteUpdated) {
	v, ok := e.subjects.Get(ev.SubjectID.String())
	if !ok {
		return
	}
	e.system.Root.Send(v.(*subjectRef).pid, &actors.RemoteDeltaMsg{
		RawUpvotes:    ev.RawUpvotes,
		RawDownvotes:  ev.RawDownvotes,
		OriginActorID: ev.OriginActorID,
	})
}

// SubjectView returns the (displayScore, direction, controversyScore)
// tuple for a subject as seen by the given actor.
func (e *Engine) SubjectView(subjectID, actorID uuid.UUID) (*actors.SubjectView, error) {
	ref, appErr := e.ref(subjectID)
	if appErr != nil {
		return nil, appErr
	}
	future := e.system.Root.RequestFuture(ref.pid, &actors.GetViewMsg{ActorID: actorID}, e.opts.RequestTimeout)
	result, err := future.Result()
	if err != nil {
		return nil, utils.NewActorTimeoutError("subject " + subjectID.String())
	}
	view, ok := result.(*actors.SubjectView)
	if !ok {
		return nil, utils.NewAppError(utils.ErrActorTimeout, "unexpected view response", nil)
	}
	return view, nil
}

// SubjectCount reports how many subjects are loaded.
func (e *Engine) SubjectCount() int {
	return e.subjects.Count()
}

func (e *Engine) ref(subjectID uuid.UUID) (*subjectRef, *utils.AppError) {
	v, ok := e.subjects.Get(subjectID.String())
	if !ok {
		return nil, utils.NewSubjectNotFoundError(subjectID.String())
	}
	return v.(*subjectRef), nil
}

func (e *Engine) setLoadedGauge() {
	if e.opts.Metrics != nil {
		e.opts.Metrics.SetSubjectsLoaded(e.subjects.Count())
	}
}
