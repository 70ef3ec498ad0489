package actors

import (
	"context"
	"errors"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vote-engine/internal/models"
	"vote-engine/internal/remote"
	"vote-engine/internal/utils"
	"vote-engine/internal/voting"
)

// Message types for Subject operations
type (
	// VoteMsg is a vote intent for this subject. Profile and Rules are
	// resolved by the engine before dispatch; they are read-only inputs
	// for the duration of the operation.
	VoteMsg struct {
		ActorID   uuid.UUID
		Direction models.VoteDirection
		Profile   models.ActorProfile
		Rules     models.CommunityVoteRules
	}

	// RemoteDeltaMsg is an authoritative counter update pushed by the
	// realtime stream.
	RemoteDeltaMsg struct {
		RawUpvotes    float64
		RawDownvotes  float64
		OriginActorID *uuid.UUID
	}

	// GetViewMsg requests the display tuple for a given reader.
	GetViewMsg struct {
		ActorID uuid.UUID
	}

	// UnloadMsg asks the actor to stop once in-flight submissions drain.
	UnloadMsg struct{}

	// SubjectView is the read model handed to presentation code.
	SubjectView struct {
		SubjectID        uuid.UUID            `json:"subjectId"`
		DisplayScore     float64              `json:"displayScore"`
		Direction        models.VoteDirection `json:"direction"`
		ControversyScore float64              `json:"controversyScore"`
	}

	// voteOutcomeMsg is posted back to the mailbox when a remote
	// submission resolves.
	voteOutcomeMsg struct {
		actorID      uuid.UUID
		confirmation *remote.VoteConfirmation
		err          error
	}
)

// snapshot captures the state that must be restored on rollback.
type snapshot struct {
	rawUpvotes   float64
	rawDownvotes float64
	state        models.ActorVoteState
}

type inflightVote struct {
	snap    snapshot
	replyTo *actor.PID
	started time.Time
}

type pendingVote struct {
	msg     *VoteMsg
	replyTo *actor.PID
}

type deferredDelta struct {
	origin uuid.UUID
	ev     RemoteDeltaMsg
}

type fuzzCache struct {
	canonical float64
	value     float64
	valid     bool
}

// SubjectConfig carries the collaborators a SubjectActor needs.
type SubjectConfig struct {
	Limiter       *voting.Limiter
	Submitter     remote.Submitter
	SubmitTimeout time.Duration
	FuzzEnabled   bool
	Rand          voting.RandomSource
	Metrics       *utils.Metrics
	Logger        zerolog.Logger
	Clock         func() time.Time
}

// SubjectActor owns one Subject and its per-actor vote states. Its
// mailbox is the per-subject exclusive section: optimistic mutations,
// rollbacks and realtime reconciliation all run here, so counter
// read-modify-write never interleaves. The only suspension point, the
// remote submission, runs on a goroutine that posts a voteOutcomeMsg
// back, leaving the mailbox free for readers in the meantime.
type SubjectActor struct {
	subject  models.Subject
	votes    map[uuid.UUID]*models.ActorVoteState
	inflight map[uuid.UUID]*inflightVote
	pending  map[uuid.UUID][]pendingVote
	deferred []deferredDelta
	display  fuzzCache
	draining bool

	limiter       *voting.Limiter
	submitter     remote.Submitter
	submitTimeout time.Duration
	fuzzEnabled   bool
	rng           voting.RandomSource
	metrics       *utils.Metrics
	logger        zerolog.Logger
	clock         func() time.Time
}

// NewSubjectActor creates the actor for one loaded subject.
func NewSubjectActor(subject models.Subject, cfg SubjectConfig) actor.Actor {
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = 5 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Rand == nil {
		cfg.Rand = voting.NewRandomSource()
	}
	return &SubjectActor{
		subject:       subject,
		votes:         make(map[uuid.UUID]*models.ActorVoteState),
		inflight:      make(map[uuid.UUID]*inflightVote),
		pending:       make(map[uuid.UUID][]pendingVote),
		limiter:       cfg.Limiter,
		submitter:     cfg.Submitter,
		submitTimeout: cfg.SubmitTimeout,
		fuzzEnabled:   cfg.FuzzEnabled,
		rng:           cfg.Rand,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger.With().Str("component", "subject-actor").Str("subject", subject.ID.String()).Logger(),
		clock:         cfg.Clock,
	}
}

// Receive handles incoming messages
func (a *SubjectActor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		a.logger.Debug().Msg("subject actor started")
	case *actor.Stopped:
		a.logger.Debug().Msg("subject actor stopped")
	case *VoteMsg:
		a.handleVote(ctx, msg, ctx.Sender())
	case *voteOutcomeMsg:
		a.handleOutcome(ctx, msg)
	case *RemoteDeltaMsg:
		a.handleRemoteDelta(msg)
	case *GetViewMsg:
		ctx.Respond(a.view(msg.ActorID))
	case *UnloadMsg:
		// In-flight submissions must run to completion so the
		// authoritative state gets reconciled or rolled back.
		a.draining = true
		if len(a.inflight) == 0 {
			ctx.Stop(ctx.Self())
		}
	}
}

func (a *SubjectActor) handleVote(ctx actor.Context, msg *VoteMsg, replyTo *actor.PID) {
	if !msg.Direction.IsVote() {
		a.observeVote(utils.VoteInvalid, 0)
		a.reply(ctx, replyTo, utils.NewValidationError("direction must be up or down"))
		return
	}

	// A same-actor intent while that actor's submission is outstanding
	// waits its turn, keeping per-actor submission order.
	if _, busy := a.inflight[msg.ActorID]; busy {
		a.pending[msg.ActorID] = append(a.pending[msg.ActorID], pendingVote{msg: msg, replyTo: replyTo})
		return
	}

	now := a.clockNow()
	if !a.limiter.Allow(a.subject.ID, msg.ActorID, now) {
		a.observeVote(utils.VoteRateLimited, 0)
		a.reply(ctx, replyTo, utils.NewRateLimitedError())
		return
	}

	weight := voting.ComputeWeight(msg.Profile, msg.Rules)
	state := a.voteState(msg.ActorID)
	tr := voting.Apply(*state, msg.Direction, weight, now)

	snap := snapshot{
		rawUpvotes:   a.subject.RawUpvotes,
		rawDownvotes: a.subject.RawDownvotes,
		state:        *state,
	}

	// Optimistic mutation, visible to readers immediately.
	a.subject.RawUpvotes += tr.UpDelta
	a.subject.RawDownvotes += tr.DownDelta
	*state = tr.State
	a.display.valid = false

	a.limiter.Record(a.subject.ID, msg.ActorID, now)
	a.inflight[msg.ActorID] = &inflightVote{snap: snap, replyTo: replyTo, started: time.Now()}

	a.logger.Debug().
		Str("actor", msg.ActorID.String()).
		Str("direction", string(tr.State.Direction)).
		Float64("weight", weight).
		Float64("delta", tr.Delta).
		Msg("optimistic vote applied")

	submission := remote.VoteSubmission{
		SubjectID:       a.subject.ID,
		ActorID:         msg.ActorID,
		Direction:       tr.State.Direction,
		Weight:          weight,
		ClientTimestamp: now,
	}

	self := ctx.Self()
	root := ctx.ActorSystem().Root
	submitter := a.submitter
	timeout := a.submitTimeout
	go func() {
		callCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		conf, err := submitter.Submit(callCtx, submission)
		root.Send(self, &voteOutcomeMsg{actorID: submission.ActorID, confirmation: conf, err: err})
	}()
}

func (a *SubjectActor) handleOutcome(ctx actor.Context, msg *voteOutcomeMsg) {
	fl, ok := a.inflight[msg.actorID]
	if !ok {
		return
	}
	delete(a.inflight, msg.actorID)
	elapsed := time.Since(fl.started)

	confirmed := msg.err == nil && msg.confirmation != nil && msg.confirmation.Success
	switch {
	case msg.err != nil:
		a.restore(fl.snap, msg.actorID)
		if errors.Is(msg.err, context.DeadlineExceeded) {
			a.observeVote(utils.VoteTimeout, elapsed)
			a.logger.Warn().Str("actor", msg.actorID.String()).Msg("submission timed out, rolled back")
			a.reply(ctx, fl.replyTo, utils.NewTimeoutError())
		} else {
			a.observeVote(utils.VoteNetworkFailure, elapsed)
			a.logger.Warn().Err(msg.err).Str("actor", msg.actorID.String()).Msg("submission failed, rolled back")
			a.reply(ctx, fl.replyTo, utils.NewNetworkFailureError(msg.err))
		}

	case !msg.confirmation.Success:
		a.restore(fl.snap, msg.actorID)
		a.observeVote(utils.VoteRejected, elapsed)
		a.logger.Warn().Str("actor", msg.actorID.String()).Str("reason", msg.confirmation.Error).Msg("backend rejected vote, rolled back")
		a.reply(ctx, fl.replyTo, utils.NewNetworkFailureError(errors.New(msg.confirmation.Error)))

	default:
		// Backend counters win; they may already include concurrent
		// votes from other actors.
		a.subject.RawUpvotes = msg.confirmation.RawUpvotes
		a.subject.RawDownvotes = msg.confirmation.RawDownvotes
		a.display.valid = false
		a.observeVote(utils.VoteAccepted, elapsed)
		out := a.subject
		a.reply(ctx, fl.replyTo, &out)
	}

	a.flushDeferred(msg.actorID, confirmed)
	a.drainPending(ctx, msg.actorID)

	if a.draining && len(a.inflight) == 0 {
		ctx.Stop(ctx.Self())
	}
}

func (a *SubjectActor) handleRemoteDelta(msg *RemoteDeltaMsg) {
	if msg.RawUpvotes < 0 || msg.RawDownvotes < 0 {
		a.observeReconcile(utils.ReconcileDropped)
		return
	}

	// An event echoing an actor whose submission is still outstanding
	// would race the confirmation; hold it until that call resolves.
	if msg.OriginActorID != nil {
		if _, busy := a.inflight[*msg.OriginActorID]; busy {
			a.deferred = append(a.deferred, deferredDelta{origin: *msg.OriginActorID, ev: *msg})
			a.observeReconcile(utils.ReconcileDeferred)
			return
		}
	}

	a.applyDelta(msg)
	a.observeReconcile(utils.ReconcileApplied)
}

func (a *SubjectActor) applyDelta(msg *RemoteDeltaMsg) {
	a.subject.RawUpvotes = msg.RawUpvotes
	a.subject.RawDownvotes = msg.RawDownvotes
	a.display.valid = false
}

// flushDeferred releases events held for an actor whose submission just
// resolved. A successful confirmation carries the same or newer counters
// than its own broadcast, so those copies are dropped; after a rollback
// the broadcast is the only authoritative signal left and the last one
// wins.
func (a *SubjectActor) flushDeferred(actorID uuid.UUID, confirmed bool) {
	kept := a.deferred[:0]
	var last *RemoteDeltaMsg
	for i := range a.deferred {
		if a.deferred[i].origin == actorID {
			ev := a.deferred[i].ev
			last = &ev
			continue
		}
		kept = append(kept, a.deferred[i])
	}
	a.deferred = kept

	if last == nil {
		return
	}
	if confirmed {
		a.observeReconcile(utils.ReconcileDropped)
		return
	}
	a.applyDelta(last)
	a.observeReconcile(utils.ReconcileApplied)
}

func (a *SubjectActor) drainPending(ctx actor.Context, actorID uuid.UUID) {
	for len(a.pending[actorID]) > 0 {
		if _, busy := a.inflight[actorID]; busy {
			return
		}
		next := a.pending[actorID][0]
		rest := a.pending[actorID][1:]
		if len(rest) == 0 {
			delete(a.pending, actorID)
		} else {
			a.pending[actorID] = rest
		}
		a.handleVote(ctx, next.msg, next.replyTo)
	}
}

func (a *SubjectActor) restore(snap snapshot, actorID uuid.UUID) {
	a.subject.RawUpvotes = snap.rawUpvotes
	a.subject.RawDownvotes = snap.rawDownvotes
	*a.voteState(actorID) = snap.state
	a.display.valid = false
}

// voteState lazily creates the per-actor record; direction None is a
// valid state, not an absent one.
func (a *SubjectActor) voteState(actorID uuid.UUID) *models.ActorVoteState {
	state, ok := a.votes[actorID]
	if !ok {
		state = &models.ActorVoteState{Direction: models.VoteNone}
		a.votes[actorID] = state
	}
	return state
}

// view computes the display tuple. The fuzzed value is memoized per
// canonical score so one score renders one stable display value until the
// counters actually change.
func (a *SubjectActor) view(actorID uuid.UUID) *SubjectView {
	canonical := a.subject.CanonicalScore()
	if !a.display.valid || a.display.canonical != canonical {
		a.display = fuzzCache{
			canonical: canonical,
			value:     voting.Fuzz(canonical, a.fuzzEnabled, a.rng),
			valid:     true,
		}
	}

	direction := models.VoteNone
	if state, ok := a.votes[actorID]; ok {
		direction = state.Direction
	}
	return &SubjectView{
		SubjectID:        a.subject.ID,
		DisplayScore:     a.display.value,
		Direction:        direction,
		ControversyScore: a.subject.ControversyScore,
	}
}

func (a *SubjectActor) reply(ctx actor.Context, replyTo *actor.PID, msg interface{}) {
	if replyTo != nil {
		ctx.Send(replyTo, msg)
	}
}

func (a *SubjectActor) clockNow() time.Time {
	if a.clock != nil {
		return a.clock()
	}
	return time.Now()
}

func (a *SubjectActor) observeVote(result string, duration time.Duration) {
	if a.metrics != nil {
		a.metrics.ObserveVote(result, duration)
	}
}

func (a *SubjectActor) observeReconcile(outcome string) {
	if a.metrics != nil {
		a.metrics.ObserveReconcile(outcome)
	}
}
