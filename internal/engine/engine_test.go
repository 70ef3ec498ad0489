package engine

import (
	"context"
	"testing"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vote-engine/internal/models"
	"vote-engine/internal/realtime"
	"vote-engine/internal/remote"
	"vote-engine/internal/utils"
	"vote-engine/internal/voting"
)

// newTestEngine wires an engine against an in-memory backend, mirroring
// the production assembly minus the HTTP surfaces.
func newTestEngine(t *testing.T, bus *realtime.Bus, limiterInterval time.Duration) (*Engine, *remote.MemoryBackend) {
	t.Helper()
	backend := remote.NewMemoryBackend(bus)
	system := actor.NewActorSystem()
	eng := NewEngine(system, Options{
		Limiter:   voting.NewLimiter(limiterInterval),
		Submitter: backend,
		Bus:       bus,
		Logger:    zerolog.Nop(),
	})
	return eng, backend
}

func TestSubmitVoteConfirmedEndToEnd(t *testing.T) {
	eng, backend := newTestEngine(t, nil, time.Second)

	subjectID := uuid.New()
	backend.Seed(subjectID, 100, 0)
	eng.LoadSubject(models.Subject{ID: subjectID, RawUpvotes: 100})

	actorID := uuid.New()
	subject, err := eng.SubmitVote(context.Background(), subjectID, actorID, models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 101.0, subject.CanonicalScore())

	up, down := backend.Counters(subjectID)
	assert.Equal(t, 101.0, up)
	assert.Equal(t, 0.0, down)

	view, err := eng.SubjectView(subjectID, actorID)
	require.NoError(t, err)
	assert.Equal(t, 101.0, view.DisplayScore)
	assert.Equal(t, models.VoteUp, view.Direction)
}

func TestSubmitVoteUnknownSubject(t *testing.T) {
	eng, _ := newTestEngine(t, nil, time.Second)

	_, err := eng.SubmitVote(context.Background(), uuid.New(), uuid.New(), models.VoteUp)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}

func TestSubmitVoteInvalidDirection(t *testing.T) {
	eng, backend := newTestEngine(t, nil, time.Second)

	subjectID := uuid.New()
	backend.Seed(subjectID, 10, 0)
	eng.LoadSubject(models.Subject{ID: subjectID, RawUpvotes: 10})

	_, err := eng.SubmitVote(context.Background(), subjectID, uuid.New(), models.VoteNone)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrInvalidInput))
}

func TestSubmitVoteRateLimited(t *testing.T) {
	eng, backend := newTestEngine(t, nil, time.Second)

	subjectID := uuid.New()
	backend.Seed(subjectID, 100, 0)
	eng.LoadSubject(models.Subject{ID: subjectID, RawUpvotes: 100})

	actorID := uuid.New()
	_, err := eng.SubmitVote(context.Background(), subjectID, actorID, models.VoteUp)
	require.NoError(t, err)

	_, err = eng.SubmitVote(context.Background(), subjectID, actorID, models.VoteDown)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrRateLimited))

	// The display still reflects the confirmed first vote only.
	view, err := eng.SubjectView(subjectID, actorID)
	require.NoError(t, err)
	assert.Equal(t, 101.0, view.DisplayScore)
	assert.Equal(t, models.VoteUp, view.Direction)
}

func TestSubmitVoteReversalAfterInterval(t *testing.T) {
	eng, backend := newTestEngine(t, nil, 10*time.Millisecond)

	subjectID := uuid.New()
	backend.Seed(subjectID, 100, 0)
	eng.LoadSubject(models.Subject{ID: subjectID, RawUpvotes: 100})

	actorID := uuid.New()
	_, err := eng.SubmitVote(context.Background(), subjectID, actorID, models.VoteUp)
	require.NoError(t, err)

	time.Sleep(15 * time.Millisecond)
	subject, err := eng.SubmitVote(context.Background(), subjectID, actorID, models.VoteDown)
	require.NoError(t, err)
	assert.Equal(t, 99.0, subject.CanonicalScore()) // 100 up, 1 down

	view, err := eng.SubjectView(subjectID, actorID)
	require.NoError(t, err)
	assert.Equal(t, models.VoteDown, view.Direction)
}

func TestLoadSubjectIdempotent(t *testing.T) {
	eng, backend := newTestEngine(t, nil, time.Second)

	subjectID := uuid.New()
	backend.Seed(subjectID, 100, 0)
	eng.LoadSubject(models.Subject{ID: subjectID, RawUpvotes: 100})
	assert.Equal(t, 1, eng.SubjectCount())

	// Reloading must not reset the actor's counters.
	_, err := eng.SubmitVote(context.Background(), subjectID, uuid.New(), models.VoteUp)
	require.NoError(t, err)
	eng.LoadSubject(models.Subject{ID: subjectID, RawUpvotes: 100})
	assert.Equal(t, 1, eng.SubjectCount())

	view, err := eng.SubjectView(subjectID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, 101.0, view.DisplayScore)
}

func TestUnloadSubjectRemovesIt(t *testing.T) {
	eng, backend := newTestEngine(t, nil, time.Second)

	subjectID := uuid.New()
	backend.Seed(subjectID, 100, 0)
	eng.LoadSubject(models.Subject{ID: subjectID, RawUpvotes: 100})

	eng.UnloadSubject(subjectID)
	assert.Equal(t, 0, eng.SubjectCount())

	_, err := eng.SubjectView(subjectID, uuid.Nil)
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrNotFound))
}

func TestRemoteDeltaReconcilesLoadedSubject(t *testing.T) {
	eng, backend := newTestEngine(t, nil, time.Second)

	subjectID := uuid.New()
	backend.Seed(subjectID, 100, 0)
	eng.LoadSubject(models.Subject{ID: subjectID, RawUpvotes: 100})

	eng.OnRemoteDelta(realtime.VoteUpdated{SubjectID: subjectID, RawUpvotes: 150, RawDownvotes: 10})

	require.Eventually(t, func() bool {
		view, err := eng.SubjectView(subjectID, uuid.Nil)
		return err == nil && view.DisplayScore == 140.0
	}, time.Second, 5*time.Millisecond)
}

func TestRemoteDeltaForUnloadedSubjectDropped(t *testing.T) {
	eng, _ := newTestEngine(t, nil, time.Second)

	// Must not panic or spawn anything.
	eng.OnRemoteDelta(realtime.VoteUpdated{SubjectID: uuid.New(), RawUpvotes: 5})
	assert.Equal(t, 0, eng.SubjectCount())
}

func TestBusEventsReachLoadedSubjects(t *testing.T) {
	bus := realtime.NewBus(zerolog.Nop())
	go bus.Run()
	defer bus.Close()

	eng, backend := newTestEngine(t, bus, time.Second)

	subjectID := uuid.New()
	backend.Seed(subjectID, 100, 0)
	eng.LoadSubject(models.Subject{ID: subjectID, RawUpvotes: 100})

	// Another session's vote broadcasts on the bus; this engine must
	// converge without a local vote.
	bus.Publish(realtime.VoteUpdated{SubjectID: subjectID, RawUpvotes: 120, RawDownvotes: 0})

	require.Eventually(t, func() bool {
		view, err := eng.SubjectView(subjectID, uuid.Nil)
		return err == nil && view.DisplayScore == 120.0
	}, time.Second, 5*time.Millisecond)
}

func TestWeightedVoteUsesProfileAndRules(t *testing.T) {
	backend := remote.NewMemoryBackend(nil)
	system := actor.NewActorSystem()

	profiles := NewInMemoryProfiles()
	rules := NewInMemoryRules()
	eng := NewEngine(system, Options{
		Limiter:   voting.NewLimiter(time.Second),
		Submitter: backend,
		Profiles:  profiles,
		Rules:     rules,
		Logger:    zerolog.Nop(),
	})

	communityID := uuid.New()
	subjectID := uuid.New()
	backend.Seed(subjectID, 100, 0)
	eng.LoadSubject(models.Subject{ID: subjectID, CommunityID: communityID, RawUpvotes: 100})

	actorID := uuid.New()
	profiles.Upsert(models.ActorProfile{ID: actorID, Reputation: 5000})

	subject, err := eng.SubmitVote(context.Background(), subjectID, actorID, models.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, 102.0, subject.CanonicalScore()) // weight 2.0 at 5000 rep

	up, _ := backend.Counters(subjectID)
	assert.Equal(t, 102.0, up)
}
