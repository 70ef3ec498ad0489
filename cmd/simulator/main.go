// Simulator drives a swarm of concurrent voters against an in-process
// engine backed by the in-memory authoritative store, exercising
// optimistic apply, rate limiting, toggles and realtime reconciliation.
package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vote-engine/internal/engine"
	"vote-engine/internal/models"
	"vote-engine/internal/realtime"
	"vote-engine/internal/remote"
	"vote-engine/internal/utils"
	"vote-engine/internal/voting"
)

func main() {
	var (
		numSubjects = flag.Int("subjects", 5, "subjects to load")
		numActors   = flag.Int("actors", 50, "concurrent voters")
		rounds      = flag.Int("rounds", 20, "vote intents per voter")
		interval    = flag.Duration("interval", 100*time.Millisecond, "delay between a voter's intents")
	)
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	bus := realtime.NewBus(logger)
	go bus.Run()
	backend := remote.NewMemoryBackend(bus)

	system := actor.NewActorSystem()
	profiles := engine.NewInMemoryProfiles()
	eng := engine.NewEngine(system, engine.Options{
		Limiter:   voting.NewLimiter(voting.DefaultVoteInterval),
		Submitter: backend,
		Profiles:  profiles,
		Bus:       bus,
		Metrics:   utils.NewMetrics(),
		Logger:    zerolog.New(os.Stderr).Level(zerolog.WarnLevel),
	})

	communityID := uuid.New()
	subjects := make([]uuid.UUID, *numSubjects)
	for i := range subjects {
		subjects[i] = uuid.New()
		backend.Seed(subjects[i], 100, 0)
		eng.LoadSubject(models.Subject{
			ID:          subjects[i],
			CommunityID: communityID,
			RawUpvotes:  100,
			LoadedAt:    time.Now(),
		})
	}

	actors := make([]uuid.UUID, *numActors)
	for i := range actors {
		actors[i] = uuid.New()
		profiles.Upsert(models.ActorProfile{
			ID:         actors[i],
			Reputation: rand.Intn(60000),
			IsTrusted:  rand.Intn(10) == 0,
		})
	}

	var accepted, rateLimited, failed int64
	var wg sync.WaitGroup
	start := time.Now()

	for _, actorID := range actors {
		wg.Add(1)
		go func(actorID uuid.UUID) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(actorID.ID())))
			for i := 0; i < *rounds; i++ {
				subjectID := subjects[rng.Intn(len(subjects))]
				direction := models.VoteUp
				if rng.Intn(2) == 0 {
					direction = models.VoteDown
				}

				_, err := eng.SubmitVote(context.Background(), subjectID, actorID, direction)
				switch {
				case err == nil:
					atomic.AddInt64(&accepted, 1)
				case utils.IsErrorCode(err, utils.ErrRateLimited):
					atomic.AddInt64(&rateLimited, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
				time.Sleep(*interval)
			}
		}(actorID)
	}
	wg.Wait()

	logger.Info().
		Int64("accepted", accepted).
		Int64("rateLimited", rateLimited).
		Int64("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("simulation finished")

	// Engine state must converge to the backend's authoritative counters.
	for _, subjectID := range subjects {
		up, down := backend.Counters(subjectID)
		view, err := eng.SubjectView(subjectID, uuid.Nil)
		if err != nil {
			logger.Error().Err(err).Str("subject", subjectID.String()).Msg("view failed")
			continue
		}
		logger.Info().
			Str("subject", subjectID.String()).
			Float64("backendScore", up-down).
			Float64("displayScore", view.DisplayScore).
			Msg("final score")
	}
}
