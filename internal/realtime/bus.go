// Package realtime carries authoritative vote-delta events from other
// actors and sessions into the engine. The Bus is the injected pub/sub
// capability; the websocket Feed is one producer for it.
package realtime

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// VoteUpdated is the authoritative vote-delta event broadcast whenever
// any session changes a subject's counters. OriginActorID is set when the
// backend knows which actor caused the change.
type VoteUpdated struct {
	SubjectID     uuid.UUID  `json:"subjectId"`
	RawUpvotes    float64    `json:"rawUpvotes"`
	RawDownvotes  float64    `json:"rawDownvotes"`
	OriginActorID *uuid.UUID `json:"originActorId,omitempty"`
}

// Bus fans VoteUpdated events out to subscribers. Slow subscribers drop
// events rather than stall the loop; the stream carries absolute counters
// so a dropped event is repaired by the next one.
type Bus struct {
	publish     chan VoteUpdated
	register    chan chan VoteUpdated
	unregister  chan chan VoteUpdated
	subscribers map[chan VoteUpdated]bool
	done        chan struct{}
	logger      zerolog.Logger
}

func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		publish:     make(chan VoteUpdated, 64),
		register:    make(chan chan VoteUpdated),
		unregister:  make(chan chan VoteUpdated),
		subscribers: make(map[chan VoteUpdated]bool),
		done:        make(chan struct{}),
		logger:      logger.With().Str("component", "realtime-bus").Logger(),
	}
}

// Run starts the bus's processing loop.
func (b *Bus) Run() {
	b.logger.Debug().Msg("bus started")
	for {
		select {
		case ch := <-b.register:
			b.subscribers[ch] = true

		case ch := <-b.unregister:
			if b.subscribers[ch] {
				delete(b.subscribers, ch)
				close(ch)
			}

		case ev := <-b.publish:
			for ch := range b.subscribers {
				select {
				case ch <- ev:
				default:
					b.logger.Warn().
						Str("subject", ev.SubjectID.String()).
						Msg("subscriber buffer full, event dropped")
				}
			}

		case <-b.done:
			for ch := range b.subscribers {
				delete(b.subscribers, ch)
				close(ch)
			}
			b.logger.Debug().Msg("bus stopped")
			return
		}
	}
}

// Close stops the loop and closes all subscriber channels.
func (b *Bus) Close() {
	close(b.done)
}

// Subscribe registers a buffered event channel. The channel is closed on
// Unsubscribe or Close.
func (b *Bus) Subscribe() chan VoteUpdated {
	ch := make(chan VoteUpdated, 64)
	select {
	case b.register <- ch:
	case <-b.done:
		close(ch)
	}
	return ch
}

func (b *Bus) Unsubscribe(ch chan VoteUpdated) {
	select {
	case b.unregister <- ch:
	case <-b.done:
	}
}

// Publish queues an event for fan-out. Gives up after a second so a
// stuck bus cannot block producers.
func (b *Bus) Publish(ev VoteUpdated) {
	select {
	case b.publish <- ev:
	case <-b.done:
	case <-time.After(time.Second):
		b.logger.Warn().Str("subject", ev.SubjectID.String()).Msg("publish timed out, event dropped")
	}
}
