package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vote-engine/internal/models"
)

func TestHTTPSubmitterRoundTrip(t *testing.T) {
	subjectID := uuid.New()
	actorID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/votes", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var sub VoteSubmission
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sub))
		assert.Equal(t, subjectID, sub.SubjectID)
		assert.Equal(t, actorID, sub.ActorID)
		assert.Equal(t, models.VoteUp, sub.Direction)
		assert.Equal(t, 2.5, sub.Weight)

		json.NewEncoder(w).Encode(VoteConfirmation{
			Success:      true,
			RawUpvotes:   103.5,
			RawDownvotes: 2,
		})
	}))
	defer server.Close()

	submitter := NewHTTPSubmitter(server.URL, zerolog.Nop())
	conf, err := submitter.Submit(context.Background(), VoteSubmission{
		SubjectID:       subjectID,
		ActorID:         actorID,
		Direction:       models.VoteUp,
		Weight:          2.5,
		ClientTimestamp: time.Now(),
	})

	require.NoError(t, err)
	assert.True(t, conf.Success)
	assert.Equal(t, 103.5, conf.RawUpvotes)
	assert.Equal(t, 2.0, conf.RawDownvotes)
}

func TestHTTPSubmitterNon200IsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	submitter := NewHTTPSubmitter(server.URL, zerolog.Nop())
	_, err := submitter.Submit(context.Background(), VoteSubmission{SubjectID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPSubmitterHonorsContextDeadline(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	submitter := NewHTTPSubmitter(server.URL, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := submitter.Submit(ctx, VoteSubmission{SubjectID: uuid.New()})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
