package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// HTTPSubmitter posts vote submissions to the backend's /votes endpoint.
// The per-call deadline comes from the caller's context, so the embedded
// client carries no timeout of its own.
type HTTPSubmitter struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

func NewHTTPSubmitter(baseURL string, logger zerolog.Logger) *HTTPSubmitter {
	return &HTTPSubmitter{
		baseURL: baseURL,
		client:  &http.Client{},
		logger:  logger.With().Str("component", "vote-submitter").Logger(),
	}
}

func (s *HTTPSubmitter) Submit(ctx context.Context, sub VoteSubmission) (*VoteConfirmation, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fmt.Errorf("encode vote submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/votes", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build vote request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn().
			Str("subject", sub.SubjectID.String()).
			Str("status", resp.Status).
			Msg("vote backend rejected submission")
		return nil, fmt.Errorf("vote backend returned %s", resp.Status)
	}

	var conf VoteConfirmation
	if err := json.NewDecoder(resp.Body).Decode(&conf); err != nil {
		return nil, fmt.Errorf("decode vote confirmation: %w", err)
	}
	return &conf, nil
}
