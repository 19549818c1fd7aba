package transcribe

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Client calls an AssemblyAI-style transcription API: submit a job keyed by
// the audio URL, then poll until it completes or errors.
type Client struct {
	client       *resty.Client
	log          zerolog.Logger
	pollInterval time.Duration
	maxWait      time.Duration
}

// New creates a transcription client. baseURL and apiKey are server-side
// configuration; the key never reaches clients.
func New(baseURL, apiKey string, log zerolog.Logger) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Authorization", apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &Client{
		client:       c,
		log:          log,
		pollInterval: 2 * time.Second,
		maxWait:      2 * time.Minute,
	}
}

type jobRequest struct {
	AudioURL string `json:"audio_url"`
}

type jobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// Transcribe submits audioURL and polls for the result. Any failure returns
// the deterministic fallback transcript with ok=false.
func (c *Client) Transcribe(ctx context.Context, audioURL string) (string, bool) {
	text, err := c.run(ctx, audioURL)
	if err != nil {
		c.log.Warn().Err(err).Str("audio_url", audioURL).Msg("transcription degraded to fallback")
		return Fallback(audioURL), false
	}
	return text, true
}

func (c *Client) run(ctx context.Context, audioURL string) (string, error) {
	var job jobResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&jobRequest{AudioURL: audioURL}).
		SetResult(&job).
		Post("/v2/transcript")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("transcript submit status %d", resp.StatusCode())
	}
	if job.ID == "" {
		return "", fmt.Errorf("transcript submit returned no job id")
	}

	deadline := time.Now().Add(c.maxWait)
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.pollInterval):
		}
		if time.Now().After(deadline) {
			return "", fmt.Errorf("transcript %s timed out", job.ID)
		}

		var st jobResponse
		resp, err := c.client.R().
			SetContext(ctx).
			SetResult(&st).
			Get("/v2/transcript/" + job.ID)
		if err != nil {
			return "", err
		}
		if resp.IsError() {
			return "", fmt.Errorf("transcript poll status %d", resp.StatusCode())
		}
		switch st.Status {
		case "completed":
			if st.Text == "" {
				return "", fmt.Errorf("transcript %s completed empty", job.ID)
			}
			return st.Text, nil
		case "error":
			return "", fmt.Errorf("transcript %s failed: %s", job.ID, st.Error)
		}
	}
}
