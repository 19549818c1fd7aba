// Package imagegen wraps the image-generation API used to illustrate a
// souvenir from its transcript. Like transcription, it is best-effort.
package imagegen

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Generator produces an image URL for a transcript. ok is false when the
// returned URL is the deterministic placeholder.
type Generator interface {
	Generate(ctx context.Context, transcript string) (url string, ok bool)
}

// PlaceholderURL derives a stable placeholder image for a transcript, used
// when the generation call fails.
func PlaceholderURL(transcript string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(transcript))
	return fmt.Sprintf("https://picsum.photos/seed/%d/800/600", h.Sum32())
}

// Client calls an OpenAI-images-style generation endpoint.
type Client struct {
	client *resty.Client
	log    zerolog.Logger
}

// New creates an image-generation client. The API key is server-side only.
func New(baseURL, apiKey string, log zerolog.Logger) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(60 * time.Second)
	return &Client{client: c, log: log}
}

type genRequest struct {
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type genResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Generate requests one image illustrating the transcript. Any failure
// degrades to the deterministic placeholder with ok=false.
func (c *Client) Generate(ctx context.Context, transcript string) (string, bool) {
	prompt := "A warm, painterly illustration of this memory: " + transcript

	var out genResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&genRequest{Prompt: prompt, N: 1, Size: "1024x1024", ResponseFormat: "url"}).
		SetResult(&out).
		Post("/v1/images/generations")
	if err == nil && !resp.IsError() && len(out.Data) > 0 && out.Data[0].URL != "" {
		return out.Data[0].URL, true
	}

	if err != nil {
		c.log.Warn().Err(err).Msg("image generation degraded to placeholder")
	} else {
		c.log.Warn().Int("status", resp.StatusCode()).Msg("image generation degraded to placeholder")
	}
	return PlaceholderURL(transcript), false
}
