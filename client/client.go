// Package client is the Go API client for the souvenir service. It wraps
// every endpoint the creation workflow, map viewer and availability checker
// need. Requests are never retried; callers decide what a failure means.
package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/echomap/echomap/internal/model"
)

// Client talks to one souvenir service instance.
type Client struct {
	http *resty.Client
}

// Option mutates the client during construction.
type Option func(*Client)

// WithToken sets the bearer token sent on authenticated endpoints.
func WithToken(token string) Option {
	return func(c *Client) { c.http.SetAuthToken(token) }
}

// WithTimeout overrides the default 30 s per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// New constructs a client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token, e.g. after sign-up.
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

// apiErr converts a non-2xx resty response into an *APIError.
func apiErr(resp *resty.Response) error {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		msg = body.Message
		if msg == "" {
			msg = body.Error
		}
	}
	return &APIError{StatusCode: resp.StatusCode(), Message: msg}
}

// SignUpResult is the sign-up response: the new profile plus a session token.
type SignUpResult struct {
	Profile *model.Profile `json:"profile"`
	Token   string         `json:"token"`
}

// SignUp registers a profile and installs the returned session token on the
// client so subsequent calls are authenticated.
func (c *Client) SignUp(ctx context.Context, username, email string) (*SignUpResult, error) {
	var out SignUpResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(model.CreateProfileRequest{Username: username, Email: email}).
		SetResult(&out).
		Post("/api/profiles")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiErr(resp)
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Me fetches the authenticated profile.
func (c *Client) Me(ctx context.Context) (*model.Profile, error) {
	var out model.Profile
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/profiles/me")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiErr(resp)
	}
	return &out, nil
}

// UpdateUsername changes the authenticated profile's username.
func (c *Client) UpdateUsername(ctx context.Context, username string) (*model.Profile, error) {
	var out model.Profile
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"username": username}).
		SetResult(&out).
		Patch("/api/profiles/me")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiErr(resp)
	}
	return &out, nil
}

// CheckUsername asks the service whether username is free to register.
func (c *Client) CheckUsername(ctx context.Context, username string) (bool, error) {
	var out struct {
		Available bool `json:"available"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"username": username}).
		SetResult(&out).
		Post("/api/username-check")
	if err != nil {
		return false, err
	}
	if resp.IsError() {
		return false, apiErr(resp)
	}
	return out.Available, nil
}

// Transcribe converts an uploaded audio URL into text. The service degrades
// to a fallback transcript internally, so a 200 always carries usable text.
func (c *Client) Transcribe(ctx context.Context, audioURL string) (string, error) {
	var out struct {
		Transcript string `json:"transcript"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"audioUrl": audioURL}).
		SetResult(&out).
		Post("/api/transcribe")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", apiErr(resp)
	}
	return out.Transcript, nil
}

// GenerateImage asks the service for an AI image keyed by the transcript.
func (c *Client) GenerateImage(ctx context.Context, transcript string) (string, error) {
	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"transcript": transcript}).
		SetResult(&out).
		Post("/api/generate-image")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", apiErr(resp)
	}
	return out.ImageURL, nil
}

// UploadAudio streams a finished recording to the service and returns its
// public URL.
func (c *Client) UploadAudio(ctx context.Context, r io.Reader) (string, error) {
	return c.upload(ctx, "audio", "recording.webm", "audio/webm", r)
}

// UploadImage streams a user-chosen image to the service and returns its
// public URL. MIME and size validation happen server-side too; callers
// should pre-validate for a better error message.
func (c *Client) UploadImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	return c.upload(ctx, "image", filename, contentType, r)
}

func (c *Client) upload(ctx context.Context, kind, filename, contentType string, r io.Reader) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartField("file", filename, contentType, r).
		SetMultipartFormData(map[string]string{"kind": kind}).
		SetResult(&out).
		Post("/api/upload")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", apiErr(resp)
	}
	return out.URL, nil
}

// CreateSouvenir persists a composed souvenir record.
func (c *Client) CreateSouvenir(ctx context.Context, req model.CreateSouvenirRequest) (*model.Souvenir, error) {
	var out model.Souvenir
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/api/souvenirs")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiErr(resp)
	}
	return &out, nil
}

// ListSouvenirs fetches every public souvenir for the map viewer.
func (c *Client) ListSouvenirs(ctx context.Context) ([]*model.Souvenir, error) {
	var out struct {
		Souvenirs []*model.Souvenir `json:"souvenirs"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/souvenirs")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiErr(resp)
	}
	return out.Souvenirs, nil
}

// GetSouvenir fetches one souvenir by id.
func (c *Client) GetSouvenir(ctx context.Context, id string) (*model.Souvenir, error) {
	var out model.Souvenir
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/souvenirs/" + id)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiErr(resp)
	}
	return &out, nil
}

// DeleteSouvenir removes an owned souvenir.
func (c *Client) DeleteSouvenir(ctx context.Context, id string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/api/souvenirs/" + id)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiErr(resp)
	}
	return nil
}

// Health reports whether the service answers its health endpoint.
func (c *Client) Health(ctx context.Context) bool {
	resp, err := c.http.R().SetContext(ctx).Get("/v0/health")
	return err == nil && resp.StatusCode() == http.StatusOK
}
