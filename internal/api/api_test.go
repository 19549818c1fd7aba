package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"regexp"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echomap/echomap/internal/auth"
	"github.com/echomap/echomap/internal/blob"
	"github.com/echomap/echomap/internal/imagegen"
	"github.com/echomap/echomap/internal/model"
	"github.com/echomap/echomap/internal/services"
	"github.com/echomap/echomap/internal/store/sqlite"
	"github.com/echomap/echomap/internal/transcribe"
)

type stubTranscriber struct {
	fail bool
}

func (s stubTranscriber) Transcribe(ctx context.Context, audioURL string) (string, bool) {
	if s.fail {
		return transcribe.Fallback(audioURL), false
	}
	return "we walked along the pier", true
}

type stubGenerator struct{}

func (stubGenerator) Generate(ctx context.Context, transcript string) (string, bool) {
	return imagegen.PlaceholderURL(transcript), false
}

type testEnv struct {
	server *httptest.Server
	blobs  *blob.MemoryStore
}

func newTestEnv(t *testing.T, transcriberFails bool) *testEnv {
	t.Helper()

	db, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	st := sqlite.NewWithDB(db)

	_, err = st.Profiles().Create(context.Background(), &model.Profile{ID: "u1", Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	_, err = st.Profiles().Create(context.Background(), &model.Profile{ID: "u2", Username: "bob", Email: "bob@example.com"})
	require.NoError(t, err)

	blobs := blob.NewMemoryStore()
	deps := Deps{
		Authorizer:  auth.NewMockAuthorizer(map[string]string{"tok-u1": "u1", "tok-u2": "u2"}),
		Tokens:      auth.NewJWTAuthorizer("test-secret"),
		Souvenirs:   services.NewSouvenirService(st, blobs, nil, "souvenir-images", zerolog.Nop()),
		Profiles:    services.NewProfileService(st),
		Transcriber: stubTranscriber{fail: transcriberFails},
		Images:      stubGenerator{},
		Blobs:       blobs,
		AudioBucket: "souvenir-audio",
		ImageBucket: "souvenir-images",
		Healthy:     func() bool { return true },
	}

	srv := httptest.NewServer(NewRouter(deps))
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, blobs: blobs}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func validSouvenirBody() map[string]any {
	return map[string]any{
		"title":      "Evening market",
		"audioUrl":   "https://blob/audio/1.webm",
		"imageUrl":   "https://blob/images/1.png",
		"transcript": "spices and lantern light",
		"latitude":   40.7128,
		"longitude":  -74.0060,
	}
}

func TestCreateSouvenir_RequiresAuth(t *testing.T) {
	env := newTestEnv(t, false)
	resp := env.do(t, http.MethodPost, "/api/souvenirs", "", validSouvenirBody())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestCreateSouvenir_PersistsVerbatimCoordinates(t *testing.T) {
	env := newTestEnv(t, false)
	resp := env.do(t, http.MethodPost, "/api/souvenirs", "tok-u1", validSouvenirBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decode[model.Souvenir](t, resp)
	assert.Equal(t, 40.7128, out.Latitude)
	assert.Equal(t, -74.0060, out.Longitude)
	assert.Equal(t, "u1", out.OwnerID)
	require.NotNil(t, out.TxID)
	assert.Regexp(t, regexp.MustCompile(`^ALGO_MOCK_\d+_\d+$`), *out.TxID)
}

func TestCreateSouvenir_ValidationErrors(t *testing.T) {
	env := newTestEnv(t, false)
	cases := []func(map[string]any){
		func(b map[string]any) { b["title"] = "" },
		func(b map[string]any) { b["audioUrl"] = "" },
		func(b map[string]any) { b["imageUrl"] = "" },
		func(b map[string]any) { b["transcript"] = "" },
		func(b map[string]any) { b["latitude"] = 90.5 },
		func(b map[string]any) { b["longitude"] = -180.5 },
	}
	for i, mutate := range cases {
		body := validSouvenirBody()
		mutate(body)
		resp := env.do(t, http.MethodPost, "/api/souvenirs", "tok-u1", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "case %d", i)
		_ = resp.Body.Close()
	}
}

func TestListSouvenirs_PublicRead(t *testing.T) {
	env := newTestEnv(t, false)
	resp := env.do(t, http.MethodPost, "/api/souvenirs", "tok-u1", validSouvenirBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/souvenirs", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[struct {
		Count     int              `json:"count"`
		Souvenirs []model.Souvenir `json:"souvenirs"`
	}](t, resp)
	assert.Equal(t, 1, out.Count)
}

func TestDeleteSouvenir_OwnerOnly(t *testing.T) {
	env := newTestEnv(t, false)
	resp := env.do(t, http.MethodPost, "/api/souvenirs", "tok-u1", validSouvenirBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[model.Souvenir](t, resp)

	resp = env.do(t, http.MethodDelete, "/api/souvenirs/"+created.ID, "tok-u2", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()

	resp = env.do(t, http.MethodDelete, "/api/souvenirs/"+created.ID, "tok-u1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestTranscribe_FallbackIsInvisible(t *testing.T) {
	env := newTestEnv(t, true)
	resp := env.do(t, http.MethodPost, "/api/transcribe", "tok-u1", map[string]string{"audioUrl": "https://blob/audio/9.webm"})
	require.Equal(t, http.StatusOK, resp.StatusCode, "degraded transcription must still be a 200")

	out := decode[map[string]string](t, resp)
	assert.True(t, transcribe.IsFallback(out["transcript"]))
}

func TestUsernameCheck(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.do(t, http.MethodPost, "/api/username-check", "", map[string]string{"username": "alice"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[map[string]bool](t, resp)["available"])

	resp = env.do(t, http.MethodPost, "/api/username-check", "", map[string]string{"username": "wanderer_7"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[map[string]bool](t, resp)["available"])
}

func TestSignUp_IssuesUsableToken(t *testing.T) {
	env := newTestEnv(t, false)

	resp := env.do(t, http.MethodPost, "/api/profiles", "", map[string]string{"username": "carol", "email": "carol@example.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[struct {
		Profile model.Profile `json:"profile"`
		Token   string        `json:"token"`
	}](t, resp)
	require.NotEmpty(t, out.Token)
	assert.Equal(t, "carol", out.Profile.Username)

	// duplicate username
	resp = env.do(t, http.MethodPost, "/api/profiles", "", map[string]string{"username": "carol", "email": "c2@example.com"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestUpload_ImageValidation(t *testing.T) {
	env := newTestEnv(t, false)

	post := func(kind, contentType string, size int) *http.Response {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("kind", kind))
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="file"; filename="f"`)
		hdr.Set("Content-Type", contentType)
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte{0xAB}, size))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/upload", &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer tok-u1")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := post("image", "text/plain", 128)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "non-image MIME must be rejected")
	_ = resp.Body.Close()

	resp = post("image", "image/png", 6<<20)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "oversized image must be rejected")
	_ = resp.Body.Close()

	resp = post("image", "image/png", 128)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decode[map[string]string](t, resp)
	assert.True(t, strings.HasPrefix(out["url"], "mem://souvenir-images/images/"))

	resp = post("audio", "audio/webm", 1024)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out = decode[map[string]string](t, resp)
	assert.True(t, strings.HasPrefix(out["url"], "mem://souvenir-audio/audio/"))
}

func TestCORS_Preflight(t *testing.T) {
	env := newTestEnv(t, false)

	req, err := http.NewRequest(http.MethodOptions, env.server.URL+"/api/souvenirs", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false)
	resp := env.do(t, http.MethodGet, "/v0/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[map[string]any](t, resp)
	assert.Equal(t, "healthy", out["status"])
}

func TestGetSouvenir_NotFound(t *testing.T) {
	env := newTestEnv(t, false)
	resp := env.do(t, http.MethodGet, fmt.Sprintf("/api/souvenirs/%s", "missing-id"), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_ = resp.Body.Close()
}
