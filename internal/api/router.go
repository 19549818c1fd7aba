package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/echomap/echomap/internal/auth"
	"github.com/echomap/echomap/internal/api/recovery"
	"github.com/echomap/echomap/internal/api/respond"
	"github.com/echomap/echomap/internal/blob"
	"github.com/echomap/echomap/internal/imagegen"
	"github.com/echomap/echomap/internal/services"
	"github.com/echomap/echomap/internal/transcribe"
)

// TokenIssuer signs session tokens for newly registered profiles.
type TokenIssuer interface {
	IssueToken(userID string, ttl time.Duration) (string, error)
}

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Authorizer  auth.Authorizer
	Tokens      TokenIssuer
	Souvenirs   *services.SouvenirService
	Profiles    *services.ProfileService
	Transcriber transcribe.Transcriber
	Images      imagegen.Generator
	Blobs       blob.Store
	AudioBucket string
	ImageBucket string
	Healthy     func() bool
}

// NewRouter wires all endpoints. CORS is open to any origin; panics are
// recovered to a generic 500.
func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()

	sh := &SouvenirHandler{deps: d}
	th := &TranscribeHandler{deps: d}
	ph := &ProfileHandler{deps: d}
	uh := &UploadHandler{deps: d}

	r.HandleFunc("/api/transcribe", d.requireAuth(th.Transcribe)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/generate-image", d.requireAuth(th.GenerateImage)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/upload", d.requireAuth(uh.Upload)).Methods(http.MethodPost, http.MethodOptions)

	r.HandleFunc("/api/souvenirs", d.requireAuth(sh.Create)).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/souvenirs", sh.List).Methods(http.MethodGet)
	r.HandleFunc("/api/souvenirs/{id}", sh.Get).Methods(http.MethodGet)
	r.HandleFunc("/api/souvenirs/{id}", d.requireAuth(sh.Delete)).Methods(http.MethodDelete, http.MethodOptions)

	r.HandleFunc("/api/profiles", ph.SignUp).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/profiles/me", d.requireAuth(ph.Me)).Methods(http.MethodGet)
	r.HandleFunc("/api/profiles/me", d.requireAuth(ph.UpdateUsername)).Methods(http.MethodPatch, http.MethodOptions)
	r.HandleFunc("/api/username-check", ph.CheckUsername).Methods(http.MethodPost, http.MethodOptions)

	r.HandleFunc("/v0/health", healthHandler(d.Healthy)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return recovery.Middleware(corsMiddleware(r))
}

// requireAuth resolves the bearer token and stores the identity in the
// request context. Missing or invalid tokens end in a 401.
func (d Deps) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.ExtractBearer(r)
		if err != nil {
			respond.WriteUnauthorized(w, "sign in required")
			return
		}
		id, err := d.Authorizer.Authorize(r.Context(), token)
		if err != nil {
			respond.WriteUnauthorized(w, "sign in required")
			return
		}
		next(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	}
}
