package api

import (
	"encoding/json"
	"net/http"

	"github.com/echomap/echomap/internal/api/respond"
	"github.com/echomap/echomap/internal/api/validate"
	"github.com/echomap/echomap/internal/metrics"
)

// TranscribeHandler serves the enrichment endpoints: speech-to-text and
// image generation. Both degrade to fallbacks rather than failing.
type TranscribeHandler struct {
	deps Deps
}

// Transcribe POST /api/transcribe
func (h *TranscribeHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AudioURL string `json:"audioUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.NonEmpty("audioUrl", req.AudioURL); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	text, ok := h.deps.Transcriber.Transcribe(r.Context(), req.AudioURL)
	if !ok {
		metrics.TranscriptionFallbacks.Inc()
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"transcript": text})
}

// GenerateImage POST /api/generate-image
func (h *TranscribeHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Transcript string `json:"transcript"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.NonEmpty("transcript", req.Transcript); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	url, _ := h.deps.Images.Generate(r.Context(), req.Transcript)
	respond.WriteJSON(w, http.StatusOK, map[string]string{"imageUrl": url})
}
