package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/echomap/echomap/internal/api/respond"
	"github.com/echomap/echomap/internal/api/validate"
	"github.com/echomap/echomap/internal/auth"
	"github.com/echomap/echomap/internal/model"
)

// SouvenirHandler serves the souvenirs resource.
type SouvenirHandler struct {
	deps Deps
}

// Create POST /api/souvenirs
// Accepts the record composed by the creation workflow. Minting is handled
// inside the service and never fails the request; the insert is atomic.
func (h *SouvenirHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	var req model.CreateSouvenirRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.CreateSouvenir(req.Title, req.AudioURL, req.ImageURL, req.Transcript, req.Latitude, req.Longitude); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	out, err := h.deps.Souvenirs.Create(r.Context(), id.UserID, req)
	if err != nil {
		respond.WriteInternalError(w, "could not save souvenir")
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// List GET /api/souvenirs — public read for the map viewer.
func (h *SouvenirHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Souvenirs.List(r.Context())
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if out == nil {
		out = []*model.Souvenir{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"souvenirs": out, "count": len(out)})
}

// Get GET /api/souvenirs/{id}
func (h *SouvenirHandler) Get(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.Souvenirs.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respond.WriteNotFound(w, "souvenir not found")
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// Delete DELETE /api/souvenirs/{id} — owner-restricted, mirroring the
// row-level policy of the hosted store.
func (h *SouvenirHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	err := h.deps.Souvenirs.Delete(r.Context(), id.UserID, mux.Vars(r)["id"])
	if errors.Is(err, model.ErrNotFound) {
		respond.WriteNotFound(w, "souvenir not found")
		return
	}
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
