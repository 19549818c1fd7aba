package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/echomap/echomap/internal/api/respond"
	"github.com/echomap/echomap/internal/api/validate"
	"github.com/echomap/echomap/internal/auth"
	"github.com/echomap/echomap/internal/model"
)

// sessionTTL is how long a sign-up session token stays valid.
const sessionTTL = 24 * time.Hour

// ProfileHandler serves accounts: sign-up, settings, availability check.
type ProfileHandler struct {
	deps Deps
}

// SignUp POST /api/profiles
func (h *ProfileHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.CreateProfile(req.Username, req.Email); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	p, err := h.deps.Profiles.Create(r.Context(), uuid.NewString(), req)
	if errors.Is(err, model.ErrConflict) {
		respond.WriteConflict(w, "username already taken")
		return
	}
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}

	token, err := h.deps.Tokens.IssueToken(p.ID, sessionTTL)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"profile": p,
		"token":   token,
	})
}

// Me GET /api/profiles/me
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	p, err := h.deps.Profiles.Get(r.Context(), id.UserID)
	if errors.Is(err, model.ErrNotFound) {
		respond.WriteNotFound(w, "profile not found")
		return
	}
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, p)
}

// UpdateUsername PATCH /api/profiles/me
func (h *ProfileHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())

	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.Username(req.Username); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	p, err := h.deps.Profiles.UpdateUsername(r.Context(), id.UserID, req.Username)
	if errors.Is(err, model.ErrConflict) {
		respond.WriteConflict(w, "username already taken")
		return
	}
	if errors.Is(err, model.ErrNotFound) {
		respond.WriteNotFound(w, "profile not found")
		return
	}
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, p)
}

// CheckUsername POST /api/username-check
func (h *ProfileHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	available, err := h.deps.Profiles.CheckAvailability(r.Context(), req.Username)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]bool{"available": available})
}
