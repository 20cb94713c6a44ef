// Package handlers provides HTTP request handlers for the scandeck API.
// This file implements the scan profile endpoints.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/anstrom/scandeck/internal/logging"
	"github.com/anstrom/scandeck/internal/profiles"
)

// ProfileHandler handles profile-related API endpoints.
type ProfileHandler struct {
	store          *profiles.Store
	logger         *logging.Logger
	maxRequestSize int64
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(store *profiles.Store, maxRequestSize int64) *ProfileHandler {
	return &ProfileHandler{
		store:          store,
		logger:         logging.Default().WithComponent("api-profiles"),
		maxRequestSize: maxRequestSize,
	}
}

// ProfileResponse describes one profile together with the command it
// produces without a target.
type ProfileResponse struct {
	profiles.Profile
	Preview string `json:"preview"`
}

func toProfileResponse(p profiles.Profile) ProfileResponse {
	return ProfileResponse{Profile: p, Preview: p.Build("")}
}

// ListProfiles godoc
// @Summary List scan profiles
// @Description Returns every profile sorted by name
// @Tags Profiles
// @Produce json
// @Success 200 {array} ProfileResponse
// @Router /profiles [get]
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	list := h.store.List()
	out := make([]ProfileResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toProfileResponse(p))
	}
	writeJSON(w, r, http.StatusOK, out)
}

// GetProfile godoc
// @Summary Get a scan profile
// @Tags Profiles
// @Produce json
// @Param name path string true "Profile name"
// @Success 200 {object} ProfileResponse
// @Failure 404 {object} ErrorResponse
// @Router /profiles/{name} [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(mux.Vars(r)["name"])
	if err != nil {
		handleError(w, r, h.logger, "get profile", err)
		return
	}
	writeJSON(w, r, http.StatusOK, toProfileResponse(p))
}

// PutProfile godoc
// @Summary Create or replace a scan profile
// @Description Stores the profile and writes the profile file when one is configured
// @Tags Profiles
// @Accept json
// @Produce json
// @Param profile body profiles.Profile true "Profile"
// @Success 200 {object} ProfileResponse
// @Failure 400 {object} ErrorResponse
// @Router /profiles [post]
func (h *ProfileHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var p profiles.Profile
	if err := parseJSON(w, r, h.maxRequestSize, &p); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := h.store.Add(p); err != nil {
		handleError(w, r, h.logger, "store profile", err)
		return
	}
	if err := h.persist(); err != nil {
		handleError(w, r, h.logger, "save profiles", err)
		return
	}

	stored, err := h.store.Get(strings.TrimSpace(p.Name))
	if err != nil {
		handleError(w, r, h.logger, "get profile", err)
		return
	}
	h.logger.Info("Profile stored", "name", stored.Name)
	writeJSON(w, r, http.StatusOK, toProfileResponse(stored))
}

// DeleteProfile godoc
// @Summary Delete a scan profile
// @Tags Profiles
// @Param name path string true "Profile name"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /profiles/{name} [delete]
func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := h.store.Remove(name); err != nil {
		handleError(w, r, h.logger, "delete profile", err)
		return
	}
	if err := h.persist(); err != nil {
		handleError(w, r, h.logger, "save profiles", err)
		return
	}
	h.logger.Info("Profile deleted", "name", name)
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProfileHandler) persist() error {
	if h.store.Path() == "" {
		return nil
	}
	return h.store.Save()
}
