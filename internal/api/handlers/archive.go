// Package handlers provides HTTP request handlers for the scandeck API.
// This file implements the read-only archive endpoints used to find saved
// scans before loading them into a tab.
package handlers

import (
	"net/http"
	"strings"

	"github.com/anstrom/scandeck/internal/archive"
	"github.com/anstrom/scandeck/internal/errors"
	"github.com/anstrom/scandeck/internal/logging"
)

// ArchiveHandler serves archive listings.
type ArchiveHandler struct {
	store  ArchiveStore
	logger *logging.Logger
}

// NewArchiveHandler creates an archive handler. store may be nil, in which
// case every request answers 409.
func NewArchiveHandler(store ArchiveStore) *ArchiveHandler {
	return &ArchiveHandler{
		store:  store,
		logger: logging.Default().WithComponent("api-archive"),
	}
}

// ArchiveListResponse is a page of archive entries.
type ArchiveListResponse struct {
	Query   string           `json:"query,omitempty"`
	Limit   int              `json:"limit"`
	Entries []*archive.Entry `json:"entries"`
}

func (h *ArchiveHandler) available(w http.ResponseWriter, r *http.Request) bool {
	if h.store != nil {
		return true
	}
	writeError(w, r, http.StatusConflict, errors.NewScanError(errors.CodeConflict, "archive is not configured"))
	return false
}

// ListArchive godoc
// @Summary List or search archived scans
// @Description Newest first. With ?q= matches title, target, command and hostnames
// @Tags Archive
// @Produce json
// @Param q query string false "Search term"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {object} ArchiveListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /archive [get]
func (h *ArchiveHandler) ListArchive(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}
	limit, err := getLimit(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var entries []*archive.Entry
	if query == "" {
		entries, err = h.store.List(r.Context(), limit)
	} else {
		entries, err = h.store.Search(r.Context(), query, limit)
	}
	if err != nil {
		handleError(w, r, h.logger, "list archive", err)
		return
	}
	if entries == nil {
		entries = []*archive.Entry{}
	}
	writeJSON(w, r, http.StatusOK, ArchiveListResponse{Query: query, Limit: limit, Entries: entries})
}

// GetArchived godoc
// @Summary Get an archived scan
// @Tags Archive
// @Produce json
// @Param id path string true "Archive entry ID"
// @Success 200 {object} archive.Entry
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /archive/{id} [get]
func (h *ArchiveHandler) GetArchived(w http.ResponseWriter, r *http.Request) {
	if !h.available(w, r) {
		return
	}
	id, err := extractUUIDFromPath(r, "id")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	entry, err := h.store.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, h.logger, "get archived scan", err)
		return
	}
	writeJSON(w, r, http.StatusOK, entry)
}
