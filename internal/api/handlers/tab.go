// Package handlers provides HTTP request handlers for the scandeck API.
// This file implements the tab endpoints: opening tabs, starting scans,
// loading results and querying the views of a tab.
package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/anstrom/scandeck/internal/archive"
	"github.com/anstrom/scandeck/internal/errors"
	"github.com/anstrom/scandeck/internal/fingerprint"
	"github.com/anstrom/scandeck/internal/logging"
	"github.com/anstrom/scandeck/internal/results"
	"github.com/anstrom/scandeck/internal/tab"
	"github.com/anstrom/scandeck/internal/views"
)

// ArchiveStore is the part of the archive repository the API uses.
//
//go:generate mockgen -destination=mocks/mock_archive_store.go -package=mocks . ArchiveStore
type ArchiveStore interface {
	Save(ctx context.Context, entry *archive.Entry) error
	Get(ctx context.Context, id uuid.UUID) (*archive.Entry, error)
	List(ctx context.Context, limit int) ([]*archive.Entry, error)
	Search(ctx context.Context, term string, limit int) ([]*archive.Entry, error)
}

// TabHandler serves the tab endpoints. Every call reaches the notebook
// through the tab loop.
type TabHandler struct {
	loop           *tab.Loop
	archive        ArchiveStore
	resultsDir     string
	logger         *logging.Logger
	maxRequestSize int64
}

// NewTabHandler creates a tab handler. store may be nil when no archive is
// configured. Files are only loaded from and saved to resultsDir.
func NewTabHandler(loop *tab.Loop, store ArchiveStore, resultsDir string, maxRequestSize int64) *TabHandler {
	return &TabHandler{
		loop:           loop,
		archive:        store,
		resultsDir:     resultsDir,
		logger:         logging.Default().WithComponent("api-tabs"),
		maxRequestSize: maxRequestSize,
	}
}

// TabResponse describes one tab.
type TabResponse struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	State     tab.State  `json:"state"`
	Enabled   bool       `json:"enabled"`
	Unsaved   bool       `json:"unsaved"`
	Target    string     `json:"target,omitempty"`
	Profile   string     `json:"profile,omitempty"`
	Command   string     `json:"command,omitempty"`
	SavedPath string     `json:"saved_path,omitempty"`
	ArchiveID *uuid.UUID `json:"archive_id,omitempty"`
	HostCount int        `json:"host_count"`
	Unknown   int        `json:"unknown_fingerprints"`
}

// CreateTabRequest is the body of POST /tabs.
type CreateTabRequest struct {
	Title string `json:"title"`
}

// ScanRequest is the body of POST /tabs/{id}/scan.
type ScanRequest struct {
	Target      string `json:"target"`
	Profile     string `json:"profile"`
	Command     string `json:"command"`
	KillRunning bool   `json:"kill_running"`
}

// LoadRequest is the body of POST /tabs/{id}/load. Exactly one field is set.
// Path is relative to the results directory.
type LoadRequest struct {
	Path      string `json:"path"`
	ArchiveID string `json:"archive_id"`
}

// SaveRequest is the body of POST /tabs/{id}/save. Either Path, relative to
// the results directory, is set or Archive is true.
type SaveRequest struct {
	Path    string `json:"path"`
	Archive bool   `json:"archive"`
}

// SelectHostsRequest is the body of POST /tabs/{id}/views/hosts.
type SelectHostsRequest struct {
	Hosts []string `json:"hosts"`
}

// SelectServicesRequest is the body of POST /tabs/{id}/views/services.
type SelectServicesRequest struct {
	Services []string `json:"services"`
}

// CommentRequest is the body of PUT /tabs/{id}/hosts/{host}/comment.
type CommentRequest struct {
	Comment string `json:"comment"`
}

// CommentResponse echoes a stored comment.
type CommentResponse struct {
	Host    string `json:"host"`
	Comment string `json:"comment"`
}

// HostListResponse lists the hosts of a tab.
type HostListResponse struct {
	Hosts []views.HostListRow `json:"hosts"`
}

// ServiceListResponse lists the services of a tab.
type ServiceListResponse struct {
	Services []string `json:"services"`
}

// OutputResponse carries the scanner output of a tab.
type OutputResponse struct {
	State  tab.State `json:"state"`
	Output string    `json:"output"`
}

// RunDetailsResponse is the session summary of a tab.
type RunDetailsResponse struct {
	Session results.Session `json:"session"`
}

func toTabResponse(c *tab.Controller) TabResponse {
	req := c.Request()
	resp := TabResponse{
		ID:        c.ID(),
		Title:     c.Title(),
		State:     c.State(),
		Enabled:   c.Enabled(),
		Unsaved:   c.State().Unsaved(),
		Target:    req.Target,
		Profile:   req.Profile,
		Command:   c.Command(),
		SavedPath: c.SavedPath(),
		HostCount: len(c.HostList()),
		Unknown:   c.Fingerprints().Len(),
	}
	if id := c.ArchiveID(); id != uuid.Nil {
		resp.ArchiveID = &id
	}
	return resp
}

// fail writes err, treating a stopped loop as an unavailable service.
func (h *TabHandler) fail(w http.ResponseWriter, r *http.Request, operation string, err error) {
	if stderrors.Is(err, tab.ErrLoopStopped) {
		writeError(w, r, http.StatusServiceUnavailable, err)
		return
	}
	handleError(w, r, h.logger, operation, err)
}

// withTab runs fn on the loop goroutine with the tab named by the {id} path
// variable.
func (h *TabHandler) withTab(r *http.Request, fn func(nb *tab.Notebook, c *tab.Controller) error) error {
	id, err := extractUUIDFromPath(r, "id")
	if err != nil {
		return err
	}
	return h.loop.Do(r.Context(), func(nb *tab.Notebook) error {
		c, err := nb.Get(id)
		if err != nil {
			return err
		}
		return fn(nb, c)
	})
}

// ListTabs godoc
// @Summary List tabs
// @Description Returns every open tab in opening order
// @Tags Tabs
// @Produce json
// @Success 200 {array} TabResponse
// @Router /tabs [get]
func (h *TabHandler) ListTabs(w http.ResponseWriter, r *http.Request) {
	var out []TabResponse
	err := h.loop.Do(r.Context(), func(nb *tab.Notebook) error {
		tabs := nb.Tabs()
		out = make([]TabResponse, 0, len(tabs))
		for _, c := range tabs {
			out = append(out, toTabResponse(c))
		}
		return nil
	})
	if err != nil {
		h.fail(w, r, "list tabs", err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

// CreateTab godoc
// @Summary Open a tab
// @Description Opens an empty tab. Without a title the tab is named untitled_scanN
// @Tags Tabs
// @Accept json
// @Produce json
// @Param tab body CreateTabRequest false "Tab title"
// @Success 201 {object} TabResponse
// @Failure 400 {object} ErrorResponse
// @Router /tabs [post]
func (h *TabHandler) CreateTab(w http.ResponseWriter, r *http.Request) {
	var req CreateTabRequest
	if r.ContentLength != 0 {
		if err := parseJSON(w, r, h.maxRequestSize, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
	}

	var resp TabResponse
	err := h.loop.Do(r.Context(), func(nb *tab.Notebook) error {
		resp = toTabResponse(nb.Open(req.Title))
		return nil
	})
	if err != nil {
		h.fail(w, r, "open tab", err)
		return
	}
	h.logger.Info("Tab opened", "tab_id", resp.ID, "title", resp.Title)
	writeJSON(w, r, http.StatusCreated, resp)
}

// GetTab godoc
// @Summary Get a tab
// @Tags Tabs
// @Produce json
// @Param id path string true "Tab ID"
// @Success 200 {object} TabResponse
// @Failure 404 {object} ErrorResponse
// @Router /tabs/{id} [get]
func (h *TabHandler) GetTab(w http.ResponseWriter, r *http.Request) {
	var resp TabResponse
	err := h.withTab(r, func(_ *tab.Notebook, c *tab.Controller) error {
		resp = toTabResponse(c)
		return nil
	})
	if err != nil {
		h.fail(w, r, "get tab", err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// CloseTab godoc
// @Summary Close a tab
// @Description Kills the tab's scan, if any, and closes it
// @Tags Tabs
// @Param id path string true "Tab ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /tabs/{id} [delete]
func (h *TabHandler) CloseTab(w http.ResponseWriter, r *http.Request) {
	err := h.withTab(r, func(nb *tab.Notebook, c *tab.Controller) error {
		return nb.Close(c.ID())
	})
	if err != nil {
		h.fail(w, r, "close tab", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartScan godoc
// @Summary Start a scan
// @Description Starts a scan in the tab. A scan that is still running is only replaced when kill_running is true
// @Tags Tabs
// @Accept json
// @Produce json
// @Param id path string true "Tab ID"
// @Param scan body ScanRequest true "Scan request"
// @Success 202 {object} TabResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tabs/{id}/scan [post]
func (h *TabHandler) StartScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := parseJSON(w, r, h.maxRequestSize, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	var resp TabResponse
	err := h.withTab(r, func(nb *tab.Notebook, c *tab.Controller) error {
		scanReq := tab.Request{Target: req.Target, Profile: req.Profile, Command: req.Command}
		if err := nb.StartScan(c.ID(), scanReq, tab.Confirm(req.KillRunning)); err != nil {
			return err
		}
		resp = toTabResponse(c)
		return nil
	})
	if err != nil {
		h.fail(w, r, "start scan", err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, resp)
}

// LoadResult godoc
// @Summary Load a result into a tab
// @Description Loads a saved XML file or an archived scan
// @Tags Tabs
// @Accept json
// @Produce json
// @Param id path string true "Tab ID"
// @Param load body LoadRequest true "What to load"
// @Success 200 {object} TabResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tabs/{id}/load [post]
func (h *TabHandler) LoadResult(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if err := parseJSON(w, r, h.maxRequestSize, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	req.Path = strings.TrimSpace(req.Path)
	req.ArchiveID = strings.TrimSpace(req.ArchiveID)
	if (req.Path == "") == (req.ArchiveID == "") {
		writeError(w, r, http.StatusBadRequest,
			errors.NewScanError(errors.CodeValidation, "exactly one of path or archive_id is required"))
		return
	}

	var entry *archive.Entry
	if req.ArchiveID != "" {
		var err error
		if entry, err = h.fetchArchived(r, req.ArchiveID); err != nil {
			h.fail(w, r, "load archived scan", err)
			return
		}
	} else {
		path, err := resolveResultPath(h.resultsDir, req.Path)
		if err != nil {
			h.fail(w, r, "load result", err)
			return
		}
		req.Path = path
	}

	var resp TabResponse
	err := h.withTab(r, func(nb *tab.Notebook, c *tab.Controller) error {
		var err error
		if entry != nil {
			err = nb.LoadArchived(c.ID(), entry)
		} else {
			err = nb.LoadFile(c.ID(), req.Path)
		}
		if err != nil {
			return err
		}
		resp = toTabResponse(c)
		return nil
	})
	if err != nil {
		h.fail(w, r, "load result", err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (h *TabHandler) fetchArchived(r *http.Request, raw string) (*archive.Entry, error) {
	if h.archive == nil {
		return nil, errors.NewScanError(errors.CodeConflict, "archive is not configured")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errors.NewScanError(errors.CodeValidation, "invalid archive_id: "+raw)
	}
	return h.archive.Get(r.Context(), id)
}

// ListHosts godoc
// @Summary List hosts
// @Tags Views
// @Produce json
// @Param id path string true "Tab ID"
// @Success 200 {object} HostListResponse
// @Failure 404 {object} ErrorResponse
// @Router /tabs/{id}/hosts [get]
func (h *TabHandler) ListHosts(w http.ResponseWriter, r *http.Request) {
	var resp HostListResponse
	err := h.withTab(r, func(_ *tab.Notebook, c *tab.Controller) error {
		resp.Hosts = c.HostList()
		return nil
	})
	if err != nil {
		h.fail(w, r, "list hosts", err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// ListServices godoc
// @Summary List services
// @Tags Views
// @Produce json
// @Param id path string true "Tab ID"
// @Success 200 {object} ServiceListResponse
// @Failure 404 {object} ErrorResponse
// @Router /tabs/{id}/services [get]
func (h *TabHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	var resp ServiceListResponse
	err := h.withTab(r, func(_ *tab.Notebook, c *tab.Controller) error {
		resp.Services = c.ServiceList()
		return nil
	})
	if err != nil {
		h.fail(w, r, "list services", err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// SelectHosts godoc
// @Summary Port view for selected hosts
// @Tags Views
// @Accept json
// @Produce json
// @Param id path string true "Tab ID"
// @Param selection body SelectHostsRequest true "Selected host keys"
// @Success 200 {object} views.HostView
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tabs/{id}/views/hosts [post]
func (h *TabHandler) SelectHosts(w http.ResponseWriter, r *http.Request) {
	var req SelectHostsRequest
	if err := parseJSON(w, r, h.maxRequestSize, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	var view views.HostView
	err := h.withTab(r, func(_ *tab.Notebook, c *tab.Controller) error {
		view = c.SelectHosts(req.Hosts)
		return nil
	})
	if err != nil {
		h.fail(w, r, "select hosts", err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// SelectServices godoc
// @Summary Host view for selected services
// @Tags Views
// @Accept json
// @Produce json
// @Param id path string true "Tab ID"
// @Param selection body SelectServicesRequest true "Selected service names"
// @Success 200 {object} views.ServiceView
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tabs/{id}/views/services [post]
func (h *TabHandler) SelectServices(w http.ResponseWriter, r *http.Request) {
	var req SelectServicesRequest
	if err := parseJSON(w, r, h.maxRequestSize, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	var view views.ServiceView
	err := h.withTab(r, func(_ *tab.Notebook, c *tab.Controller) error {
		view = c.SelectServices(req.Services)
		return nil
	})
	if err != nil {
		h.fail(w, r, "select services", err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// SetComment godoc
// @Summary Set a host comment
// @Description Stores a free-text comment on a host and marks the result changed
// @Tags Views
// @Accept json
// @Produce json
// @Param id path string true "Tab ID"
// @Param host path string true "Host key"
// @Param comment body CommentRequest true "Comment"
// @Success 200 {object} CommentResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tabs/{id}/hosts/{host}/comment [put]
func (h *TabHandler) SetComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := parseJSON(w, r, h.maxRequestSize, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	host := mux.Vars(r)["host"]

	err := h.withTab(r, func(_ *tab.Notebook, c *tab.Controller) error {
		return c.SetComment(host, req.Comment)
	})
	if err != nil {
		h.fail(w, r, "set comment", err)
		return
	}
	writeJSON(w, r, http.StatusOK, CommentResponse{Host: host, Comment: req.Comment})
}

// SaveResult godoc
// @Summary Save a tab's result
// @Description Writes the result to an XML file or stores it in the archive
// @Tags Tabs
// @Accept json
// @Produce json
// @Param id path string true "Tab ID"
// @Param save body SaveRequest true "Where to save"
// @Success 200 {object} TabResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tabs/{id}/save [post]
func (h *TabHandler) SaveResult(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := parseJSON(w, r, h.maxRequestSize, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	req.Path = strings.TrimSpace(req.Path)
	if (req.Path == "") == !req.Archive {
		writeError(w, r, http.StatusBadRequest,
			errors.NewScanError(errors.CodeValidation, "either path or archive is required"))
		return
	}
	if req.Archive && h.archive == nil {
		writeError(w, r, http.StatusConflict,
			errors.NewScanError(errors.CodeConflict, "archive is not configured"))
		return
	}
	if !req.Archive {
		path, err := resolveResultPath(h.resultsDir, req.Path)
		if err != nil {
			h.fail(w, r, "save result", err)
			return
		}
		req.Path = path
	}

	var resp TabResponse
	err := h.withTab(r, func(nb *tab.Notebook, c *tab.Controller) error {
		if req.Archive {
			if _, err := nb.Archive(r.Context(), c.ID(), h.archive); err != nil {
				return err
			}
		} else if err := c.Save(req.Path); err != nil {
			return err
		}
		resp = toTabResponse(c)
		return nil
	})
	if err != nil {
		h.fail(w, r, "save result", err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// GetOutput godoc
// @Summary Scanner output
// @Tags Views
// @Produce json
// @Param id path string true "Tab ID"
// @Success 200 {object} OutputResponse
// @Failure 404 {object} ErrorResponse
// @Router /tabs/{id}/output [get]
func (h *TabHandler) GetOutput(w http.ResponseWriter, r *http.Request) {
	var resp OutputResponse
	err := h.withTab(r, func(_ *tab.Notebook, c *tab.Controller) error {
		resp = OutputResponse{State: c.State(), Output: c.Output()}
		return nil
	})
	if err != nil {
		h.fail(w, r, "get output", err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// GetFingerprints godoc
// @Summary Unknown fingerprints
// @Description Hosts whose OS or service fingerprint nmap could not match
// @Tags Views
// @Produce json
// @Param id path string true "Tab ID"
// @Success 200 {object} fingerprint.Result
// @Failure 404 {object} ErrorResponse
// @Router /tabs/{id}/fingerprints [get]
func (h *TabHandler) GetFingerprints(w http.ResponseWriter, r *http.Request) {
	var resp fingerprint.Result
	err := h.withTab(r, func(_ *tab.Notebook, c *tab.Controller) error {
		resp = c.Fingerprints()
		return nil
	})
	if err != nil {
		h.fail(w, r, "get fingerprints", err)
		return
	}
	if resp.Records == nil {
		resp.Records = []fingerprint.Record{}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// GetDetails godoc
// @Summary Host or run details
// @Description With ?host= returns that host's detail page, otherwise the run summary
// @Tags Views
// @Produce json
// @Param id path string true "Tab ID"
// @Param host query string false "Host key"
// @Success 200 {object} views.HostDetails
// @Success 200 {object} RunDetailsResponse
// @Failure 404 {object} ErrorResponse
// @Router /tabs/{id}/details [get]
func (h *TabHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	host := strings.TrimSpace(r.URL.Query().Get("host"))

	var out interface{}
	err := h.withTab(r, func(_ *tab.Notebook, c *tab.Controller) error {
		if host == "" {
			out = RunDetailsResponse{Session: c.RunDetails()}
			return nil
		}
		d, err := c.Details(host)
		if err != nil {
			return err
		}
		// The store may replace the host once the loop moves on.
		hostCopy := *d.Host
		d.Host = &hostCopy
		out = d
		return nil
	})
	if err != nil {
		h.fail(w, r, "get details", err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}
