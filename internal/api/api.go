// Package api exposes the task tracker over a JSON REST surface.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kolapsis/cadence/internal/interchange"
	"github.com/kolapsis/cadence/internal/store"
	"github.com/kolapsis/cadence/internal/task"
	"github.com/kolapsis/cadence/internal/tracker"
)

// maxImportSize bounds import payloads to 10MB.
const maxImportSize = 10 << 20

// Handler serves the REST API.
type Handler struct {
	tracker  *tracker.Tracker
	importer *interchange.Importer
	exporter *interchange.Exporter

	mu      sync.Mutex
	pending map[string]*interchange.PendingImport
}

// NewHandler creates the REST handler.
func NewHandler(tr *tracker.Tracker, imp *interchange.Importer, exp *interchange.Exporter) *Handler {
	return &Handler{
		tracker:  tr,
		importer: imp,
		exporter: exp,
		pending:  make(map[string]*interchange.PendingImport),
	}
}

// Routes mounts all API endpoints on a fresh router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.handleListTasks)
		r.Post("/", h.handleCreateTask)
		r.Get("/due", h.handleDueTasks)
		r.Route("/{taskID}", func(r chi.Router) {
			r.Get("/", h.handleGetTask)
			r.Put("/", h.handleUpdateTask)
			r.Delete("/", h.handleDeleteTask)
			r.Post("/complete", h.handleCompleteTask)
			r.Post("/activate", h.handleActivateTask)
		})
	})

	r.Get("/export", h.handleExport)
	r.Post("/import", h.handleImport)
	r.Post("/import/{importID}/apply", h.handleImportApply)

	return r
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tracker.List()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var t task.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	created, err := h.tracker.Create(t)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.tracker.Get(chi.URLParam(r, "taskID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var t task.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	t.ID = chi.URLParam(r, "taskID")

	if err := h.tracker.Update(t); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.tracker.Delete(chi.URLParam(r, "taskID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDueTasks(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date")
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.tracker.DueOn(date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":  date,
		"items": items,
	})
}

func (h *Handler) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	date, err := bodyDate(r)
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.tracker.Complete(chi.URLParam(r, "taskID"), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task":          result.Task,
		"removed":       result.Removed,
		"activated":     result.Activated,
		"autoCompleted": result.AutoCompleted,
	})
}

func (h *Handler) handleActivateTask(w http.ResponseWriter, r *http.Request) {
	date, err := bodyDate(r)
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.tracker.Activate(chi.URLParam(r, "taskID"), date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := h.exporter.Marshal()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="cadence-export.json"`)
	_, _ = w.Write(data)
}

// handleImport parses and validates an import payload. When the batch has no
// conflicts it is applied immediately; otherwise the pending import is parked
// and its conflicts are returned for the client to resolve.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "reading request body")
		return
	}

	p, err := h.importer.Begin(data)
	if err != nil {
		writeError(w, err)
		return
	}

	if !p.HasConflicts() {
		result, err := h.importer.Apply(p, nil)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	importID := uuid.NewString()
	h.mu.Lock()
	h.pending[importID] = p
	h.mu.Unlock()

	slog.Info("import awaiting conflict resolution",
		"import_id", importID,
		"conflicts", len(p.Conflicts()))

	writeJSON(w, http.StatusConflict, map[string]any{
		"importId":  importID,
		"conflicts": p.Conflicts(),
	})
}

func (h *Handler) handleImportApply(w http.ResponseWriter, r *http.Request) {
	importID := chi.URLParam(r, "importID")

	h.mu.Lock()
	p, ok := h.pending[importID]
	delete(h.pending, importID)
	h.mu.Unlock()

	if !ok {
		writeErrorStatus(w, http.StatusNotFound, "unknown import id")
		return
	}

	var body struct {
		Resolutions map[string]interchange.Resolution `json:"resolutions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.importer.Apply(p, body.Resolutions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// bodyDate reads an optional {"date": "YYYY-MM-DD"} body, defaulting to today.
func bodyDate(r *http.Request) (task.Date, error) {
	var body struct {
		Date task.Date `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return task.Date{}, errors.New("invalid JSON body")
	}
	if body.Date.IsZero() {
		return task.Today(), nil
	}
	return body.Date, nil
}

// queryDate reads an optional ?date=YYYY-MM-DD parameter, defaulting to today.
func queryDate(r *http.Request, name string) (task.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return task.Today(), nil
	}
	return task.ParseDate(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeErrorStatus(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var cfgErr *task.ConfigError
	var schedErr *task.SchedulingError
	var fmtErr *interchange.FormatError
	var verErr *interchange.VersionError
	var refErr *interchange.ReferentialError

	switch {
	case errors.Is(err, store.ErrNotFound):
		writeErrorStatus(w, http.StatusNotFound, "task not found")
	case errors.As(err, &cfgErr),
		errors.As(err, &fmtErr),
		errors.As(err, &verErr),
		errors.As(err, &refErr):
		writeErrorStatus(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &schedErr):
		writeErrorStatus(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("request failed", "error", err)
		writeErrorStatus(w, http.StatusInternalServerError, "internal error")
	}
}
