// Package admin implements the admin HTTP surface (spec.md §6): spec
// introspection and hot-swap under the "/apate" prefix, plus a static UI
// asset passthrough.
package admin

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rustrum/apate/pkg/logging"
	"github.com/rustrum/apate/pkg/registry"
	"github.com/rustrum/apate/pkg/spec"
)

// Version is the build-time version string reported by GET /apate/info.
var Version = "dev"

// Handler serves the "/apate" admin prefix.
type Handler struct {
	Registry  *registry.Registry
	StartedAt time.Time
	Log       *slog.Logger

	// UIAssets, if non-nil, serves static web UI files for any "/apate/*"
	// path not otherwise recognized (spec.md §6's "GET /apate/* (UI paths)"
	// row).
	UIAssets http.Handler
}

// New builds an admin Handler. log may be nil, in which case logging.Nop()'s
// no-op logger is used.
func New(reg *registry.Registry, log *slog.Logger) *Handler {
	if log == nil {
		log = logging.Nop()
	}
	return &Handler{Registry: reg, StartedAt: time.Now(), Log: log}
}

// ErrorResponse is the JSON shape every admin JSON error uses, the same
// {error, message} pair the teacher's pkg/admin.ErrorResponse returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeJSONError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{Error: errCode, Message: message})
}

// ServeHTTP dispatches within the "/apate" prefix per spec.md §6's table.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/apate/info":
		h.handleInfo(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/apate/specs":
		h.handleGetSpecs(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/apate/specs/replace":
		h.handleReplace(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/apate/specs/append":
		h.handleAppend(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/apate/specs/prepend":
		h.handlePrepend(w, r)
	case strings.HasPrefix(r.URL.Path, "/apate/"):
		h.handleUIAsset(w, r)
	default:
		http.NotFound(w, r)
	}
}

type infoResponse struct {
	Version    string `json:"version"`
	SpecsCount int    `json:"specs_count"`
	UptimeSec  int64  `json:"uptime_sec"`
}

func (h *Handler) handleInfo(w http.ResponseWriter, _ *http.Request) {
	snapshot := h.Registry.Snapshot()
	writeJSON(w, http.StatusOK, infoResponse{
		Version:    Version,
		SpecsCount: len(snapshot.Deceits),
		UptimeSec:  int64(time.Since(h.StartedAt).Seconds()),
	})
}

func (h *Handler) handleGetSpecs(w http.ResponseWriter, _ *http.Request) {
	snapshot := h.Registry.Snapshot()
	data, err := spec.Encode(snapshot)
	if err != nil {
		h.Log.Error("encode active spec", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "encode_error", "failed to serialize active spec")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// maxSpecBodySize bounds the TOML body accepted by the replace/append/
// prepend endpoints, the same length-bounding discipline spec.md §7
// requires of every untrusted body materialized into memory.
const maxSpecBodySize = 10 << 20 // 10MB

func (h *Handler) readSpecBody(w http.ResponseWriter, r *http.Request) (spec.Spec, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSpecBodySize+1))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "read_error", "failed to read request body")
		return spec.Spec{}, false
	}
	if len(body) > maxSpecBodySize {
		writeJSONError(w, http.StatusBadRequest, "body_too_large", "spec body exceeds maximum allowed size")
		return spec.Spec{}, false
	}
	parsed, err := spec.Parse(body)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "parse_error", err.Error())
		return spec.Spec{}, false
	}
	return parsed, true
}

func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request) {
	next, ok := h.readSpecBody(w, r)
	if !ok {
		return
	}
	if err := h.Registry.Replace(next); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	h.Log.Info("spec replaced", "deceits", len(next.Deceits))
	writeJSON(w, http.StatusOK, map[string]any{"deceits": len(h.Registry.Snapshot().Deceits)})
}

func (h *Handler) handleAppend(w http.ResponseWriter, r *http.Request) {
	addition, ok := h.readSpecBody(w, r)
	if !ok {
		return
	}
	if err := h.Registry.Append(addition); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	h.Log.Info("spec appended", "added", len(addition.Deceits))
	writeJSON(w, http.StatusOK, map[string]any{"deceits": len(h.Registry.Snapshot().Deceits)})
}

func (h *Handler) handlePrepend(w http.ResponseWriter, r *http.Request) {
	addition, ok := h.readSpecBody(w, r)
	if !ok {
		return
	}
	if err := h.Registry.Prepend(addition); err != nil {
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	h.Log.Info("spec prepended", "added", len(addition.Deceits))
	writeJSON(w, http.StatusOK, map[string]any{"deceits": len(h.Registry.Snapshot().Deceits)})
}

func (h *Handler) handleUIAsset(w http.ResponseWriter, r *http.Request) {
	if h.UIAssets == nil {
		http.NotFound(w, r)
		return
	}
	h.UIAssets.ServeHTTP(w, r)
}
