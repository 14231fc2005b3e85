package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/joacominatel/sqlgrader/internal/logger"
)

const maxBodyBytes = 1 << 20

type handlers struct {
	grader Grader
	log    *logger.Logger
}

type evaluateRequest struct {
	StudentQuery  string `json:"studentQuery"`
	SolutionQuery string `json:"solutionQuery"`
	DatabaseID    int64  `json:"databaseId"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// POST /api/evaluations
func (h *handlers) evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.grader.HasDatabase(req.DatabaseID) {
		h.respondError(w, http.StatusNotFound, "unknown database")
		return
	}

	res := h.grader.Evaluate(r.Context(), req.StudentQuery, req.SolutionQuery, req.DatabaseID)
	h.respondJSON(w, http.StatusOK, res)
}

func (req evaluateRequest) validate() error {
	switch {
	case strings.TrimSpace(req.SolutionQuery) == "":
		return errors.New("solutionQuery is required")
	case req.DatabaseID <= 0:
		return errors.New("databaseId must be positive")
	}
	return nil
}

// GET /api/databases
func (h *handlers) listDatabases(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, h.grader.Databases())
}

// GET /healthz
func (h *handlers) healthz(w http.ResponseWriter, _ *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz
func (h *handlers) readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.grader.Ping(r.Context()); err != nil {
		h.log.Error(err, "readiness check failed")
		h.respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// respondJSON encodes v before writing the status so an encoding failure
// becomes a 500 instead of an empty success.
func (h *handlers) respondJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.log.Error(err, "encode response")
		status = http.StatusInternalServerError
		body = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		h.log.Error(err, "write response")
	}
}

func (h *handlers) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, errorResponse{Error: msg})
}
