/*
handlers.go - HTTP API handlers for the settlement engine

PURPOSE:
  Exposes the full & final calculator via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to settlement.

ENDPOINTS:
  GET /healthz                                          Liveness + store ping
  GET /api/employees                                    List employees
  GET /api/employees/{id}                               Get employee
  GET /api/employees/{id}/full-and-final                Settlement result
  GET /api/employees/{id}/full-and-final/statement.pdf  Settlement PDF

  Both settlement endpoints accept ?transaction_date=YYYY-MM-DD.

ERROR HANDLING:
  - 200: Settlement computed OR rejected (body.ok tells which)
  - 400: Malformed transaction_date
  - 404: Unknown employee on the record endpoints
  - 422: Statement requested for a rejected settlement
  - 500: Store failures

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/warp/settlement-engine/calendar"
	"github.com/warp/settlement-engine/records"
	"github.com/warp/settlement-engine/settlement"
	"github.com/warp/settlement-engine/statement"
	"go.uber.org/zap"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store      records.ReadWriter
	Calculator *settlement.Calculator

	log   *zap.Logger
	today func() calendar.Date

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a handler computing settlements against store.
func NewHandler(store records.ReadWriter, calc *settlement.Calculator, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:      store,
		Calculator: calc,
		log:        log,
		today:      calendar.Today,
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Health reports liveness, pinging the store when it supports it.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			h.log.Error("health check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.internalError(w, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, e := range employees {
		dtos = append(dtos, toEmployeeDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.internalError(w, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// =============================================================================
// SETTLEMENT ENDPOINTS
// =============================================================================

// GetFullAndFinal computes the settlement payload. Business rejections are
// returned with status 200 and ok=false.
func (h *Handler) GetFullAndFinal(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ToResultDTO(result))
}

// GetStatement renders a successful settlement as a PDF.
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	result, ok := h.compute(w, r)
	if !ok {
		return
	}
	if !result.OK {
		writeError(w, http.StatusUnprocessableEntity, result.Message, nil)
		return
	}

	id := chi.URLParam(r, "id")
	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.internalError(w, "Failed to get employee", err)
		return
	}
	if emp == nil {
		// Deleted between the computation and this read.
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	st := statement.New(*emp, result.Payload, h.today())
	var buf bytes.Buffer
	if err := statement.Render(&buf, st); err != nil {
		h.internalError(w, "Failed to render statement", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", st.Number+".pdf"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// compute parses the request and runs the calculator. It writes the error
// response itself and returns false when there is nothing more to do.
func (h *Handler) compute(w http.ResponseWriter, r *http.Request) (settlement.Result, bool) {
	id := chi.URLParam(r, "id")

	requested, err := calendar.ParseDate(r.URL.Query().Get("transaction_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transaction_date", err)
		return settlement.Result{}, false
	}

	result, err := h.Calculator.FullAndFinal(r.Context(), id, requested)
	if err != nil {
		h.internalError(w, "Failed to compute settlement", err)
		return settlement.Result{}, false
	}
	return result, true
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) internalError(w http.ResponseWriter, message string, err error) {
	h.log.Error(message, zap.Error(err))
	writeError(w, http.StatusInternalServerError, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
