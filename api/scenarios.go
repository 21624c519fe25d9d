/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
	Provides pre-built record sets that reproduce the reference settlement
	cases. Each scenario resets the store, then creates a company, leave
	types, one employee and that employee's salary and leave records.

AVAILABLE SCENARIOS:

	mid-month-resignation:  20 worked days at 100/day = 2000
	month-end-resignation:  untruncated month pays the monthly rate
	leave-encashment:       15+3 annual days, 4 annual + 2 personal taken = 12
	active-employee:        rejected, "Employee is still Active."
	no-salary-assignment:   rejected, "No Salary Structure Assignment found."

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "leave-encashment"}

	GET /api/employees/emp-003/full-and-final

NOTE:
	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: settlement endpoints the scenarios are checked against
  - cmd/server/main.go: `compute --scenario` seeds before computing
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/calendar"
	"github.com/warp/settlement-engine/records"
	"go.uber.org/zap"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "mid-month-resignation",
		Name:        "Mid-Month Resignation",
		Description: "Joined 2024-03-10, relieved 2024-06-20, 3000/month",
		Employee:    "emp-001",
		Expected:    "20 worked days x 100 = 2000",
	},
	{
		ID:          "month-end-resignation",
		Name:        "Month-End Resignation",
		Description: "Relieved 2024-04-30 after a March payroll run, 4500/month",
		Employee:    "emp-002",
		Expected:    "full month override: 30 days, 4500",
	},
	{
		ID:          "leave-encashment",
		Name:        "Leave Encashment",
		Description: "18 annual days granted, 4 annual and 2 personal days taken",
		Employee:    "emp-003",
		Expected:    "2000 worked + 12 days x 100 encashed = 3200",
	},
	{
		ID:          "active-employee",
		Name:        "Active Employee",
		Description: "Relieving date set but status still Active",
		Employee:    "emp-004",
		Expected:    "ok=false: Employee is still Active.",
	},
	{
		ID:          "no-salary-assignment",
		Name:        "No Salary Assignment",
		Description: "Relieved employee whose only assignment starts after the cutoff",
		Employee:    "emp-005",
		Expected:    "ok=false: No Salary Structure Assignment found.",
	},
}

// Scenarios returns the available scenario definitions.
func Scenarios() []ScenarioDTO {
	out := make([]ScenarioDTO, len(scenarios))
	copy(out, scenarios)
	return out
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !knownScenario(req.ScenarioID) {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.currentScenario = ""
	if err := LoadScenarioData(r.Context(), h.Store, req.ScenarioID); err != nil {
		h.internalError(w, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}
	h.currentScenario = req.ScenarioID
	h.log.Info("scenario loaded", zap.String("scenario", req.ScenarioID))

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		h.internalError(w, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func knownScenario(id string) bool {
	for _, s := range scenarios {
		if s.ID == id {
			return true
		}
	}
	return false
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// LoadScenarioData resets w and writes the records of scenario id.
func LoadScenarioData(ctx context.Context, w records.Writer, id string) error {
	var load func(*seeder)
	switch id {
	case "mid-month-resignation":
		load = loadMidMonthResignation
	case "month-end-resignation":
		load = loadMonthEndResignation
	case "leave-encashment":
		load = loadLeaveEncashment
	case "active-employee":
		load = loadActiveEmployee
	case "no-salary-assignment":
		load = loadNoSalaryAssignment
	default:
		return fmt.Errorf("unknown scenario %q", id)
	}

	if err := w.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s := &seeder{ctx: ctx, w: w}
	s.baseline()
	load(s)
	return s.err
}

func loadMidMonthResignation(s *seeder) {
	s.employee("emp-001", "Alice Johnson", "Left", "2024-03-10", "2024-06-20")
	s.salary("emp-001", "2024-01-01", 3000, 0)
}

func loadMonthEndResignation(s *seeder) {
	s.employee("emp-002", "Bruno Diaz", "Left", "2021-09-01", "2024-04-30")
	s.salary("emp-002", "2023-01-01", 4500, 0)
	s.slip("emp-002", "2024-03-01", "2024-03-31", true)
}

func loadLeaveEncashment(s *seeder) {
	s.employee("emp-003", "Chen Wei", "Left", "2019-02-15", "2024-06-20")
	s.salary("emp-003", "2024-01-01", 2800, 3000)
	s.slip("emp-003", "2024-05-01", "2024-05-31", true)
	s.allocation("emp-003", "Annual Leave", "2024-01-01", "2024-12-31", 15, 3)
	s.leave("emp-003", "Annual Leave", "2024-02-12", "2024-02-14", "3", records.LeaveStatusApproved, true)
	s.leave("emp-003", "Annual Leave", "2024-04-05", "2024-04-05", "1", records.LeaveStatusApproved, true)
	s.leave("emp-003", "Annual Leave", "2024-05-20", "2024-05-21", "2", records.LeaveStatusOpen, false)
	s.leave("emp-003", "Personal Leave", "2024-03-18", "2024-03-19", "2", records.LeaveStatusApproved, true)
	s.leave("emp-003", "Sick Leave", "2024-01-22", "2024-01-24", "3", records.LeaveStatusApproved, true)
}

func loadActiveEmployee(s *seeder) {
	s.employee("emp-004", "Dana Smith", records.StatusActive, "2022-05-02", "2024-08-31")
	s.salary("emp-004", "2022-05-02", 3600, 0)
}

func loadNoSalaryAssignment(s *seeder) {
	s.employee("emp-005", "Eli Novak", "Left", "2024-05-06", "2024-06-14")
	s.salary("emp-005", "2024-07-01", 3000, 0)
}

// seeder writes scenario records, keeping the first error.
type seeder struct {
	ctx context.Context
	w   records.Writer
	err error
}

func (s *seeder) do(fn func() error) {
	if s.err == nil {
		s.err = fn()
	}
}

func (s *seeder) baseline() {
	s.do(func() error {
		return s.w.SaveCompany(s.ctx, records.Company{ID: "acme", Name: "Acme Corp", DefaultCurrency: "USD"})
	})
	for _, name := range []string{"Annual Leave", "Personal Leave", "Sick Leave"} {
		s.do(func() error { return s.w.SaveLeaveType(s.ctx, records.LeaveType{Name: name}) })
	}
}

func (s *seeder) employee(id, name, status, joined, relieving string) {
	s.do(func() error {
		return s.w.SaveEmployee(s.ctx, records.Employee{
			ID: id, Name: name, Status: status, CompanyID: "acme",
			DateOfJoining: calendar.MustParseDate(joined),
			RelievingDate: calendar.MustParseDate(relieving),
		})
	})
}

func (s *seeder) salary(employeeID, from string, base, customTotal int64) {
	s.do(func() error {
		return s.w.SaveSalaryAssignment(s.ctx, records.SalaryAssignment{
			ID:            "ssa-" + uuid.NewString(),
			EmployeeID:    employeeID,
			EffectiveFrom: calendar.MustParseDate(from),
			Base:          decimal.NewFromInt(base),
			CustomTotal:   decimal.NewFromInt(customTotal),
			Submitted:     true,
		})
	})
}

func (s *seeder) slip(employeeID, start, end string, submitted bool) {
	s.do(func() error {
		return s.w.SaveSalarySlip(s.ctx, records.SalarySlip{
			ID:         "slip-" + uuid.NewString(),
			EmployeeID: employeeID,
			StartDate:  calendar.MustParseDate(start),
			EndDate:    calendar.MustParseDate(end),
			Submitted:  submitted,
		})
	})
}

func (s *seeder) allocation(employeeID, leaveType, from, to string, allocated, extra int64) {
	s.do(func() error {
		return s.w.SaveLeaveAllocation(s.ctx, records.LeaveAllocation{
			ID:                   "la-" + uuid.NewString(),
			EmployeeID:           employeeID,
			LeaveType:            leaveType,
			FromDate:             calendar.MustParseDate(from),
			ToDate:               calendar.MustParseDate(to),
			TotalLeavesAllocated: decimal.NewFromInt(allocated),
			ExtraDays:            decimal.NewFromInt(extra),
			Submitted:            true,
		})
	})
}

func (s *seeder) leave(employeeID, leaveType, from, to, days, status string, submitted bool) {
	s.do(func() error {
		return s.w.SaveLeaveApplication(s.ctx, records.LeaveApplication{
			ID:             "lapp-" + uuid.NewString(),
			EmployeeID:     employeeID,
			LeaveType:      leaveType,
			FromDate:       calendar.MustParseDate(from),
			ToDate:         calendar.MustParseDate(to),
			TotalLeaveDays: decimal.RequireFromString(days),
			Status:         status,
			Submitted:      submitted,
		})
	})
}
