// Package memory provides an in-memory records.Store for tests and demo mode.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/calendar"
	"github.com/warp/settlement-engine/records"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu           sync.RWMutex
	companies    map[string]records.Company
	employees    map[string]records.Employee
	assignments  map[string]records.SalaryAssignment
	slips        map[string]records.SalarySlip
	leaveTypes   map[string]records.LeaveType
	allocations  map[string]records.LeaveAllocation
	applications map[string]records.LeaveApplication
}

var _ records.ReadWriter = (*Memory)(nil)

func New() *Memory {
	m := &Memory{}
	m.resetLocked()
	return m
}

func (m *Memory) resetLocked() {
	m.companies = make(map[string]records.Company)
	m.employees = make(map[string]records.Employee)
	m.assignments = make(map[string]records.SalaryAssignment)
	m.slips = make(map[string]records.SalarySlip)
	m.leaveTypes = make(map[string]records.LeaveType)
	m.allocations = make(map[string]records.LeaveAllocation)
	m.applications = make(map[string]records.LeaveApplication)
}

// =============================================================================
// LOOKUPS
// =============================================================================

func (m *Memory) GetEmployee(_ context.Context, id string) (*records.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	return &emp, nil
}

func (m *Memory) GetCompany(_ context.Context, id string) (*records.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.companies[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *Memory) LatestSalaryAssignment(_ context.Context, employeeID string, asOf calendar.Date) (*records.SalaryAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *records.SalaryAssignment
	for _, a := range m.assignments {
		if a.EmployeeID != employeeID || !a.Submitted || a.EffectiveFrom.After(asOf) {
			continue
		}
		if latest == nil || a.EffectiveFrom.After(latest.EffectiveFrom) ||
			(a.EffectiveFrom.Equal(latest.EffectiveFrom) && a.ID > latest.ID) {
			found := a
			latest = &found
		}
	}
	return latest, nil
}

func (m *Memory) LatestSalarySlipEnd(_ context.Context, employeeID string) (calendar.Date, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest calendar.Date
	for _, s := range m.slips {
		if s.EmployeeID == employeeID && s.Submitted && s.EndDate.After(latest) {
			latest = s.EndDate
		}
	}
	return latest, nil
}

func (m *Memory) LeaveTypesMatching(_ context.Context, keyword string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name := range m.leaveTypes {
		if records.MatchesKeyword(name, keyword) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) LeaveAllocationCovering(_ context.Context, employeeID, leaveType string, at calendar.Date) (*records.LeaveAllocation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *records.LeaveAllocation
	for _, a := range m.allocations {
		if a.EmployeeID != employeeID || a.LeaveType != leaveType || !a.Submitted {
			continue
		}
		if !a.Window().Contains(at) {
			continue
		}
		if best == nil || a.FromDate.After(best.FromDate) ||
			(a.FromDate.Equal(best.FromDate) && a.ID > best.ID) {
			found := a
			best = &found
		}
	}
	return best, nil
}

func (m *Memory) SumLeaveDays(_ context.Context, employeeID string, leaveTypes []string, window calendar.Period) (decimal.Decimal, error) {
	total := decimal.Zero
	if len(leaveTypes) == 0 {
		return total, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := make(map[string]bool, len(leaveTypes))
	for _, lt := range leaveTypes {
		wanted[lt] = true
	}
	for _, a := range m.applications {
		if a.EmployeeID != employeeID || !wanted[a.LeaveType] || !a.Counts() {
			continue
		}
		if !window.Encloses(calendar.Period{Start: a.FromDate, End: a.ToDate}) {
			continue
		}
		total = total.Add(a.TotalLeaveDays)
	}
	return total, nil
}

// =============================================================================
// WRITES
// =============================================================================

func (m *Memory) SaveCompany(_ context.Context, c records.Company) error {
	if c.ID == "" {
		return fmt.Errorf("company: %w: missing id", records.ErrInvalidRecord)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.companies[c.ID] = c
	return nil
}

func (m *Memory) SaveEmployee(_ context.Context, e records.Employee) error {
	if e.ID == "" {
		return fmt.Errorf("employee: %w: missing id", records.ErrInvalidRecord)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

func (m *Memory) SaveSalaryAssignment(_ context.Context, a records.SalaryAssignment) error {
	if a.ID == "" {
		return fmt.Errorf("salary assignment: %w: missing id", records.ErrInvalidRecord)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[a.ID] = a
	return nil
}

func (m *Memory) SaveSalarySlip(_ context.Context, s records.SalarySlip) error {
	if s.ID == "" {
		return fmt.Errorf("salary slip: %w: missing id", records.ErrInvalidRecord)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slips[s.ID] = s
	return nil
}

func (m *Memory) SaveLeaveType(_ context.Context, t records.LeaveType) error {
	if t.Name == "" {
		return fmt.Errorf("leave type: %w: missing name", records.ErrInvalidRecord)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaveTypes[t.Name] = t
	return nil
}

func (m *Memory) SaveLeaveAllocation(_ context.Context, a records.LeaveAllocation) error {
	if a.ID == "" {
		return fmt.Errorf("leave allocation: %w: missing id", records.ErrInvalidRecord)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allocations[a.ID] = a
	return nil
}

func (m *Memory) SaveLeaveApplication(_ context.Context, a records.LeaveApplication) error {
	if a.ID == "" {
		return fmt.Errorf("leave application: %w: missing id", records.ErrInvalidRecord)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applications[a.ID] = a
	return nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]records.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]records.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name == result[j].Name {
			return result[i].ID < result[j].ID
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	return nil
}
