/*
Package records defines the HR/payroll records a settlement reads.

PURPOSE:
  The settlement engine never owns these records. They live in the host
  record store (SQLite, PostgreSQL, or memory for tests) and are read as
  point-in-time snapshots through the Store interface.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee, Company: identity facts and currency passthrough
  - SalaryAssignment: monthly rate effective from a date
  - SalarySlip: prior payroll runs (only the end date matters)
  - LeaveType, LeaveAllocation, LeaveApplication: leave grants and usage

DESIGN PRINCIPLES:
  1. Precision: day counts and money use decimal.Decimal
  2. Dates are calendar.Date; the zero Date means "not set"
  3. Submitted mirrors the host's finalized document state; drafts and
     cancelled documents never count

SEE ALSO:
  - store.go: Store (read) and Writer (seed) interfaces
  - memory/memory.go: in-memory implementation
*/
package records

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/calendar"
)

// =============================================================================
// EMPLOYEE / COMPANY
// =============================================================================

// StatusActive is the employee status that blocks a settlement.
const StatusActive = "Active"

type Employee struct {
	ID            string
	Name          string
	Status        string
	DateOfJoining calendar.Date
	RelievingDate calendar.Date
	CompanyID     string
}

// IsActive compares the status case-insensitively.
func (e Employee) IsActive() bool {
	return strings.EqualFold(strings.TrimSpace(e.Status), StatusActive)
}

type Company struct {
	ID              string
	Name            string
	DefaultCurrency string
}

// =============================================================================
// SALARY
// =============================================================================

type SalaryAssignment struct {
	ID            string
	EmployeeID    string
	EffectiveFrom calendar.Date
	Base          decimal.Decimal
	CustomTotal   decimal.Decimal // overrides Base when non-zero
	Submitted     bool
}

// MonthlyRate prefers the custom total, falling back to the base rate.
func (a SalaryAssignment) MonthlyRate() decimal.Decimal {
	if !a.CustomTotal.IsZero() {
		return a.CustomTotal
	}
	return a.Base
}

type SalarySlip struct {
	ID         string
	EmployeeID string
	StartDate  calendar.Date
	EndDate    calendar.Date
	Submitted  bool
}

// =============================================================================
// LEAVE
// =============================================================================

type LeaveType struct {
	Name string
}

type LeaveAllocation struct {
	ID                   string
	EmployeeID           string
	LeaveType            string
	FromDate             calendar.Date
	ToDate               calendar.Date
	TotalLeavesAllocated decimal.Decimal
	ExtraDays            decimal.Decimal
	Submitted            bool
}

// Window is the allocation's validity range, against which usage is measured.
func (a LeaveAllocation) Window() calendar.Period {
	return calendar.Period{Start: a.FromDate, End: a.ToDate}
}

// Total is the granted days including extra days.
func (a LeaveAllocation) Total() decimal.Decimal {
	return a.TotalLeavesAllocated.Add(a.ExtraDays)
}

// Leave application approval states.
const (
	LeaveStatusOpen      = "Open"
	LeaveStatusApproved  = "Approved"
	LeaveStatusRejected  = "Rejected"
	LeaveStatusCancelled = "Cancelled"
)

type LeaveApplication struct {
	ID             string
	EmployeeID     string
	LeaveType      string
	FromDate       calendar.Date
	ToDate         calendar.Date
	TotalLeaveDays decimal.Decimal
	Status         string
	Submitted      bool
}

// Counts reports whether the application is approved and finalized.
func (a LeaveApplication) Counts() bool {
	return a.Submitted && a.Status == LeaveStatusApproved
}

// MatchesKeyword is the case-insensitive substring match used to group leave
// type variants ("Annual Leave", "Annual Leave - Senior") into a category.
func MatchesKeyword(name, keyword string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(keyword))
}
