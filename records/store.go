/*
store.go - Record lookup interface between settlement and the record store

PURPOSE:
  Settlement needs a handful of point-in-time reads: one record by id, the
  most recent record matching a filter, records whose name contains a
  keyword, and a summed field over matching rows. Store names each of those
  reads explicitly so any backing store can serve them.

KEY INTERFACES:
  Store:  Read-only lookups used by the settlement computation
  Writer: Seeding operations for demo scenarios and tests

NOT-FOUND CONTRACT:
  Single-record lookups return (nil, nil) when nothing matches. An error is
  reserved for infrastructure failures (connection, malformed stored data).

READ-ONLY CONTRACT:
  The computation only ever calls Store. Writer exists so the same backing
  implementations can be populated; nothing in settlement/ writes.

IMPLEMENTATIONS:
  - records/memory: in-memory, for tests and demo mode
  - store/sqlite:   embedded SQLite (default)
  - store/postgres: PostgreSQL via pgx

SEE ALSO:
  - settlement/calculator.go: the only consumer of Store
*/
package records

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/calendar"
)

// Store provides the read-only lookups a settlement needs.
type Store interface {
	// GetEmployee returns the employee or nil if absent.
	GetEmployee(ctx context.Context, id string) (*Employee, error)

	// GetCompany returns the company or nil if absent.
	GetCompany(ctx context.Context, id string) (*Company, error)

	// LatestSalaryAssignment returns the submitted assignment with the greatest
	// EffectiveFrom on or before asOf, or nil.
	LatestSalaryAssignment(ctx context.Context, employeeID string, asOf calendar.Date) (*SalaryAssignment, error)

	// LatestSalarySlipEnd returns the end date of the latest submitted slip,
	// or the zero Date when the employee has none.
	LatestSalarySlipEnd(ctx context.Context, employeeID string) (calendar.Date, error)

	// LeaveTypesMatching returns leave type names containing keyword
	// (case-insensitive), ordered by name.
	LeaveTypesMatching(ctx context.Context, keyword string) ([]string, error)

	// LeaveAllocationCovering returns the submitted allocation of leaveType
	// whose window contains at, latest FromDate first, or nil.
	LeaveAllocationCovering(ctx context.Context, employeeID, leaveType string, at calendar.Date) (*LeaveAllocation, error)

	// SumLeaveDays totals TotalLeaveDays of approved, submitted applications
	// of the given types lying entirely inside window.
	SumLeaveDays(ctx context.Context, employeeID string, leaveTypes []string, window calendar.Period) (decimal.Decimal, error)
}

// Writer seeds records. Saves are upserts keyed by ID (or Name for leave types).
type Writer interface {
	SaveCompany(ctx context.Context, c Company) error
	SaveEmployee(ctx context.Context, e Employee) error
	SaveSalaryAssignment(ctx context.Context, a SalaryAssignment) error
	SaveSalarySlip(ctx context.Context, s SalarySlip) error
	SaveLeaveType(ctx context.Context, t LeaveType) error
	SaveLeaveAllocation(ctx context.Context, a LeaveAllocation) error
	SaveLeaveApplication(ctx context.Context, a LeaveApplication) error

	// ListEmployees returns all employees ordered by name.
	ListEmployees(ctx context.Context) ([]Employee, error)

	// Reset removes every record.
	Reset(ctx context.Context) error
}

// ReadWriter is what the HTTP layer holds: lookups plus seeding.
type ReadWriter interface {
	Store
	Writer
}
