/*
Package sqlite provides a SQLite-backed implementation of the record store.

PURPOSE:
  Implements records.Store (the lookups a settlement performs) and
  records.Writer (seeding for demo scenarios and tests) on SQLite. This is
  the default backing store; store/postgres serves the same interfaces.

INTERFACES IMPLEMENTED:
  records.Store:  point-in-time reads used by settlement.Calculator
  records.Writer: upserts and Reset

KEY TABLES:
  companies:          default currency passthrough
  employees:          join / relieving dates, status, company
  salary_assignments: monthly rate effective from a date
  salary_slips:       prior payroll runs (end date only matters)
  leave_types:        names matched by keyword ("Annual", "Personal")
  leave_allocations:  granted days per leave type and window
  leave_applications: leave taken, counted when submitted + Approved

STORAGE FORMATS:
  - Dates are TEXT in YYYY-MM-DD form, NULL when unset. Lexical order
    equals date order, so range filters run in SQL.
  - Day counts and money are TEXT decimals, summed in Go with
    shopspring/decimal. SQLite's SUM would go through REAL.
  - A stored date that cannot be parsed is reported as
    *records.StoredDateError instead of being read as "unset".

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. PostgreSQL relies on the database
  instead (see store/postgres).

USAGE:
  store, err := sqlite.New("./data/settlement.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  calc := settlement.NewCalculator(store)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - records/store.go: interface definitions
  - records/memory/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/calendar"
	"github.com/warp/settlement-engine/records"
)

// Store implements records.Store and records.Writer using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ records.ReadWriter = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection, used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS companies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		default_currency TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		date_of_joining TEXT,
		relieving_date TEXT,
		company_id TEXT
	);

	CREATE TABLE IF NOT EXISTS salary_assignments (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		effective_from TEXT NOT NULL,
		base TEXT NOT NULL DEFAULT '0',
		custom_total TEXT NOT NULL DEFAULT '0',
		submitted INTEGER NOT NULL DEFAULT 0
	);

	-- Latest assignment on or before a date (hot path)
	CREATE INDEX IF NOT EXISTS idx_salary_assignments_employee_from
		ON salary_assignments(employee_id, effective_from DESC);

	CREATE TABLE IF NOT EXISTS salary_slips (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		start_date TEXT,
		end_date TEXT NOT NULL,
		submitted INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_salary_slips_employee_end
		ON salary_slips(employee_id, end_date DESC);

	CREATE TABLE IF NOT EXISTS leave_types (
		name TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS leave_allocations (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		from_date TEXT NOT NULL,
		to_date TEXT NOT NULL,
		total_leaves_allocated TEXT NOT NULL DEFAULT '0',
		extra_days TEXT NOT NULL DEFAULT '0',
		submitted INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_leave_allocations_employee_type
		ON leave_allocations(employee_id, leave_type, from_date DESC);

	CREATE TABLE IF NOT EXISTS leave_applications (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		from_date TEXT NOT NULL,
		to_date TEXT NOT NULL,
		total_leave_days TEXT NOT NULL DEFAULT '0',
		status TEXT NOT NULL,
		submitted INTEGER NOT NULL DEFAULT 0
	);

	-- Usage totals per allocation window
	CREATE INDEX IF NOT EXISTS idx_leave_applications_employee_type_dates
		ON leave_applications(employee_id, leave_type, from_date, to_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LOOKUPS (records.Store interface)
// =============================================================================

// GetEmployee retrieves an employee by ID. Returns nil, nil when absent.
func (s *Store) GetEmployee(ctx context.Context, id string) (*records.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, status, date_of_joining, relieving_date, company_id
		FROM employees WHERE id = ?`, id)

	emp, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return emp, nil
}

// GetCompany retrieves a company by ID. Returns nil, nil when absent.
func (s *Store) GetCompany(ctx context.Context, id string) (*records.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c records.Company
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, default_currency FROM companies WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &c.DefaultCurrency)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// LatestSalaryAssignment returns the submitted assignment with the greatest
// effective date on or before asOf.
func (s *Store) LatestSalaryAssignment(ctx context.Context, employeeID string, asOf calendar.Date) (*records.SalaryAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var a records.SalaryAssignment
	var effectiveFrom, base, customTotal string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, effective_from, base, custom_total, submitted
		FROM salary_assignments
		WHERE employee_id = ? AND submitted = 1 AND effective_from <= ?
		ORDER BY effective_from DESC, id DESC
		LIMIT 1`,
		employeeID, asOf.String(),
	).Scan(&a.ID, &a.EmployeeID, &effectiveFrom, &base, &customTotal, &a.Submitted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if a.EffectiveFrom, err = parseDate("salary_assignments", "effective_from", effectiveFrom); err != nil {
		return nil, err
	}
	if a.Base, err = parseDecimal("salary_assignments", "base", base); err != nil {
		return nil, err
	}
	if a.CustomTotal, err = parseDecimal("salary_assignments", "custom_total", customTotal); err != nil {
		return nil, err
	}
	return &a, nil
}

// LatestSalarySlipEnd returns the end date of the latest submitted slip,
// or the zero Date when there is none.
func (s *Store) LatestSalarySlipEnd(ctx context.Context, employeeID string) (calendar.Date, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var end sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT MAX(end_date) FROM salary_slips WHERE employee_id = ? AND submitted = 1",
		employeeID,
	).Scan(&end)
	if err != nil {
		return calendar.Date{}, err
	}
	return parseNullDate("salary_slips", "end_date", end)
}

// LeaveTypesMatching returns leave type names containing keyword, ordered
// by name. SQLite's LIKE is case-insensitive for ASCII.
func (s *Store) LeaveTypesMatching(ctx context.Context, keyword string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM leave_types WHERE name LIKE ? ESCAPE '\' ORDER BY name`,
		containsPattern(keyword),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// LeaveAllocationCovering returns the submitted allocation of leaveType whose
// window contains at, latest from_date first.
func (s *Store) LeaveAllocationCovering(ctx context.Context, employeeID, leaveType string, at calendar.Date) (*records.LeaveAllocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var a records.LeaveAllocation
	var from, to, allocated, extra string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, leave_type, from_date, to_date,
		       total_leaves_allocated, extra_days, submitted
		FROM leave_allocations
		WHERE employee_id = ? AND leave_type = ? AND submitted = 1
		  AND from_date <= ? AND to_date >= ?
		ORDER BY from_date DESC, id DESC
		LIMIT 1`,
		employeeID, leaveType, at.String(), at.String(),
	).Scan(&a.ID, &a.EmployeeID, &a.LeaveType, &from, &to, &allocated, &extra, &a.Submitted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if a.FromDate, err = parseDate("leave_allocations", "from_date", from); err != nil {
		return nil, err
	}
	if a.ToDate, err = parseDate("leave_allocations", "to_date", to); err != nil {
		return nil, err
	}
	if a.TotalLeavesAllocated, err = parseDecimal("leave_allocations", "total_leaves_allocated", allocated); err != nil {
		return nil, err
	}
	if a.ExtraDays, err = parseDecimal("leave_allocations", "extra_days", extra); err != nil {
		return nil, err
	}
	return &a, nil
}

// SumLeaveDays totals submitted, approved applications of the given types
// lying entirely within window.
func (s *Store) SumLeaveDays(ctx context.Context, employeeID string, leaveTypes []string, window calendar.Period) (decimal.Decimal, error) {
	total := decimal.Zero
	if len(leaveTypes) == 0 {
		return total, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	args := []any{employeeID, records.LeaveStatusApproved, window.Start.String(), window.End.String()}
	for _, lt := range leaveTypes {
		args = append(args, lt)
	}
	query := `
		SELECT total_leave_days FROM leave_applications
		WHERE employee_id = ? AND submitted = 1 AND status = ?
		  AND from_date >= ? AND to_date <= ?
		  AND leave_type IN (` + placeholders(len(leaveTypes)) + `)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return total, err
	}
	defer rows.Close()

	for rows.Next() {
		var days string
		if err := rows.Scan(&days); err != nil {
			return decimal.Zero, err
		}
		v, err := parseDecimal("leave_applications", "total_leave_days", days)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(v)
	}
	return total, rows.Err()
}

// =============================================================================
// WRITES (records.Writer interface)
// =============================================================================

// SaveCompany upserts a company.
func (s *Store) SaveCompany(ctx context.Context, c records.Company) error {
	if c.ID == "" {
		return fmt.Errorf("company: %w: missing id", records.ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO companies (id, name, default_currency) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			default_currency = excluded.default_currency`,
		c.ID, c.Name, c.DefaultCurrency,
	)
	return err
}

// SaveEmployee upserts an employee.
func (s *Store) SaveEmployee(ctx context.Context, e records.Employee) error {
	if e.ID == "" {
		return fmt.Errorf("employee: %w: missing id", records.ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, status, date_of_joining, relieving_date, company_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			date_of_joining = excluded.date_of_joining,
			relieving_date = excluded.relieving_date,
			company_id = excluded.company_id`,
		e.ID, e.Name, e.Status,
		nullString(e.DateOfJoining.String()),
		nullString(e.RelievingDate.String()),
		nullString(e.CompanyID),
	)
	return err
}

// SaveSalaryAssignment upserts a salary assignment.
func (s *Store) SaveSalaryAssignment(ctx context.Context, a records.SalaryAssignment) error {
	if a.ID == "" {
		return fmt.Errorf("salary assignment: %w: missing id", records.ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO salary_assignments (id, employee_id, effective_from, base, custom_total, submitted)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			effective_from = excluded.effective_from,
			base = excluded.base,
			custom_total = excluded.custom_total,
			submitted = excluded.submitted`,
		a.ID, a.EmployeeID, a.EffectiveFrom.String(), a.Base.String(), a.CustomTotal.String(), a.Submitted,
	)
	return err
}

// SaveSalarySlip upserts a salary slip.
func (s *Store) SaveSalarySlip(ctx context.Context, sl records.SalarySlip) error {
	if sl.ID == "" {
		return fmt.Errorf("salary slip: %w: missing id", records.ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO salary_slips (id, employee_id, start_date, end_date, submitted)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			submitted = excluded.submitted`,
		sl.ID, sl.EmployeeID, nullString(sl.StartDate.String()), sl.EndDate.String(), sl.Submitted,
	)
	return err
}

// SaveLeaveType inserts a leave type if it does not exist.
func (s *Store) SaveLeaveType(ctx context.Context, t records.LeaveType) error {
	if t.Name == "" {
		return fmt.Errorf("leave type: %w: missing name", records.ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO leave_types (name) VALUES (?) ON CONFLICT(name) DO NOTHING", t.Name)
	return err
}

// SaveLeaveAllocation upserts a leave allocation.
func (s *Store) SaveLeaveAllocation(ctx context.Context, a records.LeaveAllocation) error {
	if a.ID == "" {
		return fmt.Errorf("leave allocation: %w: missing id", records.ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_allocations
		(id, employee_id, leave_type, from_date, to_date, total_leaves_allocated, extra_days, submitted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			leave_type = excluded.leave_type,
			from_date = excluded.from_date,
			to_date = excluded.to_date,
			total_leaves_allocated = excluded.total_leaves_allocated,
			extra_days = excluded.extra_days,
			submitted = excluded.submitted`,
		a.ID, a.EmployeeID, a.LeaveType, a.FromDate.String(), a.ToDate.String(),
		a.TotalLeavesAllocated.String(), a.ExtraDays.String(), a.Submitted,
	)
	return err
}

// SaveLeaveApplication upserts a leave application.
func (s *Store) SaveLeaveApplication(ctx context.Context, a records.LeaveApplication) error {
	if a.ID == "" {
		return fmt.Errorf("leave application: %w: missing id", records.ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_applications
		(id, employee_id, leave_type, from_date, to_date, total_leave_days, status, submitted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			leave_type = excluded.leave_type,
			from_date = excluded.from_date,
			to_date = excluded.to_date,
			total_leave_days = excluded.total_leave_days,
			status = excluded.status,
			submitted = excluded.submitted`,
		a.ID, a.EmployeeID, a.LeaveType, a.FromDate.String(), a.ToDate.String(),
		a.TotalLeaveDays.String(), a.Status, a.Submitted,
	)
	return err
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]records.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, status, date_of_joining, relieving_date, company_id
		FROM employees ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []records.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *emp)
	}
	return employees, rows.Err()
}

// Reset deletes every record in a single transaction.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{
		"leave_applications", "leave_allocations", "leave_types",
		"salary_slips", "salary_assignments", "employees", "companies",
	} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// =============================================================================
// HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*records.Employee, error) {
	var emp records.Employee
	var joined, relieving, company sql.NullString
	if err := row.Scan(&emp.ID, &emp.Name, &emp.Status, &joined, &relieving, &company); err != nil {
		return nil, err
	}

	var err error
	if emp.DateOfJoining, err = parseNullDate("employees", "date_of_joining", joined); err != nil {
		return nil, err
	}
	if emp.RelievingDate, err = parseNullDate("employees", "relieving_date", relieving); err != nil {
		return nil, err
	}
	emp.CompanyID = company.String
	return &emp, nil
}

func parseDate(table, column, value string) (calendar.Date, error) {
	d, err := calendar.ParseDate(value)
	if err != nil {
		return calendar.Date{}, &records.StoredDateError{Table: table, Column: column, Value: value, Err: err}
	}
	return d, nil
}

func parseNullDate(table, column string, value sql.NullString) (calendar.Date, error) {
	if !value.Valid {
		return calendar.Date{}, nil
	}
	return parseDate(table, column, value.String)
}

func parseDecimal(table, column, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s.%s: %w", table, column, err)
	}
	return d, nil
}

// containsPattern builds a LIKE pattern matching keyword anywhere, with
// LIKE wildcards in keyword escaped.
func containsPattern(keyword string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(keyword) + "%"
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
