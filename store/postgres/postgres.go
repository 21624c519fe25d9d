/*
Package postgres provides a PostgreSQL-backed implementation of the record store.

PURPOSE:
  Same contract as store/sqlite (records.Store + records.Writer) for
  deployments where the HR records already live in PostgreSQL.

DIFFERENCES FROM SQLITE:
  - Dates are DATE columns, scanned into time.Time (NULL -> zero Date)
  - Day counts and money are NUMERIC, moved across the wire as text and
    parsed with shopspring/decimal so no value passes through float64
  - Keyword matching uses ILIKE (SQLite's LIKE is already case-insensitive)
  - Concurrency is left to the database and the pgx pool; no mutex

USAGE:
  store, err := postgres.Connect(ctx, os.Getenv("DATABASE_URL"))
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
*/
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/calendar"
	"github.com/warp/settlement-engine/records"
)

// Store implements records.Store and records.Writer on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ records.ReadWriter = (*Store)(nil)

// Connect opens a pool and migrates the schema.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}

	store := New(pool)
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// New wraps an existing pool. The schema is assumed to exist.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
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
		date_of_joining DATE,
		relieving_date DATE,
		company_id TEXT
	);

	CREATE TABLE IF NOT EXISTS salary_assignments (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		effective_from DATE NOT NULL,
		base NUMERIC(18, 4) NOT NULL DEFAULT 0,
		custom_total NUMERIC(18, 4) NOT NULL DEFAULT 0,
		submitted BOOLEAN NOT NULL DEFAULT FALSE
	);
	CREATE INDEX IF NOT EXISTS idx_salary_assignments_employee_from
		ON salary_assignments(employee_id, effective_from DESC);

	CREATE TABLE IF NOT EXISTS salary_slips (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		start_date DATE,
		end_date DATE NOT NULL,
		submitted BOOLEAN NOT NULL DEFAULT FALSE
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
		from_date DATE NOT NULL,
		to_date DATE NOT NULL,
		total_leaves_allocated NUMERIC(10, 2) NOT NULL DEFAULT 0,
		extra_days NUMERIC(10, 2) NOT NULL DEFAULT 0,
		submitted BOOLEAN NOT NULL DEFAULT FALSE
	);
	CREATE INDEX IF NOT EXISTS idx_leave_allocations_employee_type
		ON leave_allocations(employee_id, leave_type, from_date DESC);

	CREATE TABLE IF NOT EXISTS leave_applications (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		from_date DATE NOT NULL,
		to_date DATE NOT NULL,
		total_leave_days NUMERIC(10, 2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		submitted BOOLEAN NOT NULL DEFAULT FALSE
	);
	CREATE INDEX IF NOT EXISTS idx_leave_applications_employee_type_dates
		ON leave_applications(employee_id, leave_type, from_date, to_date);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// =============================================================================
// LOOKUPS
// =============================================================================

func (s *Store) GetEmployee(ctx context.Context, id string) (*records.Employee, error) {
	var emp records.Employee
	var joined, relieving *time.Time
	var company *string
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, status, date_of_joining, relieving_date, company_id
		FROM employees WHERE id = $1`, id,
	).Scan(&emp.ID, &emp.Name, &emp.Status, &joined, &relieving, &company)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	emp.DateOfJoining = fromNullDate(joined)
	emp.RelievingDate = fromNullDate(relieving)
	if company != nil {
		emp.CompanyID = *company
	}
	return &emp, nil
}

func (s *Store) GetCompany(ctx context.Context, id string) (*records.Company, error) {
	var c records.Company
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, default_currency FROM companies WHERE id = $1", id,
	).Scan(&c.ID, &c.Name, &c.DefaultCurrency)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) LatestSalaryAssignment(ctx context.Context, employeeID string, asOf calendar.Date) (*records.SalaryAssignment, error) {
	var a records.SalaryAssignment
	var from time.Time
	var base, customTotal string
	err := s.pool.QueryRow(ctx, `
		SELECT id, employee_id, effective_from, base::text, custom_total::text, submitted
		FROM salary_assignments
		WHERE employee_id = $1 AND submitted AND effective_from <= $2
		ORDER BY effective_from DESC, id DESC
		LIMIT 1`,
		employeeID, asOf.Time,
	).Scan(&a.ID, &a.EmployeeID, &from, &base, &customTotal, &a.Submitted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.EffectiveFrom = calendar.FromTime(from)
	if a.Base, err = parseNumeric("salary_assignments.base", base); err != nil {
		return nil, err
	}
	if a.CustomTotal, err = parseNumeric("salary_assignments.custom_total", customTotal); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) LatestSalarySlipEnd(ctx context.Context, employeeID string) (calendar.Date, error) {
	var end *time.Time
	err := s.pool.QueryRow(ctx,
		"SELECT MAX(end_date) FROM salary_slips WHERE employee_id = $1 AND submitted",
		employeeID,
	).Scan(&end)
	if err != nil {
		return calendar.Date{}, err
	}
	return fromNullDate(end), nil
}

// Byte order, matching the sqlite and memory stores regardless of the
// database locale.
const leaveTypesMatchingQuery = `SELECT name FROM leave_types WHERE name ILIKE $1 ORDER BY name COLLATE "C"`

func (s *Store) LeaveTypesMatching(ctx context.Context, keyword string) ([]string, error) {
	rows, err := s.pool.Query(ctx, leaveTypesMatchingQuery, containsPattern(keyword))
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *Store) LeaveAllocationCovering(ctx context.Context, employeeID, leaveType string, at calendar.Date) (*records.LeaveAllocation, error) {
	var a records.LeaveAllocation
	var from, to time.Time
	var allocated, extra string
	err := s.pool.QueryRow(ctx, `
		SELECT id, employee_id, leave_type, from_date, to_date,
		       total_leaves_allocated::text, extra_days::text, submitted
		FROM leave_allocations
		WHERE employee_id = $1 AND leave_type = $2 AND submitted
		  AND from_date <= $3 AND to_date >= $3
		ORDER BY from_date DESC, id DESC
		LIMIT 1`,
		employeeID, leaveType, at.Time,
	).Scan(&a.ID, &a.EmployeeID, &a.LeaveType, &from, &to, &allocated, &extra, &a.Submitted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.FromDate = calendar.FromTime(from)
	a.ToDate = calendar.FromTime(to)
	if a.TotalLeavesAllocated, err = parseNumeric("leave_allocations.total_leaves_allocated", allocated); err != nil {
		return nil, err
	}
	if a.ExtraDays, err = parseNumeric("leave_allocations.extra_days", extra); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) SumLeaveDays(ctx context.Context, employeeID string, leaveTypes []string, window calendar.Period) (decimal.Decimal, error) {
	if len(leaveTypes) == 0 {
		return decimal.Zero, nil
	}
	var total string
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_leave_days), 0)::text
		FROM leave_applications
		WHERE employee_id = $1 AND submitted AND status = $2
		  AND from_date >= $3 AND to_date <= $4
		  AND leave_type = ANY($5)`,
		employeeID, records.LeaveStatusApproved, window.Start.Time, window.End.Time, leaveTypes,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return parseNumeric("leave_applications.total_leave_days", total)
}

// =============================================================================
// WRITES
// =============================================================================

func (s *Store) SaveCompany(ctx context.Context, c records.Company) error {
	if c.ID == "" {
		return fmt.Errorf("company: %w: missing id", records.ErrInvalidRecord)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO companies (id, name, default_currency) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			default_currency = EXCLUDED.default_currency`,
		c.ID, c.Name, c.DefaultCurrency,
	)
	return err
}

func (s *Store) SaveEmployee(ctx context.Context, e records.Employee) error {
	if e.ID == "" {
		return fmt.Errorf("employee: %w: missing id", records.ErrInvalidRecord)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO employees (id, name, status, date_of_joining, relieving_date, company_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			status = EXCLUDED.status,
			date_of_joining = EXCLUDED.date_of_joining,
			relieving_date = EXCLUDED.relieving_date,
			company_id = EXCLUDED.company_id`,
		e.ID, e.Name, e.Status, nullDate(e.DateOfJoining), nullDate(e.RelievingDate), nullIfEmpty(e.CompanyID),
	)
	return err
}

func (s *Store) SaveSalaryAssignment(ctx context.Context, a records.SalaryAssignment) error {
	if a.ID == "" {
		return fmt.Errorf("salary assignment: %w: missing id", records.ErrInvalidRecord)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO salary_assignments (id, employee_id, effective_from, base, custom_total, submitted)
		VALUES ($1, $2, $3, $4::text::numeric, $5::text::numeric, $6)
		ON CONFLICT (id) DO UPDATE SET
			employee_id = EXCLUDED.employee_id,
			effective_from = EXCLUDED.effective_from,
			base = EXCLUDED.base,
			custom_total = EXCLUDED.custom_total,
			submitted = EXCLUDED.submitted`,
		a.ID, a.EmployeeID, a.EffectiveFrom.Time, a.Base.String(), a.CustomTotal.String(), a.Submitted,
	)
	return err
}

func (s *Store) SaveSalarySlip(ctx context.Context, sl records.SalarySlip) error {
	if sl.ID == "" {
		return fmt.Errorf("salary slip: %w: missing id", records.ErrInvalidRecord)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO salary_slips (id, employee_id, start_date, end_date, submitted)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			employee_id = EXCLUDED.employee_id,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			submitted = EXCLUDED.submitted`,
		sl.ID, sl.EmployeeID, nullDate(sl.StartDate), sl.EndDate.Time, sl.Submitted,
	)
	return err
}

func (s *Store) SaveLeaveType(ctx context.Context, t records.LeaveType) error {
	if t.Name == "" {
		return fmt.Errorf("leave type: %w: missing name", records.ErrInvalidRecord)
	}
	_, err := s.pool.Exec(ctx,
		"INSERT INTO leave_types (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", t.Name)
	return err
}

func (s *Store) SaveLeaveAllocation(ctx context.Context, a records.LeaveAllocation) error {
	if a.ID == "" {
		return fmt.Errorf("leave allocation: %w: missing id", records.ErrInvalidRecord)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO leave_allocations
		(id, employee_id, leave_type, from_date, to_date, total_leaves_allocated, extra_days, submitted)
		VALUES ($1, $2, $3, $4, $5, $6::text::numeric, $7::text::numeric, $8)
		ON CONFLICT (id) DO UPDATE SET
			employee_id = EXCLUDED.employee_id,
			leave_type = EXCLUDED.leave_type,
			from_date = EXCLUDED.from_date,
			to_date = EXCLUDED.to_date,
			total_leaves_allocated = EXCLUDED.total_leaves_allocated,
			extra_days = EXCLUDED.extra_days,
			submitted = EXCLUDED.submitted`,
		a.ID, a.EmployeeID, a.LeaveType, a.FromDate.Time, a.ToDate.Time,
		a.TotalLeavesAllocated.String(), a.ExtraDays.String(), a.Submitted,
	)
	return err
}

func (s *Store) SaveLeaveApplication(ctx context.Context, a records.LeaveApplication) error {
	if a.ID == "" {
		return fmt.Errorf("leave application: %w: missing id", records.ErrInvalidRecord)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO leave_applications
		(id, employee_id, leave_type, from_date, to_date, total_leave_days, status, submitted)
		VALUES ($1, $2, $3, $4, $5, $6::text::numeric, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			employee_id = EXCLUDED.employee_id,
			leave_type = EXCLUDED.leave_type,
			from_date = EXCLUDED.from_date,
			to_date = EXCLUDED.to_date,
			total_leave_days = EXCLUDED.total_leave_days,
			status = EXCLUDED.status,
			submitted = EXCLUDED.submitted`,
		a.ID, a.EmployeeID, a.LeaveType, a.FromDate.Time, a.ToDate.Time,
		a.TotalLeaveDays.String(), a.Status, a.Submitted,
	)
	return err
}

func (s *Store) ListEmployees(ctx context.Context) ([]records.Employee, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, status, date_of_joining, relieving_date, company_id
		FROM employees ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []records.Employee
	for rows.Next() {
		var emp records.Employee
		var joined, relieving *time.Time
		var company *string
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.Status, &joined, &relieving, &company); err != nil {
			return nil, err
		}
		emp.DateOfJoining = fromNullDate(joined)
		emp.RelievingDate = fromNullDate(relieving)
		if company != nil {
			emp.CompanyID = *company
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE leave_applications, leave_allocations, leave_types,
		salary_slips, salary_assignments, employees, companies`)
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func fromNullDate(t *time.Time) calendar.Date {
	if t == nil {
		return calendar.Date{}
	}
	return calendar.FromTime(*t)
}

func nullDate(d calendar.Date) *time.Time {
	if d.IsZero() {
		return nil
	}
	return &d.Time
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseNumeric reads a NUMERIC selected as text.
func parseNumeric(column, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", column, err)
	}
	return d, nil
}

// containsPattern builds an ILIKE pattern matching keyword anywhere. The
// default escape character is a backslash.
func containsPattern(keyword string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(keyword) + "%"
}
