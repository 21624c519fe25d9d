package settlement

import (
	"context"
	"fmt"

	"github.com/warp/settlement-engine/calendar"
	"github.com/warp/settlement-engine/records"
)

// =============================================================================
// EMPLOYEE RESOLVER
// =============================================================================

// ValidateEmployee checks that a settlement can be computed for the employee:
// the record exists, a relieving date is set, and the status is not Active.
// It returns the loaded employee so later steps work from the same snapshot.
func (c *Calculator) ValidateEmployee(ctx context.Context, employeeID string) (*records.Employee, error) {
	emp, err := c.loadEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if err := validate(emp); err != nil {
		return nil, err
	}
	return emp, nil
}

func validate(emp *records.Employee) error {
	if emp.RelievingDate.IsZero() {
		return invalid(emp.ID, MsgRelievingDateMissing)
	}
	if emp.IsActive() {
		return invalid(emp.ID, MsgEmployeeActive)
	}
	return nil
}

// ResolveCutoffDate returns the settlement reference date: the earlier of the
// requested transaction date and the relieving date. A zero requested date
// means "not supplied".
func (c *Calculator) ResolveCutoffDate(ctx context.Context, employeeID string, requested calendar.Date) (calendar.Date, error) {
	emp, err := c.loadEmployee(ctx, employeeID)
	if err != nil {
		return calendar.Date{}, err
	}
	return c.cutoffFor(emp, requested), nil
}

func (c *Calculator) cutoffFor(emp *records.Employee, requested calendar.Date) calendar.Date {
	relieving := emp.RelievingDate
	switch {
	case !relieving.IsZero() && !requested.IsZero():
		return calendar.Min(requested, relieving)
	case !relieving.IsZero():
		return relieving
	case !requested.IsZero():
		return requested
	default:
		// Unreachable after validation; kept so the function is total.
		return c.today()
	}
}

// CompanyCurrency follows Employee.company -> Company.default_currency.
// It returns "" when the employee has no company or the company is unknown.
func (c *Calculator) CompanyCurrency(ctx context.Context, employeeID string) (string, error) {
	emp, err := c.loadEmployee(ctx, employeeID)
	if err != nil {
		return "", err
	}
	return c.currencyFor(ctx, emp)
}

func (c *Calculator) currencyFor(ctx context.Context, emp *records.Employee) (string, error) {
	if emp.CompanyID == "" {
		return "", nil
	}
	company, err := c.store.GetCompany(ctx, emp.CompanyID)
	if err != nil {
		return "", fmt.Errorf("load company %s: %w", emp.CompanyID, err)
	}
	if company == nil {
		return "", nil
	}
	return company.DefaultCurrency, nil
}

func (c *Calculator) loadEmployee(ctx context.Context, employeeID string) (*records.Employee, error) {
	emp, err := c.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("load employee %s: %w", employeeID, err)
	}
	if emp == nil {
		return nil, notFound(employeeID)
	}
	return emp, nil
}
