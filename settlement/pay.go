package settlement

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/calendar"
	"github.com/warp/settlement-engine/records"
	"go.uber.org/zap"
)

// =============================================================================
// PRORATED PAY
// =============================================================================

// ProratedPay is the pay owed for the final partial work period.
type ProratedPay struct {
	WorkedDays   int
	MonthlyRate  decimal.Decimal
	DailyRate    decimal.Decimal
	Amount       decimal.Decimal
	AssignmentID string
	Window       calendar.Period

	// FullMonth is set when the cutoff closes an untruncated month and the
	// monthly rate is paid as is.
	FullMonth bool
}

// ComputeProratedPay prices the work period ending at cutoff.
func (c *Calculator) ComputeProratedPay(ctx context.Context, employeeID string, cutoff calendar.Date) (*ProratedPay, error) {
	emp, err := c.loadEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return c.proratedPay(ctx, emp, cutoff)
}

func (c *Calculator) proratedPay(ctx context.Context, emp *records.Employee, cutoff calendar.Date) (*ProratedPay, error) {
	assignment, err := c.store.LatestSalaryAssignment(ctx, emp.ID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("load salary assignment for %s: %w", emp.ID, err)
	}
	if assignment == nil {
		return nil, noAssignment(emp.ID)
	}

	slipEnd, err := c.store.LatestSalarySlipEnd(ctx, emp.ID)
	if err != nil {
		return nil, fmt.Errorf("load salary slips for %s: %w", emp.ID, err)
	}

	window := WorkWindow(cutoff, emp.DateOfJoining, slipEnd)
	monthly := assignment.MonthlyRate()
	daily := monthly.Div(fixedMonthDays)

	pay := &ProratedPay{
		WorkedDays:   window.Days(),
		MonthlyRate:  monthly,
		DailyRate:    daily,
		AssignmentID: assignment.ID,
		Window:       window,
	}
	if calendar.IsLastDayOfMonth(cutoff) && window.Start.Equal(calendar.StartOfMonth(cutoff)) {
		pay.FullMonth = true
		pay.WorkedDays = FixedMonthDays
		pay.Amount = monthly
	} else {
		pay.Amount = daily.Mul(decimal.NewFromInt(int64(pay.WorkedDays)))
	}

	c.log.Debug("prorated pay",
		zap.String("employee", emp.ID),
		zap.String("assignment", assignment.ID),
		zap.Stringer("window", window),
		zap.Int("worked_days", pay.WorkedDays),
		zap.Bool("full_month", pay.FullMonth),
	)
	return pay, nil
}

// WorkWindow returns the unpaid period ending at cutoff. It starts at the
// latest of the cutoff month's first day, the join date, and the day after
// the last submitted salary slip. Zero join or slip dates are ignored.
func WorkWindow(cutoff, joined, lastSlipEnd calendar.Date) calendar.Period {
	candidates := []calendar.Date{calendar.StartOfMonth(cutoff), joined}
	if !lastSlipEnd.IsZero() {
		candidates = append(candidates, lastSlipEnd.AddDays(1))
	}
	return calendar.Period{Start: calendar.Max(candidates...), End: cutoff}
}
