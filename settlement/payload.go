package settlement

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/calendar"
	"go.uber.org/zap"
)

// =============================================================================
// PAYLOAD ASSEMBLER
// =============================================================================

// Payable components and the record types they reference.
const (
	ComponentWorkedDay       = "Worked Day"
	ComponentLeaveEncashment = "Leave Encashment"

	RefSalaryAssignment = "Salary Structure Assignment"
	RefLeaveAllocation  = "Leave Allocation"
)

// LineItem is one payable row of the settlement document.
type LineItem struct {
	Component             string
	DayCount              decimal.Decimal
	RatePerDay            decimal.Decimal
	Amount                decimal.Decimal
	ReferenceDocumentType string
	ReferenceDocument     string
}

// Payload is a successful settlement computation.
type Payload struct {
	EmployeeID      string
	CompanyCurrency string // "" when the employee has no company
	Payables        []LineItem
	TotalPayable    decimal.Decimal
	Service         Service
	Cutoff          calendar.Date
	WorkedWindow    calendar.Period

	Pay   *ProratedPay
	Leave *LeaveEncashment
}

// Result is the caller-facing outcome: a payload, or a rejection message.
type Result struct {
	OK      bool
	Message string
	Payload *Payload
}

// Compute runs the full pipeline. Business rejections are returned as *Error;
// any other error is an infrastructure failure.
func (c *Calculator) Compute(ctx context.Context, employeeID string, requested calendar.Date) (*Payload, error) {
	emp, err := c.ValidateEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	cutoff := c.cutoffFor(emp, requested)
	c.log.Debug("cutoff resolved",
		zap.String("employee", emp.ID),
		zap.Stringer("requested", requested),
		zap.Stringer("relieving", emp.RelievingDate),
		zap.Stringer("cutoff", cutoff),
	)

	pay, err := c.proratedPay(ctx, emp, cutoff)
	if err != nil {
		return nil, err
	}

	leave, err := c.ComputeLeaveEncashment(ctx, emp.ID, cutoff)
	if err != nil {
		return nil, err
	}

	service := ServiceBetween(emp.DateOfJoining, cutoff)

	currency, err := c.currencyFor(ctx, emp)
	if err != nil {
		return nil, err
	}

	worked := LineItem{
		Component:             ComponentWorkedDay,
		DayCount:              decimal.NewFromInt(int64(pay.WorkedDays)),
		RatePerDay:            pay.DailyRate,
		Amount:                pay.Amount,
		ReferenceDocumentType: RefSalaryAssignment,
		ReferenceDocument:     pay.AssignmentID,
	}
	encashment := LineItem{
		Component:             ComponentLeaveEncashment,
		DayCount:              leave.Days,
		RatePerDay:            pay.DailyRate,
		Amount:                leave.Days.Mul(pay.DailyRate),
		ReferenceDocumentType: RefLeaveAllocation,
		ReferenceDocument:     leave.AllocationID,
	}

	return &Payload{
		EmployeeID:      emp.ID,
		CompanyCurrency: currency,
		Payables:        []LineItem{worked, encashment},
		TotalPayable:    worked.Amount.Add(encashment.Amount),
		Service:         service,
		Cutoff:          cutoff,
		WorkedWindow:    pay.Window,
		Pay:             pay,
		Leave:           leave,
	}, nil
}

// FullAndFinal is the inbound call contract. Business rejections become a
// Result with OK false; only infrastructure failures return an error.
func (c *Calculator) FullAndFinal(ctx context.Context, employeeID string, requested calendar.Date) (Result, error) {
	payload, err := c.Compute(ctx, employeeID, requested)
	if err != nil {
		if rejection, ok := AsRejection(err); ok {
			c.log.Info("settlement rejected",
				zap.String("employee", employeeID),
				zap.String("kind", string(rejection.Kind)),
				zap.String("message", rejection.Message),
			)
			return Result{OK: false, Message: rejection.Message}, nil
		}
		return Result{}, err
	}
	return Result{OK: true, Payload: payload}, nil
}
