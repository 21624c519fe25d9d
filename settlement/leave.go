package settlement

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/calendar"
	"go.uber.org/zap"
)

// =============================================================================
// LEAVE ENCASHMENT
// =============================================================================

// LeaveEncashment is the unused annual leave payable at the cutoff.
type LeaveEncashment struct {
	Days decimal.Decimal

	// AllocationID references the first covering allocation, in leave type
	// name order. Empty when no annual allocation covers the cutoff.
	AllocationID string

	Variants []LeaveVariant
}

// LeaveVariant is the balance of one annual leave type.
type LeaveVariant struct {
	LeaveType    string
	AllocationID string
	Window       calendar.Period
	Allocated    decimal.Decimal
	AnnualUsed   decimal.Decimal
	PersonalUsed decimal.Decimal
	Remaining    decimal.Decimal
}

// ComputeLeaveEncashment nets every annual leave type's allocation covering
// the cutoff against annual and personal leave taken in that allocation's
// window. Each variant is clamped at zero before summing.
func (c *Calculator) ComputeLeaveEncashment(ctx context.Context, employeeID string, cutoff calendar.Date) (*LeaveEncashment, error) {
	annualTypes, err := c.store.LeaveTypesMatching(ctx, AnnualKeyword)
	if err != nil {
		return nil, fmt.Errorf("list annual leave types: %w", err)
	}
	personalTypes, err := c.store.LeaveTypesMatching(ctx, PersonalKeyword)
	if err != nil {
		return nil, fmt.Errorf("list personal leave types: %w", err)
	}

	result := &LeaveEncashment{Days: decimal.Zero}
	for _, leaveType := range annualTypes {
		alloc, err := c.store.LeaveAllocationCovering(ctx, employeeID, leaveType, cutoff)
		if err != nil {
			return nil, fmt.Errorf("load %s allocation for %s: %w", leaveType, employeeID, err)
		}
		if alloc == nil {
			continue
		}
		if result.AllocationID == "" {
			result.AllocationID = alloc.ID
		}

		window := alloc.Window()
		annualUsed, err := c.store.SumLeaveDays(ctx, employeeID, []string{leaveType}, window)
		if err != nil {
			return nil, fmt.Errorf("sum %s leave for %s: %w", leaveType, employeeID, err)
		}
		personalUsed, err := c.store.SumLeaveDays(ctx, employeeID, personalTypes, window)
		if err != nil {
			return nil, fmt.Errorf("sum personal leave for %s: %w", employeeID, err)
		}

		variant := LeaveVariant{
			LeaveType:    leaveType,
			AllocationID: alloc.ID,
			Window:       window,
			Allocated:    alloc.Total(),
			AnnualUsed:   annualUsed,
			PersonalUsed: personalUsed,
		}
		variant.Remaining = decimal.Max(decimal.Zero, variant.Allocated.Sub(annualUsed.Add(personalUsed)))
		result.Variants = append(result.Variants, variant)
		result.Days = result.Days.Add(variant.Remaining)
	}

	c.log.Debug("leave encashment",
		zap.String("employee", employeeID),
		zap.Int("variants", len(result.Variants)),
		zap.String("encashable_days", result.Days.String()),
	)
	return result, nil
}
