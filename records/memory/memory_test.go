package memory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/settlement-engine/calendar"
	"github.com/warp/settlement-engine/records"
	"github.com/warp/settlement-engine/records/memory"
)

func d(s string) calendar.Date { return calendar.MustParseDate(s) }

func TestMemory_LatestSalaryAssignment(t *testing.T) {
	// GIVEN: Three assignments, one still a draft
	ctx := context.Background()
	m := memory.New()
	require.NoError(t, m.SaveSalaryAssignment(ctx, records.SalaryAssignment{
		ID: "ssa-1", EmployeeID: "emp-1", EffectiveFrom: d("2023-01-01"), Base: decimal.NewFromInt(2500), Submitted: true,
	}))
	require.NoError(t, m.SaveSalaryAssignment(ctx, records.SalaryAssignment{
		ID: "ssa-2", EmployeeID: "emp-1", EffectiveFrom: d("2024-01-01"), Base: decimal.NewFromInt(3000), Submitted: true,
	}))
	require.NoError(t, m.SaveSalaryAssignment(ctx, records.SalaryAssignment{
		ID: "ssa-3", EmployeeID: "emp-1", EffectiveFrom: d("2024-03-01"), Base: decimal.NewFromInt(9000),
	}))

	// WHEN/THEN: The latest submitted one on or before the date wins
	got, err := m.LatestSalaryAssignment(ctx, "emp-1", d("2024-06-20"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ssa-2", got.ID)

	got, err = m.LatestSalaryAssignment(ctx, "emp-1", d("2023-06-01"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ssa-1", got.ID)

	got, err = m.LatestSalaryAssignment(ctx, "emp-1", d("2022-12-31"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemory_LatestSalarySlipEnd_IgnoresDrafts(t *testing.T) {
	ctx := context.Background()
	m := memory.New()
	require.NoError(t, m.SaveSalarySlip(ctx, records.SalarySlip{ID: "s1", EmployeeID: "emp-1", EndDate: d("2024-04-30"), Submitted: true}))
	require.NoError(t, m.SaveSalarySlip(ctx, records.SalarySlip{ID: "s2", EmployeeID: "emp-1", EndDate: d("2024-05-31")}))

	end, err := m.LatestSalarySlipEnd(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, d("2024-04-30"), end)

	end, err = m.LatestSalarySlipEnd(ctx, "emp-2")
	require.NoError(t, err)
	assert.True(t, end.IsZero())
}

func TestMemory_LeaveTypesMatching_CaseInsensitiveAndSorted(t *testing.T) {
	ctx := context.Background()
	m := memory.New()
	for _, name := range []string{"Sick Leave", "Annual Leave - Senior", "annual leave", "Personal Leave"} {
		require.NoError(t, m.SaveLeaveType(ctx, records.LeaveType{Name: name}))
	}

	names, err := m.LeaveTypesMatching(ctx, "Annual")
	require.NoError(t, err)
	assert.Equal(t, []string{"Annual Leave - Senior", "annual leave"}, names)

	names, err = m.LeaveTypesMatching(ctx, "Maternity")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestMemory_LeaveAllocationCovering(t *testing.T) {
	ctx := context.Background()
	m := memory.New()
	require.NoError(t, m.SaveLeaveAllocation(ctx, records.LeaveAllocation{
		ID: "la-2023", EmployeeID: "emp-1", LeaveType: "Annual Leave",
		FromDate: d("2023-01-01"), ToDate: d("2023-12-31"), Submitted: true,
	}))
	require.NoError(t, m.SaveLeaveAllocation(ctx, records.LeaveAllocation{
		ID: "la-2024", EmployeeID: "emp-1", LeaveType: "Annual Leave",
		FromDate: d("2024-01-01"), ToDate: d("2024-12-31"), Submitted: true,
	}))

	got, err := m.LeaveAllocationCovering(ctx, "emp-1", "Annual Leave", d("2024-06-20"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "la-2024", got.ID)

	got, err = m.LeaveAllocationCovering(ctx, "emp-1", "Annual Leave", d("2025-01-01"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemory_SumLeaveDays_OnlyApprovedSubmittedInsideWindow(t *testing.T) {
	ctx := context.Background()
	m := memory.New()
	apps := []records.LeaveApplication{
		{ID: "a1", EmployeeID: "emp-1", LeaveType: "Annual Leave", FromDate: d("2024-02-05"), ToDate: d("2024-02-07"),
			TotalLeaveDays: decimal.NewFromInt(3), Status: records.LeaveStatusApproved, Submitted: true},
		{ID: "a2", EmployeeID: "emp-1", LeaveType: "Annual Leave", FromDate: d("2024-03-05"), ToDate: d("2024-03-05"),
			TotalLeaveDays: decimal.NewFromInt(1), Status: records.LeaveStatusOpen, Submitted: false},
		{ID: "a3", EmployeeID: "emp-1", LeaveType: "Annual Leave", FromDate: d("2023-12-30"), ToDate: d("2024-01-02"),
			TotalLeaveDays: decimal.NewFromInt(2), Status: records.LeaveStatusApproved, Submitted: true},
		{ID: "a4", EmployeeID: "emp-1", LeaveType: "Personal Leave", FromDate: d("2024-04-01"), ToDate: d("2024-04-01"),
			TotalLeaveDays: decimal.NewFromFloat(0.5), Status: records.LeaveStatusApproved, Submitted: true},
	}
	for _, a := range apps {
		require.NoError(t, m.SaveLeaveApplication(ctx, a))
	}
	year := calendar.Period{Start: d("2024-01-01"), End: d("2024-12-31")}

	total, err := m.SumLeaveDays(ctx, "emp-1", []string{"Annual Leave"}, year)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3).Equal(total), "got %s", total)

	total, err = m.SumLeaveDays(ctx, "emp-1", []string{"Annual Leave", "Personal Leave"}, year)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(3.5).Equal(total), "got %s", total)

	total, err = m.SumLeaveDays(ctx, "emp-1", nil, year)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestMemory_SaveRequiresKey(t *testing.T) {
	ctx := context.Background()
	m := memory.New()

	err := m.SaveEmployee(ctx, records.Employee{Name: "No ID"})
	assert.ErrorIs(t, err, records.ErrInvalidRecord)

	err = m.SaveLeaveType(ctx, records.LeaveType{})
	assert.ErrorIs(t, err, records.ErrInvalidRecord)
}

func TestMemory_ResetAndList(t *testing.T) {
	ctx := context.Background()
	m := memory.New()
	require.NoError(t, m.SaveEmployee(ctx, records.Employee{ID: "e2", Name: "Zed"}))
	require.NoError(t, m.SaveEmployee(ctx, records.Employee{ID: "e1", Name: "Amal"}))

	list, err := m.ListEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Amal", list[0].Name)

	require.NoError(t, m.Reset(ctx))
	list, err = m.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
