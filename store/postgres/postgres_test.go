package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/settlement-engine/calendar"
	"github.com/warp/settlement-engine/records"
)

// These tests cover the parts of the store that run without a server.

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		keyword string
		want    string
	}{
		{"Annual", "%Annual%"},
		{"100% Leave", `%100\% Leave%`},
		{"half_day", `%half\_day%`},
		{`C:\leave`, `%C:\\leave%`},
		{"", "%%"},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			assert.Equal(t, tt.want, containsPattern(tt.keyword))
		})
	}
}

func TestLeaveTypesMatchingQuery_OrdersByByteCollation(t *testing.T) {
	// GIVEN: Leave type names that differ only in case
	// THEN: Ordering must not depend on the database locale
	assert.Contains(t, leaveTypesMatchingQuery, `ORDER BY name COLLATE "C"`)
	assert.Contains(t, leaveTypesMatchingQuery, "ILIKE $1")
}

func TestParseNumeric(t *testing.T) {
	got, err := parseNumeric("leave_allocations.extra_days", "2.50")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2.5").Equal(got))

	_, err = parseNumeric("leave_allocations.extra_days", "NaN?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leave_allocations.extra_days")
}

func TestNullableDates(t *testing.T) {
	assert.True(t, fromNullDate(nil).IsZero())
	assert.Nil(t, nullDate(calendar.Date{}))

	d := calendar.MustParseDate("2024-06-20")
	stored := nullDate(d)
	require.NotNil(t, stored)
	assert.Equal(t, "2024-06-20", stored.Format(time.DateOnly))
	assert.True(t, d.Equal(fromNullDate(stored)))
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	require.NotNil(t, nullIfEmpty("acme"))
	assert.Equal(t, "acme", *nullIfEmpty("acme"))
}

func TestSave_RejectsMissingKeysBeforeQuerying(t *testing.T) {
	// GIVEN: A store without a pool
	// WHEN: Saving records without their key
	// THEN: The record is rejected without touching the database
	s := &Store{}
	ctx := context.Background()

	assert.ErrorIs(t, s.SaveCompany(ctx, records.Company{Name: "Acme"}), records.ErrInvalidRecord)
	assert.ErrorIs(t, s.SaveEmployee(ctx, records.Employee{Name: "Alice"}), records.ErrInvalidRecord)
	assert.ErrorIs(t, s.SaveLeaveType(ctx, records.LeaveType{}), records.ErrInvalidRecord)
	assert.ErrorIs(t, s.SaveLeaveAllocation(ctx, records.LeaveAllocation{}), records.ErrInvalidRecord)
}

func TestSumLeaveDays_NoTypesSkipsQuery(t *testing.T) {
	s := &Store{}
	window := calendar.Period{Start: calendar.MustParseDate("2024-01-01"), End: calendar.MustParseDate("2024-12-31")}

	got, err := s.SumLeaveDays(context.Background(), "emp-1", nil, window)

	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://%zz")
	assert.ErrorContains(t, err, "failed to parse database url")
}
