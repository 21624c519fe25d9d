package settlement_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/settlement-engine/calendar"
	"github.com/warp/settlement-engine/settlement"
)

func TestServiceBetween(t *testing.T) {
	tests := []struct {
		name                string
		joined, cutoff      string
		years, months, days int
		totalDays           int
	}{
		{"exact anniversaries", "2020-01-15", "2023-01-15", 3, 0, 0, 1097},
		{"months and days", "2024-03-10", "2024-06-20", 0, 3, 10, 103},
		{"same day", "2024-06-20", "2024-06-20", 0, 0, 0, 1},
		{"leap day anniversary in common year", "2020-02-29", "2021-02-28", 1, 0, 0, 366},
		{"clamped leap day carries into later years", "2020-02-29", "2024-02-28", 4, 0, 0, 1461},
		{"clamped month end carries into later months", "2024-01-31", "2024-03-30", 0, 2, 1, 60},
		{"month end join across a short february", "2023-08-31", "2024-02-28", 0, 5, 29, 182},
		{"one calendar year", "2023-01-01", "2023-12-31", 0, 11, 30, 365},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := settlement.ServiceBetween(d(tt.joined), d(tt.cutoff))
			assert.Equal(t, tt.years, got.Years, "years")
			assert.Equal(t, tt.months, got.Months, "months")
			assert.Equal(t, tt.days, got.Days, "days")
			assert.Equal(t, tt.totalDays, got.TotalDays, "total days")
		})
	}
}

func TestServiceBetween_TotalYearsUsesFixedYear(t *testing.T) {
	got := settlement.ServiceBetween(d("2023-01-01"), d("2023-12-31"))
	assertDecimal(t, "1", got.TotalYears)

	got = settlement.ServiceBetween(d("2020-01-15"), d("2023-01-15"))
	assertDecimal(t, "1097", got.TotalYears.Mul(dec("365")).Round(0))
}

func TestServiceBetween_ZeroWhenUndefined(t *testing.T) {
	for name, got := range map[string]settlement.Service{
		"missing join":       settlement.ServiceBetween(calendar.Date{}, d("2024-06-20")),
		"cutoff before join": settlement.ServiceBetween(d("2024-06-20"), d("2024-06-19")),
	} {
		assert.Zero(t, got.Years, name)
		assert.Zero(t, got.Months, name)
		assert.Zero(t, got.Days, name)
		assert.Zero(t, got.TotalDays, name)
		assert.True(t, got.TotalYears.IsZero(), name)
	}
}

func TestFullAndFinal_ReportsService(t *testing.T) {
	f := newFixture(t)
	f.leaver("emp-1", "2024-03-10", "2024-06-20")
	f.salary("ssa-1", "emp-1", "2024-01-01", 3000)

	result := f.compute("emp-1", "")

	assert.True(t, result.OK)
	assert.Equal(t, 0, result.Payload.Service.Years)
	assert.Equal(t, 3, result.Payload.Service.Months)
	assert.Equal(t, 10, result.Payload.Service.Days)
}
