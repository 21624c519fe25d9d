package settlement

import (
	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/calendar"
)

// =============================================================================
// SERVICE / TENURE
// =============================================================================

// Service is the tenure between joining and the cutoff.
type Service struct {
	Years      int
	Months     int
	Days       int
	TotalDays  int
	TotalYears decimal.Decimal
}

// ServiceBetween walks whole years then whole months forward from the join
// date and reports the leftover calendar days. Each step starts from the
// previous one, so a clamped step (Jan 31 -> Feb 29) carries its day forward.
// A missing join date or a cutoff before joining yields a zero Service.
func ServiceBetween(joined, cutoff calendar.Date) Service {
	if joined.IsZero() || cutoff.IsZero() || cutoff.Before(joined) {
		return Service{TotalYears: decimal.Zero}
	}

	cursor := joined
	years := 0
	for {
		next := calendar.AddYearsClamped(cursor, 1)
		if next.After(cutoff) {
			break
		}
		years++
		cursor = next
	}

	months := 0
	for {
		next := calendar.AddMonthsClamped(cursor, 1)
		if next.After(cutoff) {
			break
		}
		months++
		cursor = next
	}

	totalDays := calendar.InclusiveDays(joined, cutoff)
	return Service{
		Years:      years,
		Months:     months,
		Days:       calendar.DaysBetween(cursor, cutoff),
		TotalDays:  totalDays,
		TotalYears: decimal.NewFromInt(int64(totalDays)).Div(daysPerYear),
	}
}
