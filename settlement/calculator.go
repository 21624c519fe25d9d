/*
Package settlement computes a full & final payout for a departing employee.

PURPOSE:
  Given an employee and an optional transaction date, derive:
    1. the prorated pay for the final partial work period,
    2. the cash value of unused annual leave net of personal leave taken,
    3. a tenure summary (years / months / days and decimal years),
  and assemble them into the payload consumed by the settlement document.

PIPELINE (payload.go):
  validate -> resolve cutoff -> prorated pay -> leave encashment
  -> service -> currency -> payables + total

  Validation and pay failures short-circuit before any leave or service
  work runs. No partial payload is ever returned.

CONVENTIONS:
  - Daily rate = monthly rate / 30, for every month (FixedMonthDays)
  - Decimal years = inclusive service days / 365 (DaysPerYear)
  - Leave categories are keyword matches on the leave type name

STATE:
  A Calculator holds only its collaborators. Every call reads a fresh
  snapshot from the Store; nothing is cached or written.

SEE ALSO:
  - records/store.go: the lookups this package depends on
  - api/handlers.go: HTTP exposure of FullAndFinal
*/
package settlement

import (
	"github.com/shopspring/decimal"
	"github.com/warp/settlement-engine/calendar"
	"github.com/warp/settlement-engine/records"
	"go.uber.org/zap"
)

const (
	// FixedMonthDays is the divisor for the daily rate and the day count
	// reported for a full-month payout.
	FixedMonthDays = 30

	// DaysPerYear converts service days into decimal years.
	DaysPerYear = 365

	// AnnualKeyword selects encashable leave types.
	AnnualKeyword = "Annual"

	// PersonalKeyword selects leave types that reduce the encashable balance.
	PersonalKeyword = "Personal"
)

var (
	fixedMonthDays = decimal.NewFromInt(FixedMonthDays)
	daysPerYear    = decimal.NewFromInt(DaysPerYear)
)

// Calculator computes settlements against a record store.
type Calculator struct {
	store records.Store
	log   *zap.Logger
	today func() calendar.Date
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(c *Calculator) {
		if log != nil {
			c.log = log
		}
	}
}

// WithClock overrides "today", used only when an employee has neither a
// relieving date nor a requested transaction date.
func WithClock(today func() calendar.Date) Option {
	return func(c *Calculator) {
		if today != nil {
			c.today = today
		}
	}
}

func NewCalculator(store records.Store, opts ...Option) *Calculator {
	c := &Calculator{
		store: store,
		log:   zap.NewNop(),
		today: calendar.Today,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
