/*
Package engine implements the temporal accounting core for working-time
recording of part-time student employees.

PURPOSE:
  Turns raw contract, rate-change, holiday-request and task records into the
  three numbers the rest of the system cares about: hours expected to have
  been worked, holiday days remaining, and carryover into the next contract
  period. Contracts may overlap, rates may change mid-contract with open-ended
  validity, and every calculation can be pinned to a past reference date.

KEY CONCEPTS IN THIS FILE (types.go):
  - Date:    A day-granularity calendar date (the engine never needs hours)
  - Period:  An inclusive [Start, End] date range
  - Contract / RateChange / HolidayRequest / Task: the input records
  - WorkTime / HolidayBalance / CarryoverResult: the computed outputs

DESIGN PRINCIPLES:
  1. Explicit time: every calculation takes a reference date, nothing in this
     package reads the wall clock
  2. Precision: decimal.Decimal for all hour quantities, no float drift
  3. Read-mostly: only the carryover transaction and the rate-change insert
     mutate anything, and both go through the RecordStore

SEE ALSO:
  - worktime.go:  hours-expected aggregation
  - holiday.go:   entitlement and balance
  - carryover.go: the semester rollover transaction
*/
package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// workdaysPerWeek converts a weekly hours rate into a daily one (Mon-Fri).
var workdaysPerWeek = decimal.NewFromInt(5)

// =============================================================================
// DATE - Day-granularity calendar date
// =============================================================================

// Date is a calendar date at UTC midnight. It is comparable and therefore
// usable as a map key; all constructors normalize to UTC.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic and properties
func (d Date) AddDays(n int) Date {
	t := d.Time.AddDate(0, 0, n)
	return NewDate(t.Year(), t.Month(), t.Day())
}
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (d Date) String() string { return d.Time.Format("2006-01-02") }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysBetween returns the number of days from `from` (inclusive) to `to`
// (exclusive). Negative when `to` precedes `from`.
func DaysBetween(from, to Date) int {
	return int(to.Time.Sub(from.Time).Hours() / 24)
}

// MinDate returns the earlier of two dates.
func MinDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

// MaxDate returns the later of two dates.
func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

type Period struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Contains reports whether d falls within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every calendar day in the period, weekends included.
func (p Period) Days() []Date {
	var days []Date
	for d := p.Start; d.BeforeOrEqual(p.End); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type PersonID string
type ContractID string
type RateChangeID string

// =============================================================================
// RECORDS - The raw inputs the engine consumes
// =============================================================================

// Person is an employee. The engine only ever needs the ID; the rest exists
// for the directory surface around it.
type Person struct {
	ID    PersonID
	Name  string
	Email string
}

// Contract is a dated employment agreement with a base weekly-hours rate.
// Multiple contracts of one person may overlap (two part-time roles). The
// carryover fields are the only thing the engine ever mutates, and only
// during the carryover transaction.
type Contract struct {
	ID           ContractID
	PersonID     PersonID
	SupervisorID PersonID
	Start        Date
	End          Date
	HoursPerWeek decimal.Decimal

	// Unused hours and unused holiday balance (expressed in hours) moved in
	// from the previous employment period.
	CarryoverHours        decimal.Decimal
	CarryoverHolidayHours decimal.Decimal
}

// ActiveOn reports whether the contract covers the given day.
func (c Contract) ActiveOn(d Date) bool {
	return d.AfterOrEqual(c.Start) && d.BeforeOrEqual(c.End)
}

// DurationDays is the exclusive day span of the contract, used for entitlement
// months and for picking the carryover target among simultaneously active
// contracts.
func (c Contract) DurationDays() int {
	return DaysBetween(c.Start, c.End)
}

// RateChange overrides the weekly-hours rate of exactly one contract from
// Start onward. A nil End means open-ended: valid until the parent contract
// ends or until superseded by a later change.
type RateChange struct {
	ID           RateChangeID
	ContractID   ContractID
	Start        Date
	End          *Date
	HoursPerWeek decimal.Decimal
}

// EffectiveEnd resolves the open end against the parent contract.
func (rc RateChange) EffectiveEnd(parent Contract) Date {
	if rc.End != nil {
		return *rc.End
	}
	return parent.End
}

// ActiveOn reports whether the change applies on the given day.
func (rc RateChange) ActiveOn(parent Contract, d Date) bool {
	return d.AfterOrEqual(rc.Start) && d.BeforeOrEqual(rc.EffectiveEnd(parent))
}

// HolidayRequest is a contiguous block of requested leave.
type HolidayRequest struct {
	ID       string
	PersonID PersonID
	From     Date
	To       Date
}

// Task carries planned and actually worked hours against a deadline. The
// engine treats WorkedHours > TotalHours as given; the invariant is enforced
// upstream.
type Task struct {
	ID          string
	PersonID    PersonID
	AssignerID  PersonID
	Text        string
	TotalHours  decimal.Decimal
	WorkedHours decimal.Decimal
	Deadline    Date
}

// =============================================================================
// RESULTS - Computed outputs
// =============================================================================

// WorkTime is the work-time account of a person within their employment
// window, evaluated against a reference date.
type WorkTime struct {
	HoursToWork  decimal.Decimal
	WorkedHours  decimal.Decimal
	PlannedHours decimal.Decimal
	ExcessHours  decimal.Decimal
}

// HolidayBalance is the holiday account of a person within their employment
// window. NotTaken is prior carryover converted into day-equivalents at each
// contract's rate; TakenDays is requested leave net of public holidays.
type HolidayBalance struct {
	Entitlement decimal.Decimal
	NotTaken    decimal.Decimal
	TakenDays   int
	Remaining   decimal.Decimal
}

// CarryoverResult is what the carryover transaction moved onto the target
// contract.
type CarryoverResult struct {
	Hours          decimal.Decimal
	HolidayHours   decimal.Decimal
	TargetContract ContractID
}
