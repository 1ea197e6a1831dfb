package engine

import (
	"context"

	"github.com/shopspring/decimal"
)

var (
	daysPerMonth           = 30
	entitlementPerYearDays = decimal.NewFromInt(20)
	monthsPerYear          = decimal.NewFromInt(12)
)

// HolidayBalance computes the holiday account of a person within
// employmentWindow(person, ref).
//
// Entitlement accrues per contract from full 30-day months of duration,
// 20 days per 12 months, rounded half away from zero to whole days.
// Entitlement is day-based: a contract's weekly hours do not change it.
// Prior carryover arrives in hours and is converted to day-equivalents at
// each contract's own rate. Taken days are requested leave net of public
// holidays that would have been free anyway.
func (e *Engine) HolidayBalance(ctx context.Context, person PersonID, ref Date) (HolidayBalance, error) {
	recs, err := e.loadPerson(ctx, person)
	if err != nil {
		return HolidayBalance{}, err
	}
	window, err := employmentWindow(person, recs.contracts, ref)
	if err != nil {
		return HolidayBalance{}, err
	}
	free := e.freeDays(ctx, window.Start, window.End)

	entitlement := decimal.Zero
	notTaken := decimal.Zero
	for _, c := range contractsInWindow(recs.contracts, window) {
		months := int64(c.DurationDays() / daysPerMonth)
		entitlement = entitlement.Add(
			decimal.NewFromInt(months).Mul(entitlementPerYearDays).Div(monthsPerYear).Round(0))

		if !c.CarryoverHolidayHours.IsZero() && !c.HoursPerWeek.IsZero() {
			notTaken = notTaken.Add(
				c.CarryoverHolidayHours.Div(c.HoursPerWeek).Mul(workdaysPerWeek))
		}
	}

	taken := 0
	for _, req := range recs.requests {
		if !window.Contains(req.From) || !window.Contains(req.To) {
			continue
		}
		b, err := BusinessDays(req.From, req.To)
		if err != nil {
			return HolidayBalance{}, err
		}
		taken += b - countFreeDays(free, req.From, req.To)
	}

	return HolidayBalance{
		Entitlement: entitlement,
		NotTaken:    notTaken,
		TakenDays:   taken,
		Remaining:   entitlement.Add(notTaken).Sub(decimal.NewFromInt(int64(taken))),
	}, nil
}
