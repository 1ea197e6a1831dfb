package engine

import (
	"context"

	"github.com/shopspring/decimal"
)

// RateOnDay computes the hours a person is scheduled to work on one specific
// calendar day: zero on weekends and public holidays, otherwise the sum of
// hoursPerWeek/5 over every contract active that day plus the delta
// (change.hoursPerWeek - contract.hoursPerWeek)/5 for every rate change
// active that day. Concurrently active contracts layer additively.
func (e *Engine) RateOnDay(ctx context.Context, person PersonID, day Date) (decimal.Decimal, error) {
	recs, err := e.loadPerson(ctx, person)
	if err != nil {
		return decimal.Zero, err
	}
	free := e.freeDays(ctx, day, day)
	return rateOnDay(recs, free, day), nil
}

func rateOnDay(recs personRecords, free map[Date]string, day Date) decimal.Decimal {
	if day.IsWeekend() {
		return decimal.Zero
	}
	if _, isFree := free[day]; isFree {
		return decimal.Zero
	}

	total := decimal.Zero
	for _, c := range recs.contracts {
		if !c.ActiveOn(day) {
			continue
		}
		total = total.Add(c.HoursPerWeek.Div(workdaysPerWeek))
		for _, rc := range recs.changes[c.ID] {
			if rc.ActiveOn(c, day) {
				total = total.Add(rc.HoursPerWeek.Sub(c.HoursPerWeek).Div(workdaysPerWeek))
			}
		}
	}
	return total
}
