/*
worktime.go - Work-time accounting aggregation

PURPOSE:
  Integrates the daily rate over the employment window to answer "how many
  hours should this person have worked by now", then sets actual worked and
  planned hours from tasks against it.

SHAPE OF THE CALCULATION:
  hoursToWork = Σ contracts  daysToWork(contract span)  × rate/5
              + Σ changes    daysToWork(change span)    × delta/5
              - Σ requests   Σ rateOnDay over requested days
  excess      = hoursToWork - workedHours

  Holiday days taken are credited via the per-day schedule, not a flat rate,
  so leave on a higher- or lower-rate day subtracts the right amount.

REFERENCE DATE:
  Expected days never extend past the reference date; spans that have not
  started yet contribute zero. The same function pinned to a past date drives
  the semester carryover.
*/
package engine

import (
	"context"

	"github.com/shopspring/decimal"
)

// DaysToWork counts the expected working days of [from, to] as of ref:
// business days in [from, min(ref, to)] minus the public holidays in that
// same clipped range. A range that starts after ref yields zero.
func (e *Engine) DaysToWork(ctx context.Context, from, to, ref Date) (int, error) {
	if from.After(to) {
		return 0, &IntervalError{From: from, To: to}
	}
	end := MinDate(to, ref)
	if end.Before(from) {
		return 0, nil
	}
	free := e.freeDays(ctx, from, end)
	return daysToWork(from, to, ref, free)
}

func daysToWork(from, to, ref Date, free map[Date]string) (int, error) {
	if from.After(to) {
		return 0, &IntervalError{From: from, To: to}
	}
	end := MinDate(to, ref)
	if end.Before(from) {
		return 0, nil
	}
	b, err := BusinessDays(from, end)
	if err != nil {
		return 0, err
	}
	return b - countFreeDays(free, from, end), nil
}

// WorkingTime computes the work-time account of a person within
// employmentWindow(person, ref): hours expected to have been worked as of
// ref, hours actually worked and planned from tasks with a deadline inside
// the window, and the resulting excess.
func (e *Engine) WorkingTime(ctx context.Context, person PersonID, ref Date) (WorkTime, error) {
	recs, err := e.loadPerson(ctx, person)
	if err != nil {
		return WorkTime{}, err
	}
	window, err := employmentWindow(person, recs.contracts, ref)
	if err != nil {
		return WorkTime{}, err
	}
	free := e.freeDays(ctx, window.Start, window.End)

	hoursToWork := decimal.Zero
	for _, c := range contractsInWindow(recs.contracts, window) {
		days, err := daysToWork(c.Start, c.End, ref, free)
		if err != nil {
			return WorkTime{}, err
		}
		hoursToWork = hoursToWork.Add(
			decimal.NewFromInt(int64(days)).Mul(c.HoursPerWeek).Div(workdaysPerWeek))

		for _, rc := range recs.changes[c.ID] {
			if !window.Contains(rc.Start) {
				continue
			}
			days, err := daysToWork(rc.Start, rc.EffectiveEnd(c), ref, free)
			if err != nil {
				return WorkTime{}, err
			}
			delta := rc.HoursPerWeek.Sub(c.HoursPerWeek)
			hoursToWork = hoursToWork.Add(
				decimal.NewFromInt(int64(days)).Mul(delta).Div(workdaysPerWeek))
		}
	}

	// Leave taken is excluded day by day at the scheduled rate.
	for _, req := range recs.requests {
		if !window.Contains(req.From) || !window.Contains(req.To) {
			continue
		}
		for d := req.From; d.BeforeOrEqual(req.To); d = d.AddDays(1) {
			hoursToWork = hoursToWork.Sub(rateOnDay(recs, free, d))
		}
	}

	worked := decimal.Zero
	planned := decimal.Zero
	for _, t := range recs.tasks {
		if !window.Contains(t.Deadline) {
			continue
		}
		worked = worked.Add(t.WorkedHours)
		planned = planned.Add(t.TotalHours)
	}

	return WorkTime{
		HoursToWork:  hoursToWork,
		WorkedHours:  worked,
		PlannedHours: planned,
		ExcessHours:  hoursToWork.Sub(worked),
	}, nil
}
