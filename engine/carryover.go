/*
carryover.go - The semester carryover transaction

PURPOSE:
  At the boundary between employment periods, move unused hours and unused
  holiday balance from the ending period onto the contract of the new one.

ALGORITHM:
  1. lastEnd      = max(end) over contracts with end < today
  2. lastContracts = every contract ending exactly on lastEnd (simultaneous
     multi-contract endings carry together)
  3. Re-evaluate working time, holiday balance and the employment window with
     the reference date pinned to lastEnd - the same pure functions, a past
     "now" - and the mean daily rate over every day of that window
  4. hours        = Σ lastContracts.carryoverHours + excess(lastEnd)
     holidayHours = Σ lastContracts.carryoverHolidayHours
                  + (entitlement(lastEnd) - taken(lastEnd)) × avgDailyRate
  5. Target = the currently active contract with the longest duration; its
     carryover fields are incremented once, atomically.

FAILURE:
  No past contract or no currently active contract is a precondition failure;
  the transaction never writes a partial or zero carryover. The whole
  read-compute-write runs under the per-person lock so two concurrent
  rollovers cannot double-apply.
*/
package engine

import (
	"context"

	"github.com/shopspring/decimal"
)

// Carryover runs the semester carryover transaction for a person as of today.
func (e *Engine) Carryover(ctx context.Context, person PersonID, today Date) (CarryoverResult, error) {
	lock := e.lockFor(person)
	lock.Lock()
	defer lock.Unlock()

	recs, err := e.loadPerson(ctx, person)
	if err != nil {
		return CarryoverResult{}, err
	}

	var lastEnd Date
	for _, c := range recs.contracts {
		if c.End.Before(today) && c.End.After(lastEnd) {
			lastEnd = c.End
		}
	}
	if lastEnd.IsZero() {
		return CarryoverResult{}, &NoContractError{PersonID: person, Reason: "no past contract to carry over from"}
	}

	var lastContracts []Contract
	for _, c := range recs.contracts {
		if c.End.Equal(lastEnd) {
			lastContracts = append(lastContracts, c)
		}
	}

	// Everything below re-runs the ordinary calculators pinned to lastEnd.
	work, err := e.WorkingTime(ctx, person, lastEnd)
	if err != nil {
		return CarryoverResult{}, err
	}
	balance, err := e.HolidayBalance(ctx, person, lastEnd)
	if err != nil {
		return CarryoverResult{}, err
	}
	window, err := employmentWindow(person, recs.contracts, lastEnd)
	if err != nil {
		return CarryoverResult{}, err
	}

	free := e.freeDays(ctx, window.Start, window.End)
	sum := decimal.Zero
	days := window.Days()
	for _, d := range days {
		sum = sum.Add(rateOnDay(recs, free, d))
	}
	avgDaily := sum.Div(decimal.NewFromInt(int64(len(days))))

	hours := work.ExcessHours
	holidayHours := balance.Entitlement.
		Sub(decimal.NewFromInt(int64(balance.TakenDays))).
		Mul(avgDaily)
	for _, c := range lastContracts {
		hours = hours.Add(c.CarryoverHours)
		holidayHours = holidayHours.Add(c.CarryoverHolidayHours)
	}

	target, ok := carryoverTarget(recs.contracts, today)
	if !ok {
		return CarryoverResult{}, &NoContractError{PersonID: person, Reason: "no active contract to carry over to"}
	}

	if err := e.store.ApplyCarryover(ctx, target.ID, hours, holidayHours); err != nil {
		return CarryoverResult{}, err
	}

	e.logger.Info("carryover applied",
		"person", person, "target", target.ID, "lastEnd", lastEnd.String(),
		"hours", hours.String(), "holidayHours", holidayHours.String())

	return CarryoverResult{Hours: hours, HolidayHours: holidayHours, TargetContract: target.ID}, nil
}

// carryoverTarget picks the currently active contract with the longest
// duration.
func carryoverTarget(contracts []Contract, today Date) (Contract, bool) {
	var target Contract
	found := false
	for _, c := range contracts {
		if !c.ActiveOn(today) {
			continue
		}
		if !found || c.DurationDays() > target.DurationDays() {
			target = c
			found = true
		}
	}
	return target, found
}
