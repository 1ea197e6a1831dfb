package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AddRateChange validates and persists a rate change while maintaining the
// invariant that a contract has at most one open-ended change and that it is
// the chronologically latest: if the most recently started existing change of
// the same contract is still open, its end is set to the day before the new
// change starts. Only that latest open change is closed; earlier open changes
// are left untouched.
//
// The change's start must fall within the parent contract's period. An empty
// ID is assigned on insert.
func (e *Engine) AddRateChange(ctx context.Context, change RateChange) (RateChange, error) {
	parent, err := e.store.ContractByID(ctx, change.ContractID)
	if err != nil {
		return RateChange{}, err
	}

	lock := e.lockFor(parent.PersonID)
	lock.Lock()
	defer lock.Unlock()

	if !parent.ActiveOn(change.Start) {
		return RateChange{}, &OutsideContractError{
			ContractID: parent.ID,
			Contract:   Period{Start: parent.Start, End: parent.End},
			Start:      change.Start,
		}
	}
	if change.End != nil && change.End.Before(change.Start) {
		return RateChange{}, &IntervalError{From: change.Start, To: *change.End}
	}

	existing, err := e.store.RateChangesByContract(ctx, change.ContractID)
	if err != nil {
		return RateChange{}, err
	}
	var latest *RateChange
	for i := range existing {
		if latest == nil || existing[i].Start.After(latest.Start) {
			latest = &existing[i]
		}
	}
	if latest != nil && latest.End == nil {
		if err := e.store.CloseRateChange(ctx, latest.ID, change.Start.AddDays(-1)); err != nil {
			return RateChange{}, fmt.Errorf("closing open rate change %s: %w", latest.ID, err)
		}
	}

	if change.ID == "" {
		change.ID = RateChangeID(uuid.NewString())
	}
	if err := e.store.CreateRateChange(ctx, change); err != nil {
		return RateChange{}, err
	}
	return change, nil
}
