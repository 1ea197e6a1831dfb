package engine

import "context"

// EmploymentWindow resolves the contiguous employment interval of a person as
// of a reference date.
//
// If any contracts are active on asOf, the window fuses all of them:
// (min start, max end) over the active set, ignoring past or future contracts
// entirely even where they would extend the range. If none is active (between
// semesters), the window degrades to the single contract with the latest end
// date overall and uses its own [start, end].
//
// The two branches are deliberately asymmetric: "no active contract" means
// "last known contract", not an empty window, and the fallback does not union
// contracts sharing the same latest end date. Callers must not assume one
// definition for both branches.
func (e *Engine) EmploymentWindow(ctx context.Context, person PersonID, asOf Date) (Period, error) {
	recs, err := e.loadPerson(ctx, person)
	if err != nil {
		return Period{}, err
	}
	return employmentWindow(person, recs.contracts, asOf)
}

func employmentWindow(person PersonID, contracts []Contract, asOf Date) (Period, error) {
	if len(contracts) == 0 {
		return Period{}, &NoContractError{PersonID: person, Reason: "no contracts"}
	}

	var window Period
	active := false
	for _, c := range contracts {
		if !c.ActiveOn(asOf) {
			continue
		}
		if !active {
			window = Period{Start: c.Start, End: c.End}
			active = true
			continue
		}
		window.Start = MinDate(window.Start, c.Start)
		window.End = MaxDate(window.End, c.End)
	}
	if active {
		return window, nil
	}

	latest := contracts[0]
	for _, c := range contracts[1:] {
		if c.End.After(latest.End) {
			latest = c
		}
	}
	return Period{Start: latest.Start, End: latest.End}, nil
}

// contractsInWindow selects the contracts fully contained in the window.
// Contracts of past periods fall outside and are excluded from aggregation.
func contractsInWindow(contracts []Contract, window Period) []Contract {
	var in []Contract
	for _, c := range contracts {
		if window.Contains(c.Start) && window.Contains(c.End) {
			in = append(in, c)
		}
	}
	return in
}
