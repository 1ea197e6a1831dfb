/*
store.go - Persistence interface between the engine and the record source

PURPOSE:
  The engine is read-mostly: it loads a person's contracts, rate changes,
  holiday requests and tasks, and computes. The only writes it ever issues
  are the two it owns:

    1. CreateRateChange / CloseRateChange - the invariant-maintaining insert
       (at most one open-ended change per contract, and it is the latest)
    2. ApplyCarryover - the single increment of a contract's carryover fields
       at the semester boundary

  Everything else (person/contract/task/request CRUD) belongs to the
  administrative surface around the engine and is not part of this interface.

IMPLEMENTATIONS:
  - engine/store: in-memory, for tests and the dev server
  - store/sqlite: SQLite-backed production store
*/
package engine

import (
	"context"

	"github.com/shopspring/decimal"
)

// RecordStore is the data-access layer the engine computes from.
type RecordStore interface {
	// ContractsByPerson returns all contracts of a person, past and future
	// included. Order is not significant.
	ContractsByPerson(ctx context.Context, person PersonID) ([]Contract, error)

	// ContractByID returns a single contract or ErrContractNotFound.
	ContractByID(ctx context.Context, id ContractID) (Contract, error)

	// RateChangesByContract returns all rate changes of one contract.
	RateChangesByContract(ctx context.Context, contract ContractID) ([]RateChange, error)

	// HolidayRequestsByPerson returns all holiday requests of a person.
	HolidayRequestsByPerson(ctx context.Context, person PersonID) ([]HolidayRequest, error)

	// TasksByPerson returns all tasks assigned to a person.
	TasksByPerson(ctx context.Context, person PersonID) ([]Task, error)

	// CreateRateChange persists a new rate change.
	CreateRateChange(ctx context.Context, change RateChange) error

	// CloseRateChange sets the end date of a previously open-ended change.
	CloseRateChange(ctx context.Context, id RateChangeID, end Date) error

	// ApplyCarryover atomically increments both carryover fields of the
	// target contract. Called at most once per carryover transaction; either
	// both increments are applied or neither.
	ApplyCarryover(ctx context.Context, contract ContractID, hours, holidayHours decimal.Decimal) error
}

// FreeDaySource provides the public-holiday calendar for one region and year.
// Implementations must be deterministic for a given (region, year) and should
// cache, since the engine queries it for every day-level calculation.
type FreeDaySource interface {
	FreeDays(ctx context.Context, region string, year int) (map[Date]string, error)
}

// StaticFreeDays is a fixed date-to-name mapping that implements
// FreeDaySource, ignoring the region. Used in tests and as an offline
// fallback.
type StaticFreeDays map[Date]string

func (s StaticFreeDays) FreeDays(_ context.Context, _ string, year int) (map[Date]string, error) {
	out := make(map[Date]string)
	for d, name := range s {
		if d.Year() == year {
			out[d] = name
		}
	}
	return out, nil
}
