/*
errors.go - Centralized error types for the accounting engine

ERROR CATEGORIES:
  1. Interval errors - a date pair with from > to, or a rate change placed
     outside its parent contract
  2. Resolution errors - no contract exists from which an employment window
     or a carryover could be derived
  3. Calendar errors - the public-holiday source is unreachable

Interval and resolution errors abort the calculation; coercing them to zero
would misstate hours and balances. Calendar errors are different: inside the
calculators they degrade to "no public holidays" with a logged warning, and
only surface as errors where the caller asked for the holidays themselves.
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInterval is returned for any date pair with from after to.
	ErrInvalidInterval = errors.New("invalid interval: from after to")

	// ErrNoActiveOrPastContract is returned when the employment window cannot
	// be resolved or the carryover transaction has no eligible past or target
	// contract.
	ErrNoActiveOrPastContract = errors.New("no active or past contract")

	// ErrCalendarUnavailable is returned when the free-day source cannot be
	// reached for a requested region/year.
	ErrCalendarUnavailable = errors.New("holiday calendar unavailable")

	// ErrContractNotFound is returned when a referenced contract does not exist.
	ErrContractNotFound = errors.New("contract not found")

	// ErrPersonNotFound is returned when a referenced person does not exist.
	ErrPersonNotFound = errors.New("person not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// IntervalError reports which date pair was inverted.
type IntervalError struct {
	From Date
	To   Date
}

func (e *IntervalError) Error() string {
	return fmt.Sprintf("invalid interval: %s after %s", e.From, e.To)
}

func (e *IntervalError) Unwrap() error { return ErrInvalidInterval }

// OutsideContractError reports a rate change whose start does not fall within
// its parent contract.
type OutsideContractError struct {
	ContractID ContractID
	Contract   Period
	Start      Date
}

func (e *OutsideContractError) Error() string {
	return fmt.Sprintf("rate change start %s outside contract %s period %s",
		e.Start, e.ContractID, e.Contract)
}

func (e *OutsideContractError) Unwrap() error { return ErrInvalidInterval }

// NoContractError reports why a window or carryover could not be resolved.
type NoContractError struct {
	PersonID PersonID
	Reason   string // e.g. "no contracts", "no past contract", "no active contract"
}

func (e *NoContractError) Error() string {
	return fmt.Sprintf("person %s: %s", e.PersonID, e.Reason)
}

func (e *NoContractError) Unwrap() error { return ErrNoActiveOrPastContract }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid input rather than
// an infrastructure failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrNoActiveOrPastContract)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrContractNotFound) ||
		errors.Is(err, ErrPersonNotFound)
}
