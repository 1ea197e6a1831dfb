package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Engine wires the record store and the free-day source into the calculators.
// All methods are safe for concurrent use across different people; the
// carryover transaction serializes per person.
type Engine struct {
	store  RecordStore
	source FreeDaySource
	region string
	logger *slog.Logger

	mu    sync.Mutex
	locks map[PersonID]*sync.Mutex
}

// New creates an engine for one holiday-calendar region. A nil logger
// defaults to slog.Default().
func New(store RecordStore, source FreeDaySource, region string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		source: source,
		region: region,
		logger: logger,
		locks:  make(map[PersonID]*sync.Mutex),
	}
}

// lockFor returns the per-person mutex guarding mutations.
func (e *Engine) lockFor(person PersonID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[person]
	if !ok {
		l = &sync.Mutex{}
		e.locks[person] = l
	}
	return l
}

// personRecords is one person's complete input set, loaded once per
// calculation so every helper works on the same snapshot.
type personRecords struct {
	contracts []Contract
	changes   map[ContractID][]RateChange
	requests  []HolidayRequest
	tasks     []Task
}

func (e *Engine) loadPerson(ctx context.Context, person PersonID) (personRecords, error) {
	contracts, err := e.store.ContractsByPerson(ctx, person)
	if err != nil {
		return personRecords{}, fmt.Errorf("loading contracts: %w", err)
	}
	changes := make(map[ContractID][]RateChange, len(contracts))
	for _, c := range contracts {
		ccs, err := e.store.RateChangesByContract(ctx, c.ID)
		if err != nil {
			return personRecords{}, fmt.Errorf("loading rate changes for contract %s: %w", c.ID, err)
		}
		changes[c.ID] = ccs
	}
	requests, err := e.store.HolidayRequestsByPerson(ctx, person)
	if err != nil {
		return personRecords{}, fmt.Errorf("loading holiday requests: %w", err)
	}
	tasks, err := e.store.TasksByPerson(ctx, person)
	if err != nil {
		return personRecords{}, fmt.Errorf("loading tasks: %w", err)
	}
	return personRecords{contracts: contracts, changes: changes, requests: requests, tasks: tasks}, nil
}

// FreeDays returns the public holidays of the engine's region in [from, to],
// both inclusive. Spans crossing year boundaries query the source per year
// and merge. Unlike the internal lookups this surfaces source failures.
func (e *Engine) FreeDays(ctx context.Context, from, to Date) (map[Date]string, error) {
	if from.After(to) {
		return nil, &IntervalError{From: from, To: to}
	}
	out := make(map[Date]string)
	for year := from.Year(); year <= to.Year(); year++ {
		days, err := e.source.FreeDays(ctx, e.region, year)
		if err != nil {
			return nil, fmt.Errorf("%w: region %s year %d: %v", ErrCalendarUnavailable, e.region, year, err)
		}
		for d, name := range days {
			if d.AfterOrEqual(from) && d.BeforeOrEqual(to) {
				out[d] = name
			}
		}
	}
	return out, nil
}

// freeDays is the degrading variant used inside the calculators: a source
// failure is logged and the affected year contributes no public holidays.
// An availability gap in the calendar is lower-severity than aborting
// contract math, but it must never be silent.
func (e *Engine) freeDays(ctx context.Context, from, to Date) map[Date]string {
	out := make(map[Date]string)
	if from.After(to) {
		return out
	}
	for year := from.Year(); year <= to.Year(); year++ {
		days, err := e.source.FreeDays(ctx, e.region, year)
		if err != nil {
			e.logger.Warn("free-day source unavailable, assuming no public holidays",
				"region", e.region, "year", year, "error", err)
			continue
		}
		for d, name := range days {
			if d.AfterOrEqual(from) && d.BeforeOrEqual(to) {
				out[d] = name
			}
		}
	}
	return out
}

// countFreeDays counts the public holidays from the map falling in [from, to].
func countFreeDays(free map[Date]string, from, to Date) int {
	n := 0
	for d := range free {
		if d.AfterOrEqual(from) && d.BeforeOrEqual(to) {
			n++
		}
	}
	return n
}
