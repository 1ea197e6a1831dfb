// Package store provides an in-memory RecordStore for tests and the dev
// server.
package store

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/henrydatei/working-time-recording/engine"
)

// Memory holds all records in maps guarded by a single RWMutex. Reads return
// copies so callers never observe later mutations.
type Memory struct {
	mu          sync.RWMutex
	people      map[engine.PersonID]engine.Person
	contracts   map[engine.ContractID]engine.Contract
	rateChanges map[engine.RateChangeID]engine.RateChange
	requests    []engine.HolidayRequest
	tasks       []engine.Task
}

func NewMemory() *Memory {
	return &Memory{
		people:      make(map[engine.PersonID]engine.Person),
		contracts:   make(map[engine.ContractID]engine.Contract),
		rateChanges: make(map[engine.RateChangeID]engine.RateChange),
	}
}

// Compile-time check.
var _ engine.RecordStore = (*Memory)(nil)

// =============================================================================
// RECORD STORE - What the engine reads and writes
// =============================================================================

func (m *Memory) ContractsByPerson(_ context.Context, person engine.PersonID) ([]engine.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.Contract
	for _, c := range m.contracts {
		if c.PersonID == person {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) ContractByID(_ context.Context, id engine.ContractID) (engine.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contracts[id]
	if !ok {
		return engine.Contract{}, engine.ErrContractNotFound
	}
	return c, nil
}

func (m *Memory) RateChangesByContract(_ context.Context, contract engine.ContractID) ([]engine.RateChange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.RateChange
	for _, rc := range m.rateChanges {
		if rc.ContractID == contract {
			out = append(out, copyChange(rc))
		}
	}
	return out, nil
}

func (m *Memory) HolidayRequestsByPerson(_ context.Context, person engine.PersonID) ([]engine.HolidayRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.HolidayRequest
	for _, r := range m.requests {
		if r.PersonID == person {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) TasksByPerson(_ context.Context, person engine.PersonID) ([]engine.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.Task
	for _, t := range m.tasks {
		if t.PersonID == person {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Memory) CreateRateChange(_ context.Context, change engine.RateChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateChanges[change.ID] = copyChange(change)
	return nil
}

func (m *Memory) CloseRateChange(_ context.Context, id engine.RateChangeID, end engine.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rc, ok := m.rateChanges[id]
	if !ok {
		return engine.ErrContractNotFound
	}
	rc.End = &end
	m.rateChanges[id] = rc
	return nil
}

func (m *Memory) ApplyCarryover(_ context.Context, contract engine.ContractID, hours, holidayHours decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.contracts[contract]
	if !ok {
		return engine.ErrContractNotFound
	}
	c.CarryoverHours = c.CarryoverHours.Add(hours)
	c.CarryoverHolidayHours = c.CarryoverHolidayHours.Add(holidayHours)
	m.contracts[contract] = c
	return nil
}

// =============================================================================
// DIRECTORY - Administrative CRUD around the engine
// =============================================================================

func (m *Memory) CreatePerson(_ context.Context, p engine.Person) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.people[p.ID] = p
	return nil
}

func (m *Memory) PersonByID(_ context.Context, id engine.PersonID) (engine.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.people[id]
	if !ok {
		return engine.Person{}, engine.ErrPersonNotFound
	}
	return p, nil
}

func (m *Memory) People(_ context.Context) ([]engine.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.Person, 0, len(m.people))
	for _, p := range m.people {
		out = append(out, p)
	}
	return out, nil
}

func (m *Memory) CreateContract(_ context.Context, c engine.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts[c.ID] = c
	return nil
}

func (m *Memory) CreateHolidayRequest(_ context.Context, r engine.HolidayRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, r)
	return nil
}

func (m *Memory) CreateTask(_ context.Context, t engine.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, t)
	return nil
}

func copyChange(rc engine.RateChange) engine.RateChange {
	if rc.End != nil {
		end := *rc.End
		rc.End = &end
	}
	return rc
}
