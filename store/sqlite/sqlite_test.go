package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henrydatei/working-time-recording/engine"
	"github.com/henrydatei/working-time-recording/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(year int, month time.Month, day int) engine.Date {
	return engine.NewDate(year, month, day)
}

func seedPerson(t *testing.T, s *sqlite.Store, id string) engine.Person {
	t.Helper()
	p := engine.Person{ID: engine.PersonID(id), Name: "Test Person", Email: "test@example.com"}
	require.NoError(t, s.CreatePerson(context.Background(), p))
	return p
}

func seedContract(t *testing.T, s *sqlite.Store, id, person string, start, end engine.Date, hoursPerWeek int64) engine.Contract {
	t.Helper()
	c := engine.Contract{
		ID:                    engine.ContractID(id),
		PersonID:              engine.PersonID(person),
		Start:                 start,
		End:                   end,
		HoursPerWeek:          decimal.NewFromInt(hoursPerWeek),
		CarryoverHours:        decimal.Zero,
		CarryoverHolidayHours: decimal.Zero,
	}
	require.NoError(t, s.CreateContract(context.Background(), c))
	return c
}

// =============================================================================
// ROUND TRIPS
// =============================================================================

func TestStore_PersonRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	want := seedPerson(t, s, "p-1")

	got, err := s.PersonByID(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	people, err := s.People(ctx)
	require.NoError(t, err)
	assert.Len(t, people, 1)
}

func TestStore_PersonNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.PersonByID(context.Background(), "missing")
	assert.ErrorIs(t, err, engine.ErrPersonNotFound)
}

func TestStore_ContractRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedPerson(t, s, "p-1")
	seedContract(t, s, "c-1", "p-1", date(2023, time.April, 1), date(2023, time.September, 30), 5)
	seedContract(t, s, "c-2", "p-1", date(2023, time.October, 1), date(2024, time.March, 31), 10)

	contracts, err := s.ContractsByPerson(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, contracts, 2)

	// Ordered by start date.
	assert.Equal(t, engine.ContractID("c-1"), contracts[0].ID)
	assert.Equal(t, date(2023, time.April, 1), contracts[0].Start)
	assert.True(t, contracts[0].HoursPerWeek.Equal(decimal.NewFromInt(5)))

	got, err := s.ContractByID(ctx, "c-2")
	require.NoError(t, err)
	assert.True(t, got.HoursPerWeek.Equal(decimal.NewFromInt(10)))

	_, err = s.ContractByID(ctx, "missing")
	assert.ErrorIs(t, err, engine.ErrContractNotFound)
}

func TestStore_ContractPreservesDecimalText(t *testing.T) {
	// Fractional rates survive the TEXT round trip exactly.
	s := newTestStore(t)
	ctx := context.Background()

	seedPerson(t, s, "p-1")
	c := engine.Contract{
		ID:                    "c-1",
		PersonID:              "p-1",
		Start:                 date(2023, time.April, 1),
		End:                   date(2023, time.September, 30),
		HoursPerWeek:          decimal.RequireFromString("7.25"),
		CarryoverHours:        decimal.RequireFromString("1.6"),
		CarryoverHolidayHours: decimal.RequireFromString("-0.4"),
	}
	require.NoError(t, s.CreateContract(ctx, c))

	got, err := s.ContractByID(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "7.25", got.HoursPerWeek.String())
	assert.Equal(t, "1.6", got.CarryoverHours.String())
	assert.Equal(t, "-0.4", got.CarryoverHolidayHours.String())
}

func TestStore_RateChangeRoundTripAndClose(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedPerson(t, s, "p-1")
	seedContract(t, s, "c-1", "p-1", date(2023, time.June, 12), date(2023, time.June, 18), 5)

	require.NoError(t, s.CreateRateChange(ctx, engine.RateChange{
		ID: "rc-1", ContractID: "c-1",
		Start:        date(2023, time.June, 14),
		HoursPerWeek: decimal.NewFromInt(10),
	}))

	changes, err := s.RateChangesByContract(ctx, "c-1")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Nil(t, changes[0].End, "open end must come back as nil")

	require.NoError(t, s.CloseRateChange(ctx, "rc-1", date(2023, time.June, 15)))

	changes, err = s.RateChangesByContract(ctx, "c-1")
	require.NoError(t, err)
	require.NotNil(t, changes[0].End)
	assert.Equal(t, date(2023, time.June, 15), *changes[0].End)
}

func TestStore_CloseRateChange_Missing(t *testing.T) {
	s := newTestStore(t)

	err := s.CloseRateChange(context.Background(), "missing", date(2023, time.June, 15))
	assert.Error(t, err)
}

func TestStore_HolidayRequestsAndTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedPerson(t, s, "p-1")
	require.NoError(t, s.CreateHolidayRequest(ctx, engine.HolidayRequest{
		ID: "h-1", PersonID: "p-1",
		From: date(2023, time.May, 2), To: date(2023, time.May, 3),
	}))
	require.NoError(t, s.CreateTask(ctx, engine.Task{
		ID: "t-1", PersonID: "p-1", AssignerID: "p-1",
		Text:        "Grade exercise sheets",
		TotalHours:  decimal.NewFromInt(4),
		WorkedHours: decimal.NewFromInt(2),
		Deadline:    date(2023, time.June, 18),
	}))

	requests, err := s.HolidayRequestsByPerson(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, date(2023, time.May, 2), requests[0].From)

	tasks, err := s.TasksByPerson(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Grade exercise sheets", tasks[0].Text)
	assert.True(t, tasks[0].WorkedHours.Equal(decimal.NewFromInt(2)))
}

// =============================================================================
// CARRYOVER WRITE
// =============================================================================

func TestStore_ApplyCarryover(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seedPerson(t, s, "p-1")
	seedContract(t, s, "c-1", "p-1", date(2023, time.June, 26), date(2023, time.June, 30), 5)

	require.NoError(t, s.ApplyCarryover(ctx, "c-1",
		decimal.NewFromInt(3), decimal.NewFromInt(2)))

	got, err := s.ContractByID(ctx, "c-1")
	require.NoError(t, err)
	assert.True(t, got.CarryoverHours.Equal(decimal.NewFromInt(3)))
	assert.True(t, got.CarryoverHolidayHours.Equal(decimal.NewFromInt(2)))

	// A second application increments on top of the first.
	require.NoError(t, s.ApplyCarryover(ctx, "c-1",
		decimal.NewFromInt(1), decimal.Zero))

	got, err = s.ContractByID(ctx, "c-1")
	require.NoError(t, err)
	assert.True(t, got.CarryoverHours.Equal(decimal.NewFromInt(4)))
	assert.True(t, got.CarryoverHolidayHours.Equal(decimal.NewFromInt(2)))
}

func TestStore_ApplyCarryover_MissingContract(t *testing.T) {
	s := newTestStore(t)

	err := s.ApplyCarryover(context.Background(), "missing",
		decimal.NewFromInt(1), decimal.Zero)
	assert.ErrorIs(t, err, engine.ErrContractNotFound)
}

// =============================================================================
// ENGINE ON SQLITE
// =============================================================================

func TestEngine_WorksAgainstSQLite(t *testing.T) {
	// The full work-time aggregation against the real store.
	s := newTestStore(t)
	ctx := context.Background()

	seedPerson(t, s, "p-1")
	seedContract(t, s, "c-1", "p-1", date(2023, time.June, 12), date(2023, time.June, 18), 5)
	require.NoError(t, s.CreateRateChange(ctx, engine.RateChange{
		ID: "rc-1", ContractID: "c-1",
		Start:        date(2023, time.June, 14),
		HoursPerWeek: decimal.NewFromInt(10),
	}))

	eng := engine.New(s, engine.StaticFreeDays{}, "SN", nil)
	wt, err := eng.WorkingTime(ctx, "p-1", date(2023, time.August, 13))
	require.NoError(t, err)
	assert.True(t, wt.HoursToWork.Equal(decimal.NewFromInt(8)),
		"want 8, got %s", wt.HoursToWork.String())
}
