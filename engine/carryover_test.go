package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henrydatei/working-time-recording/engine"
)

// =============================================================================
// SEMESTER CARRYOVER
// =============================================================================

func TestCarryover_Simple(t *testing.T) {
	// GIVEN: Last week's 5-hour contract with 2 of 5 hours worked, and a new
	//        contract starting today
	// WHEN: Running the carryover
	// THEN: The 3 unworked hours move onto the new contract

	eng, mem := newTestEngine(t, nil)
	ctx := context.Background()

	require.NoError(t, mem.CreateContract(ctx, contract("c-1", "p-1",
		date(2023, time.June, 19), date(2023, time.June, 23), 5)))
	require.NoError(t, mem.CreateTask(ctx, task("p-1", 2, 2, date(2023, time.June, 23))))
	require.NoError(t, mem.CreateContract(ctx, contract("c-2", "p-1",
		date(2023, time.June, 26), date(2023, time.June, 30), 10)))

	result, err := eng.Carryover(ctx, "p-1", date(2023, time.June, 26))
	require.NoError(t, err)
	assertDecimal(t, 3.0, result.Hours)
	assertDecimal(t, 0.0, result.HolidayHours)
	assert.Equal(t, engine.ContractID("c-2"), result.TargetContract)

	// The target contract's fields were incremented.
	target, err := mem.ContractByID(ctx, "c-2")
	require.NoError(t, err)
	assertDecimal(t, 3.0, target.CarryoverHours)
	assertDecimal(t, 0.0, target.CarryoverHolidayHours)
}

func TestCarryover_ChainOfWeeks(t *testing.T) {
	// Week after week the unworked 3 hours accumulate on the next contract:
	// the latest ended contract already carries 6, plus this week's 3.

	eng, mem := newTestEngine(t, nil)
	ctx := context.Background()

	addWeek := func(id string, start, end engine.Date, carryover float64) {
		c := contract(id, "p-1", start, end, 5)
		c.CarryoverHours = decimal.NewFromFloat(carryover)
		require.NoError(t, mem.CreateContract(ctx, c))
		require.NoError(t, mem.CreateTask(ctx, task("p-1", 2, 2, end)))
	}
	addWeek("c-1", date(2023, time.June, 5), date(2023, time.June, 11), 0)
	addWeek("c-2", date(2023, time.June, 12), date(2023, time.June, 18), 3)
	addWeek("c-3", date(2023, time.June, 19), date(2023, time.June, 25), 6)
	require.NoError(t, mem.CreateContract(ctx, contract("c-4", "p-1",
		date(2023, time.June, 26), date(2023, time.July, 2), 5)))

	result, err := eng.Carryover(ctx, "p-1", date(2023, time.June, 27))
	require.NoError(t, err)
	assertDecimal(t, 9.0, result.Hours)
	assertDecimal(t, 0.0, result.HolidayHours)
	assert.Equal(t, engine.ContractID("c-4"), result.TargetContract)
}

func TestCarryover_TwoSimultaneousLastContracts(t *testing.T) {
	// Two contracts ending the same day carry over together.
	eng, mem := newTestEngine(t, nil)
	ctx := context.Background()

	require.NoError(t, mem.CreateContract(ctx, contract("c-10", "p-1",
		date(2023, time.June, 19), date(2023, time.June, 23), 5)))
	require.NoError(t, mem.CreateContract(ctx, contract("c-11", "p-1",
		date(2023, time.June, 19), date(2023, time.June, 23), 5)))
	require.NoError(t, mem.CreateTask(ctx, task("p-1", 2, 2, date(2023, time.June, 23))))
	require.NoError(t, mem.CreateContract(ctx, contract("c-2", "p-1",
		date(2023, time.June, 26), date(2023, time.June, 30), 10)))

	result, err := eng.Carryover(ctx, "p-1", date(2023, time.June, 26))
	require.NoError(t, err)
	assertDecimal(t, 8.0, result.Hours)
	assertDecimal(t, 0.0, result.HolidayHours)
}

func TestCarryover_PreviousCarryoverAdds(t *testing.T) {
	eng, mem := newTestEngine(t, nil)
	ctx := context.Background()

	c10 := contract("c-10", "p-1", date(2023, time.June, 19), date(2023, time.June, 23), 5)
	c10.CarryoverHours = decimal.NewFromInt(1)
	c11 := contract("c-11", "p-1", date(2023, time.June, 19), date(2023, time.June, 23), 5)
	c11.CarryoverHours = decimal.NewFromInt(2)
	require.NoError(t, mem.CreateContract(ctx, c10))
	require.NoError(t, mem.CreateContract(ctx, c11))
	require.NoError(t, mem.CreateTask(ctx, task("p-1", 2, 2, date(2023, time.June, 23))))
	require.NoError(t, mem.CreateContract(ctx, contract("c-2", "p-1",
		date(2023, time.June, 26), date(2023, time.June, 30), 10)))

	result, err := eng.Carryover(ctx, "p-1", date(2023, time.June, 26))
	require.NoError(t, err)
	assertDecimal(t, 11.0, result.Hours)
	assertDecimal(t, 0.0, result.HolidayHours)
}

func TestCarryover_HolidayHours(t *testing.T) {
	// Short contracts earn no entitlement, so the holiday carryover is the
	// sum of the prior holiday hours: 4 + 5.
	eng, mem := newTestEngine(t, nil)
	ctx := context.Background()

	c10 := contract("c-10", "p-1", date(2023, time.June, 19), date(2023, time.June, 23), 5)
	c10.CarryoverHours = decimal.NewFromInt(1)
	c10.CarryoverHolidayHours = decimal.NewFromInt(4)
	c11 := contract("c-11", "p-1", date(2023, time.June, 19), date(2023, time.June, 23), 5)
	c11.CarryoverHours = decimal.NewFromInt(2)
	c11.CarryoverHolidayHours = decimal.NewFromInt(5)
	require.NoError(t, mem.CreateContract(ctx, c10))
	require.NoError(t, mem.CreateContract(ctx, c11))
	require.NoError(t, mem.CreateTask(ctx, task("p-1", 2, 2, date(2023, time.June, 23))))
	require.NoError(t, mem.CreateContract(ctx, contract("c-2", "p-1",
		date(2023, time.June, 26), date(2023, time.June, 30), 10)))

	result, err := eng.Carryover(ctx, "p-1", date(2023, time.June, 26))
	require.NoError(t, err)
	assertDecimal(t, 11.0, result.Hours)
	assertDecimal(t, 9.0, result.HolidayHours)
}

func TestCarryover_HolidayTakenReducesBoth(t *testing.T) {
	// A day of leave taken last week reduces the hour carryover by that day's
	// rate and the holiday carryover by a day at the mean daily rate.
	eng, mem := newTestEngine(t, nil)
	ctx := context.Background()

	c10 := contract("c-10", "p-1", date(2023, time.June, 19), date(2023, time.June, 23), 5)
	c10.CarryoverHours = decimal.NewFromInt(1)
	c10.CarryoverHolidayHours = decimal.NewFromInt(4)
	c11 := contract("c-11", "p-1", date(2023, time.June, 19), date(2023, time.June, 23), 5)
	c11.CarryoverHours = decimal.NewFromInt(2)
	c11.CarryoverHolidayHours = decimal.NewFromInt(5)
	require.NoError(t, mem.CreateContract(ctx, c10))
	require.NoError(t, mem.CreateContract(ctx, c11))
	require.NoError(t, mem.CreateTask(ctx, task("p-1", 2, 2, date(2023, time.June, 23))))
	require.NoError(t, mem.CreateHolidayRequest(ctx, engine.HolidayRequest{
		ID: "h-1", PersonID: "p-1",
		From: date(2023, time.June, 20), To: date(2023, time.June, 20),
	}))
	require.NoError(t, mem.CreateContract(ctx, contract("c-2", "p-1",
		date(2023, time.June, 26), date(2023, time.June, 30), 10)))

	result, err := eng.Carryover(ctx, "p-1", date(2023, time.June, 26))
	require.NoError(t, err)
	assertDecimal(t, 9.0, result.Hours)
	assertDecimal(t, 7.0, result.HolidayHours)
}

func TestCarryover_PicksLongestActiveContract(t *testing.T) {
	// With two active contracts the longer one receives the carryover.
	eng, mem := newTestEngine(t, nil)
	ctx := context.Background()

	require.NoError(t, mem.CreateContract(ctx, contract("c-1", "p-1",
		date(2023, time.June, 19), date(2023, time.June, 23), 5)))
	require.NoError(t, mem.CreateContract(ctx, contract("c-short", "p-1",
		date(2023, time.June, 26), date(2023, time.June, 30), 5)))
	require.NoError(t, mem.CreateContract(ctx, contract("c-long", "p-1",
		date(2023, time.June, 26), date(2023, time.September, 30), 5)))

	result, err := eng.Carryover(ctx, "p-1", date(2023, time.June, 26))
	require.NoError(t, err)
	assert.Equal(t, engine.ContractID("c-long"), result.TargetContract)
}

func TestCarryover_NoPastContract(t *testing.T) {
	eng, mem := newTestEngine(t, nil)
	ctx := context.Background()

	require.NoError(t, mem.CreateContract(ctx, contract("c-1", "p-1",
		date(2023, time.June, 26), date(2023, time.June, 30), 5)))

	_, err := eng.Carryover(ctx, "p-1", date(2023, time.June, 26))
	assert.ErrorIs(t, err, engine.ErrNoActiveOrPastContract)
}

func TestCarryover_NoActiveTargetContract(t *testing.T) {
	// A past contract but nothing to carry onto: the transaction refuses and
	// nothing is written.
	eng, mem := newTestEngine(t, nil)
	ctx := context.Background()

	require.NoError(t, mem.CreateContract(ctx, contract("c-1", "p-1",
		date(2023, time.June, 19), date(2023, time.June, 23), 5)))

	_, err := eng.Carryover(ctx, "p-1", date(2023, time.June, 26))
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrNoActiveOrPastContract)

	old, err := mem.ContractByID(ctx, "c-1")
	require.NoError(t, err)
	assertDecimal(t, 0.0, old.CarryoverHours)
}

func TestCarryover_AppliesIncrementOnce(t *testing.T) {
	// One run writes exactly one increment; the result matches what landed on
	// the target contract.
	eng, mem := newTestEngine(t, nil)
	ctx := context.Background()

	require.NoError(t, mem.CreateContract(ctx, contract("c-1", "p-1",
		date(2023, time.June, 19), date(2023, time.June, 23), 5)))
	require.NoError(t, mem.CreateContract(ctx, contract("c-2", "p-1",
		date(2023, time.June, 26), date(2023, time.June, 30), 5)))

	result, err := eng.Carryover(ctx, "p-1", date(2023, time.June, 26))
	require.NoError(t, err)

	target, err := mem.ContractByID(ctx, "c-2")
	require.NoError(t, err)
	assert.True(t, target.CarryoverHours.Equal(result.Hours))
	assert.True(t, target.CarryoverHolidayHours.Equal(result.HolidayHours))
}
