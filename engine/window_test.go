package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henrydatei/working-time-recording/engine"
)

// =============================================================================
// EMPLOYMENT WINDOW RESOLUTION
// =============================================================================

func TestEmploymentWindow_NestedContractIrrelevant(t *testing.T) {
	// GIVEN: A semester contract and a second contract nested inside it
	// WHEN: Resolving the window mid-semester
	// THEN: The nested contract does not change the window

	eng, mem := newTestEngine(t, nil)
	ctx := context.Background()

	require.NoError(t, mem.CreateContract(ctx, contract("c-1", "p-1",
		date(2023, time.April, 1), date(2023, time.September, 30), 5)))
	require.NoError(t, mem.CreateContract(ctx, contract("c-2", "p-1",
		date(2023, time.June, 15), date(2023, time.June, 24), 5)))

	window, err := eng.EmploymentWindow(ctx, "p-1", date(2023, time.June, 22))
	require.NoError(t, err)
	assert.Equal(t, engine.Period{
		Start: date(2023, time.April, 1),
		End:   date(2023, time.September, 30),
	}, window)
}

func TestEmploymentWindow_ExtendingContractFusesSpans(t *testing.T) {
	// GIVEN: Two overlapping active contracts, the second extending past the first
	// WHEN: Resolving the window while both are active
	// THEN: The window fuses to (min start, max end)

	eng, mem := newTestEngine(t, nil)
	ctx := context.Background()

	require.NoError(t, mem.CreateContract(ctx, contract("c-1", "p-1",
		date(2023, time.April, 1), date(2023, time.August, 30), 5)))
	require.NoError(t, mem.CreateContract(ctx, contract("c-2", "p-1",
		date(2023, time.May, 1), date(2023, time.September, 30), 5)))

	window, err := eng.EmploymentWindow(ctx, "p-1", date(2023, time.June, 22))
	require.NoError(t, err)
	assert.Equal(t, engine.Period{
		Start: date(2023, time.April, 1),
		End:   date(2023, time.September, 30),
	}, window)
}

func TestEmploymentWindow_PastContractIgnoredWhileActive(t *testing.T) {
	// GIVEN: A current contract and one from the previous semester
	// WHEN: Resolving the window during the current contract
	// THEN: The past contract is ignored even though it would extend the range

	eng, mem := newTestEngine(t, nil)
	ctx := context.Background()

	require.NoError(t, mem.CreateContract(ctx, contract("c-1", "p-1",
		date(2023, time.April, 1), date(2023, time.September, 30), 5)))
	require.NoError(t, mem.CreateContract(ctx, contract("c-2", "p-1",
		date(2022, time.October, 1), date(2023, time.March, 30), 5)))

	window, err := eng.EmploymentWindow(ctx, "p-1", date(2023, time.June, 22))
	require.NoError(t, err)
	assert.Equal(t, engine.Period{
		Start: date(2023, time.April, 1),
		End:   date(2023, time.September, 30),
	}, window)
}

func TestEmploymentWindow_FallsBackToLatestEndedContract(t *testing.T) {
	// GIVEN: A contract that has already ended
	// WHEN: Resolving the window after the semester
	// THEN: The window is that last contract's own span

	eng, mem := newTestEngine(t, nil)
	ctx := context.Background()

	require.NoError(t, mem.CreateContract(ctx, contract("c-1", "p-1",
		date(2023, time.April, 1), date(2023, time.September, 30), 5)))

	window, err := eng.EmploymentWindow(ctx, "p-1", date(2023, time.October, 1))
	require.NoError(t, err)
	assert.Equal(t, engine.Period{
		Start: date(2023, time.April, 1),
		End:   date(2023, time.September, 30),
	}, window)
}

func TestEmploymentWindow_FallbackDoesNotFuse(t *testing.T) {
	// The active branch fuses spans, the fallback branch does not: between
	// semesters only the single contract with the latest end defines the
	// window, even when another ended contract started earlier.

	eng, mem := newTestEngine(t, nil)
	ctx := context.Background()

	require.NoError(t, mem.CreateContract(ctx, contract("c-1", "p-1",
		date(2023, time.April, 1), date(2023, time.June, 30), 5)))
	require.NoError(t, mem.CreateContract(ctx, contract("c-2", "p-1",
		date(2023, time.May, 1), date(2023, time.September, 30), 5)))

	window, err := eng.EmploymentWindow(ctx, "p-1", date(2023, time.October, 15))
	require.NoError(t, err)
	assert.Equal(t, engine.Period{
		Start: date(2023, time.May, 1),
		End:   date(2023, time.September, 30),
	}, window)
}

func TestEmploymentWindow_NoContracts(t *testing.T) {
	eng, _ := newTestEngine(t, nil)

	_, err := eng.EmploymentWindow(context.Background(), "p-1", date(2023, time.June, 22))
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrNoActiveOrPastContract)

	var ncErr *engine.NoContractError
	require.ErrorAs(t, err, &ncErr)
	assert.Equal(t, engine.PersonID("p-1"), ncErr.PersonID)
}
