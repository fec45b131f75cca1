package progress_test

import (
	"fmt"
	"testing"

	"github.com/jrsteele09/go-lms-client/progress"
	"github.com/stretchr/testify/require"
)

func lessonIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("l%d", i+1)
	}
	return ids
}

func TestDeriveCompletionCounts(t *testing.T) {
	tests := []struct {
		percent   int
		total     int
		wantCount int
	}{
		{percent: 0, total: 5, wantCount: 0},
		{percent: 40, total: 5, wantCount: 2},
		{percent: 50, total: 5, wantCount: 3}, // 2.5 rounds up
		{percent: 60, total: 5, wantCount: 3},
		{percent: 100, total: 5, wantCount: 5},
		{percent: 33, total: 3, wantCount: 1},
		{percent: 67, total: 3, wantCount: 2},
		{percent: 100, total: 1, wantCount: 1},
		{percent: 50, total: 0, wantCount: 0}, // no lessons, no division error
		{percent: 0, total: 0, wantCount: 0},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d%% of %d", tc.percent, tc.total), func(t *testing.T) {
			completed := progress.DeriveCompletion(tc.percent, lessonIDs(tc.total))
			require.Len(t, completed, tc.wantCount)
		})
	}
}

func TestDeriveCompletionIsAlwaysAPrefix(t *testing.T) {
	ids := lessonIDs(7)
	for percent := 0; percent <= 100; percent++ {
		completed := progress.DeriveCompletion(percent, ids)
		// Every completed lesson must sit before every incomplete one in
		// flattened order.
		seenGap := false
		for _, id := range ids {
			if _, ok := completed[id]; ok {
				require.False(t, seenGap, "percent %d produced a non-prefix set", percent)
			} else {
				seenGap = true
			}
		}
	}
}

func TestDeriveCompletionClampsOutOfRange(t *testing.T) {
	ids := lessonIDs(4)
	require.Len(t, progress.DeriveCompletion(150, ids), 4)
	require.Empty(t, progress.DeriveCompletion(-10, ids))
}

func TestPercentComplete(t *testing.T) {
	require.Equal(t, 0, progress.PercentComplete(0, 5))
	require.Equal(t, 40, progress.PercentComplete(2, 5))
	require.Equal(t, 60, progress.PercentComplete(3, 5))
	require.Equal(t, 100, progress.PercentComplete(5, 5))
	require.Equal(t, 33, progress.PercentComplete(1, 3))
	require.Equal(t, 0, progress.PercentComplete(3, 0))
}

func TestDeriveThenRecountRoundTrips(t *testing.T) {
	// Whatever set a percentage reconstructs to must map back to the same
	// percentage for totals where the derivation is exact.
	ids := lessonIDs(5)
	for _, percent := range []int{0, 20, 40, 60, 80, 100} {
		completed := progress.DeriveCompletion(percent, ids)
		require.Equal(t, percent, progress.PercentComplete(len(completed), len(ids)))
	}
}
