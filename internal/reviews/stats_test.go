package reviews

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStatsZeroReviews(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Equal(t, int64(0), stats.TotalReviews)
	assert.Equal(t, 0.0, stats.AverageRating)
	for _, key := range []string{"1", "2", "3", "4", "5"} {
		assert.Equal(t, 0, stats.Percentages[key])
		assert.Equal(t, int64(0), stats.Distribution[key])
	}
}

func TestComputeStatsRoundsAverageAndPercentages(t *testing.T) {
	stats := ComputeStats(map[int]int64{5: 2, 4: 1, 9: 4})
	assert.Equal(t, int64(3), stats.TotalReviews)
	assert.Equal(t, 4.7, stats.AverageRating)
	assert.Equal(t, 67, stats.Percentages["5"])
	assert.Equal(t, 33, stats.Percentages["4"])
	assert.Equal(t, 0, stats.Percentages["1"])
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortHighest, ParseSortKey("Highest"))
	assert.Equal(t, SortNewest, ParseSortKey("random"))
}
