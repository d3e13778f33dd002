package reviews

import (
	"math"
	"strconv"
)

// Stats aggregates approved reviews for one product. Distribution and
// Percentages are keyed "1" through "5".
type Stats struct {
	AverageRating float64          `json:"average_rating"`
	TotalReviews  int64            `json:"total_reviews"`
	Distribution  map[string]int64 `json:"rating_distribution"`
	Percentages   map[string]int   `json:"rating_percentages"`
}

// ComputeStats builds Stats from per-star counts. Ratings outside 1..5 are
// ignored and zero reviews yield all-zero values.
func ComputeStats(counts map[int]int64) Stats {
	stats := Stats{
		Distribution: make(map[string]int64, 5),
		Percentages:  make(map[string]int, 5),
	}
	var weighted int64
	for star := 1; star <= 5; star++ {
		n := counts[star]
		stats.Distribution[strconv.Itoa(star)] = n
		stats.TotalReviews += n
		weighted += int64(star) * n
	}
	for star := 1; star <= 5; star++ {
		key := strconv.Itoa(star)
		if stats.TotalReviews == 0 {
			stats.Percentages[key] = 0
			continue
		}
		pct := float64(stats.Distribution[key]) * 100 / float64(stats.TotalReviews)
		stats.Percentages[key] = int(math.Round(pct))
	}
	if stats.TotalReviews > 0 {
		avg := float64(weighted) / float64(stats.TotalReviews)
		stats.AverageRating = math.Round(avg*10) / 10
	}
	return stats
}
