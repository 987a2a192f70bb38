package evaluate

import "sort"

// MetricsTracker accumulates evaluation results across runs. The caller
// owns the tracker; it is not safe for concurrent use.
type MetricsTracker struct {
	results []Result
}

func NewMetricsTracker() *MetricsTracker {
	return &MetricsTracker{}
}

func (t *MetricsTracker) Add(res Result) {
	t.results = append(t.results, res)
}

func (t *MetricsTracker) Count() int {
	return len(t.results)
}

// AverageScores returns the mean per dimension plus an "overall" entry.
// An empty tracker returns an empty map.
func (t *MetricsTracker) AverageScores() map[string]float64 {
	if len(t.results) == 0 {
		return map[string]float64{}
	}

	averages := make(map[string]float64, len(dimensionOrder)+1)
	for _, name := range dimensionOrder {
		var sum float64
		for _, res := range t.results {
			sum += res.DimensionScores[name]
		}
		averages[name] = sum / float64(len(t.results))
	}

	var overall float64
	for _, res := range t.results {
		overall += res.OverallScore
	}
	averages["overall"] = overall / float64(len(t.results))

	return averages
}

// RecommendationCount pairs a hint with how often it was emitted.
type RecommendationCount struct {
	Hint  string
	Count int
}

// CommonRecommendations returns the most frequent hints, capped at limit,
// most frequent first with ties broken alphabetically.
func (t *MetricsTracker) CommonRecommendations(limit int) []RecommendationCount {
	counts := make(map[string]int)
	for _, res := range t.results {
		for _, hint := range res.Recommendations {
			counts[hint]++
		}
	}

	out := make([]RecommendationCount, 0, len(counts))
	for hint, n := range counts {
		out = append(out, RecommendationCount{Hint: hint, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Hint < out[j].Hint
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
