package insights

import (
	"sort"

	"github.com/clinsight/insights/internal/platform/fhir"
)

// scored pairs a projected row with its recency score so category
// extractors share one descending-sort path. Rows without any usable date
// score 0 and land last.
type scored[T any] struct {
	score float64
	row   T
}

func newScored[T any](row T, date string) scored[T] {
	return scored[T]{score: fhir.DateScore(date), row: row}
}

// sortedRows sorts descending by score (stable, so ties keep extraction
// order) and strips the scores.
func sortedRows[T any](scored []scored[T]) []T {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	rows := make([]T, 0, len(scored))
	for _, s := range scored {
		rows = append(rows, s.row)
	}
	return rows
}
