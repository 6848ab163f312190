package sweep

import (
	"github.com/couchcryptid/heat-response/internal/domain"
	"github.com/montanaflynn/stats"
)

// Summarize aggregates the computed cells of grid. Delta statistics stay at
// zero when no cell was computed.
func Summarize(grid domain.Grid) domain.GridSummary {
	var (
		summary domain.GridSummary
		rectal  stats.Float64Data
		skin    stats.Float64Data
	)
	for _, row := range grid.Cells {
		for _, cell := range row {
			r, s, ok := cell.Deltas()
			if !ok {
				summary.OutOfRange++
				continue
			}
			rectal = append(rectal, r)
			skin = append(skin, s)
		}
	}
	summary.Computed = len(rectal)
	if summary.Computed == 0 {
		return summary
	}

	// The stats functions only fail on empty input, which is excluded above.
	summary.MinRectalDelta, _ = rectal.Min()
	summary.MaxRectalDelta, _ = rectal.Max()
	summary.MeanRectalDelta, _ = rectal.Mean()
	summary.MaxSkinDelta, _ = skin.Max()
	return summary
}
