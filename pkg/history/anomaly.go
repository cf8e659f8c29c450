package history

import (
	"math"

	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
	"gonum.org/v1/gonum/stat"
)

// Selector extracts the value anomalies are computed on.
type Selector func(types.Reading) float64

// ZScores uses the population mean and standard deviation of the whole slice.
// A zero standard deviation gives all zero scores.
func ZScores(readings []types.Reading, selector Selector) []float64 {
	scores := make([]float64, len(readings))
	if len(readings) == 0 {
		return scores
	}

	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = selector(r)
	}

	mean, std := stat.PopMeanStdDev(values, nil)
	if std == 0 || math.IsNaN(std) {
		return scores
	}
	for i, v := range values {
		scores[i] = stat.StdScore(v, mean, std)
	}
	return scores
}

// ComputeAnomalies flags readings whose |z-score| exceeds threshold, aligned by index.
func ComputeAnomalies(readings []types.Reading, selector Selector, threshold float64) []bool {
	flags := make([]bool, len(readings))
	for i, z := range ZScores(readings, selector) {
		flags[i] = math.Abs(z) > threshold
	}
	return flags
}
