package insights

import (
	"fmt"
	"math"
)

// DepletionEstimate is how long the battery lasts at the present rate.
// Not applicable when the rate is zero.
type DepletionEstimate struct {
	Applicable bool    `json:"applicable"`
	Hours      float64 `json:"hours"`
}

// EstimateDepletion divides battery percent by |rate|, the generation current
// used as discharge proxy.
func EstimateDepletion(battery, rate float64) DepletionEstimate {
	r := math.Abs(rate)
	if r == 0 || math.IsNaN(r) {
		return DepletionEstimate{}
	}
	return DepletionEstimate{Applicable: true, Hours: battery / r}
}

func (d DepletionEstimate) String() string {
	switch {
	case !d.Applicable:
		return "not applicable"
	case d.Hours > 48:
		return "more than 2 days"
	case d.Hours > 1:
		return fmt.Sprintf("%.1f hours", d.Hours)
	default:
		return fmt.Sprintf("%d min", int(math.Round(d.Hours*60)))
	}
}
