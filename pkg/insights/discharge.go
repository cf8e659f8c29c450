package insights

import "sync"

const (
	BatteryTrendSize     = 20
	minDischargeSamples  = 3
	rapidDischargePoints = 10.0
)

// IsRapidDischarge reports a drop of more than 10 points from first to last sample.
// Fewer than 3 samples never flag.
func IsRapidDischarge(samples []float64) bool {
	if len(samples) < minDischargeSamples {
		return false
	}
	return samples[0]-samples[len(samples)-1] > rapidDischargePoints
}

// BatteryTrend keeps the last BatteryTrendSize battery levels.
type BatteryTrend struct {
	mu      sync.Mutex
	samples []float64
}

func NewBatteryTrend() *BatteryTrend {
	return &BatteryTrend{samples: make([]float64, 0, BatteryTrendSize)}
}

func (b *BatteryTrend) Add(level float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = append(b.samples, level)
	if len(b.samples) > BatteryTrendSize {
		b.samples = append(b.samples[:0], b.samples[len(b.samples)-BatteryTrendSize:]...)
	}
}

func (b *BatteryTrend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = b.samples[:0]
}

// Samples returns a copy, oldest first.
func (b *BatteryTrend) Samples() []float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]float64, len(b.samples))
	copy(out, b.samples)
	return out
}

func (b *BatteryTrend) RapidDischarge() bool {
	return IsRapidDischarge(b.Samples())
}
