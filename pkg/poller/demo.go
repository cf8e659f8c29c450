package poller

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/NotCoffee418/microgrid_monitor/pkg/gridutils"
	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
)

type valueRange struct {
	min, max float64
}

// Plausible values for a small off-grid site.
var (
	demoGeneration  = valueRange{2, 12}
	demoVoltage     = valueRange{220, 240}
	demoBattery     = valueRange{60, 100}
	demoTemperature = valueRange{20, 35}
	demoDust        = valueRange{0, 30}
)

// DemoGenerator makes the synthetic readings shown when telemetry is unavailable.
type DemoGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewDemoGenerator(seed int64) *DemoGenerator {
	return &DemoGenerator{rng: rand.New(rand.NewSource(seed))}
}

func (g *DemoGenerator) Reading(now time.Time) types.Reading {
	g.mu.Lock()
	defer g.mu.Unlock()
	return types.Reading{
		Timestamp:    now.UTC().Format(time.RFC3339),
		Generation:   g.pick(demoGeneration),
		Voltage:      g.pick(demoVoltage),
		BatteryLevel: math.Floor(g.pick(demoBattery)),
		Temperature:  g.pick(demoTemperature),
		Dust:         g.pick(demoDust),
	}
}

// one decimal, within [min, max)
func (g *DemoGenerator) pick(r valueRange) float64 {
	return gridutils.FloorTo(r.min+g.rng.Float64()*(r.max-r.min), 1)
}
