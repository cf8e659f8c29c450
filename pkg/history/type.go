package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
)

const (
	DefaultResults          = 7
	MaxRangeResults         = 100
	DefaultAnomalyThreshold = 2.0
)

var ErrNotConfigured = errors.New("no telemetry channel configured")

// Source is the part of the telemetry client history needs.
type Source interface {
	FetchHistory(ctx context.Context, channelId string, results int, readKey string) ([]types.RawEntry, error)
}

// Metric selects one quantity of a reading.
type Metric uint8

const (
	MetricGeneration Metric = iota
	MetricVoltage
	MetricBatteryLevel
	MetricTemperature
	MetricDust
)

var metricNames = map[Metric]string{
	MetricGeneration:   "generation",
	MetricVoltage:      "voltage",
	MetricBatteryLevel: "battery_level",
	MetricTemperature:  "temperature",
	MetricDust:         "dust",
}

func (m Metric) String() string {
	if name, ok := metricNames[m]; ok {
		return name
	}
	return "unknown"
}

func (m Metric) Value(r types.Reading) float64 {
	switch m {
	case MetricGeneration:
		return r.Generation
	case MetricVoltage:
		return r.Voltage
	case MetricBatteryLevel:
		return r.BatteryLevel
	case MetricTemperature:
		return r.Temperature
	case MetricDust:
		return r.Dust
	default:
		return 0
	}
}

// ParseMetric accepts the metric names plus "battery" as a shorthand.
func ParseMetric(s string) (Metric, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "battery" {
		return MetricBatteryLevel, nil
	}
	for m, name := range metricNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown metric %q", s)
}
