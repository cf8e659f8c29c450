package history

import (
	"bytes"
	"strings"
	"testing"

	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func batteryReadings(levels ...float64) []types.Reading {
	readings := make([]types.Reading, len(levels))
	for i, l := range levels {
		readings[i] = types.Reading{BatteryLevel: l}
	}
	return readings
}

func TestComputeAnomalies_ZeroStdDev(t *testing.T) {
	flags := ComputeAnomalies(batteryReadings(50, 50, 50, 50), MetricBatteryLevel.Value, DefaultAnomalyThreshold)
	assert.Equal(t, []bool{false, false, false, false}, flags)
}

func TestComputeAnomalies_FlagsOutlier(t *testing.T) {
	levels := []float64{10, 10, 10, 10, 10, 10, 10, 10, 10, 50}
	flags := ComputeAnomalies(batteryReadings(levels...), MetricBatteryLevel.Value, DefaultAnomalyThreshold)

	require.Len(t, flags, len(levels))
	for i, f := range flags {
		assert.Equal(t, i == len(levels)-1, f, "index %d", i)
	}
}

func TestComputeAnomalies_ThresholdIsStrict(t *testing.T) {
	// population std of {0, 2} is 1, both z-scores are exactly 1
	flags := ComputeAnomalies(batteryReadings(0, 2), MetricBatteryLevel.Value, 1)
	assert.Equal(t, []bool{false, false}, flags)
}

func TestComputeAnomalies_Empty(t *testing.T) {
	assert.Empty(t, ComputeAnomalies(nil, MetricDust.Value, DefaultAnomalyThreshold))
}

func TestZScores(t *testing.T) {
	scores := ZScores(batteryReadings(0, 2), MetricBatteryLevel.Value)
	assert.InDeltaSlice(t, []float64{-1, 1}, scores, 1e-9)
}

func TestParseMetric(t *testing.T) {
	tests := map[string]Metric{
		"generation":    MetricGeneration,
		"Voltage":       MetricVoltage,
		"battery":       MetricBatteryLevel,
		"battery_level": MetricBatteryLevel,
		" dust ":        MetricDust,
		"temperature":   MetricTemperature,
	}
	for in, expected := range tests {
		m, err := ParseMetric(in)
		require.NoError(t, err, in)
		assert.Equal(t, expected, m)
	}

	_, err := ParseMetric("humidity")
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	readings := []types.Reading{
		{Timestamp: "2024-01-10T06:00:00Z", Generation: 1.5, Voltage: 230, BatteryLevel: 80, Temperature: 25, Dust: 3},
		{Timestamp: "2024-01-10T18:00:00Z", Generation: 0, Voltage: 228, BatteryLevel: 75, Temperature: 21, Dust: 4},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, readings))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.ElementsMatch(t, csvHeader, strings.Split(lines[0], ","))
	assert.Contains(t, lines[1], "2024-01-10T06:00:00Z")
	assert.Contains(t, lines[2], "2024-01-10T18:00:00Z")
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, strings.Join(csvHeader, ",")+"\n", buf.String())
}
