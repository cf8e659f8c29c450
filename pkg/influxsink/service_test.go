package influxsink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriteApi struct {
	points []*write.Point
	err    error
}

func (f *fakeWriteApi) WritePoint(ctx context.Context, point ...*write.Point) error {
	f.points = append(f.points, point...)
	return f.err
}

func tags(p *write.Point) map[string]string {
	out := map[string]string{}
	for _, t := range p.TagList() {
		out[t.Key] = t.Value
	}
	return out
}

func fields(p *write.Point) map[string]interface{} {
	out := map[string]interface{}{}
	for _, f := range p.FieldList() {
		out[f.Key] = f.Value
	}
	return out
}

func TestPoint(t *testing.T) {
	u := &types.LiveUpdate{
		Reading: types.Reading{
			Timestamp:    "2024-01-15T14:30:00Z",
			Generation:   4.5,
			Voltage:      230,
			BatteryLevel: 80,
			Temperature:  27.5,
			Dust:         12,
		},
		ChannelID: "42",
	}
	p := Point(u, time.Now())

	assert.Equal(t, Measurement, p.Name())
	assert.Equal(t, map[string]string{"channel": "42", "demo": "false"}, tags(p))
	f := fields(p)
	assert.Equal(t, 4.5, f["generation"])
	assert.Equal(t, 230.0, f["voltage"])
	assert.Equal(t, 80.0, f["battery_level"])
	assert.Equal(t, 27.5, f["temperature"])
	assert.Equal(t, 12.0, f["dust"])
	assert.True(t, time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC).Equal(p.Time()))
}

func TestPoint_UnparseableTimestampUsesNow(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	p := Point(&types.LiveUpdate{Reading: types.Reading{Timestamp: "?"}, Demo: true}, now)
	assert.True(t, now.Equal(p.Time()))
	assert.Equal(t, map[string]string{"channel": "none", "demo": "true"}, tags(p))
}

func TestWrite(t *testing.T) {
	api := &fakeWriteApi{}
	w := &Writer{api: api}
	require.NoError(t, w.Write(context.Background(), &types.LiveUpdate{ChannelID: "1"}))
	assert.Len(t, api.points, 1)

	api.err = errors.New("unauthorized")
	err := w.Write(context.Background(), &types.LiveUpdate{})
	assert.ErrorIs(t, err, api.err)
}
