// Package influxsink stores readings in InfluxDB.
package influxsink

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const Measurement = "microgrid_reading"

type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

type Writer struct {
	client influxdb2.Client
	api    pointWriter
}

// NewWriter creates an InfluxDB write API client. Call Close when done.
func NewWriter(url, token, org, bucket string) *Writer {
	client := influxdb2.NewClient(url, token)
	return &Writer{client: client, api: client.WriteAPIBlocking(org, bucket)}
}

func (w *Writer) Close() {
	if w.client != nil {
		w.client.Close()
	}
}

// Health checks that InfluxDB is reachable and the token is valid.
func (w *Writer) Health(ctx context.Context) error {
	_, err := w.client.Health(ctx)
	return err
}

// Point converts an update. Point time is the reading timestamp, or now when
// it cannot be parsed.
func Point(u *types.LiveUpdate, now time.Time) *write.Point {
	pointTime, err := u.Reading.ParsedTimestamp()
	if err != nil {
		pointTime = now
	}
	channel := u.ChannelID
	if channel == "" {
		channel = "none"
	}
	return influxdb2.NewPointWithMeasurement(Measurement).
		AddTag("channel", channel).
		AddTag("demo", strconv.FormatBool(u.Demo)).
		AddField("generation", u.Reading.Generation).
		AddField("voltage", u.Reading.Voltage).
		AddField("battery_level", u.Reading.BatteryLevel).
		AddField("temperature", u.Reading.Temperature).
		AddField("dust", u.Reading.Dust).
		SetTime(pointTime)
}

func (w *Writer) Write(ctx context.Context, u *types.LiveUpdate) error {
	if err := w.api.WritePoint(ctx, Point(u, time.Now())); err != nil {
		return fmt.Errorf("influx write: %w", err)
	}
	return nil
}
