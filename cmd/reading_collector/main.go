// Reading collector stores every live update of the dashboard API in InfluxDB.
// Depends on the dashboard API being online.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NotCoffee418/microgrid_monitor/pkg/config"
	"github.com/NotCoffee418/microgrid_monitor/pkg/influxsink"
	"github.com/NotCoffee418/microgrid_monitor/pkg/livefeed"
	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
)

func main() {
	if err := config.LoadReadingCollectorConfig(); err != nil {
		log.Fatalf("Failed to load reading collector config: %v", err)
	}
	cfg := config.ActiveReadingCollectorConfig

	writer := influxsink.NewWriter(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := writer.Health(healthCtx); err != nil {
		log.Printf("Warning: InfluxDB not reachable yet: %v", err)
	}
	cancel()

	// Subscribe to websocket with revive
	err := livefeed.StartListener(ctx, cfg.DashboardAPIHost, cfg.TLSEnabled, func(update *types.LiveUpdate) {
		handleLiveUpdate(ctx, writer, update)
	})
	if err != nil {
		log.Fatalf("Live feed: %v", err)
	}
	log.Println("Shutting down")
}

func handleLiveUpdate(ctx context.Context, writer *influxsink.Writer, update *types.LiveUpdate) {
	// demo values are not measurements
	if update.Demo {
		return
	}
	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := writer.Write(writeCtx, update); err != nil {
		log.Printf("Failed to store reading from %s: %v", update.Reading.Timestamp, err)
	}
}
