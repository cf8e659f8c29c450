// Dashboard API polls the telemetry channel and serves readings, history,
// insights and the live feed to the dashboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NotCoffee418/microgrid_monitor/pkg/alerts"
	"github.com/NotCoffee418/microgrid_monitor/pkg/config"
	"github.com/NotCoffee418/microgrid_monitor/pkg/history"
	"github.com/NotCoffee418/microgrid_monitor/pkg/loads"
	"github.com/NotCoffee418/microgrid_monitor/pkg/mqttpub"
	"github.com/NotCoffee418/microgrid_monitor/pkg/normalizer"
	"github.com/NotCoffee418/microgrid_monitor/pkg/poller"
	"github.com/NotCoffee418/microgrid_monitor/pkg/settingsdb"
	"github.com/NotCoffee418/microgrid_monitor/pkg/thingspeak"
	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
	"github.com/NotCoffee418/microgrid_monitor/pkg/weather"
	"github.com/gorilla/handlers"
)

func main() {
	// Load config
	if err := config.LoadDashboardAPIConfig(); err != nil {
		log.Fatalf("Failed to load dashboard API config: %v", err)
	}
	cfg := config.ActiveDashboardAPIConfig

	// Initialize database
	store := settingsdb.InitializeDatabase()
	seedGridType(store, cfg.DefaultGridType)

	n, err := normalizer.New(cfg.FieldMapping)
	if err != nil {
		log.Fatalf("Invalid field mapping: %v", err)
	}

	httpClient := &http.Client{Timeout: 20 * time.Second}
	telemetry := thingspeak.New(httpClient, cfg.TelemetryBaseUrl)
	p := poller.New(telemetry, n, cfg.PollInterval())

	srv := newServer(
		store,
		p,
		history.New(telemetry, n),
		weather.New(httpClient, cfg.WeatherBaseUrl),
		alerts.New(store),
		loads.NewBoard(loads.DefaultLoads()),
	)

	if cfg.MqttBroker != "" {
		pub, client, err := mqttpub.Connect(cfg.MqttBroker, cfg.MqttClientId, cfg.MqttTopicPrefix)
		if err != nil {
			log.Printf("Warning: MQTT publishing disabled: %v", err)
		} else {
			p.Subscribe(pub.Handle)
			defer client.Disconnect(250)
			log.Printf("Publishing live updates to %s", cfg.MqttBroker)
		}
	}

	// Resume the saved channel, or demo mode without one
	channel, err := settingsdb.LoadChannelConfig(store)
	if err != nil {
		log.Printf("Warning: could not load channel config, starting in demo mode: %v", err)
		channel = nil
	}
	srv.applyChannel(channel)

	listener := fmt.Sprintf("%s:%d", cfg.ListenAddress, cfg.ListenPort)
	httpServer := &http.Server{
		Addr:    listener,
		Handler: handlers.LoggingHandler(os.Stdout, srv.routes()),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Starting Microgrid Dashboard API on %s", listener)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Interrupt received, shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	p.Stop()
	srv.hub.Close()
}

// seedGridType stores the configured default grid on first start.
func seedGridType(store settingsdb.SettingsStore, fallback string) {
	if _, found, err := store.Get(settingsdb.KeySelectedGrid); err != nil || found {
		return
	}
	grid, err := types.ParseGridType(fallback)
	if err != nil {
		log.Printf("Warning: default_grid_type: %v", err)
		return
	}
	if err := settingsdb.SaveGridType(store, grid); err != nil {
		log.Printf("Warning: could not store grid type: %v", err)
	}
}
