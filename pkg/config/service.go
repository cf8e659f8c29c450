package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/NotCoffee418/microgrid_monitor/pkg/normalizer"
	"github.com/NotCoffee418/microgrid_monitor/pkg/pathing"
)

var (
	ActiveDashboardAPIConfig     *DashboardAPIConfig
	ActiveReadingCollectorConfig *ReadingCollectorConfig
)

func DefaultDashboardAPIConfig() *DashboardAPIConfig {
	return &DashboardAPIConfig{
		ListenAddress:       "0.0.0.0",
		ListenPort:          9040,
		TelemetryBaseUrl:    "https://api.thingspeak.com",
		PollIntervalSeconds: 15,
		WeatherBaseUrl:      "https://api.open-meteo.com",
		DefaultGridType:     "solar",
		MqttBroker:          "",
		MqttClientId:        "microgrid-dashboard",
		MqttTopicPrefix:     "microgrid",
		FieldMapping:        normalizer.DefaultFieldMapping,
	}
}

func DefaultReadingCollectorConfig() *ReadingCollectorConfig {
	return &ReadingCollectorConfig{
		DashboardAPIHost: "localhost:9040",
		TLSEnabled:       false,
		InfluxURL:        "http://localhost:8086",
		InfluxOrg:        "microgrid",
		InfluxBucket:     "telemetry",
	}
}

func LoadDashboardAPIConfig() error {
	cfg, err := LoadDashboardAPIConfigFrom(filepath.Join(pathing.GetConfigDir(), "dashboard_api.toml"))
	if err != nil {
		return err
	}
	ActiveDashboardAPIConfig = cfg
	return nil
}

func LoadDashboardAPIConfigFrom(configPath string) (*DashboardAPIConfig, error) {
	cfg := DefaultDashboardAPIConfig()
	if err := loadOrCreate(configPath, cfg); err != nil {
		return nil, err
	}
	if err := cfg.FieldMapping.Validate(); err != nil {
		return nil, fmt.Errorf("field_mapping: %w", err)
	}
	if cfg.PollIntervalSeconds <= 0 {
		cfg.PollIntervalSeconds = 15
	}
	return cfg, nil
}

func (c *DashboardAPIConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

func LoadReadingCollectorConfig() error {
	cfg, err := LoadReadingCollectorConfigFrom(filepath.Join(pathing.GetConfigDir(), "reading_collector.toml"))
	if err != nil {
		return err
	}
	ActiveReadingCollectorConfig = cfg
	return nil
}

func LoadReadingCollectorConfigFrom(configPath string) (*ReadingCollectorConfig, error) {
	cfg := DefaultReadingCollectorConfig()
	if err := loadOrCreate(configPath, cfg); err != nil {
		return nil, err
	}
	if host := os.Getenv("DASHBOARD_API_HOST"); host != "" {
		cfg.DashboardAPIHost = host
	}
	if token := os.Getenv("INFLUX_TOKEN"); token != "" {
		cfg.InfluxToken = token
	}
	return cfg, nil
}

// loadOrCreate decodes configPath over the defaults already in cfg.
// A missing file is created from those defaults.
func loadOrCreate(configPath string, cfg any) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfgFile, err := os.Create(configPath)
		if err != nil {
			return err
		}
		defer cfgFile.Close()
		return toml.NewEncoder(cfgFile).Encode(cfg)
	}

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return err
	}
	return nil
}
