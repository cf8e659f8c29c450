package config

import "github.com/NotCoffee418/microgrid_monitor/pkg/normalizer"

type ReadingCollectorConfig struct {
	DashboardAPIHost string `toml:"dashboard_api_host"`
	TLSEnabled       bool   `toml:"tls_enabled"`
	InfluxURL        string `toml:"influx_url"`
	// Token can also come from INFLUX_TOKEN
	InfluxToken  string `toml:"influx_token"`
	InfluxOrg    string `toml:"influx_org"`
	InfluxBucket string `toml:"influx_bucket"`
}

type DashboardAPIConfig struct {
	ListenAddress       string `toml:"listen_address"`
	ListenPort          int    `toml:"listen_port"`
	TelemetryBaseUrl    string `toml:"telemetry_base_url"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	WeatherBaseUrl      string `toml:"weather_base_url"`
	DefaultGridType     string `toml:"default_grid_type"`

	// Leave mqtt_broker empty to disable publishing
	MqttBroker      string `toml:"mqtt_broker"`
	MqttClientId    string `toml:"mqtt_client_id"`
	MqttTopicPrefix string `toml:"mqtt_topic_prefix"`

	// Which numbered channel field holds which quantity
	FieldMapping normalizer.FieldMapping `toml:"field_mapping"`
}
