package types

import (
	"encoding/json"
	"time"
)

// Reading is a telemetry record after normalization.
// Values default to 0 when the source field was missing or not numeric.
type Reading struct {
	Timestamp string `json:"timestamp" dataframe:"timestamp"`

	// Current (A) on most deployments, power (W) on some solar ones.
	Generation   float64 `json:"generation" dataframe:"generation"`
	Voltage      float64 `json:"voltage" dataframe:"voltage"`
	BatteryLevel float64 `json:"battery_level" dataframe:"battery_level"` // percent, not clamped
	Temperature  float64 `json:"temperature" dataframe:"temperature"`
	Dust         float64 `json:"dust" dataframe:"dust"`
}

// ParsedTimestamp parses the upstream timestamp.
// ThingSpeak uses RFC3339 but some channels report without a zone.
func (r *Reading) ParsedTimestamp() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, r.Timestamp)
	if err == nil {
		return t, nil
	}
	if t, err2 := time.Parse("2006-01-02T15:04:05", r.Timestamp); err2 == nil {
		return t, nil
	}
	if t, err2 := time.Parse("2006-01-02 15:04:05", r.Timestamp); err2 == nil {
		return t, nil
	}
	return time.Time{}, err
}

// LiveUpdate is what the live poller publishes on every tick.
type LiveUpdate struct {
	Reading   Reading   `json:"reading"`
	Demo      bool      `json:"demo"`
	ChannelID string    `json:"channel_id,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

func (u *LiveUpdate) ToJsonBytes() []byte {
	b, err := json.Marshal(u)
	if err != nil {
		return []byte("{}")
	}
	return b
}

// Returns nil when the bytes are not a live update.
func LiveUpdateFromJsonBytes(b []byte) *LiveUpdate {
	var u LiveUpdate
	if err := json.Unmarshal(b, &u); err != nil {
		return nil
	}
	return &u
}
