package types

import (
	"errors"
	"strings"
)

var ErrEmptyChannelID = errors.New("channel id is required")

// ChannelConfig identifies the telemetry channel to poll.
// No config at all means demo mode.
type ChannelConfig struct {
	ChannelID string `json:"channel_id"`
	ReadKey   string `json:"read_key,omitempty"`
}

// Trimmed copy of the config, or ErrEmptyChannelID.
func (c ChannelConfig) Normalized() (ChannelConfig, error) {
	out := ChannelConfig{
		ChannelID: strings.TrimSpace(c.ChannelID),
		ReadKey:   strings.TrimSpace(c.ReadKey),
	}
	if out.ChannelID == "" {
		return ChannelConfig{}, ErrEmptyChannelID
	}
	return out, nil
}
