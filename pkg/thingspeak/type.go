package thingspeak

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
)

const DefaultBaseUrl = "https://api.thingspeak.com"

var ErrTransport = errors.New("telemetry transport failure")

// TransportFailure is returned for a non-2xx response.
type TransportFailure struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *TransportFailure) Error() string {
	status := e.Status
	if status == "" {
		status = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("telemetry request failed: %d %s", e.StatusCode, status)
}

func (e *TransportFailure) Is(target error) bool {
	return target == ErrTransport
}

type ChannelInfo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	LastEntryID int64  `json:"last_entry_id"`
}

// ChannelFeed is the feeds.json wrapper.
type ChannelFeed struct {
	Channel ChannelInfo      `json:"channel"`
	Feeds   []types.RawEntry `json:"feeds"`
}
