package poller

import (
	"context"
	"time"

	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
)

const DefaultInterval = 15 * time.Second

// LatestSource is the part of the telemetry client the poller needs.
type LatestSource interface {
	FetchLatest(ctx context.Context, channelId, readKey string) (*types.RawEntry, error)
}

type State uint8

const (
	Stopped State = iota
	// Unconfigured polls nothing and publishes demo readings.
	Unconfigured
	Polling
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Unconfigured:
		return "unconfigured"
	case Polling:
		return "polling"
	default:
		return "unknown"
	}
}

// session is one configuration's polling goroutine.
type session struct {
	id      uint64
	channel *types.ChannelConfig
	cancel  context.CancelFunc
	done    chan struct{}
}
