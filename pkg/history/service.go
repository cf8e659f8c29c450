package history

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/NotCoffee418/microgrid_monitor/pkg/normalizer"
	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
)

// Service serves history windows for the configured channel.
// Errors from the source are returned as is, there is no demo fallback here.
type Service struct {
	source     Source
	normalizer *normalizer.Normalizer

	channelMu sync.RWMutex
	channel   *types.ChannelConfig
}

func New(source Source, n *normalizer.Normalizer) *Service {
	return &Service{
		source:     source,
		normalizer: n,
	}
}

// SetChannel switches the channel used by later calls. nil means unconfigured.
func (s *Service) SetChannel(cfg *types.ChannelConfig) {
	s.channelMu.Lock()
	defer s.channelMu.Unlock()
	if cfg == nil {
		s.channel = nil
		return
	}
	c := *cfg
	s.channel = &c
}

func (s *Service) currentChannel() (types.ChannelConfig, error) {
	s.channelMu.RLock()
	defer s.channelMu.RUnlock()
	if s.channel == nil {
		return types.ChannelConfig{}, ErrNotConfigured
	}
	return *s.channel, nil
}

// GetHistory returns up to results normalized readings in source order.
func (s *Service) GetHistory(ctx context.Context, results int) ([]types.Reading, error) {
	if results <= 0 {
		results = DefaultResults
	}

	channel, err := s.currentChannel()
	if err != nil {
		return nil, err
	}

	entries, err := s.source.FetchHistory(ctx, channel.ChannelID, results, channel.ReadKey)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	readings := make([]types.Reading, 0, len(entries))
	for i := range entries {
		if reading := s.normalizer.Normalize(&entries[i]); reading != nil {
			readings = append(readings, *reading)
		}
	}
	return readings, nil
}

// GetHistoryInRange fetches MaxRangeResults and filters to r.
// Without a range it returns the DefaultResults most recent readings.
func (s *Service) GetHistoryInRange(ctx context.Context, r *DateRange) ([]types.Reading, error) {
	if r == nil {
		return s.GetHistory(ctx, DefaultResults)
	}

	readings, err := s.GetHistory(ctx, MaxRangeResults)
	if err != nil {
		return nil, err
	}
	filtered := FilterByRange(readings, *r)
	log.Printf("history: %d of %d readings between %s and %s", len(filtered), len(readings),
		r.Start.Format(dayLayout), r.End.Format(dayLayout))
	return filtered, nil
}
