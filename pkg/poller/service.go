package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/NotCoffee418/microgrid_monitor/pkg/normalizer"
	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
)

// Poller fetches the latest reading on an interval and publishes it.
// Failed or empty fetches publish a demo reading instead.
//
// Ticks of one session run on a single goroutine, so at most one fetch is in
// flight. Results of a session that has been replaced or stopped are dropped.
type Poller struct {
	source     LatestSource
	normalizer *normalizer.Normalizer
	interval   time.Duration
	demo       *DemoGenerator
	now        func() time.Time

	// serializes Configure and Stop
	lifecycleMu sync.Mutex

	mu          sync.Mutex
	activeId    uint64
	active      *session
	latest      *types.LiveUpdate
	lastFetch   time.Time
	subscribers map[uint64]func(types.LiveUpdate)
	nextSubId   uint64
}

func New(source LatestSource, n *normalizer.Normalizer, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		source:      source,
		normalizer:  n,
		interval:    interval,
		demo:        NewDemoGenerator(time.Now().UnixNano()),
		now:         time.Now,
		subscribers: make(map[uint64]func(types.LiveUpdate)),
	}
}

// Configure replaces the running session. A nil config runs in demo mode.
// The first tick happens immediately.
func (p *Poller) Configure(cfg *types.ChannelConfig) {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	p.teardown()

	var channel *types.ChannelConfig
	if cfg != nil {
		c := *cfg
		channel = &c
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	p.activeId++
	s := &session{
		id:      p.activeId,
		channel: channel,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	p.active = s
	p.mu.Unlock()

	if channel != nil {
		log.Printf("poller: polling channel %s every %s", channel.ChannelID, p.interval)
	} else {
		log.Printf("poller: no channel configured, publishing demo readings every %s", p.interval)
	}
	go p.run(ctx, s)
}

// Stop cancels the running session and waits for it to exit.
func (p *Poller) Stop() {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()
	p.teardown()
}

// teardown must be called with lifecycleMu held.
func (p *Poller) teardown() {
	p.mu.Lock()
	s := p.active
	p.active = nil
	// invalidate late results before cancelling
	p.activeId++
	p.mu.Unlock()

	if s == nil {
		return
	}
	s.cancel()
	<-s.done
	log.Printf("poller: session %d stopped", s.id)
}

// Subscribe registers fn for every published update.
// fn runs on the polling goroutine and should return quickly.
func (p *Poller) Subscribe(fn func(types.LiveUpdate)) (unsubscribe func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextSubId++
	id := p.nextSubId
	p.subscribers[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

// Latest returns the last published update, or nil.
func (p *Poller) Latest() *types.LiveUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.latest == nil {
		return nil
	}
	u := *p.latest
	return &u
}

// LastFetch is when real telemetry last arrived. Zero if never.
func (p *Poller) LastFetch() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastFetch
}

func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.active == nil:
		return Stopped
	case p.active.channel == nil:
		return Unconfigured
	default:
		return Polling
	}
}

func (p *Poller) run(ctx context.Context, s *session) {
	defer close(s.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx, s)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx, s)
		}
	}
}

func (p *Poller) tick(ctx context.Context, s *session) {
	update := p.fetch(ctx, s.channel)
	if ctx.Err() != nil {
		return
	}
	p.publish(s.id, update)
}

func (p *Poller) fetch(ctx context.Context, channel *types.ChannelConfig) types.LiveUpdate {
	if channel == nil {
		return p.demoUpdate("")
	}

	entry, err := p.source.FetchLatest(ctx, channel.ChannelID, channel.ReadKey)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("poller: fetch failed for channel %s, using demo values: %v", channel.ChannelID, err)
		}
		return p.demoUpdate(channel.ChannelID)
	}

	reading := p.normalizer.Normalize(entry)
	if reading == nil {
		log.Printf("poller: channel %s returned no entry, using demo values", channel.ChannelID)
		return p.demoUpdate(channel.ChannelID)
	}

	return types.LiveUpdate{
		Reading:   *reading,
		ChannelID: channel.ChannelID,
		FetchedAt: p.now(),
	}
}

func (p *Poller) demoUpdate(channelId string) types.LiveUpdate {
	now := p.now()
	return types.LiveUpdate{
		Reading:   p.demo.Reading(now),
		Demo:      true,
		ChannelID: channelId,
		FetchedAt: now,
	}
}

func (p *Poller) publish(sessionId uint64, update types.LiveUpdate) {
	p.mu.Lock()
	if sessionId != p.activeId {
		p.mu.Unlock()
		return
	}
	p.latest = &update
	if !update.Demo {
		p.lastFetch = update.FetchedAt
	}
	subs := make([]func(types.LiveUpdate), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(update)
	}
}
