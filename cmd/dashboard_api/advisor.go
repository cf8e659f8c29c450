package main

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/NotCoffee418/microgrid_monitor/pkg/alerts"
	"github.com/NotCoffee418/microgrid_monitor/pkg/insights"
	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
)

const lowBatteryLevel = 20.0

type alertRaiser interface {
	Raise(severity alerts.Severity, title, description string, at time.Time) (*alerts.Alert, error)
}

// advisor follows live updates, keeps the battery trend and raises an alert
// when a condition starts. Demo readings are ignored.
type advisor struct {
	trend  *insights.BatteryTrend
	alerts alertRaiser
	now    func() time.Time

	mu         sync.Mutex
	rapid      bool
	lowBattery bool
}

func newAdvisor(trend *insights.BatteryTrend, alerts alertRaiser) *advisor {
	return &advisor{trend: trend, alerts: alerts, now: time.Now}
}

func (a *advisor) Handle(u types.LiveUpdate) {
	if u.Demo {
		return
	}
	a.trend.Add(u.Reading.BatteryLevel)
	samples := a.trend.Samples()
	rapid := insights.IsRapidDischarge(samples)
	low := u.Reading.BatteryLevel < lowBatteryLevel

	a.mu.Lock()
	startRapid := rapid && !a.rapid
	startLow := low && !a.lowBattery
	a.rapid = rapid
	a.lowBattery = low
	a.mu.Unlock()

	if startRapid {
		a.raise(alerts.SeverityWarning, "Rapid Battery Discharge",
			fmt.Sprintf("Battery dropped from %.0f%% to %.0f%% over the last %d readings. Consider reducing load.",
				samples[0], samples[len(samples)-1], len(samples)))
	}
	if startLow {
		a.raise(alerts.SeverityWarning, "Low Battery Level",
			fmt.Sprintf("Battery charge has dropped to %.0f%%. Consider reducing load or check the generation source.",
				u.Reading.BatteryLevel))
	}
}

// Reset forgets the trend, used when the channel changes.
func (a *advisor) Reset() {
	a.trend.Reset()
	a.mu.Lock()
	a.rapid = false
	a.lowBattery = false
	a.mu.Unlock()
}

func (a *advisor) raise(severity alerts.Severity, title, description string) {
	if _, err := a.alerts.Raise(severity, title, description, a.now()); err != nil {
		log.Printf("advisor: could not raise %q: %v", title, err)
		return
	}
	log.Printf("advisor: raised %q", title)
}
