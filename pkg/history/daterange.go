package history

import (
	"fmt"
	"time"

	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
)

const dayLayout = "2006-01-02"

// DateRange is inclusive on both ends.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// roundToDayStart returns the start of the UTC day for the given time
func roundToDayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// getDayEnd returns the last instant of the day (next day start - 1ns)
func getDayEnd(dayStart time.Time) time.Time {
	return dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// NewDayRange covers startDay 00:00 through the end of endDay, in UTC.
func NewDayRange(startDay, endDay time.Time) DateRange {
	return DateRange{
		Start: roundToDayStart(startDay),
		End:   getDayEnd(roundToDayStart(endDay)),
	}
}

// ParseDayRange parses two YYYY-MM-DD dates.
func ParseDayRange(start, end string) (*DateRange, error) {
	startDay, err := time.Parse(dayLayout, start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	endDay, err := time.Parse(dayLayout, end)
	if err != nil {
		return nil, fmt.Errorf("invalid end date: %w", err)
	}
	if endDay.Before(startDay) {
		return nil, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	r := NewDayRange(startDay, endDay)
	return &r, nil
}

// FilterByRange keeps readings inside r, in their original order.
// Readings with unparseable timestamps are dropped.
func FilterByRange(readings []types.Reading, r DateRange) []types.Reading {
	filtered := make([]types.Reading, 0, len(readings))
	for _, reading := range readings {
		ts, err := reading.ParsedTimestamp()
		if err != nil {
			continue
		}
		if r.Contains(ts) {
			filtered = append(filtered, reading)
		}
	}
	return filtered
}
