package alerts

import (
	"errors"
	"fmt"
	"time"

	"github.com/NotCoffee418/microgrid_monitor/pkg/settingsdb"
)

var ErrEmptyTitle = errors.New("alert title is required")

// Hour of day scheduled activities are placed at.
const ScheduledHour = 9

type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityInfo
)

type SeverityDisplay struct {
	Badge string `json:"badge"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

var severityKeys = map[Severity]string{
	SeverityWarning: "warning",
	SeverityError:   "error",
	SeverityInfo:    "info",
}

var severityDisplays = map[Severity]SeverityDisplay{
	SeverityWarning: {Badge: "Warning", Icon: "alert-triangle", Color: "yellow"},
	SeverityError:   {Badge: "Critical", Icon: "alert-triangle", Color: "red"},
	SeverityInfo:    {Badge: "Info", Icon: "clock", Color: "blue"},
}

func (s Severity) String() string {
	if k, ok := severityKeys[s]; ok {
		return k
	}
	return "unknown"
}

func (s Severity) Display() SeverityDisplay {
	if d, ok := severityDisplays[s]; ok {
		return d
	}
	return SeverityDisplay{Badge: "Unknown", Icon: "alert-triangle", Color: "gray"}
}

func ParseSeverity(s string) (Severity, error) {
	for sev, key := range severityKeys {
		if key == s {
			return sev, nil
		}
	}
	return SeverityInfo, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(b []byte) error {
	parsed, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

type Alert struct {
	ID           string          `json:"id"`
	Severity     Severity        `json:"type"`
	Display      SeverityDisplay `json:"display"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Timestamp    time.Time       `json:"timestamp"`
	Acknowledged bool            `json:"acknowledged"`
}

// Store is the persistence the alert service needs.
type Store interface {
	InsertAlert(row *settingsdb.AlertRow) error
	GetAlertsSince(since int64) ([]settingsdb.AlertRow, error)
	ToggleAlertAcknowledged(id string) (bool, error)
}
