package alerts

import (
	"fmt"
	"strings"
	"time"

	"github.com/NotCoffee418/microgrid_monitor/pkg/settingsdb"
	"github.com/google/uuid"
)

// Service keeps the alert list. Only alerts dated today or later are listed.
type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Raise(severity Severity, title, description string, at time.Time) (*Alert, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	row := &settingsdb.AlertRow{
		ID:          uuid.NewString(),
		Severity:    uint8(severity),
		Title:       title,
		Description: description,
		Timestamp:   at.Unix(),
	}
	if err := s.store.InsertAlert(row); err != nil {
		return nil, fmt.Errorf("insert alert: %w", err)
	}
	a := fromRow(row, at.Location())
	return &a, nil
}

// Schedule adds an info alert at 09:00 on the given day.
func (s *Service) Schedule(day time.Time, title string) (*Alert, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	at := time.Date(day.Year(), day.Month(), day.Day(), ScheduledHour, 0, 0, 0, day.Location())
	return s.Raise(SeverityInfo, title, "User scheduled: "+title, at)
}

// List returns alerts dated on now's day or later, oldest first.
func (s *Service) List(now time.Time) ([]Alert, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	rows, err := s.store.GetAlertsSince(dayStart.Unix())
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	out := make([]Alert, 0, len(rows))
	for i := range rows {
		out = append(out, fromRow(&rows[i], now.Location()))
	}
	return out, nil
}

// Acknowledge toggles the acknowledged flag and returns the new value.
func (s *Service) Acknowledge(id string) (bool, error) {
	return s.store.ToggleAlertAcknowledged(id)
}

// MaintenanceEvents are listed alerts that mention maintenance.
func (s *Service) MaintenanceEvents(now time.Time) ([]Alert, error) {
	all, err := s.List(now)
	if err != nil {
		return nil, err
	}
	var out []Alert
	for _, a := range all {
		if mentionsMaintenance(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Service) UnacknowledgedCount(now time.Time) (int, error) {
	all, err := s.List(now)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, a := range all {
		if !a.Acknowledged {
			count++
		}
	}
	return count, nil
}

func mentionsMaintenance(a Alert) bool {
	return strings.Contains(strings.ToLower(a.Title), "maintenance") ||
		strings.Contains(strings.ToLower(a.Description), "maintenance")
}

func fromRow(row *settingsdb.AlertRow, loc *time.Location) Alert {
	sev := Severity(row.Severity)
	return Alert{
		ID:           row.ID,
		Severity:     sev,
		Display:      sev.Display(),
		Title:        row.Title,
		Description:  row.Description,
		Timestamp:    time.Unix(row.Timestamp, 0).In(loc),
		Acknowledged: row.Acknowledged,
	}
}
