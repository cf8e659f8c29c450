package settingsdb

import "errors"

const (
	KeyChannelID    = "thingspeak_channel_id"
	KeyReadApiKey   = "thingspeak_read_api_key"
	KeySelectedGrid = "selected_grid"
)

var ErrAlertNotFound = errors.New("alert not found")

// SettingsStore is a small string key-value store.
// Get reports found=false for absent keys, which is not an error.
type SettingsStore interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Delete(key string) error
}

type AlertRow struct {
	ID           string `db:"id"`
	Severity     uint8  `db:"severity"`
	Title        string `db:"title"`
	Description  string `db:"description"`
	Timestamp    int64  `db:"timestamp"`
	Acknowledged bool   `db:"acknowledged"`
}
