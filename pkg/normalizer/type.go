package normalizer

import (
	"errors"
	"fmt"

	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
)

var ErrInvalidFieldMapping = errors.New("invalid field mapping")

// FieldMapping assigns a numbered channel field (1..8) to each quantity.
// This is the only place the numbering convention lives.
type FieldMapping struct {
	Generation   int `toml:"generation" json:"generation"`
	Voltage      int `toml:"voltage" json:"voltage"`
	BatteryLevel int `toml:"battery_level" json:"battery_level"`
	Temperature  int `toml:"temperature" json:"temperature"`
	Dust         int `toml:"dust" json:"dust"`
}

// field1 current, field3 voltage, field5 dust, field6 temperature, field7 battery.
// field2, field4 and field8 are unused on the reference hardware.
var DefaultFieldMapping = FieldMapping{
	Generation:   1,
	Voltage:      3,
	Dust:         5,
	Temperature:  6,
	BatteryLevel: 7,
}

func (m FieldMapping) Validate() error {
	seen := make(map[int]string, 5)
	for _, f := range []struct {
		name  string
		index int
	}{
		{"generation", m.Generation},
		{"voltage", m.Voltage},
		{"battery_level", m.BatteryLevel},
		{"temperature", m.Temperature},
		{"dust", m.Dust},
	} {
		if f.index < 1 || f.index > types.MaxFields {
			return fmt.Errorf("%w: %s uses field%d, must be 1..%d", ErrInvalidFieldMapping, f.name, f.index, types.MaxFields)
		}
		if other, dup := seen[f.index]; dup {
			return fmt.Errorf("%w: field%d assigned to both %s and %s", ErrInvalidFieldMapping, f.index, other, f.name)
		}
		seen[f.index] = f.name
	}
	return nil
}
