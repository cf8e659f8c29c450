package normalizer

import (
	"math"
	"strconv"
	"strings"

	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
)

type Normalizer struct {
	mapping FieldMapping
}

var defaultNormalizer = &Normalizer{mapping: DefaultFieldMapping}

func New(mapping FieldMapping) (*Normalizer, error) {
	if err := mapping.Validate(); err != nil {
		return nil, err
	}
	return &Normalizer{mapping: mapping}, nil
}

// Normalize maps an entry using DefaultFieldMapping.
func Normalize(entry *types.RawEntry) *types.Reading {
	return defaultNormalizer.Normalize(entry)
}

func (n *Normalizer) Mapping() FieldMapping {
	return n.mapping
}

// Normalize turns a raw entry into a Reading. Returns nil for a nil entry.
// Missing or non-numeric fields become 0; the timestamp is passed through as is.
func (n *Normalizer) Normalize(entry *types.RawEntry) *types.Reading {
	if entry == nil {
		return nil
	}

	field := func(index int) float64 {
		v, _ := entry.Field(index)
		return ParseNumber(v)
	}

	return &types.Reading{
		Timestamp:    entry.CreatedAt,
		Generation:   field(n.mapping.Generation),
		Voltage:      field(n.mapping.Voltage),
		BatteryLevel: field(n.mapping.BatteryLevel),
		Temperature:  field(n.mapping.Temperature),
		Dust:         field(n.mapping.Dust),
	}
}

// ParseNumber coerces a field to a float. Anything that is not a finite number is 0.
func ParseNumber(v types.FieldValue) float64 {
	if !v.Valid {
		return 0
	}
	s := strings.TrimSpace(v.Value)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
