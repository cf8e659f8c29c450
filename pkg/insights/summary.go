package insights

import (
	"fmt"

	"github.com/NotCoffee418/microgrid_monitor/pkg/types"
)

// Input collects what the dashboard knows right now.
// Precipitation and WindSpeed are nil without a weather reading.
type Input struct {
	Reading        types.Reading
	BatterySamples []float64
	Precipitation  *float64
	WindSpeed      *float64
	GridType       types.GridType
}

type Summary struct {
	Depletion      DepletionEstimate `json:"depletion"`
	DepletionText  string            `json:"depletion_text"`
	RapidDischarge bool              `json:"rapid_discharge"`
	DustAdvisory   DustAdvisory      `json:"dust_advisory"`
	WindPowerWatts *float64          `json:"wind_power_watts,omitempty"`
	Suggestions    []string          `json:"suggestions"`
}

func Summarize(in Input) Summary {
	depletion := EstimateDepletion(in.Reading.BatteryLevel, in.Reading.Generation)
	s := Summary{
		Depletion:      depletion,
		DepletionText:  depletion.String(),
		RapidDischarge: IsRapidDischarge(in.BatterySamples),
		DustAdvisory:   AdviseCleaning(in.Reading.Dust, in.Precipitation),
		Suggestions:    []string{},
	}

	switch s.DustAdvisory {
	case CleaningRecommended:
		s.Suggestions = append(s.Suggestions, "Dust level high. Recommend cleaning solar panels.")
	case CleaningMayNotBeNeeded:
		s.Suggestions = append(s.Suggestions, "Dust high, but recent rain detected. Cleaning may not be needed.")
	case NoAdvisory:
	}

	if s.RapidDischarge {
		s.Suggestions = append(s.Suggestions, "Battery discharging rapidly. Consider reducing load.")
	}

	if in.GridType == types.GridWind && in.WindSpeed != nil && *in.WindSpeed > 0 {
		watts := EstimateWindPower(*in.WindSpeed)
		s.WindPowerWatts = &watts
		s.Suggestions = append(s.Suggestions, fmt.Sprintf("Estimated wind power: %.0f W (approx)", watts))
	}

	return s
}
