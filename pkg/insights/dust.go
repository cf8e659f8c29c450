package insights

const (
	DustThreshold = 15.0
	RainThreshold = 0.5 // mm
)

type DustAdvisory uint8

const (
	NoAdvisory DustAdvisory = iota
	CleaningRecommended
	CleaningMayNotBeNeeded
)

var dustAdvisoryText = map[DustAdvisory]string{
	NoAdvisory:             "",
	CleaningRecommended:    "cleaning recommended",
	CleaningMayNotBeNeeded: "cleaning may not be needed",
}

func (a DustAdvisory) String() string {
	return dustAdvisoryText[a]
}

func (a DustAdvisory) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// AdviseCleaning looks at dust against recent rain.
// A nil precipitation means no weather reading, which counts as no rain.
func AdviseCleaning(dust float64, precipitation *float64) DustAdvisory {
	if dust <= DustThreshold {
		return NoAdvisory
	}
	if precipitation != nil && *precipitation >= RainThreshold {
		return CleaningMayNotBeNeeded
	}
	return CleaningRecommended
}
