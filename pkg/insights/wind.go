package insights

// Rough turbine output per km/h of wind, good enough for a dashboard hint.
const wattPerKmh = 2.0

// EstimateWindPower returns watts for a wind speed in km/h.
func EstimateWindPower(windSpeedKmh float64) float64 {
	if windSpeedKmh <= 0 {
		return 0
	}
	return windSpeedKmh * wattPerKmh
}
