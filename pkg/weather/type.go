package weather

import "errors"

const DefaultBaseUrl = "https://api.open-meteo.com"

var ErrWeatherUnavailable = errors.New("weather unavailable")

// WeatherCode is a WMO weather interpretation code as used by Open-Meteo.
type WeatherCode int

type CodeDisplay struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

var unknownCode = CodeDisplay{Description: "Unknown", Icon: "❓"}

var codeDisplays = map[WeatherCode]CodeDisplay{
	0:  {"Clear sky", "☀️"},
	1:  {"Mainly clear", "🌤️"},
	2:  {"Partly cloudy", "🌤️"},
	3:  {"Overcast", "☁️"},
	45: {"Fog", "🌫️"},
	48: {"Fog", "🌫️"},
	51: {"Drizzle", "🌦️"},
	53: {"Drizzle", "🌦️"},
	55: {"Drizzle", "🌦️"},
	61: {"Rain", "🌧️"},
	63: {"Rain", "🌧️"},
	65: {"Rain", "🌧️"},
	71: {"Snow", "🌨️"},
	73: {"Snow", "🌨️"},
	75: {"Snow", "🌨️"},
	80: {"Rain showers", "🌦️"},
	81: {"Rain showers", "🌦️"},
	82: {"Rain showers", "🌦️"},
	95: {"Thunderstorm", "⛈️"},
	96: {"Thunderstorm with hail", "⛈️"},
	99: {"Thunderstorm with hail", "⛈️"},
}

func (c WeatherCode) Display() CodeDisplay {
	if d, ok := codeDisplays[c]; ok {
		return d
	}
	return unknownCode
}

func (c WeatherCode) String() string {
	return c.Display().Description
}

// Current is the current weather at a location.
// Pointers are nil when the upstream left the value out.
type Current struct {
	Time          string      `json:"time"`
	Temperature   *float64    `json:"temperature_2m"`
	Precipitation *float64    `json:"precipitation"`
	WindSpeed     *float64    `json:"wind_speed_10m"`
	Code          WeatherCode `json:"weather_code"`
}

type forecastResponse struct {
	Current *Current `json:"current"`
}
