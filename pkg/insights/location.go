package insights

import (
	"fmt"
	"math"
)

// Beyond this distance in degrees we don't snap to a named location.
const NearestLocationCutoff = 0.5

type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

var DefaultLocations = []Location{
	{Name: "Bangalore", Lat: 12.9716, Lon: 77.5946},
	{Name: "Delhi", Lat: 28.6139, Lon: 77.2090},
	{Name: "Mumbai", Lat: 19.0760, Lon: 72.8777},
	{Name: "Chennai", Lat: 13.0827, Lon: 80.2707},
	{Name: "Kolkata", Lat: 22.5726, Lon: 88.3639},
	{Name: "Hyderabad", Lat: 17.3850, Lon: 78.4867},
}

// NearestLocation picks the closest candidate in plain degree space.
// When none is within the cutoff the raw coordinates become the location.
func NearestLocation(lat, lon float64, candidates []Location) Location {
	minDist := math.Inf(1)
	var nearest *Location
	for i := range candidates {
		d := math.Hypot(candidates[i].Lat-lat, candidates[i].Lon-lon)
		if d < minDist {
			minDist = d
			nearest = &candidates[i]
		}
	}

	if nearest != nil && minDist < NearestLocationCutoff {
		return *nearest
	}
	return Location{
		Name: fmt.Sprintf("%.4f, %.4f", lat, lon),
		Lat:  lat,
		Lon:  lon,
	}
}
