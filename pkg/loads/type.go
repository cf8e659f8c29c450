package loads

import "errors"

var ErrUnknownLoad = errors.New("unknown load")

type Category uint8

const (
	CategoryLight Category = iota
	CategoryFan
	CategoryAppliance
	CategoryCritical
)

var categoryKeys = map[Category]string{
	CategoryLight:     "light",
	CategoryFan:       "fan",
	CategoryAppliance: "appliance",
	CategoryCritical:  "critical",
}

var categoryColors = map[Category]string{
	CategoryLight:     "yellow",
	CategoryFan:       "blue",
	CategoryAppliance: "green",
	CategoryCritical:  "red",
}

func (c Category) String() string {
	if k, ok := categoryKeys[c]; ok {
		return k
	}
	return "unknown"
}

func (c Category) Color() string {
	if col, ok := categoryColors[c]; ok {
		return col
	}
	return "gray"
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Load is a switchable consumer on the grid. Switching is simulated.
type Load struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"type"`
	Color       string   `json:"color"`
	On          bool     `json:"status"`
	PowerWatts  float64  `json:"power"`
	Description string   `json:"description"`
}

func DefaultLoads() []Load {
	return []Load{
		{ID: "1", Name: "Main Lighting", Category: CategoryLight, On: true, PowerWatts: 45, Description: "Kitchen and living area lights"},
		{ID: "2", Name: "Ceiling Fan", Category: CategoryFan, On: false, PowerWatts: 75, Description: "Bedroom ceiling fan"},
		{ID: "3", Name: "Water Pump", Category: CategoryCritical, On: true, PowerWatts: 150, Description: "Main water supply pump"},
		{ID: "4", Name: "Outdoor Lights", Category: CategoryLight, On: false, PowerWatts: 30, Description: "Garden and pathway lighting"},
		{ID: "5", Name: "Workshop Tools", Category: CategoryAppliance, On: false, PowerWatts: 200, Description: "Power tools and equipment"},
	}
}
