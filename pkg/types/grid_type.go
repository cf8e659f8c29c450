package types

import "fmt"

type GridType uint8

const (
	GridSolar GridType = iota
	GridWind
	GridOther
)

const DefaultGridType = GridSolar

type GridDisplay struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

var gridDisplays = map[GridType]GridDisplay{
	GridSolar: {Key: "solar", Title: "Solar Grid Dashboard"},
	GridWind:  {Key: "wind", Title: "Windmill Grid Dashboard"},
	GridOther: {Key: "other", Title: "Hybrid/Other Grid Dashboard"},
}

func (g GridType) Display() GridDisplay {
	if d, ok := gridDisplays[g]; ok {
		return d
	}
	return GridDisplay{Key: "unknown", Title: "Microgrid Dashboard"}
}

func (g GridType) String() string {
	return g.Display().Key
}

func ParseGridType(s string) (GridType, error) {
	for g, d := range gridDisplays {
		if d.Key == s {
			return g, nil
		}
	}
	return DefaultGridType, fmt.Errorf("unknown grid type %q", s)
}
