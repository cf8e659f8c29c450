package gridutils

import "math"

// No negative values
func WToKw(w float64) float64 {
	if w < 0 {
		return 0
	}
	return w / 1000
}

func KwToW(kw float64) float64 {
	if kw < 0 {
		return 0
	}
	return kw * 1000
}

// FloorTo cuts v down to the given number of decimals.
func FloorTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Floor(v*p) / p
}

// RoundTo rounds v half away from zero to the given number of decimals.
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
