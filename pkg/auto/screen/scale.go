package screen

import "math"

// normalizeScale 非法值或接近 1 的比例视为 1
func normalizeScale(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0.5 || v > 4.0 {
		return 1.0
	}
	if math.Abs(v-1.0) < 0.05 {
		return 1.0
	}
	return v
}

func scaleInt(value int, factor float64) int {
	if factor <= 0 {
		return value
	}
	return int(math.Round(float64(value) * factor))
}
