package values

import "math"

// CartesianToPolar возвращает расстояние до начала координат и угол в
// градусах, как atan2 (-180..180).
func CartesianToPolar(x, y float64) (radius, angle float64) {
	return math.Hypot(x, y), math.Atan2(y, x) * 180 / math.Pi
}

// RotateXY поворачивает (x, y) против часовой стрелки.
func RotateXY(x, y, degrees float64) (float64, float64) {
	if degrees == 0 {
		return x, y
	}
	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return x*cos - y*sin, x*sin + y*cos
}
