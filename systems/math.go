package systems

import "math"

// Distance functions

// distanceSq returns the squared distance between two points.
func distanceSq(x1, y1, x2, y2 float32) float32 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

// magnitude returns the length of a vector.
func magnitude(x, y float32) float32 {
	return float32(math.Sqrt(float64(x*x + y*y)))
}
