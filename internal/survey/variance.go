package survey

import "math"

// CoordinateStats summarises the signal strength readings taken at one position
type CoordinateStats struct {
	Position
	Count  int     // Number of readings with a signal strength
	Mean   float64 // Mean signal strength in dBm
	StdDev float64 // Sample standard deviation in dB, 0 for a single reading
}

// StdDevFromSums returns the sample standard deviation of n values given
// their sum and sum of squares. Fewer than two values yield 0.
func StdDevFromSums(n int, sum, sumSquares float64) float64 {
	if n < 2 {
		return 0
	}
	mean := sum / float64(n)
	v := (sumSquares - float64(n)*mean*mean) / float64(n-1)
	if v <= 0 {
		return 0
	}
	return math.Sqrt(v)
}
