package audio

import "math"

// volumeToPower maps a linear 0..1 volume to beep's base-2 exponent.
// Unity gain is 0; anything at or below 0.01 is treated as silent.
func volumeToPower(vol float64) float64 {
	if vol <= 0.01 {
		return -10 // Silent
	}
	return math.Log2(vol)
}
