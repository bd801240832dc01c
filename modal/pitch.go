package modal

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

// FreqC4 is the frequency reached by 0 V on the V/oct input.
const FreqC4 = 261.6256

// knobToFreq applies the exponential taper of the frequency selector.
func knobToFreq(knob float32) float32 {
	return float32(math.Pow(float64(knob), 10.0))
}

// voltsToFreq converts a 1 V/oct pitch voltage to Hz, referenced to C4.
func voltsToFreq(volts float32) float32 {
	return FreqC4 * pow2Approx(volts)
}

func pow2Approx(x float32) float32 {
	const ln2 = 0.69314718055994530942
	return approx.FastExp(x * ln2)
}

func clampFloat32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
