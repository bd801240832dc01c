package fitcommon

import "math"

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func ToFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func ToFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

// PeakRMS returns the absolute peak and the RMS level of x.
func PeakRMS(x []float32) (peak float64, rms float64) {
	if len(x) == 0 {
		return 0, 0
	}
	var sum float64
	for _, s := range x {
		v := float64(s)
		if a := math.Abs(v); a > peak {
			peak = a
		}
		sum += v * v
	}
	return peak, math.Sqrt(sum / float64(len(x)))
}

// NormalizePeak scales x in place so that its absolute peak equals target.
func NormalizePeak(x []float32, target float64) {
	peak, _ := PeakRMS(x)
	if peak <= 1e-12 {
		return
	}
	g := float32(target / peak)
	for i := range x {
		x[i] *= g
	}
}
