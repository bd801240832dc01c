package modal

import (
	"math"
	"testing"
)

func measureFundamentalFreq(samples []float32, sampleRate float32) float32 {
	startIdx := len(samples) / 10
	crossings := 0
	for i := startIdx + 1; i < len(samples); i++ {
		if (samples[i-1] < 0 && samples[i] >= 0) || (samples[i-1] >= 0 && samples[i] < 0) {
			crossings++
		}
	}
	if crossings == 0 {
		return 0
	}
	duration := float32(len(samples)-startIdx) / sampleRate
	return float32(crossings) / (2.0 * duration)
}

func windowPeak(samples []float32) float64 {
	peak := 0.0
	for _, s := range samples {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	return peak
}

func impulse(n int, amp float32) []float32 {
	x := make([]float32, n)
	if n > 0 {
		x[0] = amp
	}
	return x
}

func knobForFreq(hz float64) float32 {
	return float32(math.Pow(hz, 0.1))
}

func newTestEngine(t *testing.T, sampleRate int) *Engine {
	t.Helper()
	e, err := NewEngine(sampleRate)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func closeTo(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
