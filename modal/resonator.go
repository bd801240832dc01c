package modal

import (
	"math"

	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// Resonator is a single damped mode: a complex one-pole recurrence
// z[n] = c * (z[n-1] + x[n]) with c = r*e^(jw).
//
// SetCoeffs only touches c, so the mode keeps ringing across parameter
// changes.
type Resonator struct {
	fs  float64
	cRe float32
	cIm float32
	re  float32
	im  float32
}

// NewResonator returns a silent resonator running at sampleRate.
func NewResonator(sampleRate int) *Resonator {
	r := &Resonator{}
	r.init(sampleRate)
	return r
}

func (r *Resonator) init(sampleRate int) {
	r.fs = float64(sampleRate)
	r.cRe, r.cIm = 0, 0
	r.re, r.im = 0, 0
}

// SetCoeffs tunes the mode to freqHz with the given damping, expressed as
// a -3 dB bandwidth in Hz. Negative damping is treated as 0 so that the
// pole never leaves the unit circle.
func (r *Resonator) SetCoeffs(freqHz float32, damping float32) {
	if damping < 0 {
		damping = 0
	}
	radius := math.Exp(-math.Pi * float64(damping) / r.fs)
	w := 2.0 * math.Pi * float64(freqHz) / r.fs
	r.cRe = float32(radius * math.Cos(w))
	r.cIm = float32(radius * math.Sin(w))
}

// Process injects x and advances the mode by one sample. It returns the
// magnitude of the complex state followed by its real (cos) and
// imaginary (sin) parts.
func (r *Resonator) Process(x float32) (env, cos, sin float32) {
	re := r.re + x
	im := r.im
	nre := r.cRe*re - r.cIm*im
	nim := r.cIm*re + r.cRe*im
	r.re = float32(dspcore.FlushDenormals(float64(nre)))
	r.im = float32(dspcore.FlushDenormals(float64(nim)))
	env = float32(math.Sqrt(float64(r.re*r.re + r.im*r.im)))
	return env, r.re, r.im
}

// Radius returns the pole radius currently in use.
func (r *Resonator) Radius() float32 {
	return float32(math.Hypot(float64(r.cRe), float64(r.cIm)))
}

// Reset clears the recurrence state, leaving the coefficients alone.
func (r *Resonator) Reset() {
	r.re, r.im = 0, 0
}
