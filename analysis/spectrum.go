package analysis

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
)

// ErrTooShort is returned when a signal is too short to analyse.
var ErrTooShort = errors.New("signal too short")

// Spectrum is a one-sided magnitude spectrum.
type Spectrum struct {
	SampleRate int
	FFTSize    int
	Mag        []float64
}

// BinHz returns the width of one bin in Hz.
func (s *Spectrum) BinHz() float64 {
	return float64(s.SampleRate) / float64(s.FFTSize)
}

// MagnitudeSpectrum computes a Hann-windowed spectrum of the first
// fftSize samples of x (zero padded if x is shorter). fftSize is rounded
// up to a power of two.
func MagnitudeSpectrum(x []float64, sampleRate int, fftSize int) (*Spectrum, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if len(x) < 2 || fftSize < 2 {
		return nil, ErrTooShort
	}
	n := nextPow2(fftSize)
	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("NewPlan64: %w", err)
	}

	m := len(x)
	if m > n {
		m = n
	}
	in := make([]complex128, n)
	for i := 0; i < m; i++ {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(m-1))
		in[i] = complex(x[i]*w, 0)
	}
	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("Forward: %w", err)
	}

	mag := make([]float64, n/2+1)
	for k := range mag {
		mag[k] = math.Hypot(real(out[k]), imag(out[k]))
	}
	return &Spectrum{SampleRate: sampleRate, FFTSize: n, Mag: mag}, nil
}

// PeakFrequency returns the frequency of the strongest spectral peak of
// x, refined by parabolic interpolation of the log magnitude.
func PeakFrequency(x []float64, sampleRate int) (float64, error) {
	spec, err := MagnitudeSpectrum(x, sampleRate, minInt(len(x), 1<<16))
	if err != nil {
		return 0, err
	}
	return spec.PeakNear(0, float64(sampleRate)/2), nil
}

// PeakNear returns the interpolated peak frequency within [loHz, hiHz],
// or 0 if the band holds no bins.
func (s *Spectrum) PeakNear(loHz, hiHz float64) float64 {
	binHz := s.BinHz()
	lo := int(math.Ceil(loHz / binHz))
	hi := int(math.Floor(hiHz / binHz))
	if lo < 1 {
		lo = 1
	}
	if hi > len(s.Mag)-2 {
		hi = len(s.Mag) - 2
	}
	if lo > hi {
		return 0
	}
	best := lo
	for k := lo + 1; k <= hi; k++ {
		if s.Mag[k] > s.Mag[best] {
			best = k
		}
	}
	a := linToDB(s.Mag[best-1])
	b := linToDB(s.Mag[best])
	c := linToDB(s.Mag[best+1])
	offset := 0.0
	if den := a - 2*b + c; math.Abs(den) > 1e-12 {
		offset = 0.5 * (a - c) / den
	}
	if offset > 0.5 || offset < -0.5 {
		offset = 0
	}
	return (float64(best) + offset) * binHz
}

// BandEnergiesDB sums the spectrum into third-octave bands starting at
// loHz and returns the level of each band in dB.
func (s *Spectrum) BandEnergiesDB(loHz float64) []float64 {
	ratio := math.Pow(2, 1.0/6.0)
	nyquist := float64(s.SampleRate) / 2
	binHz := s.BinHz()
	var out []float64
	for center := loHz; center*ratio < nyquist; center *= ratio * ratio {
		k0 := int(center / ratio / binHz)
		k1 := int(center * ratio / binHz)
		if k1 >= len(s.Mag) {
			k1 = len(s.Mag) - 1
		}
		var e float64
		for k := k0; k <= k1; k++ {
			e += s.Mag[k] * s.Mag[k]
		}
		out = append(out, 10*math.Log10(e+1e-24))
	}
	return out
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func linToDB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
}
