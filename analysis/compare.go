package analysis

import "math"

// Metrics contains distance measurements between a reference and a
// candidate impulse response.
type Metrics struct {
	SampleRate int `json:"sample_rate"`
	Frames     int `json:"frames"`

	EnvelopeRMSEDB  float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB  float64 `json:"spectral_rmse_db"`
	RefPeakHz       float64 `json:"ref_peak_hz"`
	CandPeakHz      float64 `json:"cand_peak_hz"`
	PitchErrorCents float64 `json:"pitch_error_cents"`
	RefDecayDBPerS  float64 `json:"ref_decay_db_per_s"`
	CandDecayDBPerS float64 `json:"cand_decay_db_per_s"`
	DecayDiffDBPerS float64 `json:"decay_diff_db_per_s"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

const (
	envFrame = 256
	envHop   = 128
)

// Compare returns distance metrics and a combined score in [0,1] (0 is
// identical). Both signals are assumed to start at the excitation.
func Compare(reference []float64, candidate []float64, sampleRate int) Metrics {
	m := Metrics{SampleRate: sampleRate, Score: 1}
	n := minInt(len(reference), len(candidate))
	if sampleRate <= 0 || n < 512 {
		return m
	}
	m.Frames = n

	ref := normalizeRMS(reference[:n], 0.1)
	cand := normalizeRMS(candidate[:n], 0.1)

	refEnv := RMSEnvelope(ref, envFrame, envHop)
	candEnv := RMSEnvelope(cand, envFrame, envHop)
	if len(refEnv) > 0 {
		diff := make([]float64, len(refEnv))
		for i := range refEnv {
			diff[i] = linToDB(refEnv[i]) - linToDB(candEnv[i])
		}
		m.EnvelopeRMSEDB = rms(diff)
	}

	fftSize := minInt(n, 1<<15)
	refSpec, errR := MagnitudeSpectrum(ref, sampleRate, fftSize)
	candSpec, errC := MagnitudeSpectrum(cand, sampleRate, fftSize)
	if errR == nil && errC == nil {
		rb := refSpec.BandEnergiesDB(40)
		cb := candSpec.BandEnergiesDB(40)
		diff := make([]float64, len(rb))
		for i := range rb {
			diff[i] = math.Max(rb[i], -120) - math.Max(cb[i], -120)
		}
		m.SpectralRMSEDB = rms(diff)

		nyq := float64(sampleRate) / 2
		m.RefPeakHz = refSpec.PeakNear(20, nyq)
		m.CandPeakHz = candSpec.PeakNear(20, nyq)
		if m.RefPeakHz > 0 && m.CandPeakHz > 0 {
			m.PitchErrorCents = math.Abs(1200 * math.Log2(m.CandPeakHz/m.RefPeakHz))
		}
	}

	hopSec := float64(envHop) / float64(sampleRate)
	m.RefDecayDBPerS = DecaySlopeDBPerS(refEnv, hopSec)
	m.CandDecayDBPerS = DecaySlopeDBPerS(candEnv, hopSec)
	if isFinite(m.RefDecayDBPerS) && isFinite(m.CandDecayDBPerS) {
		m.DecayDiffDBPerS = math.Abs(m.RefDecayDBPerS - m.CandDecayDBPerS)
	}

	envNorm := clamp01(m.EnvelopeRMSEDB / 30.0)
	specNorm := clamp01(m.SpectralRMSEDB / 30.0)
	pitchNorm := clamp01(m.PitchErrorCents / 100.0)
	decNorm := clamp01(m.DecayDiffDBPerS / 40.0)
	m.Score = clamp01(0.25*envNorm + 0.30*specNorm + 0.30*pitchNorm + 0.15*decNorm)
	m.Similarity = clamp01(math.Exp(-4.0 * m.Score))
	return m
}

func normalizeRMS(x []float64, target float64) []float64 {
	r := rms(x)
	if r <= 1e-12 {
		return append([]float64(nil), x...)
	}
	g := target / r
	out := make([]float64, len(x))
	for i := range x {
		out[i] = x[i] * g
	}
	return out
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
