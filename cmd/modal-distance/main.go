package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-modal/analysis"
	"github.com/cwbudde/algo-modal/internal/fitcommon"
	"github.com/cwbudde/algo-modal/modal"
	"github.com/cwbudde/algo-modal/preset"
)

func main() {
	referencePath := flag.String("reference", "", "Reference WAV path")
	candidatePath := flag.String("candidate", "", "Candidate WAV path; if empty, render the impulse response of -preset")
	presetPath := flag.String("preset", "", "Preset JSON path for the rendered candidate (default: factory preset)")
	sampleRate := flag.Int("sample-rate", 48000, "Analysis sample rate in Hz")
	duration := flag.Float64("duration", 3.0, "Rendered candidate length in seconds")
	writeCandidate := flag.String("write-candidate", "", "Optional path to write the rendered candidate WAV")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	flag.Parse()

	if *referencePath == "" {
		die("-reference is required")
	}
	ref, err := readAt(*referencePath, *sampleRate)
	if err != nil {
		die("failed to read reference: %v", err)
	}

	var cand []float64
	if *candidatePath != "" {
		cand, err = readAt(*candidatePath, *sampleRate)
		if err != nil {
			die("failed to read candidate: %v", err)
		}
	} else {
		p := preset.NewDefault()
		if *presetPath != "" {
			if p, err = preset.LoadJSON(*presetPath); err != nil {
				die("failed to load preset: %v", err)
			}
		}
		frames := fitcommon.MaxInt(1, int(*duration*float64(*sampleRate)))
		out, err := renderImpulse(p, *sampleRate, frames)
		if err != nil {
			die("failed to render candidate: %v", err)
		}
		if *writeCandidate != "" {
			if err := fitcommon.WriteMonoWAV(*writeCandidate, out, *sampleRate); err != nil {
				die("failed to write candidate: %v", err)
			}
		}
		cand = fitcommon.ToFloat64(out)
	}

	m := analysis.Compare(ref, cand, *sampleRate)
	if *jsonOut {
		b, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			die("failed to encode metrics: %v", err)
		}
		fmt.Println(string(b))
		return
	}

	fmt.Printf("Frames:        %d @ %d Hz\n", m.Frames, m.SampleRate)
	fmt.Printf("Envelope RMSE: %.2f dB\n", m.EnvelopeRMSEDB)
	fmt.Printf("Spectral RMSE: %.2f dB\n", m.SpectralRMSEDB)
	fmt.Printf("Peak:          ref %.2f Hz, cand %.2f Hz (%.1f cents)\n", m.RefPeakHz, m.CandPeakHz, m.PitchErrorCents)
	fmt.Printf("Decay:         ref %.1f dB/s, cand %.1f dB/s\n", m.RefDecayDBPerS, m.CandDecayDBPerS)
	fmt.Printf("Score:         %.4f (similarity %.2f%%)\n", m.Score, m.Similarity*100.0)
}

func readAt(path string, sampleRate int) ([]float64, error) {
	x, rate, err := fitcommon.ReadWAVMono(path)
	if err != nil {
		return nil, err
	}
	return fitcommon.ResampleIfNeeded(x, rate, sampleRate)
}

func renderImpulse(p *preset.Preset, sampleRate int, frames int) ([]float32, error) {
	e, err := modal.NewEngine(sampleRate)
	if err != nil {
		return nil, err
	}
	params, err := p.Apply(e)
	if err != nil {
		return nil, err
	}
	excite := make([]float32, frames)
	excite[0] = 1
	out := make([]float32, frames)
	e.Render(params, modal.Block{Excite: excite}, out)
	return out, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
