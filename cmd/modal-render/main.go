package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cwbudde/algo-modal/analysis"
	"github.com/cwbudde/algo-modal/internal/fitcommon"
	"github.com/cwbudde/algo-modal/modal"
	"github.com/cwbudde/algo-modal/preset"
)

func main() {
	defaults := modal.NewDefaultParams()

	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	statePath := flag.String("state", "", "Saved voice state JSON to restore the oscillator count from (optional)")
	saveState := flag.String("save-state", "", "Write the voice state JSON here after rendering (optional)")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	duration := flag.Float64("duration", 2.0, "Duration in seconds")
	oscCount := flag.Int("osc", 0, "Active oscillators: 1, 16, 32 or 64 (0 = preset value)")
	freq := flag.Float64("freq", float64(defaults.Freq), "Frequency selector (base frequency is freq^10 Hz)")
	inharm := flag.Float64("inharm", float64(defaults.Inharm), "Odd partial inharmonicity factor")
	damp := flag.Float64("damp", float64(defaults.Damp), "Base damping in Hz")
	dampSlope := flag.Float64("damp-slope", float64(defaults.DampSlope), "Damping slope in Hz per partial")
	modDepth := flag.Float64("mod-depth", float64(defaults.ModDepth), "Modulation depth")
	voct := flag.Float64("voct", 0, "Constant V/oct pitch voltage; patched only when the flag is given")
	excitePath := flag.String("excite", "", "Excitation WAV (default: single impulse)")
	exciteGain := flag.Float64("excite-gain", 1.0, "Peak level of the excitation")
	modPath := flag.String("mod", "", "Modulation WAV, patched into the mod input (optional)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	p := preset.NewDefault()
	if *presetPath != "" {
		loaded, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("Error loading preset %q: %v", *presetPath, err)
		}
		p = loaded
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	overrides := []struct {
		flag string
		idx  int
		v    float64
	}{
		{"freq", modal.ParamFreq, *freq},
		{"inharm", modal.ParamInharm, *inharm},
		{"damp", modal.ParamDamp, *damp},
		{"damp-slope", modal.ParamDampSlope, *dampSlope},
		{"mod-depth", modal.ParamModDepth, *modDepth},
	}
	for _, o := range overrides {
		if set[o.flag] {
			p.Params.Set(o.idx, float32(o.v))
		}
	}
	p.Params.Clamp()

	e, err := modal.NewEngine(*sampleRate)
	if err != nil {
		die("Error creating voice: %v", err)
	}
	params, err := p.Apply(e)
	if err != nil {
		die("Error applying preset: %v", err)
	}
	if *statePath != "" {
		if err := preset.LoadStateFile(*statePath, e); err != nil {
			die("Error loading state %q: %v", *statePath, err)
		}
	}
	if *oscCount != 0 {
		if err := e.SetOscCount(*oscCount); err != nil {
			die("Invalid -osc: %v", err)
		}
	}

	totalFrames := int(float64(*sampleRate) * (*duration))
	if totalFrames < 1 {
		totalFrames = 1
	}

	var in modal.Block
	if *excitePath != "" {
		in.Excite, err = fitcommon.ReadSignal(*excitePath, *sampleRate)
		if err != nil {
			die("Error reading excitation %q: %v", *excitePath, err)
		}
		fitcommon.NormalizePeak(in.Excite, *exciteGain)
	} else {
		in.Excite = make([]float32, totalFrames)
		in.Excite[0] = float32(*exciteGain)
	}
	if *modPath != "" {
		in.Mod, err = fitcommon.ReadSignal(*modPath, *sampleRate)
		if err != nil {
			die("Error reading modulation %q: %v", *modPath, err)
		}
	}
	if set["voct"] {
		in.VOct = make([]float32, totalFrames)
		for i := range in.VOct {
			in.VOct[i] = float32(*voct)
		}
	}

	fmt.Printf("Rendering %.2f s at %d Hz with %d oscillators (freq=%.3f inharm=%.3f damp=%.3f slope=%.3f)...\n",
		*duration, *sampleRate, e.OscCount(), params.Freq, params.Inharm, params.Damp, params.DampSlope)

	samples := make([]float32, totalFrames)
	blockSize := 128
	for start := 0; start < totalFrames; start += blockSize {
		end := start + blockSize
		if end > totalFrames {
			end = totalFrames
		}
		e.Render(params, sliceBlock(in, start, end), samples[start:end])
	}

	if err := fitcommon.WriteMonoWAV(*output, samples, *sampleRate); err != nil {
		die("Error writing WAV file: %v", err)
	}
	if *saveState != "" {
		if err := preset.SaveStateFile(*saveState, e); err != nil {
			die("Error saving state: %v", err)
		}
	}

	peak, rms := fitcommon.PeakRMS(samples)
	fmt.Printf("Successfully wrote %s (%d frames)\n", *output, totalFrames)
	fmt.Printf("Fundamental: %.2f Hz, Peak: %.6f, RMS: %.6f\n", e.Frequency(), peak, rms)
	x := fitcommon.ToFloat64(samples)
	if hz, err := analysis.PeakFrequency(x, *sampleRate); err == nil {
		fmt.Printf("Spectral peak: %.2f Hz\n", hz)
	}
	slope := analysis.DecaySlopeDBPerS(analysis.RMSEnvelope(x, 256, 128), 128.0/float64(*sampleRate))
	fmt.Printf("Decay: %.1f dB/s (T60 %.3f s)\n", slope, analysis.T60(slope))
}

// sliceBlock cuts [start,end) out of every patched signal. Past the end
// of a signal its jack reads as unpatched.
func sliceBlock(in modal.Block, start, end int) modal.Block {
	return modal.Block{
		VOct:   sliceSignal(in.VOct, start, end),
		Excite: sliceSignal(in.Excite, start, end),
		Mod:    sliceSignal(in.Mod, start, end),
	}
}

func sliceSignal(sig []float32, start, end int) []float32 {
	if sig == nil {
		return nil
	}
	if start >= len(sig) {
		return sig[:0]
	}
	if end > len(sig) {
		end = len(sig)
	}
	return sig[start:end]
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
