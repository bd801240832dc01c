package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/cwbudde/algo-modal/analysis"
	"github.com/cwbudde/algo-modal/internal/fitcommon"
	"github.com/cwbudde/algo-modal/modal"
	"github.com/cwbudde/algo-modal/preset"
	"github.com/cwbudde/mayfly"
)

type knobDef struct {
	Name string  `json:"name"`
	Idx  int     `json:"-"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

type candidate struct {
	Vals []float64 `json:"vals"`
}

type report struct {
	Reference     string           `json:"reference"`
	SampleRate    int              `json:"sample_rate"`
	OscCount      int              `json:"osc_count"`
	Evals         int              `json:"evals"`
	ElapsedSec    float64          `json:"elapsed_sec"`
	Variant       string           `json:"mayfly_variant"`
	Knobs         []knobDef        `json:"knobs"`
	Best          candidate        `json:"best"`
	FundamentalHz float64          `json:"fundamental_hz"`
	Metrics       analysis.Metrics `json:"metrics"`
}

func main() {
	referencePath := flag.String("reference", "", "Reference impulse response WAV")
	presetPath := flag.String("preset", "", "Starting preset JSON (optional)")
	outputPreset := flag.String("output-preset", "out/modal-fit.json", "Best preset output path")
	outputWAV := flag.String("output-wav", "", "Render of the best preset (optional)")
	reportPath := flag.String("report", "", "JSON report output path (optional)")
	sampleRate := flag.Int("sample-rate", 48000, "Analysis and render sample rate")
	oscCount := flag.Int("osc", 0, "Active oscillators: 1, 16, 32 or 64 (0 = preset value)")
	maxDuration := flag.Float64("max-duration", 3.0, "Maximum reference length used for fitting in seconds")
	maxEvals := flag.Int("max-evals", 600, "Total objective evaluations")
	timeBudget := flag.Duration("time-budget", 5*time.Minute, "Wall clock budget")
	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 200, "Target eval budget per Mayfly round")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	if *referencePath == "" {
		die("-reference is required")
	}
	if *mayflyPop < 2 {
		*mayflyPop = 2
	}
	if *mayflyRoundEvals < *mayflyPop*2 {
		*mayflyRoundEvals = *mayflyPop * 2
	}

	ref, rate, err := fitcommon.ReadWAVMono(*referencePath)
	if err != nil {
		die("Error reading reference %q: %v", *referencePath, err)
	}
	ref, err = fitcommon.ResampleIfNeeded(ref, rate, *sampleRate)
	if err != nil {
		die("Error resampling reference: %v", err)
	}
	if maxFrames := int(*maxDuration * float64(*sampleRate)); maxFrames > 0 && len(ref) > maxFrames {
		ref = ref[:maxFrames]
	}

	start := preset.NewDefault()
	if *presetPath != "" {
		start, err = preset.LoadJSON(*presetPath)
		if err != nil {
			die("Error loading preset %q: %v", *presetPath, err)
		}
	}
	if *oscCount != 0 {
		start.OscCount = *oscCount
	}
	if !modal.IsSupportedOscCount(start.OscCount) {
		die("Invalid oscillator count %d", start.OscCount)
	}
	if hz, err := analysis.PeakFrequency(ref, *sampleRate); err == nil && hz > 0 {
		start.Params.Freq = float32(math.Pow(hz, 0.1))
		fmt.Printf("Reference spectral peak %.2f Hz, starting freq knob %.4f\n", hz, start.Params.Freq)
	}
	start.Params.Clamp()

	defs := fitKnobs()
	evaluate := func(c candidate) (analysis.Metrics, *preset.Preset, error) {
		p := &preset.Preset{Params: modal.NewDefaultParams(), OscCount: start.OscCount}
		*p.Params = *start.Params
		c.apply(p.Params, defs)
		out, err := renderImpulse(p, *sampleRate, len(ref))
		if err != nil {
			return analysis.Metrics{}, nil, err
		}
		return analysis.Compare(ref, out, *sampleRate), p, nil
	}

	best := candidateFromParams(start.Params, defs)
	bestM, bestP, err := evaluate(best)
	if err != nil {
		die("Error rendering starting preset: %v", err)
	}
	fmt.Printf("Baseline score=%.4f sim=%.2f%%\n", bestM.Score, bestM.Similarity*100.0)

	begin := time.Now()
	deadline := begin.Add(*timeBudget)
	evals := 1
	round := 0
	for evals < *maxEvals && time.Now().Before(deadline) {
		round++
		budget := minInt(*mayflyRoundEvals, *maxEvals-evals)
		iters := fitcommon.MaxInt(1, budget/(2*(*mayflyPop)))

		cfg, err := newMayflyConfig(strings.ToLower(*mayflyVariant), *mayflyPop, len(defs), iters)
		if err != nil {
			die("invalid mayfly variant: %v", err)
		}
		cfg.Rand = rand.New(rand.NewSource(*seed + int64(round)*7919))
		cfg.ObjectiveFunc = func(pos []float64) float64 {
			if evals >= *maxEvals || time.Now().After(deadline) {
				return bestM.Score + 1.0
			}
			cand := fromNormalized(pos, defs)
			m, p, err := evaluate(cand)
			evals++
			if err != nil {
				return bestM.Score + 0.8
			}
			if m.Score < bestM.Score {
				best, bestM, bestP = cand, m, p
				fmt.Printf("Improved eval=%d score=%.4f sim=%.2f%% pitch=%.1fc\n", evals, m.Score, m.Similarity*100.0, m.PitchErrorCents)
			}
			return m.Score
		}

		if _, err := runMayfly(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "mayfly round %d failed: %v\n", round, err)
			continue
		}
		fmt.Printf("Round %d done eval=%d elapsed=%.1fs best=%.4f\n", round, evals, time.Since(begin).Seconds(), bestM.Score)
	}

	if err := preset.WriteJSON(*outputPreset, bestP); err != nil {
		die("Error writing preset: %v", err)
	}
	fmt.Printf("Wrote %s (score=%.4f)\n", *outputPreset, bestM.Score)

	if *outputWAV != "" {
		out, err := renderImpulse(bestP, *sampleRate, len(ref))
		if err != nil {
			die("Error rendering best preset: %v", err)
		}
		if err := fitcommon.WriteMonoWAV(*outputWAV, fitcommon.ToFloat32(out), *sampleRate); err != nil {
			die("Error writing WAV: %v", err)
		}
	}

	if *reportPath != "" {
		r := report{
			Reference:     *referencePath,
			SampleRate:    *sampleRate,
			OscCount:      bestP.OscCount,
			Evals:         evals,
			ElapsedSec:    time.Since(begin).Seconds(),
			Variant:       strings.ToLower(*mayflyVariant),
			Knobs:         defs,
			Best:          best,
			FundamentalHz: float64(bestP.Params.BaseFrequency()),
			Metrics:       bestM,
		}
		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			die("Error encoding report: %v", err)
		}
		if err := os.WriteFile(*reportPath, append(b, '\n'), 0o644); err != nil {
			die("Error writing report: %v", err)
		}
	}
}

// fitKnobs lists the knobs searched by the optimizer. The modulation
// depth is left alone since an impulse response has no modulation input.
func fitKnobs() []knobDef {
	idx := []int{modal.ParamFreq, modal.ParamInharm, modal.ParamDamp, modal.ParamDampSlope}
	defs := make([]knobDef, 0, len(idx))
	for _, i := range idx {
		s := modal.ParamSpecs[i]
		defs = append(defs, knobDef{Name: s.Name, Idx: i, Min: float64(s.Min), Max: float64(s.Max)})
	}
	return defs
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i := range defs {
		x := 0.0
		if i < len(pos) {
			x = fitcommon.Clamp(pos[i], 0, 1)
		}
		vals[i] = defs[i].Min + x*(defs[i].Max-defs[i].Min)
	}
	return candidate{Vals: vals}
}

func candidateFromParams(p *modal.Params, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i, d := range defs {
		vals[i] = fitcommon.Clamp(float64(p.Get(d.Idx)), d.Min, d.Max)
	}
	return candidate{Vals: vals}
}

func (c candidate) apply(dst *modal.Params, defs []knobDef) {
	for i, d := range defs {
		if i < len(c.Vals) {
			dst.Set(d.Idx, float32(c.Vals[i]))
		}
	}
}

// renderImpulse renders the response of a fresh voice to a unit impulse.
func renderImpulse(p *preset.Preset, sampleRate int, frames int) ([]float64, error) {
	if p == nil {
		return nil, errors.New("nil preset")
	}
	if frames < 1 {
		return nil, fmt.Errorf("invalid frame count %d", frames)
	}
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
	for i, s := range out {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			return nil, fmt.Errorf("non-finite sample at %d", i)
		}
	}
	return fitcommon.ToFloat64(out), nil
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	cfg.NC = 2 * pop
	cfg.NM = fitcommon.MaxInt(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
