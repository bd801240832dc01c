package modal

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSampleRate is returned by NewEngine for non-positive rates.
var ErrInvalidSampleRate = errors.New("invalid sample rate")

// Engine is a single modal voice. Process is meant to be called once per
// sample from the audio goroutine; it never allocates, blocks or fails.
type Engine struct {
	sampleRate int
	bank       *Bank

	// last seen values, NaN until the first tick
	f0    float32
	inhrm float32
	damp  float32
	dsl   float32
}

// NewEngine creates a voice running at sampleRate.
func NewEngine(sampleRate int) (*Engine, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	nan := float32(math.NaN())
	return &Engine{
		sampleRate: sampleRate,
		bank:       NewBank(sampleRate),
		f0:         nan,
		inhrm:      nan,
		damp:       nan,
		dsl:        nan,
	}, nil
}

// SampleRate returns the rate the voice was built for.
func (e *Engine) SampleRate() int {
	return e.sampleRate
}

// Bank returns the resonator bank driven by the voice.
func (e *Engine) Bank() *Bank {
	return e.bank
}

// SetOscCount selects the active oscillator count. Safe to call from a
// UI goroutine while Process runs.
func (e *Engine) SetOscCount(n int) error {
	return e.bank.SetActiveCount(n)
}

// OscCount returns the active oscillator count.
func (e *Engine) OscCount() int {
	return e.bank.ActiveCount()
}

// Recomputes returns how many times the bank has been retuned.
func (e *Engine) Recomputes() int {
	return e.bank.recomputes
}

// Process runs one sample: it retunes the bank if any tuning knob moved,
// drives the active resonators with the excitation input and writes the
// normalized sum to ports.Out when it is connected.
func (e *Engine) Process(p *Params, ports *Ports) {
	out := e.tick(p, ports.VOct, ports.Excite.Value(), ports.Mod)
	if ports.Out.Connected {
		ports.Out.Voltage = out
	}
}

func (e *Engine) tick(p *Params, vOct Input, excite float32, mod Input) float32 {
	fr := knobToFreq(p.Freq)
	if vOct.Connected {
		fr += voltsToFreq(vOct.Voltage)
	}

	changed := false
	if e.f0 != fr {
		e.f0 = fr
		changed = true
	}
	if e.inhrm != p.Inharm {
		e.inhrm = p.Inharm
		changed = true
	}
	if e.damp != p.Damp {
		e.damp = p.Damp
		changed = true
	}
	if e.dsl != p.DampSlope {
		e.dsl = p.DampSlope
		changed = true
	}
	if changed {
		e.bank.Recompute(e.f0, e.inhrm, e.damp, e.dsl)
	}

	// One load per tick so the sum and the normalization agree even if
	// the count is switched concurrently.
	n := e.bank.ActiveCount()
	cum := e.bank.sumActive(excite, n)
	if mod.Connected {
		cum += cum * p.ModDepth * mod.Voltage
	}
	return cum / float32(n)
}

// Render processes len(out) samples with the excitation and output jacks
// patched. Signals in in shorter than out read as disconnected past
// their end.
func (e *Engine) Render(p *Params, in Block, out []float32) {
	for i := range out {
		excite := blockInput(in.Excite, i).Value()
		out[i] = e.tick(p, blockInput(in.VOct, i), excite, blockInput(in.Mod, i))
	}
}

// Frequency returns the fundamental the bank is currently tuned to.
func (e *Engine) Frequency() float32 {
	return e.f0
}

// Reset silences the voice without touching tuning or the oscillator count.
func (e *Engine) Reset() {
	e.bank.Reset()
}
