package modal

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// MaxOsc is the number of resonators owned by a bank.
const MaxOsc = 64

// DefaultOscCount is the active oscillator count of a new bank.
const DefaultOscCount = 16

// OscCounts lists the supported active oscillator counts.
var OscCounts = [...]int{1, 16, 32, 64}

// ErrUnsupportedOscCount is returned for counts outside OscCounts.
var ErrUnsupportedOscCount = errors.New("unsupported oscillator count")

// Bank is a fixed pool of MaxOsc resonators. Only the first ActiveCount
// of them are run by SumActive, but all of them are retuned on Recompute.
type Bank struct {
	osc    [MaxOsc]Resonator
	freqs  [MaxOsc]float32
	damps  [MaxOsc]float32
	active atomic.Int32

	recomputes int
}

// NewBank returns a bank running at sampleRate with DefaultOscCount
// active resonators.
func NewBank(sampleRate int) *Bank {
	b := &Bank{}
	for i := range b.osc {
		b.osc[i].init(sampleRate)
	}
	b.active.Store(DefaultOscCount)
	return b
}

// IsSupportedOscCount reports whether n is one of OscCounts.
func IsSupportedOscCount(n int) bool {
	for _, c := range OscCounts {
		if c == n {
			return true
		}
	}
	return false
}

// SetActiveCount selects how many leading resonators are summed. It is
// safe to call from a goroutine other than the one running SumActive.
func (b *Bank) SetActiveCount(n int) error {
	if !IsSupportedOscCount(n) {
		return fmt.Errorf("%w: %d", ErrUnsupportedOscCount, n)
	}
	b.active.Store(int32(n))
	return nil
}

// ActiveCount returns the current active oscillator count.
func (b *Bank) ActiveCount() int {
	return int(b.active.Load())
}

// Recompute retunes every resonator from the shared voice parameters.
func (b *Bank) Recompute(f0, inhrm, damp, dsl float32) {
	for i := 0; i < MaxOsc; i++ {
		f := partialFrequency(f0, inhrm, i)
		d := partialDamping(damp, dsl, i)
		b.freqs[i] = f
		b.damps[i] = d
		b.osc[i].SetCoeffs(f, d)
	}
	b.recomputes++
}

// partialFrequency stretches odd partials by inhrm.
func partialFrequency(f0, inhrm float32, i int) float32 {
	f := f0 * float32(i+1)
	if i%2 == 1 {
		f *= inhrm
	}
	return f
}

// partialDamping applies the damping slope. A negative slope counts the
// partial index down from MaxOsc.
func partialDamping(damp, dsl float32, i int) float32 {
	if dsl >= 0 {
		return damp + float32(i)*dsl
	}
	return damp + float32(MaxOsc-i)*(-dsl)
}

// Partial returns the frequency and damping last applied to resonator i.
func (b *Bank) Partial(i int) (freq float32, damping float32) {
	if i < 0 || i >= MaxOsc {
		return 0, 0
	}
	return b.freqs[i], b.damps[i]
}

// Resonator exposes resonator i for inspection.
func (b *Bank) Resonator(i int) *Resonator {
	if i < 0 || i >= MaxOsc {
		return nil
	}
	return &b.osc[i]
}

// SumActive drives the active resonators with x and returns the sum of
// their sin outputs. The result is not normalized.
func (b *Bank) SumActive(x float32) float32 {
	return b.sumActive(x, b.ActiveCount())
}

func (b *Bank) sumActive(x float32, n int) float32 {
	sum := float32(0)
	for i := 0; i < n; i++ {
		_, _, s := b.osc[i].Process(x)
		sum += s
	}
	return sum
}

// Reset silences every resonator.
func (b *Bank) Reset() {
	for i := range b.osc {
		b.osc[i].Reset()
	}
}
