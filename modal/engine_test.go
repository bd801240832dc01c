package modal

import (
	"errors"
	"math"
	"testing"
)

func TestNewEngineRejectsInvalidSampleRate(t *testing.T) {
	for _, sr := range []int{0, -48000} {
		if _, err := NewEngine(sr); !errors.Is(err, ErrInvalidSampleRate) {
			t.Fatalf("NewEngine(%d): expected ErrInvalidSampleRate, got %v", sr, err)
		}
	}
}

func TestEngineRecomputesOnlyOnChange(t *testing.T) {
	e := newTestEngine(t, 48000)
	p := NewDefaultParams()
	ports := &Ports{Out: Output{Connected: true}}

	e.Process(p, ports)
	if got := e.Recomputes(); got != 1 {
		t.Fatalf("expected first tick to recompute once, got %d", got)
	}
	for i := 0; i < 1000; i++ {
		e.Process(p, ports)
	}
	if got := e.Recomputes(); got != 1 {
		t.Fatalf("expected no recompute across identical ticks, got %d", got)
	}

	edits := []struct {
		name string
		edit func(p *Params)
	}{
		{"freq", func(p *Params) { p.Freq += 0.01 }},
		{"inharm", func(p *Params) { p.Inharm = 1.2 }},
		{"damp", func(p *Params) { p.Damp = 7 }},
		{"damp_slope", func(p *Params) { p.DampSlope = -0.3 }},
	}
	want := 1
	for _, ed := range edits {
		ed.edit(p)
		for i := 0; i < 50; i++ {
			e.Process(p, ports)
		}
		want++
		if got := e.Recomputes(); got != want {
			t.Fatalf("after %s change: got=%d recomputes want=%d", ed.name, got, want)
		}
	}

	p.ModDepth = 0.8
	e.Process(p, ports)
	if got := e.Recomputes(); got != want {
		t.Fatalf("mod depth must not retune the bank: got=%d want=%d", got, want)
	}
}

func TestEnginePitchInputRetunes(t *testing.T) {
	e := newTestEngine(t, 48000)
	p := NewDefaultParams()
	p.Freq = 0
	ports := &Ports{VOct: Input{Connected: true, Voltage: 0}}

	e.Process(p, ports)
	if got := float64(e.Frequency()); math.Abs(got-FreqC4) > FreqC4*0.005 {
		t.Fatalf("0 V pitch: got=%f want=%f", got, FreqC4)
	}

	ports.VOct.Voltage = 1
	e.Process(p, ports)
	if got := float64(e.Frequency()); math.Abs(got-2*FreqC4) > 2*FreqC4*0.01 {
		t.Fatalf("1 V pitch: got=%f want=%f", got, 2*FreqC4)
	}
	if got := e.Recomputes(); got != 2 {
		t.Fatalf("expected pitch change to retune, recomputes=%d", got)
	}

	ports.VOct.Connected = false
	e.Process(p, ports)
	if got := e.Frequency(); got != 0 {
		t.Fatalf("expected unpatched pitch input to be ignored, f0=%f", got)
	}
}

func TestEngineDisconnectedOutputIsNotWritten(t *testing.T) {
	e := newTestEngine(t, 48000)
	p := NewDefaultParams()
	ports := &Ports{
		Excite: Input{Connected: true, Voltage: 1},
		Out:    Output{Connected: false, Voltage: 42},
	}
	for i := 0; i < 256; i++ {
		e.Process(p, ports)
	}
	if ports.Out.Voltage != 42 {
		t.Fatalf("disconnected output was written: %f", ports.Out.Voltage)
	}
}

func TestEngineDisconnectedExcitationIsSilent(t *testing.T) {
	e := newTestEngine(t, 48000)
	p := NewDefaultParams()
	ports := &Ports{
		Excite: Input{Connected: false, Voltage: 5},
		Out:    Output{Connected: true},
	}
	for i := 0; i < 256; i++ {
		e.Process(p, ports)
		if ports.Out.Voltage != 0 {
			t.Fatalf("sample %d: expected silence, got %f", i, ports.Out.Voltage)
		}
	}
}

func TestEngineImpulseRingsAtFundamental(t *testing.T) {
	const sampleRate = 48000
	e := newTestEngine(t, sampleRate)
	if err := e.SetOscCount(1); err != nil {
		t.Fatalf("SetOscCount: %v", err)
	}
	p := &Params{Freq: knobForFreq(100), Inharm: 1, Damp: 0.01, DampSlope: 0}

	out := make([]float32, sampleRate)
	e.Render(p, Block{Excite: impulse(len(out), 1)}, out)

	if out[0] == 0 {
		t.Fatalf("expected nonzero output at sample 0")
	}
	if got := measureFundamentalFreq(out, sampleRate); math.Abs(float64(got)-100) > 1 {
		t.Fatalf("measured pitch: got=%f want=100", got)
	}

	// 480 samples is one period at 100 Hz, so every window sees the same phases.
	const window = 480
	prev := math.MaxFloat64
	for start := 0; start+window <= len(out); start += window {
		peak := windowPeak(out[start : start+window])
		if peak > prev*(1+1e-4) {
			t.Fatalf("envelope rose at window %d: prev=%g curr=%g", start/window, prev, peak)
		}
		prev = peak
	}
	if prev <= 0 {
		t.Fatalf("expected the mode to keep ringing with low damping")
	}
}

func TestEngineNormalizesByActiveCount(t *testing.T) {
	for _, n := range OscCounts {
		e := newTestEngine(t, 48000)
		if err := e.SetOscCount(n); err != nil {
			t.Fatalf("SetOscCount: %v", err)
		}
		p := NewDefaultParams()

		ref := NewBank(48000)
		if err := ref.SetActiveCount(n); err != nil {
			t.Fatalf("SetActiveCount: %v", err)
		}
		ref.Recompute(knobToFreq(p.Freq), p.Inharm, p.Damp, p.DampSlope)

		ports := &Ports{Out: Output{Connected: true}}
		for i := 0; i < 300; i++ {
			x := float32(0)
			if i == 0 {
				x = 1
			}
			ports.Excite = Input{Connected: true, Voltage: x}
			e.Process(p, ports)
			want := ref.SumActive(x) / float32(n)
			if ports.Out.Voltage != want {
				t.Fatalf("n=%d sample %d: got=%g want=%g", n, i, ports.Out.Voltage, want)
			}
		}
	}
}

func TestEngineModulationIsMultiplicative(t *testing.T) {
	plain := newTestEngine(t, 48000)
	modded := newTestEngine(t, 48000)
	p := NewDefaultParams()
	p.ModDepth = 0.5

	n := 1024
	mod := make([]float32, n)
	for i := range mod {
		mod[i] = float32(math.Sin(2 * math.Pi * float64(i) / 200))
	}
	exc := impulse(n, 1)
	a := make([]float32, n)
	b := make([]float32, n)
	plain.Render(p, Block{Excite: exc}, a)
	modded.Render(p, Block{Excite: exc, Mod: mod}, b)

	for i := range a {
		want := a[i] + a[i]*p.ModDepth*mod[i]
		if !closeTo(float64(b[i]), float64(want), 1e-6) {
			t.Fatalf("sample %d: got=%g want=%g", i, b[i], want)
		}
	}
}

func TestEngineRenderMatchesProcess(t *testing.T) {
	a := newTestEngine(t, 44100)
	b := newTestEngine(t, 44100)
	p := NewDefaultParams()
	p.Inharm = 1.1

	n := 2048
	exc := make([]float32, n)
	for i := range exc {
		if i%300 == 0 {
			exc[i] = 0.8
		}
	}
	voct := make([]float32, n)
	for i := range voct {
		voct[i] = float32(i/512) * 0.25
	}
	got := make([]float32, n)
	a.Render(p, Block{VOct: voct, Excite: exc}, got)

	ports := &Ports{Out: Output{Connected: true}}
	for i := 0; i < n; i++ {
		ports.VOct = Input{Connected: true, Voltage: voct[i]}
		ports.Excite = Input{Connected: true, Voltage: exc[i]}
		b.Process(p, ports)
		if ports.Out.Voltage != got[i] {
			t.Fatalf("sample %d: Render=%g Process=%g", i, got[i], ports.Out.Voltage)
		}
	}
	if a.Recomputes() != 4 {
		t.Fatalf("expected one retune per pitch step, got %d", a.Recomputes())
	}
}

func TestEngineLongRenderHasNoNaNOrInf(t *testing.T) {
	e := newTestEngine(t, 48000)
	if err := e.SetOscCount(64); err != nil {
		t.Fatalf("SetOscCount: %v", err)
	}
	p := NewDefaultParams()
	p.Freq = 1.9
	p.Damp = 0
	p.DampSlope = -4

	out := make([]float32, 128)
	exc := impulse(len(out), 1)
	for blk := 0; blk < 400; blk++ {
		e.Render(p, Block{Excite: exc}, out)
		for j, s := range out {
			if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
				t.Fatalf("non-finite sample at block %d sample %d: %v", blk, j, s)
			}
		}
	}
}

func TestOscCountMenuMarksCurrent(t *testing.T) {
	e := newTestEngine(t, 48000)
	items := e.OscCountMenu()
	if len(items) != len(OscCounts) {
		t.Fatalf("menu size: got=%d want=%d", len(items), len(OscCounts))
	}
	for _, it := range items {
		if it.Checked != (it.Count == DefaultOscCount) {
			t.Fatalf("unexpected check mark on %q", it.Label)
		}
	}

	if err := e.Select(items[2]); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if e.OscCount() != 32 {
		t.Fatalf("expected 32 after selecting %q, got %d", items[2].Label, e.OscCount())
	}
	for _, it := range e.OscCountMenu() {
		if it.Checked != (it.Count == 32) {
			t.Fatalf("unexpected check mark on %q after select", it.Label)
		}
	}
}

func TestParamsClamp(t *testing.T) {
	p := &Params{Freq: 5, Inharm: 0, Damp: -1, DampSlope: 9, ModDepth: 0.5}
	p.Clamp()
	want := Params{Freq: 2.2, Inharm: 0.5, Damp: 0, DampSlope: 4, ModDepth: 0.5}
	if *p != want {
		t.Fatalf("clamp: got=%+v want=%+v", *p, want)
	}
}
