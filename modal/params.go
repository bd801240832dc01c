package modal

// Params holds the knob values read by the voice on every tick.
type Params struct {
	// Freq is the frequency selector; the base frequency is Freq^10 Hz.
	Freq float32
	// Inharm multiplies the frequency of every odd-indexed partial.
	Inharm float32
	// Damp is the base damping (bandwidth in Hz) shared by all partials.
	Damp float32
	// DampSlope adds DampSlope Hz of damping per partial index. Negative
	// values tilt the slope so that low partials decay faster.
	DampSlope float32
	// ModDepth scales the modulation input.
	ModDepth float32
}

// ParamSpec describes one knob for host registration tables.
type ParamSpec struct {
	Name    string
	Min     float32
	Max     float32
	Default float32
}

const (
	ParamFreq = iota
	ParamInharm
	ParamDamp
	ParamDampSlope
	ParamModDepth
	numParams
)

// ParamSpecs lists the knobs in registration order.
var ParamSpecs = [numParams]ParamSpec{
	ParamFreq:      {Name: "freq", Min: 0.0, Max: 2.2, Default: 1.6},
	ParamInharm:    {Name: "inharm", Min: 0.5, Max: 2.0, Default: 1.0},
	ParamDamp:      {Name: "damp", Min: 0.0, Max: 200.0, Default: 2.0},
	ParamDampSlope: {Name: "damp_slope", Min: -4.0, Max: 4.0, Default: 0.5},
	ParamModDepth:  {Name: "mod_depth", Min: 0.0, Max: 1.0, Default: 0.0},
}

// NewDefaultParams returns knob values at their registered defaults.
func NewDefaultParams() *Params {
	return &Params{
		Freq:      ParamSpecs[ParamFreq].Default,
		Inharm:    ParamSpecs[ParamInharm].Default,
		Damp:      ParamSpecs[ParamDamp].Default,
		DampSlope: ParamSpecs[ParamDampSlope].Default,
		ModDepth:  ParamSpecs[ParamModDepth].Default,
	}
}

// Get returns the value of the knob with the given Param* index.
func (p *Params) Get(idx int) float32 {
	switch idx {
	case ParamFreq:
		return p.Freq
	case ParamInharm:
		return p.Inharm
	case ParamDamp:
		return p.Damp
	case ParamDampSlope:
		return p.DampSlope
	case ParamModDepth:
		return p.ModDepth
	}
	return 0
}

// Set assigns the knob with the given Param* index. Unknown indices are ignored.
func (p *Params) Set(idx int, v float32) {
	switch idx {
	case ParamFreq:
		p.Freq = v
	case ParamInharm:
		p.Inharm = v
	case ParamDamp:
		p.Damp = v
	case ParamDampSlope:
		p.DampSlope = v
	case ParamModDepth:
		p.ModDepth = v
	}
}

// Clamp limits every knob to its registered range.
func (p *Params) Clamp() {
	for i := range ParamSpecs {
		s := ParamSpecs[i]
		p.Set(i, clampFloat32(p.Get(i), s.Min, s.Max))
	}
}

// BaseFrequency is the frequency selected by the Freq knob alone.
func (p *Params) BaseFrequency() float32 {
	return knobToFreq(p.Freq)
}
