package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-modal/modal"
)

// File is the JSON schema for voice presets. Absent fields keep their
// defaults.
type File struct {
	Freq      *float32 `json:"freq,omitempty"`
	Inharm    *float32 `json:"inharm,omitempty"`
	Damp      *float32 `json:"damp,omitempty"`
	DampSlope *float32 `json:"damp_slope,omitempty"`
	ModDepth  *float32 `json:"mod_depth,omitempty"`
	OscCount  *int     `json:"nActiveOsc,omitempty"`
}

// Preset is a complete voice setup: knob values plus oscillator count.
type Preset struct {
	Params   *modal.Params
	OscCount int
}

// NewDefault returns the factory preset.
func NewDefault() *Preset {
	return &Preset{
		Params:   modal.NewDefaultParams(),
		OscCount: modal.DefaultOscCount,
	}
}

// Apply configures e for this preset and returns the knob values to feed
// its Process calls.
func (p *Preset) Apply(e *modal.Engine) (*modal.Params, error) {
	if err := e.SetOscCount(p.OscCount); err != nil {
		return nil, err
	}
	params := *p.Params
	return &params, nil
}

// LoadJSON loads a preset JSON file and applies it on top of the defaults.
func LoadJSON(path string) (*Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	p := NewDefault()
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto an existing preset.
func ApplyFile(dst *Preset, f *File) error {
	if dst == nil || dst.Params == nil {
		return fmt.Errorf("nil destination preset")
	}
	if f == nil {
		return nil
	}

	knobs := []struct {
		idx int
		v   *float32
	}{
		{modal.ParamFreq, f.Freq},
		{modal.ParamInharm, f.Inharm},
		{modal.ParamDamp, f.Damp},
		{modal.ParamDampSlope, f.DampSlope},
		{modal.ParamModDepth, f.ModDepth},
	}
	for _, k := range knobs {
		if k.v == nil {
			continue
		}
		spec := modal.ParamSpecs[k.idx]
		if *k.v < spec.Min || *k.v > spec.Max {
			return fmt.Errorf("%s must be in [%g,%g]", spec.Name, spec.Min, spec.Max)
		}
		dst.Params.Set(k.idx, *k.v)
	}

	if f.OscCount != nil {
		if !modal.IsSupportedOscCount(*f.OscCount) {
			return fmt.Errorf("nActiveOsc must be one of %v", modal.OscCounts)
		}
		dst.OscCount = *f.OscCount
	}
	return nil
}

// ToFile converts a preset to its JSON schema with every field set.
func ToFile(p *Preset) *File {
	f := &File{}
	vals := make([]float32, len(modal.ParamSpecs))
	for i := range vals {
		vals[i] = p.Params.Get(i)
	}
	f.Freq = &vals[modal.ParamFreq]
	f.Inharm = &vals[modal.ParamInharm]
	f.Damp = &vals[modal.ParamDamp]
	f.DampSlope = &vals[modal.ParamDampSlope]
	f.ModDepth = &vals[modal.ParamModDepth]
	n := p.OscCount
	f.OscCount = &n
	return f
}

// WriteJSON stores a preset as indented JSON.
func WriteJSON(path string, p *Preset) error {
	b, err := json.MarshalIndent(ToFile(p), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
