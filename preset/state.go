package preset

import (
	"encoding/json"
	"os"

	"github.com/cwbudde/algo-modal/modal"
)

// StateKey is the key under which the active oscillator count is saved.
const StateKey = "nActiveOsc"

// MarshalState encodes the per-session state of a voice.
func MarshalState(e *modal.Engine) ([]byte, error) {
	return json.Marshal(map[string]int{StateKey: e.OscCount()})
}

// UnmarshalState restores the oscillator count saved by MarshalState.
// A missing key, a value of the wrong type or an unsupported count
// leaves e untouched. It reports whether the count was applied.
func UnmarshalState(e *modal.Engine, data []byte) bool {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return false
	}
	raw, ok := root[StateKey]
	if !ok {
		return false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return false
	}
	return e.SetOscCount(n) == nil
}

// SaveStateFile writes the voice state to path.
func SaveStateFile(path string, e *modal.Engine) error {
	b, err := MarshalState(e)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// LoadStateFile restores the voice state from path. Only failing to read
// the file is an error; its contents are applied as UnmarshalState does.
func LoadStateFile(path string, e *modal.Engine) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	UnmarshalState(e, b)
	return nil
}
