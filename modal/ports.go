package modal

// Input is a host-owned input jack. A disconnected input reads as 0 V.
type Input struct {
	Connected bool
	Voltage   float32
}

// Value returns the voltage, or 0 when the jack is not patched.
func (in Input) Value() float32 {
	if !in.Connected {
		return 0
	}
	return in.Voltage
}

// Output is a host-owned output jack. The voice only writes Voltage
// when Connected is set.
type Output struct {
	Connected bool
	Voltage   float32
}

// Ports groups the jacks of one voice.
type Ports struct {
	VOct   Input
	Excite Input
	Mod    Input
	Out    Output
}

// Block carries per-sample input signals for Engine.Render. A nil slice
// means the corresponding jack is disconnected.
type Block struct {
	VOct   []float32
	Excite []float32
	Mod    []float32
}

func blockInput(sig []float32, i int) Input {
	if i >= len(sig) {
		return Input{}
	}
	return Input{Connected: true, Voltage: sig[i]}
}
