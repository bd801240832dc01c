//go:build js && wasm

package main

import (
	"syscall/js"
	"unsafe"

	"github.com/cwbudde/algo-modal/modal"
	"github.com/cwbudde/algo-modal/preset"
)

const maxBlock = 128

var (
	voice         *modal.Engine
	params        *modal.Params
	excite        [maxBlock]float32
	pendingStrike float32
	outputBuffer  []float32
)

func main() {
	// Keep program running
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmSetParam", js.FuncOf(wasmSetParam))
	js.Global().Set("wasmSetOscCount", js.FuncOf(wasmSetOscCount))
	js.Global().Set("wasmOscCountMenu", js.FuncOf(wasmOscCountMenu))
	js.Global().Set("wasmStrike", js.FuncOf(wasmStrike))
	js.Global().Set("wasmSaveState", js.FuncOf(wasmSaveState))
	js.Global().Set("wasmLoadState", js.FuncOf(wasmLoadState))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM modal module loaded")
	<-c
}

func wasmInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	sampleRate := args[0].Int()

	e, err := modal.NewEngine(sampleRate)
	if err != nil {
		println("Init failed:", err.Error())
		return nil
	}
	voice = e
	params = modal.NewDefaultParams()
	outputBuffer = make([]float32, maxBlock)

	println("Modal voice initialized at", sampleRate, "Hz")
	return nil
}

// wasmSetParam(index, value) sets a knob by its modal.Param* index.
func wasmSetParam(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || params == nil {
		return nil
	}
	idx := args[0].Int()
	if idx < 0 || idx >= len(modal.ParamSpecs) {
		return nil
	}
	spec := modal.ParamSpecs[idx]
	v := float32(args[1].Float())
	if v < spec.Min {
		v = spec.Min
	}
	if v > spec.Max {
		v = spec.Max
	}
	params.Set(idx, v)
	return nil
}

func wasmSetOscCount(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || voice == nil {
		return false
	}
	return voice.SetOscCount(args[0].Int()) == nil
}

func wasmOscCountMenu(this js.Value, args []js.Value) interface{} {
	if voice == nil {
		return nil
	}
	items := voice.OscCountMenu()
	out := make([]interface{}, len(items))
	for i, it := range items {
		out[i] = map[string]interface{}{
			"label":   it.Label,
			"count":   it.Count,
			"checked": it.Checked,
		}
	}
	return out
}

// wasmStrike(amplitude) injects an impulse at the start of the next block.
func wasmStrike(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	pendingStrike += float32(args[0].Float())
	return nil
}

func wasmSaveState(this js.Value, args []js.Value) interface{} {
	if voice == nil {
		return nil
	}
	b, err := preset.MarshalState(voice)
	if err != nil {
		println("Save state failed:", err.Error())
		return nil
	}
	return string(b)
}

func wasmLoadState(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || voice == nil {
		return false
	}
	return preset.UnmarshalState(voice, []byte(args[0].String()))
}

func wasmProcessBlock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || voice == nil {
		return 0
	}

	numFrames := args[0].Int()
	if numFrames > maxBlock {
		numFrames = maxBlock
	}
	if numFrames < 1 {
		return 0
	}

	for i := range excite[:numFrames] {
		excite[i] = 0
	}
	excite[0] = pendingStrike
	pendingStrike = 0

	voice.Render(params, modal.Block{Excite: excite[:numFrames]}, outputBuffer[:numFrames])

	// Return pointer to buffer in WASM linear memory
	ptr := &outputBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}
