package fitcommon

import (
	"math"
	"path/filepath"
	"testing"
)

func TestWriteThenReadMonoWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "tone.wav")
	const sr = 48000
	data := make([]float32, 4800)
	for i := range data {
		data[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/sr))
	}
	if err := WriteMonoWAV(path, data, sr); err != nil {
		t.Fatalf("WriteMonoWAV: %v", err)
	}

	got, err := ReadSignal(path, sr)
	if err != nil {
		t.Fatalf("ReadSignal: %v", err)
	}
	if len(got) != len(data) {
		t.Fatalf("frame count: got=%d want=%d", len(got), len(data))
	}
	// Decoded sample scale depends on the PCM depth, compare shapes only.
	gotPeak, _ := PeakRMS(got)
	if gotPeak == 0 {
		t.Fatalf("decoded silence")
	}
	scale := gotPeak / 0.5
	for i := range data {
		if math.Abs(float64(got[i])/scale-float64(data[i])) > 2e-3 {
			t.Fatalf("sample %d: got=%f want=%f", i, float64(got[i])/scale, data[i])
		}
	}
}

func TestReadWAVMonoRejectsMissingFile(t *testing.T) {
	if _, _, err := ReadWAVMono(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestPeakRMS(t *testing.T) {
	peak, rms := PeakRMS([]float32{0.5, -1, 0.5, 0})
	if peak != 1 {
		t.Fatalf("peak: got=%f want=1", peak)
	}
	if math.Abs(rms-math.Sqrt(1.5/4)) > 1e-12 {
		t.Fatalf("rms: got=%f", rms)
	}
	if p, r := PeakRMS(nil); p != 0 || r != 0 {
		t.Fatalf("expected zeros for empty input")
	}
}
