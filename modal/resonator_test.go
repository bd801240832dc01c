package modal

import (
	"math"
	"testing"
)

func TestResonatorIsLinearInExcitation(t *testing.T) {
	a := NewResonator(48000)
	b := NewResonator(48000)
	a.SetCoeffs(440, 3)
	b.SetCoeffs(440, 3)

	for i := 0; i < 4096; i++ {
		x := float32(0.6*math.Sin(2*math.Pi*float64(i)/37) + 0.2*math.Sin(2*math.Pi*float64(i)/5))
		envA, cosA, sinA := a.Process(x)
		envB, cosB, sinB := b.Process(2 * x)
		if !closeTo(float64(cosB), 2*float64(cosA), 1e-5) || !closeTo(float64(sinB), 2*float64(sinA), 1e-5) {
			t.Fatalf("sample %d not linear: cos got=%g want=%g sin got=%g want=%g", i, cosB, 2*cosA, sinB, 2*sinA)
		}
		if !closeTo(float64(envB), 2*float64(envA), 1e-5) {
			t.Fatalf("sample %d envelope not linear: got=%g want=%g", i, envB, 2*envA)
		}
	}
}

func TestResonatorSetCoeffsKeepsState(t *testing.T) {
	r := NewResonator(48000)
	r.SetCoeffs(200, 1)
	r.Process(1)
	for i := 0; i < 10; i++ {
		r.Process(0)
	}

	r.SetCoeffs(300, 1)
	env, _, _ := r.Process(0)
	if env < 0.99 {
		t.Fatalf("expected ringing to survive retune, env=%f", env)
	}
}

func TestResonatorEnvelopeDecaysMonotonically(t *testing.T) {
	r := NewResonator(48000)
	r.SetCoeffs(100, 0.01)

	prev, _, _ := r.Process(1)
	if prev == 0 {
		t.Fatalf("expected nonzero first output")
	}
	for i := 1; i < 48000; i++ {
		env, _, _ := r.Process(0)
		if float64(env) > float64(prev)*(1+1e-6) {
			t.Fatalf("envelope rose at sample %d: prev=%g curr=%g", i, prev, env)
		}
		prev = env
	}
}

func TestResonatorOutputsMatchEnvelope(t *testing.T) {
	r := NewResonator(48000)
	r.SetCoeffs(1000, 20)
	r.Process(0.5)
	for i := 0; i < 2000; i++ {
		env, c, s := r.Process(0)
		mag := math.Hypot(float64(c), float64(s))
		if !closeTo(mag, float64(env), 1e-5) {
			t.Fatalf("sample %d: env=%g |cos,sin|=%g", i, env, mag)
		}
	}
}

func TestResonatorNegativeDampingIsClamped(t *testing.T) {
	r := NewResonator(48000)
	r.SetCoeffs(500, -50)
	if got := r.Radius(); got > 1+1e-6 {
		t.Fatalf("expected stable pole for negative damping, radius=%f", got)
	}
}

func TestResonatorHigherDampingDecaysFaster(t *testing.T) {
	slow := NewResonator(48000)
	fast := NewResonator(48000)
	slow.SetCoeffs(300, 2)
	fast.SetCoeffs(300, 40)
	slow.Process(1)
	fast.Process(1)

	var envSlow, envFast float32
	for i := 0; i < 4800; i++ {
		envSlow, _, _ = slow.Process(0)
		envFast, _, _ = fast.Process(0)
	}
	if envFast >= envSlow {
		t.Fatalf("expected faster decay with more damping: slow=%g fast=%g", envSlow, envFast)
	}
}

func TestResonatorResetSilences(t *testing.T) {
	r := NewResonator(48000)
	r.SetCoeffs(440, 1)
	r.Process(1)
	r.Reset()
	env, c, s := r.Process(0)
	if env != 0 || c != 0 || s != 0 {
		t.Fatalf("expected silence after reset, got env=%g cos=%g sin=%g", env, c, s)
	}
}
