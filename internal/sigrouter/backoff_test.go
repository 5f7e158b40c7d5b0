package sigrouter

import "testing"

func TestDelayForAttempt_DoublesEachAttempt(t *testing.T) {
	cfg := BackoffConfig{InitialDelayMS: 200, Factor: 2.0}
	d1 := DelayForAttempt(1, cfg, "seed")
	d2 := DelayForAttempt(2, cfg, "seed")
	d3 := DelayForAttempt(3, cfg, "seed")
	// Same seed means the same jitter multiplier at every attempt, so
	// growth is strictly monotonic regardless of which multiplier it drew.
	if d1 <= 0 || d2 <= d1 || d3 <= d2 {
		t.Fatalf("expected strictly increasing delays, got %v %v %v", d1, d2, d3)
	}
}

func TestDelayForAttempt_ZeroInitialIsZero(t *testing.T) {
	cfg := BackoffConfig{InitialDelayMS: 0, Factor: 2.0}
	if d := DelayForAttempt(1, cfg, "seed"); d != 0 {
		t.Fatalf("delay = %v, want 0", d)
	}
}

func TestDelayForAttempt_JitterVariesBySeed(t *testing.T) {
	cfg := BackoffConfig{InitialDelayMS: 200, Factor: 2.0}
	a := DelayForAttempt(1, cfg, "seed-a")
	b := DelayForAttempt(1, cfg, "seed-b")
	if a == b {
		t.Fatalf("expected different seeds to (almost certainly) produce different jittered delays")
	}
}
