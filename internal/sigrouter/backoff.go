package sigrouter

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"time"
)

// BackoffConfig configures the dump-run polling client (§4.F: "initial
// 200 ms, ×2 each retry, per-iteration jitter").
type BackoffConfig struct {
	InitialDelayMS int
	Factor         float64
}

func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{InitialDelayMS: 200, Factor: 2.0}
}

// DelayForAttempt returns the delay before retry number attempt
// (1-indexed). jitterSeed varies the jitter deterministically per
// attempt so repeated calls with the same seed/attempt are
// reproducible in tests.
func DelayForAttempt(attempt int, cfg BackoffConfig, jitterSeed string) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if cfg.InitialDelayMS <= 0 {
		return 0
	}
	baseMS := float64(cfg.InitialDelayMS) * math.Pow(cfg.Factor, float64(attempt-1))
	m := 0.5 + jitterUnit(jitterSeed)
	baseMS *= m
	return time.Duration(baseMS * float64(time.Millisecond))
}

func jitterUnit(seed string) float64 {
	sum := sha256.Sum256([]byte(seed))
	u := binary.BigEndian.Uint64(sum[:8])
	const max = float64(^uint64(0))
	return float64(u) / max
}
