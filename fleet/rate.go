package fleet

import (
	"math/rand"
	"time"
)

// RateModel advances a charging robot's battery level. Given the time since
// the last advance and the current level it returns the percentage-point
// delta to apply. The sweep clamps the result to 100.
//
// The production default is a randomized placeholder standing in for real
// telemetry; a sensor-fed implementation can be injected without touching the
// state machine.
type RateModel interface {
	Delta(elapsed time.Duration, currentLevel float64) float64
}

// RandomRate adds a uniform 5-15 percentage points per sweep, mirroring the
// behavior this system shipped with before measured charge rates existed.
type RandomRate struct {
	rng *rand.Rand
}

func NewRandomRate() *RandomRate {
	return &RandomRate{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (r *RandomRate) Delta(elapsed time.Duration, currentLevel float64) float64 {
	return 5 + r.rng.Float64()*10
}

// FixedRate returns the same delta on every sweep. Used by tests that need
// deterministic charge progress.
type FixedRate float64

func (f FixedRate) Delta(elapsed time.Duration, currentLevel float64) float64 {
	return float64(f)
}
