package agent

import (
	"math"
	"time"
)

// Budget bounds one run: a maximum number of reasoning iterations and a
// wall-clock ceiling. It is mutated only by the run that owns it.
type Budget struct {
	maxIterations int
	maxDuration   time.Duration
	used          int
	started       time.Time
	now           func() time.Time
}

func NewBudget(maxIterations int, maxDuration time.Duration) *Budget {
	return &Budget{
		maxIterations: maxIterations,
		maxDuration:   maxDuration,
		started:       time.Now(),
		now:           time.Now,
	}
}

// ConsumeIteration records one reasoning iteration. It returns false once
// the cap is reached: the caller must stop and produce a best-effort
// answer instead of looping on.
func (b *Budget) ConsumeIteration() bool {
	if b.used >= b.maxIterations {
		return false
	}
	b.used++
	return true
}

func (b *Budget) Used() int { return b.used }

// TimeRemaining reports how much of the wall-clock allowance is left.
// Zero or less means no further step may begin; a step already in flight
// is allowed to finish.
func (b *Budget) TimeRemaining() time.Duration {
	if b.maxDuration <= 0 {
		return time.Duration(math.MaxInt64)
	}
	return b.maxDuration - b.now().Sub(b.started)
}
