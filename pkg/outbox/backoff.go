package outbox

import (
	"math/rand"
	"time"
)

const backoffBase = time.Second

// backoff returns the delay before redelivering a failed message: one
// second after the first attempt, doubling per attempt up to ceiling.
func backoff(attempts int, ceiling time.Duration) time.Duration {
	if attempts <= 0 {
		return 0
	}
	d := backoffBase
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= ceiling {
			return ceiling
		}
	}
	if d > ceiling {
		return ceiling
	}
	return d
}

// jitter draws a uniform delay in [0, maxJitter] so relays restarting
// together do not retry in lockstep.
func jitter(r *rand.Rand, maxJitter time.Duration) time.Duration {
	if r == nil || maxJitter <= 0 {
		return 0
	}
	return time.Duration(r.Int63n(int64(maxJitter) + 1))
}
