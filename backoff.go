package queuectl

import "time"

// backoffCounter computes the retry-or-die decision and delay for a
// failed attempt, per spec: delay = backoffBase ^ attempts seconds.
//
// Unlike gqs's jittered exponential backoff, this is the plain integer
// power the spec names; there is no jitter or interval cap, since
// run_at-based scheduling is explicitly out of scope and the delay is
// realized as a worker-side sleep.
type backoffCounter struct {
	maxRetries uint32
	base       uint32
}

// next reports the delay to sleep before the job is eligible again,
// and whether a retry should even be attempted. ok is false once
// attempts has reached maxRetries, signaling the job should die.
func (bc backoffCounter) next(attempts uint32) (delay time.Duration, ok bool) {
	if attempts >= bc.maxRetries {
		return 0, false
	}
	seconds := 1
	for i := uint32(0); i < attempts; i++ {
		seconds *= int(bc.base)
	}
	return time.Duration(seconds) * time.Second, true
}
