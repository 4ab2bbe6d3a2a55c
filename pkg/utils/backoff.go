package utils

import "time"

// Backoff yields the delay before a retry. attempt is 1 for the first retry.
type Backoff interface {
	Delay(attempt int) time.Duration
}

// ExponentialBackoff doubles Base on each retry, capped at Max when Max > 0.
type ExponentialBackoff struct {
	Base time.Duration
	Max  time.Duration
}

func (b ExponentialBackoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	d := b.Base
	for i := 1; i < attempt; i++ {
		d *= 2
		if b.Max > 0 && d >= b.Max {
			return b.Max
		}
	}
	if b.Max > 0 && d > b.Max {
		return b.Max
	}
	return d
}
