package openai

import (
	"time"

	"golang.org/x/time/rate"
)

const defaultRPM = 60

// newLimiter spaces requests rpm per minute with up to burst at once. A
// negative rpm disables limiting and yields nil.
func newLimiter(rpm, burst int) *rate.Limiter {
	if rpm < 0 {
		return nil
	}
	if rpm == 0 {
		rpm = defaultRPM
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), burst)
}
