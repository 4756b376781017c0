package notify

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
)

var ErrThrottled = errors.New("outbound mail rate exceeded")

// Throttled caps how fast codes leave the process. Sends over the limit fail
// immediately with ErrThrottled; nothing is queued or retried.
type Throttled struct {
	next    Sender
	limiter *rate.Limiter
}

// NewThrottled allows perMinute sends on average with the given burst.
// perMinute <= 0 disables throttling and returns next unchanged.
func NewThrottled(next Sender, perMinute float64, burst int) Sender {
	if perMinute <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &Throttled{next: next, limiter: rate.NewLimiter(rate.Limit(perMinute/60), burst)}
}

func (t *Throttled) SendCode(ctx context.Context, address, code string) error {
	if !t.limiter.Allow() {
		return ErrThrottled
	}
	return t.next.SendCode(ctx, address, code)
}
