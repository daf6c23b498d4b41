package limitio

import (
	"context"

	"golang.org/x/time/rate"
)

// DefaultBurst is the burst size used by NewLimiter
const DefaultBurst = 32 * 1024

// NewLimiter returns a limiter allowing bytesPerSec, or nil when bytesPerSec is not positive.
// The burst is never larger than one second worth of bytes.
func NewLimiter(bytesPerSec int) *rate.Limiter {
	if bytesPerSec <= 0 {
		return nil
	}
	burst := DefaultBurst
	if burst > bytesPerSec {
		burst = bytesPerSec
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// wait for the tokens needed to transfer n bytes, one burst at a time
func wait(ctx context.Context, limiter *rate.Limiter, n int) error {
	burst := limiter.Burst()
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}
		if err := limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}
