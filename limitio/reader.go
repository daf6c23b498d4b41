package limitio

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

type Reader struct {
	source  io.Reader
	limiter *rate.Limiter
	ctx     context.Context
}

// NewReader returns a reader that implements io.Reader with rate limiting.
func NewReader(r io.Reader) *Reader {
	return NewReaderWithContext(context.Background(), r)
}

// NewReaderWithContext returns a rate limited reader. Waiting for the limiter stops when ctx is done.
func NewReaderWithContext(ctx context.Context, r io.Reader) *Reader {
	return &Reader{
		source: r,
		ctx:    ctx,
	}
}

// SetRateLimit sets rate limit (bytes/sec) to the reader.
func (s *Reader) SetRateLimit(bytesPerSec float64, burst int) {
	s.limiter = rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// SetLimiter shares an existing limiter. A nil limiter disables rate limiting.
func (s *Reader) SetLimiter(limiter *rate.Limiter) {
	s.limiter = limiter
}

// Read bytes into p.
func (s *Reader) Read(p []byte) (int, error) {
	if s.limiter == nil {
		return s.source.Read(p)
	}
	// never read more than a burst at once
	if len(p) > s.limiter.Burst() {
		p = p[:s.limiter.Burst()]
	}
	n, err := s.source.Read(p)
	if n > 0 {
		if werr := wait(s.ctx, s.limiter, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
