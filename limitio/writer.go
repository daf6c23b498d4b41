package limitio

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

type Writer struct {
	w       io.Writer
	limiter *rate.Limiter
	ctx     context.Context
}

// NewWriter returns a writer that implements io.Writer with rate limiting.
func NewWriter(w io.Writer) *Writer {
	return NewWriterWithContext(context.Background(), w)
}

// NewWriterWithContext returns a rate limited writer. Waiting for the limiter stops when ctx is done.
func NewWriterWithContext(ctx context.Context, w io.Writer) *Writer {
	return &Writer{
		w:   w,
		ctx: ctx,
	}
}

// SetRateLimit sets rate limit (bytes/sec) to the writer.
func (s *Writer) SetRateLimit(bytesPerSec float64, burst int) {
	s.limiter = rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// SetLimiter shares an existing limiter. A nil limiter disables rate limiting.
func (s *Writer) SetLimiter(limiter *rate.Limiter) {
	s.limiter = limiter
}

// Write writes bytes from p.
func (s *Writer) Write(p []byte) (int, error) {
	if s.limiter == nil {
		return s.w.Write(p)
	}
	written := 0
	for len(p) > 0 {
		chunk := p
		if len(chunk) > s.limiter.Burst() {
			chunk = chunk[:s.limiter.Burst()]
		}
		if err := wait(s.ctx, s.limiter, len(chunk)); err != nil {
			return written, err
		}
		n, err := s.w.Write(chunk)
		written += n
		if err != nil {
			return written, err
		}
		p = p[n:]
	}
	return written, nil
}
