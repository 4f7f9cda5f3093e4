package resource

import (
	"context"
	"io"
)

// throttle charges the controller's IO limiter for snapshot traffic.
// A nil controller never blocks.
type throttle struct {
	ctx context.Context
	rc  *Controller
}

func (t throttle) charge(n int) error {
	if t.rc == nil || n <= 0 {
		return t.ctx.Err()
	}
	return t.rc.AcquireIO(t.ctx, n)
}

// RateLimitedWriter charges each write before passing it through.
type RateLimitedWriter struct {
	throttle
	w io.Writer
}

func NewRateLimitedWriter(ctx context.Context, w io.Writer, rc *Controller) *RateLimitedWriter {
	return &RateLimitedWriter{throttle: throttle{ctx: ctx, rc: rc}, w: w}
}

func (w *RateLimitedWriter) Write(p []byte) (int, error) {
	if err := w.charge(len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

// RateLimitedReader charges for the bytes a read actually returned.
type RateLimitedReader struct {
	throttle
	r io.Reader
}

func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *RateLimitedReader {
	return &RateLimitedReader{throttle: throttle{ctx: ctx, rc: rc}, r: r}
}

func (r *RateLimitedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if cerr := r.charge(n); cerr != nil {
		return n, cerr
	}
	return n, err
}
