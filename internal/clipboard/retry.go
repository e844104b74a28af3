package clipboard

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// MaxRetries is the default number of extra attempts Retry makes.
const MaxRetries = 3

// Retry wraps s so that a failed write is retried up to retries times.
// ErrUnavailable is returned immediately since waiting cannot fix it.
// ctx bounds every later Write: once it is done, pending backoffs end and
// Write returns the last failure joined with ctx.Err().
func Retry(ctx context.Context, s Sink, retries int, base time.Duration) Sink {
	return &retrySink{ctx: ctx, sink: s, retries: retries, base: base}
}

type retrySink struct {
	ctx     context.Context
	sink    Sink
	retries int
	base    time.Duration
}

func (r *retrySink) Write(text string) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = r.sink.Write(text)
		if err == nil || errors.Is(err, ErrUnavailable) || attempt >= r.retries {
			return err
		}
		select {
		case <-r.ctx.Done():
			return errors.Join(err, r.ctx.Err())
		case <-time.After(Backoff(r.base, attempt)):
		}
	}
}

// Backoff returns base doubled per attempt (0-indexed), capped at 32x, with
// up to 50% jitter added.
func Backoff(base time.Duration, attempt int) time.Duration {
	d := base << uint(min(attempt, 5))
	if d <= 0 {
		return 0
	}
	jitter := time.Duration(rand.Int64N(int64(d)/2 + 1))
	return d + jitter
}
