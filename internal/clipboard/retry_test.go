package clipboard

import (
	"context"
	"errors"
	"testing"
	"time"
)

type flakySink struct {
	failures int
	err      error
	calls    int
	got      string
}

func (f *flakySink) Write(text string) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	f.got = text
	return nil
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	s := &flakySink{failures: 2, err: errors.New("xclip busy")}
	if err := Retry(context.Background(), s, 3, time.Millisecond).Write("doc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.calls != 3 {
		t.Errorf("expected 3 calls, got %d", s.calls)
	}
	if s.got != "doc" {
		t.Errorf("expected %q, got %q", "doc", s.got)
	}
}

func TestRetry_GivesUp(t *testing.T) {
	cause := errors.New("xclip busy")
	s := &flakySink{failures: 10, err: cause}
	err := Retry(context.Background(), s, 2, time.Millisecond).Write("doc")
	if !errors.Is(err, cause) {
		t.Fatalf("expected %v, got %v", cause, err)
	}
	if s.calls != 3 {
		t.Errorf("expected 3 calls, got %d", s.calls)
	}
}

func TestRetry_UnavailableIsNotRetried(t *testing.T) {
	s := &flakySink{failures: 10, err: ErrUnavailable}
	if err := Retry(context.Background(), s, 3, time.Millisecond).Write("doc"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if s.calls != 1 {
		t.Errorf("expected 1 call, got %d", s.calls)
	}
}

func TestRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &flakySink{failures: 10, err: errors.New("busy")}
	err := Retry(ctx, s, 3, time.Hour).Write("doc")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if s.calls != 1 {
		t.Errorf("expected 1 call, got %d", s.calls)
	}
}

func TestBackoff_Bounds(t *testing.T) {
	base := 10 * time.Millisecond
	for attempt := range 8 {
		d := Backoff(base, attempt)
		lo := base << uint(min(attempt, 5))
		hi := lo + lo/2
		if d < lo || d > hi {
			t.Errorf("attempt %d: expected backoff in [%v, %v], got %v", attempt, lo, hi, d)
		}
	}
	if d := Backoff(0, 3); d != 0 {
		t.Errorf("expected zero backoff for zero base, got %v", d)
	}
}
