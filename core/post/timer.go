package post

import (
	"context"
	"time"
)

// Timer is the duration-based suspension primitive used by the delayed
// delivery scheduler. The default implementation sleeps on the wall clock;
// tests may inject their own to control time.
type Timer interface {
	// Sleep blocks until d has elapsed or ctx is done, returning the ctx
	// error in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

type wallTimer struct{}

func (wallTimer) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WallTimer returns the default Timer backed by the system clock.
func WallTimer() Timer { return wallTimer{} }
