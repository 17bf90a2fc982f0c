package post

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/petekubiak/post-haste/internal/reflector"
)

// Builder is a deferred message under construction. It unifies the immediate
// and delayed paths: Send dispatches right away unless WithDelay was applied,
// in which case delivery is handed to a detached timer task.
type Builder[A comparable, P any] struct {
	pm      *Postmaster[A, P]
	dest    A
	src     A
	payload P
	delay   time.Duration
}

// Message starts building a message from src to dest.
func (pm *Postmaster[A, P]) Message(dest, src A, payload P) Builder[A, P] {
	return Builder[A, P]{pm: pm, dest: dest, src: src, payload: payload}
}

// WithDelay defers delivery by d.
func (b Builder[A, P]) WithDelay(d time.Duration) Builder[A, P] {
	b.delay = d
	return b
}

// Send dispatches the message. Without a delay it behaves exactly like
// [Postmaster.Send]. With a delay it spawns one detached task from the
// bounded pool that sleeps for the delay, performs a single ordinary send,
// and terminates; Send itself returns as soon as that task is spawned.
//
// If no pool slot is free the call fails synchronously with
// [ErrDelayedMessageTaskSpawnFailed] and the payload is never enqueued —
// the caller must decide whether to retry, drop or escalate. A failure of
// the eventual inner send (mailbox still full at delivery time, or teardown)
// is reported later through Options.OnDeliveryError, never silently dropped.
func (b Builder[A, P]) Send(ctx context.Context) error {
	if b.delay <= 0 {
		return b.pm.Send(ctx, b.dest, b.src, b.payload)
	}
	return b.pm.sendDelayed(b)
}

func (pm *Postmaster[A, P]) sendDelayed(b Builder[A, P]) error {
	mb, ok := pm.mailboxes[b.dest]
	if !ok {
		return fmt.Errorf("delayed send to %v: %w", b.dest, ErrNoRecipient)
	}

	id := gonanoid.Must(8)
	timer := pm.metrics.DelayTimer()

	err := pm.pool.Spawn(func() {
		if err := pm.timer.Sleep(pm.ctx, b.delay); err != nil {
			// teardown before the delay elapsed
			pm.metrics.DelayDelivered(mb.label, false)
			return
		}

		msg := Message[A, P]{Source: b.src, Payload: b.payload}
		if err := pm.Send(pm.ctx, b.dest, b.src, b.payload); err != nil {
			pm.metrics.DelayDelivered(mb.label, false)
			pm.log.Warn("delayed message not delivered",
				slog.String("id", id),
				slog.String("dest", mb.label),
				slog.String("payload_type", reflector.VariantName(b.payload)),
				slog.Any("error", err),
			)
			pm.onDeliveryError(err, b.dest, msg)
			return
		}

		timer.ObserveDuration()
		pm.metrics.DelayDelivered(mb.label, true)
	})
	if err != nil {
		return fmt.Errorf("delayed send to %v: %w", b.dest, ErrDelayedMessageTaskSpawnFailed)
	}

	pm.metrics.DelayScheduled(mb.label)
	pm.log.Debug("delayed message scheduled",
		slog.String("id", id),
		slog.String("dest", mb.label),
		slog.String("source", addrLabel(b.src)),
		slog.Duration("delay", b.delay),
	)
	return nil
}
