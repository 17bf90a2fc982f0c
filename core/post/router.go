package post

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Send enqueues payload into dest's mailbox, blocking while the mailbox is
// full and resuming once the consumer frees a slot. Sends issued by one task
// to one destination without suspending in between arrive in issue order;
// no ordering holds across distinct sources.
func (pm *Postmaster[A, P]) Send(ctx context.Context, dest, src A, payload P) error {
	mb, ok := pm.mailboxes[dest]
	if !ok {
		return fmt.Errorf("send to %v: %w", dest, ErrNoRecipient)
	}

	m := Message[A, P]{Source: src, Payload: payload}

	// fast path: free slot, no suspension
	select {
	case mb.buf <- m:
		pm.enqueued(mb)
		return nil
	default:
	}

	pm.metrics.SendBlocked(mb.label)
	select {
	case mb.buf <- m:
		pm.enqueued(mb)
		return nil
	case <-pm.ctx.Done():
		pm.metrics.SendFailed(mb.label)
		return fmt.Errorf("send to %v: %w", dest, ErrShutdown)
	case <-ctx.Done():
		pm.metrics.SendFailed(mb.label)
		return fmt.Errorf("send to %v: %w", dest, ctx.Err())
	}
}

// TrySend never blocks: a full mailbox fails immediately with
// [ErrTrySendFailed] and nothing is enqueued.
func (pm *Postmaster[A, P]) TrySend(dest, src A, payload P) error {
	mb, ok := pm.mailboxes[dest]
	if !ok {
		return fmt.Errorf("try send to %v: %w", dest, ErrNoRecipient)
	}

	select {
	case mb.buf <- Message[A, P]{Source: src, Payload: payload}:
		pm.enqueued(mb)
		return nil
	default:
		pm.metrics.SendFailed(mb.label)
		return fmt.Errorf("try send to %v: %w", dest, ErrTrySendFailed)
	}
}

// SendTimeout is Send with a bounded wait: if no slot frees within d it
// fails with [ErrTimeout].
func (pm *Postmaster[A, P]) SendTimeout(ctx context.Context, dest, src A, payload P, d time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	err := pm.Send(ctx, dest, src, payload)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("send to %v: %w", dest, ErrTimeout)
	}
	return err
}

func (pm *Postmaster[A, P]) enqueued(mb *mailbox[A, P]) {
	pm.metrics.MessageEnqueued(mb.label)
	pm.metrics.MailboxDepth(mb.label, mb.depth())
}
