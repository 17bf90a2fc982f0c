package post

import "context"

// mailbox is the bounded FIFO queue behind one address. The buffered channel
// provides the many-producer/single-consumer contract: concurrent enqueues
// are linearized by the runtime without any cross-mailbox locking.
type mailbox[A comparable, P any] struct {
	buf   chan Message[A, P]
	label string
}

func newMailbox[A comparable, P any](addr A, capacity int) *mailbox[A, P] {
	return &mailbox[A, P]{
		buf:   make(chan Message[A, P], capacity),
		label: addrLabel(addr),
	}
}

func (mb *mailbox[A, P]) depth() int { return len(mb.buf) }

// Inbox is the consumer end of one address's mailbox. Exactly one agent owns
// an Inbox; it is handed over at registration and never shared.
type Inbox[A comparable, P any] struct {
	addr    A
	mb      *mailbox[A, P]
	done    <-chan struct{}
	metrics Metrics
}

// Addr returns the address this inbox belongs to.
func (in *Inbox[A, P]) Addr() A { return in.addr }

// Receive blocks until a payload is available and returns the oldest one.
//
// Under normal operation Receive cannot fail: the mailbox outlives its agent.
// A non-nil error is reserved for teardown only — [ErrShutdown] once the
// postmaster is shut down, or the ctx error if the caller's own context ends
// first. Pending messages are drained before shutdown is reported.
func (in *Inbox[A, P]) Receive(ctx context.Context) (Message[A, P], error) {
	select {
	case m := <-in.mb.buf:
		in.received()
		return m, nil
	default:
	}

	var zero Message[A, P]
	select {
	case m := <-in.mb.buf:
		in.received()
		return m, nil
	case <-in.done:
		return zero, ErrShutdown
	case <-ctx.Done():
		// agents typically run on the postmaster context, so teardown can
		// surface on either branch; report it uniformly
		select {
		case <-in.done:
			return zero, ErrShutdown
		default:
		}
		return zero, ctx.Err()
	}
}

func (in *Inbox[A, P]) received() {
	in.metrics.MessageReceived(in.mb.label)
	in.metrics.MailboxDepth(in.mb.label, in.mb.depth())
}
