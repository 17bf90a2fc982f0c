// Package post provides an in-process actor/mailbox messaging runtime over a
// closed set of addresses: one bounded FIFO mailbox and at most one agent per
// address, typed point-to-point sends, and timer-deferred delivery.
//
// The address set, payload type and mailbox capacity are fixed when the
// [Postmaster] is built; nothing about the table's shape changes afterwards.
// Each address:
//   - Owns exactly one bounded mailbox (many producers, single consumer)
//   - Is driven by at most one registered agent task
//   - Guarantees FIFO delivery per source→destination pair
//
// # Setup
//
// Declare the closed address and payload sets, then build the runtime once:
//
//	type Addr int
//
//	const (
//	    AddrSequencer Addr = iota
//	    AddrDisplay
//	)
//
//	type Payload interface{ payload() }
//
//	pm, err := post.New(post.Options[Addr, Payload]{
//	    Addresses:   []Addr{AddrSequencer, AddrDisplay},
//	    MailboxSize: 8,
//	})
//
// # Agents
//
// An agent implements [Agent]: Create builds its state, Run owns the inbox
// and loops until teardown:
//
//	func (a *Sequencer) Run(ctx context.Context, inbox *post.Inbox[Addr, Payload]) {
//	    for {
//	        msg, err := inbox.Receive(ctx)
//	        if err != nil {
//	            return // teardown; the only way Receive fails
//	        }
//	        a.handle(msg)
//	    }
//	}
//
//	err := pm.Register(AddrSequencer, &Sequencer{}, nil)
//
// Registration is exclusive: a second Register for the same address fails
// with [ErrAddressAlreadyTaken].
//
// # Sending
//
// Use [Postmaster.Send] for blocking/backpressure delivery,
// [Postmaster.TrySend] when the caller would rather drop than wait, and the
// [Postmaster.Message] builder when delivery should happen after a delay:
//
//	err := pm.Message(AddrSequencer, AddrSequencer, tick{}).
//	    WithDelay(2 * time.Second).
//	    Send(ctx)
//
// A delayed send spawns one detached timer task from the runtime's bounded
// pool; scheduling fails synchronously with
// [ErrDelayedMessageTaskSpawnFailed] when the pool is exhausted. Once
// scheduled, a delayed message cannot be cancelled.
//
// # Teardown
//
// [Postmaster.Shutdown] cancels the runtime: blocked Receives return
// [ErrShutdown] (the only non-nil result Receive ever produces), pending
// timers are abandoned, and Shutdown returns once every task has ended.
package post
