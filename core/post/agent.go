package post

import "context"

// Agent is the capability every addressable unit implements. One Agent value
// is bound to exactly one address at registration.
//
// Create runs once, synchronously, inside Register: build the agent's state
// from its address and per-registration configuration and report any config
// problem as an error.
//
// Run takes exclusive ownership of the inbox and loops for the lifetime of
// the runtime. It returns only when Receive reports teardown. An agent that
// receives a payload variant it does not handle must log it and continue;
// unsupported variants are never fatal.
type Agent[A comparable, P any] interface {
	Create(addr A, cfg any) error
	Run(ctx context.Context, inbox *Inbox[A, P])
}
