package post

import "errors"

var (
	// Registration errors
	ErrAddressAlreadyTaken = errors.New("address already taken")
	ErrTryLockFailed       = errors.New("registry lock contended")

	// Routing errors
	ErrNoRecipient   = errors.New("no mailbox for address")
	ErrTrySendFailed = errors.New("mailbox full")
	ErrTimeout       = errors.New("send timed out")

	// Scheduling errors
	ErrTaskPoolExhausted             = errors.New("task pool exhausted")
	ErrDelayedMessageTaskSpawnFailed = errors.New("delayed message task spawn failed")

	// ErrShutdown is returned by blocked operations when the postmaster is
	// torn down. It is the only condition under which Inbox.Receive fails.
	ErrShutdown = errors.New("postmaster shut down")
)
