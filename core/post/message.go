package post

import "fmt"

// Message is a payload together with the address that sent it. The
// destination is implicit: a message only ever exists inside (or on its way
// into) the destination's mailbox.
//
// Ownership transfers with the message: once enqueued the sender must not
// retain or mutate the payload, and once received it belongs to the agent.
type Message[A comparable, P any] struct {
	Source  A
	Payload P
}

// addrLabel renders an address for logs and metric labels.
func addrLabel(a any) string {
	if s, ok := a.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", a)
}
