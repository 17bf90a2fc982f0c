package post

import (
	"context"
	"testing"
	"time"
)

type testAddr int

const (
	addrAlpha testAddr = iota
	addrBeta
	addrGamma
)

func (a testAddr) String() string {
	switch a {
	case addrAlpha:
		return "alpha"
	case addrBeta:
		return "beta"
	case addrGamma:
		return "gamma"
	}
	return "unknown"
}

// addrOutside is deliberately not part of any test postmaster's address set.
const addrOutside testAddr = 99

func newTestPostmaster(t *testing.T, opts Options[testAddr, int]) *Postmaster[testAddr, int] {
	t.Helper()

	if len(opts.Addresses) == 0 {
		opts.Addresses = []testAddr{addrAlpha, addrBeta, addrGamma}
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	pm, err := New(opts)
	if err != nil {
		t.Fatalf("new postmaster: %v", err)
	}
	t.Cleanup(pm.Shutdown)
	return pm
}

// collector forwards everything it receives to out, preserving order.
type collector struct {
	out chan Message[testAddr, int]
}

func newCollector(buffer int) *collector {
	return &collector{out: make(chan Message[testAddr, int], buffer)}
}

func (c *collector) Create(addr testAddr, cfg any) error { return nil }

func (c *collector) Run(ctx context.Context, inbox *Inbox[testAddr, int]) {
	for {
		m, err := inbox.Receive(ctx)
		if err != nil {
			return
		}
		c.out <- m
	}
}

func (c *collector) next(t *testing.T) Message[testAddr, int] {
	t.Helper()
	select {
	case m := <-c.out:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for message")
		return Message[testAddr, int]{}
	}
}

func (c *collector) expectNone(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case m := <-c.out:
		t.Fatalf("unexpected message: %+v", m)
	case <-time.After(within):
	}
}

// blockedAgent occupies its task pool slot without ever receiving.
type blockedAgent struct{}

func (blockedAgent) Create(addr testAddr, cfg any) error { return nil }

func (blockedAgent) Run(ctx context.Context, inbox *Inbox[testAddr, int]) {
	<-ctx.Done()
}
