package post

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuilder_immediate(t *testing.T) {
	pm := newTestPostmaster(t, Options[testAddr, int]{})

	c := newCollector(4)
	require.NoError(t, pm.Register(addrAlpha, c, nil))

	require.NoError(t, pm.Message(addrAlpha, addrBeta, 5).Send(context.Background()))

	m := c.next(t)
	require.Equal(t, addrBeta, m.Source)
	require.Equal(t, 5, m.Payload)
}

func TestBuilder_delayedNotBeforeDelay(t *testing.T) {
	pm := newTestPostmaster(t, Options[testAddr, int]{})

	c := newCollector(4)
	require.NoError(t, pm.Register(addrAlpha, c, nil))

	start := time.Now()
	require.NoError(t, pm.Message(addrAlpha, addrBeta, 1).
		WithDelay(80*time.Millisecond).
		Send(context.Background()))

	// nothing arrives before the delay has elapsed
	c.expectNone(t, 40*time.Millisecond)

	m := c.next(t)
	require.Equal(t, 1, m.Payload)
	require.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)

	// delivered exactly once
	c.expectNone(t, 150*time.Millisecond)
}

func TestBuilder_delayedOrdering(t *testing.T) {
	pm := newTestPostmaster(t, Options[testAddr, int]{})

	c := newCollector(4)
	require.NoError(t, pm.Register(addrAlpha, c, nil))

	// schedule the longer delay first: arrival order must follow the delays
	require.NoError(t, pm.Message(addrAlpha, addrBeta, 5).
		WithDelay(250*time.Millisecond).
		Send(context.Background()))
	require.NoError(t, pm.Message(addrAlpha, addrBeta, 2).
		WithDelay(100*time.Millisecond).
		Send(context.Background()))

	require.Equal(t, 2, c.next(t).Payload)
	require.Equal(t, 5, c.next(t).Payload)
}

func TestBuilder_delayedSpawnFailure(t *testing.T) {
	pm := newTestPostmaster(t, Options[testAddr, int]{MaxTasks: 1})

	// the only pool slot is held by a registered agent
	require.NoError(t, pm.Register(addrBeta, blockedAgent{}, nil))

	err := pm.Message(addrAlpha, addrBeta, 9).
		WithDelay(10 * time.Millisecond).
		Send(context.Background())
	require.ErrorIs(t, err, ErrDelayedMessageTaskSpawnFailed)

	// the payload was never enqueued anywhere
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 0, pm.mailboxes[addrAlpha].depth())
}

func TestBuilder_delayedNoRecipient(t *testing.T) {
	pm := newTestPostmaster(t, Options[testAddr, int]{})

	err := pm.Message(addrOutside, addrAlpha, 1).
		WithDelay(10 * time.Millisecond).
		Send(context.Background())
	require.ErrorIs(t, err, ErrNoRecipient)
}

func TestBuilder_deliveryFailureSurfaced(t *testing.T) {
	failed := make(chan error, 1)

	pm, err := New(Options[testAddr, int]{
		Addresses:   []testAddr{addrAlpha, addrBeta},
		MailboxSize: 1,
		Context:     context.Background(),
		OnDeliveryError: func(err error, dest testAddr, msg Message[testAddr, int]) {
			failed <- err
		},
	})
	require.NoError(t, err)

	// fill the destination; it has no consumer, so the timer task's send
	// can only end when the runtime is torn down
	require.NoError(t, pm.TrySend(addrAlpha, addrBeta, 1))
	require.NoError(t, pm.Message(addrAlpha, addrBeta, 2).
		WithDelay(20*time.Millisecond).
		Send(context.Background()))

	time.Sleep(60 * time.Millisecond)
	pm.Shutdown()

	select {
	case err := <-failed:
		require.ErrorIs(t, err, ErrShutdown)
	case <-time.After(2 * time.Second):
		t.Fatal("delivery failure was not surfaced")
	}
}

func TestBuilder_selfDelayedMessage(t *testing.T) {
	pm := newTestPostmaster(t, Options[testAddr, int]{})

	c := newCollector(4)
	require.NoError(t, pm.Register(addrAlpha, c, nil))

	// the self-addressed delayed send pattern agents use to drive their own
	// state-machine timers
	require.NoError(t, pm.Message(addrAlpha, addrAlpha, 3).
		WithDelay(30*time.Millisecond).
		Send(context.Background()))

	m := c.next(t)
	require.Equal(t, addrAlpha, m.Source)
	require.Equal(t, 3, m.Payload)
}
