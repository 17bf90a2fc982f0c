package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuntimeMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRuntimeMetrics(reg)

	require.NotNil(t, m)

	// Routing
	m.MessageEnqueued("sequencer")
	m.MessageReceived("sequencer")
	m.MailboxDepth("sequencer", 3)
	m.SendBlocked("sequencer")
	m.SendFailed("sequencer")

	// Delayed delivery
	m.DelayScheduled("sequencer")
	m.DelayDelivered("sequencer", true)
	m.DelayDelivered("sequencer", false)

	timer := m.DelayTimer()
	assert.NotNil(t, timer)
	timer.ObserveDuration()

	// Task pool and agents
	m.TasksInFlight(2)
	m.AgentPanic("sequencer")

	// Verify metrics were registered
	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)

	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}

	assert.True(t, names["post_messages_enqueued_total"])
	assert.True(t, names["post_mailbox_depth"])
	assert.True(t, names["post_delays_delivered_total"])
	assert.True(t, names["post_delay_duration_seconds"])
	assert.True(t, names["post_tasks_in_flight"])
}

func TestBoolToStr(t *testing.T) {
	assert.Equal(t, "true", boolToStr(true))
	assert.Equal(t, "false", boolToStr(false))
}
