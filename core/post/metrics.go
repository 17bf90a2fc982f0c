package post

import "github.com/petekubiak/post-haste/core/metrics"

// Metrics is the instrumentation hook for the runtime. All methods must be
// safe for concurrent use. See adapters/prometheus for a real backend.
type Metrics interface {
	// Routing
	MessageEnqueued(dest string)
	MessageReceived(dest string)
	MailboxDepth(dest string, depth int)
	SendBlocked(dest string)
	SendFailed(dest string)

	// Delayed delivery
	DelayScheduled(dest string)
	DelayDelivered(dest string, success bool)
	DelayTimer() metrics.Timer

	// Task pool
	TasksInFlight(count int)

	// Agents
	AgentPanic(addr string)
}

// nopMetrics is a no-op implementation of Metrics.
type nopMetrics struct{}

func (nopMetrics) MessageEnqueued(string)      {}
func (nopMetrics) MessageReceived(string)      {}
func (nopMetrics) MailboxDepth(string, int)    {}
func (nopMetrics) SendBlocked(string)          {}
func (nopMetrics) SendFailed(string)           {}
func (nopMetrics) DelayScheduled(string)       {}
func (nopMetrics) DelayDelivered(string, bool) {}
func (nopMetrics) DelayTimer() metrics.Timer   { return metrics.NopTimer() }
func (nopMetrics) TasksInFlight(int)           {}
func (nopMetrics) AgentPanic(string)           {}

// NopMetrics returns a no-op Metrics implementation.
func NopMetrics() Metrics { return nopMetrics{} }
