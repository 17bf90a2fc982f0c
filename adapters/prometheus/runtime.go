package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/petekubiak/post-haste/core/metrics"
	"github.com/petekubiak/post-haste/core/post"
)

// runtimeMetrics implements post.Metrics using Prometheus.
type runtimeMetrics struct {
	messagesEnqueued *prometheus.CounterVec
	messagesReceived *prometheus.CounterVec
	mailboxDepth     *prometheus.GaugeVec
	sendsBlocked     *prometheus.CounterVec
	sendsFailed      *prometheus.CounterVec

	delaysScheduled *prometheus.CounterVec
	delaysDelivered *prometheus.CounterVec
	delayDuration   prometheus.Histogram

	tasksInFlight prometheus.Gauge

	agentPanics *prometheus.CounterVec
}

// NewRuntimeMetrics creates a Prometheus implementation of post.Metrics and
// registers all collectors with reg.
func NewRuntimeMetrics(reg prometheus.Registerer) post.Metrics {
	m := &runtimeMetrics{
		messagesEnqueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "post_messages_enqueued_total",
			Help: "Total number of payloads admitted into mailboxes",
		}, []string{"dest"}),

		messagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "post_messages_received_total",
			Help: "Total number of payloads consumed by agents",
		}, []string{"dest"}),

		mailboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "post_mailbox_depth",
			Help: "Current mailbox queue depth",
		}, []string{"dest"}),

		sendsBlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "post_sends_blocked_total",
			Help: "Total number of sends that hit a full mailbox and waited",
		}, []string{"dest"}),

		sendsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "post_sends_failed_total",
			Help: "Total number of sends that did not enqueue",
		}, []string{"dest"}),

		delaysScheduled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "post_delays_scheduled_total",
			Help: "Total number of delayed messages scheduled",
		}, []string{"dest"}),

		delaysDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "post_delays_delivered_total",
			Help: "Total number of delayed message delivery attempts",
		}, []string{"dest", "success"}),

		delayDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "post_delay_duration_seconds",
			Help:    "Time from scheduling a delayed message to its delivery",
			Buckets: defaultBuckets,
		}),

		tasksInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "post_tasks_in_flight",
			Help: "Number of occupied task pool slots",
		}),

		agentPanics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "post_agent_panics_total",
			Help: "Total number of agent task panics",
		}, []string{"agent"}),
	}

	reg.MustRegister(
		m.messagesEnqueued,
		m.messagesReceived,
		m.mailboxDepth,
		m.sendsBlocked,
		m.sendsFailed,
		m.delaysScheduled,
		m.delaysDelivered,
		m.delayDuration,
		m.tasksInFlight,
		m.agentPanics,
	)

	return m
}

func (m *runtimeMetrics) MessageEnqueued(dest string) {
	m.messagesEnqueued.WithLabelValues(dest).Inc()
}

func (m *runtimeMetrics) MessageReceived(dest string) {
	m.messagesReceived.WithLabelValues(dest).Inc()
}

func (m *runtimeMetrics) MailboxDepth(dest string, depth int) {
	m.mailboxDepth.WithLabelValues(dest).Set(float64(depth))
}

func (m *runtimeMetrics) SendBlocked(dest string) {
	m.sendsBlocked.WithLabelValues(dest).Inc()
}

func (m *runtimeMetrics) SendFailed(dest string) {
	m.sendsFailed.WithLabelValues(dest).Inc()
}

func (m *runtimeMetrics) DelayScheduled(dest string) {
	m.delaysScheduled.WithLabelValues(dest).Inc()
}

func (m *runtimeMetrics) DelayDelivered(dest string, success bool) {
	m.delaysDelivered.WithLabelValues(dest, boolToStr(success)).Inc()
}

func (m *runtimeMetrics) DelayTimer() metrics.Timer {
	return newTimer(m.delayDuration)
}

func (m *runtimeMetrics) TasksInFlight(count int) {
	m.tasksInFlight.Set(float64(count))
}

func (m *runtimeMetrics) AgentPanic(agent string) {
	m.agentPanics.WithLabelValues(agent).Inc()
}
