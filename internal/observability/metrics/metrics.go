package metrics

import "github.com/prometheus/client_golang/prometheus"

// SiteMetrics exposes counters for lead intake, side-channel tasks and the chat widget.
type SiteMetrics struct {
	leadSubmissions  *prometheus.CounterVec
	sideChannelTasks *prometheus.CounterVec
	sideChannelTime  *prometheus.HistogramVec
	chatMessages     *prometheus.CounterVec
}

func NewSiteMetrics(reg prometheus.Registerer) *SiteMetrics {
	m := &SiteMetrics{
		leadSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onyx",
			Subsystem: "intake",
			Name:      "lead_submissions_total",
			Help:      "Contact form submissions by outcome",
		}, []string{"outcome"}),
		sideChannelTasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onyx",
			Subsystem: "sidechannel",
			Name:      "tasks_total",
			Help:      "Best-effort side-channel tasks by name and outcome",
		}, []string{"task", "outcome"}),
		sideChannelTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "onyx",
			Subsystem: "sidechannel",
			Name:      "task_duration_seconds",
			Help:      "Duration of best-effort side-channel tasks",
			Buckets:   prometheus.DefBuckets,
		}, []string{"task"}),
		chatMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "onyx",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Chat widget messages answered by transport",
		}, []string{"transport"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.leadSubmissions, m.sideChannelTasks, m.sideChannelTime, m.chatMessages)
	return m
}

func (m *SiteMetrics) ObserveLeadSubmission(outcome string) {
	if m == nil {
		return
	}
	m.leadSubmissions.WithLabelValues(outcome).Inc()
}

func (m *SiteMetrics) ObserveSideChannel(task string, ok bool, seconds float64) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.sideChannelTasks.WithLabelValues(task, outcome).Inc()
	m.sideChannelTime.WithLabelValues(task).Observe(seconds)
}

func (m *SiteMetrics) ObserveChatMessage(transport string) {
	if m == nil {
		return
	}
	m.chatMessages.WithLabelValues(transport).Inc()
}
