package metrics

import "github.com/prometheus/client_golang/prometheus"

// WidgetMetrics exposes counters/histograms for the widget gateway flows.
type WidgetMetrics struct {
	chatMessagesTotal  *prometheus.CounterVec
	availabilityTotal  *prometheus.CounterVec
	bookingCommitTotal *prometheus.CounterVec
	upstreamLatency    *prometheus.HistogramVec
}

func NewWidgetMetrics(reg prometheus.Registerer) *WidgetMetrics {
	m := &WidgetMetrics{
		chatMessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartserve",
			Subsystem: "widget",
			Name:      "chat_messages_total",
			Help:      "Total chat messages forwarded to the assistant",
		}, []string{"status", "action"}),
		availabilityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartserve",
			Subsystem: "widget",
			Name:      "availability_checks_total",
			Help:      "Total availability lookups against the booking backend",
		}, []string{"status"}),
		bookingCommitTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartserve",
			Subsystem: "widget",
			Name:      "booking_commits_total",
			Help:      "Total booking commit attempts",
		}, []string{"status"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "smartserve",
			Subsystem: "widget",
			Name:      "upstream_latency_seconds",
			Help:      "Latency of upstream assistant and booking calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"upstream"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.chatMessagesTotal, m.availabilityTotal, m.bookingCommitTotal, m.upstreamLatency)
	return m
}

func (m *WidgetMetrics) ObserveChatMessage(status, action string) {
	if m == nil {
		return
	}
	m.chatMessagesTotal.WithLabelValues(status, action).Inc()
}

func (m *WidgetMetrics) ObserveAvailabilityCheck(status string) {
	if m == nil {
		return
	}
	m.availabilityTotal.WithLabelValues(status).Inc()
}

func (m *WidgetMetrics) ObserveBookingCommit(status string) {
	if m == nil {
		return
	}
	m.bookingCommitTotal.WithLabelValues(status).Inc()
}

func (m *WidgetMetrics) ObserveUpstreamLatency(upstream string, seconds float64) {
	if m == nil {
		return
	}
	m.upstreamLatency.WithLabelValues(upstream).Observe(seconds)
}
