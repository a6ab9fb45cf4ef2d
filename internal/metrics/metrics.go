// Package metrics содержит счётчики Prometheus, публикуемые на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/magabrotheeeer/safezone/internal/models"
)

const namespace = "safezone"

// Metrics собирает события подписок и тревог.
type Metrics struct {
	subscriptionsCreated  *prometheus.CounterVec
	subscriptionTransfers *prometheus.CounterVec
	alertsCreated         *prometheus.CounterVec
	alertRecipients       prometheus.Histogram
	notificationsFailed   prometheus.Counter
}

// New создаёт счётчики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		subscriptionsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscription",
			Name:      "created_total",
			Help:      "Number of subscriptions created, by payment method.",
		}, []string{"payment_method"}),
		subscriptionTransfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "subscription",
			Name:      "transitions_total",
			Help:      "Number of persisted subscription status transitions.",
		}, []string{"from", "to"}),
		alertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alert",
			Name:      "created_total",
			Help:      "Number of alerts raised, by type.",
		}, []string{"type"}),
		alertRecipients: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "alert",
			Name:      "recipients",
			Help:      "Number of neighbours notified per alert.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		notificationsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alert",
			Name:      "publish_failures_total",
			Help:      "Number of alert notifications that could not be published to the broker.",
		}),
	}
	reg.MustRegister(
		m.subscriptionsCreated,
		m.subscriptionTransfers,
		m.alertsCreated,
		m.alertRecipients,
		m.notificationsFailed,
	)
	return m
}

// SubscriptionCreated учитывает новую подписку.
func (m *Metrics) SubscriptionCreated(paymentMethod string) {
	m.subscriptionsCreated.WithLabelValues(paymentMethod).Inc()
}

// SubscriptionTransition учитывает сохранённый переход статуса.
func (m *Metrics) SubscriptionTransition(from, to models.SubscriptionStatus) {
	m.subscriptionTransfers.WithLabelValues(string(from), string(to)).Inc()
}

// AlertCreated учитывает тревогу и число уведомлённых соседей.
func (m *Metrics) AlertCreated(alertType string, recipients int) {
	m.alertsCreated.WithLabelValues(alertType).Inc()
	m.alertRecipients.Observe(float64(recipients))
}

// NotificationPublishFailed учитывает неудачную публикацию в брокер.
func (m *Metrics) NotificationPublishFailed() {
	m.notificationsFailed.Inc()
}
