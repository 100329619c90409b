package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Failure reasons reported by the registration workflow.
const (
	ReasonValidation = "validation"
	ReasonDuplicate  = "duplicate_email"
	ReasonStore      = "store"
)

// notification is caller-supplied text, so only known channels get their own series.
var knownNotifications = map[string]struct{}{
	"email": {},
	"sms":   {},
	"push":  {},
	"none":  {},
}

// NotificationOther labels every channel outside the known set.
const NotificationOther = "other"

func notificationLabel(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if _, ok := knownNotifications[value]; ok {
		return value
	}
	return NotificationOther
}

// RegistrationMetrics counts registration outcomes.
type RegistrationMetrics struct {
	registered *prometheus.CounterVec
	failed     *prometheus.CounterVec
}

// NewRegistrationMetrics registers the registration counters on the provided registerer.
func NewRegistrationMetrics(reg prometheus.Registerer) *RegistrationMetrics {
	if reg == nil {
		return &RegistrationMetrics{}
	}
	registered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "user_registrations_total",
		Help: "Users registered, by notification preference.",
	}, []string{"notification"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "user_registration_failures_total",
		Help: "Rejected or failed registrations, by reason.",
	}, []string{"reason"})
	reg.MustRegister(registered, failed)
	return &RegistrationMetrics{registered: registered, failed: failed}
}

// IncRegistered counts a stored registration.
func (m *RegistrationMetrics) IncRegistered(notification string) {
	if m == nil || m.registered == nil {
		return
	}
	m.registered.WithLabelValues(notificationLabel(notification)).Inc()
}

// IncFailure counts a registration that did not complete.
func (m *RegistrationMetrics) IncFailure(reason string) {
	if m == nil || m.failed == nil {
		return
	}
	m.failed.WithLabelValues(normalizeLabel(reason)).Inc()
}
