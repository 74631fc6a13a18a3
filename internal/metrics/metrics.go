package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// authOutcomesTotal counts authentication outcomes.
	// Labels:
	// - action: register | login
	// - result: success | failure | locked
	authOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Subsystem: "auth",
			Name:      "outcomes_total",
			Help:      "Authentication outcomes by action and result.",
		},
		[]string{"action", "result"},
	)

	// interactionRecipientsTotal counts recipients resolved for bulk interactions by channel.
	interactionRecipientsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Subsystem: "interactions",
			Name:      "recipients_total",
			Help:      "Recipients matched by bulk interactions.",
		},
		[]string{"channel"},
	)

	// emailSendsTotal counts provider send attempts.
	// Labels:
	// - provider: ses | smtp | brevo
	// - result: success | failure
	emailSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Subsystem: "email",
			Name:      "sends_total",
			Help:      "Email send attempts by provider and result.",
		},
		[]string{"provider", "result"},
	)

	// emailStatsWrittenTotal counts EmailStats records by result.
	emailStatsWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Subsystem: "email",
			Name:      "stats_written_total",
			Help:      "Email stats records written by result.",
		},
		[]string{"result"},
	)

	// sendRatePerMinute tracks the per-tenant dispatch rate over the last minute.
	sendRatePerMinute = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "outreach",
			Subsystem: "email",
			Name:      "send_rate_per_minute",
			Help:      "Emails dispatched in the trailing minute per tenant.",
		},
		[]string{"tenant_id"},
	)

	// importedRecordsTotal counts company user records written by uploads.
	importedRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Subsystem: "company_users",
			Name:      "imported_total",
			Help:      "Company user records imported by file format.",
		},
		[]string{"format"},
	)

	// webhookEventsTotal counts provider webhook deliveries.
	// Labels:
	// - type: Notification | SubscriptionConfirmation | other
	// - result: success | failure | ignored
	webhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Subsystem: "webhooks",
			Name:      "events_total",
			Help:      "Provider webhook events by type and result.",
		},
		[]string{"type", "result"},
	)
)

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

// IncAuthOutcome increments the auth outcome counter.
func IncAuthOutcome(action, result string) {
	authOutcomesTotal.WithLabelValues(orUnknown(action), orUnknown(result)).Inc()
}

// AddInteractionRecipients adds n matched recipients for channel.
func AddInteractionRecipients(channel string, n int) {
	interactionRecipientsTotal.WithLabelValues(orUnknown(channel)).Add(float64(n))
}

// IncEmailSend increments the provider send counter.
func IncEmailSend(provider, result string) {
	emailSendsTotal.WithLabelValues(orUnknown(provider), orUnknown(result)).Inc()
}

// IncEmailStats increments the stats write counter.
func IncEmailStats(result string) {
	emailStatsWrittenTotal.WithLabelValues(orUnknown(result)).Inc()
}

// SetSendRate records the trailing-minute dispatch rate of a tenant.
func SetSendRate(tenantID string, perMinute int64) {
	sendRatePerMinute.WithLabelValues(orUnknown(tenantID)).Set(float64(perMinute))
}

// ClearSendRate drops the send-rate series of a tenant that stopped sending.
func ClearSendRate(tenantID string) {
	sendRatePerMinute.DeleteLabelValues(orUnknown(tenantID))
}

// AddImportedRecords adds n records imported from a file of the given format (csv | xlsx).
func AddImportedRecords(format string, n int64) {
	importedRecordsTotal.WithLabelValues(orUnknown(format)).Add(float64(n))
}

// IncWebhookEvent increments the webhook counter.
func IncWebhookEvent(typ, result string) {
	switch typ {
	case "Notification", "SubscriptionConfirmation":
	default:
		typ = "other"
	}
	webhookEventsTotal.WithLabelValues(typ, orUnknown(result)).Inc()
}
