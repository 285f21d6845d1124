package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	IntakeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_intake_total",
			Help: "Public form submissions by table and outcome",
		},
		[]string{"table", "outcome"}, // booking_requests|contact_messages , accepted|invalid|failed|duplicate
	)

	RecordStoreRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_record_store_requests_total",
			Help: "Record store calls by table, operation and result",
		},
		[]string{"table", "op", "result"}, // insert|list|patch|delete , ok|error|breaker_open
	)

	AdminActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_admin_actions_total",
			Help: "Admin dashboard actions by kind and result",
		},
		[]string{"action", "result"},
	)

	AlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_staff_alerts_total",
			Help: "Staff alerts by table and result",
		},
		[]string{"table", "result"}, // sent|failed|duplicate|invalid
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		IntakeTotal,
		RecordStoreRequests,
		AdminActions,
		AlertsTotal,
	)
}
