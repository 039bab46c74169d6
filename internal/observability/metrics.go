package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by route, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helpdesk_http_requests_total",
		Help: "Handled HTTP requests.",
	}, []string{"path", "method", "status"})

	// HTTPDuration observes request latency by route and method.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "helpdesk_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method"})

	// HTTPErrors counts requests rejected with a domain error code.
	HTTPErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helpdesk_http_errors_total",
		Help: "Requests that ended in a domain error.",
	}, []string{"path", "method", "code"})

	// TicketTransitions counts committed status changes by edge.
	TicketTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "helpdesk_ticket_transitions_total",
		Help: "Committed ticket status transitions.",
	}, []string{"from", "to"})

	// AdmissionRejections counts workload-cap denials.
	AdmissionRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "helpdesk_admission_rejections_total",
		Help: "Assignments rejected by the technician workload cap.",
	})
)
