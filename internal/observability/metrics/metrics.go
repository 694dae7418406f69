package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/leadcapture-api/internal/leads"
)

// LeadMetrics exposes counters/histograms for lead capture flows.
type LeadMetrics struct {
	submissionsTotal *prometheus.CounterVec
	adminOpsTotal    *prometheus.CounterVec
	requestLatency   *prometheus.HistogramVec
}

var _ leads.Observer = (*LeadMetrics)(nil)

func NewLeadMetrics(reg prometheus.Registerer) *LeadMetrics {
	m := &LeadMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadcapture",
			Subsystem: "leads",
			Name:      "submissions_total",
			Help:      "Lead submissions by type and outcome",
		}, []string{"type", "outcome"}),
		adminOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadcapture",
			Subsystem: "leads",
			Name:      "admin_operations_total",
			Help:      "Admin list/clear operations by outcome",
		}, []string{"op", "outcome"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadcapture",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.adminOpsTotal, m.requestLatency)
	return m
}

func (m *LeadMetrics) ObserveSubmission(kind leads.LeadType, outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(string(kind), outcome).Inc()
}

func (m *LeadMetrics) ObserveAdmin(op, outcome string) {
	if m == nil {
		return
	}
	m.adminOpsTotal.WithLabelValues(op, outcome).Inc()
}

// Middleware records request latency labelled by the matched chi route.
func (m *LeadMetrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestLatency.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
