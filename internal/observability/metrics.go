package observability

import (
	"io"
	"net/http"
	"strings"
	"time"
)

// Metrics is a Prometheus text-format registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	apiRequests    *CounterVec
	apiLatency     *HistogramVec
	apiInflight    *Gauge
	flowEvents     *CounterVec
	booksPublished *CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("ehon_api_requests_total", "HTTP requests by route and status.",
			[]string{"method", "route", "status"}),
		apiLatency: NewHistogramVec("ehon_api_request_duration_seconds", "HTTP request latency.",
			[]string{"method", "route"}, nil),
		apiInflight: NewGauge("ehon_api_inflight_requests", "HTTP requests in flight."),
		flowEvents: NewCounterVec("ehon_flow_events_total", "Session events by type and outcome.",
			[]string{"event", "outcome"}),
		booksPublished: NewCounterVec("ehon_books_published_total", "Storybooks generated and stored.", nil),
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	method = strings.ToUpper(method)
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveFlowEvent records one event outcome: ok, warning, error or rejected.
func (m *Metrics) ObserveFlowEvent(event, outcome string) {
	if m == nil {
		return
	}
	m.flowEvents.Inc(event, outcome)
}

func (m *Metrics) IncBookPublished() {
	if m == nil {
		return
	}
	m.booksPublished.Inc()
}

func (m *Metrics) FlowEventCount(event, outcome string) float64 {
	if m == nil {
		return 0
	}
	return m.flowEvents.Value(event, outcome)
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight, m.flowEvents, m.booksPublished,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}
