package client

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts upstream traffic. Create it once per process and share it
// between clients.
type Metrics struct {
	requests *prometheus.CounterVec
	refresh  *prometheus.CounterVec
}

// Refresh outcomes.
const (
	RefreshSuccess = "success"
	RefreshFailure = "failure"
	RefreshShared  = "shared"
	RefreshSkipped = "skipped"
)

// NewMetrics registers the client counters with reg. Counters that are
// already registered are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eduportal",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Upstream API requests by method and status code.",
	}, []string{"method", "code"})
	refresh := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eduportal",
		Subsystem: "client",
		Name:      "refresh_total",
		Help:      "Access token refresh attempts by outcome.",
	}, []string{"outcome"})

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if refresh, err = register(reg, refresh); err != nil {
		return nil, err
	}
	return &Metrics{requests: requests, refresh: refresh}, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func (m *Metrics) observeRequest(method string, code int) {
	if m == nil {
		return
	}
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	m.requests.WithLabelValues(method, label).Inc()
}

func (m *Metrics) observeRefresh(outcome string) {
	if m == nil {
		return
	}
	m.refresh.WithLabelValues(outcome).Inc()
}
