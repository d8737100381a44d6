// internal/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nft_market"

// Collector owns the marketplace prometheus collectors and their registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	rpcRequests  *prometheus.CounterVec
	rpcLatency   *prometheus.HistogramVec
	transactions *prometheus.CounterVec
	txDuration   *prometheus.HistogramVec
	listings     prometheus.Gauge
}

// NewCollector creates the collectors on a private registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rpc",
				Name:      "requests_total",
				Help:      "Total number of RPC requests by method and outcome.",
			},
			[]string{"method", "status"},
		),
		rpcLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "rpc",
				Name:      "request_duration_seconds",
				Help:      "Duration of RPC requests.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
			},
			[]string{"method"},
		),
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tx",
				Name:      "total",
				Help:      "Marketplace transactions by kind (buy, withdraw) and outcome.",
			},
			[]string{"kind", "status"},
		),
		txDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "tx",
				Name:      "duration_seconds",
				Help:      "Time from building a transaction to its confirmation.",
				Buckets:   prometheus.LinearBuckets(0.5, 2, 16),
			},
			[]string{"kind"},
		),
		listings: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "directory",
				Name:      "active_listings",
				Help:      "Number of listings returned by the last directory scan.",
			},
		),
	}

	c.registry.MustRegister(c.rpcRequests, c.rpcLatency, c.transactions, c.txDuration, c.listings)
	return c
}

// Registry exposes the underlying registry for gathering.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveRPC records one RPC call.
func (c *Collector) ObserveRPC(method string, start time.Time, err error) {
	if c == nil {
		return
	}
	c.rpcRequests.WithLabelValues(method, status(err)).Inc()
	c.rpcLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

// ObserveTransaction records the outcome of a buy or withdraw.
func (c *Collector) ObserveTransaction(kind string, start time.Time, err error) {
	if c == nil {
		return
	}
	c.transactions.WithLabelValues(kind, status(err)).Inc()
	c.txDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// SetActiveListings records the size of the last directory scan.
func (c *Collector) SetActiveListings(n int) {
	if c == nil {
		return
	}
	c.listings.Set(float64(n))
}

// WriteTextfile dumps all metrics in the node_exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, c.registry)
}

func status(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}
