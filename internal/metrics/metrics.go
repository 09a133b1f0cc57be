// Package metrics wires odin-tdcore's Prometheus collectors, following
// go-server-3/internal/metrics/metrics.go's Registry pattern.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"odin-tdcore/internal/dispatch"
)

// Registry wraps every Prometheus collector odin-tdcore exposes: dispatch
// pool gauges and client lifecycle counters realizing spec §5's
// "Net-query-stats" shared metric aggregator, plus OMI operation counters.
type Registry struct {
	Dispatch dispatchGauges
	OMI      omiCounters
}

type dispatchGauges struct {
	PoolWorkers    prometheus.Gauge
	SessionsTotal  prometheus.Gauge
	HighWatermark  prometheus.Gauge
	ClientsCreated prometheus.Counter
	ClientsClosed  prometheus.Counter
	InvalidSends   prometheus.Counter
}

type omiCounters struct {
	Inserts    prometheus.Counter
	Erases     prometheus.Counter
	Attaches   prometheus.Counter
	RangeScans prometheus.Counter
}

// NewRegistry creates and registers every collector.
func NewRegistry() *Registry {
	return &Registry{
		Dispatch: dispatchGauges{
			PoolWorkers: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "odin_tdcore_pool_workers",
				Help: "Number of worker goroutines in the dispatch pool",
			}),
			SessionsTotal: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "odin_tdcore_sessions_total",
				Help: "Total number of live client sessions across all workers",
			}),
			HighWatermark: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "odin_tdcore_worker_high_watermark",
				Help: "Highest session count observed on any single worker",
			}),
			ClientsCreated: promauto.NewCounter(prometheus.CounterOpts{
				Name: "odin_tdcore_clients_created_total",
				Help: "Total number of clients created",
			}),
			ClientsClosed: promauto.NewCounter(prometheus.CounterOpts{
				Name: "odin_tdcore_clients_closed_total",
				Help: "Total number of clients that reached their termination sentinel",
			}),
			InvalidSends: promauto.NewCounter(prometheus.CounterOpts{
				Name: "odin_tdcore_invalid_sends_total",
				Help: "Total number of Send calls synthesizing an invalid-client response",
			}),
		},
		OMI: omiCounters{
			Inserts: promauto.NewCounter(prometheus.CounterOpts{
				Name: "odin_tdcore_omi_inserts_total",
				Help: "Total number of messages inserted into an ordered message index",
			}),
			Erases: promauto.NewCounter(prometheus.CounterOpts{
				Name: "odin_tdcore_omi_erases_total",
				Help: "Total number of messages erased from an ordered message index",
			}),
			Attaches: promauto.NewCounter(prometheus.CounterOpts{
				Name: "odin_tdcore_omi_attaches_total",
				Help: "Total number of adjacency attach operations performed",
			}),
			RangeScans: promauto.NewCounter(prometheus.CounterOpts{
				Name: "odin_tdcore_omi_range_scans_total",
				Help: "Total number of range/traverse queries performed",
			}),
		},
	}
}

// Publisher returns a dispatch.Publisher that drives the client
// lifecycle counters from Dispatcher events, so Registry can sit
// alongside (or stand in for) the NATS eventbus.Publisher behind
// dispatch.Publishers.
func (r *Registry) Publisher() dispatch.Publisher {
	return registryPublisher{r}
}

type registryPublisher struct {
	r *Registry
}

func (p registryPublisher) PublishClientCreated(dispatch.ClientID) {
	p.r.Dispatch.ClientsCreated.Inc()
}

func (p registryPublisher) PublishClientTerminated(dispatch.ClientID) {
	p.r.Dispatch.ClientsClosed.Inc()
}

func (p registryPublisher) PublishInvalidSend(dispatch.ClientID) {
	p.r.Dispatch.InvalidSends.Inc()
}

// Handler returns an HTTP handler exposing Prometheus metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePool updates the dispatch gauges from a point-in-time snapshot.
func (r *Registry) ObservePool(workers int, sessions, highWatermark int32) {
	r.Dispatch.PoolWorkers.Set(float64(workers))
	r.Dispatch.SessionsTotal.Set(float64(sessions))
	r.Dispatch.HighWatermark.Set(float64(highWatermark))
}
