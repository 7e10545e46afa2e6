// Package metrics exposes pipeline counters over Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tradecycle_cycles_total", Help: "Completed decision cycles"},
		[]string{"symbol", "outcome"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tradecycle_signals_total", Help: "Signals generated"},
		[]string{"symbol", "action"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tradecycle_orders_total", Help: "Orders accepted by the broker"},
		[]string{"symbol", "side"},
	)
	StageErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tradecycle_stage_errors_total", Help: "Fatal stage errors"},
		[]string{"stage"},
	)
)

func init() {
	prometheus.MustRegister(CyclesTotal, SignalsTotal, OrdersTotal, StageErrorsTotal)
}

// Serve starts the /metrics endpoint in the background. A batch run
// exits before scrape intervals matter, so this is only useful under an
// external scheduler; pass an empty addr to skip it.
func Serve(addr string) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
