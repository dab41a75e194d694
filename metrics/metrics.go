// Package metrics exports the engine's Prometheus instrumentation,
// following the same package-level-vars-registered-in-init pattern the
// domain stack uses elsewhere.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FillsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "execsim_fills_total",
			Help: "Total number of fills produced, by order kind.",
		},
		[]string{"kind"},
	)

	OrdersPendingTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "execsim_orders_pending_total",
			Help: "Total number of orders returned pending (not filled on the bar they were evaluated against), by order kind.",
		},
		[]string{"kind"},
	)

	TrailingTriggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "execsim_trailing_triggers_total",
			Help: "Total number of trailing-stop triggers, by action (BUY/SELL).",
		},
		[]string{"action"},
	)

	TrailingStopPriceGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "execsim_trailing_stop_price",
			Help: "Current live stop price of a trailing-stop order, keyed by order id.",
		},
		[]string{"order_id"},
	)
)

func init() {
	prometheus.MustRegister(FillsTotal, OrdersPendingTotal, TrailingTriggersTotal, TrailingStopPriceGauge)
}
