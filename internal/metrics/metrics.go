// Package metrics holds the prometheus collectors for the petcare domain.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "petcare"

// Registry is private to the process so tests can build many apps without
// tripping duplicate registration in the default registry.
var Registry = prometheus.NewRegistry()

var (
	OrdersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "marketplace",
		Name:      "orders_total",
		Help:      "Marketplace orders created.",
	})
	StockConflicts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_conflicts_total",
		Help:      "Conditional stock updates that affected no rows.",
	}, []string{"kind"})
	BoardingReservations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "boarding",
		Name:      "reservations_total",
		Help:      "Boarding reservations created.",
	})
	DaycareCheckIns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "daycare",
		Name:      "checkins_total",
		Help:      "Daycare check-ins by result.",
	}, []string{"result"})
	CashRegisterCloses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "finance",
		Name:      "cash_register_closes_total",
		Help:      "Cash registers closed.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		OrdersCreated,
		StockConflicts,
		BoardingReservations,
		DaycareCheckIns,
		CashRegisterCloses,
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
