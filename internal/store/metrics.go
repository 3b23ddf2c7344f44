package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Cart mutations applied, by operation",
		},
		[]string{"op"},
	)

	cartLines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_cart_lines",
			Help: "Number of distinct lines currently in the cart",
		},
	)

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_logins_total",
			Help: "Login attempts, by result",
		},
		[]string{"result"},
	)

	persistFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_persist_failures_total",
			Help: "Storage writes that failed and were ignored, by store",
		},
		[]string{"store"},
	)
)
