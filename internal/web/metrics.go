package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	callbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildgate_callback_total",
			Help: "OAuth callback requests by outcome.",
		},
		[]string{"outcome"},
	)

	syncResultTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildgate_sync_result_total",
			Help: "Membership sync per-member results by kind.",
		},
		[]string{"result"},
	)
)
