package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaigngw_dispatch_total",
			Help: "Recipient dispatch outcomes by result and country",
		},
		[]string{"result", "country"}, // sent|retry|failed|oversize , CA|AU|NZ
	)

	CampaignTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaigngw_campaign_transitions_total",
			Help: "Campaign status transitions applied by the worker",
		},
		[]string{"status"},
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		DispatchTotal,
		CampaignTransitions,
	)
}
