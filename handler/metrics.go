package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	issueCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenlink",
		Name:      "tokens_issued_total",
		Help:      "Issue endpoint calls by result.",
	}, []string{"result"})

	redeemCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tokenlink",
		Name:      "redemptions_total",
		Help:      "Validate endpoint calls by result.",
	}, []string{"result"})
)
