package reporter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const ROUTE_METRICS = "/metrics"

type ClaimRejectedReason string

var (
	ClaimBadRequest       ClaimRejectedReason = "bad_request"
	ClaimInvalidSignature ClaimRejectedReason = "invalid_signature"
	ClaimNotFound         ClaimRejectedReason = "no_claim"
	ClaimHalted           ClaimRejectedReason = "halted"
	ClaimRejectedUnknown  ClaimRejectedReason = "other"
)

type claimsPromMetrics struct {
	settledClaimCount  prometheus.Counter
	rejectedClaimCount *prometheus.CounterVec
}

func newClaimsPromMetrics() *claimsPromMetrics {
	return &claimsPromMetrics{
		settledClaimCount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "claims_settled_count",
				Help: "The total number of claims settled over http",
			},
		),
		rejectedClaimCount: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "claims_rejected_count",
				Help: "The total number of rejected claim requests",
			},
			[]string{"reason"},
		),
	}
}

var metrics = newClaimsPromMetrics()

func recordClaimSettled() {
	metrics.settledClaimCount.Inc()
}

func recordClaimRejected(reason ClaimRejectedReason) {
	metrics.rejectedClaimCount.WithLabelValues(string(reason)).Inc()
}
