package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var moderationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "posts_moderation_outcomes_total",
	Help: "Number of moderated posts by outcome (clean, redacted, duplicate, error)",
}, []string{"outcome"})

var moderatedFieldCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "posts_moderation_redacted_fields_total",
	Help: "Number of post fields rewritten by moderation",
})

var moderationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "posts_moderation_duration_sec",
	Help: "Duration of post moderation",
})
