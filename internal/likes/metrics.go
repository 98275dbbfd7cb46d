package likes

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var togglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "posts_like_toggles_total",
	Help: "Number of committed like toggles by resulting action",
}, []string{"action"})

var toggleErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "posts_like_toggle_errors_total",
	Help: "Number of like toggles that failed",
})

var notifyErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "posts_like_notification_errors_total",
	Help: "Number of like notifications that could not be sent",
})
