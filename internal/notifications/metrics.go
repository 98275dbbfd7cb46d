package notifications

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var pushesSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "posts_push_notifications_sent_total",
	Help: "Number of push notifications accepted by FCM, by notification type",
}, []string{"type"})

var pushErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "posts_push_notification_errors_total",
	Help: "Number of failed FCM requests, by notification type",
}, []string{"type"})
