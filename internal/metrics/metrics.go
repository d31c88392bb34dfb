package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "messagely_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "messagely_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "messagely_logins_total",
		Help: "Login attempts by outcome",
	}, []string{"outcome"})
	RegistrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messagely_registrations_total",
		Help: "Successfully registered users",
	})
	MessagesSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messagely_messages_sent_total",
		Help: "Messages created",
	})
	MessagesReadTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "messagely_messages_read_total",
		Help: "Mark-read requests accepted",
	})
	AuthorizationDenials = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "messagely_authorization_denials_total",
		Help: "Requests rejected by an ownership or token check",
	}, []string{"check"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		LoginsTotal,
		RegistrationsTotal,
		MessagesSentTotal,
		MessagesReadTotal,
		AuthorizationDenials,
	)
}
