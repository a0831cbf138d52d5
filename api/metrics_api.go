package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "battleship"

type Metrics struct {
	GamesCreated    prometheus.Counter
	GamesFinished   *prometheus.CounterVec
	Shots           *prometheus.CounterVec
	RejectedActions *prometheus.CounterVec
	ActiveSessions  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "games_created_total",
			Help:      "Number of solo games created.",
		}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "games_finished_total",
			Help:      "Number of games that reached game over, by winner.",
		}, []string{"winner"}),
		Shots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "shots_total",
			Help:      "Resolved shots by attacking side and outcome.",
		}, []string{"attacker", "outcome"}),
		RejectedActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rejected_actions_total",
			Help:      "Actions refused by the engine, by action.",
		}, []string{"action"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "active_sessions",
			Help:      "Open websocket sessions.",
		}),
	}

	reg.MustRegister(m.GamesCreated, m.GamesFinished, m.Shots, m.RejectedActions, m.ActiveSessions)
	return m
}
