// Package metrics exposes Prometheus instrumentation for the game server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the instrument set for the game server.
type Metrics struct {
	registry *prometheus.Registry

	RoomsCreated  prometheus.Counter
	PlayersJoined prometheus.Counter
	VotesCast     prometheus.Counter
	GamesFinished prometheus.Counter

	RequestDuration *prometheus.HistogramVec
}

// New creates a Metrics set on a fresh registry, including the standard Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		RoomsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "impostor_rooms_created_total",
			Help: "Number of rooms created.",
		}),
		PlayersJoined: factory.NewCounter(prometheus.CounterOpts{
			Name: "impostor_players_joined_total",
			Help: "Number of players who joined a room.",
		}),
		VotesCast: factory.NewCounter(prometheus.CounterOpts{
			Name: "impostor_votes_cast_total",
			Help: "Number of votes accepted.",
		}),
		GamesFinished: factory.NewCounter(prometheus.CounterOpts{
			Name: "impostor_games_finished_total",
			Help: "Number of games that reached the finished state.",
		}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "impostor_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "code"}),
	}
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
