package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

// Metrics contains the game engine counters.
type Metrics struct {
	GamesCreated  prometheus.Counter
	MovesTotal    *prometheus.CounterVec
	GamesFinished *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the counters on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	return NewMetricsWith(registry, registry)
}

// NewMetricsWith creates the counters and registers them with reg.
func NewMetricsWith(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		GamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tictactoe_games_created_total",
			Help: "Total number of games created",
		}),
		MovesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tictactoe_moves_total",
				Help: "Total number of moves by result",
			},
			[]string{"result"},
		),
		GamesFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tictactoe_games_finished_total",
				Help: "Total number of finished games by outcome",
			},
			[]string{"outcome"},
		),
		gatherer: gatherer,
	}

	reg.MustRegister(m.GamesCreated, m.MovesTotal, m.GamesFinished)

	return m
}

func (that *Metrics) GameCreated() {
	that.GamesCreated.Inc()
}

func (that *Metrics) MoveRecorded(result string) {
	that.MovesTotal.WithLabelValues(result).Inc()
}

// GameFinished counts by outcome: "winner" or "draw".
func (that *Metrics) GameFinished(state entity.GameState) {
	that.GamesFinished.WithLabelValues(string(state.Status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (that *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(that.gatherer, promhttp.HandlerOpts{})
}
