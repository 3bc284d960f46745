// monitor/monitor.go
package monitor

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	LobbyPlayers     *prometheus.GaugeVec
	ActiveLobbies    prometheus.Gauge
	MatchesStarted   prometheus.Counter
	MatchesAborted   prometheus.Counter
	StartFailures    prometheus.Counter
	CommandsExecuted *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		LobbyPlayers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lobby_players",
			Help:      "Number of players in a lobby",
		}, []string{"lobby_id", "lobby_name"}),
		ActiveLobbies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_lobbies",
			Help:      "Number of managed lobbies",
		}),
		MatchesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_started_total",
			Help:      "Total number of matches started",
		}),
		MatchesAborted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_aborted_total",
			Help:      "Total number of matches aborted as invalid",
		}),
		StartFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "start_failures_total",
			Help:      "Total number of exhausted match start attempts",
		}),
		CommandsExecuted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_executed_total",
			Help:      "Total number of chat commands executed",
		}, []string{"command"}),
	}

	prometheus.MustRegister(
		m.LobbyPlayers,
		m.ActiveLobbies,
		m.MatchesStarted,
		m.MatchesAborted,
		m.StartFailures,
		m.CommandsExecuted,
	)

	return m
}

// Monitor implements the metric sinks of the lobby and commands
// packages. Safe for concurrent use from every lobby.
type Monitor struct {
	metrics *Metrics
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics: NewMetrics(namespace),
	}
}

func (m *Monitor) SetLobbyPlayers(lobbyID int64, name string, count int) {
	m.metrics.LobbyPlayers.WithLabelValues(fmt.Sprint(lobbyID), name).Set(float64(count))
}

func (m *Monitor) SetActiveLobbies(count int) {
	m.metrics.ActiveLobbies.Set(float64(count))
}

func (m *Monitor) MatchStarted() {
	m.metrics.MatchesStarted.Inc()
}

func (m *Monitor) MatchAborted() {
	m.metrics.MatchesAborted.Inc()
}

func (m *Monitor) StartFailed() {
	m.metrics.StartFailures.Inc()
}

func (m *Monitor) CommandExecuted(name string) {
	m.metrics.CommandsExecuted.WithLabelValues(name).Inc()
}
