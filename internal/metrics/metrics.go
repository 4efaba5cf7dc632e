// Package metrics holds the Prometheus collectors of the simulation.
package metrics

import (
	"github.com/milk9111/nightshade/fsm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nightshade",
			Subsystem: "fsm",
			Name:      "transitions_total",
			Help:      "State changes performed by machines",
		},
		[]string{"machine_kind", "from", "to"},
	)

	disabledNoops = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nightshade",
			Subsystem: "fsm",
			Name:      "disabled_noop_total",
			Help:      "State changes dropped because the target state is disabled",
		},
		[]string{"machine_kind", "target"},
	)

	playerDeathEdges = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nightshade",
			Subsystem: "ai",
			Name:      "player_death_edges_total",
			Help:      "Player death edges dispatched to NPC states",
		},
	)

	sceneTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nightshade",
			Subsystem: "scene",
			Name:      "ticks_total",
			Help:      "Simulation ticks run",
		},
	)

	waypointsReserved = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "nightshade",
			Name:      "waypoints_reserved",
			Help:      "Waypoints currently reserved, by group",
		},
		[]string{"group"},
	)
)

// FSMObserver feeds machine state changes into the counters.
type FSMObserver struct{}

var _ fsm.Observer = FSMObserver{}

func (FSMObserver) StateChanged(c fsm.Change) {
	from := string(c.From)
	if from == "" {
		from = "none"
	}
	transitions.WithLabelValues(c.Kind, from, string(c.To)).Inc()
}

func (FSMObserver) DisabledTarget(c fsm.Change) {
	disabledNoops.WithLabelValues(c.Kind, string(c.To)).Inc()
}

// PlayerDeathEdge records one death edge delivered to an NPC machine.
func PlayerDeathEdge() {
	playerDeathEdges.Inc()
}

// Tick records a simulation tick.
func Tick() {
	sceneTicks.Inc()
}

// WaypointsReserved sets the reserved gauge of group.
func WaypointsReserved(group string, reserved int) {
	waypointsReserved.WithLabelValues(group).Set(float64(reserved))
}
