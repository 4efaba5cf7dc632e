package metrics

import (
	"testing"

	"github.com/milk9111/nightshade/fsm"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFSMObserver(t *testing.T) {
	obs := FSMObserver{}
	c := transitions.WithLabelValues("player", "Idle", "Walk")
	before := testutil.ToFloat64(c)

	obs.StateChanged(fsm.Change{Kind: "player", From: "Idle", To: "Walk"})
	obs.StateChanged(fsm.Change{Kind: "player", From: "Idle", To: "Walk"})
	assert.Equal(t, before+2, testutil.ToFloat64(c))

	obs.StateChanged(fsm.Change{Kind: "npc", To: "Idle"})
	assert.Equal(t, 1.0, testutil.ToFloat64(transitions.WithLabelValues("npc", "none", "Idle")))

	d := disabledNoops.WithLabelValues("npc", "Chase")
	before = testutil.ToFloat64(d)
	obs.DisabledTarget(fsm.Change{Kind: "npc", From: "Idle", To: "Chase"})
	assert.Equal(t, before+1, testutil.ToFloat64(d))
}

func TestCountersAndGauges(t *testing.T) {
	before := testutil.ToFloat64(sceneTicks)
	Tick()
	Tick()
	assert.Equal(t, before+2, testutil.ToFloat64(sceneTicks))

	before = testutil.ToFloat64(playerDeathEdges)
	PlayerDeathEdge()
	assert.Equal(t, before+1, testutil.ToFloat64(playerDeathEdges))

	WaypointsReserved("cellar", 3)
	WaypointsReserved("cellar", 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(waypointsReserved.WithLabelValues("cellar")))
}
