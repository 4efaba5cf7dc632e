package ai

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/nightshade/nav"
	"github.com/milk9111/nightshade/physics"
)

var inf = math.Inf(1)

const (
	defaultSightDistance = 12.0
	defaultLatchMargin   = 0.5
)

// SeesTarget reports whether target is within maxDistance of eyes and nothing
// on mask blocks the segment between them. A nil world never blocks.
func SeesTarget(world *physics.World, eyes, target cp.Vector, maxDistance float64, mask physics.Layer) bool {
	if eyes.Distance(target) > maxDistance {
		return false
	}
	if world == nil {
		return true
	}
	return world.LineOfSight(eyes, target, mask)
}

// InFieldOfView reports whether target lies within fovDegrees/2 of facing,
// seen from from.
func InFieldOfView(facing, from, target cp.Vector, fovDegrees float64) bool {
	dir := target.Sub(from)
	if dir.LengthSq() < 1e-12 {
		return true
	}
	if facing.LengthSq() < 1e-12 {
		return false
	}
	cos := facing.Normalize().Dot(dir.Normalize())
	cos = math.Max(-1, math.Min(1, cos))
	angle := math.Acos(cos) * 180 / math.Pi
	return angle <= fovDegrees/2
}

// PathLatch is a one-shot "path completed" signal. It fires once when the
// remaining distance first drops to the stopping distance and re-arms only
// after the agent is more than Margin beyond it again.
type PathLatch struct {
	Margin float64
	fired  bool
}

func NewPathLatch(margin float64) *PathLatch {
	if margin < 0 {
		margin = defaultLatchMargin
	}
	return &PathLatch{Margin: margin}
}

// Completed samples agent and reports the completion edge.
func (l *PathLatch) Completed(agent nav.Agent) bool {
	if agent == nil || agent.PathPending() {
		return false
	}
	remaining := agent.RemainingDistance()
	stopping := agent.StoppingDistance()
	if remaining <= stopping {
		if l.fired {
			return false
		}
		l.fired = true
		return true
	}
	if remaining > stopping+l.Margin {
		l.fired = false
	}
	return false
}

// unreachable reports a resolved path request that found no path.
func unreachable(agent nav.Agent) bool {
	return agent != nil && !agent.PathPending() && math.IsInf(agent.RemainingDistance(), 1)
}

// Fired reports whether the latch is holding.
func (l *PathLatch) Fired() bool {
	return l.fired
}

func (l *PathLatch) Reset() {
	l.fired = false
}
