// Package metrics collects counters over reasoning-cycle activity by
// subscribing to the kernel's event bus. Grounded on the teacher's
// collector.go (a Collector type recording named measurements) merged with
// the atomic-counter style of its probabilistic.go, since cycle metrics are
// simple monotonic counts rather than timestamped samples with targets.
package metrics

import (
	"sync/atomic"

	"nars-kernel/internal/event"
)

// Collector tracks cumulative counts of reasoning-cycle activity.
type Collector struct {
	cyclesRun       atomic.Int64
	tasksProcessed  atomic.Int64
	derivationsMade atomic.Int64
	conceptsCreated atomic.Int64
	conceptsEvicted atomic.Int64
	ruleFaults      atomic.Int64
	beliefsAdded    atomic.Int64
	goalsAdded      atomic.Int64
	questionsAdded  atomic.Int64
}

// NewCollector creates an unattached Collector. Call Subscribe to start
// recording from a live event.Bus.
func NewCollector() *Collector {
	return &Collector{}
}

// Subscribe registers the collector's handlers on bus under the given
// subscriber name.
func (c *Collector) Subscribe(bus *event.Bus, name string) {
	bus.Subscribe(event.CycleComplete, name, func(event.Event) { c.cyclesRun.Add(1) })
	bus.Subscribe(event.TaskProcessed, name, func(event.Event) { c.tasksProcessed.Add(1) })
	bus.Subscribe(event.Derivation, name, func(event.Event) { c.derivationsMade.Add(1) })
	bus.Subscribe(event.ConceptCreated, name, func(event.Event) { c.conceptsCreated.Add(1) })
	bus.Subscribe(event.ConceptEvicted, name, func(event.Event) { c.conceptsEvicted.Add(1) })
	bus.Subscribe(event.ErrorRaised, name, func(event.Event) { c.ruleFaults.Add(1) })
	bus.Subscribe(event.BeliefAdded, name, func(event.Event) { c.beliefsAdded.Add(1) })
	bus.Subscribe(event.GoalAdded, name, func(event.Event) { c.goalsAdded.Add(1) })
	bus.Subscribe(event.QuestionAdded, name, func(event.Event) { c.questionsAdded.Add(1) })
}

// Snapshot returns the current counter values.
func (c *Collector) Snapshot() map[string]int64 {
	return map[string]int64{
		"cycles_run":       c.cyclesRun.Load(),
		"tasks_processed":  c.tasksProcessed.Load(),
		"derivations_made": c.derivationsMade.Load(),
		"concepts_created": c.conceptsCreated.Load(),
		"concepts_evicted": c.conceptsEvicted.Load(),
		"rule_faults":      c.ruleFaults.Load(),
		"beliefs_added":    c.beliefsAdded.Load(),
		"goals_added":      c.goalsAdded.Load(),
		"questions_added":  c.questionsAdded.Load(),
	}
}

// DerivationRate returns derivations produced per cycle run, 0 if no cycles
// have run yet.
func (c *Collector) DerivationRate() float64 {
	cycles := c.cyclesRun.Load()
	if cycles == 0 {
		return 0
	}
	return float64(c.derivationsMade.Load()) / float64(cycles)
}
