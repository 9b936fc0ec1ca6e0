package metrics

import (
	"testing"

	"nars-kernel/internal/event"

	"github.com/stretchr/testify/assert"
)

func TestCollector_SubscribeAndRecord(t *testing.T) {
	bus := event.New()
	c := NewCollector()
	c.Subscribe(bus, "test-collector")

	bus.Publish(event.Event{Kind: event.CycleComplete})
	bus.Publish(event.Event{Kind: event.CycleComplete})
	bus.Publish(event.Event{Kind: event.Derivation})
	bus.Publish(event.Event{Kind: event.ConceptEvicted})

	snap := c.Snapshot()
	assert.EqualValues(t, 2, snap["cycles_run"])
	assert.EqualValues(t, 1, snap["derivations_made"])
	assert.EqualValues(t, 1, snap["concepts_evicted"])
}

func TestCollector_DerivationRate(t *testing.T) {
	bus := event.New()
	c := NewCollector()
	c.Subscribe(bus, "test-collector")

	assert.Zero(t, c.DerivationRate())

	bus.Publish(event.Event{Kind: event.CycleComplete})
	bus.Publish(event.Event{Kind: event.CycleComplete})
	bus.Publish(event.Event{Kind: event.Derivation})
	bus.Publish(event.Event{Kind: event.Derivation})
	bus.Publish(event.Event{Kind: event.Derivation})

	assert.InDelta(t, 1.5, c.DerivationRate(), 0.0001)
}
