// Package bag implements the bounded, priority-probabilistic container used
// to hold beliefs, tasks and concepts throughout the kernel.
//
// Adapted from the teacher's generic LRU cache (pkg/cache/lru.go): same
// doubly-linked-list-plus-map shape and RWMutex discipline, extended with
// priority-weighted sampling and a pluggable eviction Policy, per spec.md
// §4.5.
package bag

import (
	"math/rand"
	"sync"

	"golang.org/x/exp/slices"
)

// Item is anything a Bag can hold: content-addressed by Key, ranked by
// Priority.
type Item interface {
	Key() string
	Priority() float64
}

// Policy selects which item is evicted when a Bag at capacity receives a
// new item.
type Policy int

const (
	// PolicyPriority evicts the item with the lowest priority.
	PolicyPriority Policy = iota
	// PolicyLRU evicts the least-recently-accessed item.
	PolicyLRU
	// PolicyFIFO evicts the oldest-inserted item regardless of access.
	PolicyFIFO
	// PolicyRandom evicts a uniformly random item.
	PolicyRandom
)

type node[T Item] struct {
	item T
	prev *node[T]
	next *node[T]
}

// Bag is a bounded container of items, each associated with a priority.
// Safe for concurrent use.
type Bag[T Item] struct {
	mu sync.RWMutex

	items map[string]*node[T]
	head  *node[T] // most recently touched
	tail  *node[T] // least recently touched

	maxSize int
	policy  Policy
	rng     *rand.Rand

	evictions int64
}

// New creates an empty Bag bounded by maxSize and evicting per policy.
func New[T Item](maxSize int, policy Policy) *Bag[T] {
	return &Bag[T]{
		items:   make(map[string]*node[T]),
		maxSize: maxSize,
		policy:  policy,
		rng:     rand.New(rand.NewSource(1)),
	}
}

// Len returns the current number of items.
func (b *Bag[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

// Contains reports whether key is present.
func (b *Bag[T]) Contains(key string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.items[key]
	return ok
}

// Add inserts item by its content key. Returns false without modifying the
// Bag if the key is already present. If the Bag is at capacity, first
// evicts one item per the configured Policy. Postcondition: size <= maxSize.
func (b *Bag[T]) Add(item T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := item.Key()
	if _, exists := b.items[key]; exists {
		return false
	}

	if b.maxSize > 0 && len(b.items) >= b.maxSize {
		b.evictLocked()
	}

	n := &node[T]{item: item}
	b.items[key] = n
	b.pushFrontLocked(n)
	return true
}

// Remove deletes the item with the given key, if present.
func (b *Bag[T]) Remove(key string) (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, ok := b.items[key]
	if !ok {
		var zero T
		return zero, false
	}
	b.unlinkLocked(n)
	delete(b.items, key)
	return n.item, true
}

// Peek returns the highest-priority item without removing it.
func (b *Bag[T]) Peek() (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bestLocked()
}

func (b *Bag[T]) bestLocked() (T, bool) {
	var best T
	var found bool
	var bestPriority float64
	for _, n := range b.items {
		if !found || n.item.Priority() > bestPriority {
			best = n.item
			bestPriority = n.item.Priority()
			found = true
		}
	}
	return best, found
}

// Sample draws an item with probability proportional to its priority. If
// every item has priority 0, sampling falls back to uniform. Returns false
// for an empty Bag. On hit, the item is marked accessed for LRU bookkeeping.
func (b *Bag[T]) Sample() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var zero T
	if len(b.items) == 0 {
		return zero, false
	}

	total := 0.0
	for _, n := range b.items {
		total += n.item.Priority()
	}

	target := b.rng.Float64() * total
	if total <= 0 {
		// Uniform fallback: pick the k-th item in (unordered) map iteration.
		k := b.rng.Intn(len(b.items))
		i := 0
		for _, n := range b.items {
			if i == k {
				b.touchLocked(n)
				return n.item, true
			}
			i++
		}
	}

	acc := 0.0
	for _, n := range b.items {
		acc += n.item.Priority()
		if acc >= target {
			b.touchLocked(n)
			return n.item, true
		}
	}
	// Floating-point fallthrough: return the first item of a fresh map
	// iteration, i.e. an arbitrary item.
	for _, n := range b.items {
		b.touchLocked(n)
		return n.item, true
	}
	return zero, false
}

// IterByPriority returns all items sorted by descending priority.
func (b *Bag[T]) IterByPriority() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]T, 0, len(b.items))
	for _, n := range b.items {
		out = append(out, n.item)
	}
	sortByPriorityDesc(out)
	return out
}

func sortByPriorityDesc[T Item](items []T) {
	slices.SortFunc(items, func(a, b T) int {
		switch {
		case a.Priority() > b.Priority():
			return -1
		case a.Priority() < b.Priority():
			return 1
		default:
			return 0
		}
	})
}

// ApplyDecay replaces every stored item with decay(item), e.g. multiplying
// a task's budget priority by (1-rate). The Bag stays decoupled from what
// "priority" means for T; the caller supplies the transform.
func (b *Bag[T]) ApplyDecay(decay func(T) T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, n := range b.items {
		n.item = decay(n.item)
	}
}

// --- eviction & list bookkeeping, adapted from pkg/cache/lru.go ---

func (b *Bag[T]) evictLocked() {
	var victim *node[T]
	switch b.policy {
	case PolicyPriority:
		var worst float64
		first := true
		for _, n := range b.items {
			if first || n.item.Priority() < worst {
				victim = n
				worst = n.item.Priority()
				first = false
			}
		}
	case PolicyLRU, PolicyFIFO:
		victim = b.tail
	case PolicyRandom:
		k := b.rng.Intn(len(b.items))
		i := 0
		for _, n := range b.items {
			if i == k {
				victim = n
				break
			}
			i++
		}
	}
	if victim == nil {
		return
	}
	b.unlinkLocked(victim)
	delete(b.items, victim.item.Key())
	b.evictions++
}

func (b *Bag[T]) touchLocked(n *node[T]) {
	if b.policy == PolicyLRU {
		b.moveToFrontLocked(n)
	}
}

func (b *Bag[T]) pushFrontLocked(n *node[T]) {
	n.prev = nil
	n.next = b.head
	if b.head != nil {
		b.head.prev = n
	}
	b.head = n
	if b.tail == nil {
		b.tail = n
	}
}

func (b *Bag[T]) unlinkLocked(n *node[T]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		b.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		b.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (b *Bag[T]) moveToFrontLocked(n *node[T]) {
	if b.head == n {
		return
	}
	b.unlinkLocked(n)
	b.pushFrontLocked(n)
}

// Evictions returns the running count of evicted items, exposed for metrics.
func (b *Bag[T]) Evictions() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.evictions
}
