// Package hooks provides typed extension points. A Filters chain lets
// outside code transform a value before the engine uses it; an Actions
// chain lets outside code react after something happened.
package hooks

import (
	"context"
	"sort"
	"sync"
)

// DefaultPriority is the priority used by Add.
const DefaultPriority = 10

// Filter transforms v and returns the value the next filter sees.
type Filter[T any] func(ctx context.Context, v T) T

// Action observes an event.
type Action[T any] func(ctx context.Context, v T)

type entry[F any] struct {
	priority int
	seq      int
	fn       F
}

// chain keeps callbacks sorted by priority, then insertion order.
type chain[F any] struct {
	mu      sync.RWMutex
	entries []entry[F]
	seq     int
}

func (c *chain[F]) add(priority int, fn F) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.entries = append(c.entries, entry[F]{priority: priority, seq: c.seq, fn: fn})
	sort.SliceStable(c.entries, func(i, j int) bool {
		if c.entries[i].priority != c.entries[j].priority {
			return c.entries[i].priority < c.entries[j].priority
		}
		return c.entries[i].seq < c.entries[j].seq
	})
}

func (c *chain[F]) snapshot() []F {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fns := make([]F, len(c.entries))
	for i, e := range c.entries {
		fns[i] = e.fn
	}
	return fns
}

func (c *chain[F]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Filters is an ordered filter chain. The zero value is ready to use.
type Filters[T any] struct {
	c chain[Filter[T]]
}

// Add appends fn with DefaultPriority.
func (f *Filters[T]) Add(fn Filter[T]) {
	f.c.add(DefaultPriority, fn)
}

// AddPriority appends fn; lower priorities run first.
func (f *Filters[T]) AddPriority(priority int, fn Filter[T]) {
	f.c.add(priority, fn)
}

// Apply runs v through every filter and returns the result.
func (f *Filters[T]) Apply(ctx context.Context, v T) T {
	for _, fn := range f.c.snapshot() {
		v = fn(ctx, v)
	}
	return v
}

// Len reports the number of registered filters.
func (f *Filters[T]) Len() int { return f.c.len() }

// Actions is an ordered action chain. The zero value is ready to use.
type Actions[T any] struct {
	c chain[Action[T]]
}

// Add appends fn with DefaultPriority.
func (a *Actions[T]) Add(fn Action[T]) {
	a.c.add(DefaultPriority, fn)
}

// AddPriority appends fn; lower priorities run first.
func (a *Actions[T]) AddPriority(priority int, fn Action[T]) {
	a.c.add(priority, fn)
}

// Do calls every action with v.
func (a *Actions[T]) Do(ctx context.Context, v T) {
	for _, fn := range a.c.snapshot() {
		fn(ctx, v)
	}
}

// Len reports the number of registered actions.
func (a *Actions[T]) Len() int { return a.c.len() }
